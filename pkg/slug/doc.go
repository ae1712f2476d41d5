// Package slug builds URL-safe identifiers from arbitrary text.
//
// Input is NFD-normalized and combining marks are dropped, so "Café" becomes
// "cafe". A few letters without a decomposition (ß, æ, ø, œ, ł, đ) are
// transliterated. Everything that is not an ASCII letter or digit collapses
// into a single separator.
//
//	slug.Make("Café & Restaurant")             // "cafe-restaurant"
//	slug.Make("Straße in München")             // "strasse-in-munchen"
//	slug.Make("Research Bot", slug.WithSuffix(8)) // "research-bot-3fa9c01d"
//
// Scripts without a Latin decomposition (Cyrillic, CJK) produce an empty base.
// With WithSuffix the result is then the suffix alone.
package slug
