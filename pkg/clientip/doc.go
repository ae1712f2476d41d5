// Package clientip extracts the originating client address from an HTTP
// request.
//
// Proxy headers are consulted in priority order:
//
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP
//  5. RemoteAddr
//
// Every candidate is parsed and normalized with net.ParseIP. Malformed values
// and the unspecified address are skipped.
//
//	ip := clientip.GetIP(r)
//	key := "ip:" + ip
//
// Only trust these headers when the service runs behind a proxy that
// overwrites them.
package clientip
