package binder

import "net/http"

// Query binds URL query parameters to struct fields.
//
// Field names come from the `query:"name"` tag, `query:"-"` skips a field
// and untagged fields use their lowercased name. Supported kinds are string,
// int, bool and slices of those (repeated or comma-separated values).
//
//	type ListParams struct {
//		Limit  int `query:"limit"`
//		Offset int `query:"offset"`
//	}
func Query() Binder {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
