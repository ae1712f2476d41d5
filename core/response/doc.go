// Package response builds handler.Response values and defines the typed
// application error rendered as the JSON error envelope:
//
//	{"error": {"code": "NOT_FOUND", "message": "Agent \"x\" not found"}}
//
// Handlers return response.Error(err). HTTPError values are rendered as-is;
// errors from other packages that implement StatusCode() int, and optionally
// Code() string and Details() map[string]any, are converted by Convert.
// Anything else becomes a generic 500 INTERNAL_ERROR.
package response
