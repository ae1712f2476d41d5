// Package binder decodes HTTP request data into Go structs.
//
// JSON decodes request bodies and Query binds URL query parameters through
// `query` struct tags:
//
//	var in service.ContributionInput
//	if err := binder.JSON()(r, &in); err != nil {
//		return response.Error(response.InvalidRequest("Invalid JSON body"))
//	}
//
//	var page struct {
//		Limit  int `query:"limit"`
//		Offset int `query:"offset"`
//	}
//	if err := binder.Query()(r, &page); err != nil {
//		return response.Error(response.InvalidRequest(err.Error()))
//	}
//
// All failures wrap one of the package sentinels (ErrFailedToParseJSON,
// ErrFailedToParseQuery, ErrUnsupportedMediaType) so callers can match them
// with errors.Is.
package binder
