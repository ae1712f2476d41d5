package middleware

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/dmitrymomot/sharedcontext/core/handler"
	"github.com/dmitrymomot/sharedcontext/core/response"
)

// FieldType is the JSON type a field must have.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// FieldSchema describes one top-level body field.
// MaxLength counts runes for strings and elements for arrays. Min and Max
// bound numbers. Items applies to every array element.
type FieldSchema struct {
	Type      FieldType
	Required  bool
	MaxLength int
	Min       *float64
	Max       *float64
	Enum      []string
	Items     *FieldSchema
}

// BodySchema maps top-level field names to their schema.
type BodySchema map[string]FieldSchema

// Bound returns a pointer for FieldSchema.Min and FieldSchema.Max.
func Bound(v float64) *float64 { return &v }

// ValidateBody checks the JSON request body against schema before the
// handler runs. The first violation short-circuits with 400 INVALID_REQUEST
// and details.field naming the offending path. Unknown fields are ignored.
// The body is restored so the handler can decode it.
func ValidateBody[C handler.Context](schema BodySchema) handler.Middleware[C] {
	fields := make([]string, 0, len(schema))
	for name := range schema {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			req := ctx.Request()
			var body []byte
			if req.Body != nil {
				var err error
				body, err = io.ReadAll(req.Body)
				_ = req.Body.Close()
				if err != nil {
					return response.Error(response.InvalidRequest("Unable to read request body"))
				}
				req.Body = io.NopCloser(bytes.NewReader(body))
			}

			if !gjson.ValidBytes(body) {
				return response.Error(response.InvalidRequest("Invalid JSON body"))
			}
			root := gjson.ParseBytes(body)
			if !root.IsObject() {
				return response.Error(response.InvalidRequest("Request body must be a JSON object"))
			}

			values := make(map[string]gjson.Result, len(schema))
			root.ForEach(func(key, value gjson.Result) bool {
				values[key.String()] = value
				return true
			})

			for _, name := range fields {
				if v := checkField(name, values[name], schema[name]); v != nil {
					return response.Error(response.InvalidRequest(v.message).WithDetails(map[string]any{
						"field": v.field,
					}))
				}
			}

			return next(ctx)
		}
	}
}

type violation struct {
	field   string
	message string
}

func violated(field, format string, args ...any) *violation {
	return &violation{field: field, message: field + " " + fmt.Sprintf(format, args...)}
}

// checkField returns the first violation for the value at path, or nil.
func checkField(path string, v gjson.Result, fs FieldSchema) *violation {
	if !v.Exists() || v.Type == gjson.Null {
		if fs.Required {
			return violated(path, "is required")
		}
		return nil
	}

	switch fs.Type {
	case TypeString:
		if v.Type != gjson.String {
			return violated(path, "must be a string")
		}
		s := v.String()
		if fs.MaxLength > 0 && utf8.RuneCountInString(s) > fs.MaxLength {
			return violated(path, "must be at most %d characters", fs.MaxLength)
		}
		if len(fs.Enum) > 0 && !slices.Contains(fs.Enum, s) {
			return violated(path, "must be one of: %s", strings.Join(fs.Enum, ", "))
		}
	case TypeNumber:
		if v.Type != gjson.Number {
			return violated(path, "must be a number")
		}
		n := v.Float()
		if fs.Min != nil && n < *fs.Min {
			return violated(path, "must be at least %g", *fs.Min)
		}
		if fs.Max != nil && n > *fs.Max {
			return violated(path, "must be at most %g", *fs.Max)
		}
	case TypeBoolean:
		if v.Type != gjson.True && v.Type != gjson.False {
			return violated(path, "must be a boolean")
		}
	case TypeArray:
		if !v.IsArray() {
			return violated(path, "must be an array")
		}
		items := v.Array()
		if fs.MaxLength > 0 && len(items) > fs.MaxLength {
			return violated(path, "must have at most %d items", fs.MaxLength)
		}
		if fs.Items != nil {
			item := *fs.Items
			item.Required = true
			for i, el := range items {
				if bad := checkField(fmt.Sprintf("%s[%d]", path, i), el, item); bad != nil {
					return bad
				}
			}
		}
	case TypeObject:
		if !v.IsObject() {
			return violated(path, "must be an object")
		}
	}
	return nil
}
