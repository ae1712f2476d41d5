package binder_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sharedcontext/core/binder"
)

type payload struct {
	Claim      string   `json:"claim"`
	Confidence *float64 `json:"confidence"`
	Tags       []string `json:"tags"`
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes and restores body", func(t *testing.T) {
		t.Parallel()
		body := `{"claim":"x","confidence":0.5,"tags":["a"],"extra":true}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")

		var p payload
		require.NoError(t, binder.JSON()(r, &p))
		assert.Equal(t, "x", p.Claim)
		require.NotNil(t, p.Confidence)
		assert.Equal(t, 0.5, *p.Confidence)
		assert.Equal(t, []string{"a"}, p.Tags)

		rest, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, body, string(rest))
	})

	t.Run("missing content type is accepted", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"claim":"x"}`))
		var p payload
		require.NoError(t, binder.JSON()(r, &p))
		assert.Equal(t, "x", p.Claim)
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		want        error
	}{
		{"wrong media type", `{}`, "text/plain", binder.ErrUnsupportedMediaType},
		{"empty", ``, "application/json", binder.ErrFailedToParseJSON},
		{"malformed", `{"claim":`, "application/json", binder.ErrFailedToParseJSON},
		{"mistyped", `{"claim":1}`, "application/json", binder.ErrFailedToParseJSON},
		{"trailing data", `{"claim":"x"} {}`, "application/json", binder.ErrFailedToParseJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", tt.contentType)
			var p payload
			assert.ErrorIs(t, binder.JSON()(r, &p), tt.want)
		})
	}
}

func TestQuery(t *testing.T) {
	t.Parallel()

	type params struct {
		Limit   int      `query:"limit"`
		Offset  int      `query:"offset"`
		Tags    []string `query:"tag"`
		Pages   []int    `query:"page"`
		Verbose bool     `query:"verbose"`
		Skipped string   `query:"-"`
		Name    string
	}

	r := httptest.NewRequest(http.MethodGet, "/?limit=5&offset=10&tag=go,db&tag=perf&page=1,2&verbose=true&Skipped=x&name=alpha", nil)
	var p params
	require.NoError(t, binder.Query()(r, &p))
	assert.Equal(t, 5, p.Limit)
	assert.Equal(t, 10, p.Offset)
	assert.Equal(t, []string{"go", "db", "perf"}, p.Tags)
	assert.Equal(t, []int{1, 2}, p.Pages)
	assert.True(t, p.Verbose)
	assert.Empty(t, p.Skipped)
	assert.Equal(t, "alpha", p.Name)

	t.Run("missing keys keep zero values", func(t *testing.T) {
		t.Parallel()
		var p params
		require.NoError(t, binder.Query()(httptest.NewRequest(http.MethodGet, "/", nil), &p))
		assert.Zero(t, p)
	})

	for _, bad := range []string{"/?limit=ten", "/?verbose=maybe", "/?page=1,x"} {
		t.Run(bad, func(t *testing.T) {
			t.Parallel()
			var p params
			assert.ErrorIs(t, binder.Query()(httptest.NewRequest(http.MethodGet, bad, nil), &p), binder.ErrFailedToParseQuery)
		})
	}

	t.Run("unsupported field kind", func(t *testing.T) {
		t.Parallel()
		var p struct {
			Ratio float64 `query:"ratio"`
		}
		assert.ErrorIs(t, binder.Query()(httptest.NewRequest(http.MethodGet, "/?ratio=0.5", nil), &p), binder.ErrFailedToParseQuery)
	})

	t.Run("non-pointer target", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, binder.Query()(httptest.NewRequest(http.MethodGet, "/", nil), params{}), binder.ErrFailedToParseQuery)
	})
}
