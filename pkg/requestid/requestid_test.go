package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saddagada1/bella-server-web/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	serve := func(t *testing.T, header string) (string, *httptest.ResponseRecorder) {
		t.Helper()
		var seen string
		h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestid.FromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(requestid.Header, header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return seen, rec
	}

	t.Run("generates id when missing", func(t *testing.T) {
		t.Parallel()
		seen, rec := serve(t, "")
		require.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(requestid.Header))
	})

	t.Run("reuses valid incoming id", func(t *testing.T) {
		t.Parallel()
		seen, rec := serve(t, "client-id_42")
		assert.Equal(t, "client-id_42", seen)
		assert.Equal(t, "client-id_42", rec.Header().Get(requestid.Header))
	})

	t.Run("replaces malformed id", func(t *testing.T) {
		t.Parallel()
		seen, _ := serve(t, "bad id<script>")
		assert.NotEqual(t, "bad id<script>", seen)
		assert.NotEmpty(t, seen)
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("a", 129)
		seen, _ := serve(t, long)
		assert.NotEqual(t, long, seen)
	})
}

func TestLogExtractor(t *testing.T) {
	t.Parallel()

	_, ok := requestid.LogExtractor(context.Background())
	assert.False(t, ok)

	attr, ok := requestid.LogExtractor(requestid.WithContext(context.Background(), "abc"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.String())
}
