package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func requestIDThrough(t *testing.T, headerID string) string {
	t.Helper()
	Log = zap.NewNop()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestLogger())

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		// Handlers and services hold the plain request context, not the
		// gin context; the ID must survive that boundary.
		seen = getRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if headerID != "" {
		req.Header.Set("X-Request-ID", headerID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return seen
}

func TestRequestLoggerPropagatesRequestIDToRequestContext(t *testing.T) {
	assert.Equal(t, "req-42", requestIDThrough(t, "req-42"))
}

func TestRequestLoggerGeneratesIDWhenHeaderAbsent(t *testing.T) {
	id := requestIDThrough(t, "")
	assert.NotEmpty(t, id)
	assert.NotEqual(t, "unknown", id)
}

func TestGetRequestIDOutsideRequestIsUnknown(t *testing.T) {
	assert.Equal(t, "unknown", getRequestID(context.Background()))
}
