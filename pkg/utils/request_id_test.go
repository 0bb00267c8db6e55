package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		id := w.Header().Get(RequestIDHeader)
		if len(id) != 36 {
			t.Fatalf("expected uuid request id, got %q", id)
		}
		if w.Body.String() != id {
			t.Errorf("context id %q != header id %q", w.Body.String(), id)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		r.ServeHTTP(w, req)
		if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("header = %q, want abc-123", got)
		}
	})
}
