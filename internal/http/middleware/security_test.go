package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders(SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour, NoStore: true}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	h := w.Header()
	if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("X-Frame-Options") != "DENY" || h.Get("Cache-Control") != "no-store" {
		t.Fatalf("baseline headers missing: %v", h)
	}
	if h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be sent over plain HTTP")
	}
	exp := h.Get("Access-Control-Expose-Headers")
	if !strings.Contains(exp, "X-Request-ID") || !strings.Contains(exp, "ETag") {
		t.Fatalf("expose headers = %q", exp)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.TLS = &tls.ConnectionState{}
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=3600; includeSubDomains" {
		t.Fatalf("HSTS = %q", got)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-Proto", "HTTPS")
	r.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("proxy-declared https should get HSTS")
	}
}

func TestExposeHeaders_NoDuplicates(t *testing.T) {
	h := http.Header{}
	h.Set("Access-Control-Expose-Headers", "etag")
	exposeHeaders(h, "ETag", "X-Request-ID")
	if got := h.Get("Access-Control-Expose-Headers"); got != "etag, X-Request-ID" {
		t.Fatalf("got %q", got)
	}
}
