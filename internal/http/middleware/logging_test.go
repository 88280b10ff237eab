package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("log line not JSON: %v (%q)", err, lines[len(lines)-1])
	}
	return m
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) {
		if v, ok := c.Get(requestIDKey); !ok || v == "" {
			t.Fatalf("requestID not set in context")
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rid", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated %s", requestIDHeader)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rid", nil)
	req.Header.Set("x-request-id", "abc-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("want propagated id, got %q", got)
	}
}

func TestRedactingLogger_LevelsAndRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}))
	r.GET("/ok/:id", func(c *gin.Context) {
		// Services log through zerolog.Ctx on the request context.
		zerolog.Ctx(c.Request.Context()).Info().Msg("from service")
		c.String(http.StatusOK, "hi")
	})
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	req := httptest.NewRequest(http.MethodGet, "/ok/7", nil)
	req.Header.Set(requestIDHeader, "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want service line + access line, got %d: %s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"request_id":"rid-1"`) || !strings.Contains(lines[0], "from service") {
		t.Fatalf("service log missing request fields: %s", lines[0])
	}
	acc := lastLine(t, buf)
	if acc["level"] != "info" || acc["path"] != "/ok/:id" || acc["status"] != float64(200) {
		t.Fatalf("access line = %v", acc)
	}

	for path, lvl := range map[string]string{"/bad": "warn", "/boom": "error", "/missing": "warn"} {
		buf.Reset()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		if got := lastLine(t, buf); got["level"] != lvl {
			t.Fatalf("%s logged at %v; want %s", path, got["level"], lvl)
		}
	}
}

func TestRedactingLogger_RedactsSecrets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/api/webhook", func(c *gin.Context) { c.String(http.StatusOK, c.Query("hub.challenge")) })

	req := httptest.NewRequest(http.MethodGet, "/api/webhook?hub.mode=subscribe&hub.verify_token=sekrit&email=a@b.com", nil)
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("X-Api-Key", "k")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, leak := range []string{"sekrit", "a@b.com", "Bearer tok", `"k"`} {
		if strings.Contains(out, leak) {
			t.Fatalf("log leaked %q: %s", leak, out)
		}
	}
	if !strings.Contains(out, "subscribe") {
		t.Fatalf("harmless params should survive: %s", out)
	}
}

func TestRecovery_Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}), Recovery())
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("after write")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(requestIDHeader, "rid-p")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["success"] != false || body["request_id"] != "rid-p" || body["code"] != "internal_error" {
		t.Fatalf("envelope = %v", body)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("panic not logged: %s", buf.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))
	if w.Body.String() != "partial" {
		t.Fatalf("written body must be left alone, got %q", w.Body.String())
	}
}

func TestLoggerFrom_Fallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LoggerFrom(c) == nil {
		t.Fatalf("fallback logger must not be nil")
	}
}

func TestTruncate(t *testing.T) {
	if truncate("abc", 0) != "abc" || truncate("abc", 5) != "abc" {
		t.Fatalf("short strings untouched")
	}
	if got := truncate("abcdef", 3); got != "abc…" {
		t.Fatalf("truncate = %q", got)
	}
}
