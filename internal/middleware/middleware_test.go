package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "GET", "GET"},
		{"newline", "a\nb", "a b"},
		{"carriage return", "a\r\nb", "a  b"},
		{"tab kept", "a\tb", "a\tb"},
		{"null byte", "a\x00b", "ab"},
		{"escape", "a\x1bb", "ab"},
		{"delete", "a\x7fb", "ab"},
		{"unicode", "héllo", "héllo"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeW3CField(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"with space", `"with space"`},
		{`say "hi"`, `"say ""hi"""`},
		{"tab\there", "\"tab\there\""},
	}

	for _, tt := range tests {
		if got := escapeW3CField(tt.input); got != tt.want {
			t.Errorf("escapeW3CField(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "10.0.0.1:5555", nil, "10.0.0.1"},
		{"forwarded single", "10.0.0.1:5555", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "1.2.3.4"},
		{"forwarded chain", "10.0.0.1:5555", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "1.2.3.4"},
		{"real ip", "10.0.0.1:5555", map[string]string{"X-Real-IP": "9.9.9.9"}, "9.9.9.9"},
		{"ipv6", "[::1]:5555", nil, "[::1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldSkip(t *testing.T) {
	config := DefaultLoggingConfig()

	tests := []struct {
		name   string
		path   string
		config func(LoggingConfig) LoggingConfig
		want   bool
	}{
		{"api", "/api/media/1/render", nil, false},
		{"metrics", "/metrics", nil, true},
		{"health logged by default", "/healthz", nil, false},
		{"health skipped", "/healthz", func(c LoggingConfig) LoggingConfig { c.LogHealthChecks = false; return c }, true},
		{"stored file skipped", "/media/default/ab/cd/thumb_1_default_big.jpg", nil, true},
		{"stored file logged", "/media/x.jpg", func(c LoggingConfig) LoggingConfig { c.LogStaticFiles = true; return c }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config
			if tt.config != nil {
				c = tt.config(c)
			}
			if got := shouldSkip(tt.path, c); got != tt.want {
				t.Errorf("shouldSkip(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestLoggerWritesW3CLine(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultLoggingConfig()
	config.Output = &buf

	handler := Logger(config)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/media?context=default", nil)
	req.RemoteAddr = "192.168.1.5:4000"
	req.Header.Set("User-Agent", "test agent\ninjected")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	line := strings.TrimSpace(buf.String())
	if strings.Count(line, "\n") != 0 {
		t.Fatalf("log line contains newline: %q", line)
	}
	fields := strings.SplitN(line, " ", 10)
	if len(fields) < 10 {
		t.Fatalf("unexpected line %q", line)
	}
	if fields[2] != "192.168.1.5" || fields[3] != "POST" || fields[4] != "/api/media" {
		t.Errorf("unexpected fields %q", fields[2:5])
	}
	if fields[5] != "context=default" || fields[6] != "201" || fields[7] != "5" {
		t.Errorf("unexpected fields %q", fields[5:8])
	}
	if !strings.Contains(line, `"test agent injected"`) {
		t.Errorf("user agent not sanitised: %q", line)
	}
}

func TestLoggerSkipsConfiguredPaths(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultLoggingConfig()
	config.Output = &buf

	handler := Logger(config)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestFormatLogLineDashes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
	req.RemoteAddr = "1.1.1.1:1"
	rw := newResponseWriter(httptest.NewRecorder())
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	got := formatLogLine(req, rw, 15*time.Millisecond, now)
	want := "2024-03-01 12:30:00 1.1.1.1 GET /api/formats - 200 0 15 - -"
	if got != want {
		t.Errorf("formatLogLine() = %q, want %q", got, want)
	}
}

func TestResponseWriterFirstHeaderWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusNotFound || rec.Code != http.StatusNotFound {
		t.Errorf("status = %d/%d, want 404", rw.statusCode, rec.Code)
	}
}

func TestRouteLabel(t *testing.T) {
	var got string
	r := mux.NewRouter()
	r.HandleFunc("/api/media/{id}", func(_ http.ResponseWriter, req *http.Request) {
		got = routeLabel(req)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/media/abc", nil))
	if got != "/api/media/{id}" {
		t.Errorf("routeLabel() = %q", got)
	}

	if l := routeLabel(httptest.NewRequest(http.MethodGet, "/nope", nil)); l != "unmatched" {
		t.Errorf("routeLabel() without route = %q", l)
	}
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics(DefaultMetricsConfig()))
	r.HandleFunc("/api/formats", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for path, want := range map[string]int{"/api/formats": http.StatusTeapot, "/healthz": http.StatusOK} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, want)
		}
	}
}
