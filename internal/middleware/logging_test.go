package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// captureLog redirects the default logger to a JSON buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		htmx      bool
		signedIn  bool
		handler   http.HandlerFunc
		wantCode  int
		wantLevel string
	}{
		{
			name:   "implicit 200",
			method: http.MethodGet, path: "/",
			handler:  func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("hello")) },
			wantCode: http.StatusOK, wantLevel: "INFO",
		},
		{
			name:   "not found",
			method: http.MethodGet, path: "/policies/999",
			handler:  func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantCode: http.StatusNotFound, wantLevel: "INFO",
		},
		{
			name:   "created",
			method: http.MethodPost, path: "/api/policies", signedIn: true,
			handler:  func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) },
			wantCode: http.StatusCreated, wantLevel: "INFO",
		},
		{
			name:   "server error from htmx preview",
			method: http.MethodPost, path: "/policies/preview", htmx: true, signedIn: true,
			handler:  func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			wantCode: http.StatusInternalServerError, wantLevel: "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			sess := newTestSession("admin")
			if tt.signedIn {
				req = req.WithContext(ctxWithSession(req.Context(), sess))
			}
			rr := httptest.NewRecorder()
			Logger(tt.handler).ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log entry: %v (%q)", err, buf.String())
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level: got %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["method"] != tt.method || entry["path"] != tt.path {
				t.Errorf("method/path: got %v %v", entry["method"], entry["path"])
			}
			if entry["status"] != float64(tt.wantCode) {
				t.Errorf("logged status: got %v, want %d", entry["status"], tt.wantCode)
			}
			if _, ok := entry["htmx"]; ok != tt.htmx {
				t.Errorf("htmx attribute present: %v, want %v", ok, tt.htmx)
			}
			if tt.signedIn && entry["login_id"] != sess.LoginID.String() {
				t.Errorf("login_id: got %v, want %s", entry["login_id"], sess.LoginID)
			}
			if !tt.signedIn && entry["login_id"] != nil {
				t.Errorf("login_id should be absent, got %v", entry["login_id"])
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	t.Run("first WriteHeader wins", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusInternalServerError)
		if rw.statusCode != http.StatusNotFound || !rw.written {
			t.Errorf("statusCode=%d written=%v, want 404 true", rw.statusCode, rw.written)
		}
	})

	t.Run("Write implies 200", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		if n, err := rw.Write([]byte("test")); n != 4 || err != nil {
			t.Fatalf("Write: %d, %v", n, err)
		}
		if rw.statusCode != http.StatusOK || !rw.written {
			t.Errorf("statusCode=%d written=%v, want 200 true", rw.statusCode, rw.written)
		}
	})

	t.Run("Write keeps explicit status", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
		rw.WriteHeader(http.StatusCreated)
		rw.Write([]byte("created"))
		if rw.statusCode != http.StatusCreated {
			t.Errorf("statusCode: got %d, want 201", rw.statusCode)
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		rr := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rr}
		if rw.Unwrap() != rr {
			t.Error("Unwrap should return the wrapped writer")
		}
	})
}
