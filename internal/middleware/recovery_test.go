package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoverer(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		panicVal any
		wantCode int
		wantType string
		wantBody string
	}{
		{"no panic", "/policies/1", nil, http.StatusOK, "", "ok"},
		{"string panic", "/policies/1", "something went wrong", http.StatusInternalServerError, "text/plain; charset=utf-8", "Internal Server Error"},
		{"int panic", "/", 42, http.StatusInternalServerError, "text/plain; charset=utf-8", "Internal Server Error"},
		{"error panic", "/policies/preview", errors.New("render failed"), http.StatusInternalServerError, "text/plain; charset=utf-8", "Internal Server Error"},
		{"api panic", "/api/policies", "boom", http.StatusInternalServerError, "application/json", `"error":"internal server error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.panicVal != nil {
					panic(tt.panicVal)
				}
				w.Header().Set("X-Policy", "kept")
				w.Write([]byte("ok"))
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, tt.path, nil))

			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantType != "" && rr.Header().Get("Content-Type") != tt.wantType {
				t.Errorf("Content-Type: got %q, want %q", rr.Header().Get("Content-Type"), tt.wantType)
			}
			if tt.panicVal == nil && rr.Header().Get("X-Policy") != "kept" {
				t.Error("headers of a normal response should pass through")
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRecovererRepanicsAbortHandler(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	Recoverer(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Error("ErrAbortHandler should propagate")
}
