package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBasicAuth(t *testing.T) {
	handler := BasicAuth("admin", "secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		user       string
		pass       string
		withCreds  bool
		wantStatus int
	}{
		{"valid credentials", "admin", "secret", true, http.StatusOK},
		{"wrong password", "admin", "wrong", true, http.StatusUnauthorized},
		{"wrong username", "root", "secret", true, http.StatusUnauthorized},
		{"missing credentials", "", "", false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/alerts", nil)
			if tt.withCreds {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}
