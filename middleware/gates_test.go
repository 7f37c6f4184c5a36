package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameOrigin(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		origin  string
		referer string
		want    int
	}{
		{"safe method passes", http.MethodGet, "https://evil.test", "", http.StatusOK},
		{"no headers passes", http.MethodPost, "", "", http.StatusOK},
		{"same origin passes", http.MethodPost, "http://example.com", "", http.StatusOK},
		{"same referer passes", http.MethodDelete, "", "http://example.com/settings", http.StatusOK},
		{"cross origin blocked", http.MethodPut, "https://evil.test", "", http.StatusForbidden},
		{"cross referer blocked", http.MethodPost, "", "https://evil.test/page", http.StatusForbidden},
		{"host as origin prefix blocked", http.MethodDelete, "http://example.com.evil.net", "", http.StatusForbidden},
		{"host in referer query blocked", http.MethodPost, "", "https://evil.net/?example.com", http.StatusForbidden},
		{"host in referer path blocked", http.MethodPut, "", "https://evil.net/example.com/x", http.StatusForbidden},
		{"other port blocked", http.MethodPost, "http://example.com:8081", "", http.StatusForbidden},
		{"opaque origin blocked", http.MethodPost, "null", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://example.com/audio/1", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()
			SameOrigin(okHandler()).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireJSONOrMultipart(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		want        int
	}{
		{"json passes", http.MethodPost, "application/json; charset=utf-8", `{}`, http.StatusOK},
		{"multipart passes", http.MethodPost, "multipart/form-data; boundary=x", "--x--", http.StatusOK},
		{"form rejected", http.MethodPut, "application/x-www-form-urlencoded", "a=b", http.StatusBadRequest},
		{"missing type rejected", http.MethodPatch, "", "data", http.StatusBadRequest},
		{"empty body passes", http.MethodPost, "", "", http.StatusOK},
		{"delete not checked", http.MethodDelete, "text/plain", "x", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/user/profile", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			RequireJSONOrMultipart(okHandler()).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:4000"
	assert.Equal(t, "192.168.1.9", ClientIP(req))

	req.Header.Set("X-Real-IP", "10.1.1.1")
	assert.Equal(t, "10.1.1.1", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}
