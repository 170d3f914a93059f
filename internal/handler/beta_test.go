package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Request validation happens before any service call, so these tests run
// against a handler with no service wired.

func TestBetaHandler_VerifyPassword_Validation(t *testing.T) {
	h := &BetaHandler{}

	tests := []struct {
		name string
		body string
	}{
		{"missing password", `{}`},
		{"empty password", `{"password": ""}`},
		{"malformed json", `{password`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/beta/verify", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			h.VerifyPassword(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Password required")
		})
	}
}

func TestBetaHandler_VerifySession_Validation(t *testing.T) {
	h := &BetaHandler{}

	req := httptest.NewRequest("POST", "/api/beta/verify-session", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.VerifySession(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valid":false`)
}

func TestBetaHandler_GeneratePassword_Validation(t *testing.T) {
	h := &BetaHandler{}

	tests := []struct {
		name string
		body string
	}{
		{"missing label", `{}`},
		{"whitespace label", `{"label": "   "}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/beta/admin/generate", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			h.GeneratePassword(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Label required")
		})
	}
}

func TestBetaHandler_RevokePassword_Validation(t *testing.T) {
	h := &BetaHandler{}

	req := httptest.NewRequest("POST", "/api/beta/admin/revoke", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.RevokePassword(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password required")
}

func TestBetaHandler_AdminAuth_Validation(t *testing.T) {
	h := &BetaHandler{}

	req := httptest.NewRequest("POST", "/api/beta/admin/auth", strings.NewReader(`{"password":""}`))
	rec := httptest.NewRecorder()

	h.AdminAuth(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientMeta(t *testing.T) {
	t.Run("extracts ip and user agent", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "203.0.113.7:51234"
		req.Header.Set("User-Agent", "test-agent")

		ip, ua := clientMeta(req)

		assert.NotNil(t, ip)
		assert.Equal(t, "203.0.113.7:51234", *ip)
		assert.NotNil(t, ua)
		assert.Equal(t, "test-agent", *ua)
	})

	t.Run("prefers forwarded header", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", "198.51.100.2")

		ip, _ := clientMeta(req)

		assert.NotNil(t, ip)
		assert.Equal(t, "198.51.100.2", *ip)
	})

	t.Run("nil user agent when absent", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", nil)

		_, ua := clientMeta(req)

		assert.Nil(t, ua)
	})
}
