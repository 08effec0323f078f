package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"teleconsult/config"
	"teleconsult/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMobile(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"9876543210", "9876543210"},
		{"+919876543210", "9876543210"},
		{"919876543210", "9876543210"},
		{"98765-43210", "9876543210"},
		{"12345", "12345"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeMobile(tt.input), "input %q", tt.input)
	}
}

func crmTestConfig(tokenURL, verifyURL string) config.CRM {
	return config.CRM{
		TokenURL:       tokenURL,
		VerifyURL:      verifyURL,
		Username:       "crm-user",
		Password:       "crm-pass",
		GrantType:      "password",
		RequestTimeout: 5 * time.Second,
	}
}

func TestVerifyAppointmentMobile_Success(t *testing.T) {
	var tokenCalls, verifyCalls int32

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "crm-user", r.PostFormValue("UserName"))
		assert.Equal(t, "password", r.PostFormValue("grant_type"))
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok-1", "expires_in": 600})
	}))
	defer tokenSrv.Close()

	verifySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&verifyCalls, 1)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "APT-42", payload["Appno"])
		assert.Equal(t, "9876543210", payload["Mobno"])

		json.NewEncoder(w).Encode(map[string]string{"Status": "Success"})
	}))
	defer verifySrv.Close()

	svc := NewCRMService(crmTestConfig(tokenSrv.URL, verifySrv.URL), logger.NewNop())

	ok, err := svc.VerifyAppointmentMobile("APT-42", "+919876543210")
	require.NoError(t, err)
	assert.True(t, ok)

	// Second verification reuses the cached token
	ok, err = svc.VerifyAppointmentMobile("APT-42", "9876543210")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&verifyCalls))
}

func TestVerifyAppointmentMobile_Mismatch(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok-1", "expires_in": 600})
	}))
	defer tokenSrv.Close()

	verifySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"Status": "Failed", "Message": "Mobile number mismatch"})
	}))
	defer verifySrv.Close()

	svc := NewCRMService(crmTestConfig(tokenSrv.URL, verifySrv.URL), logger.NewNop())

	ok, err := svc.VerifyAppointmentMobile("APT-42", "9876543210")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyAppointmentMobile_RetriesOnceOn401(t *testing.T) {
	var tokenCalls, verifyCalls int32

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&tokenCalls, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": map[int32]string{1: "stale", 2: "fresh"}[n],
			"expires_in":   600,
		})
	}))
	defer tokenSrv.Close()

	verifySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&verifyCalls, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"Status": "Success"})
	}))
	defer verifySrv.Close()

	svc := NewCRMService(crmTestConfig(tokenSrv.URL, verifySrv.URL), logger.NewNop())

	ok, err := svc.VerifyAppointmentMobile("APT-42", "9876543210")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(2), atomic.LoadInt32(&tokenCalls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&verifyCalls))
}

func TestVerifyAppointmentMobile_PersistentUnauthorized(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok", "expires_in": 600})
	}))
	defer tokenSrv.Close()

	verifySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer verifySrv.Close()

	svc := NewCRMService(crmTestConfig(tokenSrv.URL, verifySrv.URL), logger.NewNop())

	_, err := svc.VerifyAppointmentMobile("APT-42", "9876543210")
	assert.Error(t, err)
}

func TestVerifyAppointmentMobile_TokenEndpointFailure(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer tokenSrv.Close()

	svc := NewCRMService(crmTestConfig(tokenSrv.URL, "http://unused.invalid"), logger.NewNop())

	_, err := svc.VerifyAppointmentMobile("APT-42", "9876543210")
	assert.Error(t, err)
}

func TestVerifyAppointmentMobile_MissingCredentials(t *testing.T) {
	cfg := crmTestConfig("http://unused.invalid", "http://unused.invalid")
	cfg.Username = ""

	svc := NewCRMService(cfg, logger.NewNop())

	_, err := svc.VerifyAppointmentMobile("APT-42", "9876543210")
	assert.Error(t, err)
}

func TestVerifyAppointmentMobile_MissingVerifyURL(t *testing.T) {
	cfg := crmTestConfig("http://unused.invalid", "")

	svc := NewCRMService(cfg, logger.NewNop())

	_, err := svc.VerifyAppointmentMobile("APT-42", "9876543210")
	assert.Error(t, err)
}
