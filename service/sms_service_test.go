package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teleconsult/config"
	"teleconsult/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smsTestConfig(url string) config.SMS {
	return config.SMS{
		URL:             url,
		CustomerID:      "CUST01",
		User:            "sms-user",
		Password:        "sms-pass",
		SourceAddress:   "KAUVRY",
		TemplateID:      "170700001",
		EntityID:        "110100001",
		MessageType:     "SERVICE_IMPLICIT",
		MessageTemplate: "Use OTP {#var#} to join your consultation.",
		Timeout:         5 * time.Second,
	}
}

func TestSendOTP_Success(t *testing.T) {
	var received map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Authorization"), "Basic ")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	}))
	defer srv.Close()

	svc := NewSMSService(smsTestConfig(srv.URL), logger.NewNop())

	err := svc.SendOTP("+919876543210", "482913")
	require.NoError(t, err)

	assert.Equal(t, "9876543210", received["destinationAddress"])
	assert.Equal(t, "Use OTP 482913 to join your consultation.", received["message"])
	assert.Equal(t, "KAUVRY", received["sourceAddress"])
	assert.Equal(t, "170700001", received["dltTemplateId"])
}

func TestSendOTP_GatewayHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewSMSService(smsTestConfig(srv.URL), logger.NewNop())

	err := svc.SendOTP("9876543210", "482913")
	assert.Error(t, err)
}

func TestSendOTP_200WithFailureBody(t *testing.T) {
	// The gateway reports DLT rejections inside a 200 response
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "FAILED", "message": "template mismatch"})
	}))
	defer srv.Close()

	svc := NewSMSService(smsTestConfig(srv.URL), logger.NewNop())

	err := svc.SendOTP("9876543210", "482913")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMS delivery failed")
}

func TestSendOTP_200WithErrorObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "ERR-105", "message": "invalid entity id"},
		})
	}))
	defer srv.Close()

	svc := NewSMSService(smsTestConfig(srv.URL), logger.NewNop())

	err := svc.SendOTP("9876543210", "482913")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR-105")
}

func TestSendOTP_NonJSONBodyIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	svc := NewSMSService(smsTestConfig(srv.URL), logger.NewNop())

	assert.NoError(t, svc.SendOTP("9876543210", "482913"))
}

func TestSendOTP_MissingCredentials(t *testing.T) {
	cfg := smsTestConfig("http://unused.invalid")
	cfg.User = ""
	cfg.CustomerID = ""

	svc := NewSMSService(cfg, logger.NewNop())

	err := svc.SendOTP("9876543210", "482913")
	assert.Error(t, err)
}

func TestProviderError_NumericStatus(t *testing.T) {
	assert.Error(t, providerError([]byte(`{"status": 1, "message": "rejected"}`)))
	assert.NoError(t, providerError([]byte(`{"status": 0}`)))
}
