package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"teleconsult/config"
	"teleconsult/entity"
	"teleconsult/pkg/apierr"
	"teleconsult/pkg/logger"
	"teleconsult/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOTPService struct {
	precheckResp *entity.PrecheckResponse
	precheckErr  error
	verifyResp   *entity.VerifyOTPResponse
	verifyErr    error

	lastMobile     string
	lastParams     map[string]string
	lastPrecheckID string
	lastOTP        string
}

func (f *fakeOTPService) Precheck(mobile string, params map[string]string) (*entity.PrecheckResponse, error) {
	f.lastMobile = mobile
	f.lastParams = params
	return f.precheckResp, f.precheckErr
}

func (f *fakeOTPService) Verify(precheckID, otp string) (*entity.VerifyOTPResponse, error) {
	f.lastPrecheckID = precheckID
	f.lastOTP = otp
	return f.verifyResp, f.verifyErr
}

func (f *fakeOTPService) SweepExpired() error { return nil }

func controllerTestConfig() *config.Config {
	return &config.Config{
		Application: config.Application{Environment: "production"},
	}
}

func postJSON(t *testing.T, e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestConsultationController_Precheck_Success(t *testing.T) {
	svc := &fakeOTPService{
		precheckResp: &entity.PrecheckResponse{
			Success:      true,
			PrecheckID:   "pre-1",
			MaskedMobile: "******3210",
		},
	}
	ctrl := NewConsultationController(svc, validator.New(), controllerTestConfig(), logger.NewNop())

	e := echo.New()
	c, rec := postJSON(t, e, "/api/consultation/precheck",
		`{"mobile":"9876543210","params":{"a":"ciphertext"}}`)

	require.NoError(t, ctrl.Precheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "9876543210", svc.lastMobile)
	assert.Equal(t, map[string]string{"a": "ciphertext"}, svc.lastParams)

	var resp entity.PrecheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "pre-1", resp.PrecheckID)
}

func TestConsultationController_Precheck_InvalidMobile(t *testing.T) {
	svc := &fakeOTPService{}
	ctrl := NewConsultationController(svc, validator.New(), controllerTestConfig(), logger.NewNop())

	e := echo.New()
	c, rec := postJSON(t, e, "/api/consultation/precheck",
		`{"mobile":"12ab","params":{"a":"ciphertext"}}`)

	require.NoError(t, ctrl.Precheck(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid_mobile", body["error"])
	assert.Empty(t, svc.lastMobile)
}

func TestConsultationController_Precheck_MissingParams(t *testing.T) {
	ctrl := NewConsultationController(&fakeOTPService{}, validator.New(), controllerTestConfig(), logger.NewNop())

	e := echo.New()
	c, rec := postJSON(t, e, "/api/consultation/precheck", `{"mobile":"9876543210"}`)

	require.NoError(t, ctrl.Precheck(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_payload", body["error"])
}

func TestConsultationController_Precheck_ServiceErrorPassesThrough(t *testing.T) {
	svc := &fakeOTPService{precheckErr: apierr.ErrOTPThrottled}
	ctrl := NewConsultationController(svc, validator.New(), controllerTestConfig(), logger.NewNop())

	e := echo.New()
	c, rec := postJSON(t, e, "/api/consultation/precheck",
		`{"mobile":"9876543210","params":{"a":"ciphertext"}}`)

	require.NoError(t, ctrl.Precheck(c))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "otp_throttled", body["error"])
}

func TestConsultationController_VerifyOTP_Success(t *testing.T) {
	svc := &fakeOTPService{
		verifyResp: &entity.VerifyOTPResponse{Success: true, Token: "tok-1"},
	}
	ctrl := NewConsultationController(svc, validator.New(), controllerTestConfig(), logger.NewNop())

	e := echo.New()
	c, rec := postJSON(t, e, "/api/consultation/verify-otp",
		`{"precheckId":"pre-1","otp":"482913"}`)

	require.NoError(t, ctrl.VerifyOTP(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pre-1", svc.lastPrecheckID)
	assert.Equal(t, "482913", svc.lastOTP)
}

func TestConsultationController_VerifyOTP_MissingFields(t *testing.T) {
	ctrl := NewConsultationController(&fakeOTPService{}, validator.New(), controllerTestConfig(), logger.NewNop())

	e := echo.New()
	c, rec := postJSON(t, e, "/api/consultation/verify-otp", `{"otp":"482913"}`)

	require.NoError(t, ctrl.VerifyOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConsultationController_VerifyOTP_Expired(t *testing.T) {
	svc := &fakeOTPService{verifyErr: apierr.ErrOTPExpired}
	ctrl := NewConsultationController(svc, validator.New(), controllerTestConfig(), logger.NewNop())

	e := echo.New()
	c, rec := postJSON(t, e, "/api/consultation/verify-otp",
		`{"precheckId":"pre-1","otp":"482913"}`)

	require.NoError(t, ctrl.VerifyOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "otp_expired", body["error"])
}
