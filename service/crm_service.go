package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"teleconsult/config"
	"teleconsult/pkg/logger"
)

// CRMService verifies a claimed mobile number against the appointment in the
// hospital CRM. It owns the cached bearer token for the CRM API.
type CRMService interface {
	VerifyAppointmentMobile(appointmentNumber, mobile string) (bool, error)
}

type crmService struct {
	cfg    config.CRM
	client *http.Client
	logger *logger.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewCRMService creates a new CRM service instance
func NewCRMService(cfg config.CRM, log *logger.Logger) CRMService {
	return &crmService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: log,
	}
}

type crmTokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

type crmVerifyRequest struct {
	AppNo string `json:"Appno"`
	MobNo string `json:"Mobno"`
}

type crmVerifyResponse struct {
	Status  string `json:"Status"`
	Message string `json:"Message"`
}

// NormalizeMobile strips non-digits and keeps the trailing 10 digits, the
// format the CRM expects.
func NormalizeMobile(mobile string) string {
	var b strings.Builder
	for _, r := range mobile {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

// accessToken returns a valid bearer token, refreshing when fewer than 60
// seconds of validity remain or when forced. Refresh is not mutually
// exclusive across callers; a duplicate refresh is harmless, serving a token
// past its reported expiry is not.
func (s *crmService) accessToken(forceRefresh bool) (string, error) {
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return "", fmt.Errorf("CRM credentials are not configured")
	}

	s.mu.Lock()
	cached, expiresAt := s.token, s.expiresAt
	s.mu.Unlock()

	if !forceRefresh && cached != "" && time.Until(expiresAt) > time.Minute {
		return cached, nil
	}

	form := url.Values{
		"UserName":   {s.cfg.Username},
		"Password":   {s.cfg.Password},
		"grant_type": {s.cfg.GrantType},
	}

	resp, err := s.client.Post(s.cfg.TokenURL, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("CRM token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Errorw("CRM token acquisition failed",
			"status", resp.StatusCode,
			"url", s.cfg.TokenURL,
		)
		return "", fmt.Errorf("CRM authentication failed: status %d", resp.StatusCode)
	}

	var tokenResp crmTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("CRM token response malformed: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("CRM token response did not include access_token")
	}

	expiresIn, err := tokenResp.ExpiresIn.Int64()
	if err != nil || expiresIn <= 0 {
		expiresIn = 600
	}

	s.mu.Lock()
	s.token = tokenResp.AccessToken
	s.expiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	s.mu.Unlock()

	return tokenResp.AccessToken, nil
}

// VerifyAppointmentMobile asks the CRM whether the mobile number belongs to
// the appointment. A 401 triggers exactly one token refresh and retry; a
// second failure propagates.
func (s *crmService) VerifyAppointmentMobile(appointmentNumber, mobile string) (bool, error) {
	if s.cfg.VerifyURL == "" {
		return false, fmt.Errorf("CRM verification URL is not configured")
	}

	payload := crmVerifyRequest{
		AppNo: strings.TrimSpace(appointmentNumber),
		MobNo: NormalizeMobile(mobile),
	}

	token, err := s.accessToken(false)
	if err != nil {
		return false, err
	}

	ok, status, err := s.postVerify(payload, token)
	if err != nil {
		return false, err
	}
	if status == http.StatusUnauthorized {
		refreshed, err := s.accessToken(true)
		if err != nil {
			return false, err
		}
		ok, status, err = s.postVerify(payload, refreshed)
		if err != nil {
			return false, err
		}
	}

	if status == http.StatusUnauthorized {
		return false, fmt.Errorf("CRM verification rejected credentials")
	}
	if status < 200 || status >= 300 {
		return false, fmt.Errorf("CRM verification failed: status %d", status)
	}

	return ok, nil
}

func (s *crmService) postVerify(payload crmVerifyRequest, token string) (bool, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return false, 0, fmt.Errorf("failed to marshal CRM payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.VerifyURL, bytes.NewReader(body))
	if err != nil {
		return false, 0, fmt.Errorf("failed to build CRM request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, 0, fmt.Errorf("CRM verification request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warnw("CRM verification non-success response",
			"status", resp.StatusCode,
			"appointment", payload.AppNo,
		)
		return false, resp.StatusCode, nil
	}

	var verifyResp crmVerifyResponse
	if err := json.Unmarshal(respBody, &verifyResp); err != nil {
		return false, resp.StatusCode, fmt.Errorf("CRM verification response malformed: %w", err)
	}

	s.logger.Debugw("CRM verification response", "status", verifyResp.Status)
	return verifyResp.Status == "Success", resp.StatusCode, nil
}
