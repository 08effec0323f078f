package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"teleconsult/config"
	"teleconsult/pkg/logger"
)

// SMSService delivers one-time codes over the transactional SMS gateway.
type SMSService interface {
	SendOTP(mobile, otpCode string) error
}

type smsService struct {
	cfg    config.SMS
	client *http.Client
	logger *logger.Logger
}

// NewSMSService creates a new SMS service instance
func NewSMSService(cfg config.SMS, log *logger.Logger) SMSService {
	return &smsService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: log,
	}
}

type smsPayload struct {
	CustomerID         string `json:"customerId"`
	DestinationAddress string `json:"destinationAddress"`
	Message            string `json:"message"`
	SourceAddress      string `json:"sourceAddress"`
	MessageType        string `json:"messageType"`
	DLTTemplateID      string `json:"dltTemplateId,omitempty"`
	EntityID           string `json:"entityId,omitempty"`
}

type smsProviderResponse struct {
	Status  json.RawMessage `json:"status"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SendOTP dispatches the code to the mobile number. The gateway may return
// 200 with a failure in the body (DLT rejection, invalid template), so the
// body is inspected as well as the status code.
func (s *smsService) SendOTP(mobile, otpCode string) error {
	username := s.cfg.User
	if username == "" {
		username = s.cfg.CustomerID
	}
	if username == "" || s.cfg.Password == "" {
		return fmt.Errorf("SMS configuration incomplete: user and password must be set")
	}

	// Message must match the DLT-approved template exactly
	message := strings.ReplaceAll(s.cfg.MessageTemplate, "{#var#}", otpCode)

	payload := smsPayload{
		CustomerID:         s.cfg.CustomerID,
		DestinationAddress: NormalizeMobile(mobile),
		Message:            message,
		SourceAddress:      s.cfg.SourceAddress,
		MessageType:        s.cfg.MessageType,
		DLTTemplateID:      s.cfg.TemplateID,
		EntityID:           s.cfg.EntityID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + s.cfg.Password))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	s.logger.Infow("Sending OTP SMS", "mobile", MaskMobile(payload.DestinationAddress), "url", s.cfg.URL)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Errorw("SMS gateway error", "status", resp.StatusCode)
		return fmt.Errorf("SMS delivery failed: status %d", resp.StatusCode)
	}

	if err := providerError(respBody); err != nil {
		s.logger.Errorw("SMS provider reported failure", "error", err)
		return err
	}

	s.logger.Infow("OTP SMS sent", "mobile", MaskMobile(payload.DestinationAddress))
	return nil
}

func providerError(body []byte) error {
	var resp smsProviderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}

	if len(resp.Status) > 0 {
		var statusStr string
		if err := json.Unmarshal(resp.Status, &statusStr); err == nil {
			if strings.EqualFold(statusStr, "failed") {
				return fmt.Errorf("SMS delivery failed: %s", resp.Message)
			}
		} else {
			var statusNum float64
			if err := json.Unmarshal(resp.Status, &statusNum); err == nil && statusNum != 0 {
				return fmt.Errorf("SMS delivery failed: provider status %v", statusNum)
			}
		}
	}

	if resp.Error != nil && (resp.Error.Code != "" || resp.Error.Message != "") {
		return fmt.Errorf("SMS delivery failed: %s %s", resp.Error.Code, resp.Error.Message)
	}
	if strings.Contains(strings.ToLower(resp.Message), "fail") {
		return fmt.Errorf("SMS delivery failed: %s", resp.Message)
	}
	return nil
}
