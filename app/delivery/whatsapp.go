package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmcruz/news-digest/app/cfg"
)

// WhatsAppSender delivers messages through the WhatsApp Business API.
type WhatsAppSender struct {
	accessToken   string
	phoneNumberID string
	countryCode   string
	baseURL       string
	httpClient    *http.Client
}

var _ Sender = (*WhatsAppSender)(nil)

func NewWhatsAppSender(httpClient *http.Client) *WhatsAppSender {
	cfg := cfg.Get()

	return &WhatsAppSender{
		accessToken:   cfg.WhatsAppAccessToken,
		phoneNumberID: cfg.WhatsAppPhoneNumberID,
		countryCode:   cfg.DefaultCountryCode,
		baseURL:       cfg.WhatsAppAPIURL,
		httpClient:    httpClient,
	}
}

// Send delivers a text message. The address is normalized to digits and
// prefixed with the default country code if absent.
func (s *WhatsAppSender) Send(ctx context.Context, address, subject, message string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                s.NormalizeNumber(address),
		"type":              "text",
		"text": map[string]string{
			"body": message,
		},
	}

	return s.post(ctx, payload)
}

// SendTemplate delivers a pre-approved template message with optional
// body parameters.
func (s *WhatsAppSender) SendTemplate(ctx context.Context, address, templateName, languageCode string, parameters []string) error {
	template := map[string]interface{}{
		"name": templateName,
		"language": map[string]string{
			"code": languageCode,
		},
	}

	if len(parameters) > 0 {
		textParams := make([]map[string]string, 0, len(parameters))
		for _, param := range parameters {
			textParams = append(textParams, map[string]string{"type": "text", "text": param})
		}
		template["components"] = []map[string]interface{}{
			{"type": "body", "parameters": textParams},
		}
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                s.NormalizeNumber(address),
		"type":              "template",
		"template":          template,
	}

	return s.post(ctx, payload)
}

func (s *WhatsAppSender) post(ctx context.Context, payload map[string]interface{}) error {
	if s.accessToken == "" || s.phoneNumberID == "" {
		return fmt.Errorf("whatsapp access token and phone number ID are required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)
	req, err := http.NewRequestWithContext(timeoutCtx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	// The API confirms delivery by echoing message IDs
	if _, ok := result["messages"]; !ok {
		return fmt.Errorf("provider rejected message: %s", string(respBody))
	}

	slog.Debug("WhatsApp message sent", "to", payload["to"])
	return nil
}

// NormalizeNumber strips everything but digits and prefixes the default
// country code when missing.
func (s *WhatsAppSender) NormalizeNumber(address string) string {
	var digits strings.Builder
	for _, r := range address {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	clean := digits.String()
	if !strings.HasPrefix(clean, s.countryCode) {
		clean = s.countryCode + clean
	}
	return clean
}
