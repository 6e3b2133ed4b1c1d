package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmcruz/news-digest/app/cfg"
)

func whatsAppCfg(apiURL string) *cfg.Cfg {
	return &cfg.Cfg{
		WhatsAppAPIURL:        apiURL,
		WhatsAppAccessToken:   "test-token",
		WhatsAppPhoneNumberID: "12345",
		DefaultCountryCode:    "55",
	}
}

func TestWhatsAppSender_NormalizeNumber(t *testing.T) {
	cfg.Set(whatsAppCfg("http://unused"))
	sender := NewWhatsAppSender(http.DefaultClient)

	tests := []struct {
		input    string
		expected string
	}{
		{"(11) 98765-4321", "5511987654321"},
		{"5511987654321", "5511987654321"},
		{"+55 11 98765-4321", "5511987654321"},
		{"11987654321", "5511987654321"},
	}

	for _, tt := range tests {
		if got := sender.NormalizeNumber(tt.input); got != tt.expected {
			t.Errorf("NormalizeNumber(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestWhatsAppSender_Send(t *testing.T) {
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/12345/messages" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&gotPayload)
		fmt.Fprint(w, `{"messages":[{"id":"wamid.1"}]}`)
	}))
	defer server.Close()

	cfg.Set(whatsAppCfg(server.URL))
	sender := NewWhatsAppSender(server.Client())

	err := sender.Send(context.Background(), "(11) 98765-4321", "", "hello")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotPayload["to"] != "5511987654321" {
		t.Errorf("Expected normalized number, got %v", gotPayload["to"])
	}
	if gotPayload["type"] != "text" {
		t.Errorf("Expected type 'text', got %v", gotPayload["type"])
	}
}

func TestWhatsAppSender_Send_ProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"invalid recipient"}}`)
	}))
	defer server.Close()

	cfg.Set(whatsAppCfg(server.URL))
	sender := NewWhatsAppSender(server.Client())

	if err := sender.Send(context.Background(), "11987654321", "", "hello"); err == nil {
		t.Error("Expected error when the provider response has no messages key")
	}
}

func TestWhatsAppSender_Send_MissingCredentials(t *testing.T) {
	cfg.Set(&cfg.Cfg{WhatsAppAPIURL: "http://unused", DefaultCountryCode: "55"})
	sender := NewWhatsAppSender(http.DefaultClient)

	if err := sender.Send(context.Background(), "11987654321", "", "hello"); err == nil {
		t.Error("Expected error without access token and phone number ID")
	}
}

func TestWhatsAppSender_SendTemplate(t *testing.T) {
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		fmt.Fprint(w, `{"messages":[{"id":"wamid.2"}]}`)
	}))
	defer server.Close()

	cfg.Set(whatsAppCfg(server.URL))
	sender := NewWhatsAppSender(server.Client())

	err := sender.SendTemplate(context.Background(), "11987654321", "daily_digest", "pt_BR", []string{"15"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotPayload["type"] != "template" {
		t.Errorf("Expected type 'template', got %v", gotPayload["type"])
	}
	template, ok := gotPayload["template"].(map[string]interface{})
	if !ok {
		t.Fatalf("Missing template object: %v", gotPayload)
	}
	if template["name"] != "daily_digest" {
		t.Errorf("Expected template name 'daily_digest', got %v", template["name"])
	}
}
