package email_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nyashahama/gameday-mailer/internal/email"
)

func newSender(endpoint string) email.Sender {
	return email.NewResendClient(email.ResendConfig{
		APIKey:   "re_test",
		FromAddr: "onboarding@resend.dev",
		FromName: "Red Sox Notifier",
		Endpoint: endpoint,
	})
}

var samplePayload = email.Payload{
	Subject: "Red Sox Today: 1 game",
	HTML:    "<p>Red Sox vs New York Yankees</p>",
	Text:    "Red Sox vs New York Yankees",
}

func TestSend_PostsPayloadAndReturnsReceipt(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = io.WriteString(w, `{"id":"msg_123"}`)
	}))
	defer srv.Close()

	receipt, err := newSender(srv.URL).Send(context.Background(), samplePayload, "fan@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.ProviderID != "msg_123" || receipt.Recipient != "fan@example.com" {
		t.Errorf("unexpected receipt %+v", receipt)
	}
	if auth != "Bearer re_test" {
		t.Errorf("unexpected auth header %q", auth)
	}
	if got["from"] != "Red Sox Notifier <onboarding@resend.dev>" {
		t.Errorf("unexpected from %v", got["from"])
	}
	if to, ok := got["to"].([]any); !ok || len(to) != 1 || to[0] != "fan@example.com" {
		t.Errorf("unexpected to %v", got["to"])
	}
	if got["subject"] != samplePayload.Subject || got["html"] != samplePayload.HTML || got["text"] != samplePayload.Text {
		t.Errorf("payload not forwarded: %v", got)
	}
}

func TestSend_ProviderRejectionIsDeliveryFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`)
	}))
	defer srv.Close()

	_, err := newSender(srv.URL).Send(context.Background(), samplePayload, "fan@example.com")
	if !errors.Is(err, email.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}

func TestSend_ErrorObjectIsDeliveryFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":{"name":"rate_limit_exceeded","message":"slow down","statusCode":429}}`)
	}))
	defer srv.Close()

	_, err := newSender(srv.URL).Send(context.Background(), samplePayload, "fan@example.com")
	if !errors.Is(err, email.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}

func TestSend_SingleAttemptOnFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"name":"internal_server_error","message":"boom"}`)
	}))
	defer srv.Close()

	if _, err := newSender(srv.URL).Send(context.Background(), samplePayload, "fan@example.com"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", calls)
	}
}

func TestSend_TransportFailureIsDeliveryFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newSender(url).Send(context.Background(), samplePayload, "fan@example.com")
	if !errors.Is(err, email.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}
