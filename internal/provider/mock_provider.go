package provider

import (
	"context"
	"sync"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
)

// WhatsAppCall records one SendTemplate invocation on MockWhatsApp.
type WhatsAppCall struct {
	Phone   string
	Message domain.TemplateMessage
}

// PushCall records one SendPush invocation on MockPush.
type PushCall struct {
	Token   string
	Payload domain.PushPayload
}

// MockWhatsApp is a hand-written, in-memory WhatsAppSender used in unit tests.
// It records every call; set Err or SendFunc to simulate failure paths.
type MockWhatsApp struct {
	mu    sync.Mutex
	calls []WhatsAppCall

	MessageID string
	Err       error
	SendFunc  func(ctx context.Context, phone string, msg domain.TemplateMessage) (string, error)
}

func (m *MockWhatsApp) SendTemplate(ctx context.Context, phone string, msg domain.TemplateMessage) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, WhatsAppCall{Phone: phone, Message: msg})
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, phone, msg)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.MessageID, nil
}

// Calls returns a copy of the recorded calls.
func (m *MockWhatsApp) Calls() []WhatsAppCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WhatsAppCall(nil), m.calls...)
}

// MockPush is the PushSender counterpart of MockWhatsApp.
type MockPush struct {
	mu    sync.Mutex
	calls []PushCall

	TicketID string
	Err      error
	SendFunc func(ctx context.Context, token string, p domain.PushPayload) (string, error)
}

func (m *MockPush) SendPush(ctx context.Context, token string, p domain.PushPayload) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, PushCall{Token: token, Payload: p})
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, token, p)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.TicketID, nil
}

func (m *MockPush) Calls() []PushCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PushCall(nil), m.calls...)
}

var (
	_ WhatsAppSender = (*MockWhatsApp)(nil)
	_ PushSender     = (*MockPush)(nil)
)
