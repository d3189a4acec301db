package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
)

// WhatsAppSender delivers a template message to a phone number.
// Mocking this interface in tests gives full control over provider behaviour
// without making real HTTP calls.
type WhatsAppSender interface {
	SendTemplate(ctx context.Context, phone string, msg domain.TemplateMessage) (messageID string, err error)
}

// PushSender delivers a push notification to one device token.
type PushSender interface {
	SendPush(ctx context.Context, token string, p domain.PushPayload) (ticketID string, err error)
}

// APIError is a failure reported by the remote API itself, as opposed to a
// transport failure. Error returns the remote message unchanged so it can be
// surfaced to operators as-is.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// newHTTPClient returns a client with a hard timeout and a traced transport.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func statusError(resp *http.Response, fallback string) *APIError {
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("%s (status %d)", fallback, resp.StatusCode),
	}
}
