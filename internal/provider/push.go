package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
)

// DefaultExpoPushURL is the Expo push service endpoint the mobile app registers with.
const DefaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

// PushMessage is the JSON body posted to the Expo push service.
type PushMessage struct {
	To         string            `json:"to"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
	Sound      string            `json:"sound"`
	Priority   string            `json:"priority"`
	ChannelID  string            `json:"channelId,omitempty"`
	CategoryID string            `json:"categoryId,omitempty"`
	Badge      int               `json:"badge,omitempty"`
}

// pushTicket is the per-message receipt returned by Expo.
type pushTicket struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

type pushResponse struct {
	Data   pushTicket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// ExpoPushClient delivers push notifications to Expo push tokens.
type ExpoPushClient struct {
	url         string
	accessToken string
	httpClient  *http.Client
}

// NewExpoPushClient builds a client. accessToken is optional; Expo only
// requires it when enhanced push security is enabled for the project.
func NewExpoPushClient(url, accessToken string, timeout time.Duration) *ExpoPushClient {
	if url == "" {
		url = DefaultExpoPushURL
	}
	return &ExpoPushClient{
		url:         url,
		accessToken: accessToken,
		httpClient:  newHTTPClient(timeout),
	}
}

// BuildPushMessage maps a payload to the Expo message for one token.
func BuildPushMessage(token string, p domain.PushPayload) PushMessage {
	return PushMessage{
		To:         token,
		Title:      p.Title,
		Body:       p.Body,
		Data:       p.Data,
		Sound:      "default",
		Priority:   "high",
		ChannelID:  p.AndroidChannel,
		CategoryID: p.Category,
		Badge:      1,
	}
}

// SendPush posts one message and returns the Expo ticket id.
// A ticket with status=error is reported as *APIError with the Expo error code.
func (c *ExpoPushClient) SendPush(ctx context.Context, token string, p domain.PushPayload) (string, error) {
	body, err := json.Marshal(BuildPushMessage(token, p))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out pushResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", statusError(resp, "push service error")
		}
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(out.Errors) > 0 {
		return "", &APIError{StatusCode: resp.StatusCode, Code: out.Errors[0].Code, Message: out.Errors[0].Message}
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp, "push service error")
	}
	if out.Data.Status == "error" {
		return "", &APIError{StatusCode: resp.StatusCode, Code: out.Data.Details.Error, Message: out.Data.Message}
	}
	return out.Data.ID, nil
}

// compile-time check that ExpoPushClient implements PushSender
var _ PushSender = (*ExpoPushClient)(nil)
