package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
)

// TemplateRequest is the JSON body posted to the Graph API /messages endpoint.
type TemplateRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Template         TemplateBody `json:"template"`
}

type TemplateBody struct {
	Name       string      `json:"name"`
	Language   Language    `json:"language"`
	Components []Component `json:"components"`
}

type Language struct {
	Code string `json:"code"`
}

type Component struct {
	Type       string             `json:"type"`
	SubType    string             `json:"sub_type,omitempty"`
	Index      string             `json:"index,omitempty"`
	Parameters []domain.Parameter `json:"parameters"`
}

// messagesResponse maps the Graph API success body; only the message id is used.
type messagesResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// graphErrorResponse maps the nested Graph API error envelope.
type graphErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// PhoneNumberInfo is what the Graph API reports about the sending number.
type PhoneNumberInfo struct {
	ID                 string `json:"id"`
	DisplayPhoneNumber string `json:"display_phone_number"`
	VerifiedName       string `json:"verified_name"`
	QualityRating      string `json:"quality_rating"`
}

// WhatsAppConfig carries the credentials read once at startup.
type WhatsAppConfig struct {
	BaseURL       string
	PhoneNumberID string
	AccessToken   string
	Language      string
	Timeout       time.Duration
}

// WhatsAppClient sends template messages through the WhatsApp Business Graph API.
// The base URL is injected from config so tests can point to a local mock.
type WhatsAppClient struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	language      string
	httpClient    *http.Client
}

func NewWhatsAppClient(cfg WhatsAppConfig) *WhatsAppClient {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	return &WhatsAppClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		language:      lang,
		httpClient:    newHTTPClient(cfg.Timeout),
	}
}

// FormatPhone keeps only the digits of a free-form phone number.
// No country code is added or validated.
func FormatPhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildTemplateRequest is the pure mapping from (phone, message) to the request
// body. It has no clock or randomness, so equal inputs give equal bodies.
func BuildTemplateRequest(phone string, msg domain.TemplateMessage, language string) TemplateRequest {
	params := msg.Parameters
	if params == nil {
		params = []domain.Parameter{}
	}
	components := []Component{{Type: "body", Parameters: params}}
	for _, b := range msg.Buttons {
		components = append(components, Component{
			Type:       "button",
			SubType:    "url",
			Index:      strconv.Itoa(b.Index),
			Parameters: b.Parameters,
		})
	}

	return TemplateRequest{
		MessagingProduct: "whatsapp",
		To:               FormatPhone(phone),
		Type:             "template",
		Template: TemplateBody{
			Name:       string(msg.Name),
			Language:   Language{Code: language},
			Components: components,
		},
	}
}

// SendTemplate posts the template and returns the WhatsApp message id.
// Remote failures come back as *APIError carrying the Graph error message.
func (c *WhatsAppClient) SendTemplate(ctx context.Context, phone string, msg domain.TemplateMessage) (string, error) {
	body, err := json.Marshal(BuildTemplateRequest(phone, msg, c.language))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/" + url.PathEscape(c.phoneNumberID) + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", graphError(resp)
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Messages) == 0 {
		return "", nil
	}
	return out.Messages[0].ID, nil
}

// VerifyConfiguration checks that credentials are present and that the Graph
// API accepts them for the configured phone number.
func (c *WhatsAppClient) VerifyConfiguration(ctx context.Context) (*PhoneNumberInfo, error) {
	if c.phoneNumberID == "" || c.accessToken == "" {
		return nil, domain.ErrNotConfigured
	}

	endpoint := c.baseURL + "/" + url.PathEscape(c.phoneNumberID) +
		"?fields=id,display_phone_number,verified_name,quality_rating"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, graphError(resp)
	}

	var info PhoneNumberInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &info, nil
}

func graphError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var ge graphErrorResponse
	if err := json.Unmarshal(raw, &ge); err != nil || ge.Error.Message == "" {
		return statusError(resp, "Failed to send message")
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       strconv.Itoa(ge.Error.Code),
		Message:    ge.Error.Message,
	}
}

// compile-time check that WhatsAppClient implements WhatsAppSender
var _ WhatsAppSender = (*WhatsAppClient)(nil)
