package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sameoldbox/notify-dispatch/internal/api"
	"github.com/sameoldbox/notify-dispatch/internal/domain"
	"github.com/sameoldbox/notify-dispatch/internal/metrics"
	"github.com/sameoldbox/notify-dispatch/internal/provider"
	"github.com/sameoldbox/notify-dispatch/internal/service"
)

// fakeVerifier stands in for the Graph API phone-number lookup.
type fakeVerifier struct {
	info *provider.PhoneNumberInfo
	err  error
}

func (f fakeVerifier) VerifyConfiguration(context.Context) (*provider.PhoneNumberInfo, error) {
	return f.info, f.err
}

type testServer struct {
	handler http.Handler
	wa      *provider.MockWhatsApp
	push    *provider.MockPush
}

func newTestServer(v fakeVerifier) *testServer {
	return newTestServerWithTimeout(v, 0)
}

func newTestServerWithTimeout(v fakeVerifier, dispatchTimeout time.Duration) *testServer {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	onSent, onFailed, onSkipped := m.DispatchHooks()

	wa := &provider.MockWhatsApp{MessageID: "wamid.1"}
	push := &provider.MockPush{TicketID: "ticket-1"}
	d := service.NewDispatcher(wa, push, nil, zap.NewNop(), service.MetricHooks{
		OnSent: onSent, OnFailed: onFailed, OnSkipped: onSkipped,
	})
	return &testServer{handler: api.NewRouter(d, v, reg, dispatchTimeout, zap.NewNop()), wa: wa, push: push}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestNotify_OrderDelivered(t *testing.T) {
	s := newTestServer(fakeVerifier{})

	rec := s.do(http.MethodPost, "/api/v1/notifications/order",
		`{"recipient":{"user_id":"u1","name":"Asha","phone":"9876543210"},"details":{"order_id":"o100","status":"delivered"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Fatal("expected a correlation id header")
	}

	var res domain.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.WhatsApp.Success || res.WhatsApp.MessageID != "wamid.1" {
		t.Fatalf("expected whatsapp success, got %+v", res.WhatsApp)
	}
	if !res.Push.Skipped {
		t.Fatalf("expected push skipped, got %+v", res.Push)
	}
	if calls := s.wa.Calls(); len(calls) != 1 || calls[0].Message.Name != domain.TemplateOrderDelivered {
		t.Fatalf("unexpected whatsapp calls: %+v", calls)
	}
}

func TestNotify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		substr string
	}{
		{"invalid json", "/api/v1/notifications/order", `{`, http.StatusBadRequest, "invalid JSON"},
		{
			"missing user id", "/api/v1/notifications/order",
			`{"recipient":{"phone":"1"},"details":{"order_id":"o1","status":"delivered"}}`,
			http.StatusUnprocessableEntity, "recipient.user_id",
		},
		{
			"unknown kind", "/api/v1/notifications/fax",
			`{"recipient":{"user_id":"u1"},"details":{}}`,
			http.StatusUnprocessableEntity, "invalid notification type",
		},
		{
			"foreign field", "/api/v1/notifications/menu",
			`{"recipient":{"user_id":"u1"},"details":{"order_id":"o1"}}`,
			http.StatusUnprocessableEntity, "invalid notification details",
		},
		{
			"missing details", "/api/v1/notifications/menu",
			`{"recipient":{"user_id":"u1"}}`,
			http.StatusUnprocessableEntity, "invalid notification details",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(fakeVerifier{})
			rec := s.do(http.MethodPost, tc.path, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body)
			}
			if !strings.Contains(rec.Body.String(), tc.substr) {
				t.Fatalf("expected body to contain %q, got %s", tc.substr, rec.Body)
			}
			if len(s.wa.Calls())+len(s.push.Calls()) != 0 {
				t.Fatal("expected no channel calls")
			}
		})
	}
}

func TestNotify_InvalidStatusIsReportedInResult(t *testing.T) {
	s := newTestServer(fakeVerifier{})

	rec := s.do(http.MethodPost, "/api/v1/notifications/order",
		`{"recipient":{"user_id":"u1","phone":"1","push_token":"t"},"details":{"order_id":"o1","status":"lost"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var res domain.Result
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if !strings.HasPrefix(res.WhatsApp.Error, "invalid order status") || !strings.HasPrefix(res.Push.Error, "invalid order status") {
		t.Fatalf("expected invalid order status on both channels, got %+v", res)
	}
	if len(s.wa.Calls())+len(s.push.Calls()) != 0 {
		t.Fatal("expected no channel calls")
	}
}

func TestNotifyBatch(t *testing.T) {
	s := newTestServer(fakeVerifier{})

	rec := s.do(http.MethodPost, "/api/v1/notifications/batch", `{
		"type": "promotion",
		"details": {"title": "Diwali", "message": "20% off", "offer_code": "DIWALI20"},
		"recipients": [
			{"user_id": "u1", "phone": "1111"},
			{"user_id": "u2", "push_token": "ExponentPushToken[x]"},
			{"user_id": "u3", "phone": "3333", "push_token": "ExponentPushToken[y]"}
		]
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		Results []domain.BatchResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out.Results))
	}
	for i, want := range []string{"u1", "u2", "u3"} {
		if out.Results[i].Recipient != want {
			t.Fatalf("result %d: expected %s, got %s", i, want, out.Results[i].Recipient)
		}
	}
	if len(s.wa.Calls()) != 2 || len(s.push.Calls()) != 2 {
		t.Fatalf("expected 2 whatsapp and 2 push calls, got %d and %d", len(s.wa.Calls()), len(s.push.Calls()))
	}
}

func TestNotifyBatch_AnswersBeforeWriteTimeout(t *testing.T) {
	s := newTestServerWithTimeout(fakeVerifier{}, 150*time.Millisecond)
	s.wa.SendFunc = func(ctx context.Context, _ string, _ domain.TemplateMessage) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return "wamid.slow", nil
		}
	}

	srv := httptest.NewUnstartedServer(s.handler)
	srv.Config.WriteTimeout = 400 * time.Millisecond
	srv.Start()
	defer srv.Close()

	recipients := make([]string, 10)
	for i := range recipients {
		recipients[i] = fmt.Sprintf(`{"user_id":"u%d","phone":"9%d"}`, i, i)
	}
	body := `{"type":"menu","details":{"date":"today","menu_items":"Dal"},"recipients":[` + strings.Join(recipients, ",") + `]}`

	resp, err := http.Post(srv.URL+"/api/v1/notifications/batch", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("expected a response before the write timeout, got %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		Results []domain.BatchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(out.Results))
	}
	if !out.Results[0].WhatsApp.Success {
		t.Fatalf("expected the first recipient to be sent, got %+v", out.Results[0].WhatsApp)
	}
	last := out.Results[9]
	if last.Recipient != "u9" || !strings.Contains(last.WhatsApp.Error, context.DeadlineExceeded.Error()) {
		t.Fatalf("expected the last recipient to fail on the deadline, got %+v", last)
	}
	if n := len(s.wa.Calls()); n >= 10 {
		t.Fatalf("expected sends to stop at the deadline, got %d calls", n)
	}
}

func TestNotifyBatch_Bounds(t *testing.T) {
	tooMany := make([]string, 1001)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf(`{"user_id":"u%d"}`, i)
	}

	tests := []struct {
		name   string
		body   string
		substr string
	}{
		{"empty", `{"type":"menu","details":{"date":"d","menu_items":"m"},"recipients":[]}`, "at least one recipient"},
		{"too large", `{"type":"menu","details":{"date":"d","menu_items":"m"},"recipients":[` + strings.Join(tooMany, ",") + `]}`, "maximum of 1000"},
		{"recipient without id", `{"type":"menu","details":{"date":"d","menu_items":"m"},"recipients":[{"phone":"1"}]}`, "user_id"},
		{"unknown type", `{"type":"fax","details":{},"recipients":[{"user_id":"u1"}]}`, "invalid notification type"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(fakeVerifier{})
			rec := s.do(http.MethodPost, "/api/v1/notifications/batch", tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body)
			}
			if !strings.Contains(rec.Body.String(), tc.substr) {
				t.Fatalf("expected body to contain %q, got %s", tc.substr, rec.Body)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(fakeVerifier{})
	if rec := s.do(http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthWhatsApp(t *testing.T) {
	tests := []struct {
		name     string
		verifier fakeVerifier
		status   int
	}{
		{"configured", fakeVerifier{info: &provider.PhoneNumberInfo{DisplayPhoneNumber: "+91 90000 00000", VerifiedName: "Same Old Box"}}, http.StatusOK},
		{"unconfigured", fakeVerifier{err: domain.ErrNotConfigured}, http.StatusServiceUnavailable},
		{"rejected", fakeVerifier{err: &provider.APIError{StatusCode: 401, Message: "Invalid OAuth access token."}}, http.StatusBadGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := newTestServer(tc.verifier).do(http.MethodGet, "/health/whatsapp", "")
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body)
			}
		})
	}
}

func TestMetricsEndpoints(t *testing.T) {
	s := newTestServer(fakeVerifier{})
	s.do(http.MethodPost, "/api/v1/notifications/menu",
		`{"recipient":{"user_id":"u1","phone":"1111"},"details":{"date":"today","menu_items":"Dal"}}`)

	rec := s.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `notifications_sent_total{channel="whatsapp",kind="menu"} 1`) {
		t.Fatalf("expected sent counter in scrape output, got:\n%s", rec.Body)
	}

	rec = s.do(http.MethodGet, "/api/v1/metrics", "")
	var snap map[string]map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap["sent"]["whatsapp"] != 1 || snap["skipped"]["push"] != 1 {
		t.Fatalf("unexpected snapshot: %v", snap)
	}
}
