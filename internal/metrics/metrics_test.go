package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
	"github.com/sameoldbox/notify-dispatch/internal/metrics"
)

// counterValue returns the value of the counter series with the given labels.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	series:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue series
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestDispatchHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	onSent, onFailed, onSkipped := m.DispatchHooks()

	onSent(domain.ChannelWhatsApp, domain.KindOrder, 120*time.Millisecond)
	onSent(domain.ChannelWhatsApp, domain.KindOrder, 80*time.Millisecond)
	onFailed(domain.ChannelPush, domain.KindOrder)
	onSkipped(domain.ChannelPush, domain.KindMenu)

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"notifications_sent_total", map[string]string{"channel": "whatsapp", "kind": "order"}, 2},
		{"notifications_failed_total", map[string]string{"channel": "push", "kind": "order"}, 1},
		{"notifications_skipped_total", map[string]string{"channel": "push", "kind": "menu"}, 1},
		{"notifications_sent_total", map[string]string{"channel": "push", "kind": "order"}, 0},
	}
	for _, tc := range tests {
		if got := counterValue(t, reg, tc.name, tc.labels); got != tc.want {
			t.Fatalf("%s%v: expected %v, got %v", tc.name, tc.labels, tc.want, got)
		}
	}
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("expected MustRegister to panic on a second registration")
		}
	}()
	metrics.New(reg)
}
