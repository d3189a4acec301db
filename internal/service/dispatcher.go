package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
	"github.com/sameoldbox/notify-dispatch/internal/provider"
	"github.com/sameoldbox/notify-dispatch/internal/ratelimiter"
	"github.com/sameoldbox/notify-dispatch/internal/template"
)

// MetricHooks are the observation callbacks the dispatcher fires per channel.
// Any field may be nil.
type MetricHooks struct {
	OnSent    func(ch domain.Channel, kind domain.Kind, latency time.Duration)
	OnFailed  func(ch domain.Channel, kind domain.Kind)
	OnSkipped func(ch domain.Channel, kind domain.Kind)
}

// Dispatcher fans a domain event out to the push and WhatsApp channels.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	whatsapp provider.WhatsAppSender
	push     provider.PushSender
	limiter  *ratelimiter.ChannelLimiters
	logger   *zap.Logger
	hooks    MetricHooks
}

// NewDispatcher wires the channel clients. limiter may be nil (no throttling).
func NewDispatcher(
	whatsapp provider.WhatsAppSender,
	push provider.PushSender,
	limiter *ratelimiter.ChannelLimiters,
	logger *zap.Logger,
	hooks MetricHooks,
) *Dispatcher {
	if hooks.OnSent == nil {
		hooks.OnSent = func(domain.Channel, domain.Kind, time.Duration) {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func(domain.Channel, domain.Kind) {}
	}
	if hooks.OnSkipped == nil {
		hooks.OnSkipped = func(domain.Channel, domain.Kind) {}
	}
	return &Dispatcher{
		whatsapp: whatsapp,
		push:     push,
		limiter:  limiter,
		logger:   logger,
		hooks:    hooks,
	}
}

// Notify builds the messages for ev and delivers them to every channel the
// recipient has an address for. It never returns an error: each channel's
// outcome is reported in the Result.
//
// Push goes first, then WhatsApp; a failure on one never prevents the other.
// A build failure (e.g. an unknown status) is recorded on every channel the
// recipient has an address for, and no call is made.
func (d *Dispatcher) Notify(ctx context.Context, r domain.Recipient, ev domain.Event) domain.Result {
	log := d.logger.With(zap.String("user_id", r.UserID))

	msg, err := template.Build(r, ev)
	if err != nil {
		kind := kindOf(ev)
		log.Warn("build notification", zap.String("kind", string(kind)), zap.Error(err))
		return domain.Result{
			Push:     d.buildFailed(domain.ChannelPush, kind, r.PushToken, err),
			WhatsApp: d.buildFailed(domain.ChannelWhatsApp, kind, r.Phone, err),
		}
	}

	kind := ev.Kind()
	return domain.Result{
		Push: d.deliver(ctx, log, domain.ChannelPush, kind, r.PushToken, func(ctx context.Context) (string, error) {
			return d.push.SendPush(ctx, r.PushToken, msg.Push)
		}),
		WhatsApp: d.deliver(ctx, log.With(zap.String("template", string(msg.WhatsApp.Name))),
			domain.ChannelWhatsApp, kind, r.Phone, func(ctx context.Context) (string, error) {
				return d.whatsapp.SendTemplate(ctx, r.Phone, msg.WhatsApp)
			}),
	}
}

func (d *Dispatcher) NotifyOrderUpdate(ctx context.Context, r domain.Recipient, ev domain.OrderEvent) domain.Result {
	return d.Notify(ctx, r, ev)
}

func (d *Dispatcher) NotifySubscriptionUpdate(ctx context.Context, r domain.Recipient, ev domain.SubscriptionEvent) domain.Result {
	return d.Notify(ctx, r, ev)
}

func (d *Dispatcher) NotifyPaymentStatus(ctx context.Context, r domain.Recipient, ev domain.PaymentEvent) domain.Result {
	return d.Notify(ctx, r, ev)
}

func (d *Dispatcher) NotifyPromotion(ctx context.Context, r domain.Recipient, ev domain.PromotionEvent) domain.Result {
	return d.Notify(ctx, r, ev)
}

func (d *Dispatcher) NotifyDailyMenu(ctx context.Context, r domain.Recipient, ev domain.MenuEvent) domain.Result {
	return d.Notify(ctx, r, ev)
}

func (d *Dispatcher) NotifyWalletCredit(ctx context.Context, r domain.Recipient, ev domain.WalletEvent) domain.Result {
	return d.Notify(ctx, r, ev)
}

func (d *Dispatcher) NotifyReferralReward(ctx context.Context, r domain.Recipient, ev domain.ReferralEvent) domain.Result {
	return d.Notify(ctx, r, ev)
}

// otpKind labels OTP sends; it is not a batchable notification type.
const otpKind domain.Kind = "otp"

// SendOTP delivers the otp_verification template over WhatsApp only.
// Generating and checking the code is the caller's concern.
func (d *Dispatcher) SendOTP(ctx context.Context, phone, code string) domain.ChannelResult {
	log := d.logger.With(zap.String("template", string(domain.TemplateOTPVerification)))
	if code == "" {
		log.Warn("otp not sent", zap.Error(domain.ErrMissingOTPCode))
		d.hooks.OnFailed(domain.ChannelWhatsApp, otpKind)
		return domain.ChannelResult{Error: domain.ErrMissingOTPCode.Error()}
	}
	msg := template.OTP(code)
	return d.deliver(ctx, log, domain.ChannelWhatsApp, otpKind, phone, func(ctx context.Context) (string, error) {
		return d.whatsapp.SendTemplate(ctx, phone, msg)
	})
}

// NotifyBatch sends the same event to every recipient, one at a time and in
// input order. The returned slice has exactly one entry per recipient.
// ev must match kind; otherwise every entry is a failure and nothing is sent.
// A panic while serving one recipient fails that entry only.
func (d *Dispatcher) NotifyBatch(
	ctx context.Context,
	recipients []domain.Recipient,
	kind domain.Kind,
	ev domain.Event,
) []domain.BatchResult {
	results := make([]domain.BatchResult, 0, len(recipients))
	for _, r := range recipients {
		results = append(results, domain.BatchResult{
			Recipient: r.UserID,
			Result:    d.notifyOne(ctx, r, kind, ev),
		})
	}

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}
	d.logger.Info("batch dispatched",
		zap.String("kind", string(kind)),
		zap.Int("recipients", len(recipients)),
		zap.Int("failed", failed),
	)
	return results
}

func (d *Dispatcher) notifyOne(ctx context.Context, r domain.Recipient, kind domain.Kind, ev domain.Event) (res domain.Result) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("panic while notifying recipient",
				zap.String("user_id", r.UserID),
				zap.Any("panic", p),
			)
			res = domain.FailedResult(fmt.Sprintf("internal error: %v", p))
		}
	}()

	if ev == nil || ev.Kind() != kind {
		err := fmt.Errorf("%w: expected %q, got %q", domain.ErrKindMismatch, kind, kindOf(ev))
		d.logger.Warn("skip batch recipient", zap.String("user_id", r.UserID), zap.Error(err))
		return domain.FailedResult(err.Error())
	}
	if err := ctx.Err(); err != nil {
		return domain.FailedResult(err.Error())
	}
	return d.Notify(ctx, r, ev)
}

// deliver sends on one channel. An empty address skips the channel without
// an error and without a call.
func (d *Dispatcher) deliver(
	ctx context.Context,
	log *zap.Logger,
	ch domain.Channel,
	kind domain.Kind,
	address string,
	send func(context.Context) (string, error),
) domain.ChannelResult {
	log = log.With(zap.String("channel", string(ch)))

	if address == "" {
		log.Debug("no address for channel, skipping")
		d.hooks.OnSkipped(ch, kind)
		return domain.ChannelResult{Skipped: true}
	}

	if err := d.limiter.Wait(ctx, ch); err != nil {
		log.Warn("rate limiter wait aborted", zap.Error(err))
		d.hooks.OnFailed(ch, kind)
		return domain.ChannelResult{Error: err.Error()}
	}

	start := time.Now()
	id, err := send(ctx)
	elapsed := time.Since(start)

	if err != nil {
		log.Warn("channel send failed", zap.Error(err), zap.Duration("latency", elapsed))
		d.hooks.OnFailed(ch, kind)
		return domain.ChannelResult{Error: err.Error()}
	}

	d.hooks.OnSent(ch, kind, elapsed)
	log.Info("notification sent", zap.String("message_id", id), zap.Duration("latency", elapsed))
	return domain.ChannelResult{Success: true, MessageID: id}
}

// buildFailed reports a build error on one channel. A channel without an
// address is still a skip: it would never have been entered.
func (d *Dispatcher) buildFailed(ch domain.Channel, kind domain.Kind, address string, err error) domain.ChannelResult {
	if address == "" {
		d.hooks.OnSkipped(ch, kind)
		return domain.ChannelResult{Skipped: true}
	}
	d.hooks.OnFailed(ch, kind)
	return domain.ChannelResult{Error: err.Error()}
}

func kindOf(ev domain.Event) domain.Kind {
	if ev == nil {
		return ""
	}
	return ev.Kind()
}
