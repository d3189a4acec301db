package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
)

// ChannelLimiters holds one token bucket per delivery channel so a burst of
// WhatsApp sends never throttles push, and the other way round.
// Burst equals the rate: nothing is saved up above the per-second maximum.
type ChannelLimiters struct {
	limiters map[domain.Channel]*rate.Limiter
}

// New creates limiters allowing ratePerSec sends per second per channel.
// ratePerSec <= 0 disables throttling.
func New(ratePerSec int) *ChannelLimiters {
	limit, burst := rate.Inf, 0
	if ratePerSec > 0 {
		limit, burst = rate.Limit(ratePerSec), ratePerSec
	}

	return &ChannelLimiters{
		limiters: map[domain.Channel]*rate.Limiter{
			domain.ChannelPush:     rate.NewLimiter(limit, burst),
			domain.ChannelWhatsApp: rate.NewLimiter(limit, burst),
		},
	}
}

// Wait blocks until the channel's limiter grants a token.
// Returns a non-nil error only if ctx is done while waiting.
// A nil receiver or an unknown channel never blocks.
func (cl *ChannelLimiters) Wait(ctx context.Context, ch domain.Channel) error {
	if cl == nil {
		return nil
	}
	l, ok := cl.limiters[ch]
	if !ok {
		return nil
	}
	return l.Wait(ctx)
}
