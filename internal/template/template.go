// Package template maps domain events to channel messages: a WhatsApp template
// name with its positional parameters, and a push title/body/data payload.
//
// Parameter order is a contract with the templates registered in WhatsApp
// Business Manager. Every function here is pure.
package template

import (
	"fmt"
	"strconv"

	"github.com/sameoldbox/notify-dispatch/internal/domain"
)

const rupee = "₹"

// Build renders ev for recipient r. An event whose status has no template
// returns one of the domain status errors and nothing else.
func Build(r domain.Recipient, ev domain.Event) (*domain.Message, error) {
	switch e := ev.(type) {
	case domain.OrderEvent:
		return buildOrder(r, e)
	case domain.SubscriptionEvent:
		return buildSubscription(r, e)
	case domain.PaymentEvent:
		return buildPayment(r, e)
	case domain.PromotionEvent:
		return buildPromotion(r, e), nil
	case domain.MenuEvent:
		return buildMenu(r, e), nil
	case domain.WalletEvent:
		return buildWallet(r, e), nil
	case domain.ReferralEvent:
		return buildReferral(r, e), nil
	case nil:
		return nil, domain.ErrInvalidDetails
	}
	// Unreachable while Event stays sealed.
	return nil, fmt.Errorf("%w: %T", domain.ErrInvalidKind, ev)
}

func buildOrder(r domain.Recipient, e domain.OrderEvent) (*domain.Message, error) {
	name := r.DisplayName()
	msg := &domain.Message{
		Push: domain.PushPayload{
			Data: map[string]string{
				"type":    "order_update",
				"orderId": e.OrderID,
				"status":  string(e.Status),
				"screen":  "orders",
			},
			Category:       "ORDER_UPDATE",
			AndroidChannel: "orders",
		},
	}

	switch e.Status {
	case domain.OrderConfirmed:
		msg.WhatsApp = whatsapp(domain.TemplateOrderConfirmed,
			name,
			e.OrderID,
			orDefault(e.Items, "Your meal"),
			rupee+orDefault(e.TotalAmount, "0"),
			orDefault(e.DeliveryTime, "Soon"),
		)
		msg.Push.Title = "🎉 Order Confirmed!"
		msg.Push.Body = fmt.Sprintf("Hi %s! Your order #%s has been confirmed.", name, e.OrderID)
	case domain.OrderPreparing:
		msg.WhatsApp = whatsapp(domain.TemplateOrderPreparing, name, e.OrderID)
		msg.Push.Title = "👨‍🍳 Preparing Your Order"
		msg.Push.Body = fmt.Sprintf("Your order #%s is being prepared with love!", e.OrderID)
	case domain.OrderOutForDelivery:
		msg.WhatsApp = whatsapp(domain.TemplateOrderOutForDelivery,
			name,
			e.OrderID,
			orDefault(e.DeliveryTime, "30 minutes"),
		)
		msg.Push.Title = "🚚 On the Way!"
		msg.Push.Body = fmt.Sprintf("Your order #%s is out for delivery. It will arrive soon!", e.OrderID)
	case domain.OrderDelivered:
		msg.WhatsApp = whatsapp(domain.TemplateOrderDelivered, name, e.OrderID)
		msg.Push.Title = "✅ Order Delivered"
		msg.Push.Body = fmt.Sprintf("Your order #%s has been delivered. Enjoy your meal!", e.OrderID)
	case domain.OrderCancelled:
		msg.WhatsApp = whatsapp(domain.TemplateOrderCancelled, name, e.OrderID)
		msg.Push.Title = "❌ Order Cancelled"
		msg.Push.Body = fmt.Sprintf("Your order #%s has been cancelled.", e.OrderID)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOrderStatus, e.Status)
	}

	if e.TrackingURL != "" {
		msg.Push.Data["trackingUrl"] = e.TrackingURL
	}
	return msg, nil
}

func buildSubscription(r domain.Recipient, e domain.SubscriptionEvent) (*domain.Message, error) {
	name := r.DisplayName()
	plan := orDefault(e.PlanName, "Your subscription")
	msg := &domain.Message{
		Push: domain.PushPayload{
			Data: map[string]string{
				"type":     "subscription_update",
				"planName": plan,
				"status":   string(e.Status),
				"screen":   "subscription",
			},
			Category:       "SUBSCRIPTION_UPDATE",
			AndroidChannel: "subscriptions",
		},
	}

	switch e.Status {
	case domain.SubscriptionActivated:
		msg.WhatsApp = whatsapp(domain.TemplateSubscriptionActivated,
			name,
			plan,
			orDefault(e.StartDate, "Today"),
			orDefault(e.EndDate, "N/A"),
		)
		msg.Push.Title = "🎊 Subscription Activated!"
		msg.Push.Body = fmt.Sprintf("Your %s subscription is now active. Enjoy your meals!", plan)
	case domain.SubscriptionRenewal:
		msg.WhatsApp = whatsapp(domain.TemplateSubscriptionRenewal,
			name,
			plan,
			rupee+orDefault(e.RenewalAmount, "0"),
		)
		msg.Push.Title = "🔄 Subscription Renewed"
		msg.Push.Body = fmt.Sprintf("Your %s subscription has been renewed successfully.", plan)
	case domain.SubscriptionExpiring:
		days := e.DaysRemaining
		if days <= 0 {
			days = 3
		}
		msg.WhatsApp = whatsapp(domain.TemplateSubscriptionExpiring, name, plan, strconv.Itoa(days))
		msg.Push.Title = "⏰ Subscription Expiring Soon"
		msg.Push.Body = fmt.Sprintf("Your %s subscription will expire in %d days.", plan, days)
	case domain.SubscriptionExpired:
		msg.WhatsApp = whatsapp(domain.TemplateSubscriptionExpired, name, plan)
		msg.Push.Title = "⚠️ Subscription Expired"
		msg.Push.Body = fmt.Sprintf("Your %s subscription has expired. Renew now to continue enjoying meals.", plan)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSubscriptionStatus, e.Status)
	}
	return msg, nil
}

func buildPayment(r domain.Recipient, e domain.PaymentEvent) (*domain.Message, error) {
	name := r.DisplayName()
	amount := rupee + e.Amount
	msg := &domain.Message{
		Push: domain.PushPayload{
			Data: map[string]string{
				"type":    "payment_update",
				"status":  string(e.Status),
				"orderId": e.OrderID,
				"amount":  e.Amount,
				"screen":  "wallet",
			},
			Category:       "PAYMENT_UPDATE",
			AndroidChannel: "orders",
		},
	}

	switch e.Status {
	case domain.PaymentSuccess, domain.PaymentCompleted:
		msg.WhatsApp = whatsapp(domain.TemplatePaymentSuccess,
			name,
			amount,
			e.OrderID,
			orDefault(e.TransactionID, "N/A"),
		)
		msg.Push.Title = "✅ Payment Successful"
		msg.Push.Body = fmt.Sprintf("Your payment of %s for order #%s was successful.", amount, e.OrderID)
	case domain.PaymentFailed:
		msg.WhatsApp = whatsapp(domain.TemplatePaymentFailed,
			name,
			amount,
			e.OrderID,
			orDefault(e.FailureReason, "Unknown error"),
		)
		msg.Push.Title = "❌ Payment Failed"
		msg.Push.Body = fmt.Sprintf("Payment of %s for order #%s failed. Please try again.", amount, e.OrderID)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentStatus, e.Status)
	}
	return msg, nil
}

func buildPromotion(r domain.Recipient, e domain.PromotionEvent) *domain.Message {
	code := orDefault(e.OfferCode, orDefault(e.DiscountCode, "SPECIAL"))
	data := map[string]string{
		"type":   "promotion",
		"screen": "menu",
	}
	if e.OfferCode != "" {
		data["offerCode"] = e.OfferCode
	}
	if e.ImageURL != "" {
		data["imageUrl"] = e.ImageURL
	}

	return &domain.Message{
		WhatsApp: whatsapp(domain.TemplatePromotionalOffer,
			r.DisplayName(),
			e.Title,
			e.Message,
			code,
			orDefault(e.ValidUntil, "7 days"),
		),
		Push: domain.PushPayload{
			Title:          "🎁 " + e.Title,
			Body:           e.Message,
			Data:           data,
			Category:       "PROMOTION",
			AndroidChannel: "promotions",
		},
	}
}

func buildMenu(r domain.Recipient, e domain.MenuEvent) *domain.Message {
	return &domain.Message{
		WhatsApp: whatsapp(domain.TemplateDailyMenuUpdate, r.DisplayName(), e.Date, e.MenuItems),
		Push: domain.PushPayload{
			Title: "🍽️ Today's Menu",
			Body:  "Check out today's delicious meals: " + e.MenuItems,
			Data: map[string]string{
				"type":   "menu_update",
				"date":   e.Date,
				"screen": "menu",
			},
			Category:       "MENU_UPDATE",
			AndroidChannel: "default",
		},
	}
}

func buildWallet(r domain.Recipient, e domain.WalletEvent) *domain.Message {
	return &domain.Message{
		WhatsApp: whatsapp(domain.TemplateWalletCredited,
			r.DisplayName(),
			rupee+e.Amount,
			e.Reason,
			rupee+e.NewBalance,
		),
		Push: domain.PushPayload{
			Title: "💰 Wallet Credited",
			Body:  fmt.Sprintf("%s%s added to your wallet. %s. New balance: %s%s", rupee, e.Amount, e.Reason, rupee, e.NewBalance),
			Data: map[string]string{
				"type":   "wallet_credit",
				"amount": e.Amount,
				"reason": e.Reason,
				"screen": "wallet",
			},
			Category:       "WALLET_UPDATE",
			AndroidChannel: "default",
		},
	}
}

func buildReferral(r domain.Recipient, e domain.ReferralEvent) *domain.Message {
	return &domain.Message{
		WhatsApp: whatsapp(domain.TemplateReferralReward,
			r.DisplayName(),
			rupee+e.Amount,
			e.ReferredUserName,
		),
		Push: domain.PushPayload{
			Title: "🎉 Referral Reward!",
			Body:  fmt.Sprintf("You earned %s%s for referring %s!", rupee, e.Amount, e.ReferredUserName),
			Data: map[string]string{
				"type":   "referral_reward",
				"amount": e.Amount,
				"screen": "refer",
			},
			Category:       "REFERRAL_REWARD",
			AndroidChannel: "default",
		},
	}
}

// OTP renders the one-time-password template. The code fills the body
// placeholder and the copy-code URL button.
func OTP(code string) domain.TemplateMessage {
	msg := whatsapp(domain.TemplateOTPVerification, code)
	msg.Buttons = []domain.URLButton{{Index: 0, Parameters: []domain.Parameter{domain.TextParam(code)}}}
	return msg
}

func whatsapp(name domain.TemplateName, texts ...string) domain.TemplateMessage {
	params := make([]domain.Parameter, len(texts))
	for i, s := range texts {
		params[i] = domain.TextParam(s)
	}
	return domain.TemplateMessage{Name: name, Parameters: params}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
