package domain

import "encoding/json"

// TemplateName identifies a message template pre-registered in WhatsApp Business Manager.
type TemplateName string

const (
	TemplateOTPVerification       TemplateName = "otp_verification"
	TemplateOrderConfirmed        TemplateName = "order_confirmed"
	TemplateOrderPreparing        TemplateName = "order_preparing"
	TemplateOrderOutForDelivery   TemplateName = "order_out_for_delivery"
	TemplateOrderDelivered        TemplateName = "order_delivered"
	TemplateOrderCancelled        TemplateName = "order_cancelled"
	TemplateSubscriptionActivated TemplateName = "subscription_activated"
	TemplateSubscriptionRenewal   TemplateName = "subscription_renewal"
	TemplateSubscriptionExpiring  TemplateName = "subscription_expiring"
	TemplateSubscriptionExpired   TemplateName = "subscription_expired"
	TemplatePaymentSuccess        TemplateName = "payment_success"
	TemplatePaymentFailed         TemplateName = "payment_failed"
	TemplateDailyMenuUpdate       TemplateName = "daily_menu_update"
	TemplatePromotionalOffer      TemplateName = "promotional_offer"
	TemplateWalletCredited        TemplateName = "wallet_credited"
	TemplateReferralReward        TemplateName = "referral_reward"
)

// ParameterType is the kind of value filling a positional template placeholder.
type ParameterType string

const (
	ParameterText  ParameterType = "text"
	ParameterImage ParameterType = "image"
)

type Image struct {
	Link string `json:"link"`
}

// Parameter fills one positional placeholder of a template. Order within a
// component is a contract with the registered template and is not checked locally.
type Parameter struct {
	Type  ParameterType `json:"type"`
	Text  string        `json:"text,omitempty"`
	Image *Image        `json:"image,omitempty"`
}

// MarshalJSON always writes text for a text parameter, even when empty, since
// the Graph API rejects a text parameter without it.
func (p Parameter) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type  ParameterType `json:"type"`
		Text  *string       `json:"text,omitempty"`
		Image *Image        `json:"image,omitempty"`
	}
	w := wire{Type: p.Type, Image: p.Image}
	if p.Type == ParameterText {
		w.Text = &p.Text
	}
	return json.Marshal(w)
}

// TextParam is shorthand for a text placeholder value.
func TextParam(s string) Parameter {
	return Parameter{Type: ParameterText, Text: s}
}

// URLButton fills the dynamic suffix of a template URL button (used by the
// OTP template's copy-code button).
type URLButton struct {
	Index      int
	Parameters []Parameter
}

// TemplateMessage is everything the WhatsApp channel needs apart from the phone number.
type TemplateMessage struct {
	Name       TemplateName
	Parameters []Parameter
	Buttons    []URLButton
}

// PushPayload is the channel-specific content for a device push notification.
type PushPayload struct {
	Title string
	Body  string
	Data  map[string]string
	// Category maps to the iOS notification category registered by the app.
	Category string
	// AndroidChannel is the notification channel id registered by the app.
	AndroidChannel string
}

// Message holds one event rendered for both channels.
type Message struct {
	WhatsApp TemplateMessage
	Push     PushPayload
}
