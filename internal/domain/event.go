package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind is the notification-type tag used by batch sends and the HTTP surface.
type Kind string

const (
	KindOrder        Kind = "order"
	KindSubscription Kind = "subscription"
	KindPayment      Kind = "payment"
	KindPromotion    Kind = "promotion"
	KindMenu         Kind = "menu"
	KindWallet       Kind = "wallet"
	KindReferral     Kind = "referral"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindOrder, KindSubscription, KindPayment, KindPromotion, KindMenu, KindWallet, KindReferral:
		return true
	}
	return false
}

// Event is the closed set of domain events the dispatcher knows how to deliver.
// Only types in this package can implement it.
type Event interface {
	Kind() Kind
	isEvent()
}

type OrderStatus string

const (
	OrderConfirmed      OrderStatus = "confirmed"
	OrderPreparing      OrderStatus = "preparing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

type OrderEvent struct {
	OrderID      string      `json:"order_id"`
	Status       OrderStatus `json:"status"`
	Items        string      `json:"items,omitempty"`
	TotalAmount  string      `json:"total_amount,omitempty"`
	DeliveryTime string      `json:"delivery_time,omitempty"`
	TrackingURL  string      `json:"tracking_url,omitempty"`
}

type SubscriptionStatus string

const (
	SubscriptionActivated SubscriptionStatus = "activated"
	SubscriptionRenewal   SubscriptionStatus = "renewal"
	SubscriptionExpiring  SubscriptionStatus = "expiring"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

type SubscriptionEvent struct {
	PlanName      string             `json:"plan_name"`
	Status        SubscriptionStatus `json:"status"`
	StartDate     string             `json:"start_date,omitempty"`
	EndDate       string             `json:"end_date,omitempty"`
	DaysRemaining int                `json:"days_remaining,omitempty"`
	RenewalAmount string             `json:"renewal_amount,omitempty"`
}

type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "success"
	// PaymentCompleted is what the payment gateway webhook writes; it is delivered as a success.
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type PaymentEvent struct {
	Status        PaymentStatus `json:"status"`
	Amount        string        `json:"amount"`
	OrderID       string        `json:"order_id"`
	TransactionID string        `json:"transaction_id,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`
}

type PromotionEvent struct {
	Title            string `json:"title"`
	Message          string `json:"message"`
	OfferCode        string `json:"offer_code,omitempty"`
	OfferDescription string `json:"offer_description,omitempty"`
	DiscountCode     string `json:"discount_code,omitempty"`
	ValidUntil       string `json:"valid_until,omitempty"`
	ImageURL         string `json:"image_url,omitempty"`
}

type MenuEvent struct {
	Date      string `json:"date"`
	MenuItems string `json:"menu_items"`
}

type WalletEvent struct {
	Amount     string `json:"amount"`
	Reason     string `json:"reason"`
	NewBalance string `json:"new_balance"`
}

type ReferralEvent struct {
	Amount           string `json:"amount"`
	ReferredUserName string `json:"referred_user_name"`
}

func (OrderEvent) Kind() Kind        { return KindOrder }
func (SubscriptionEvent) Kind() Kind { return KindSubscription }
func (PaymentEvent) Kind() Kind      { return KindPayment }
func (PromotionEvent) Kind() Kind    { return KindPromotion }
func (MenuEvent) Kind() Kind         { return KindMenu }
func (WalletEvent) Kind() Kind       { return KindWallet }
func (ReferralEvent) Kind() Kind     { return KindReferral }

func (OrderEvent) isEvent()        {}
func (SubscriptionEvent) isEvent() {}
func (PaymentEvent) isEvent()      {}
func (PromotionEvent) isEvent()    {}
func (MenuEvent) isEvent()         {}
func (WalletEvent) isEvent()       {}
func (ReferralEvent) isEvent()     {}

// DecodeEvent unmarshals raw details into the event variant selected by kind.
// Unknown fields are rejected so a payload meant for another kind fails loudly
// instead of producing an empty template.
func DecodeEvent(kind Kind, raw json.RawMessage) (Event, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}

	var ev Event
	var err error
	switch kind {
	case KindOrder:
		ev, err = decodeInto[OrderEvent](raw)
	case KindSubscription:
		ev, err = decodeInto[SubscriptionEvent](raw)
	case KindPayment:
		ev, err = decodeInto[PaymentEvent](raw)
	case KindPromotion:
		ev, err = decodeInto[PromotionEvent](raw)
	case KindMenu:
		ev, err = decodeInto[MenuEvent](raw)
	case KindWallet:
		ev, err = decodeInto[WalletEvent](raw)
	case KindReferral:
		ev, err = decodeInto[ReferralEvent](raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDetails, err)
	}
	return ev, nil
}

func decodeInto[T Event](raw json.RawMessage) (Event, error) {
	var v T
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("details are required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
