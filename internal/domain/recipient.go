package domain

// Channel is one of the independent delivery mechanisms used to reach a recipient.
type Channel string

const (
	ChannelPush     Channel = "push"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelPush, ChannelWhatsApp:
		return true
	}
	return false
}

// Recipient addresses one user. It is built by the caller for every send and
// never stored by the dispatcher.
//
// An empty Phone skips WhatsApp and an empty PushToken skips push.
type Recipient struct {
	UserID    string `json:"user_id" validate:"required"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	PushToken string `json:"push_token,omitempty"`
}

// DisplayName is the name used in templates. Users who never filled in their
// profile are greeted as "Customer".
func (r Recipient) DisplayName() string {
	if r.Name == "" {
		return "Customer"
	}
	return r.Name
}
