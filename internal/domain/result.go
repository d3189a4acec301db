package domain

// ChannelResult reports the outcome of one channel for one recipient.
//
// Skipped is set when the recipient had no address for the channel; no call
// was made and Error stays empty.
type ChannelResult struct {
	Success   bool   `json:"success"`
	Skipped   bool   `json:"skipped,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is the flat per-recipient report. It is not persisted.
type Result struct {
	Push     ChannelResult `json:"push"`
	WhatsApp ChannelResult `json:"whatsapp"`
}

// Failed reports whether any attempted channel failed.
func (r Result) Failed() bool {
	return r.Push.Error != "" || r.WhatsApp.Error != ""
}

// BatchResult is one entry of a batch fan-out, keyed by user id.
type BatchResult struct {
	Recipient string `json:"recipient"`
	Result
}

// FailedResult marks every channel failed with the same message.
func FailedResult(msg string) Result {
	return Result{
		Push:     ChannelResult{Error: msg},
		WhatsApp: ChannelResult{Error: msg},
	}
}
