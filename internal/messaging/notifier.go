package messaging

import (
	"context"
	"strings"

	"rideshare/internal/utils"
)

// Channel names a delivery medium for a Notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Notification is one outbound message job. Delivery is done by a worker consuming
// the queue, not by this service.
type Notification struct {
	Channel   Channel           `json:"channel"`
	Recipient string            `json:"recipient"`
	Template  string            `json:"template"`
	Data      map[string]string `json:"data,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier only logs the job; used when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) error {
	utils.LogEvent(n.RequestID, "notify", string(n.Channel), "queued to log", "template", n.Template, "recipient", maskRecipient(n.Recipient))
	return nil
}

// maskRecipient keeps just enough of an address or number to debug with.
func maskRecipient(r string) string {
	r = strings.TrimSpace(r)
	if at := strings.IndexByte(r, '@'); at > 0 {
		return r[:1] + "***" + r[at:]
	}
	if len(r) > 4 {
		return strings.Repeat("*", len(r)-4) + r[len(r)-4:]
	}
	return "****"
}
