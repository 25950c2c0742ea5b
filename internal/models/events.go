package models

import "time"

// Channel event types pushed by the external messaging channel.
const (
	EventStatusUpdate = "message-status-update"
	EventMessageSent  = "message-sent"
)

// StatusEvent is one delivery-state notification from the external channel.
// Events arrive asynchronously and may be duplicated or out of order; the
// reconciler sorts that out.
type StatusEvent struct {
	ExternalID    string        `json:"externalId"`
	Status        MessageStatus `json:"status"`
	Timestamp     time.Time     `json:"timestamp"`
	SentTime      *time.Time    `json:"sentTime,omitempty"`
	DeliveredTime *time.Time    `json:"deliveredTime,omitempty"`
	ReadTime      *time.Time    `json:"readTime,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// ChannelEvent is the envelope the channel wraps around every push payload.
type ChannelEvent struct {
	Event     string      `json:"event"`
	Timestamp int64       `json:"timestamp"`
	Payload   StatusEvent `json:"payload"`
}
