package types

import "time"

// ClientConfig configures the channel HTTP client.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
}

// SendResponse is the channel's answer to a send request. ExternalID is the
// channel-assigned message identifier used to correlate later status events.
type SendResponse struct {
	ExternalID string `json:"externalId"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// Event statuses reported by the channel.
const (
	EventStatusPending   = "pending"
	EventStatusSent      = "sent"
	EventStatusDelivered = "delivered"
	EventStatusRead      = "read"
	EventStatusFailed    = "failed"
)

// StatusEvent is one delivery notification pushed over the event socket.
type StatusEvent struct {
	ExternalID    string     `json:"externalId"`
	Status        string     `json:"status"`
	Timestamp     time.Time  `json:"timestamp"`
	SentTime      *time.Time `json:"sentTime,omitempty"`
	DeliveredTime *time.Time `json:"deliveredTime,omitempty"`
	ReadTime      *time.Time `json:"readTime,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// EventEnvelope wraps every pushed payload.
type EventEnvelope struct {
	Event     string      `json:"event"`
	Timestamp int64       `json:"timestamp"`
	Payload   StatusEvent `json:"payload"`
}
