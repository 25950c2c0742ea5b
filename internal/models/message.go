package models

import "time"

type MessageStatus string

const (
	MessageStatusScheduled MessageStatus = "scheduled"
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
	MessageStatusFailed    MessageStatus = "failed"
	MessageStatusCanceled  MessageStatus = "canceled"
)

// statusRanks orders the success chain. Terminal states carry no rank; they
// override via IsTerminal instead.
var statusRanks = map[MessageStatus]int{
	MessageStatusScheduled: 0,
	MessageStatusPending:   1,
	MessageStatusSent:      2,
	MessageStatusDelivered: 3,
	MessageStatusRead:      4,
}

// Rank returns the position of a status in the success chain, or -1 for
// terminal and unknown statuses.
func (s MessageStatus) Rank() int {
	if r, ok := statusRanks[s]; ok {
		return r
	}
	return -1
}

// IsTerminal reports whether a status ends the message lifecycle.
func (s MessageStatus) IsTerminal() bool {
	return s == MessageStatusFailed || s == MessageStatusCanceled
}

// IsValid reports whether s is a known lifecycle status.
func (s MessageStatus) IsValid() bool {
	return s.Rank() >= 0 || s.IsTerminal()
}

// ScheduledMessage is a single outbound message owned by the message store.
// ContentSnapshot and ImagePathSnapshot are captured from the template at
// scheduling time and never re-derived, so later template edits do not
// rewrite history. ExternalID is assigned once by the messaging channel at
// dispatch and immutable afterwards.
type ScheduledMessage struct {
	ID                string        `json:"id"`
	ContactID         string        `json:"contactId"`
	TemplateID        string        `json:"templateId"`
	ContentSnapshot   string        `json:"contentSnapshot"`
	ImagePathSnapshot *string       `json:"imagePathSnapshot,omitempty"`
	Status            MessageStatus `json:"status"`
	ScheduledTime     time.Time     `json:"scheduledTime"`
	SentTime          *time.Time    `json:"sentTime,omitempty"`
	DeliveredTime     *time.Time    `json:"deliveredTime,omitempty"`
	ReadTime          *time.Time    `json:"readTime,omitempty"`
	ExternalID        *string       `json:"externalId,omitempty"`
	ErrorMessage      *string       `json:"errorMessage,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}
