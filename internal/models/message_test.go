package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageStatus_Rank(t *testing.T) {
	assert.Equal(t, 0, MessageStatusScheduled.Rank())
	assert.Equal(t, 1, MessageStatusPending.Rank())
	assert.Equal(t, 2, MessageStatusSent.Rank())
	assert.Equal(t, 3, MessageStatusDelivered.Rank())
	assert.Equal(t, 4, MessageStatusRead.Rank())

	assert.Equal(t, -1, MessageStatusFailed.Rank())
	assert.Equal(t, -1, MessageStatusCanceled.Rank())
	assert.Equal(t, -1, MessageStatus("bogus").Rank())
}

func TestMessageStatus_IsTerminal(t *testing.T) {
	assert.True(t, MessageStatusFailed.IsTerminal())
	assert.True(t, MessageStatusCanceled.IsTerminal())

	for _, s := range []MessageStatus{
		MessageStatusScheduled,
		MessageStatusPending,
		MessageStatusSent,
		MessageStatusDelivered,
		MessageStatusRead,
	} {
		assert.False(t, s.IsTerminal(), "status %s", s)
	}
}

func TestMessageStatus_IsValid(t *testing.T) {
	for _, s := range []MessageStatus{
		MessageStatusScheduled,
		MessageStatusPending,
		MessageStatusSent,
		MessageStatusDelivered,
		MessageStatusRead,
		MessageStatusFailed,
		MessageStatusCanceled,
	} {
		assert.True(t, s.IsValid(), "status %s", s)
	}

	assert.False(t, MessageStatus("").IsValid())
	assert.False(t, MessageStatus("queued").IsValid())
}
