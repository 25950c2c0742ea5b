package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"campaigner/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDispatcher(t *testing.T, window *models.SendingWindowConfig, ch *mockChannel) (*Dispatcher, *MessageService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewMessageService(store, testLogger())
	d := NewDispatcher(svc, store, ch, &staticWindow{cfg: window}, time.Minute, 25, testLogger())
	return d, svc, store
}

func seedDueMessage(t *testing.T, svc *MessageService, store *fakeStore, id string) {
	t.Helper()
	store.contacts["contact-1"] = &models.Contact{ID: "contact-1", PhoneNumber: "+4915551234", Name: "Ada"}
	store.seedMessage(&models.ScheduledMessage{
		ID:              id,
		ContactID:       "contact-1",
		TemplateID:      "template-1",
		ContentSnapshot: "Hello Ada!",
		Status:          models.MessageStatusScheduled,
		ScheduledTime:   time.Now().Add(-time.Minute),
	})
	require.NoError(t, svc.Reload(context.Background()))
}

func TestDispatcherSendsDueMessages(t *testing.T) {
	ch := &mockChannel{externalID: "ext-1"}
	d, svc, store := setupDispatcher(t, alwaysOpenWindow(), ch)
	seedDueMessage(t, svc, store, "m1")

	d.tick(context.Background())

	assert.Equal(t, 1, ch.textSends)
	got, ok := svc.GetByExternalID("ext-1")
	require.True(t, ok)
	assert.Equal(t, models.MessageStatusSent, got.Status)
}

func TestDispatcherSendsImageWhenSnapshotHasOne(t *testing.T) {
	ch := &mockChannel{externalID: "ext-1"}
	d, svc, store := setupDispatcher(t, alwaysOpenWindow(), ch)
	seedDueMessage(t, svc, store, "m1")

	img := "campaign.png"
	msg, _ := svc.GetMessage("m1")
	msg.ImagePathSnapshot = &img
	store.seedMessage(msg)
	require.NoError(t, svc.Reload(context.Background()))

	d.tick(context.Background())

	assert.Equal(t, 0, ch.textSends)
	assert.Equal(t, 1, ch.imageSends)
}

func TestDispatcherFailsMessageWithUnsafeImagePath(t *testing.T) {
	ch := &mockChannel{externalID: "ext-1"}
	d, svc, store := setupDispatcher(t, alwaysOpenWindow(), ch)
	seedDueMessage(t, svc, store, "m1")

	img := "../../etc/passwd"
	msg, _ := svc.GetMessage("m1")
	msg.ImagePathSnapshot = &img
	store.seedMessage(msg)
	require.NoError(t, svc.Reload(context.Background()))

	d.tick(context.Background())

	assert.Equal(t, 0, ch.imageSends)
	assert.Equal(t, 0, ch.textSends)
	got, _ := svc.GetMessage("m1")
	assert.Equal(t, models.MessageStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "traversal")
}

func TestDispatcherSkipsWhenWindowInactive(t *testing.T) {
	window := alwaysOpenWindow()
	window.IsActive = false
	ch := &mockChannel{externalID: "ext-1"}
	d, svc, store := setupDispatcher(t, window, ch)
	seedDueMessage(t, svc, store, "m1")

	d.tick(context.Background())

	assert.Equal(t, 0, ch.textSends)
	got, _ := svc.GetMessage("m1")
	assert.Equal(t, models.MessageStatusScheduled, got.Status)
}

func TestDispatcherSkipsOutsideWindow(t *testing.T) {
	// A window that never contains time.Now(): zero-width is rejected by
	// Validate, so use a one-minute slice at midnight on a day far away.
	window := alwaysOpenWindow()
	window.StartTime = 0
	window.EndTime = 1
	if time.Now().Hour() == 0 && time.Now().Minute() == 0 {
		window.StartTime = 12 * 60
		window.EndTime = 12*60 + 1
	}
	ch := &mockChannel{externalID: "ext-1"}
	d, svc, store := setupDispatcher(t, window, ch)
	seedDueMessage(t, svc, store, "m1")

	d.tick(context.Background())

	assert.Equal(t, 0, ch.textSends)
}

func TestDispatcherMarksFailedOnSendError(t *testing.T) {
	ch := &mockChannel{sendErr: fmt.Errorf("channel unavailable")}
	d, svc, store := setupDispatcher(t, alwaysOpenWindow(), ch)
	seedDueMessage(t, svc, store, "m1")

	d.tick(context.Background())

	got, _ := svc.GetMessage("m1")
	assert.Equal(t, models.MessageStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Contains(t, *got.ErrorMessage, "channel unavailable")
}

func TestDispatcherMarksFailedOnMissingContact(t *testing.T) {
	ch := &mockChannel{externalID: "ext-1"}
	d, svc, store := setupDispatcher(t, alwaysOpenWindow(), ch)
	seedDueMessage(t, svc, store, "m1")
	delete(store.contacts, "contact-1")

	d.tick(context.Background())

	assert.Equal(t, 0, ch.textSends)
	got, _ := svc.GetMessage("m1")
	assert.Equal(t, models.MessageStatusFailed, got.Status)
}

func TestDispatcherRetryReentersDispatch(t *testing.T) {
	ch := &mockChannel{sendErr: fmt.Errorf("temporary outage")}
	d, svc, store := setupDispatcher(t, alwaysOpenWindow(), ch)
	seedDueMessage(t, svc, store, "m1")

	d.tick(context.Background())
	got, _ := svc.GetMessage("m1")
	require.Equal(t, models.MessageStatusFailed, got.Status)

	require.NoError(t, svc.Retry(context.Background(), "m1"))

	ch.mu.Lock()
	ch.sendErr = nil
	ch.externalID = "ext-1"
	ch.mu.Unlock()

	d.tick(context.Background())
	got, _ = svc.GetMessage("m1")
	assert.Equal(t, models.MessageStatusSent, got.Status)
}
