package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campaigner/internal/constants"
	"campaigner/internal/errors"
	"campaigner/internal/models"
	"campaigner/internal/privacy"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MessageDatabase is the backing store surface the message service needs.
type MessageDatabase interface {
	SaveMessage(ctx context.Context, msg *models.ScheduledMessage) error
	GetMessage(ctx context.Context, id string) (*models.ScheduledMessage, error)
	GetMessages(ctx context.Context) ([]*models.ScheduledMessage, error)
	UpdateMessage(ctx context.Context, msg *models.ScheduledMessage) error
	DeleteMessage(ctx context.Context, id string) error
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	GetContact(ctx context.Context, id string) (*models.Contact, error)
}

// MessageService owns the scheduled-message collection and its lifecycle
// state machine. All mutations are serialized through one mutex, so the store
// behaves as a single logical owner: scheduling requests, reconciliation
// events and bulk operations are applied one at a time.
type MessageService struct {
	logger *logrus.Logger
	db     MessageDatabase

	mu         sync.Mutex
	byID       map[string]*models.ScheduledMessage
	byExternal map[string]string // externalID -> message ID
}

func NewMessageService(db MessageDatabase, logger *logrus.Logger) *MessageService {
	return &MessageService{
		logger:     logger,
		db:         db,
		byID:       make(map[string]*models.ScheduledMessage),
		byExternal: make(map[string]string),
	}
}

// Reload replaces the in-memory view with the authoritative backing store
// contents.
func (s *MessageService) Reload(ctx context.Context) error {
	messages, err := s.db.GetMessages(ctx)
	if err != nil {
		return errors.NewStoreError("reload messages", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID = make(map[string]*models.ScheduledMessage, len(messages))
	s.byExternal = make(map[string]string)
	for _, msg := range messages {
		s.byID[msg.ID] = msg
		if msg.ExternalID != nil {
			s.byExternal[*msg.ExternalID] = msg.ID
		}
	}
	return nil
}

// Schedule creates one SCHEDULED message per contact, spaced by the sending
// window starting at baseTime. The template content is snapshotted per
// contact at call time; later template edits do not touch these messages.
// Per-contact failures are collected, never aborting the rest; a window
// configuration error is fatal and aborts the whole request.
func (s *MessageService) Schedule(ctx context.Context, contactIDs []string, templateID string, cfg *models.SendingWindowConfig, baseTime time.Time) (*models.ScheduleResult, error) {
	tmpl, err := s.db.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, errors.NewStoreError("get template", err)
	}
	if tmpl == nil {
		return nil, errors.NewNotFoundError("template", templateID)
	}

	times, err := ScheduleBatch(cfg, len(contactIDs), baseTime)
	if err != nil {
		return nil, err
	}

	result := &models.ScheduleResult{Total: len(contactIDs)}
	for i, contactID := range contactIDs {
		if err := s.scheduleOne(ctx, contactID, tmpl, times[i]); err != nil {
			result.Errors++
			result.Reasons = append(result.Reasons, fmt.Sprintf("contact %s: %v", contactID, err))
			s.logger.WithError(err).WithField("contactId", contactID).Warn("Failed to schedule message")
			continue
		}
		result.Scheduled++
	}
	return result, nil
}

func (s *MessageService) scheduleOne(ctx context.Context, contactID string, tmpl *models.Template, at time.Time) error {
	contact, err := s.db.GetContact(ctx, contactID)
	if err != nil {
		return errors.NewStoreError("get contact", err)
	}
	if contact == nil {
		return errors.NewNotFoundError("contact", contactID)
	}

	now := time.Now()
	msg := &models.ScheduledMessage{
		ID:                uuid.NewString(),
		ContactID:         contactID,
		TemplateID:        tmpl.ID,
		ContentSnapshot:   tmpl.Render(contact),
		ImagePathSnapshot: tmpl.ImagePath,
		Status:            models.MessageStatusScheduled,
		ScheduledTime:     at,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.db.SaveMessage(ctx, msg); err != nil {
		return errors.NewStoreError("save message", err)
	}

	s.mu.Lock()
	s.byID[msg.ID] = msg
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"messageId": msg.ID,
		"phone":     privacy.MaskPhoneNumber(contact.PhoneNumber),
		"time":      at,
	}).Debug("Message scheduled")
	return nil
}

// Cancel stops a message that has not been handed to the channel yet. Only
// SCHEDULED and PENDING messages can be canceled; anything else is a
// conflict.
func (s *MessageService) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.byID[id]
	if !ok {
		return errors.NewNotFoundError("message", id)
	}
	if msg.Status != models.MessageStatusScheduled && msg.Status != models.MessageStatusPending {
		return errors.NewIllegalTransitionError(string(msg.Status), string(models.MessageStatusCanceled))
	}

	updated := *msg
	updated.Status = models.MessageStatusCanceled
	if err := s.db.UpdateMessage(ctx, &updated); err != nil {
		return errors.NewStoreError("cancel message", err)
	}
	*msg = updated
	return nil
}

// Retry re-enters a FAILED message into the dispatch path: status goes back
// to PENDING and the error is cleared. Any other status is a conflict.
func (s *MessageService) Retry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.byID[id]
	if !ok {
		return errors.NewNotFoundError("message", id)
	}
	if msg.Status != models.MessageStatusFailed {
		return errors.NewIllegalTransitionError(string(msg.Status), string(models.MessageStatusPending))
	}

	updated := *msg
	updated.Status = models.MessageStatusPending
	updated.ErrorMessage = nil
	if err := s.db.UpdateMessage(ctx, &updated); err != nil {
		return errors.NewStoreError("retry message", err)
	}
	*msg = updated
	return nil
}

// BulkDelete removes messages regardless of status, in chunks, continuing
// past individual failures. progressFn, when set, is invoked after every
// chunk with the running totals.
func (s *MessageService) BulkDelete(ctx context.Context, ids []string, progressFn func(models.BulkResult)) models.BulkResult {
	result := models.BulkResult{Total: len(ids)}

	for start := 0; start < len(ids); start += constants.DefaultDeleteChunkSize {
		end := start + constants.DefaultDeleteChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		for _, id := range ids[start:end] {
			if err := s.deleteOne(ctx, id); err != nil {
				result.Errors++
				s.logger.WithError(err).WithField("messageId", id).Warn("Failed to delete message")
				continue
			}
			result.Deleted++
		}
		if progressFn != nil {
			progressFn(result)
		}
	}
	return result
}

func (s *MessageService) deleteOne(ctx context.Context, id string) error {
	if err := s.db.DeleteMessage(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if msg, ok := s.byID[id]; ok {
		if msg.ExternalID != nil {
			delete(s.byExternal, *msg.ExternalID)
		}
		delete(s.byID, id)
	}
	s.mu.Unlock()
	return nil
}

// ClaimDue returns up to limit messages ready for dispatch at now: due
// SCHEDULED messages (promoted to PENDING) plus messages already PENDING from
// an earlier claim or a retry.
func (s *MessageService) ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.ScheduledMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var claimed []models.ScheduledMessage
	for _, msg := range s.byID {
		if len(claimed) >= limit {
			break
		}
		switch msg.Status {
		case models.MessageStatusPending:
			claimed = append(claimed, *msg)
		case models.MessageStatusScheduled:
			if msg.ScheduledTime.After(now) {
				continue
			}
			updated := *msg
			updated.Status = models.MessageStatusPending
			if err := s.db.UpdateMessage(ctx, &updated); err != nil {
				return claimed, errors.NewStoreError("claim message", err)
			}
			*msg = updated
			claimed = append(claimed, updated)
		}
	}
	return claimed, nil
}

// MarkDispatched records the channel-assigned external ID and moves the
// message to SENT. The external ID is assigned exactly once; a message that
// already has one keeps it. Terminal states are left untouched, so a message
// canceled while the send was in flight stays canceled.
func (s *MessageService) MarkDispatched(ctx context.Context, id, externalID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.byID[id]
	if !ok {
		return errors.NewNotFoundError("message", id)
	}
	if msg.Status.IsTerminal() {
		return nil
	}

	updated := *msg
	if updated.ExternalID == nil {
		updated.ExternalID = &externalID
	}
	applyStatus(&updated, models.MessageStatusSent, at)

	if err := s.db.UpdateMessage(ctx, &updated); err != nil {
		return errors.NewStoreError("mark dispatched", err)
	}
	*msg = updated
	s.byExternal[*msg.ExternalID] = msg.ID

	s.logger.WithFields(logrus.Fields{
		"messageId":  msg.ID,
		"externalId": privacy.MaskExternalID(*msg.ExternalID),
	}).Debug("Message dispatched")
	return nil
}

// MarkFailed moves a message to FAILED with the given reason. Terminal
// states are left untouched.
func (s *MessageService) MarkFailed(ctx context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.byID[id]
	if !ok {
		return errors.NewNotFoundError("message", id)
	}
	if msg.Status.IsTerminal() {
		return nil
	}

	updated := *msg
	updated.Status = models.MessageStatusFailed
	updated.ErrorMessage = &reason
	if err := s.db.UpdateMessage(ctx, &updated); err != nil {
		return errors.NewStoreError("mark failed", err)
	}
	*msg = updated
	return nil
}

// ApplyEvent applies one delivery event under the monotonic-rank rule: the
// update lands only if the event outranks the current status or carries a
// terminal status. Repeated and out-of-order events are no-ops. The returned
// bool reports whether anything changed.
func (s *MessageService) ApplyEvent(ctx context.Context, event *models.StatusEvent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byExternal[event.ExternalID]
	if !ok {
		return false, errors.NewNotFoundError("message", event.ExternalID)
	}
	msg := s.byID[id]

	if !event.Status.IsValid() {
		return false, errors.NewValidationError("status", fmt.Sprintf("unknown status %q", event.Status))
	}

	if msg.Status.IsTerminal() {
		return false, nil // terminal states are frozen
	}
	if !event.Status.IsTerminal() && event.Status.Rank() <= msg.Status.Rank() {
		return false, nil // stale or duplicate, discard silently
	}

	updated := *msg
	applyStatus(&updated, event.Status, event.Timestamp)
	// Event-provided timestamps win over the envelope time, still first
	// write only.
	setTimeOnce(&updated.SentTime, event.SentTime)
	setTimeOnce(&updated.DeliveredTime, event.DeliveredTime)
	setTimeOnce(&updated.ReadTime, event.ReadTime)
	if event.Status == models.MessageStatusFailed && event.Error != "" {
		reason := event.Error
		updated.ErrorMessage = &reason
	}

	if err := s.db.UpdateMessage(ctx, &updated); err != nil {
		return false, errors.NewStoreError("apply status event", err)
	}
	*msg = updated
	return true, nil
}

// applyStatus sets the new status and stamps the matching timestamp field,
// first write wins.
func applyStatus(msg *models.ScheduledMessage, status models.MessageStatus, at time.Time) {
	msg.Status = status
	stamp := at
	switch status {
	case models.MessageStatusSent:
		setTimeOnce(&msg.SentTime, &stamp)
	case models.MessageStatusDelivered:
		setTimeOnce(&msg.DeliveredTime, &stamp)
	case models.MessageStatusRead:
		setTimeOnce(&msg.ReadTime, &stamp)
	}
}

func setTimeOnce(field **time.Time, value *time.Time) {
	if *field != nil || value == nil {
		return
	}
	v := *value
	*field = &v
}

// GetMessage returns a copy of one message.
func (s *MessageService) GetMessage(id string) (*models.ScheduledMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	copied := *msg
	return &copied, true
}

// GetByExternalID returns a copy of the message correlated to a channel ID.
func (s *MessageService) GetByExternalID(externalID string) (*models.ScheduledMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byExternal[externalID]
	if !ok {
		return nil, false
	}
	copied := *s.byID[id]
	return &copied, true
}

// Snapshot returns copies of all messages, unordered.
func (s *MessageService) Snapshot() []models.ScheduledMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ScheduledMessage, 0, len(s.byID))
	for _, msg := range s.byID {
		out = append(out, *msg)
	}
	return out
}
