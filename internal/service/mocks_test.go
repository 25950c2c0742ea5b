package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campaigner/internal/database"
	"campaigner/internal/models"
)

// fakeStore is an in-memory stand-in for the sqlite layer. It implements
// every narrow store interface the services consume, with optional error
// injection per operation.
type fakeStore struct {
	mu sync.Mutex

	contacts  map[string]*models.Contact
	templates map[string]*models.Template
	messages  map[string]*models.ScheduledMessage
	settings  *models.SendingWindowConfig

	saveContactErr   error
	saveMessageErr   error
	updateMessageErr error
	deleteMessageErr error
	deleteContactErr error
	getMessagesErr   error

	saveContactCalls int
	getMessagesCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contacts:  make(map[string]*models.Contact),
		templates: make(map[string]*models.Template),
		messages:  make(map[string]*models.ScheduledMessage),
	}
}

func (f *fakeStore) SaveContact(ctx context.Context, contact *models.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveContactCalls++
	if f.saveContactErr != nil {
		return f.saveContactErr
	}
	for _, c := range f.contacts {
		if c.PhoneNumber == contact.PhoneNumber {
			return &database.DuplicateKeyError{Column: "phone_number"}
		}
	}
	copied := *contact
	f.contacts[contact.ID] = &copied
	return nil
}

func (f *fakeStore) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStore) GetContactByPhone(ctx context.Context, phone string) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.PhoneNumber == phone {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetContacts(ctx context.Context) ([]*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Contact, 0, len(f.contacts))
	for _, c := range f.contacts {
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeStore) UpdateContact(ctx context.Context, contact *models.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *contact
	f.contacts[contact.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteContact(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteContactErr != nil {
		return f.deleteContactErr
	}
	delete(f.contacts, id)
	return nil
}

func (f *fakeStore) SaveTemplate(ctx context.Context, tmpl *models.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.templates {
		if t.Name == tmpl.Name {
			return &database.DuplicateKeyError{Column: "name"}
		}
	}
	copied := *tmpl
	f.templates[tmpl.ID] = &copied
	return nil
}

func (f *fakeStore) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.templates[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) GetTemplates(ctx context.Context) ([]*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Template, 0, len(f.templates))
	for _, t := range f.templates {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeStore) UpdateTemplate(ctx context.Context, tmpl *models.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *tmpl
	f.templates[tmpl.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteTemplate(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.templates, id)
	return nil
}

func (f *fakeStore) SaveMessage(ctx context.Context, msg *models.ScheduledMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveMessageErr != nil {
		return f.saveMessageErr
	}
	copied := *msg
	f.messages[msg.ID] = &copied
	return nil
}

func (f *fakeStore) GetMessage(ctx context.Context, id string) (*models.ScheduledMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (f *fakeStore) GetMessages(ctx context.Context) ([]*models.ScheduledMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getMessagesCalls++
	if f.getMessagesErr != nil {
		return nil, f.getMessagesErr
	}
	out := make([]*models.ScheduledMessage, 0, len(f.messages))
	for _, m := range f.messages {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeStore) UpdateMessage(ctx context.Context, msg *models.ScheduledMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateMessageErr != nil {
		return f.updateMessageErr
	}
	if _, ok := f.messages[msg.ID]; !ok {
		return fmt.Errorf("message not found: %s", msg.ID)
	}
	copied := *msg
	f.messages[msg.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteMessage(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteMessageErr != nil {
		return f.deleteMessageErr
	}
	if _, ok := f.messages[id]; !ok {
		return fmt.Errorf("message not found: %s", id)
	}
	delete(f.messages, id)
	return nil
}

func (f *fakeStore) GetSettings(ctx context.Context) (*models.SendingWindowConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return nil, nil
	}
	copied := *f.settings
	return &copied, nil
}

func (f *fakeStore) SaveSettings(ctx context.Context, cfg *models.SendingWindowConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *cfg
	f.settings = &copied
	return nil
}

// seedMessage inserts a message directly into the fake store.
func (f *fakeStore) seedMessage(msg *models.ScheduledMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *msg
	f.messages[msg.ID] = &copied
}

// mockChannel is a canned-response channel client.
type mockChannel struct {
	mu         sync.Mutex
	externalID string
	sendErr    error
	textSends  int
	imageSends int
}

func (m *mockChannel) SendText(ctx context.Context, phone, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textSends++
	return m.externalID, m.sendErr
}

func (m *mockChannel) SendImage(ctx context.Context, phone, imagePath, caption string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageSends++
	return m.externalID, m.sendErr
}

// staticWindow serves a fixed sending window.
type staticWindow struct {
	cfg *models.SendingWindowConfig
	err error
}

func (w *staticWindow) Current(ctx context.Context) (*models.SendingWindowConfig, error) {
	return w.cfg, w.err
}

func alwaysOpenWindow() *models.SendingWindowConfig {
	return &models.SendingWindowConfig{
		ActiveDays:      []int{1, 2, 3, 4, 5, 6, 7},
		StartTime:       0,
		EndTime:         24 * 60,
		MessageInterval: models.MinMessageIntervalSec,
		IsActive:        true,
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
