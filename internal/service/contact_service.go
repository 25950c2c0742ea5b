package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"campaigner/internal/constants"
	"campaigner/internal/database"
	"campaigner/internal/errors"
	"campaigner/internal/models"
	"campaigner/internal/privacy"
	"campaigner/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContactDatabase is the backing store surface the contact service needs.
type ContactDatabase interface {
	SaveContact(ctx context.Context, contact *models.Contact) error
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	GetContactByPhone(ctx context.Context, phone string) (*models.Contact, error)
	GetContacts(ctx context.Context) ([]*models.Contact, error)
	UpdateContact(ctx context.Context, contact *models.Contact) error
	DeleteContact(ctx context.Context, id string) error
}

// ContactService owns the contact collection: creation with phone
// uniqueness, bulk import commits from an admission session, and chunked
// bulk deletion.
type ContactService struct {
	logger *logrus.Logger
	db     ContactDatabase
}

func NewContactService(db ContactDatabase, logger *logrus.Logger) *ContactService {
	return &ContactService{logger: logger, db: db}
}

func (s *ContactService) GetContacts(ctx context.Context) ([]*models.Contact, error) {
	contacts, err := s.db.GetContacts(ctx)
	if err != nil {
		return nil, errors.NewStoreError("get contacts", err)
	}
	return contacts, nil
}

func (s *ContactService) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	contact, err := s.db.GetContact(ctx, id)
	if err != nil {
		return nil, errors.NewStoreError("get contact", err)
	}
	if contact == nil {
		return nil, errors.NewNotFoundError("contact", id)
	}
	return contact, nil
}

// GetContactByPhone looks a contact up by phone number. Any spelling of the
// number resolves to the same contact because both sides are normalized.
func (s *ContactService) GetContactByPhone(ctx context.Context, phone string) (*models.Contact, error) {
	normalized := models.NormalizePhone(phone)
	if normalized == "" {
		return nil, errors.New(errors.ErrCodeMissingPhone, "no usable phone number")
	}
	contact, err := s.db.GetContactByPhone(ctx, normalized)
	if err != nil {
		return nil, errors.NewStoreError("get contact by phone", err)
	}
	if contact == nil {
		return nil, errors.NewNotFoundError("contact", privacy.MaskPhoneNumber(normalized))
	}
	return contact, nil
}

// CreateContact persists a new contact. The phone number is normalized
// first; a missing phone is a validation error and an existing one a
// conflict.
func (s *ContactService) CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	normalized := models.NormalizePhone(contact.PhoneNumber)
	if normalized == "" {
		return nil, errors.New(errors.ErrCodeMissingPhone, "contact has no usable phone number")
	}
	if err := validation.ValidatePhoneNumber(normalized); err != nil {
		return nil, err
	}

	created := *contact
	created.PhoneNumber = normalized
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.Source == "" {
		created.Source = "manual"
	}

	if err := s.db.SaveContact(ctx, &created); err != nil {
		var dup *database.DuplicateKeyError
		if stderrors.As(err, &dup) {
			return nil, errors.NewDuplicatePhoneError(privacy.MaskPhoneNumber(normalized))
		}
		return nil, errors.NewStoreError("create contact", err)
	}
	return &created, nil
}

// UpdateContact edits a contact's mutable fields. The phone number is fixed
// once the contact exists; an update that tries to change it is rejected.
func (s *ContactService) UpdateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	existing, err := s.db.GetContact(ctx, contact.ID)
	if err != nil {
		return nil, errors.NewStoreError("get contact", err)
	}
	if existing == nil {
		return nil, errors.NewNotFoundError("contact", contact.ID)
	}

	if contact.PhoneNumber != "" {
		if models.NormalizePhone(contact.PhoneNumber) != existing.PhoneNumber {
			return nil, errors.NewValidationError("phoneNumber", "phone number cannot be changed")
		}
	}

	updated := *contact
	updated.PhoneNumber = existing.PhoneNumber
	if err := s.db.UpdateContact(ctx, &updated); err != nil {
		return nil, errors.NewStoreError("update contact", err)
	}
	return &updated, nil
}

// ExistingPhones returns the normalized phone numbers of every persisted
// contact, the admission pipeline's view of the world.
func (s *ContactService) ExistingPhones(ctx context.Context) ([]string, error) {
	contacts, err := s.db.GetContacts(ctx)
	if err != nil {
		return nil, errors.NewStoreError("get contacts", err)
	}
	phones := make([]string, 0, len(contacts))
	for _, c := range contacts {
		phones = append(phones, c.PhoneNumber)
	}
	return phones, nil
}

// ImportBatch commits an admission session: every selected valid or
// duplicate-in-file record becomes a contact. The work is chunked;
// per-record failures never abort the rest. A uniqueness conflict at insert
// time (a race against a concurrent create) counts as a duplicate, anything
// else as an error. progressFn, when set, fires after every chunk.
func (s *ContactService) ImportBatch(ctx context.Context, session *ImportSession, progressFn func(models.ImportResult)) models.ImportResult {
	commit := session.CommitSet()
	result := models.ImportResult{Total: len(commit)}

	for start := 0; start < len(commit); start += constants.DefaultImportChunkSize {
		end := start + constants.DefaultImportChunkSize
		if end > len(commit) {
			end = len(commit)
		}
		for _, rec := range commit[start:end] {
			contact := &models.Contact{
				ID:          uuid.NewString(),
				PhoneNumber: rec.NormalizedPhone,
				Name:        rec.Raw.Name,
				Surname:     rec.Raw.Surname,
				Email:       rec.Raw.Email,
				Birthday:    rec.Raw.Birthday,
				Notes:       rec.Raw.Notes,
				Source:      "import",
			}
			if err := s.db.SaveContact(ctx, contact); err != nil {
				var dup *database.DuplicateKeyError
				if stderrors.As(err, &dup) {
					result.Duplicates++
				} else {
					result.Errors++
					result.Reasons = append(result.Reasons, fmt.Sprintf("record %d: %v", rec.Index, err))
					s.logger.WithError(err).WithField("index", rec.Index).Warn("Failed to import contact")
				}
				continue
			}
			result.Imported++
		}
		if progressFn != nil {
			progressFn(result)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"imported":   result.Imported,
		"duplicates": result.Duplicates,
		"errors":     result.Errors,
		"total":      result.Total,
	}).Info("Import batch committed")
	return result
}

// BulkDelete removes contacts in chunks, continuing past individual
// failures, reporting progress after every chunk.
func (s *ContactService) BulkDelete(ctx context.Context, ids []string, progressFn func(models.BulkResult)) models.BulkResult {
	result := models.BulkResult{Total: len(ids)}

	for start := 0; start < len(ids); start += constants.DefaultDeleteChunkSize {
		end := start + constants.DefaultDeleteChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		for _, id := range ids[start:end] {
			if err := s.db.DeleteContact(ctx, id); err != nil {
				result.Errors++
				s.logger.WithError(err).WithField("contactId", id).Warn("Failed to delete contact")
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

// NewImportSessionFromStore builds an admission session for a raw batch
// against the currently persisted phones.
func (s *ContactService) NewImportSessionFromStore(ctx context.Context, batch []models.RawRecord) (*ImportSession, error) {
	phones, err := s.ExistingPhones(ctx)
	if err != nil {
		return nil, err
	}
	return NewImportSession(batch, phones), nil
}
