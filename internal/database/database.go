package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"campaigner/internal/migrations"
	"campaigner/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	if dbPath != ":memory:" {
		file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to create database file: %w", err)
		}
		if err := file.Close(); err != nil {
			return nil, fmt.Errorf("failed to close database file: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema, err := migrations.GetInitialSchema()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to read schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	encryptor, err := NewEncryptor()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize encryptor: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: encryptor}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// DuplicateKeyError reports a uniqueness violation to callers without
// leaking sqlite error strings.
type DuplicateKeyError struct {
	Column string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for unique column %s", e.Column)
}

// --- Contacts ---

func (d *Database) SaveContact(ctx context.Context, contact *models.Contact) error {
	encryptedPhone, err := d.encryptor.EncryptForLookupIfEnabled(contact.PhoneNumber)
	if err != nil {
		return fmt.Errorf("failed to encrypt phone number: %w", err)
	}
	encryptedEmail, err := d.encryptOptional(contact.Email)
	if err != nil {
		return fmt.Errorf("failed to encrypt email: %w", err)
	}
	encryptedNotes, err := d.encryptOptional(contact.Notes)
	if err != nil {
		return fmt.Errorf("failed to encrypt notes: %w", err)
	}

	err = retryableDBOperation(ctx, func() error {
		_, execErr := d.db.ExecContext(ctx, InsertContactQuery,
			contact.ID,
			encryptedPhone,
			contact.Name,
			contact.Surname,
			encryptedEmail,
			contact.Birthday,
			contact.Source,
			encryptedNotes,
		)
		return execErr
	}, "save contact")

	if isUniqueViolation(err) {
		return &DuplicateKeyError{Column: "phone_number"}
	}
	if err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}
	return nil
}

func (d *Database) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	row := d.db.QueryRowContext(ctx, SelectContactByIDQuery, id)
	return d.scanContact(row)
}

func (d *Database) GetContactByPhone(ctx context.Context, phone string) (*models.Contact, error) {
	encryptedPhone, err := d.encryptor.EncryptForLookupIfEnabled(phone)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt phone number: %w", err)
	}
	row := d.db.QueryRowContext(ctx, SelectContactByPhoneQuery, encryptedPhone)
	return d.scanContact(row)
}

func (d *Database) GetContacts(ctx context.Context) ([]*models.Contact, error) {
	rows, err := d.db.QueryContext(ctx, SelectContactsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contacts []*models.Contact
	for rows.Next() {
		contact, err := d.scanContactRow(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func (d *Database) UpdateContact(ctx context.Context, contact *models.Contact) error {
	encryptedEmail, err := d.encryptOptional(contact.Email)
	if err != nil {
		return fmt.Errorf("failed to encrypt email: %w", err)
	}
	encryptedNotes, err := d.encryptOptional(contact.Notes)
	if err != nil {
		return fmt.Errorf("failed to encrypt notes: %w", err)
	}

	var result sql.Result
	err = retryableDBOperation(ctx, func() error {
		var execErr error
		result, execErr = d.db.ExecContext(ctx, UpdateContactQuery,
			contact.Name,
			contact.Surname,
			encryptedEmail,
			contact.Birthday,
			contact.Source,
			encryptedNotes,
			contact.ID,
		)
		return execErr
	}, "update contact")
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (d *Database) DeleteContact(ctx context.Context, id string) error {
	return retryableDBOperation(ctx, func() error {
		_, err := d.db.ExecContext(ctx, DeleteContactQuery, id)
		return err
	}, "delete contact")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (d *Database) scanContact(row *sql.Row) (*models.Contact, error) {
	contact, err := d.scanContactRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return contact, err
}

func (d *Database) scanContactRow(row rowScanner) (*models.Contact, error) {
	var encryptedPhone string
	var encryptedEmail, encryptedNotes *string
	contact := &models.Contact{}

	err := row.Scan(
		&contact.ID,
		&encryptedPhone,
		&contact.Name,
		&contact.Surname,
		&encryptedEmail,
		&contact.Birthday,
		&contact.Source,
		&encryptedNotes,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}

	contact.PhoneNumber, err = d.encryptor.DecryptIfEnabled(encryptedPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt phone number: %w", err)
	}
	contact.Email, err = d.decryptOptional(encryptedEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt email: %w", err)
	}
	contact.Notes, err = d.decryptOptional(encryptedNotes)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt notes: %w", err)
	}
	return contact, nil
}

func (d *Database) encryptOptional(value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	encrypted, err := d.encryptor.EncryptIfEnabled(*value)
	if err != nil {
		return nil, err
	}
	return &encrypted, nil
}

func (d *Database) decryptOptional(value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	decrypted, err := d.encryptor.DecryptIfEnabled(*value)
	if err != nil {
		return nil, err
	}
	return &decrypted, nil
}

// --- Templates ---

func (d *Database) SaveTemplate(ctx context.Context, tmpl *models.Template) error {
	err := retryableDBOperation(ctx, func() error {
		_, execErr := d.db.ExecContext(ctx, InsertTemplateQuery,
			tmpl.ID, tmpl.Name, tmpl.Content, tmpl.ImagePath)
		return execErr
	}, "save template")

	if isUniqueViolation(err) {
		return &DuplicateKeyError{Column: "name"}
	}
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

func (d *Database) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	tmpl := &models.Template{}
	err := d.db.QueryRowContext(ctx, SelectTemplateByIDQuery, id).Scan(
		&tmpl.ID, &tmpl.Name, &tmpl.Content, &tmpl.ImagePath,
		&tmpl.CreatedAt, &tmpl.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return tmpl, nil
}

func (d *Database) GetTemplates(ctx context.Context) ([]*models.Template, error) {
	rows, err := d.db.QueryContext(ctx, SelectTemplatesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var templates []*models.Template
	for rows.Next() {
		tmpl := &models.Template{}
		if err := rows.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Content, &tmpl.ImagePath,
			&tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

func (d *Database) UpdateTemplate(ctx context.Context, tmpl *models.Template) error {
	var result sql.Result
	err := retryableDBOperation(ctx, func() error {
		var execErr error
		result, execErr = d.db.ExecContext(ctx, UpdateTemplateQuery,
			tmpl.Name, tmpl.Content, tmpl.ImagePath, tmpl.ID)
		return execErr
	}, "update template")

	if isUniqueViolation(err) {
		return &DuplicateKeyError{Column: "name"}
	}
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (d *Database) DeleteTemplate(ctx context.Context, id string) error {
	return retryableDBOperation(ctx, func() error {
		_, err := d.db.ExecContext(ctx, DeleteTemplateQuery, id)
		return err
	}, "delete template")
}

// --- Scheduled messages ---

func (d *Database) SaveMessage(ctx context.Context, msg *models.ScheduledMessage) error {
	err := retryableDBOperation(ctx, func() error {
		_, execErr := d.db.ExecContext(ctx, InsertMessageQuery,
			msg.ID,
			msg.ContactID,
			msg.TemplateID,
			msg.ContentSnapshot,
			msg.ImagePathSnapshot,
			msg.Status,
			msg.ScheduledTime,
			msg.SentTime,
			msg.DeliveredTime,
			msg.ReadTime,
			msg.ExternalID,
			msg.ErrorMessage,
		)
		return execErr
	}, "save message")
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (d *Database) GetMessage(ctx context.Context, id string) (*models.ScheduledMessage, error) {
	msg, err := d.scanMessageRow(d.db.QueryRowContext(ctx, SelectMessageByIDQuery, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return msg, err
}

func (d *Database) GetMessages(ctx context.Context) ([]*models.ScheduledMessage, error) {
	return d.queryMessages(ctx, SelectMessagesQuery)
}

func (d *Database) queryMessages(ctx context.Context, query string, args ...interface{}) ([]*models.ScheduledMessage, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*models.ScheduledMessage
	for rows.Next() {
		msg, err := d.scanMessageRow(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (d *Database) scanMessageRow(row rowScanner) (*models.ScheduledMessage, error) {
	msg := &models.ScheduledMessage{}
	err := row.Scan(
		&msg.ID,
		&msg.ContactID,
		&msg.TemplateID,
		&msg.ContentSnapshot,
		&msg.ImagePathSnapshot,
		&msg.Status,
		&msg.ScheduledTime,
		&msg.SentTime,
		&msg.DeliveredTime,
		&msg.ReadTime,
		&msg.ExternalID,
		&msg.ErrorMessage,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}
	return msg, nil
}

func (d *Database) UpdateMessage(ctx context.Context, msg *models.ScheduledMessage) error {
	var result sql.Result
	err := retryableDBOperation(ctx, func() error {
		var execErr error
		result, execErr = d.db.ExecContext(ctx, UpdateMessageQuery,
			msg.Status,
			msg.ScheduledTime,
			msg.SentTime,
			msg.DeliveredTime,
			msg.ReadTime,
			msg.ExternalID,
			msg.ErrorMessage,
			msg.ID,
		)
		return execErr
	}, "update message")
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (d *Database) DeleteMessage(ctx context.Context, id string) error {
	var result sql.Result
	err := retryableDBOperation(ctx, func() error {
		var execErr error
		result, execErr = d.db.ExecContext(ctx, DeleteMessageQuery, id)
		return execErr
	}, "delete message")
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- Settings ---

func (d *Database) SaveSettings(ctx context.Context, cfg *models.SendingWindowConfig) error {
	days, err := json.Marshal(cfg.ActiveDays)
	if err != nil {
		return fmt.Errorf("failed to marshal active days: %w", err)
	}
	return retryableDBOperation(ctx, func() error {
		_, execErr := d.db.ExecContext(ctx, UpsertSettingsQuery,
			string(days), cfg.StartTime, cfg.EndTime, cfg.MessageInterval, cfg.IsActive)
		return execErr
	}, "save settings")
}

// GetSettings returns the stored sending window, or nil when none has been
// saved yet.
func (d *Database) GetSettings(ctx context.Context) (*models.SendingWindowConfig, error) {
	var days string
	cfg := &models.SendingWindowConfig{}
	err := d.db.QueryRowContext(ctx, SelectSettingsQuery).Scan(
		&days, &cfg.StartTime, &cfg.EndTime, &cfg.MessageInterval, &cfg.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if err := json.Unmarshal([]byte(days), &cfg.ActiveDays); err != nil {
		return nil, fmt.Errorf("failed to unmarshal active days: %w", err)
	}
	return cfg, nil
}
