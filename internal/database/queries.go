package database

// Contact queries
const (
	InsertContactQuery = `
		INSERT INTO contacts (
			id, phone_number, name, surname, email, birthday, source, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	SelectContactColumns = `
		id, phone_number, name, surname, email, birthday, source, notes,
		created_at, updated_at
	`

	SelectContactByIDQuery = `
		SELECT ` + SelectContactColumns + `
		FROM contacts
		WHERE id = ?
	`

	SelectContactByPhoneQuery = `
		SELECT ` + SelectContactColumns + `
		FROM contacts
		WHERE phone_number = ?
	`

	SelectContactsQuery = `
		SELECT ` + SelectContactColumns + `
		FROM contacts
		ORDER BY created_at
	`

	UpdateContactQuery = `
		UPDATE contacts
		SET name = ?, surname = ?, email = ?, birthday = ?, source = ?, notes = ?
		WHERE id = ?
	`

	DeleteContactQuery = `
		DELETE FROM contacts
		WHERE id = ?
	`
)

// Template queries
const (
	InsertTemplateQuery = `
		INSERT INTO templates (id, name, content, image_path)
		VALUES (?, ?, ?, ?)
	`

	SelectTemplateByIDQuery = `
		SELECT id, name, content, image_path, created_at, updated_at
		FROM templates
		WHERE id = ?
	`

	SelectTemplatesQuery = `
		SELECT id, name, content, image_path, created_at, updated_at
		FROM templates
		ORDER BY name
	`

	UpdateTemplateQuery = `
		UPDATE templates
		SET name = ?, content = ?, image_path = ?
		WHERE id = ?
	`

	DeleteTemplateQuery = `
		DELETE FROM templates
		WHERE id = ?
	`
)

// Scheduled message queries
const (
	InsertMessageQuery = `
		INSERT INTO scheduled_messages (
			id, contact_id, template_id, content_snapshot, image_path_snapshot,
			status, scheduled_time, sent_time, delivered_time, read_time,
			external_id, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	SelectMessageColumns = `
		id, contact_id, template_id, content_snapshot, image_path_snapshot,
		status, scheduled_time, sent_time, delivered_time, read_time,
		external_id, error_message, created_at, updated_at
	`

	SelectMessageByIDQuery = `
		SELECT ` + SelectMessageColumns + `
		FROM scheduled_messages
		WHERE id = ?
	`

	SelectMessagesQuery = `
		SELECT ` + SelectMessageColumns + `
		FROM scheduled_messages
		ORDER BY scheduled_time
	`

	UpdateMessageQuery = `
		UPDATE scheduled_messages
		SET status = ?, scheduled_time = ?, sent_time = ?, delivered_time = ?,
		    read_time = ?, external_id = ?, error_message = ?
		WHERE id = ?
	`

	DeleteMessageQuery = `
		DELETE FROM scheduled_messages
		WHERE id = ?
	`
)

// Settings queries
const (
	UpsertSettingsQuery = `
		INSERT INTO settings (id, active_days, start_time, end_time, message_interval, is_active)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			active_days = excluded.active_days,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			message_interval = excluded.message_interval,
			is_active = excluded.is_active,
			updated_at = CURRENT_TIMESTAMP
	`

	SelectSettingsQuery = `
		SELECT active_days, start_time, end_time, message_interval, is_active
		FROM settings
		WHERE id = 1
	`
)
