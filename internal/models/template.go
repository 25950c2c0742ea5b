package models

import (
	"strings"
	"time"
)

// Template is a reusable message body. Content may contain {placeholder}
// tokens that are substituted per contact when the message snapshot is taken.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	ImagePath *string   `json:"imagePath,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Render substitutes the supported placeholders with the contact's fields.
// Unknown placeholders are left untouched so typos are visible in previews.
func (t *Template) Render(c *Contact) string {
	if c == nil {
		return t.Content
	}
	email := ""
	if c.Email != nil {
		email = *c.Email
	}
	replacer := strings.NewReplacer(
		"{name}", c.Name,
		"{surname}", c.Surname,
		"{fullname}", c.DisplayName(),
		"{phone}", c.PhoneNumber,
		"{email}", email,
	)
	return replacer.Replace(t.Content)
}
