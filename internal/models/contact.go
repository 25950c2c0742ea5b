package models

import (
	"strings"
	"time"
	"unicode"
)

// Contact is a campaign recipient. PhoneNumber is stored in normalized form
// and is the unique key across all persisted contacts; it never changes once
// the contact exists.
type Contact struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phoneNumber"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Email       *string   `json:"email,omitempty"`
	Birthday    *string   `json:"birthday,omitempty"`
	Source      string    `json:"source"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DisplayName returns the best available human-readable name.
func (c *Contact) DisplayName() string {
	full := strings.TrimSpace(c.Name + " " + c.Surname)
	if full != "" {
		return full
	}
	return c.PhoneNumber
}

const minPhoneDigits = 7

// NormalizePhone canonicalizes a raw phone number to digits with an optional
// leading "+". Spaces, dashes, dots and parentheses are stripped. Returns ""
// when the input does not contain a usable number.
func NormalizePhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	plus := strings.HasPrefix(trimmed, "+")
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	// "00" international prefix folds into "+".
	if !plus && strings.HasPrefix(digits, "00") {
		plus = true
		digits = digits[2:]
	}
	if len(digits) < minPhoneDigits {
		return ""
	}
	if plus {
		return "+" + digits
	}
	return digits
}
