package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplate_Render(t *testing.T) {
	email := "ada@example.com"
	contact := &Contact{
		PhoneNumber: "+4915551234",
		Name:        "Ada",
		Surname:     "Lovelace",
		Email:       &email,
	}

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"name", "Hi {name}!", "Hi Ada!"},
		{"surname", "Dear {surname}", "Dear Lovelace"},
		{"fullname", "To {fullname}", "To Ada Lovelace"},
		{"phone", "Sent to {phone}", "Sent to +4915551234"},
		{"email", "Reply to {email}", "Reply to ada@example.com"},
		{"unknown placeholder untouched", "Hi {nickname}!", "Hi {nickname}!"},
		{"no placeholders", "Plain text", "Plain text"},
		{"repeated placeholder", "{name} {name}", "Ada Ada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := Template{Content: tt.content}
			assert.Equal(t, tt.expected, tmpl.Render(contact))
		})
	}
}

func TestTemplate_RenderNilContact(t *testing.T) {
	tmpl := Template{Content: "Hi {name}!"}
	assert.Equal(t, "Hi {name}!", tmpl.Render(nil))
}

func TestTemplate_RenderNilEmail(t *testing.T) {
	tmpl := Template{Content: "Reply to {email}"}
	contact := &Contact{PhoneNumber: "+4915551234", Name: "Ada"}
	assert.Equal(t, "Reply to ", tmpl.Render(contact))
}
