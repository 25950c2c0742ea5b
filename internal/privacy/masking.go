package privacy

import (
	"strings"
)

// MaskPhoneNumber masks a phone number showing only the last 4 digits
// Example: "+1234567890" -> "+******7890"
func MaskPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}

	// Handle + prefix numbers specially
	if strings.HasPrefix(phone, "+") {
		if len(phone) == 1 { // Just "+"
			return phone
		}
		if len(phone) <= 5 { // "+1234" or shorter
			return "+" + strings.Repeat("*", len(phone)-1)
		}
		return "+" + strings.Repeat("*", len(phone)-5) + phone[len(phone)-4:]
	}

	// For numbers without + prefix
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

// MaskExternalID masks a channel-assigned message ID while keeping the tail
// for correlation in logs.
// Example: "ch_9f8e7d6c5b4a" -> "***********5b4a"
func MaskExternalID(externalID string) string {
	if externalID == "" {
		return ""
	}
	if len(externalID) <= 4 {
		return strings.Repeat("*", len(externalID))
	}
	return strings.Repeat("*", len(externalID)-4) + externalID[len(externalID)-4:]
}

// MaskEmail masks the local part of an email address.
// Example: "someone@example.com" -> "s*****e@example.com"
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return email
	}
	local := email[:at]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + email[at:]
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + email[at:]
}
