package service

// Standardized structured log field names. Handlers and services share these
// so log lines stay greppable across components.
const (
	LogFieldRequestID  = "request_id"
	LogFieldTraceID    = "trace_id"
	LogFieldMethod     = "method"
	LogFieldURL        = "url"
	LogFieldStatusCode = "status_code"
	LogFieldDuration   = "duration_ms"
	LogFieldRemoteIP   = "remote_ip"
	LogFieldUserAgent  = "user_agent"
	LogFieldSize       = "response_size"

	LogFieldService    = "service"
	LogFieldComponent  = "component"
	LogFieldMessageID  = "message_id"
	LogFieldContactID  = "contact_id"
	LogFieldTemplateID = "template_id"
	LogFieldExternalID = "external_id"
	LogFieldStatus     = "status"
)
