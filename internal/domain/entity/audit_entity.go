package entity

// Audit actions recorded for the authentication flow.
const (
	AuditRegister      = "register"
	AuditLoginSuccess  = "login_success"
	AuditLoginFailed   = "login_failed"
	AuditProfileUpdate = "profile_update"
)

// AuditEntry is one row of the authentication audit trail.
type AuditEntry struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
}
