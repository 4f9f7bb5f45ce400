package model

// AuditEntry records a security-relevant event: logins, credential
// migrations, registrations and account deletions.
type AuditEntry struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	OccurredAt string `json:"occurred_at"`
	ActorID    string `json:"actor_id,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
}

type AuditQuery struct {
	Action string
	Status string
	Page   int
	Limit  int
}

type AuditEntryList struct {
	Entries []AuditEntry `json:"entries"`
}
