// Package types defines the domain entities, transport envelopes, and shared
// interfaces for the report notification dispatcher. JSON tags use snake_case
// to match the upstream report-generation services that produce the inbound
// queue messages.
package types

// Process describes one kind of notification campaign: the lookup name the
// inbound message refers to, the email subject/body text to render, and the
// storage container where the source report blobs live.
//
// Rows are owned by the external item-check schema; this service only reads
// them.
type Process struct {
	ID            int
	Name          string
	EmailSubject  string
	EmailBody     string
	EmailAddendum *string
	Container     string
}

// User is a person eligible for notifications, scoped to an institution.
// The pair (email, institution_id) is unique; the same address may recur
// under different institutions.
type User struct {
	ID            int
	Email         string
	InstitutionID int
}

// UserProcess links a user to a process, granting that user entitlement to
// the process's notifications. The pair is the composite primary key, so a
// given grant exists at most once.
type UserProcess struct {
	UserID    int
	ProcessID int
}

// NotificationMessage is the inbound queue payload that triggers a dispatch.
// All three fields are required; a zero value in any of them aborts
// processing before any side effect.
type NotificationMessage struct {
	ReportID      string `json:"report_id" validate:"required"`
	InstitutionID int    `json:"institution_id" validate:"required"`
	ProcessType   string `json:"process_type" validate:"required"`
}

// EmailMessage is the composed email artifact written to the sender
// container. HTML is a pointer so a failed render serializes as an explicit
// null rather than an empty string; the downstream sender decides what to do
// with a bodyless email.
type EmailMessage struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    *string  `json:"html"`
}

// HandoffMessage is the pointer message published to the sender queue after
// the EmailMessage blob has been uploaded. It carries only the blob key; the
// sender fetches the full artifact itself.
type HandoffMessage struct {
	BlobName string `json:"blob_name"`
}
