package domain

import "time"

// Status is the approval workflow state of an accreditation record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// CanTransition reports whether the workflow allows moving from one status
// to another. Re-approval is allowed (it reassigns zones and mints a fresh
// badge number); rejected is terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusApproved:
		return to == StatusApproved || to == StatusRejected
	default:
		return false
	}
}

// AccreditationRecord is the unit of work: one credential request for one
// participant of one event.
type AccreditationRecord struct {
	ID      string `json:"id"`
	EventID string `json:"eventId"`

	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Gender        string     `json:"gender"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty"`
	Nationality   string     `json:"nationality"`
	Club          string     `json:"club"`
	Role          string     `json:"role"`
	Email         string     `json:"email"`
	PhotoURL      string     `json:"photoUrl"`
	IDDocumentURL string     `json:"idDocumentUrl"`

	Status Status `json:"status"`

	// Assigned on approval, never cleared by a later rejection.
	AccreditationID string `json:"accreditationId,omitempty"`
	BadgeNumber     string `json:"badgeNumber,omitempty"`

	ZoneCode  string     `json:"zoneCode"`
	Remarks   string     `json:"remarks,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Approved reports whether the record currently holds approved status.
func (r AccreditationRecord) Approved() bool {
	return r.Status == StatusApproved
}

// RecordFilter narrows admin list queries.
type RecordFilter struct {
	EventID string
	Status  Status
	Role    string
	Search  string
	Limit   int
	Offset  int
}

// AuditEntry records one workflow transition for diagnostics.
type AuditEntry struct {
	ID        int64     `json:"id"`
	RecordID  string    `json:"recordId"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
