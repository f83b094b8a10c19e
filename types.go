package gatepass

import (
	"time"
)

// SizeKey selects the physical page size of an exported badge card.
type SizeKey string

const (
	SizeIDCard SizeKey = "idcard" // 85.6 x 121.6 mm
	SizeA6     SizeKey = "a6"     // 105 x 148 mm
	SizeA5     SizeKey = "a5"     // 148 x 210 mm
	SizeA4     SizeKey = "a4"     // 210 x 297 mm
)

// ParseSizeKey normalizes a size parameter, defaulting to A6.
func ParseSizeKey(s string) SizeKey {
	switch SizeKey(s) {
	case SizeIDCard, SizeA6, SizeA5, SizeA4:
		return SizeKey(s)
	}
	return SizeA6
}

// ExportProgress is emitted after each record of a bulk export.
type ExportProgress struct {
	Done     int    `json:"done"`
	Total    int    `json:"total"`
	RecordID string `json:"recordId"`
	Failed   bool   `json:"failed"`
	Error    string `json:"error,omitempty"`
}

// RegistrationRequest is the public submission payload. Field names follow
// the normalized camelCase record shape consumed from the persistence layer.
type RegistrationRequest struct {
	EventID       string     `json:"eventId"`
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
}
