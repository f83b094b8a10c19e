// Package models holds the gorm persistence shapes and their conversions
// to and from domain types.
package models

import (
	"strings"
	"time"

	"github.com/gatepass/gatepass/internal/domain"
)

type Event struct {
	ID                 string `gorm:"primaryKey"`
	Name               string `gorm:"not null"`
	Location           string
	StartsAt           *time.Time
	EndsAt             *time.Time
	AgeCalculationYear int
	LogoURL            string
	BackTemplateURL    string
	// SponsorLogos is stored newline-separated; order matters.
	SponsorLogos   string
	ReportingTimes string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Event) TableName() string { return "events" }

func (m Event) ToDomain() domain.Event {
	var sponsors []string
	for _, s := range strings.Split(m.SponsorLogos, "\n") {
		if s = strings.TrimSpace(s); s != "" {
			sponsors = append(sponsors, s)
		}
	}
	return domain.Event{
		ID:                 m.ID,
		Name:               m.Name,
		Location:           m.Location,
		StartsAt:           m.StartsAt,
		EndsAt:             m.EndsAt,
		AgeCalculationYear: m.AgeCalculationYear,
		LogoURL:            m.LogoURL,
		BackTemplateURL:    m.BackTemplateURL,
		SponsorLogos:       sponsors,
		ReportingTimes:     m.ReportingTimes,
	}
}

func EventFromDomain(ev domain.Event) Event {
	return Event{
		ID:                 ev.ID,
		Name:               ev.Name,
		Location:           ev.Location,
		StartsAt:           ev.StartsAt,
		EndsAt:             ev.EndsAt,
		AgeCalculationYear: ev.AgeCalculationYear,
		LogoURL:            ev.LogoURL,
		BackTemplateURL:    ev.BackTemplateURL,
		SponsorLogos:       strings.Join(ev.SponsorLogos, "\n"),
		ReportingTimes:     ev.ReportingTimes,
	}
}

type Zone struct {
	ID          string `gorm:"primaryKey"`
	EventID     string `gorm:"index;not null"`
	Code        string `gorm:"not null"`
	Name        string
	Color       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Zone) TableName() string { return "zones" }

func (m Zone) ToDomain() domain.Zone {
	return domain.Zone{
		ID:          m.ID,
		EventID:     m.EventID,
		Code:        m.Code,
		Name:        m.Name,
		Color:       m.Color,
		Description: m.Description,
	}
}

func ZoneFromDomain(z domain.Zone) Zone {
	return Zone{
		ID:          z.ID,
		EventID:     z.EventID,
		Code:        z.Code,
		Name:        z.Name,
		Color:       z.Color,
		Description: z.Description,
	}
}

type Accreditation struct {
	ID      string `gorm:"primaryKey"`
	EventID string `gorm:"index;not null"`

	FirstName     string
	LastName      string
	Gender        string
	DateOfBirth   *time.Time
	Nationality   string
	Club          string
	Role          string `gorm:"index"`
	Email         string
	PhotoURL      string
	IDDocumentURL string

	Status string `gorm:"index;default:pending"`

	AccreditationID string `gorm:"uniqueIndex:idx_accreditations_code,where:accreditation_id <> ''"`
	BadgeNumber     string `gorm:"index"`

	ZoneCode  string
	Remarks   string
	ExpiresAt *time.Time
	UpdatedBy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Accreditation) TableName() string { return "accreditations" }

func (m Accreditation) ToDomain() domain.AccreditationRecord {
	return domain.AccreditationRecord{
		ID:              m.ID,
		EventID:         m.EventID,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		Gender:          m.Gender,
		DateOfBirth:     m.DateOfBirth,
		Nationality:     m.Nationality,
		Club:            m.Club,
		Role:            m.Role,
		Email:           m.Email,
		PhotoURL:        m.PhotoURL,
		IDDocumentURL:   m.IDDocumentURL,
		Status:          domain.Status(m.Status),
		AccreditationID: m.AccreditationID,
		BadgeNumber:     m.BadgeNumber,
		ZoneCode:        m.ZoneCode,
		Remarks:         m.Remarks,
		ExpiresAt:       m.ExpiresAt,
		UpdatedBy:       m.UpdatedBy,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func AccreditationFromDomain(r domain.AccreditationRecord) Accreditation {
	return Accreditation{
		ID:              r.ID,
		EventID:         r.EventID,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Gender:          r.Gender,
		DateOfBirth:     r.DateOfBirth,
		Nationality:     r.Nationality,
		Club:            r.Club,
		Role:            r.Role,
		Email:           r.Email,
		PhotoURL:        r.PhotoURL,
		IDDocumentURL:   r.IDDocumentURL,
		Status:          string(r.Status),
		AccreditationID: r.AccreditationID,
		BadgeNumber:     r.BadgeNumber,
		ZoneCode:        r.ZoneCode,
		Remarks:         r.Remarks,
		ExpiresAt:       r.ExpiresAt,
		UpdatedBy:       r.UpdatedBy,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// BadgeSequence tracks the next role-scoped badge number per event.
type BadgeSequence struct {
	EventID string `gorm:"primaryKey"`
	Role    string `gorm:"primaryKey"`
	Next    int    `gorm:"not null;default:1"`
}

func (BadgeSequence) TableName() string { return "badge_sequences" }

type AuditEntry struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	RecordID  string `gorm:"index"`
	Action    string
	Actor     string
	Detail    string
	CreatedAt time.Time
}

func (AuditEntry) TableName() string { return "audit_entries" }

func (m AuditEntry) ToDomain() domain.AuditEntry {
	return domain.AuditEntry{
		ID:        m.ID,
		RecordID:  m.RecordID,
		Action:    m.Action,
		Actor:     m.Actor,
		Detail:    m.Detail,
		CreatedAt: m.CreatedAt,
	}
}

func AuditEntryFromDomain(e domain.AuditEntry) AuditEntry {
	return AuditEntry{
		ID:        e.ID,
		RecordID:  e.RecordID,
		Action:    e.Action,
		Actor:     e.Actor,
		Detail:    e.Detail,
		CreatedAt: e.CreatedAt,
	}
}
