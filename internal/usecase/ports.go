package usecase

import (
	"context"

	"github.com/gatepass/gatepass/internal/domain"
)

// AccreditationRepository defines persistence for accreditation records.
type AccreditationRepository interface {
	Create(ctx context.Context, rec *domain.AccreditationRecord) error
	Get(ctx context.Context, id string) (domain.AccreditationRecord, error)
	List(ctx context.Context, filter domain.RecordFilter) ([]domain.AccreditationRecord, error)
	Update(ctx context.Context, rec *domain.AccreditationRecord) error
	Delete(ctx context.Context, id string) error

	// FindByReference resolves a verification code with the documented
	// precedence: accreditation id, badge number, record id.
	FindByReference(ctx context.Context, code string) (domain.AccreditationRecord, error)

	// NextBadgeSequence returns the next role-scoped sequence number for
	// an event, advancing it.
	NextBadgeSequence(ctx context.Context, eventID, role string) (int, error)
}

// EventRepository defines lookup for events.
type EventRepository interface {
	Get(ctx context.Context, id string) (domain.Event, error)
	List(ctx context.Context) ([]domain.Event, error)
	Create(ctx context.Context, ev *domain.Event) error
	Update(ctx context.Context, ev *domain.Event) error
	Delete(ctx context.Context, id string) error
}

// ZoneRepository defines lookup for access zones.
type ZoneRepository interface {
	ListByEvent(ctx context.Context, eventID string) ([]domain.Zone, error)
	Create(ctx context.Context, z *domain.Zone) error
	Update(ctx context.Context, z *domain.Zone) error
	Delete(ctx context.Context, id string) error
}

// AuditRepository appends workflow transition entries.
type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}

// Notifier dispatches an outbound notification after a state transition.
// Fire-and-forget from the workflow's perspective; the result is only
// logged.
type Notifier interface {
	Notify(ctx context.Context, rec domain.AccreditationRecord, action string) error
}

// VerifyCache caches verification lookups by public reference code.
type VerifyCache interface {
	Get(ctx context.Context, code string) (domain.AccreditationRecord, bool)
	Set(ctx context.Context, code string, rec domain.AccreditationRecord)
}
