package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/gatepass/gatepass"
	"github.com/gatepass/gatepass/internal/domain"
)

var tracer = otel.Tracer("usecase")

// AccreditationUsecase owns the record workflow: registration, admin CRUD,
// and the approval state machine with badge number minting.
type AccreditationUsecase struct {
	records  AccreditationRepository
	events   EventRepository
	audit    AuditRepository
	notifier Notifier
}

func NewAccreditationUsecase(records AccreditationRepository, events EventRepository, audit AuditRepository, notifier Notifier) *AccreditationUsecase {
	return &AccreditationUsecase{
		records:  records,
		events:   events,
		audit:    audit,
		notifier: notifier,
	}
}

// Register creates a pending record from a public submission.
func (uc *AccreditationUsecase) Register(ctx context.Context, req gatepass.RegistrationRequest) (domain.AccreditationRecord, error) {
	ctx, span := tracer.Start(ctx, "Accreditation.Register")
	defer span.End()

	if _, err := uc.events.Get(ctx, req.EventID); err != nil {
		span.RecordError(err)
		return domain.AccreditationRecord{}, errors.Wrap(err, "unknown event")
	}

	rec := domain.AccreditationRecord{
		ID:            uuid.NewString(),
		EventID:       req.EventID,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Gender:        req.Gender,
		DateOfBirth:   req.DateOfBirth,
		Nationality:   strings.ToUpper(strings.TrimSpace(req.Nationality)),
		Club:          req.Club,
		Role:          req.Role,
		Email:         req.Email,
		PhotoURL:      req.PhotoURL,
		IDDocumentURL: req.IDDocumentURL,
		Status:        domain.StatusPending,
	}
	if rec.FirstName == "" && rec.LastName == "" {
		return domain.AccreditationRecord{}, errors.New("name is required")
	}

	if err := uc.records.Create(ctx, &rec); err != nil {
		span.RecordError(err)
		return domain.AccreditationRecord{}, err
	}
	return rec, nil
}

// Approve transitions a record to approved, assigns its zones and mints
// accreditation id and badge number. Re-approving an already approved
// record mints a fresh badge number; the previous one is not reused.
func (uc *AccreditationUsecase) Approve(ctx context.Context, id, zoneCodes, actor string) (domain.AccreditationRecord, error) {
	ctx, span := tracer.Start(ctx, "Accreditation.Approve")
	defer span.End()

	rec, err := uc.records.Get(ctx, id)
	if err != nil {
		return domain.AccreditationRecord{}, err
	}
	if !domain.CanTransition(rec.Status, domain.StatusApproved) {
		return domain.AccreditationRecord{}, domain.TransitionError{From: rec.Status, To: domain.StatusApproved}
	}

	seq, err := uc.records.NextBadgeSequence(ctx, rec.EventID, rec.Role)
	if err != nil {
		span.RecordError(err)
		return domain.AccreditationRecord{}, errors.Wrap(err, "badge sequence")
	}

	rec.Status = domain.StatusApproved
	rec.ZoneCode = normalizeZoneCodes(zoneCodes)
	rec.BadgeNumber = mintBadgeNumber(rec.Role, seq)
	if rec.AccreditationID == "" {
		rec.AccreditationID = mintAccreditationID()
	}
	rec.Remarks = ""
	rec.UpdatedBy = actor

	if err := uc.records.Update(ctx, &rec); err != nil {
		span.RecordError(err)
		return domain.AccreditationRecord{}, err
	}

	uc.recordAudit(ctx, rec.ID, "approve", actor, "badge "+rec.BadgeNumber)
	uc.dispatchNotify(rec, "approved")
	return rec, nil
}

// Reject transitions a record to rejected with a reason. A previously
// issued accreditation id and badge number are kept on the record.
func (uc *AccreditationUsecase) Reject(ctx context.Context, id, remarks, actor string) (domain.AccreditationRecord, error) {
	ctx, span := tracer.Start(ctx, "Accreditation.Reject")
	defer span.End()

	rec, err := uc.records.Get(ctx, id)
	if err != nil {
		return domain.AccreditationRecord{}, err
	}
	if !domain.CanTransition(rec.Status, domain.StatusRejected) {
		return domain.AccreditationRecord{}, domain.TransitionError{From: rec.Status, To: domain.StatusRejected}
	}

	rec.Status = domain.StatusRejected
	rec.Remarks = remarks
	rec.UpdatedBy = actor

	if err := uc.records.Update(ctx, &rec); err != nil {
		span.RecordError(err)
		return domain.AccreditationRecord{}, err
	}

	uc.recordAudit(ctx, rec.ID, "reject", actor, remarks)
	uc.dispatchNotify(rec, "rejected")
	return rec, nil
}

func (uc *AccreditationUsecase) Get(ctx context.Context, id string) (domain.AccreditationRecord, error) {
	return uc.records.Get(ctx, id)
}

func (uc *AccreditationUsecase) List(ctx context.Context, filter domain.RecordFilter) ([]domain.AccreditationRecord, error) {
	return uc.records.List(ctx, filter)
}

// Update applies an admin edit to person fields. Workflow fields are only
// touched through Approve/Reject.
func (uc *AccreditationUsecase) Update(ctx context.Context, rec domain.AccreditationRecord, actor string) (domain.AccreditationRecord, error) {
	current, err := uc.records.Get(ctx, rec.ID)
	if err != nil {
		return domain.AccreditationRecord{}, err
	}

	current.FirstName = rec.FirstName
	current.LastName = rec.LastName
	current.Gender = rec.Gender
	current.DateOfBirth = rec.DateOfBirth
	current.Nationality = rec.Nationality
	current.Club = rec.Club
	current.Role = rec.Role
	current.Email = rec.Email
	current.PhotoURL = rec.PhotoURL
	current.IDDocumentURL = rec.IDDocumentURL
	current.ExpiresAt = rec.ExpiresAt
	current.UpdatedBy = actor

	if err := uc.records.Update(ctx, &current); err != nil {
		return domain.AccreditationRecord{}, err
	}
	uc.recordAudit(ctx, current.ID, "update", actor, "")
	return current, nil
}

func (uc *AccreditationUsecase) Delete(ctx context.Context, id, actor string) error {
	if err := uc.records.Delete(ctx, id); err != nil {
		return err
	}
	uc.recordAudit(ctx, id, "delete", actor, "")
	return nil
}

func (uc *AccreditationUsecase) recordAudit(ctx context.Context, recordID, action, actor, detail string) {
	if uc.audit == nil {
		return
	}
	entry := domain.AuditEntry{
		RecordID:  recordID,
		Action:    action,
		Actor:     actor,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		slog.Warn("audit append failed", slog.String("record", recordID), slog.String("error", err.Error()))
	}
}

// dispatchNotify fires the outbound notification without blocking the
// workflow; the result is logged either way.
func (uc *AccreditationUsecase) dispatchNotify(rec domain.AccreditationRecord, action string) {
	if uc.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := uc.notifier.Notify(ctx, rec, action); err != nil {
			slog.Warn("notification failed",
				slog.String("record", rec.ID),
				slog.String("action", action),
				slog.String("error", err.Error()))
			return
		}
		slog.Debug("notification sent", slog.String("record", rec.ID), slog.String("action", action))
	}()
}

// mintBadgeNumber derives the human-readable role-scoped number, e.g.
// "ATH-003" for the third approved athlete.
func mintBadgeNumber(role string, seq int) string {
	prefix := strings.ToUpper(strings.TrimSpace(role))
	prefix = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r
		}
		return -1
	}, prefix)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	if prefix == "" {
		prefix = "GEN"
	}
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

// mintAccreditationID issues the public code printed on the card, e.g.
// "ACC-2025-AB12CD34".
func mintAccreditationID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("ACC-%d-%s", time.Now().Year(), raw[:8])
}

func normalizeZoneCodes(s string) string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
