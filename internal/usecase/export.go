package usecase

import (
	"context"

	"github.com/gatepass/gatepass"
	"github.com/gatepass/gatepass/internal/badge"
	"github.com/gatepass/gatepass/internal/domain"
	"github.com/gatepass/gatepass/internal/report"
)

// ExportUsecase resolves render context (event, zones) for records and
// drives the badge exporter.
type ExportUsecase struct {
	records  AccreditationRepository
	events   EventRepository
	zones    ZoneRepository
	exporter *badge.Exporter
}

func NewExportUsecase(records AccreditationRepository, events EventRepository, zones ZoneRepository, exporter *badge.Exporter) *ExportUsecase {
	return &ExportUsecase{
		records:  records,
		events:   events,
		zones:    zones,
		exporter: exporter,
	}
}

func (uc *ExportUsecase) resolve(ctx context.Context, id string) (domain.AccreditationRecord, domain.Event, []domain.Zone, error) {
	rec, err := uc.records.Get(ctx, id)
	if err != nil {
		return domain.AccreditationRecord{}, domain.Event{}, nil, err
	}
	event, err := uc.events.Get(ctx, rec.EventID)
	if err != nil {
		return domain.AccreditationRecord{}, domain.Event{}, nil, err
	}
	zones, err := uc.zones.ListByEvent(ctx, rec.EventID)
	if err != nil {
		return domain.AccreditationRecord{}, domain.Event{}, nil, err
	}
	return rec, event, zones, nil
}

// CardPDF renders a single approved record's card.
func (uc *ExportUsecase) CardPDF(ctx context.Context, id string, size gatepass.SizeKey) ([]byte, string, error) {
	rec, event, zones, err := uc.resolve(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return uc.exporter.CardPDF(ctx, rec, event, zones, size)
}

// CardPDFRaster renders the card through the raster path and wraps the
// captured faces into a printable PDF.
func (uc *ExportUsecase) CardPDFRaster(ctx context.Context, id string, size gatepass.SizeKey) ([]byte, string, error) {
	rec, event, zones, err := uc.resolve(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return uc.exporter.CardPDFRaster(ctx, rec, event, zones, size)
}

// FacePNG renders one card face at a raster scale tier.
func (uc *ExportUsecase) FacePNG(ctx context.Context, id, face string, scale int) ([]byte, string, error) {
	rec, event, zones, err := uc.resolve(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return uc.exporter.FacePNG(ctx, rec, event, zones, face, scale)
}

// BulkResult is the outcome of a bulk export: the zip payload, its
// suggested filename and the records that were skipped.
type BulkResult struct {
	Zip      []byte
	Filename string
	Skipped  []badge.RecordError
}

// Bulk renders the given records into one zip archive, skipping individual
// failures. The archive is named after the first record's event.
func (uc *ExportUsecase) Bulk(ctx context.Context, ids []string, size gatepass.SizeKey, progress func(gatepass.ExportProgress)) (BulkResult, error) {
	items := make([]badge.BulkItem, 0, len(ids))
	var skipped []badge.RecordError
	eventName := "badges"

	for _, id := range ids {
		rec, event, zones, err := uc.resolve(ctx, id)
		if err != nil {
			skipped = append(skipped, badge.RecordError{RecordID: id, Reason: err.Error()})
			continue
		}
		if eventName == "badges" && event.Name != "" {
			eventName = event.Name
		}
		items = append(items, badge.BulkItem{Record: rec, Event: event, Zones: zones})
	}

	zipBytes, failed, err := uc.exporter.BulkExport(ctx, items, size, progress)
	if err != nil {
		return BulkResult{}, err
	}
	return BulkResult{
		Zip:      zipBytes,
		Filename: gatepass.SanitizeFilename(eventName) + "_badges.zip",
		Skipped:  append(skipped, failed...),
	}, nil
}

// ListXLSX exports the filtered record list as a spreadsheet.
func (uc *ExportUsecase) ListXLSX(ctx context.Context, filter domain.RecordFilter) ([]byte, error) {
	records, err := uc.records.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return report.WriteXLSX(records)
}

// ListPDF exports the filtered record list as a tabular PDF.
func (uc *ExportUsecase) ListPDF(ctx context.Context, filter domain.RecordFilter) ([]byte, error) {
	records, err := uc.records.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	title := "Accreditations"
	if filter.EventID != "" {
		if event, err := uc.events.Get(ctx, filter.EventID); err == nil && event.Name != "" {
			title = event.Name + " - Accreditations"
		}
	}
	return report.WriteListPDF(title, records)
}
