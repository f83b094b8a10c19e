package badge

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"

	"github.com/gatepass/gatepass"
	"github.com/gatepass/gatepass/internal/domain"
)

// Exporter is the public face of the pipeline: it assembles the view model
// (mapper + QR + image inlining) and hands it to a rendering back-end,
// delivering concrete artifacts.
type Exporter struct {
	origin  string
	inliner *Inliner
	raster  *Rasterizer
	pdf     *PDFRenderer

	// artifacts caches finished single-card PDFs keyed by record revision
	// and size. Optional; nil disables caching.
	artifacts *memcache.Client
}

func NewExporter(origin string, inliner *Inliner, artifacts *memcache.Client) *Exporter {
	return &Exporter{
		origin:    origin,
		inliner:   inliner,
		raster:    NewRasterizer(),
		pdf:       NewPDFRenderer(),
		artifacts: artifacts,
	}
}

// BuildViewModel produces the fully inlined card model for one record.
// The pure mapping runs first; image fetches fan out in parallel after.
func (e *Exporter) BuildViewModel(ctx context.Context, rec domain.AccreditationRecord, event domain.Event, zones []domain.Zone) domain.CardViewModel {
	vm := BuildViewModel(rec, event, zones)
	vm.QRDataURI = VerificationQR(e.origin, rec).URI

	srcs := []string{
		rec.PhotoURL,
		event.LogoURL,
		FlagURL(rec.Nationality),
		event.BackTemplateURL,
	}
	sponsors := event.SponsorLogos
	if len(sponsors) > maxSponsorLogos {
		sponsors = sponsors[:maxSponsorLogos]
	}
	srcs = append(srcs, sponsors...)

	results := e.inliner.InlineAll(ctx, srcs)

	vm.PhotoDataURI = results[0].URI
	vm.LogoDataURI = results[1].URI
	vm.FlagDataURI = results[2].URI
	vm.BackTemplateDataURI = results[3].URI
	for _, r := range results[4:] {
		vm.SponsorDataURIs = append(vm.SponsorDataURIs, r.URI)
	}
	return vm
}

// CardPDF renders one record's card as a vector PDF. Refuses records that
// are not approved: accreditation id and badge number only exist after
// approval.
func (e *Exporter) CardPDF(ctx context.Context, rec domain.AccreditationRecord, event domain.Event, zones []domain.Zone, size gatepass.SizeKey) ([]byte, string, error) {
	if !rec.Approved() {
		return nil, "", domain.ErrNotApproved
	}

	filename := fmt.Sprintf("%s_%s_%s.pdf",
		gatepass.SanitizeFilename(rec.FirstName),
		gatepass.SanitizeFilename(rec.LastName),
		size)

	key := e.artifactKey(rec, size)
	if e.artifacts != nil {
		if item, err := e.artifacts.Get(key); err == nil {
			return item.Value, filename, nil
		}
	}

	vm := e.BuildViewModel(ctx, rec, event, zones)
	out, err := e.pdf.CardPDF(vm, size)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to generate pdf")
	}

	if e.artifacts != nil {
		if err := e.artifacts.Set(&memcache.Item{Key: key, Value: out, Expiration: 300}); err != nil {
			slog.Debug("artifact cache set failed", slog.String("error", err.Error()))
		}
	}
	return out, filename, nil
}

// rasterWrapScale is the capture tier used when wrapping raster faces
// into a printable PDF.
const rasterWrapScale = 4

// CardPDFRaster rasterizes the card faces and wraps them into a PDF, one
// full-bleed page per face. The output carries the raster path's exact
// pixels instead of vector primitives.
func (e *Exporter) CardPDFRaster(ctx context.Context, rec domain.AccreditationRecord, event domain.Event, zones []domain.Zone, size gatepass.SizeKey) ([]byte, string, error) {
	if !rec.Approved() {
		return nil, "", domain.ErrNotApproved
	}

	vm := e.BuildViewModel(ctx, rec, event, zones)

	front, err := e.raster.RenderPNG(FrontLayout(vm), rasterWrapScale)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to capture front face")
	}
	faces := [][]byte{front}
	if els := BackLayout(vm); els != nil {
		back, err := e.raster.RenderPNG(els, rasterWrapScale)
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to capture back face")
		}
		faces = append(faces, back)
	}

	out, err := e.pdf.WrapPNG(faces, size)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to generate pdf")
	}

	filename := fmt.Sprintf("%s_%s_%s.pdf",
		gatepass.SanitizeFilename(rec.FirstName),
		gatepass.SanitizeFilename(rec.LastName),
		size)
	return out, filename, nil
}

// FacePNG renders one face of the card at a raster scale tier. The face
// parameter is "front" or "back"; requesting a back face on a card without
// back content is a not-found condition.
func (e *Exporter) FacePNG(ctx context.Context, rec domain.AccreditationRecord, event domain.Event, zones []domain.Zone, face string, scale int) ([]byte, string, error) {
	if !rec.Approved() {
		return nil, "", domain.ErrNotApproved
	}

	vm := e.BuildViewModel(ctx, rec, event, zones)

	var els []Element
	switch face {
	case "back":
		els = BackLayout(vm)
		if els == nil {
			return nil, "", domain.NotFoundError{Resource: "card back face"}
		}
	default:
		face = "front"
		els = FrontLayout(vm)
	}

	out, err := e.raster.RenderPNG(els, scale)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to generate image")
	}

	filename := fmt.Sprintf("%s_%s_%s.png",
		gatepass.SanitizeFilename(rec.FirstName),
		gatepass.SanitizeFilename(rec.LastName),
		face)
	return out, filename, nil
}

// BulkItem is one record of a bulk export with its render context resolved.
type BulkItem struct {
	Record domain.AccreditationRecord
	Event  domain.Event
	Zones  []domain.Zone
}

// RecordError reports one skipped record of a bulk export.
type RecordError struct {
	RecordID string `json:"recordId"`
	Reason   string `json:"reason"`
}

// BulkExport renders every item to a PDF and packs them into a flat zip.
// Rendering is serial on purpose: each render holds decoded bitmaps, so
// parallelism would multiply peak memory. A failing record is skipped and
// reported, never aborting the rest of the batch. Progress is emitted
// after each record.
func (e *Exporter) BulkExport(ctx context.Context, items []BulkItem, size gatepass.SizeKey, progress func(gatepass.ExportProgress)) ([]byte, []RecordError, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	var failed []RecordError

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			zw.Close() //nolint:errcheck // archive is discarded on cancellation
			return nil, failed, errors.Wrap(err, "bulk export cancelled")
		}

		rec := item.Record
		pdfBytes, _, err := e.CardPDF(ctx, rec, item.Event, item.Zones, size)
		if err != nil {
			failed = append(failed, RecordError{RecordID: rec.ID, Reason: err.Error()})
			emit(progress, gatepass.ExportProgress{Done: i + 1, Total: len(items), RecordID: rec.ID, Failed: true, Error: err.Error()})
			continue
		}

		ref := rec.BadgeNumber
		if ref == "" {
			ref = rec.ID
		}
		name := fmt.Sprintf("%s_%s_%s.pdf",
			gatepass.SanitizeFilename(rec.FirstName),
			gatepass.SanitizeFilename(rec.LastName),
			gatepass.SanitizeFilename(ref))

		w, err := zw.Create(name)
		if err != nil {
			zw.Close() //nolint:errcheck
			return nil, failed, errors.Wrap(err, "zip entry failed")
		}
		if _, err := w.Write(pdfBytes); err != nil {
			zw.Close() //nolint:errcheck
			return nil, failed, errors.Wrap(err, "zip write failed")
		}

		emit(progress, gatepass.ExportProgress{Done: i + 1, Total: len(items), RecordID: rec.ID})
	}

	if err := zw.Close(); err != nil {
		return nil, failed, errors.Wrap(err, "zip close failed")
	}
	return buf.Bytes(), failed, nil
}

func emit(progress func(gatepass.ExportProgress), p gatepass.ExportProgress) {
	if progress != nil {
		progress(p)
	}
}

func (e *Exporter) artifactKey(rec domain.AccreditationRecord, size gatepass.SizeKey) string {
	seed := fmt.Sprintf("%s|%s|%s", rec.ID, rec.UpdatedAt.Format(time.RFC3339Nano), size)
	return fmt.Sprintf("card:%x", xxh3.HashString(seed))
}
