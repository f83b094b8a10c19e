package badge

import (
	"log/slog"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/gatepass/gatepass"
	"github.com/gatepass/gatepass/internal/domain"
)

// qrPixels is the rendered QR edge in pixels; large enough to stay sharp
// at the 6x raster tier.
const qrPixels = 512

// VerificationQR encodes the verify link for a record into a PNG data URI.
// Recovery level is the highest tier so the code survives print degradation
// and partial occlusion. Never fails the caller: on error the card renders
// with an empty QR region.
func VerificationQR(origin string, rec domain.AccreditationRecord) Result {
	ref := gatepass.VerifyReference(rec.AccreditationID, rec.BadgeNumber, rec.ID)
	target := gatepass.VerifyURL(origin, ref)

	png, err := qrcode.Encode(target, qrcode.Highest, qrPixels)
	if err != nil {
		slog.Warn("qr generation failed", slog.String("record", rec.ID), slog.String("error", err.Error()))
		return MissingResult
	}
	return Ok(dataURI("image/png", png))
}
