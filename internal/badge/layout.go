package badge

import (
	"fmt"
	"strings"

	"github.com/gatepass/gatepass/internal/domain"
)

// The two rendering back-ends must stay in visual lockstep. Instead of
// duplicating pixel math in both, the layout is expressed once as data: a
// flat list of primitives positioned as fractions of the design box. The
// raster path scales fractions to pixels, the vector path to millimeters.

type Kind int

const (
	KindRect Kind = iota
	KindText
	KindImage
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Element is one layout primitive. X, Y, W, H are fractions of the design
// box; FontPx is sized against the 1x design box and scales with it.
type Element struct {
	Kind Kind

	X, Y, W, H float64

	Color string // fill color for rects, text color for text

	Text   string
	FontPx float64
	Bold   bool
	Align  Align

	// ImageURI holds an inlined data URI; elements with an empty URI are
	// skipped by both renderers (missing image policy).
	ImageURI string
}

// squareH returns the height fraction that makes a width fraction square
// in design-box coordinates.
func squareH(w float64) float64 {
	return w * DesignWidthPx / DesignHeightPx
}

const legalNotice = "This accreditation is personal and non-transferable. It must be worn " +
	"visibly at all times inside the venue and presented on request. Misuse leads to " +
	"withdrawal without compensation. The organizer declines responsibility for loss or theft."

// FrontLayout builds the front face primitive list from the view model.
func FrontLayout(vm domain.CardViewModel) []Element {
	els := []Element{
		{Kind: KindRect, X: 0, Y: 0, W: 1, H: 1, Color: "#FFFFFF"},

		// Header band: event identity.
		{Kind: KindRect, X: 0, Y: 0, W: 1, H: 0.12, Color: "#111827"},
	}

	if vm.LogoDataURI != "" {
		els = append(els, Element{Kind: KindImage, X: 0.03, Y: 0.015, W: 0.12, H: 0.09, ImageURI: vm.LogoDataURI})
	}
	els = append(els,
		Element{Kind: KindText, X: 0.17, Y: 0.022, W: 0.80, H: 0.05, Text: vm.EventName, FontPx: 14, Bold: true, Color: "#FFFFFF"},
		Element{Kind: KindText, X: 0.17, Y: 0.072, W: 0.80, H: 0.035, Text: vm.EventLocation, FontPx: 10, Color: "#D1D5DB"},

		// Role banner carries the resolved role color.
		Element{Kind: KindRect, X: 0, Y: 0.12, W: 1, H: 0.08, Color: vm.RoleColorHex},
		Element{Kind: KindText, X: 0, Y: 0.138, W: 1, H: 0.05, Text: strings.ToUpper(vm.RoleLabel), FontPx: 18, Bold: true, Align: AlignCenter, Color: "#FFFFFF"},

		// Photo column.
		Element{Kind: KindRect, X: 0.05, Y: 0.23, W: 0.38, H: 0.33, Color: "#E5E7EB"},
	)
	if vm.PhotoDataURI != "" {
		els = append(els, Element{Kind: KindImage, X: 0.05, Y: 0.23, W: 0.38, H: 0.33, ImageURI: vm.PhotoDataURI})
	}
	if vm.QRDataURI != "" {
		els = append(els, Element{Kind: KindImage, X: 0.07, Y: 0.60, W: 0.34, H: squareH(0.34), ImageURI: vm.QRDataURI})
	}

	// Detail column.
	els = append(els, Element{
		Kind: KindText, X: 0.47, Y: 0.24, W: 0.48, H: 0.10,
		Text: vm.FullName, FontPx: nameFontPx(vm.FullName), Bold: true, Color: "#111827",
	})
	if vm.FlagDataURI != "" {
		els = append(els, Element{Kind: KindImage, X: 0.47, Y: 0.355, W: 0.08, H: 0.042, ImageURI: vm.FlagDataURI})
	}
	els = append(els, Element{Kind: KindText, X: 0.57, Y: 0.358, W: 0.38, H: 0.04, Text: vm.CountryName, FontPx: 12, Color: "#374151"})
	if vm.Age != nil {
		els = append(els, Element{Kind: KindText, X: 0.47, Y: 0.42, W: 0.48, H: 0.04, Text: fmt.Sprintf("AGE %d", *vm.Age), FontPx: 12, Color: "#374151"})
	}
	if vm.BadgeNumber != "" {
		els = append(els, Element{Kind: KindText, X: 0.47, Y: 0.48, W: 0.48, H: 0.05, Text: vm.BadgeNumber, FontPx: 16, Bold: true, Color: "#111827"})
	}
	if vm.IDNumber != "" {
		els = append(els, Element{Kind: KindText, X: 0.47, Y: 0.545, W: 0.48, H: 0.035, Text: vm.IDNumber, FontPx: 10, Color: "#6B7280"})
	}

	// Zone badge row: the layout has four slots.
	for i, code := range vm.DisplayZones() {
		x := 0.47 + float64(i)*0.125
		els = append(els,
			Element{Kind: KindRect, X: x, Y: 0.62, W: 0.105, H: 0.055, Color: vm.RoleColorHex},
			Element{Kind: KindText, X: x, Y: 0.633, W: 0.105, H: 0.035, Text: code, FontPx: 13, Bold: true, Align: AlignCenter, Color: "#FFFFFF"},
		)
	}

	if vm.Expired {
		els = append(els, Element{Kind: KindText, X: 0, Y: 0.72, W: 1, H: 0.06, Text: "EXPIRED", FontPx: 22, Bold: true, Align: AlignCenter, Color: "#DC2626"})
	}

	// Sponsor row: six slots along the bottom edge.
	shown := 0
	for _, uri := range vm.SponsorDataURIs {
		if uri == "" || shown >= maxSponsorLogos {
			continue
		}
		x := 0.03 + float64(shown)*0.158
		els = append(els, Element{Kind: KindImage, X: x, Y: 0.90, W: 0.14, H: 0.07, ImageURI: uri})
		shown++
	}

	return els
}

// BackLayout builds the back face. A supplied template image takes the full
// bleed; otherwise a zone listing plus legal notice is generated. Returns
// nil when the card has no back content.
func BackLayout(vm domain.CardViewModel) []Element {
	if vm.BackTemplateDataURI != "" {
		return []Element{
			{Kind: KindImage, X: 0, Y: 0, W: 1, H: 1, ImageURI: vm.BackTemplateDataURI},
		}
	}
	if len(vm.ZoneCodes) == 0 {
		return nil
	}

	els := []Element{
		{Kind: KindRect, X: 0, Y: 0, W: 1, H: 1, Color: "#FFFFFF"},
		{Kind: KindRect, X: 0, Y: 0, W: 1, H: 0.12, Color: "#111827"},
		{Kind: KindText, X: 0, Y: 0.04, W: 1, H: 0.05, Text: "ACCESS ZONES", FontPx: 16, Bold: true, Align: AlignCenter, Color: "#FFFFFF"},
	}

	y := 0.17
	for _, code := range vm.ZoneCodes {
		if y > 0.58 {
			break
		}
		els = append(els,
			Element{Kind: KindRect, X: 0.06, Y: y, W: 0.13, H: 0.06, Color: vm.RoleColorHex},
			Element{Kind: KindText, X: 0.06, Y: y + 0.014, W: 0.13, H: 0.035, Text: code, FontPx: 13, Bold: true, Align: AlignCenter, Color: "#FFFFFF"},
		)
		name := vm.ZoneNames[code]
		if name == "" {
			name = code
		}
		els = append(els, Element{Kind: KindText, X: 0.24, Y: y + 0.014, W: 0.70, H: 0.04, Text: name, FontPx: 13, Color: "#111827"})
		y += 0.085
	}

	if vm.ReportingTimes != "" {
		els = append(els,
			Element{Kind: KindText, X: 0.06, Y: 0.64, W: 0.88, H: 0.04, Text: "REPORTING TIMES", FontPx: 11, Bold: true, Color: "#374151"},
			Element{Kind: KindText, X: 0.06, Y: 0.685, W: 0.88, H: 0.09, Text: vm.ReportingTimes, FontPx: 10, Color: "#374151"},
		)
	}

	els = append(els, Element{Kind: KindText, X: 0.06, Y: 0.82, W: 0.88, H: 0.14, Text: legalNotice, FontPx: 8, Color: "#6B7280"})
	return els
}
