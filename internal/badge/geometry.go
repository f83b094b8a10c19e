// Package badge implements the card rendering and export pipeline: it maps
// accreditation records to a display-ready view model and renders it through
// two independent back-ends, a raster (PNG) path and a vector (PDF) path,
// both driven by the same declarative layout.
package badge

import (
	"github.com/gatepass/gatepass"
)

// The design box every layout fraction is expressed against. All card
// positions are fractions of this box, so the same layout scales to any
// raster scale tier or physical page size.
const (
	DesignWidthPx  = 320.0
	DesignHeightPx = 454.0

	// Design pixels are interpreted at CSS density.
	pxPerInch = 96.0
	mmPerInch = 25.4
	ptPerInch = 72.0
)

// PxToMm converts design pixels to millimeters.
func PxToMm(px float64) float64 { return px / pxPerInch * mmPerInch }

// MmToPx converts millimeters to design pixels.
func MmToPx(mm float64) float64 { return mm / mmPerInch * pxPerInch }

// PxToPt converts design pixels to PDF points.
func PxToPt(px float64) float64 { return px / pxPerInch * ptPerInch }

// MmToPt converts millimeters to PDF points.
func MmToPt(mm float64) float64 { return mm / mmPerInch * ptPerInch }

// PageSize is a physical page in millimeters.
type PageSize struct {
	WidthMm  float64
	HeightMm float64
}

var pageSizes = map[gatepass.SizeKey]PageSize{
	gatepass.SizeIDCard: {85.6, 121.6},
	gatepass.SizeA6:     {105, 148},
	gatepass.SizeA5:     {148, 210},
	gatepass.SizeA4:     {210, 297},
}

// PageSizeFor resolves a size key to physical dimensions. Unknown keys fall
// back to A6 like ParseSizeKey does.
func PageSizeFor(key gatepass.SizeKey) PageSize {
	if s, ok := pageSizes[key]; ok {
		return s
	}
	return pageSizes[gatepass.SizeA6]
}

// ScaleTiers are the supported raster multipliers of the design box. Higher
// tiers trade file size for print DPI.
var ScaleTiers = []int{1, 2, 3, 4, 6}

// ClampScale snaps an arbitrary scale request onto the nearest supported
// tier, defaulting to 2x.
func ClampScale(scale int) int {
	if scale <= 0 {
		return 2
	}
	best := ScaleTiers[0]
	for _, t := range ScaleTiers {
		if abs(scale-t) < abs(scale-best) {
			best = t
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
