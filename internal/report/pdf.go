package report

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gatepass/gatepass/internal/domain"
)

// Column widths in mm for an A4 landscape table, matching ListColumns.
var columnWidths = []float64{28, 22, 24, 24, 36, 18, 22, 20, 14, 16, 18, 20, 28}

// listFontFamily is the embedded Go typeface. Names and clubs are not
// Latin-1, so the core fonts are not enough here.
const listFontFamily = "gosans"

// WriteListPDF serializes the record list as a simple A4-landscape table:
// header row plus one row per record, paginating as needed.
func WriteListPDF(title string, records []domain.AccreditationRecord) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(8, 10, 8)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddUTF8FontFromBytes(listFontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(listFontFamily, "B", gobold.TTF)
	pdf.AddPage()

	pdf.SetFont(listFontFamily, "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	header := func() {
		pdf.SetFont(listFontFamily, "B", 7)
		pdf.SetFillColor(229, 231, 235)
		for i, col := range ListColumns {
			pdf.CellFormat(columnWidths[i], 6, col, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	header()

	pdf.SetFont(listFontFamily, "", 7)
	for _, r := range records {
		if pdf.GetY() > 185 {
			pdf.AddPage()
			header()
			pdf.SetFont(listFontFamily, "", 7)
		}
		for i, cell := range listRow(r) {
			pdf.CellFormat(columnWidths[i], 5.5, truncate(pdf, cell, columnWidths[i]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "list pdf output failed")
	}
	return buf.Bytes(), nil
}

// truncate shortens a cell value to fit its column instead of overflowing
// into the neighbor.
func truncate(pdf *gofpdf.Fpdf, s string, w float64) string {
	limit := w - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 1 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
