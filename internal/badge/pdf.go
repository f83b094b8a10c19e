package badge

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gatepass/gatepass"
	"github.com/gatepass/gatepass/internal/domain"
)

// PDFRenderer is the vector back-end. It consumes the same primitive list
// as the raster path but draws directly into a PDF page, so output scales
// to any physical paper size without rasterization loss.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

// pdfFontFamily names the embedded Go typefaces. Core fonts only cover
// Latin-1, so names outside that set must go through a full UTF-8 font to
// match what the raster path draws.
const pdfFontFamily = "gosans"

func registerFonts(pdf *gofpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "B", gobold.TTF)
}

// CardPDF renders front and back faces as one document, two pages unless
// the card has no back content.
func (p *PDFRenderer) CardPDF(vm domain.CardViewModel, size gatepass.SizeKey) ([]byte, error) {
	page := PageSizeFor(size)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.WidthMm, Ht: page.HeightMm},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	registerFonts(pdf)

	pdf.AddPage()
	if err := p.renderFace(pdf, FrontLayout(vm), page); err != nil {
		return nil, err
	}

	if back := BackLayout(vm); back != nil {
		pdf.AddPage()
		if err := p.renderFace(pdf, back, page); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "pdf output failed")
	}
	return buf.Bytes(), nil
}

// WrapPNG embeds already-rasterized faces into a PDF of the requested
// size, one full-bleed page per face. Used when a caller wants the raster
// path's exact pixels in a printable container.
func (p *PDFRenderer) WrapPNG(faces [][]byte, size gatepass.SizeKey) ([]byte, error) {
	page := PageSizeFor(size)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.WidthMm, Ht: page.HeightMm},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	for i, face := range faces {
		pdf.AddPage()
		name := fmt.Sprintf("face%d", i)
		pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(face))
		pdf.ImageOptions(name, 0, 0, page.WidthMm, page.HeightMm, false, opt, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "pdf output failed")
	}
	return buf.Bytes(), nil
}

func (p *PDFRenderer) renderFace(pdf *gofpdf.Fpdf, els []Element, page PageSize) error {
	for _, el := range els {
		x := el.X * page.WidthMm
		y := el.Y * page.HeightMm
		w := el.W * page.WidthMm
		h := el.H * page.HeightMm

		switch el.Kind {
		case KindRect:
			r, g, b := hexToRGB(el.Color)
			pdf.SetFillColor(r, g, b)
			pdf.Rect(x, y, w, h, "F")

		case KindImage:
			if el.ImageURI == "" {
				continue
			}
			if err := p.drawImage(pdf, el.ImageURI, x, y, w, h); err != nil {
				return err
			}

		case KindText:
			if el.Text == "" {
				continue
			}
			p.drawText(pdf, el, page, x, y, w, h)
		}
	}
	return nil
}

func (p *PDFRenderer) drawText(pdf *gofpdf.Fpdf, el Element, page PageSize, x, y, w, h float64) {
	style := ""
	if el.Bold {
		style = "B"
	}
	// Scale the design-px font size to this page's physical height, then
	// express it in points the way gofpdf expects.
	fontMm := el.FontPx / DesignHeightPx * page.HeightMm
	pdf.SetFont(pdfFontFamily, style, MmToPt(fontMm))

	r, g, b := hexToRGB(el.Color)
	pdf.SetTextColor(r, g, b)

	align := "L"
	switch el.Align {
	case AlignCenter:
		align = "C"
	case AlignRight:
		align = "R"
	}

	lineH := fontMm * 1.3
	if pdf.GetStringWidth(el.Text) > w && el.Align == AlignLeft {
		pdf.SetXY(x, y)
		pdf.MultiCell(w, lineH, el.Text, "", align, false)
		return
	}
	pdf.SetXY(x, y)
	pdf.CellFormat(w, lineH, el.Text, "", 0, align+"M", false, 0, "")
}

func (p *PDFRenderer) drawImage(pdf *gofpdf.Fpdf, uri string, x, y, w, h float64) error {
	raw, err := DecodeDataURI(uri)
	if err != nil {
		return errors.Wrap(err, "pdf image payload")
	}

	imageType := "PNG"
	switch {
	case strings.HasPrefix(uri, "data:image/jpeg"), strings.HasPrefix(uri, "data:image/jpg"):
		imageType = "JPEG"
	case strings.HasPrefix(uri, "data:image/png"):
		// gofpdf rejects 16-bit and interlaced PNGs; normalize.
		raw, err = reencodePNG(raw)
		if err != nil {
			return err
		}
	default:
		// webp, gif and friends are not embeddable directly.
		raw, err = reencodePNG(raw)
		if err != nil {
			return err
		}
	}

	name := fmt.Sprintf("i%x", xxh3.Hash(raw))
	opt := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(raw))
	if pdf.Err() {
		return errors.Errorf("pdf image registration failed: %v", pdf.Error())
	}
	pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
	return nil
}

func reencodePNG(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "pdf image decode")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "pdf image encode")
	}
	return buf.Bytes(), nil
}

func hexToRGB(s string) (int, int, int) {
	c := parseHex(s)
	return int(c.R), int(c.G), int(c.B)
}
