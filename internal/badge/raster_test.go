package badge

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/gatepass/gatepass/internal/domain"
)

func TestRenderDimensions(t *testing.T) {
	r := NewRasterizer()
	els := FrontLayout(domain.CardViewModel{FullName: "ANN SVENSSON", RoleLabel: "Athlete", RoleColorHex: "#1D4ED8"})

	for _, scale := range ScaleTiers {
		img, err := r.Render(els, scale)
		if err != nil {
			t.Fatalf("render at %dx failed: %v", scale, err)
		}
		wantW := int(DesignWidthPx) * scale
		wantH := int(DesignHeightPx) * scale
		if img.Bounds().Dx() != wantW || img.Bounds().Dy() != wantH {
			t.Fatalf("scale %d: expected %dx%d got %dx%d",
				scale, wantW, wantH, img.Bounds().Dx(), img.Bounds().Dy())
		}
	}
}

func TestRenderRectFill(t *testing.T) {
	r := NewRasterizer()
	els := []Element{
		{Kind: KindRect, X: 0, Y: 0, W: 1, H: 1, Color: "#FFFFFF"},
		{Kind: KindRect, X: 0, Y: 0, W: 1, H: 0.12, Color: "#111827"},
	}

	img, err := r.Render(els, 1)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	header := img.NRGBAAt(10, 10)
	if header.R != 0x11 || header.G != 0x18 || header.B != 0x27 {
		t.Fatalf("expected header fill at (10,10), got %+v", header)
	}
	body := img.NRGBAAt(10, int(DesignHeightPx)-10)
	if body.R != 0xFF || body.G != 0xFF || body.B != 0xFF {
		t.Fatalf("expected white body at bottom, got %+v", body)
	}
}

func TestRenderEmbedsImages(t *testing.T) {
	r := NewRasterizer()
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testPNG(t))
	els := []Element{
		{Kind: KindRect, X: 0, Y: 0, W: 1, H: 1, Color: "#FFFFFF"},
		{Kind: KindImage, X: 0.1, Y: 0.1, W: 0.3, H: 0.3, ImageURI: uri},
	}
	if _, err := r.Render(els, 2); err != nil {
		t.Fatalf("render with image failed: %v", err)
	}
}

func TestRenderFailsClosedOnBadImage(t *testing.T) {
	r := NewRasterizer()
	els := []Element{
		{Kind: KindRect, X: 0, Y: 0, W: 1, H: 1, Color: "#FFFFFF"},
		{Kind: KindImage, X: 0.1, Y: 0.1, W: 0.3, H: 0.3, ImageURI: "data:image/png;base64,!!!notbase64"},
	}
	if _, err := r.Render(els, 1); err == nil {
		t.Fatalf("expected render to fail on undecodable image payload")
	}
}

func TestRenderPNG(t *testing.T) {
	r := NewRasterizer()
	payload, err := r.RenderPNG(FrontLayout(domain.CardViewModel{FullName: "X"}), 1)
	if err != nil {
		t.Fatalf("render png failed: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(payload)); err != nil {
		t.Fatalf("output is not a decodable png: %v", err)
	}
}

func TestParseHex(t *testing.T) {
	c := parseHex("#1D4ED8")
	if c.R != 0x1D || c.G != 0x4E || c.B != 0xD8 || c.A != 0xFF {
		t.Fatalf("unexpected color %+v", c)
	}
	// Garbage degrades to opaque black rather than failing.
	if parseHex("nope").A != 0xFF {
		t.Fatalf("expected opaque fallback")
	}
}

func TestDrawTextStaysInsideBox(t *testing.T) {
	fontOnce.Do(loadFonts)
	if fontErr != nil {
		t.Fatalf("font load failed: %v", fontErr)
	}
	r := NewRasterizer()
	face, err := r.face(20, false)
	if err != nil {
		t.Fatalf("face: %v", err)
	}

	dst := imaging.New(300, 300, color.NRGBA{255, 255, 255, 255})
	el := Element{
		Kind:   KindText,
		Text:   strings.Repeat("word ", 40),
		FontPx: 20,
		Color:  "#000000",
	}

	const px, py, pw = 10, 10, 120
	lineH := face.Metrics().Height.Ceil()
	ph := 2*lineH + 4

	if err := drawText(dst, el, face, px, py, pw, ph); err != nil {
		t.Fatalf("draw text: %v", err)
	}

	// Only the two lines that fit the box may be drawn; a third line would
	// leave ink in the band below it.
	for yy := py + ph + lineH/2; yy < py+ph+2*lineH; yy++ {
		for xx := px; xx < px+pw; xx++ {
			c := dst.NRGBAAt(xx, yy)
			if c.R != 255 || c.G != 255 || c.B != 255 {
				t.Fatalf("pixel at (%d,%d) drawn below the text box", xx, yy)
			}
		}
	}
}
