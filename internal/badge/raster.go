package badge

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Rasterizer renders a primitive list to a bitmap at one of the supported
// scale tiers. It is the in-process counterpart of the original offscreen
// DOM capture: same design box, same layout input, PNG out.
type Rasterizer struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	sizePx float64
	bold   bool
}

var (
	fontOnce    sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontErr     error
)

func loadFonts() {
	regularFont, fontErr = opentype.Parse(goregular.TTF)
	if fontErr != nil {
		return
	}
	boldFont, fontErr = opentype.Parse(gobold.TTF)
}

func NewRasterizer() *Rasterizer {
	return &Rasterizer{faces: make(map[faceKey]font.Face)}
}

// Render rasterizes one face of the card at the given scale tier. Any
// failure discards the whole bitmap; partial artifacts are never returned.
func (r *Rasterizer) Render(els []Element, scale int) (*image.NRGBA, error) {
	fontOnce.Do(loadFonts)
	if fontErr != nil {
		return nil, errors.Wrap(fontErr, "font load failed")
	}

	scale = ClampScale(scale)
	w := int(DesignWidthPx) * scale
	h := int(DesignHeightPx) * scale
	dst := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})

	for _, el := range els {
		px := int(el.X * float64(w))
		py := int(el.Y * float64(h))
		pw := int(el.W * float64(w))
		ph := int(el.H * float64(h))

		switch el.Kind {
		case KindRect:
			fill := image.NewUniform(parseHex(el.Color))
			draw.Draw(dst, image.Rect(px, py, px+pw, py+ph), fill, image.Point{}, draw.Over)

		case KindImage:
			if el.ImageURI == "" {
				continue
			}
			raw, err := DecodeDataURI(el.ImageURI)
			if err != nil {
				return nil, errors.Wrap(err, "capture failed: bad image payload")
			}
			img, err := imaging.Decode(bytes.NewReader(raw))
			if err != nil {
				return nil, errors.Wrap(err, "capture failed: undecodable image")
			}
			fitted := imaging.Fit(img, pw, ph, imaging.Lanczos)
			// Center inside the slot.
			ox := px + (pw-fitted.Bounds().Dx())/2
			oy := py + (ph-fitted.Bounds().Dy())/2
			draw.Draw(dst, fitted.Bounds().Add(image.Pt(ox, oy)), fitted, image.Point{}, draw.Over)

		case KindText:
			if el.Text == "" {
				continue
			}
			face, err := r.face(el.FontPx*float64(scale), el.Bold)
			if err != nil {
				return nil, errors.Wrap(err, "capture failed: font face")
			}
			if err := drawText(dst, el, face, px, py, pw, ph); err != nil {
				return nil, err
			}
		}
	}
	return dst, nil
}

// RenderPNG renders one face and serializes it.
func (r *Rasterizer) RenderPNG(els []Element, scale int) ([]byte, error) {
	img, err := r.Render(els, scale)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "png encode failed")
	}
	return buf.Bytes(), nil
}

func (r *Rasterizer) face(sizePx float64, bold bool) (font.Face, error) {
	key := faceKey{sizePx, bold}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	src := regularFont
	if bold {
		src = boldFont
	}
	// DPI 72 makes the point size equal the pixel size.
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: sizePx, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	r.faces[key] = f
	return f, nil
}

func drawText(dst draw.Image, el Element, face font.Face, px, py, pw, ph int) error {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(parseHex(el.Color)),
		Face: face,
	}

	metrics := face.Metrics()
	lineH := metrics.Height.Ceil()
	y := py + metrics.Ascent.Ceil()

	for _, line := range wrapText(d, el.Text, pw) {
		// Baseline past the element box means the line has no room left.
		if y > py+ph {
			break
		}
		lineW := d.MeasureString(line).Ceil()
		x := px
		switch el.Align {
		case AlignCenter:
			x = px + (pw-lineW)/2
		case AlignRight:
			x = px + pw - lineW
		}
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
		y += lineH
	}
	return nil
}

// wrapText word-wraps into lines no wider than maxW. Single overlong words
// are emitted as-is rather than broken.
func wrapText(d *font.Drawer, text string, maxW int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		cand := cur + " " + w
		if d.MeasureString(cand).Ceil() > maxW {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur = cand
	}
	return append(lines, cur)
}

func parseHex(s string) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{0, 0, 0, 255}
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		v[i] = hexByte(s[i*2])<<4 | hexByte(s[i*2+1])
	}
	return color.NRGBA{v[0], v[1], v[2], 255}
}

func hexByte(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
