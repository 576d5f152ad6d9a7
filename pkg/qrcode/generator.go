// Package qrcode renders scannable matrix codes bound to artifact locators,
// optionally compositing a brand mark over the center.
package qrcode

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	qrc "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"github.com/amptron-th/testdoc-api/pkg/config"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

const (
	defaultSize = 300
	// Brand mark sizing relative to a 300px code. The white plate covers
	// ~7% of the module area, well under the ~30% tolerated by the Highest
	// error-correction level. Keep this relationship if either the code
	// size or the EC level changes.
	markSize  = 80
	plateSize = markSize + 10
)

// Generator produces PNG matrix codes for locator strings.
type Generator struct {
	size      int
	brandMark image.Image
	logger    *zap.Logger
}

// NewGenerator loads the optional brand mark and returns a generator. A
// missing or unreadable mark downgrades to plain codes instead of failing.
func NewGenerator(cfg config.QRConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.Size
	if size <= 0 {
		size = defaultSize
	}

	g := &Generator{size: size, logger: logger}
	if cfg.BrandMarkPath != "" {
		mark, err := loadImage(cfg.BrandMarkPath)
		if err != nil {
			logger.Warn("brand mark unavailable, codes will be plain",
				zap.String("path", cfg.BrandMarkPath), zap.Error(err))
		} else {
			g.brandMark = mark
		}
	}
	return g
}

// Generate renders a PNG code for the locator at error-correction level H so
// the center overlay never breaks decodability. Compositing failures fall
// back to the plain code; code generation never blocks an upload.
func (g *Generator) Generate(locator string) ([]byte, error) {
	code, err := qrc.New(locator, qrc.Highest)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode locator")
	}
	img := code.Image(g.size)

	if g.brandMark == nil {
		return encodePNG(img)
	}

	composited, err := g.composite(img)
	if err != nil {
		g.logger.Warn("brand mark compositing failed, emitting plain code", zap.Error(err))
		return encodePNG(img)
	}
	return composited, nil
}

// composite draws a white circular backing plate at the geometric center,
// lays the scaled mark on top and applies a single sharpening pass.
func (g *Generator) composite(code image.Image) ([]byte, error) {
	bounds := code.Bounds()
	canvas := image.NewRGBA(bounds)
	xdraw.Draw(canvas, bounds, code, bounds.Min, xdraw.Src)

	cx := bounds.Min.X + bounds.Dx()/2
	cy := bounds.Min.Y + bounds.Dy()/2
	drawPlate(canvas, cx, cy, plateSize/2)

	mark := scaleToFit(g.brandMark, markSize)
	mb := mark.Bounds()
	offset := image.Pt(cx-mb.Dx()/2, cy-mb.Dy()/2)
	xdraw.Draw(canvas, mb.Add(offset.Sub(mb.Min)), mark, mb.Min, xdraw.Over)

	return encodePNG(imaging.Sharpen(canvas, 0.8))
}

// drawPlate fills a white circle; the plate is strictly larger than the mark
// to guarantee a clean contrast boundary against the code modules.
func drawPlate(canvas *image.RGBA, cx, cy, radius int) {
	white := color.RGBA{255, 255, 255, 255}
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				canvas.SetRGBA(cx+dx, cy+dy, white)
			}
		}
	}
}

func scaleToFit(src image.Image, max int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w >= h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode code image")
	}
	return buf.Bytes(), nil
}

// DataURL wraps PNG bytes as an embeddable data URL.
func DataURL(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

// FromDataURL extracts PNG bytes from a data URL produced by DataURL.
func FromDataURL(dataURL string) ([]byte, error) {
	const prefix = "data:image/png;base64,"
	if len(dataURL) <= len(prefix) || dataURL[:len(prefix)] != prefix {
		return nil, appErrors.Clone(appErrors.ErrValidation, "not a PNG data URL")
	}
	return base64.StdEncoding.DecodeString(dataURL[len(prefix):])
}
