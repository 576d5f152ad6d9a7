package compose

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

// Fixed A4 canvas in PDF user-space points. Canvas size does not adapt to
// input content.
const (
	pageWidth  = 595.0
	pageHeight = 842.0
	pageMargin = 50.0
	fontSize   = 12.0
	lineHeight = fontSize * 1.2
	// Greedy wrap heuristic: average glyph width as a fraction of the font
	// size, not true glyph metrics.
	avgCharWidth = fontSize * 0.6
)

// Compositor converts one classified file into pages of a target PDF.
type Compositor struct {
	logger *zap.Logger
}

// NewCompositor constructs a compositor.
func NewCompositor(logger *zap.Logger) *Compositor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compositor{logger: logger}
}

// EmbedPDF validates an existing PDF and returns it as a segment whose pages
// are carried over verbatim, along with its page count.
func (c *Compositor) EmbedPDF(data []byte) ([]byte, int, error) {
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrMalformedDocument.Code, appErrors.ErrMalformedDocument.Status, "source PDF cannot be parsed")
	}
	return data, pages, nil
}

// ImageToPage decodes an image and renders it centered on a single fixed-size
// page, scaled to fit without upscaling.
func (c *Compositor) ImageToPage(data []byte) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedDocument.Code, appErrors.ErrMalformedDocument.Status, "image cannot be decoded")
	}

	imageType := "PNG"
	if format == "jpeg" {
		imageType = "JPG"
	}

	w := float64(cfg.Width)
	h := float64(cfg.Height)
	scale := 1.0
	if s := pageWidth / w; s < scale {
		scale = s
	}
	if s := pageHeight / h; s < scale {
		scale = s
	}
	w *= scale
	h *= scale

	x := (pageWidth - w) / 2
	y := (pageHeight - h) / 2
	// Rounding must never push the image off-canvas.
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w > pageWidth {
		w = pageWidth
	}
	if h > pageHeight {
		h = pageHeight
	}

	pdf := newCanvas()
	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	pdf.RegisterImageOptionsReader("upload", opts, bytes.NewReader(data))
	pdf.ImageOptions("upload", x, y, w, h, false, opts, 0, "")

	return render(pdf)
}

// TextToPage reflows extracted document text onto a single fixed-size page
// using a greedy wrap. Text overflowing the page is truncated; the returned
// flag makes that policy explicit to callers.
func (c *Compositor) TextToPage(text string) ([]byte, bool, error) {
	lines := wrapText(text, pageWidth-2*pageMargin)

	pdf := newCanvas()
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", fontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	truncated := false
	y := pageMargin + fontSize
	for i, line := range lines {
		if y > pageHeight-pageMargin {
			truncated = true
			c.logger.Warn("text overflows one page, truncating",
				zap.Int("dropped_lines", len(lines)-i))
			break
		}
		pdf.Text(pageMargin, y, tr(line))
		y += lineHeight
	}

	out, err := render(pdf)
	if err != nil {
		return nil, false, err
	}
	return out, truncated, nil
}

// DocToPage extracts the raw text of a Word document and renders it as a
// paginated text block.
func (c *Compositor) DocToPage(data []byte) ([]byte, bool, error) {
	text, err := extractDocText(data)
	if err != nil {
		return nil, false, err
	}
	return c.TextToPage(text)
}

func newCanvas() *gofpdf.Fpdf {
	return gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
}

func render(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render page")
	}
	return buf.Bytes(), nil
}

func wrapText(text string, maxWidth float64) []string {
	words := strings.Fields(text)
	lines := make([]string, 0, len(words)/8+1)
	current := ""
	for _, word := range words {
		test := word
		if current != "" {
			test = current + " " + word
		}
		if float64(len(test))*avgCharWidth > maxWidth {
			if current != "" {
				lines = append(lines, current)
				current = word
			} else {
				lines = append(lines, word)
			}
		} else {
			current = test
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// PageCount reports the number of pages in a PDF byte sequence.
func PageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), nil)
}

// mergePDFs concatenates PDF segments preserving segment order.
func mergePDFs(segments [][]byte) ([]byte, error) {
	readers := make([]io.ReadSeeker, len(segments))
	for i, seg := range segments {
		readers[i] = bytes.NewReader(seg)
	}
	buf := &bytes.Buffer{}
	if err := api.MergeRaw(readers, buf, false, nil); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedDocument.Code, appErrors.ErrMalformedDocument.Status, "merge document segments")
	}
	return buf.Bytes(), nil
}
