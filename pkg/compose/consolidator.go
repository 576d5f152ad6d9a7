package compose

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/amptron-th/testdoc-api/internal/models"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

// Consolidator turns an ordered list of classified files into storable
// artifacts, either one combined PDF or one artifact per input.
type Consolidator struct {
	compositor *Compositor
	logger     *zap.Logger
	now        func() time.Time
}

// NewConsolidator constructs a consolidator.
func NewConsolidator(compositor *Compositor, logger *zap.Logger) *Consolidator {
	if compositor == nil {
		compositor = NewCompositor(logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consolidator{compositor: compositor, logger: logger, now: time.Now}
}

// Consolidate builds the output artifacts for a request. Combined mode only
// applies when more than one file is present; otherwise each file becomes its
// own artifact with bytes passed through unchanged.
//
// A single malformed input aborts the entire consolidation; partial combined
// documents are never emitted.
func (c *Consolidator) Consolidate(files []models.ClassifiedFile, mode models.ConsolidationMode) ([]models.Artifact, error) {
	if mode == models.ModeCombined && len(files) > 1 {
		artifact, err := c.combine(files)
		if err != nil {
			return nil, err
		}
		return []models.Artifact{*artifact}, nil
	}

	artifacts := make([]models.Artifact, 0, len(files))
	for _, f := range files {
		artifacts = append(artifacts, models.Artifact{
			FileName:   f.Name,
			MimeType:   MimeType(f),
			Data:       f.Data,
			Kind:       models.ArtifactKindIndividual,
			SourcePath: sourcePath(f),
		})
	}
	return artifacts, nil
}

func (c *Consolidator) combine(files []models.ClassifiedFile) (*models.Artifact, error) {
	segments := make([][]byte, 0, len(files))
	for _, f := range files {
		seg, err := c.segment(f)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	merged, err := mergePDFs(segments)
	if err != nil {
		return nil, err
	}

	name := CombinedFileName(c.now())
	c.logger.Info("combined document built",
		zap.String("file_name", name),
		zap.Int("inputs", len(files)))

	return &models.Artifact{
		FileName:   name,
		MimeType:   "application/pdf",
		Data:       merged,
		Kind:       models.ArtifactKindCombinedPDF,
		SourcePath: sourcePath(files[0]),
	}, nil
}

// segment renders one file as a PDF fragment whose pages are appended in
// input order.
func (c *Consolidator) segment(f models.ClassifiedFile) ([]byte, error) {
	switch f.Kind {
	case models.FileKindPDF:
		seg, _, err := c.compositor.EmbedPDF(f.Data)
		return seg, err
	case models.FileKindImage:
		return c.compositor.ImageToPage(f.Data)
	case models.FileKindDoc:
		seg, truncated, err := c.compositor.DocToPage(f.Data)
		if truncated {
			c.logger.Warn("document text truncated to one page", zap.String("file", f.Name))
		}
		return seg, err
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMediaKind, fmt.Sprintf("no composition rule for kind %q", f.Kind))
	}
}

// CombinedFileName derives the deterministic combined artifact name for a
// given day. Same-day combined uploads share a name; the store treats
// same-name uploads as independent objects.
func CombinedFileName(t time.Time) string {
	return fmt.Sprintf("testreport-%s.pdf", t.Format("02012006"))
}

func sourcePath(f models.ClassifiedFile) string {
	if f.RelativePath != "" {
		return f.RelativePath
	}
	return f.Name
}
