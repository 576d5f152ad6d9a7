package compose

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amptron-th/testdoc-api/internal/models"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

func classifiedPDF(t *testing.T, name, text string) models.ClassifiedFile {
	t.Helper()
	return models.ClassifiedFile{
		UploadedFile: models.UploadedFile{Name: name, Data: textPagePDF(t, text)},
		Kind:         models.FileKindPDF,
	}
}

func TestConsolidateIndividualPassesBytesThrough(t *testing.T) {
	c := NewConsolidator(nil, nil)

	files := []models.ClassifiedFile{
		classifiedPDF(t, "a.pdf", "first"),
		{
			UploadedFile: models.UploadedFile{Name: "scan.png", Data: fixturePNG(t, 10, 10)},
			Kind:         models.FileKindImage,
		},
	}
	artifacts, err := c.Consolidate(files, models.ModeIndividual)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	require.Equal(t, "a.pdf", artifacts[0].FileName)
	require.Equal(t, models.ArtifactKindIndividual, artifacts[0].Kind)
	require.Equal(t, files[0].Data, artifacts[0].Data)

	require.Equal(t, "scan.png", artifacts[1].FileName)
	require.Equal(t, files[1].Data, artifacts[1].Data)
}

func TestConsolidateCombinedMergesPageCounts(t *testing.T) {
	c := NewConsolidator(nil, nil)
	c.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }

	files := []models.ClassifiedFile{
		classifiedPDF(t, "a.pdf", "first"),
		classifiedPDF(t, "b.pdf", "second"),
		{
			UploadedFile: models.UploadedFile{Name: "scan.png", Data: fixturePNG(t, 10, 10)},
			Kind:         models.FileKindImage,
		},
	}
	artifacts, err := c.Consolidate(files, models.ModeCombined)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	combined := artifacts[0]
	require.Equal(t, "testreport-01092026.pdf", combined.FileName)
	require.Equal(t, models.ArtifactKindCombinedPDF, combined.Kind)
	require.Equal(t, "application/pdf", combined.MimeType)

	pages, err := PageCount(combined.Data)
	require.NoError(t, err)
	require.Equal(t, 3, pages)
}

func TestConsolidateCombinedSingleFileFallsBackToIndividual(t *testing.T) {
	c := NewConsolidator(nil, nil)

	files := []models.ClassifiedFile{classifiedPDF(t, "only.pdf", "alone")}
	artifacts, err := c.Consolidate(files, models.ModeCombined)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	require.Equal(t, "only.pdf", artifacts[0].FileName)
	require.Equal(t, models.ArtifactKindIndividual, artifacts[0].Kind)
}

func TestConsolidateCombinedAbortsOnMalformedInput(t *testing.T) {
	c := NewConsolidator(nil, nil)

	files := []models.ClassifiedFile{
		classifiedPDF(t, "good.pdf", "fine"),
		{
			UploadedFile: models.UploadedFile{Name: "broken.pdf", Data: []byte("not a pdf")},
			Kind:         models.FileKindPDF,
		},
	}
	_, err := c.Consolidate(files, models.ModeCombined)
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrMalformedDocument))
}

func TestCombinedFileNameFormat(t *testing.T) {
	name := CombinedFileName(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC))
	require.Equal(t, "testreport-03022026.pdf", name)
}
