package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/require"

	"github.com/amptron-th/testdoc-api/internal/models"
	"github.com/amptron-th/testdoc-api/pkg/compose"
	"github.com/amptron-th/testdoc-api/pkg/config"
	"github.com/amptron-th/testdoc-api/pkg/qrcode"
)

func pngUpload(t *testing.T, name string) models.UploadedFile {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for x := 0; x < 40; x++ {
		img.Set(x, x, color.RGBA{0, 0, 0, 255})
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return models.UploadedFile{Name: name, ContentType: "image/png", Data: buf.Bytes()}
}

// Full pipeline with a real consolidator and code generator; only the remote
// store is stubbed.
func TestCombinedImageUploadEndToEnd(t *testing.T) {
	store := newStubStore()
	codes := qrcode.NewGenerator(config.QRConfig{Size: 300}, nil)
	svc := NewUploadService(nil, store, codes, nil)

	files := []models.UploadedFile{pngUpload(t, "front.png"), pngUpload(t, "back.png")}
	results, err := svc.Process(context.Background(), files, models.ModeCombined, "Batch A")
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	expectedName := fmt.Sprintf("testreport-%s.pdf", time.Now().Format("02012006"))
	require.Equal(t, expectedName, res.FileName)
	require.Equal(t, models.ArtifactKindCombinedPDF, res.Kind)
	require.Equal(t, "Batch A", res.FolderName)
	require.Contains(t, store.folders, "Batch A")

	require.Equal(t, 1, store.putCalls)
	require.Equal(t, "application/pdf", store.lastPut.MimeType)
	pages, err := compose.PageCount(store.lastPut.Data)
	require.NoError(t, err)
	require.Equal(t, 2, pages)

	codePNG, err := qrcode.FromDataURL(res.QRCode)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(codePNG))
	require.NoError(t, err)
	bmp, err := gozxing.NewBinaryBitmapFromImage(decoded)
	require.NoError(t, err)
	scanned, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	require.Equal(t, res.ViewURL, scanned.GetText())
}
