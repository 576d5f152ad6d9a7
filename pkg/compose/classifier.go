package compose

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/amptron-th/testdoc-api/internal/models"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

// kindByExtension maps supported file extensions to pipeline kinds. The
// extension is authoritative; declared content types from clients are
// advisory only.
var kindByExtension = map[string]models.FileKind{
	".pdf":  models.FileKindPDF,
	".doc":  models.FileKindDoc,
	".docx": models.FileKindDoc,
	".png":  models.FileKindImage,
	".jpg":  models.FileKindImage,
	".jpeg": models.FileKindImage,
}

var mimeByExtension = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Classify assigns an uploaded file to exactly one supported kind or rejects
// it with UNSUPPORTED_MEDIA_KIND.
func Classify(f models.UploadedFile) (models.ClassifiedFile, error) {
	ext := strings.ToLower(filepath.Ext(f.Name))
	kind, ok := kindByExtension[ext]
	if !ok {
		return models.ClassifiedFile{}, appErrors.Clone(appErrors.ErrUnsupportedMediaKind, fmt.Sprintf("file type %q is not supported", ext))
	}
	return models.ClassifiedFile{UploadedFile: f, Kind: kind}, nil
}

// MimeType resolves the media type for a classified file, preferring the
// declared content type and falling back to the extension mapping.
func MimeType(f models.ClassifiedFile) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	if mt, ok := mimeByExtension[strings.ToLower(filepath.Ext(f.Name))]; ok {
		return mt
	}
	return "application/octet-stream"
}
