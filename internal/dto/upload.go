// Package dto defines the HTTP request and response shapes.
package dto

import "github.com/amptron-th/testdoc-api/internal/models"

// UploadForm carries the non-file fields of the multipart upload request.
type UploadForm struct {
	UploadMode string `form:"uploadMode"`
	FolderName string `form:"folderName"`
}

// Mode maps the form value to a consolidation mode, defaulting to individual.
func (f UploadForm) Mode() models.ConsolidationMode {
	if f.UploadMode == string(models.ModeCombined) {
		return models.ModeCombined
	}
	return models.ModeIndividual
}

// UploadResponse is the per-request delivery outcome.
type UploadResponse struct {
	Results []models.DeliveryResult `json:"results"`
}
