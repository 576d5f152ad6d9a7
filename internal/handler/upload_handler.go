// Package handler exposes the HTTP endpoints of the delivery pipeline.
package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amptron-th/testdoc-api/internal/dto"
	"github.com/amptron-th/testdoc-api/internal/models"
	"github.com/amptron-th/testdoc-api/internal/service"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
	"github.com/amptron-th/testdoc-api/pkg/response"
)

// UploadHandler exposes the upload pipeline endpoint.
type UploadHandler struct {
	uploads     *service.UploadService
	auth        *service.AuthService
	metrics     *service.MetricsService
	maxFileSize int64
}

// NewUploadHandler constructs handler.
func NewUploadHandler(uploads *service.UploadService, auth *service.AuthService, metrics *service.MetricsService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{uploads: uploads, auth: auth, metrics: metrics, maxFileSize: maxFileSize}
}

// Upload godoc
// @Summary Upload documents and generate QR codes
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload"
// @Param uploadMode formData string false "individual or combined"
// @Param folderName formData string false "Target folder name"
// @Success 200 {object} response.Envelope
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	var form dto.UploadForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid upload form"))
		return
	}

	multipart, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid multipart payload"))
		return
	}
	headers := multipart.File["files"]
	if len(headers) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "no files uploaded"))
		return
	}

	files := make([]models.UploadedFile, 0, len(headers))
	for _, header := range headers {
		if h.maxFileSize > 0 && header.Size > h.maxFileSize {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds the size limit: "+header.Filename))
			return
		}
		src, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "read uploaded file"))
			return
		}
		data, err := io.ReadAll(src)
		_ = src.Close()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "read uploaded file"))
			return
		}
		files = append(files, models.UploadedFile{
			Name:         header.Filename,
			RelativePath: header.Filename,
			ContentType:  header.Header.Get("Content-Type"),
			Data:         data,
		})
	}

	h.metrics.RecordUpload()

	results, err := h.uploads.Process(c.Request.Context(), files, form.Mode(), form.FolderName)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrAuthorizationRequired) && h.auth != nil {
			response.Error(c, err, map[string]interface{}{"authUrl": h.auth.AuthURL()})
			return
		}
		response.Error(c, err)
		return
	}

	succeeded, failed := 0, 0
	for _, res := range results {
		if res.Succeeded() {
			succeeded++
			h.metrics.RecordArtifactStored(res.Kind)
		} else {
			failed++
		}
	}

	response.JSON(c, http.StatusOK, dto.UploadResponse{Results: results}, nil, map[string]interface{}{
		"succeeded": succeeded,
		"failed":    failed,
	})
}
