package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/amptron-th/testdoc-api/internal/models"
	"github.com/amptron-th/testdoc-api/pkg/compose"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
	"github.com/amptron-th/testdoc-api/pkg/qrcode"
	"github.com/amptron-th/testdoc-api/pkg/storage"
)

// CodeGenerator renders a scannable code for an artifact locator.
type CodeGenerator interface {
	Generate(locator string) ([]byte, error)
}

// UploadService runs the delivery pipeline: classify, consolidate, store,
// generate codes. Results are retained in memory so later notification
// requests can reuse the generated code by file name.
type UploadService struct {
	consolidator *compose.Consolidator
	store        storage.ObjectStore
	codes        CodeGenerator
	logger       *zap.Logger

	mu      sync.RWMutex
	results map[string]models.DeliveryResult
}

// NewUploadService constructs the upload pipeline service.
func NewUploadService(consolidator *compose.Consolidator, store storage.ObjectStore, codes CodeGenerator, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if consolidator == nil {
		consolidator = compose.NewConsolidator(nil, logger)
	}
	return &UploadService{
		consolidator: consolidator,
		store:        store,
		codes:        codes,
		logger:       logger,
		results:      make(map[string]models.DeliveryResult),
	}
}

// Process runs a batch of uploads through the pipeline and returns one result
// per artifact, in input order.
//
// In individual mode each file fails independently; a bad file yields a
// failed result slot and the rest proceed. In combined mode any bad file
// aborts the whole request since a partial combined document must never ship.
// An authorization failure always aborts, whatever the mode.
func (s *UploadService) Process(ctx context.Context, files []models.UploadedFile, mode models.ConsolidationMode, folderName string) ([]models.DeliveryResult, error) {
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files uploaded")
	}

	classified := make([]models.ClassifiedFile, 0, len(files))
	failed := make([]models.DeliveryResult, 0)
	for _, f := range files {
		cf, err := compose.Classify(f)
		if err != nil {
			if mode == models.ModeCombined {
				return nil, err
			}
			failed = append(failed, models.DeliveryResult{
				FileName: f.Name,
				Kind:     models.ArtifactKindIndividual,
				Error:    appErrors.FromError(err).Message,
			})
			continue
		}
		classified = append(classified, cf)
	}

	results := make([]models.DeliveryResult, 0, len(classified)+len(failed))
	if len(classified) > 0 {
		artifacts, err := s.consolidator.Consolidate(classified, mode)
		if err != nil {
			return nil, err
		}
		for _, artifact := range artifacts {
			res, err := s.deliver(ctx, artifact, folderName)
			if err != nil {
				if appErrors.Is(err, appErrors.ErrAuthorizationRequired) {
					return nil, err
				}
				if mode == models.ModeCombined {
					return nil, err
				}
				res = models.DeliveryResult{
					FileName: artifact.FileName,
					Kind:     artifact.Kind,
					Error:    appErrors.FromError(err).Message,
				}
			}
			results = append(results, res)
		}
	}
	results = append(results, failed...)

	s.remember(results)
	return results, nil
}

// deliver stores one artifact and binds a code to its view locator.
func (s *UploadService) deliver(ctx context.Context, artifact models.Artifact, folderName string) (models.DeliveryResult, error) {
	folder := resolveFolder(folderName, artifact.SourcePath)

	var folderID string
	if folder != "" {
		var err error
		folderID, err = s.store.EnsureFolder(ctx, folder)
		if err != nil {
			return models.DeliveryResult{}, err
		}
	}

	stored, err := s.store.Put(ctx, storage.Object{
		Name:     artifact.FileName,
		MimeType: artifact.MimeType,
		Data:     artifact.Data,
		FolderID: folderID,
	})
	if err != nil {
		return models.DeliveryResult{}, err
	}

	display := folder
	if display == "" {
		display = "Root"
	}
	res := models.DeliveryResult{
		FileName:    artifact.FileName,
		FileID:      stored.RemoteID,
		ViewURL:     stored.ViewURL,
		DownloadURL: stored.DownloadURL,
		Kind:        artifact.Kind,
		FolderName:  display,
	}

	// The code binds to the view locator. A code failure downgrades the
	// result instead of discarding a stored artifact.
	png, err := s.codes.Generate(stored.ViewURL)
	if err != nil {
		s.logger.Warn("code generation failed, delivering without code",
			zap.String("file_name", artifact.FileName), zap.Error(err))
	} else {
		res.QRCode = qrcode.DataURL(png)
	}

	s.logger.Info("artifact delivered",
		zap.String("file_name", res.FileName),
		zap.String("file_id", res.FileID),
		zap.String("folder", folder),
		zap.String("kind", res.Kind))
	return res, nil
}

// Lookup returns the retained delivery result for a file name, if any.
func (s *UploadService) Lookup(fileName string) (models.DeliveryResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[fileName]
	return res, ok
}

func (s *UploadService) remember(results []models.DeliveryResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, res := range results {
		if res.Succeeded() {
			s.results[res.FileName] = res
		}
	}
}

// resolveFolder picks the explicit folder name over the upload's parent
// directory hint, then normalizes for the store.
func resolveFolder(explicit, sourcePath string) string {
	name := explicit
	if name == "" {
		name = storage.FolderFromPath(sourcePath)
	}
	return storage.NormalizeFolderName(name)
}
