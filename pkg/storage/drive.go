package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/amptron-th/testdoc-api/pkg/config"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

const driveFolderMimeType = "application/vnd.google-apps.folder"

// TokenProvider hands out a live OAuth token source. An error means the user
// has not completed the authorization flow yet.
type TokenProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// DriveStore stores artifacts in Google Drive, one folder per logical name,
// each file made publicly readable.
type DriveStore struct {
	tokens  TokenProvider
	timeout time.Duration
	logger  *zap.Logger

	// Folder creation is search-then-create, so concurrent uploads into the
	// same folder must be serialized or they race into duplicates.
	mu      sync.Mutex
	folders map[string]*sync.Mutex
}

// NewDriveStore constructs a Drive-backed store.
func NewDriveStore(tokens TokenProvider, cfg config.StoreConfig, logger *zap.Logger) *DriveStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DriveStore{
		tokens:  tokens,
		timeout: timeout,
		logger:  logger,
		folders: make(map[string]*sync.Mutex),
	}
}

func (s *DriveStore) service(ctx context.Context) (*drive.Service, error) {
	ts, err := s.tokens.TokenSource(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAuthorizationRequired.Code, appErrors.ErrAuthorizationRequired.Status, "Google Drive authorization required")
	}
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreFailure.Code, appErrors.ErrStoreFailure.Status, "create Drive client")
	}
	return svc, nil
}

func (s *DriveStore) folderLock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.folders[name]
	if !ok {
		lock = &sync.Mutex{}
		s.folders[name] = lock
	}
	return lock
}

// EnsureFolder resolves a folder name to its Drive identifier, creating the
// folder on first use. The name must already be normalized.
func (s *DriveStore) EnsureFolder(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}

	lock := s.folderLock(name)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	svc, err := s.service(ctx)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false",
		escapeQuery(name), driveFolderMimeType)
	list, err := svc.Files.List().Q(query).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrStoreFailure.Code, appErrors.ErrStoreFailure.Status, "search for folder")
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	folder, err := svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: driveFolderMimeType,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrStoreFailure.Code, appErrors.ErrStoreFailure.Status, "create folder")
	}

	s.logger.Info("drive folder created", zap.String("folder", name), zap.String("folder_id", folder.Id))
	return folder.Id, nil
}

// Put uploads the object and grants public read access so the locators work
// without authentication. Same-name uploads create independent files.
func (s *DriveStore) Put(ctx context.Context, obj Object) (*StoredObject, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	svc, err := s.service(ctx)
	if err != nil {
		return nil, err
	}

	meta := &drive.File{Name: obj.Name}
	if obj.FolderID != "" {
		meta.Parents = []string{obj.FolderID}
	}

	file, err := svc.Files.Create(meta).
		Media(bytes.NewReader(obj.Data), googleapi.ContentType(obj.MimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreFailure.Code, appErrors.ErrStoreFailure.Status, "upload file")
	}

	_, err = svc.Permissions.Create(file.Id, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreFailure.Code, appErrors.ErrStoreFailure.Status, "grant public read access")
	}

	s.logger.Info("artifact stored",
		zap.String("file_name", obj.Name),
		zap.String("file_id", file.Id),
		zap.Int("bytes", len(obj.Data)))

	return &StoredObject{
		RemoteID:    file.Id,
		ViewURL:     fmt.Sprintf("https://drive.google.com/file/d/%s/view", file.Id),
		DownloadURL: fmt.Sprintf("https://drive.google.com/uc?id=%s", file.Id),
	}, nil
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), "'", `\'`)
}
