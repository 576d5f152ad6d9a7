// Package storage defines the remote artifact store consumed by the delivery
// pipeline and its Google Drive and S3-compatible implementations.
package storage

import (
	"context"
	"strings"
)

// Object is one artifact payload headed for the store.
type Object struct {
	Name     string
	MimeType string
	Data     []byte
	// FolderID is the identifier returned by EnsureFolder, empty for
	// top-level placement.
	FolderID string
}

// StoredObject describes a successfully stored artifact. Locators are stable
// and publicly readable.
type StoredObject struct {
	RemoteID    string
	ViewURL     string
	DownloadURL string
}

// ObjectStore is the remote artifact store interface. EnsureFolder is
// idempotent per logical name. Put performs no implicit retry; retry policy
// belongs to the orchestrator.
type ObjectStore interface {
	EnsureFolder(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, obj Object) (*StoredObject, error)
}

const invalidFolderChars = `<>:"/\|?*`

// NormalizeFolderName strips characters the store rejects and trims
// whitespace. An empty result means "no folder". Normalization is
// idempotent.
func NormalizeFolderName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if strings.ContainsRune(invalidFolderChars, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// FolderFromPath extracts the parent directory segment of a relative upload
// path, the folder hint used when no explicit folder name is supplied.
func FolderFromPath(path string) string {
	if path == "" {
		return ""
	}
	normalized := strings.ReplaceAll(path, `\`, "/")
	parts := strings.Split(normalized, "/")
	if len(parts) > 1 {
		return parts[len(parts)-2]
	}
	return ""
}
