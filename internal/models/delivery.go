package models

import "time"

// FileKind classifies an uploaded file for the composition pipeline.
type FileKind string

const (
	FileKindPDF   FileKind = "pdf"
	FileKindDoc   FileKind = "doc"
	FileKindImage FileKind = "image"
)

// ConsolidationMode selects how multiple uploads are turned into artifacts.
type ConsolidationMode string

const (
	ModeIndividual ConsolidationMode = "individual"
	ModeCombined   ConsolidationMode = "combined"
)

// Artifact kind tags surfaced in delivery results.
const (
	ArtifactKindIndividual  = "individual"
	ArtifactKindCombinedPDF = "combined-pdf"
)

// UploadedFile is a raw inbound file. It is consumed by the pipeline and
// never persisted.
type UploadedFile struct {
	Name         string
	RelativePath string
	ContentType  string
	Data         []byte
}

// ClassifiedFile tags an upload with exactly one supported kind.
type ClassifiedFile struct {
	UploadedFile
	Kind FileKind
}

// Artifact is a finished byte sequence ready for storage.
type Artifact struct {
	FileName string
	MimeType string
	Data     []byte
	Kind     string // individual | combined-pdf
	// SourcePath carries the upload's original relative path so the
	// orchestrator can infer a folder from its parent segment.
	SourcePath string
}

// DeliveryResult is the per-artifact unit returned to the caller. FileID is
// carried through to ledger entries so history can be joined on the remote
// identifier rather than the display name.
type DeliveryResult struct {
	FileName    string `json:"fileName"`
	FileID      string `json:"fileId,omitempty"`
	ViewURL     string `json:"viewUrl,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	QRCode      string `json:"qrCode,omitempty"`
	Kind        string `json:"type"`
	FolderName  string `json:"folderName,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Succeeded reports whether the artifact made it to the store.
func (r DeliveryResult) Succeeded() bool {
	return r.Error == ""
}

// Email record statuses.
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// EmailRecord is one ledger entry describing a notification attempt.
// Records are immutable once created.
type EmailRecord struct {
	ID        string    `json:"id" db:"id"`
	Recipient string    `json:"recipientEmail" db:"recipient"`
	FileName  string    `json:"fileName" db:"file_name"`
	FileID    string    `json:"fileId,omitempty" db:"file_id"`
	SentAt    time.Time `json:"sentAt" db:"sent_at"`
	Status    string    `json:"status" db:"status"`
	MessageID string    `json:"messageId,omitempty" db:"message_id"`
	Error     string    `json:"error,omitempty" db:"error"`
}

// Pagination carries paging metadata in response envelopes.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}
