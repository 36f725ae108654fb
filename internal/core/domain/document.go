package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the metadata record for one uploaded scheme PDF. Source is the
// normalized base name used as chunk provenance in the vector index; Scheme
// is derived from the filename during processing when it matches a known key.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	Source      string         `json:"source"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Scheme      string         `json:"scheme,omitempty"`
	Pages       int            `json:"pages,omitempty"`
	Chunks      int            `json:"chunks,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
