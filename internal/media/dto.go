package media

import (
	"io"
	"time"

	"github.com/angelmondragon/moments-backend/pkg/enums"
	"github.com/google/uuid"
)

// UploadInput carries one multipart upload into the service.
type UploadInput struct {
	File        io.Reader
	FileName    string
	Size        int64
	UserName    string
	UserID      string
	Description string
}

// MediaDTO is the public representation of a media record. URL is always
// directly readable by a browser.
type MediaDTO struct {
	ID          uuid.UUID         `json:"id"`
	FileName    string            `json:"file_name"`
	Type        enums.MediaType   `json:"type"`
	URL         string            `json:"url"`
	ContentType string            `json:"content_type,omitempty"`
	SizeBytes   int64             `json:"size_bytes"`
	UserName    string            `json:"user_name"`
	UserID      string            `json:"user_id"`
	Description string            `json:"description"`
	Status      enums.MediaStatus `json:"status"`
	UploadedAt  time.Time         `json:"uploaded_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type UploadResult struct {
	ID      uuid.UUID         `json:"id"`
	UserID  string            `json:"user_id"`
	Status  enums.MediaStatus `json:"status"`
	Message string            `json:"message"`
	Media   MediaDTO          `json:"media"`
}

type StatusResult struct {
	Media   MediaDTO `json:"media"`
	Message string   `json:"message"`
}

type RemoveResult struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
}

// FilterCounts backs the admin dashboard filter tabs.
type FilterCounts struct {
	All      int64 `json:"all"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type AdminListResult struct {
	Filter string       `json:"filter"`
	Items  []MediaDTO   `json:"items"`
	Counts FilterCounts `json:"counts"`
}

type Stats struct {
	Total         int64 `json:"total"`
	Pending       int64 `json:"pending"`
	Approved      int64 `json:"approved"`
	Rejected      int64 `json:"rejected"`
	TotalUsers    int64 `json:"total_users"`
	RecentUploads int64 `json:"recent_uploads"`
}

// BulkItemResult reports the outcome for one id of a bulk status change.
type BulkItemResult struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type BulkResult struct {
	Status    enums.MediaStatus `json:"status"`
	Items     []BulkItemResult  `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}
