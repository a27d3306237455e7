package uploaders

import (
	"time"

	"github.com/angelmondragon/moments-backend/pkg/db/models"
)

// UploaderDTO is the admin view of an uploader.
type UploaderDTO struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	JoinedAt     time.Time  `json:"joined_at"`
	TotalUploads int64      `json:"total_uploads"`
	LastUpload   *time.Time `json:"last_upload,omitempty"`
}

func FromModel(u *models.Uploader) *UploaderDTO {
	if u == nil {
		return nil
	}
	dto := &UploaderDTO{
		ID:           u.ID,
		Name:         u.Name,
		JoinedAt:     u.JoinedAt.UTC(),
		TotalUploads: u.TotalUploads,
	}
	if u.LastUpload != nil {
		last := u.LastUpload.UTC()
		dto.LastUpload = &last
	}
	return dto
}
