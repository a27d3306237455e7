package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/moments-backend/pkg/enums"
)

// Media is a single moderated upload.
type Media struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	FileName    string            `gorm:"column:file_name;not null"`
	Type        enums.MediaType   `gorm:"column:type;type:text;not null"`
	URL         string            `gorm:"column:url;not null"`
	ObjectKey   *string           `gorm:"column:object_key"`
	ContentType string            `gorm:"column:content_type;not null"`
	SizeBytes   int64             `gorm:"column:size_bytes;not null;default:0"`
	UserName    string            `gorm:"column:user_name;not null"`
	UserID      string            `gorm:"column:user_id;not null;index"`
	Description string            `gorm:"column:description;not null;default:''"`
	Status      enums.MediaStatus `gorm:"column:status;type:text;not null;default:pending;index"`
	Version     int64             `gorm:"column:version;not null;default:1"`
	UploadedAt  time.Time         `gorm:"column:uploaded_at;not null;index"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (Media) TableName() string { return "media" }
