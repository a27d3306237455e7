package models

import "time"

// Uploader is the identity recorded for whoever submitted media.
type Uploader struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Name         string     `gorm:"column:name;not null"`
	JoinedAt     time.Time  `gorm:"column:joined_at;not null"`
	TotalUploads int64      `gorm:"column:total_uploads;not null;default:0"`
	LastUpload   *time.Time `gorm:"column:last_upload"`
}

func (Uploader) TableName() string { return "uploaders" }
