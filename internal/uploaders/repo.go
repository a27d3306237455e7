package uploaders

import (
	"context"
	"time"

	"github.com/angelmondragon/moments-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes uploader persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an uploaders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert records one upload for id. A new row starts at one upload; an
// existing row is incremented in the same statement.
func (r *Repository) Upsert(ctx context.Context, id, name string, at time.Time) (*models.Uploader, error) {
	at = at.UTC()
	row := models.Uploader{
		ID:           id,
		Name:         name,
		JoinedAt:     at,
		TotalUploads: 1,
		LastUpload:   &at,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_uploads": gorm.Expr("total_uploads + 1"),
				"last_upload":   at,
			}),
		}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}

	var stored models.Uploader
	if err := r.db.WithContext(ctx).First(&stored, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// Insert stores a fully populated uploader, used when seeding.
func (r *Repository) Insert(ctx context.Context, u *models.Uploader) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// List returns uploaders, most recently joined first.
func (r *Repository) List(ctx context.Context) ([]models.Uploader, error) {
	var rows []models.Uploader
	if err := r.db.WithContext(ctx).Order("joined_at DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Uploader{}).Count(&count).Error
	return count, err
}

// DeleteAll empties the collection.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Uploader{}).Error
}

// Store is the persistence surface shared by Repository and MemoryRepository.
type Store interface {
	uploaderRepository
	Insert(ctx context.Context, u *models.Uploader) error
	DeleteAll(ctx context.Context) error
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MemoryRepository)(nil)
)
