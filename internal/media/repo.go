package media

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/moments-backend/pkg/db/models"
	"github.com/angelmondragon/moments-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned by repositories when no record matches the id.
var ErrNotFound = errors.New("media not found")

// ListFilter narrows List results. A nil Status matches every record.
type ListFilter struct {
	Status *enums.MediaStatus
}

// Repository exposes media metadata persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert persists a new media record.
func (r *Repository) Insert(ctx context.Context, media *models.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}

// FindByID retrieves a media record by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var m models.Media
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns records newest first. Records uploaded at the same instant are
// ordered by id, which is time-ordered, so later inserts come first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Media, error) {
	query := r.db.WithContext(ctx).Model(&models.Media{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	var rows []models.Media
	if err := query.Order("uploaded_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus writes the status only when the stored version still matches.
// It reports false when another writer got there first or the row is gone.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int64, status enums.MediaStatus, updatedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"status":     status,
			"updated_at": updatedAt,
			"version":    gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete removes a media record and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Media{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type statusCount struct {
	Status enums.MediaStatus
	Count  int64
}

// CountByStatus returns the number of records per status. Statuses without
// records are present with a zero count.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.MediaStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := emptyCounts()
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountUploadedSince counts records uploaded strictly after since.
func (r *Repository) CountUploadedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Where("uploaded_at > ?", since.UTC()).
		Count(&count).Error
	return count, err
}

// DeleteAll empties the collection.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Media{}).Error
}

func emptyCounts() map[enums.MediaStatus]int64 {
	counts := make(map[enums.MediaStatus]int64, 3)
	for _, status := range enums.MediaStatuses() {
		counts[status] = 0
	}
	return counts
}

// Store is the persistence surface shared by Repository and MemoryRepository.
type Store interface {
	mediaRepository
	DeleteAll(ctx context.Context) error
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MemoryRepository)(nil)
)
