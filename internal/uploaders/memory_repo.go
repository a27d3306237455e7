package uploaders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/angelmondragon/moments-backend/pkg/db/models"
)

// MemoryRepository keeps uploaders in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]models.Uploader
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]models.Uploader)}
}

func (r *MemoryRepository) Upsert(_ context.Context, id, name string, at time.Time) (*models.Uploader, error) {
	at = at.UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		row = models.Uploader{ID: id, Name: name, JoinedAt: at}
	}
	row.TotalUploads++
	last := at
	row.LastUpload = &last
	r.rows[id] = row
	out := cloneUploader(row)
	return &out, nil
}

func (r *MemoryRepository) Insert(_ context.Context, u *models.Uploader) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[u.ID] = cloneUploader(*u)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]models.Uploader, error) {
	r.mu.RLock()
	out := make([]models.Uploader, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, cloneUploader(row))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.After(out[j].JoinedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rows)), nil
}

func (r *MemoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = make(map[string]models.Uploader)
	return nil
}

func cloneUploader(u models.Uploader) models.Uploader {
	if u.LastUpload != nil {
		last := *u.LastUpload
		u.LastUpload = &last
	}
	return u
}
