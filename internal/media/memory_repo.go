package media

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/angelmondragon/moments-backend/pkg/db/models"
	"github.com/angelmondragon/moments-backend/pkg/enums"
	"github.com/google/uuid"
)

// MemoryRepository keeps media records in process memory. It backs the
// in-memory store mode and service tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]models.Media
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[uuid.UUID]models.Media)}
}

func (r *MemoryRepository) Insert(_ context.Context, media *models.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[media.ID] = cloneMedia(*media)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneMedia(row)
	return &out, nil
}

func (r *MemoryRepository) List(_ context.Context, filter ListFilter) ([]models.Media, error) {
	r.mu.RLock()
	out := make([]models.Media, 0, len(r.rows))
	for _, row := range r.rows {
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		out = append(out, cloneMedia(row))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i], out[j])
	})
	return out, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, expectedVersion int64, status enums.MediaStatus, updatedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.Version != expectedVersion {
		return false, nil
	}
	row.Status = status
	row.UpdatedAt = updatedAt
	row.Version++
	r.rows[id] = row
	return true, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *MemoryRepository) CountByStatus(_ context.Context) (map[enums.MediaStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := emptyCounts()
	for _, row := range r.rows {
		counts[row.Status]++
	}
	return counts, nil
}

func (r *MemoryRepository) CountUploadedSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, row := range r.rows {
		if row.UploadedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = make(map[uuid.UUID]models.Media)
	return nil
}

func newerFirst(a, b models.Media) bool {
	if !a.UploadedAt.Equal(b.UploadedAt) {
		return a.UploadedAt.After(b.UploadedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

func cloneMedia(m models.Media) models.Media {
	if m.ObjectKey != nil {
		key := *m.ObjectKey
		m.ObjectKey = &key
	}
	return m
}
