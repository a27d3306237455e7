package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/moments-backend/pkg/db/models"
	"github.com/angelmondragon/moments-backend/pkg/enums"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/google/uuid"
)

type mediaStore interface {
	Insert(ctx context.Context, media *models.Media) error
	CountByStatus(ctx context.Context) (map[enums.MediaStatus]int64, error)
	DeleteAll(ctx context.Context) error
}

type uploaderStore interface {
	Insert(ctx context.Context, u *models.Uploader) error
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}

// Seeder loads the demo gallery and resets collections outside production.
type Seeder struct {
	logg      *logger.Logger
	media     mediaStore
	uploaders uploaderStore
}

func NewSeeder(media mediaStore, uploaders uploaderStore, logg *logger.Logger) (*Seeder, error) {
	if media == nil {
		return nil, fmt.Errorf("media store required")
	}
	if uploaders == nil {
		return nil, fmt.Errorf("uploader store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Seeder{logg: logg, media: media, uploaders: uploaders}, nil
}

// SeedIfEmpty inserts the sample data when both collections are empty. It
// reports whether anything was written.
func (s *Seeder) SeedIfEmpty(ctx context.Context) (bool, error) {
	counts, err := s.media.CountByStatus(ctx)
	if err != nil {
		return false, fmt.Errorf("count media: %w", err)
	}
	var mediaTotal int64
	for _, n := range counts {
		mediaTotal += n
	}
	users, err := s.uploaders.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count uploaders: %w", err)
	}
	if mediaTotal > 0 || users > 0 {
		return false, nil
	}
	if err := s.insertSamples(ctx); err != nil {
		return false, err
	}
	s.logg.Info(ctx, "seed.demo_data.inserted")
	return true, nil
}

// Reset clears both collections and reloads the sample data.
func (s *Seeder) Reset(ctx context.Context) error {
	if err := s.media.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear media: %w", err)
	}
	if err := s.uploaders.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear uploaders: %w", err)
	}
	if err := s.insertSamples(ctx); err != nil {
		return err
	}
	s.logg.Info(ctx, "seed.data.reset")
	return nil
}

func (s *Seeder) insertSamples(ctx context.Context) error {
	for _, u := range SampleUploaders() {
		if err := s.uploaders.Insert(ctx, &u); err != nil {
			return fmt.Errorf("insert uploader %s: %w", u.ID, err)
		}
	}
	rows, err := SampleMedia()
	if err != nil {
		return err
	}
	for i := range rows {
		if err := s.media.Insert(ctx, &rows[i]); err != nil {
			return fmt.Errorf("insert media %s: %w", rows[i].FileName, err)
		}
	}
	return nil
}

type sampleItem struct {
	fileName    string
	userName    string
	userID      string
	description string
	photoID     string
	status      enums.MediaStatus
	uploadedAt  time.Time
	updatedAt   time.Time
}

var sampleItems = []sampleItem{
	{"sunset.jpg", "Alice Johnson", "user_alice_123", "Beautiful sunset over the mountains", "1506905925346-21bda4d32df4", enums.MediaStatusApproved, at(8, 10, 14, 30), at(8, 10, 14, 35)},
	{"beach.jpg", "Bob Smith", "user_bob_456", "Peaceful beach morning", "1507525428034-b723cf961d3e", enums.MediaStatusApproved, at(8, 10, 13, 15), at(8, 10, 13, 20)},
	{"forest.jpg", "Carol Davis", "user_carol_789", "Deep forest trail", "1441974231531-c6227db76b6e", enums.MediaStatusPending, at(8, 10, 12, 45), at(8, 10, 12, 45)},
	{"city.jpg", "David Wilson", "user_david_012", "City lights at night", "1477959858617-67f85cf4f1df", enums.MediaStatusApproved, at(8, 10, 11, 20), at(8, 10, 11, 25)},
	{"flowers.jpg", "Emma Brown", "user_emma_345", "Spring flowers in bloom", "1490750967868-88aa4486c946", enums.MediaStatusRejected, at(8, 10, 10, 10), at(8, 10, 10, 15)},
}

var sampleJoined = map[string]time.Time{
	"user_alice_123": at(8, 5, 10, 0),
	"user_bob_456":   at(8, 6, 11, 0),
	"user_carol_789": at(8, 7, 12, 0),
	"user_david_012": at(8, 8, 13, 0),
	"user_emma_345":  at(8, 9, 14, 0),
}

// SampleMedia returns fresh copies of the demo media records with new ids.
func SampleMedia() ([]models.Media, error) {
	out := make([]models.Media, 0, len(sampleItems))
	for _, item := range sampleItems {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate media id: %w", err)
		}
		out = append(out, models.Media{
			ID:          id,
			FileName:    item.fileName,
			Type:        enums.MediaTypeImage,
			URL:         "https://images.unsplash.com/photo-" + item.photoID + "?w=500&h=500&fit=crop&crop=center",
			ContentType: "image/jpeg",
			UserName:    item.userName,
			UserID:      item.userID,
			Description: item.description,
			Status:      item.status,
			Version:     1,
			UploadedAt:  item.uploadedAt,
			UpdatedAt:   item.updatedAt,
		})
	}
	return out, nil
}

// SampleUploaders returns the uploaders behind SampleMedia.
func SampleUploaders() []models.Uploader {
	out := make([]models.Uploader, 0, len(sampleItems))
	for _, item := range sampleItems {
		last := item.uploadedAt
		out = append(out, models.Uploader{
			ID:           item.userID,
			Name:         item.userName,
			JoinedAt:     sampleJoined[item.userID],
			TotalUploads: 1,
			LastUpload:   &last,
		})
	}
	return out
}

func at(month time.Month, day, hour, minute int) time.Time {
	return time.Date(2025, month, day, hour, minute, 0, 0, time.UTC)
}
