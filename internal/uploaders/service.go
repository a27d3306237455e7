package uploaders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/moments-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/moments-backend/pkg/errors"
	"github.com/angelmondragon/moments-backend/pkg/logger"
)

type uploaderRepository interface {
	Upsert(ctx context.Context, id, name string, at time.Time) (*models.Uploader, error)
	List(ctx context.Context) ([]models.Uploader, error)
	Count(ctx context.Context) (int64, error)
}

// Service tracks who has uploaded media.
type Service interface {
	Upsert(ctx context.Context, userID, name string, at time.Time) (*models.Uploader, error)
	List(ctx context.Context) ([]UploaderDTO, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	logg *logger.Logger
	repo uploaderRepository
}

func NewService(repo uploaderRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("uploader repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{logg: logg, repo: repo}, nil
}

func (s *service) Upsert(ctx context.Context, userID, name string, at time.Time) (*models.Uploader, error) {
	userID = strings.TrimSpace(userID)
	name = strings.TrimSpace(name)
	if !ValidID(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is malformed")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userName is required")
	}
	row, err := s.repo.Upsert(ctx, userID, name, at)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert uploader")
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":       row.ID,
		"total_uploads": row.TotalUploads,
	})
	s.logg.Info(logCtx, "uploader.upserted")
	return row, nil
}

func (s *service) List(ctx context.Context) ([]UploaderDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list uploaders")
	}
	out := make([]UploaderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count uploaders")
	}
	return count, nil
}
