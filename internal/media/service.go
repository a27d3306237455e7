package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/angelmondragon/moments-backend/internal/uploaders"
	"github.com/angelmondragon/moments-backend/pkg/db/models"
	"github.com/angelmondragon/moments-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/moments-backend/pkg/errors"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/angelmondragon/moments-backend/pkg/metrics"
	"github.com/google/uuid"
)

const (
	maxStatusAttempts = 3
	maxBulkItems      = 100
	recentWindow      = 24 * time.Hour

	messageUploaded = "Media uploaded successfully and is pending approval"
	messageApproved = "Media approved successfully"
	messageRejected = "Media rejected"
	messageDeleted  = "Media deleted successfully"
)

type mediaRepository interface {
	Insert(ctx context.Context, media *models.Media) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	List(ctx context.Context, filter ListFilter) ([]models.Media, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int64, status enums.MediaStatus, updatedAt time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context) (map[enums.MediaStatus]int64, error)
	CountUploadedSince(ctx context.Context, since time.Time) (int64, error)
}

type uploaderRecorder interface {
	Upsert(ctx context.Context, userID, name string, at time.Time) (*models.Uploader, error)
	Count(ctx context.Context) (int64, error)
}

type objectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	ReadURL(ctx context.Context, key string) (string, error)
}

// Service exposes the moderation workflow over media records.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	ListApproved(ctx context.Context) ([]MediaDTO, error)
	ListAll(ctx context.Context, filter string) (*AdminListResult, error)
	SetStatus(ctx context.Context, id string, status enums.MediaStatus) (*StatusResult, error)
	BulkSetStatus(ctx context.Context, ids []string, status enums.MediaStatus) (*BulkResult, error)
	Remove(ctx context.Context, id string) (*RemoveResult, error)
	Stats(ctx context.Context) (*Stats, error)
}

// ServiceParams wire the media service.
type ServiceParams struct {
	Logger         *logger.Logger
	Repo           mediaRepository
	Uploaders      uploaderRecorder
	Store          objectStore
	Metrics        *metrics.ModerationMetrics
	MaxUploadBytes int64
}

type service struct {
	logg      *logger.Logger
	repo      mediaRepository
	uploaders uploaderRecorder
	store     objectStore
	metrics   *metrics.ModerationMetrics
	maxBytes  int64
	now       func() time.Time
}

// NewService constructs a media service backed by the provided repositories and object store.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if params.Uploaders == nil {
		return nil, fmt.Errorf("uploader store required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if params.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	return &service{
		logg:      params.Logger,
		repo:      params.Repo,
		uploaders: params.Uploaders,
		store:     params.Store,
		metrics:   params.Metrics,
		maxBytes:  params.MaxUploadBytes,
		now:       time.Now,
	}, nil
}

func (s *service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if input.File == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	if input.Size <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if input.Size > s.maxBytes {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "file exceeds the %d MB limit", s.maxBytes/(1024*1024))
	}
	userName := strings.TrimSpace(input.UserName)
	if userName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userName is required")
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		userID = uploaders.GenerateID(userName)
	} else if !uploaders.ValidID(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is malformed")
	}

	content, err := sniffContent(input.File)
	if err != nil {
		if errors.Is(err, errUnsupportedContent) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read file")
	}

	now := s.clock()
	id, err := uuid.NewV7()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate media id")
	}
	key := buildObjectKey(now, id, content.Extension)

	if err := s.store.Put(ctx, key, content.ContentType, content.Body, input.Size); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store media object")
	}

	fileName := sanitizeFileName(input.FileName)
	if fileName == "" {
		fileName = id.String() + content.Extension
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = "Shared by " + userName
	}

	row := &models.Media{
		ID:          id,
		FileName:    fileName,
		Type:        content.Type,
		URL:         key,
		ObjectKey:   &key,
		ContentType: content.ContentType,
		SizeBytes:   input.Size,
		UserName:    userName,
		UserID:      userID,
		Description: description,
		Status:      enums.MediaStatusPending,
		Version:     1,
		UploadedAt:  now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		s.discardObject(ctx, key)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist media record")
	}

	if _, err := s.uploaders.Upsert(ctx, userID, userName, now); err != nil {
		if _, delErr := s.repo.Delete(ctx, id); delErr != nil {
			s.logg.Error(ctx, "media.upload.compensate_failed", delErr)
		}
		s.discardObject(ctx, key)
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record uploader")
	}

	dto, err := s.toDTO(ctx, *row)
	if err != nil {
		return nil, err
	}

	s.metrics.IncUpload(content.Type.String())
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"media_id":     id.String(),
		"user_id":      userID,
		"content_type": content.ContentType,
		"size_bytes":   input.Size,
	})
	s.logg.Info(logCtx, "media.uploaded")

	return &UploadResult{
		ID:      id,
		UserID:  userID,
		Status:  row.Status,
		Message: messageUploaded,
		Media:   dto,
	}, nil
}

func (s *service) SetStatus(ctx context.Context, id string, status enums.MediaStatus) (*StatusResult, error) {
	if err := validateDecision(status); err != nil {
		return nil, err
	}
	mediaID, ok := parseMediaID(id)
	if !ok {
		return nil, notFound()
	}

	for attempt := 0; attempt < maxStatusAttempts; attempt++ {
		current, err := s.repo.FindByID(ctx, mediaID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, notFound()
			}
			return nil, pkgerrors.Wrapf(pkgerrors.CodeDependency, err, "load media %s", mediaID)
		}

		updatedAt := s.clock()
		if floor := current.UpdatedAt.Add(time.Microsecond); updatedAt.Before(floor) {
			updatedAt = floor.UTC()
		}
		swapped, err := s.repo.UpdateStatus(ctx, mediaID, current.Version, status, updatedAt)
		if err != nil {
			return nil, pkgerrors.Wrapf(pkgerrors.CodeDependency, err, "update media %s status", mediaID)
		}
		if !swapped {
			continue
		}

		current.Status = status
		current.UpdatedAt = updatedAt
		current.Version++
		dto, err := s.toDTO(ctx, *current)
		if err != nil {
			return nil, err
		}

		s.metrics.IncStatusChange(status.String())
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"media_id": mediaID.String(),
			"status":   status.String(),
			"attempt":  attempt + 1,
		})
		s.logg.Info(logCtx, "media.status_changed")
		return &StatusResult{Media: dto, Message: statusMessage(status)}, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeConflict, "media was modified concurrently; retry")
}

func (s *service) BulkSetStatus(ctx context.Context, ids []string, status enums.MediaStatus) (*BulkResult, error) {
	if err := validateDecision(status); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ids must not be empty")
	}
	if len(ids) > maxBulkItems {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d ids per request", maxBulkItems)
	}

	result := &BulkResult{Status: status, Items: make([]BulkItemResult, 0, len(ids))}
	for _, id := range ids {
		item := BulkItemResult{ID: id}
		res, err := s.SetStatus(ctx, id, status)
		if err != nil {
			item.Code = string(pkgerrors.CodeOf(err))
			item.Message = bulkErrorMessage(err)
			result.Failed++
		} else {
			item.OK = true
			item.Message = res.Message
			result.Succeeded++
		}
		result.Items = append(result.Items, item)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"status":    status.String(),
		"requested": len(ids),
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})
	s.logg.Info(logCtx, "media.bulk_status")
	return result, nil
}

func (s *service) Remove(ctx context.Context, id string) (*RemoveResult, error) {
	mediaID, ok := parseMediaID(id)
	if !ok {
		return nil, notFound()
	}
	current, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound()
		}
		return nil, pkgerrors.Wrapf(pkgerrors.CodeDependency, err, "load media %s", mediaID)
	}

	deleted, err := s.repo.Delete(ctx, mediaID)
	if err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.CodeDependency, err, "delete media %s", mediaID)
	}
	if !deleted {
		return nil, notFound()
	}
	if current.ObjectKey != nil && *current.ObjectKey != "" {
		s.discardObject(ctx, *current.ObjectKey)
	}

	s.metrics.IncRemoval()
	s.logg.Info(s.logg.WithMediaID(ctx, mediaID.String()), "media.removed")
	return &RemoveResult{ID: mediaID, Message: messageDeleted}, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count media by status")
	}
	recent, err := s.repo.CountUploadedSince(ctx, s.clock().Add(-recentWindow))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count recent uploads")
	}
	users, err := s.uploaders.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count uploaders")
	}

	stats := &Stats{
		Pending:       counts[enums.MediaStatusPending],
		Approved:      counts[enums.MediaStatusApproved],
		Rejected:      counts[enums.MediaStatusRejected],
		TotalUsers:    users,
		RecentUploads: recent,
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected
	return stats, nil
}

// discardObject removes stored bytes after the record is gone. Failures leave
// an orphaned object and are only logged.
func (s *service) discardObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "object_key", key), "media.object.delete_failed", err)
	}
}

func (s *service) toDTO(ctx context.Context, m models.Media) (MediaDTO, error) {
	url := m.URL
	if m.ObjectKey != nil && *m.ObjectKey != "" {
		resolved, err := s.store.ReadURL(ctx, *m.ObjectKey)
		if err != nil {
			return MediaDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve media url")
		}
		url = resolved
	}
	return MediaDTO{
		ID:          m.ID,
		FileName:    m.FileName,
		Type:        m.Type,
		URL:         url,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		UserName:    m.UserName,
		UserID:      m.UserID,
		Description: m.Description,
		Status:      m.Status,
		UploadedAt:  m.UploadedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}, nil
}

func (s *service) toDTOs(ctx context.Context, rows []models.Media) ([]MediaDTO, error) {
	out := make([]MediaDTO, 0, len(rows))
	for _, row := range rows {
		dto, err := s.toDTO(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

func validateDecision(status enums.MediaStatus) error {
	if !status.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", status)
	}
	if !status.IsDecision() {
		return pkgerrors.New(pkgerrors.CodeValidation, "status must be approved or rejected")
	}
	return nil
}

func statusMessage(status enums.MediaStatus) string {
	if status == enums.MediaStatusApproved {
		return messageApproved
	}
	return messageRejected
}

func bulkErrorMessage(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage
	}
	if typed.Code() == pkgerrors.CodeDependency {
		return pkgerrors.MetadataFor(pkgerrors.CodeDependency).PublicMessage
	}
	return typed.Message()
}

// parseMediaID treats anything that is not a UUID as an id that cannot exist.
func parseMediaID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func notFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
}

func buildObjectKey(at time.Time, id uuid.UUID, ext string) string {
	return fmt.Sprintf("media/%s/%s%s", at.Format("2006/01"), id.String(), ext)
}
