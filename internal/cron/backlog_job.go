package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/moments-backend/internal/media"
	"github.com/angelmondragon/moments-backend/pkg/db/models"
	"github.com/angelmondragon/moments-backend/pkg/enums"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/angelmondragon/moments-backend/pkg/metrics"
)

const defaultPendingMaxAge = 48 * time.Hour

type BacklogJobParams struct {
	Logger        *logger.Logger
	Stats         backlogStats
	MediaRepo     pendingMediaLister
	Metrics       *metrics.ModerationMetrics
	PendingMaxAge time.Duration
}

type backlogStats interface {
	Stats(ctx context.Context) (*media.Stats, error)
}

type pendingMediaLister interface {
	List(ctx context.Context, filter media.ListFilter) ([]models.Media, error)
}

// NewBacklogJob publishes moderation queue gauges and flags stale pending uploads.
func NewBacklogJob(params BacklogJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stats == nil {
		return nil, fmt.Errorf("stats source required")
	}
	if params.MediaRepo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	maxAge := params.PendingMaxAge
	if maxAge <= 0 {
		maxAge = defaultPendingMaxAge
	}
	return &backlogJob{
		logg:    params.Logger,
		stats:   params.Stats,
		repo:    params.MediaRepo,
		metrics: params.Metrics,
		maxAge:  maxAge,
		now:     time.Now,
	}, nil
}

type backlogJob struct {
	logg    *logger.Logger
	stats   backlogStats
	repo    pendingMediaLister
	metrics *metrics.ModerationMetrics
	maxAge  time.Duration
	now     func() time.Time
}

func (j *backlogJob) Name() string { return "moderation-backlog" }

func (j *backlogJob) Run(ctx context.Context) error {
	stats, err := j.stats.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read media stats: %w", err)
	}
	j.metrics.SetBacklog(enums.MediaStatusPending.String(), stats.Pending)
	j.metrics.SetBacklog(enums.MediaStatusApproved.String(), stats.Approved)
	j.metrics.SetBacklog(enums.MediaStatusRejected.String(), stats.Rejected)
	j.metrics.SetRecentUploads(stats.RecentUploads)

	var (
		stale  int
		oldest time.Time
	)
	if stats.Pending > 0 {
		pending := enums.MediaStatusPending
		rows, err := j.repo.List(ctx, media.ListFilter{Status: &pending})
		if err != nil {
			return fmt.Errorf("list pending media: %w", err)
		}
		cutoff := j.now().UTC().Add(-j.maxAge)
		for _, row := range rows {
			if row.UploadedAt.Before(cutoff) {
				stale++
			}
		}
		if len(rows) > 0 {
			oldest = rows[len(rows)-1].UploadedAt
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"pending":        stats.Pending,
		"approved":       stats.Approved,
		"rejected":       stats.Rejected,
		"recent_uploads": stats.RecentUploads,
		"stale_pending":  stale,
	})
	if stale > 0 {
		logCtx = j.logg.WithFields(logCtx, map[string]any{
			"oldest_pending_at": oldest,
			"max_age":           j.maxAge.String(),
		})
		j.logg.Warn(logCtx, "moderation.backlog.stale")
		return nil
	}
	j.logg.Info(logCtx, "moderation.backlog.ok")
	return nil
}
