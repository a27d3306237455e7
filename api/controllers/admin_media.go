package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/moments-backend/api/responses"
	"github.com/angelmondragon/moments-backend/api/validators"
	"github.com/angelmondragon/moments-backend/internal/media"
	"github.com/angelmondragon/moments-backend/internal/uploaders"
	"github.com/angelmondragon/moments-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/moments-backend/pkg/errors"
	"github.com/angelmondragon/moments-backend/pkg/logger"
)

type bulkStatusRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,max=100"`
	Status string   `json:"status" validate:"required,oneof=approved rejected"`
}

type dataResetter interface {
	Reset(ctx context.Context) error
}

// AdminMediaList serves the moderation dashboard listing with per-status counts.
func AdminMediaList(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		filter, err := validators.ParseQueryEnum(r, statusQueryParam, media.FilterAll,
			media.FilterAll,
			string(enums.MediaStatusPending),
			string(enums.MediaStatusApproved),
			string(enums.MediaStatusRejected),
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAll(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func AdminMediaStats(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

// AdminMediaBulkStatus applies one decision to many records. Items fail independently.
func AdminMediaBulkStatus(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		var body bulkStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkSetStatus(r.Context(), body.IDs, enums.MediaStatus(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func AdminUploaders(svc uploaders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "uploader service unavailable"))
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// AdminDataReset clears both collections and restores the sample data.
func AdminDataReset(resetter dataResetter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resetter == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "data reset unavailable"))
			return
		}

		if err := resetter.Reset(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset data"))
			return
		}

		if logg != nil {
			logg.Warn(r.Context(), "admin.data_reset")
		}
		responses.WriteSuccess(w, map[string]string{"message": "All data cleared and sample data restored"})
	}
}
