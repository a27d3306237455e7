package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/moments-backend/api/responses"
	"github.com/angelmondragon/moments-backend/api/validators"
	"github.com/angelmondragon/moments-backend/internal/media"
	"github.com/angelmondragon/moments-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/moments-backend/pkg/errors"
	"github.com/angelmondragon/moments-backend/pkg/logger"
)

const (
	uploadFileField    = "file"
	maxUserNameLen     = 128
	maxUserIDLen       = 128
	maxDescriptionLen  = 500
	statusQueryParam   = "status"
	mediaIDParam       = "id"
	approvedOnlyFilter = "approved"
)

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// MediaUpload accepts a multipart upload from the public gallery.
func MediaUpload(svc media.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		file, header, err := validators.ParseMultipartFile(w, r, uploadFileField, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()
		if r.MultipartForm != nil {
			defer func() { _ = r.MultipartForm.RemoveAll() }()
		}

		result, err := svc.Upload(r.Context(), media.UploadInput{
			File:        file,
			FileName:    header.Filename,
			Size:        header.Size,
			UserName:    validators.SanitizeString(r.FormValue("userName"), maxUserNameLen),
			UserID:      validators.SanitizeString(r.FormValue("userId"), maxUserIDLen),
			Description: validators.SanitizeString(r.FormValue("description"), maxDescriptionLen),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// MediaListApproved serves the public gallery. Only approved media is ever exposed here.
func MediaListApproved(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		if _, err := validators.ParseQueryEnum(r, statusQueryParam, approvedOnlyFilter, approvedOnlyFilter); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListApproved(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

func MediaSetStatus(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		var body statusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SetStatus(r.Context(), chi.URLParam(r, mediaIDParam), enums.MediaStatus(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func MediaRemove(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		result, err := svc.Remove(r.Context(), chi.URLParam(r, mediaIDParam))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
