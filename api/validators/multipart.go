package validators

import (
	"errors"
	"mime/multipart"
	"net/http"

	pkgerrors "github.com/angelmondragon/moments-backend/pkg/errors"
)

// multipartMemory is how much of a form is buffered in memory before spilling to disk.
const multipartMemory = 8 << 20

// multipartOverhead leaves room for the text fields and boundaries around the file part.
const multipartOverhead = 1 << 20

// ParseMultipartFile bounds the request body and returns the named file part.
// The caller must close the returned file.
func ParseMultipartFile(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds the upload limit").
				WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required").
			WithDetails(map[string]any{"field": field})
	}
	return file, header, nil
}
