package validators

import (
	"errors"
	"net/http"
	"strings"
)

var ErrMissingBearerToken = errors.New("missing bearer token")

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
		return "", ErrMissingBearerToken
	}
	token := strings.TrimSpace(raw[7:])
	if token == "" {
		return "", ErrMissingBearerToken
	}
	return token, nil
}
