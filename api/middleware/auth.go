package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/moments-backend/api/responses"
	"github.com/angelmondragon/moments-backend/api/validators"
	"github.com/angelmondragon/moments-backend/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/moments-backend/pkg/errors"
	"github.com/angelmondragon/moments-backend/pkg/logger"
)

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Record, error)
}

// AdminAuth validates the bearer token against the session store and seeds the
// request context with the admin session.
func AdminAuth(authn authenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "missing credentials"))
				return
			}

			rec, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithAdminSession(r.Context(), rec.ID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, rec.ID)
				ctx = logg.WithActorRole(ctx, RoleAdmin)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
