package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/moments-backend/api/controllers"
	"github.com/angelmondragon/moments-backend/api/middleware"
	"github.com/angelmondragon/moments-backend/internal/auth"
	"github.com/angelmondragon/moments-backend/internal/media"
	"github.com/angelmondragon/moments-backend/internal/uploaders"
	"github.com/angelmondragon/moments-backend/pkg/config"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/angelmondragon/moments-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/moments-backend/pkg/redis"
)

// maxJSONBody bounds request bodies buffered for idempotency on JSON routes.
const maxJSONBody = 1 << 20

type redisStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type dataResetter interface {
	Reset(ctx context.Context) error
}

// Params carries everything the router wires into handlers.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Redis       redisStore
	Pingers     map[string]controllers.Pinger
	Auth        auth.Service
	Media       media.Service
	Uploaders   uploaders.Service
	Resetter    dataResetter
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginLimits := middleware.LoginLimits{
		Window:      cfg.AuthRateLimit.LoginWindow,
		PerIP:       cfg.AuthRateLimit.LoginIPLimit,
		PerUsername: cfg.AuthRateLimit.LoginUsernameLimit,
	}
	maxUpload := cfg.Storage.MaxUploadBytes()
	adminAuth := middleware.AdminAuth(p.Auth, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Pingers, logg))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	if cfg.Storage.Driver == "local" && strings.HasPrefix(cfg.Local.PublicBaseURL, "/") {
		prefix := strings.TrimSuffix(cfg.Local.PublicBaseURL, "/")
		r.Method(http.MethodGet, prefix+"/*", http.StripPrefix(prefix, staticFiles(cfg.Local.Dir)))
	}

	r.Route("/api/v1/media", func(r chi.Router) {
		r.Get("/", controllers.MediaListApproved(p.Media, logg))
		r.With(
			middleware.RateLimit(cfg.RateLimit.UploadRequests, cfg.RateLimit.UploadWindow, logg),
			middleware.Idempotency(p.Redis, middleware.IdempotencyPolicy{MaxBody: maxUpload + maxJSONBody}, logg),
		).Post("/", controllers.MediaUpload(p.Media, maxUpload, logg))

		r.Group(func(r chi.Router) {
			r.Use(adminAuth)
			r.Patch("/{id}/status", controllers.MediaSetStatus(p.Media, logg))
			r.Delete("/{id}", controllers.MediaRemove(p.Media, logg))
		})
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.With(middleware.LoginThrottle(loginLimits, p.Redis, logg)).Post("/session", controllers.SessionLogin(p.Auth, logg))
		r.Delete("/session", controllers.SessionLogout(p.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(adminAuth)
			r.Get("/session", controllers.SessionInfo(p.Auth, logg))
			r.Get("/media", controllers.AdminMediaList(p.Media, logg))
			r.Get("/media/stats", controllers.AdminMediaStats(p.Media, logg))
			r.With(middleware.Idempotency(p.Redis, middleware.IdempotencyPolicy{Required: true, MaxBody: maxJSONBody}, logg)).
				Post("/media/bulk-status", controllers.AdminMediaBulkStatus(p.Media, logg))
			r.Get("/uploaders", controllers.AdminUploaders(p.Uploaders, logg))
			if !cfg.App.IsProd() && p.Resetter != nil {
				r.Delete("/data", controllers.AdminDataReset(p.Resetter, logg))
			}
		})
	})

	return r
}

// staticFiles serves stored uploads without directory listings.
func staticFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fs.ServeHTTP(w, r)
	})
}
