package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/moments-backend/pkg/auth"
	"github.com/angelmondragon/moments-backend/pkg/auth/session"
	"github.com/angelmondragon/moments-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/moments-backend/pkg/errors"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/angelmondragon/moments-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	defaultSessionTTL         = 24 * time.Hour
	tokenTypeBearer           = "Bearer"
)

// Service defines the admin session lifecycle used by the controller and the route guard.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Authenticate(ctx context.Context, token string) (*session.Record, error)
	IsAuthenticated(ctx context.Context, token string) bool
	Logout(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*session.Record, error)
}

type sessionStore interface {
	Create(ctx context.Context, rec session.Record, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (*session.Record, error)
	Revoke(ctx context.Context, sessionID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
// Password is the current hashing policy; an admin hash weaker than it is
// reported at startup.
type ServiceParams struct {
	Logger    *logger.Logger
	Sessions  sessionStore
	JWTConfig config.JWTConfig
	Admin     config.AdminConfig
	Password  config.PasswordConfig
}

type service struct {
	logg     *logger.Logger
	sessions sessionStore
	tokens   *pkgAuth.Signer
	admin    config.AdminConfig
	now      func() time.Time
}

// NewService constructs the admin auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if strings.TrimSpace(params.Admin.Username) == "" {
		return nil, fmt.Errorf("admin username is required")
	}
	if strings.TrimSpace(params.Admin.PasswordHash) == "" {
		return nil, fmt.Errorf("admin password hash is required")
	}
	if err := security.CheckHash(params.Admin.PasswordHash); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	if security.ParamsFromConfig(params.Password).NeedsRehash(params.Admin.PasswordHash) {
		params.Logger.Warn(context.Background(), "auth.admin_hash.weaker_than_policy")
	}
	tokens, err := pkgAuth.NewSigner(params.JWTConfig)
	if err != nil {
		return nil, err
	}
	admin := params.Admin
	if admin.SessionTTL <= 0 {
		admin.SessionTTL = defaultSessionTTL
	}
	return &service{
		logg:     params.Logger,
		sessions: params.Sessions,
		tokens:   tokens,
		admin:    admin,
		now:      time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	usernameOK := security.EqualStrings(strings.TrimSpace(req.Username), s.admin.Username)
	// The hash is verified even for a wrong username so both failures cost the same.
	passwordOK, err := security.Verify(req.Password, s.admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify admin password")
	}
	if !usernameOK || !passwordOK {
		s.logg.Warn(ctx, "auth.login.failed")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := s.now().UTC()
	rec := session.Record{
		ID:        session.NewSessionID(),
		IsAdmin:   true,
		LoginTime: now,
		ExpiresAt: now.Add(s.admin.SessionTTL),
	}
	if err := s.sessions.Create(ctx, rec, s.admin.SessionTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	token, err := s.tokens.Mint(rec.ID, now, rec.ExpiresAt)
	if err != nil {
		if revokeErr := s.sessions.Revoke(ctx, rec.ID); revokeErr != nil {
			s.logg.Error(ctx, "auth.session.revoke_failed", revokeErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	s.logg.Info(s.logg.WithSessionID(ctx, rec.ID), "auth.login.succeeded")
	return &LoginResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   rec.ExpiresAt,
		Session:     &rec,
	}, nil
}

func (s *service) Authenticate(ctx context.Context, token string) (*session.Record, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing access token")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	rec, err := s.sessions.Load(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	if !rec.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session is not an admin session")
	}

	if rec.Expired(s.now().UTC()) {
		logCtx := s.logg.WithSessionID(ctx, rec.ID)
		if err := s.sessions.Revoke(ctx, rec.ID); err != nil {
			s.logg.Error(logCtx, "auth.session.revoke_failed", err)
		}
		s.logg.Info(logCtx, "auth.session.expired")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}
	return rec, nil
}

func (s *service) IsAuthenticated(ctx context.Context, token string) bool {
	if _, err := s.Authenticate(ctx, token); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
			s.logg.Error(ctx, "auth.session.check_failed", err)
		}
		return false
	}
	return true
}

func (s *service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.SessionID()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	s.logg.Info(s.logg.WithSessionID(ctx, claims.SessionID()), "auth.logout")
	return nil
}

func (s *service) Session(ctx context.Context, token string) (*session.Record, error) {
	return s.Authenticate(ctx, token)
}
