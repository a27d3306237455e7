package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/moments-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken wraps every reason Parse refuses a token.
var ErrInvalidToken = errors.New("invalid access token")

var signingMethod = jwt.SigningMethodHS256

// Signer mints and verifies HS256 admin tokens for one issuer.
type Signer struct {
	key    []byte
	issuer string
	parser *jwt.Parser
}

func NewSigner(cfg config.JWTConfig) (*Signer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("jwt issuer is required")
	}
	return &Signer{
		key:    []byte(cfg.Secret),
		issuer: cfg.Issuer,
		// Expiry is judged against the stored session, not the token, so an
		// expired session can still be found and purged.
		parser: jwt.NewParser(
			jwt.WithoutClaimsValidation(),
			jwt.WithValidMethods([]string{signingMethod.Alg()}),
		),
	}, nil
}

// Mint signs an admin token for sessionID whose exp equals the session expiry.
func (s *Signer) Mint(sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", errors.New("session id is required")
	}
	if !expiresAt.After(issuedAt) {
		return "", errors.New("token expiry must be after issue time")
	}
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   RoleAdmin,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Parse checks signature, algorithm, issuer and role and returns the claims.
func (s *Signer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	if _, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	switch {
	case claims.Issuer != s.issuer:
		return nil, fmt.Errorf("%w: issuer %q", ErrInvalidToken, claims.Issuer)
	case claims.Role != RoleAdmin:
		return nil, fmt.Errorf("%w: role %q", ErrInvalidToken, claims.Role)
	case strings.TrimSpace(claims.ID) == "":
		return nil, fmt.Errorf("%w: no session id", ErrInvalidToken)
	}
	return claims, nil
}
