// Package middleware provides the Echo middleware shared by all HTTP routes.
package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/lllypuk/regroup/internal/application/appcore"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

// Authentication errors.
var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token has expired")
)

// ContextKeyUserID is the echo context key holding the authenticated user ID.
const ContextKeyUserID = "user_id"

// DefaultLeeway is the clock skew tolerated when checking token times.
const DefaultLeeway = 30 * time.Second

// AuthConfig holds configuration for the authentication middleware.
type AuthConfig struct {
	// Secret is the HMAC key tokens are signed with.
	Secret []byte

	// Issuer, when set, must match the token's iss claim.
	Issuer string

	Leeway    time.Duration
	SkipPaths []string
	Logger    *slog.Logger
}

// TokenValidator verifies HS256 bearer tokens and extracts the subject.
type TokenValidator struct {
	secret []byte
	parser *jwt.Parser
}

// NewTokenValidator creates a validator for the given configuration.
func NewTokenValidator(config AuthConfig) *TokenValidator {
	leeway := config.Leeway
	if leeway == 0 {
		leeway = DefaultLeeway
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	return &TokenValidator{
		secret: config.Secret,
		parser: jwt.NewParser(opts...),
	}
}

// ValidateToken parses the token and returns the user ID from its subject.
func (v *TokenValidator) ValidateToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, err := uuid.ParseUUID(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	return userID, nil
}

// IssueToken signs an HS256 token for userID that expires after ttl.
func IssueToken(secret []byte, issuer string, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Auth returns a middleware that requires a valid bearer token.
// The user ID is stored both on the echo context and on the request context.
func Auth(config AuthConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	validator := NewTokenValidator(config)

	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if _, ok := skipPaths[req.URL.Path]; ok {
				return next(c)
			}

			token, err := extractBearerToken(req.Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return respondAuthError(c, err)
			}

			userID, err := validator.ValidateToken(token)
			if err != nil {
				config.Logger.WarnContext(req.Context(), "token validation failed",
					slog.String("error", err.Error()),
					slog.String("path", req.URL.Path),
					slog.String("remote_ip", c.RealIP()),
				)
				return respondAuthError(c, err)
			}

			c.Set(ContextKeyUserID, userID)
			c.SetRequest(req.WithContext(appcore.WithUserID(req.Context(), userID)))

			return next(c)
		}
	}
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if token == "" {
		return "", ErrInvalidAuthHeader
	}
	return token, nil
}

func respondAuthError(c echo.Context, err error) error {
	code := "UNAUTHORIZED"
	message := "Authentication required"

	switch {
	case errors.Is(err, ErrMissingAuthHeader):
		message = "Missing authorization header"
	case errors.Is(err, ErrInvalidAuthHeader):
		message = "Invalid authorization header format"
	case errors.Is(err, ErrTokenExpired):
		message = "Token has expired"
		code = "TOKEN_EXPIRED"
	case errors.Is(err, ErrInvalidToken):
		message = "Invalid token"
	}

	return c.JSON(http.StatusUnauthorized, map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// GetUserID returns the authenticated user ID, or an empty UUID.
func GetUserID(c echo.Context) uuid.UUID {
	if id, ok := c.Get(ContextKeyUserID).(uuid.UUID); ok {
		return id
	}
	return ""
}
