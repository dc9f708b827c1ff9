package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"lead-origination/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ContextActorKey holds the signed-in officer's email on the echo context.
const ContextActorKey = "actor"

// LoginRoute is where unauthenticated clients are sent.
const LoginRoute = "/login"

const leeway = 2 * time.Minute

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and checks HS256 session tokens.
type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{key: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(u auth.User) (string, time.Time, error) {
	exp := m.now().Add(m.ttl)
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

func (m *TokenManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// only HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.key, nil
	}, jwt.WithLeeway(leeway), jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SessionReader exposes the persisted sign-in state.
type SessionReader interface {
	CurrentUser(ctx context.Context) (*auth.Session, error)
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg, "redirect": LoginRoute})
}

// RequireSession admits requests carrying a valid Bearer token for the
// officer whose session is currently stored. Everything else is sent to login.
func RequireSession(tm *TokenManager, sessions SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return next(c)
			}

			authHeader := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				return unauthorized(c, "missing or invalid Authorization header")
			}
			claims, err := tm.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return unauthorized(c, err.Error())
			}

			s, err := sessions.CurrentUser(c.Request().Context())
			if errors.Is(err, auth.ErrUnauthenticated) {
				return unauthorized(c, "not signed in")
			}
			if err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "session store unavailable"})
			}
			if !strings.EqualFold(s.User.Email, claims.Email) {
				return unauthorized(c, "not signed in")
			}

			c.Set(ContextActorKey, s.User.Email)
			return next(c)
		}
	}
}

// Actor returns the signed-in officer set by RequireSession.
func Actor(c echo.Context) string {
	v, _ := c.Get(ContextActorKey).(string)
	return v
}
