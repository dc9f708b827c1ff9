package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lead-origination/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type sessionFn func(ctx context.Context) (*auth.Session, error)

func (f sessionFn) CurrentUser(ctx context.Context) (*auth.Session, error) { return f(ctx) }

var officer = auth.User{Email: "officer@lendingdesk.in", Name: "Ananya Rao", Role: "Loan Officer"}

func signedIn(ctx context.Context) (*auth.Session, error) {
	return &auth.Session{User: officer, SignedAt: time.Now()}, nil
}

func guarded(tm *TokenManager, sessions SessionReader) *echo.Echo {
	e := echo.New()
	e.Use(RequireSession(tm, sessions))
	e.GET("/leads", func(c echo.Context) error {
		return c.String(http.StatusOK, Actor(c))
	})
	return e
}

func get(e *echo.Echo, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenManager_IssueParse(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	tok, exp, err := tm.Issue(officer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) < 59*time.Minute {
		t.Fatalf("expiry too soon: %v", exp)
	}
	claims, err := tm.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Email != officer.Email || claims.Role != officer.Role {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := NewTokenManager("other", time.Hour).Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong key: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, _, err := tm.Issue(officer)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tm.now = time.Now
	if _, err := tm.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_RejectsNonHMAC(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: officer.Email}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := NewTokenManager("secret", time.Hour).Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("alg none: want ErrInvalidToken, got %v", err)
	}
}

func TestRequireSession(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	tok, _, _ := tm.Issue(officer)
	otherTok, _, _ := tm.Issue(auth.User{Email: "someone@else.in"})

	tests := []struct {
		name     string
		authz    string
		sessions SessionReader
		want     int
	}{
		{"ok", "Bearer " + tok, sessionFn(signedIn), http.StatusOK},
		{"lowercase scheme", "bearer " + tok, sessionFn(signedIn), http.StatusOK},
		{"no header", "", sessionFn(signedIn), http.StatusUnauthorized},
		{"wrong scheme", "Basic " + tok, sessionFn(signedIn), http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", sessionFn(signedIn), http.StatusUnauthorized},
		{"signed out", "Bearer " + tok, sessionFn(func(context.Context) (*auth.Session, error) {
			return nil, auth.ErrUnauthenticated
		}), http.StatusUnauthorized},
		{"token for someone else", "Bearer " + otherTok, sessionFn(signedIn), http.StatusUnauthorized},
		{"store down", "Bearer " + tok, sessionFn(func(context.Context) (*auth.Session, error) {
			return nil, errors.New("down")
		}), http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(guarded(tm, tc.sessions), tc.authz)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
			switch tc.want {
			case http.StatusOK:
				if rec.Body.String() != officer.Email {
					t.Fatalf("actor = %q", rec.Body.String())
				}
			case http.StatusUnauthorized:
				var body map[string]string
				_ = json.Unmarshal(rec.Body.Bytes(), &body)
				if body["redirect"] != LoginRoute {
					t.Fatalf("401 must redirect to login, got %v", body)
				}
			}
		})
	}
}
