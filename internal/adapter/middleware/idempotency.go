package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"

	// a claim outlives a slow handler but not a crashed one
	claimTTL     = 60 * time.Second
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

var nowUTC = func() time.Time { return time.Now().UTC() }

// replayKey is the identity of one create call: the officer, the route and
// the client's request id.
type replayKey struct {
	Actor     string
	Method    string
	Route     string
	RequestID string
}

func (k replayKey) String() string {
	return "idemp:lead:" + k.Actor + ":" + strings.ToLower(k.Method) + ":" + k.Route + ":" + k.RequestID
}

// validRequestID accepts a canonical UUID or a 32-char lowercase hex id.
func validRequestID(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	if reHex32.MatchString(id) {
		return true
	}
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// parseRequestAt reads epoch seconds, epoch milliseconds, or RFC3339 with a zone.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	// RFC3339Nano also parses values without fractional seconds
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

func bodyHash(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

// bodyCapture tees the response so it can be stored for replay.
type bodyCapture struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bodyCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware makes create calls safe to retry: a repeated
// Ax-Request-Id from the same officer on the same route replays the first
// response instead of creating again. It must run after RequireSession.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := &replayStore{rdb: rdb, ttl: ttl}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.ToLower(strings.TrimSpace(req.Header.Get(HeaderRequestID)))
			if reqID == "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing " + HeaderRequestID})
			}
			if !validRequestID(reqID) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderRequestID + " format"})
			}
			at, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			if now := nowUTC(); at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": HeaderRequestAt + " too skewed"})
			}

			actor := strings.ToLower(Actor(c))
			if actor == "" {
				return unauthorized(c, "not signed in")
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := replayKey{Actor: actor, Method: req.Method, Route: c.Path(), RequestID: reqID}
			rec := replayRecord{
				Pending:   true,
				BodyHash:  bodyHash(body),
				RequestAt: at,
				StoredAt:  nowUTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			claimed, err := store.claim(ctx, key, rec)
			if err != nil {
				logger.Error("idempotency: claim failed", zap.String("key", key.String()), zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !claimed {
				prev, err := store.load(ctx, key)
				if err != nil {
					logger.Warn("idempotency: load failed", zap.String("key", key.String()), zap.Error(err))
				}
				switch {
				case prev.BodyHash != "" && prev.BodyHash != rec.BodyHash:
					return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
				case prev.replayable():
					logger.Debug("idempotency: replay", zap.String("key", key.String()))
					return c.Blob(prev.Status, prev.ContentType, prev.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			w := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				c.Error(err)
			}

			rec.Pending = false
			rec.Status = w.status
			rec.ContentType = c.Response().Header().Get(echo.HeaderContentType)
			rec.Body = w.buf.Bytes()
			rec.StoredAt = nowUTC()
			if err := store.complete(context.Background(), key, rec); err != nil {
				logger.Warn("idempotency: save failed", zap.String("key", key.String()), zap.Error(err))
			}
			return nil
		}
	}
}
