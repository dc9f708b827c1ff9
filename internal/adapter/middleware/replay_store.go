package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type replayRecord struct {
	Pending     bool      `json:"pending"`
	Status      int       `json:"status,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	BodyHash    string    `json:"body_hash"`
	RequestAt   time.Time `json:"request_at"`
	StoredAt    time.Time `json:"stored_at"`
}

func (r replayRecord) replayable() bool {
	return !r.Pending && r.Status != 0 && len(r.Body) > 0
}

// replayStore keeps one record per replayKey in redis. A record is claimed
// pending with a short TTL and completed with the configured TTL.
type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func (s *replayStore) claim(ctx context.Context, key replayKey, rec replayRecord) (bool, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key.String(), payload, claimTTL).Result()
}

func (s *replayStore) load(ctx context.Context, key replayKey) (replayRecord, error) {
	var rec replayRecord
	raw, err := s.rdb.Get(ctx, key.String()).Bytes()
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal(raw, &rec)
	if rec.ContentType == "" {
		rec.ContentType = echo.MIMEApplicationJSON
	}
	return rec, err
}

func (s *replayStore) complete(ctx context.Context, key replayKey, rec replayRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key.String(), payload, s.ttl).Err()
}
