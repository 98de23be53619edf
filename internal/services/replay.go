package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tbourn/go-lead-backend/internal/repo"
)

// Replay is the stored outcome of a completed submission. A retry carrying
// the same Idempotency-Key is answered from it.
type Replay struct {
	LeadID    string `json:"lead_id"`
	EmailSent bool   `json:"email_sent"`
	Status    int    `json:"status"`
}

// ReplayStore persists replays keyed by (scope, key). Get returns
// (nil, nil) when nothing is stored. Put returns ErrReplayExists when another
// request already stored a replay for the pair.
type ReplayStore interface {
	Get(ctx context.Context, scope, key string) (*Replay, error)
	Put(ctx context.Context, scope, key string, r Replay, ttl time.Duration) error
}

// ErrReplayExists is returned by Put on a concurrent duplicate.
var ErrReplayExists = errors.New("replay already stored")

// DBReplayStore keeps replays in the idempotency table.
type DBReplayStore struct {
	DB *gorm.DB
}

func (s *DBReplayStore) Get(ctx context.Context, scope, key string) (*Replay, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, scope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Replay{LeadID: rec.LeadID, EmailSent: rec.EmailSent, Status: rec.Status}, nil
}

func (s *DBReplayStore) Put(ctx context.Context, scope, key string, r Replay, ttl time.Duration) error {
	_, err := repo.CreateIdempotency(ctx, s.DB, scope, key, r.LeadID, r.EmailSent, r.Status, ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return ErrReplayExists
	}
	return err
}

// RedisReplayStore keeps replays as JSON values with a TTL.
type RedisReplayStore struct {
	Client *redis.Client
	Prefix string
}

// NewRedisReplayStore returns a store using keys "<prefix><scope>:<key>".
func NewRedisReplayStore(c *redis.Client) *RedisReplayStore {
	return &RedisReplayStore{Client: c, Prefix: "idem:"}
}

func (s *RedisReplayStore) redisKey(scope, key string) string {
	return s.Prefix + scope + ":" + key
}

func (s *RedisReplayStore) Get(ctx context.Context, scope, key string) (*Replay, error) {
	raw, err := s.Client.Get(ctx, s.redisKey(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r Replay
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	return &r, nil
}

func (s *RedisReplayStore) Put(ctx context.Context, scope, key string, r Replay, ttl time.Duration) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	ok, err := s.Client.SetNX(ctx, s.redisKey(scope, key), raw, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrReplayExists
	}
	return nil
}
