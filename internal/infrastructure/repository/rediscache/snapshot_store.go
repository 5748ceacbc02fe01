package rediscache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BigB742/bigb-analyzer/internal/usecase"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const defaultSnapshotPrefix = "bigb:sheets:snapshot:"

// SnapshotStore persists last-known-good sheet ranges in redis so a restart
// during a sheets outage can still serve stale rows.
type SnapshotStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewClient parses redisURL and verifies the connection.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewSnapshotStore keeps snapshots for ttl; zero keeps them forever.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, prefix: defaultSnapshotPrefix, ttl: ttl}
}

func (s *SnapshotStore) SaveRange(ctx context.Context, key string, snapshot usecase.RangeSnapshot) error {
	payload, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.redisKey(key), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save range snapshot %s: %w", key, err)
	}
	return nil
}

func (s *SnapshotStore) LoadRange(ctx context.Context, key string) (usecase.RangeSnapshot, bool, error) {
	payload, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return usecase.RangeSnapshot{}, false, nil
	}
	if err != nil {
		return usecase.RangeSnapshot{}, false, fmt.Errorf("load range snapshot %s: %w", key, err)
	}
	snapshot, err := decodeSnapshot(payload)
	if err != nil {
		return usecase.RangeSnapshot{}, false, fmt.Errorf("decode range snapshot %s: %w", key, err)
	}
	return snapshot, true, nil
}

// Ping is used by the health endpoint.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SnapshotStore) redisKey(key string) string {
	return s.prefix + key
}

func encodeSnapshot(snapshot usecase.RangeSnapshot) ([]byte, error) {
	payload, err := sonic.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode range snapshot: %w", err)
	}
	return payload, nil
}

func decodeSnapshot(payload []byte) (usecase.RangeSnapshot, error) {
	var snapshot usecase.RangeSnapshot
	if err := sonic.Unmarshal(payload, &snapshot); err != nil {
		return usecase.RangeSnapshot{}, err
	}
	if snapshot.Rows == nil {
		snapshot.Rows = [][]string{}
	}
	return snapshot, nil
}
