package state

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	transfuse "github.com/apertium/transfuse-go"
)

// RedisStore is a Redis-backed transfuse.StateStore, letting several
// pipeline stages (or a later re-injection run) share one style table.
// Grounded on gotlai/cache.RedisCache's client wrapping and key-prefix
// convention.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	pipe      redis.Pipeliner
}

// RedisConfig holds configuration for a RedisStore.
type RedisConfig struct {
	URL       string // e.g. "redis://localhost:6379"
	KeyPrefix string // default "transfuse:"
	TTL       int    // seconds; 0 = no expiration
}

// NewRedisStore creates a RedisStore from cfg, verifying connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewRedisStoreFromClient builds a RedisStore around an existing client
// (used by tests with go-redis/redismock).
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string, ttlSeconds int) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "transfuse:"
	}
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

type styleValue struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Style inserts or looks up (kind, open, close), writing through the
// active pipeline if Begin has opened one.
func (r *RedisStore) Style(kind, open, close string) (string, error) {
	hash := styleHash(kind, open, close)
	key := r.styleKey(kind, hash)

	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(styleValue{Open: open, Close: close}); err != nil {
		return "", err
	}
	payload := strings.TrimSuffix(buf.String(), "\n")

	ctx := context.Background()
	writer := redis.Cmdable(r.client)
	if r.pipe != nil {
		writer = r.pipe
	}
	if err := writer.SetNX(ctx, key, string(payload), r.ttl).Err(); err != nil {
		return "", &transfuse.StateError{Op: "style", Cause: err}
	}
	return hash, nil
}

// StyleByHash reverse-looks-up a previously minted hash.
func (r *RedisStore) StyleByHash(kind, hash string) (string, string, bool, error) {
	ctx := context.Background()
	val, err := r.client.Get(ctx, r.styleKey(kind, hash)).Result()
	if err == redis.Nil {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, &transfuse.StateError{Op: "styleByHash", Cause: err}
	}
	var sv styleValue
	if err := json.Unmarshal([]byte(val), &sv); err != nil {
		return "", "", false, err
	}
	return sv.Open, sv.Close, true, nil
}

// Begin opens a pipeline so a document's Style calls during extraction
// batch into one round trip at Commit.
func (r *RedisStore) Begin() error {
	r.pipe = r.client.Pipeline()
	return nil
}

// Commit flushes the pipeline opened by Begin, if any.
func (r *RedisStore) Commit() error {
	if r.pipe == nil {
		return nil
	}
	ctx := context.Background()
	_, err := r.pipe.Exec(ctx)
	r.pipe = nil
	return err
}

// Format returns the format tag most recently set by SetFormat.
func (r *RedisStore) Format() string {
	ctx := context.Background()
	val, err := r.client.Get(ctx, r.keyPrefix+"format").Result()
	if err != nil {
		return ""
	}
	return val
}

// SetFormat records the format tag extraction ran under.
func (r *RedisStore) SetFormat(format string) {
	ctx := context.Background()
	_ = r.client.Set(ctx, r.keyPrefix+"format", format, r.ttl).Err()
}

// Close closes the underlying Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) styleKey(kind, hash string) string {
	return r.keyPrefix + "style:" + kind + ":" + hash
}

var _ transfuse.StateStore = (*RedisStore)(nil)
