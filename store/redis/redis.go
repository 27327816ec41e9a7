package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"go.hackfix.me/hello/store"
)

// scanCount is the COUNT hint sent with each SCAN call.
const scanCount = 100

// Config holds the Redis connection settings.
type Config struct {
	Address  string
	Password string
	DB       int
}

// Redis is a Store backed by a Redis server. Keys are stored as
// namespace:key.
type Redis struct {
	client redis.Cmdable
	closer func() error
}

var _ store.Store = &Redis{}

// Open connects to the Redis server and verifies the connection.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed connecting to redis at %s: %w", cfg.Address, err)
	}

	logger.Debug("connected to redis", "address", cfg.Address, "db", cfg.DB)

	return &Redis{client: client, closer: client.Close}, nil
}

// New wraps an existing client. Closing the store closes client if it
// implements io.Closer.
func New(client redis.Cmdable) *Redis {
	r := &Redis{client: client}
	if c, ok := client.(interface{ Close() error }); ok {
		r.closer = c.Close
	}
	return r
}

// Close closes the connection to the server.
func (r *Redis) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// Get returns the value of key in namespace. ok is false if the key doesn't
// exist.
func (r *Redis) Get(ctx context.Context, namespace, key string) (ok bool, value []byte, err error) {
	if err = store.ValidateNamespace(namespace, false); err != nil {
		return false, nil, err
	}

	value, err = r.client.Get(ctx, store.JoinKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	return true, value, nil
}

// Set stores value under key in namespace, without expiration.
func (r *Redis) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := store.ValidateNamespace(namespace, false); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	return r.client.Set(ctx, store.JoinKey(namespace, key), value, 0).Err()
}

// Delete removes key from namespace. Deleting a missing key is not an error.
func (r *Redis) Delete(ctx context.Context, namespace, key string) error {
	if err := store.ValidateNamespace(namespace, false); err != nil {
		return err
	}

	return r.client.Del(ctx, store.JoinKey(namespace, key)).Err()
}

// List returns the keys in namespace that start with prefix, grouped by
// namespace. If namespace is '*', keys in all namespaces are returned.
func (r *Redis) List(ctx context.Context, namespace, prefix string) (map[string][]string, error) {
	if err := store.ValidateNamespace(namespace, true); err != nil {
		return nil, err
	}

	match := "*"
	if namespace != store.AllNamespaces {
		match = escapeGlob(store.JoinKey(namespace, prefix)) + "*"
	}

	keys := map[string][]string{}
	var cursor uint64
	for {
		batch, next, err := r.client.Scan(ctx, cursor, match, scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("failed scanning keys: %w", err)
		}
		for _, stored := range batch {
			ns, key, ok := store.SplitKey(stored)
			if !ok || !strings.HasPrefix(key, prefix) {
				continue
			}
			keys[ns] = append(keys[ns], key)
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	// SCAN doesn't guarantee ordering, and may return a key more than once.
	for ns := range keys {
		slices.Sort(keys[ns])
		keys[ns] = slices.Compact(keys[ns])
	}

	return keys, nil
}

var globReplacer = strings.NewReplacer(
	`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`,
)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}
