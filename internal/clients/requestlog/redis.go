package requestlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
)

// Store is the append-only request log collaborator. Entries are
// (method, endpoint) pairs; readers are external.
type Store interface {
	Append(ctx context.Context, method, endpoint string) error
	Close() error
}

type entry struct {
	Method     string    `json:"method"`
	Endpoint   string    `json:"endpoint"`
	RecordedAt time.Time `json:"recorded_at"`
}

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
	key string
}

// NewRedisStore connects to the request log list. REDIS_ADDR must be set;
// callers treat a nil store as "sink disabled".
func NewRedisStore(log *logger.Logger) (Store, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	key := strings.TrimSpace(os.Getenv("REDIS_REQUEST_LOG_KEY"))
	if key == "" {
		key = "shiptrack:request_log"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{
		log: log.With("client", "RequestLogStore"),
		rdb: rdb,
		key: key,
	}, nil
}

func (s *redisStore) Append(ctx context.Context, method, endpoint string) error {
	raw, err := json.Marshal(entry{
		Method:     method,
		Endpoint:   endpoint,
		RecordedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal request log entry: %w", err)
	}
	if err := s.rdb.RPush(ctx, s.key, raw).Err(); err != nil {
		return fmt.Errorf("rpush request log entry: %w", err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.rdb.Close()
}
