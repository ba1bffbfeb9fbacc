package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/solport/devportal/pkg/domain/apikey"
)

const (
	ApiKeyPattern = "apikey:%s"

	// UsageKeyPattern is the hash key for one (domain, identity, scope)
	// counter: scope is either "total" or a YYYY-MM-DD day. The layout is
	// shared with the rest of the portal and must not change.
	UsageKeyPattern = "%s_usage:%s:%s"

	ApiKeyTTLName = "api_key"

	scanBatchSize = 100
)

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	RedisClient() *redis.Client
	CreateTTLMap(name string, ttl time.Duration) *TTLMap
	GetTTLMap(name string) *TTLMap

	GetApiKey(ctx context.Context, digest string) (*apikey.APIKey, error)
	SaveApiKey(ctx context.Context, key *apikey.APIKey) error
	InvalidateApiKey(ctx context.Context, digest string) error

	// ScanPattern walks all keys matching pattern with a cursor so large
	// keyspaces are never listed in a single call. fn returning an error
	// stops the walk.
	ScanPattern(ctx context.Context, pattern string, fn func(key string) error) error
}

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}

type client struct {
	redisClient *redis.Client
	ttlMaps     sync.Map
	apiKeyTTL   time.Duration
}

func NewClient(config Config, logger *logrus.Logger) (Client, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	redisClient := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host": config.Host,
			"port": config.Port,
		}).WithError(err).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected")

	return &client{
		redisClient: redisClient,
		apiKeyTTL:   5 * time.Minute,
	}, nil
}

// NewClientFromRedis wraps an existing redis client; used by tests with
// redismock.
func NewClientFromRedis(redisClient *redis.Client) Client {
	return &client{
		redisClient: redisClient,
		apiKeyTTL:   5 * time.Minute,
	}
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	return c.redisClient.Get(ctx, key).Result()
}

func (c *client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.redisClient.Set(ctx, key, value, expiration).Err()
}

func (c *client) Delete(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, key).Err()
}

func (c *client) RedisClient() *redis.Client {
	return c.redisClient
}

func (c *client) CreateTTLMap(name string, ttl time.Duration) *TTLMap {
	ttlMap := NewTTLMap(ttl)
	c.ttlMaps.Store(name, ttlMap)
	return ttlMap
}

func (c *client) GetTTLMap(name string) *TTLMap {
	if value, ok := c.ttlMaps.Load(name); ok {
		if ttlMap, ok := value.(*TTLMap); ok {
			return ttlMap
		}
	}
	return nil
}

func (c *client) GetApiKey(ctx context.Context, digest string) (*apikey.APIKey, error) {
	res, err := c.Get(ctx, fmt.Sprintf(ApiKeyPattern, digest))
	if err != nil {
		return nil, err
	}
	key := new(apikey.APIKey)
	if err := json.Unmarshal([]byte(res), key); err != nil {
		return nil, err
	}
	return key, nil
}

func (c *client) SaveApiKey(ctx context.Context, key *apikey.APIKey) error {
	keyJSON, err := json.Marshal(key)
	if err != nil {
		return err
	}
	return c.Set(ctx, fmt.Sprintf(ApiKeyPattern, key.Digest), string(keyJSON), c.apiKeyTTL)
}

func (c *client) InvalidateApiKey(ctx context.Context, digest string) error {
	return c.Delete(ctx, fmt.Sprintf(ApiKeyPattern, digest))
}

func (c *client) ScanPattern(ctx context.Context, pattern string, fn func(key string) error) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.redisClient.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("error scanning keys: %w", err)
		}
		for _, key := range keys {
			if err := fn(key); err != nil {
				return err
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

// UsageKey builds the Fast Store key for a (domain, identity, scope)
// counter.
func UsageKey(domain, identity, scope string) string {
	return fmt.Sprintf(UsageKeyPattern, domain, identity, scope)
}
