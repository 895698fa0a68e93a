package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"portal/internal/configuration"
	"portal/internal/models"

	"github.com/redis/rueidis"
)

const (
	commandTimeout = 2 * time.Second
	rateWindow     = 60
)

// refreshScript extends a lock only while its value is still ours.
var refreshScript = rueidis.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("EXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RueidisCache backs ICache with Redis or Valkey.
type RueidisCache struct {
	client rueidis.Client
}

func NewRedisCache(config models.ServerCacheConfiguration) (*RueidisCache, error) {
	return dial("redis", config.Hosts, config.Password, tlsConfig(config.TLSEnabled, config.TLSServerName))
}

func NewValkeyCache(config models.ServerCacheConfiguration) (*RueidisCache, error) {
	return dial("valkey", config.Hosts, config.Password, tlsConfig(config.TLSEnabled, config.TLSServerName))
}

func tlsConfig(enabled bool, serverName string) *tls.Config {
	if !enabled {
		return nil
	}
	return &tls.Config{ServerName: serverName, MinVersion: tls.VersionTLS12}
}

func dial(kind string, hosts []string, password string, tlsConf *tls.Config) (*RueidisCache, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: hosts,
		Password:    password,
		TLSConfig:   tlsConf,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", kind, err)
	}
	return &RueidisCache{client: client}, nil
}

// GetRateLimit counts the request and arms the window in one round trip.
func (r *RueidisCache) GetRateLimit(userIdentifier string, requestsPerMinute int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	key := fmt.Sprintf(configuration.CacheAppRateLimitKey, userIdentifier)
	replies := r.client.DoMulti(ctx,
		r.client.B().Incr().Key(key).Build(),
		r.client.B().Expire().Key(key).Seconds(rateWindow).Nx().Build(),
	)

	hits, err := replies[0].AsInt64()
	if err != nil {
		return 0, err
	}
	if err = replies[1].Error(); err != nil {
		return 0, err
	}
	if hits <= int64(requestsPerMinute) {
		return 0, nil
	}

	ttl, err := r.client.Do(ctx, r.client.B().Ttl().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, err
	}
	if ttl < 1 {
		ttl = 1
	}
	return int(ttl), nil
}

func (r *RueidisCache) TryAcquireLock(key string, instanceID string, ttlSeconds int) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := r.client.B().Set().Key(key).Value(instanceID).Nx().Ex(time.Duration(ttlSeconds)*time.Second).Build()
	err := r.client.Do(ctx, cmd).Error()
	switch {
	case rueidis.IsRedisNil(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (r *RueidisCache) RefreshLock(key string, instanceID string, ttlSeconds int) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	extended, err := refreshScript.Exec(ctx, r.client, []string{key}, []string{instanceID, fmt.Sprint(ttlSeconds)}).AsInt64()
	if err != nil {
		return false, err
	}
	return extended == 1, nil
}

func (r *RueidisCache) Close() error {
	r.client.Close()
	return nil
}
