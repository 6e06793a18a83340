package authority

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/fincore/internal/domain/approval"
	"github.com/erp/fincore/internal/infrastructure/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const authorityKeyPrefix = "approval:authority:"

// cachedAuthority is the Redis value shape for a resolved authority
type cachedAuthority struct {
	Unlimited bool            `json:"unlimited"`
	Ceiling   decimal.Decimal `json:"ceiling"`
}

// CachedResolver wraps an AuthorityResolver with a Redis cache so the
// hot approve path does not hit the authorities table on every
// decision. Cache failures degrade to the underlying resolver; they
// never fail the approval.
type CachedResolver struct {
	next   approval.AuthorityResolver
	client *redis.Client
	ttl    time.Duration
}

// NewCachedResolver creates a caching resolver with the given TTL
func NewCachedResolver(next approval.AuthorityResolver, client *redis.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

// NewRedisClient creates a Redis client and verifies the connection
func NewRedisClient(host string, port int, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Resolve implements approval.AuthorityResolver
func (r *CachedResolver) Resolve(ctx context.Context, actor approval.Actor) (approval.Authority, error) {
	key := authorityKeyPrefix + actor.TenantID.String() + ":" + actor.ID.String()

	if raw, err := r.client.Get(ctx, key).Result(); err == nil {
		var cached cachedAuthority
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			if cached.Unlimited {
				return approval.UnlimitedAuthority(), nil
			}
			return approval.LimitedAuthority(cached.Ceiling), nil
		}
	}

	authority, err := r.next.Resolve(ctx, actor)
	if err != nil {
		return approval.Authority{}, err
	}

	raw, err := json.Marshal(cachedAuthority{
		Unlimited: authority.Unlimited,
		Ceiling:   authority.Ceiling,
	})
	if err == nil {
		if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
			logger.L(ctx).Warn("authority cache write failed",
				zap.String("key", key), zap.Error(err))
		}
	}

	return authority, nil
}

// Invalidate drops the cached authority for one reviewer, forcing the
// next resolution to read the database.
func (r *CachedResolver) Invalidate(ctx context.Context, tenantID, userID string) error {
	return r.client.Del(ctx, authorityKeyPrefix+tenantID+":"+userID).Err()
}

var _ approval.AuthorityResolver = (*CachedResolver)(nil)
