package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/otoor/marketplace-backend/gateways/courier"

	"github.com/redis/go-redis/v9"
)

// QuoteCache keeps courier quotes in Redis for a short TTL so repeated
// checkout previews for the same lane do not hammer the gateway. A stale
// quote is harmless: the chosen partner is re-validated at checkout.
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQuoteCache creates a new QuoteCache.
func NewQuoteCache(client *redis.Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{client: client, ttl: ttl}
}

// Keys carry the weight rounded up to whole kilograms so a heavy parcel
// never reuses the rates quoted for a light one on the same lane.
func (c *QuoteCache) key(originCityID, destCityID, paymentMode string, weightKg float64) string {
	return fmt.Sprintf("courier:quotes:%s:%s:%s:%dkg",
		originCityID, destCityID, paymentMode, int(math.Ceil(weightKg)))
}

// Get returns the cached quotes for a lane, or nil on miss.
func (c *QuoteCache) Get(ctx context.Context, originCityID, destCityID, paymentMode string, weightKg float64) ([]courier.Quote, error) {
	data, err := c.client.Get(ctx, c.key(originCityID, destCityID, paymentMode, weightKg)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var quotes []courier.Quote
	if err := json.Unmarshal([]byte(data), &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// Set stores the quotes for a lane.
func (c *QuoteCache) Set(ctx context.Context, originCityID, destCityID, paymentMode string, weightKg float64, quotes []courier.Quote) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(originCityID, destCityID, paymentMode, weightKg), data, c.ttl).Err()
}

// NewRedisClient initializes and returns a Redis client.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
