package boost

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	enginerrors "github.com/merchstack/rule-engine/internal/errors"
)

const redisBoostKeyPrefix = "boost:"

// RedisFetcher loads boost mappings from a Redis hash keyed by boost id,
// with product ids as hash fields and multipliers as values.
type RedisFetcher struct {
	client *redis.Client
}

// NewRedisFetcher creates a fetcher over an existing Redis client.
func NewRedisFetcher(client *redis.Client) *RedisFetcher {
	return &RedisFetcher{client: client}
}

// FetchBoost implements Fetcher. A missing key yields an empty mapping, not
// an error; an unreachable Redis yields ErrStoreUnavailable.
func (f *RedisFetcher) FetchBoost(ctx context.Context, boostID string) (map[string]float64, error) {
	raw, err := f.client.HGetAll(ctx, redisBoostKeyPrefix+boostID).Result()
	if err != nil {
		return nil, enginerrors.NewStoreUnavailableError(err)
	}

	values := make(map[string]float64, len(raw))
	for productID, value := range raw {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid boost value %q for product %s in boost %s: %w", value, productID, boostID, err)
		}
		values[productID] = parsed
	}
	return values, nil
}
