package queue

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	avgKeyPrefix = "bajeh:queue:service_minutes:"
	avgWindow    = 50
)

// Averages tracks a rolling window of observed service durations per service
// type in Redis, so wait estimates tighten as the branch serves customers.
// A cold window falls back to the configured default.
type Averages struct {
	client         *redis.Client
	defaultMinutes float64
}

func NewAverages(client *redis.Client, defaultMinutes float64) *Averages {
	if defaultMinutes <= 0 {
		defaultMinutes = 5
	}
	return &Averages{client: client, defaultMinutes: defaultMinutes}
}

// Observe records how long one ticket took from call to completion.
func (a *Averages) Observe(ctx context.Context, serviceType string, minutes float64) error {
	if a.client == nil || minutes <= 0 {
		return nil
	}
	key := avgKeyPrefix + serviceType
	pipe := a.client.TxPipeline()
	pipe.LPush(ctx, key, strconv.FormatFloat(minutes, 'f', 2, 64))
	pipe.LTrim(ctx, key, 0, avgWindow-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record service duration: %w", err)
	}
	return nil
}

// Average returns the mean observed service minutes for a service type, or
// the default when Redis is unavailable or the window is empty.
func (a *Averages) Average(ctx context.Context, serviceType string) float64 {
	if a.client == nil {
		return a.defaultMinutes
	}
	vals, err := a.client.LRange(ctx, avgKeyPrefix+serviceType, 0, avgWindow-1).Result()
	if err != nil || len(vals) == 0 {
		return a.defaultMinutes
	}
	var sum float64
	var n int
	for _, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		sum += f
		n++
	}
	if n == 0 {
		return a.defaultMinutes
	}
	return sum / float64(n)
}

// Default exposes the configured fallback, used when callers estimate
// without a Redis round trip.
func (a *Averages) Default() float64 {
	return a.defaultMinutes
}
