package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"safetrip/internal/domain"
	"safetrip/pkg/e"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LocationStore keeps the latest fix per trip and a pub/sub channel per trip.
type LocationStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLocationStore(r *Redis, ttl time.Duration) *LocationStore {
	return &LocationStore{client: r.Client, ttl: ttl}
}

func latestKey(tripID uuid.UUID) string {
	return fmt.Sprintf("trip:%s:location", tripID)
}

func channelName(tripID uuid.UUID) string {
	return fmt.Sprintf("trip:%s:samples", tripID)
}

func (s *LocationStore) Save(ctx context.Context, tripID uuid.UUID, loc domain.Location) error {
	const op = "redis.LocationStore.Save"

	b, err := json.Marshal(loc)
	if err != nil {
		return e.Wrap(op, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, latestKey(tripID), b, s.ttl)
	pipe.Publish(ctx, channelName(tripID), b)
	if _, err := pipe.Exec(ctx); err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (s *LocationStore) Latest(ctx context.Context, tripID uuid.UUID) (domain.Location, error) {
	const op = "redis.LocationStore.Latest"

	var loc domain.Location
	data, err := s.client.Get(ctx, latestKey(tripID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return loc, fmt.Errorf("%s: %w", op, e.ErrNoFix)
		}
		return loc, e.WrapError(ctx, op, err)
	}
	if err := json.Unmarshal(data, &loc); err != nil {
		return loc, e.Wrap(op, err)
	}
	return loc, nil
}

// Subscribe delivers every sample published for the trip until ctx is done.
// Undecodable payloads go to onError.
func (s *LocationStore) Subscribe(ctx context.Context, tripID uuid.UUID, onSample func(domain.Location), onError func(error)) error {
	const op = "redis.LocationStore.Subscribe"

	sub := s.client.Subscribe(ctx, channelName(tripID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return e.WrapError(ctx, op, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var loc domain.Location
				if err := json.Unmarshal([]byte(msg.Payload), &loc); err != nil {
					if onError != nil {
						onError(e.Wrap(op, err))
					}
					continue
				}
				onSample(loc)
			}
		}
	}()
	return nil
}
