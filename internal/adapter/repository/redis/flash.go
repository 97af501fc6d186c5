package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finpipe/statement-ledger/internal/usecase"
)

// FlashStore implements usecase.FlashStore using Redis lists.
type FlashStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewFlashStore creates a new FlashStore. Pending messages expire after ttl.
func NewFlashStore(client *redis.Client, ttl time.Duration) *FlashStore {
	return &FlashStore{
		client: client,
		prefix: "flash:",
		ttl:    ttl,
	}
}

// Push appends flashes to the session queue and refreshes its TTL.
func (s *FlashStore) Push(ctx context.Context, session string, flashes []usecase.Flash) error {
	if len(flashes) == 0 {
		return nil
	}

	values := make([]any, 0, len(flashes))
	for _, f := range flashes {
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal flash: %w", err)
		}
		values = append(values, data)
	}

	key := s.prefix + session
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err := pipe.Exec(ctx)

	return err
}

// Pop returns pending flashes in push order and clears the queue.
func (s *FlashStore) Pop(ctx context.Context, session string) ([]usecase.Flash, error) {
	key := s.prefix + session

	pipe := s.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	raw := rangeCmd.Val()
	flashes := make([]usecase.Flash, 0, len(raw))
	for _, item := range raw {
		var f usecase.Flash
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			continue
		}
		flashes = append(flashes, f)
	}

	return flashes, nil
}
