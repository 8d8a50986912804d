package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kode4food/kubetour/pkg/api"
)

// RedisStore keeps the history as a JSON string value. Updates use
// WATCH/MULTI so concurrent writers never drop an attempt
type RedisStore struct {
	client *redis.Client
	key    string
}

const maxUpdateRetries = 8

var ErrUpdateConflict = errors.New("quiz history update kept conflicting")

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to the server described by opts
func NewRedisStore(opts *redis.Options) *RedisStore {
	return NewRedisStoreWithClient(redis.NewClient(opts))
}

// NewRedisStoreWithClient takes ownership of client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		key:    HistoryKey,
	}
}

func (s *RedisStore) Load(ctx context.Context) ([]api.QuizAttempt, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeHistory(data)
}

func (s *RedisStore) Update(
	ctx context.Context, fn UpdateFunc,
) ([]api.QuizAttempt, error) {
	var res []api.QuizAttempt
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, s.key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next := fn(decodeForUpdate(data))
		enc, err := encodeHistory(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, enc, 0)
			return nil
		})
		if err == nil {
			res = next
		}
		return err
	}

	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return res, err
	}
	return nil, fmt.Errorf("%w: %s", ErrUpdateConflict, s.key)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
