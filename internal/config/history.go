package config

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/kode4food/kubetour/internal/quiz"
)

// OpenStore creates the quiz history store selected by the settings
func (h *HistoryConfig) OpenStore(ctx context.Context) (quiz.Store, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	switch h.Store {
	case HistoryStoreRedis:
		return quiz.NewRedisStore(&redis.Options{
			Addr:     h.RedisAddr,
			Password: h.RedisPassword,
			DB:       h.RedisDB,
		}), nil
	case HistoryStoreBlob:
		return quiz.NewBlobStore(ctx, h.BlobURL, h.BlobPrefix)
	default:
		return quiz.NewMemoryStore(), nil
	}
}
