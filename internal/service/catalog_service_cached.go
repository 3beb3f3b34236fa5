package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/pkg/mylogger"
)

const (
	candleListKey   = "candles:list"
	candleKeyFormat = "candles:%d"
)

// cachedCatalogService wraps CatalogService with a Redis read-through
// cache. Writes invalidate instead of updating, the next read repopulates.
type cachedCatalogService struct {
	inner  CatalogService
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedCatalogService(
	inner CatalogService,
	client *redis.Client,
	ttl time.Duration,
	logger *zap.Logger,
) CatalogService {
	return &cachedCatalogService{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *cachedCatalogService) ListCandles(ctx context.Context) ([]domain.Candle, error) {
	cached, err := s.client.Get(ctx, candleListKey).Bytes()
	if err == nil {
		var candles []domain.Candle
		if err := json.Unmarshal(cached, &candles); err == nil {
			return candles, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		mylogger.Warn(
			ctx,
			s.logger,
			"Cache read failed",
			zap.String("key", candleListKey),
			zap.Error(err),
		)
	}

	candles, err := s.inner.ListCandles(ctx)
	if err != nil {
		return nil, err
	}

	s.store(ctx, candleListKey, candles)

	return candles, nil
}

func (s *cachedCatalogService) GetCandle(ctx context.Context, id int64) (*domain.Candle, error) {
	key := fmt.Sprintf(candleKeyFormat, id)

	cached, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var candle domain.Candle
		if err := json.Unmarshal(cached, &candle); err == nil {
			return &candle, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		mylogger.Warn(
			ctx,
			s.logger,
			"Cache read failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	candle, err := s.inner.GetCandle(ctx, id)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, candle)

	return candle, nil
}

func (s *cachedCatalogService) CreateCandle(ctx context.Context, candle *domain.Candle) error {
	if err := s.inner.CreateCandle(ctx, candle); err != nil {
		return err
	}

	s.invalidate(ctx, candleListKey)

	return nil
}

func (s *cachedCatalogService) UpdateCandle(ctx context.Context, id int64, input *domain.UpdateCandleInput) (*domain.Candle, error) {
	candle, err := s.inner.UpdateCandle(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, candleListKey, fmt.Sprintf(candleKeyFormat, id))

	return candle, nil
}

func (s *cachedCatalogService) DeleteCandle(ctx context.Context, id int64) error {
	if err := s.inner.DeleteCandle(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, candleListKey, fmt.Sprintf(candleKeyFormat, id))

	return nil
}

func (s *cachedCatalogService) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (s *cachedCatalogService) invalidate(ctx context.Context, keys ...string) {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Cache invalidation failed",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}
