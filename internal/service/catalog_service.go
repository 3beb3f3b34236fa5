package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/internal/repository"
	"github.com/Hverma1206/saan-candles-backend/pkg/mylogger"
)

type CatalogService interface {
	ListCandles(ctx context.Context) ([]domain.Candle, error)
	GetCandle(ctx context.Context, id int64) (*domain.Candle, error)
	CreateCandle(ctx context.Context, candle *domain.Candle) error
	UpdateCandle(ctx context.Context, id int64, input *domain.UpdateCandleInput) (*domain.Candle, error)
	DeleteCandle(ctx context.Context, id int64) error
}

type catalogService struct {
	candleRepo repository.CandleRepository
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewCatalogService(candleRepo repository.CandleRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		candleRepo: candleRepo,
		logger:     logger,
		tracer:     otel.Tracer("catalog_service"),
	}
}

func (s *catalogService) ListCandles(ctx context.Context) ([]domain.Candle, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListCandles")
	defer span.End()

	return s.candleRepo.List(ctx)
}

func (s *catalogService) GetCandle(ctx context.Context, id int64) (*domain.Candle, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetCandle")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("candle_id", id),
	)

	return s.candleRepo.GetByID(ctx, id)
}

func (s *catalogService) CreateCandle(ctx context.Context, candle *domain.Candle) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateCandle")
	defer span.End()

	if _, err := s.candleRepo.Create(ctx, candle); err != nil {
		return err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Candle created",
		zap.Int64("candle_id", candle.ID),
		zap.String("title", candle.Title),
	)

	return nil
}

func (s *catalogService) UpdateCandle(ctx context.Context, id int64, input *domain.UpdateCandleInput) (*domain.Candle, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateCandle")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("candle_id", id),
	)

	return s.candleRepo.Update(ctx, id, input)
}

func (s *catalogService) DeleteCandle(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.DeleteCandle")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("candle_id", id),
	)

	if err := s.candleRepo.Delete(ctx, id); err != nil {
		return err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Candle deleted",
		zap.Int64("candle_id", id),
	)

	return nil
}
