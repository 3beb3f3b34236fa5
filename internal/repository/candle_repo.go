package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/pkg/mylogger"
)

const candleColumns = `id, title, description, price, weight, height, width,
		category, fragrance, color, burn_time, material, stock, photo, active,
		created_at, updated_at`

type CandleRepository interface {
	Create(ctx context.Context, candle *domain.Candle) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Candle, error)
	List(ctx context.Context) ([]domain.Candle, error)
	Update(ctx context.Context, id int64, input *domain.UpdateCandleInput) (*domain.Candle, error)
	Delete(ctx context.Context, id int64) error

	// FindByIDs and DecreaseStock run inside the order-placement
	// transaction, so they take the caller's tx.
	FindByIDs(ctx context.Context, tx pgx.Tx, ids []int64) ([]domain.Candle, error)
	DecreaseStock(ctx context.Context, tx pgx.Tx, id int64, quantity int32) error
}

type candleRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewCandleRepository(pool *pgxpool.Pool, logger *zap.Logger) CandleRepository {
	return &candleRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/candle_repo"),
	}
}

func (r *candleRepo) Create(ctx context.Context, candle *domain.Candle) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "CandleRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("title", candle.Title),
	)

	query := `
		INSERT INTO candles (title, description, price, weight, height, width,
			category, fragrance, color, burn_time, material, stock, photo, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at;
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		candle.Title,
		candle.Description,
		candle.Price,
		candle.Weight,
		candle.Height,
		candle.Width,
		candle.Category,
		candle.Fragrance,
		candle.Color,
		candle.BurnTime,
		candle.Material,
		candle.Stock,
		candle.Photo,
		candle.Active,
	).Scan(&candle.ID, &candle.CreatedAt, &candle.UpdatedAt)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error creating candle",
			zap.Error(err),
		)

		return 0, fmt.Errorf("error creating candle: %w", err)
	}

	return candle.ID, nil
}

func (r *candleRepo) GetByID(ctx context.Context, id int64) (*domain.Candle, error) {
	ctx, span := r.tracer.Start(ctx, "CandleRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `SELECT ` + candleColumns + ` FROM candles WHERE id = $1;`

	var c domain.Candle
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.Price, &c.Weight, &c.Height,
		&c.Width, &c.Category, &c.Fragrance, &c.Color, &c.BurnTime,
		&c.Material, &c.Stock, &c.Photo, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCandleNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error getting candle by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting candle: %w", err)
	}

	return &c, nil
}

func (r *candleRepo) List(ctx context.Context) ([]domain.Candle, error) {
	ctx, span := r.tracer.Start(ctx, "CandleRepository.List")
	defer span.End()

	query := `SELECT ` + candleColumns + ` FROM candles ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error listing candles",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error selecting candles: %w", err)
	}
	defer rows.Close()

	var candles []domain.Candle
	for rows.Next() {
		var c domain.Candle
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Price, &c.Weight, &c.Height,
			&c.Width, &c.Category, &c.Fragrance, &c.Color, &c.BurnTime,
			&c.Material, &c.Stock, &c.Photo, &c.Active, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning candle row: %w", err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return candles, nil
}

func (r *candleRepo) Update(ctx context.Context, id int64, input *domain.UpdateCandleInput) (*domain.Candle, error) {
	ctx, span := r.tracer.Start(ctx, "CandleRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	var updates []string
	var args []interface{}
	argId := 1

	set := func(column string, value interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argId))
		args = append(args, value)
		argId++
	}

	if input.Title != nil {
		set("title", *input.Title)
	}
	if input.Description != nil {
		set("description", *input.Description)
	}
	if input.Price != nil {
		set("price", *input.Price)
	}
	if input.Weight != nil {
		set("weight", *input.Weight)
	}
	if input.Height != nil {
		set("height", *input.Height)
	}
	if input.Width != nil {
		set("width", *input.Width)
	}
	if input.Category != nil {
		set("category", *input.Category)
	}
	if input.Fragrance != nil {
		set("fragrance", *input.Fragrance)
	}
	if input.Color != nil {
		set("color", *input.Color)
	}
	if input.BurnTime != nil {
		set("burn_time", *input.BurnTime)
	}
	if input.Material != nil {
		set("material", *input.Material)
	}
	if input.Stock != nil {
		set("stock", *input.Stock)
	}
	if input.Photo != nil {
		set("photo", *input.Photo)
	}
	if input.Active != nil {
		set("active", *input.Active)
	}

	if len(updates) == 0 {
		return r.GetByID(ctx, id)
	}

	updates = append(updates, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE candles SET %s WHERE id = $%d RETURNING `+candleColumns+`;`,
		strings.Join(updates, ", "), argId,
	)
	args = append(args, id)

	var c domain.Candle
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.Title, &c.Description, &c.Price, &c.Weight, &c.Height,
		&c.Width, &c.Category, &c.Fragrance, &c.Color, &c.BurnTime,
		&c.Material, &c.Stock, &c.Photo, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCandleNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update candle",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error updating candle: %w", err)
	}

	return &c, nil
}

func (r *candleRepo) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "CandleRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM candles WHERE id = $1;`, id)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error deleting candle",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting candle: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrCandleNotFound
	}

	return nil
}

func (r *candleRepo) FindByIDs(ctx context.Context, tx pgx.Tx, ids []int64) ([]domain.Candle, error) {
	ctx, span := r.tracer.Start(ctx, "CandleRepository.FindByIDs")
	defer span.End()

	span.SetAttributes(
		attribute.Int("ids_count", len(ids)),
	)

	query := `SELECT ` + candleColumns + ` FROM candles WHERE id = ANY($1);`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error querying candles by ids",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error querying candles: %w", err)
	}
	defer rows.Close()

	var candles []domain.Candle
	for rows.Next() {
		var c domain.Candle
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Price, &c.Weight, &c.Height,
			&c.Width, &c.Category, &c.Fragrance, &c.Color, &c.BurnTime,
			&c.Material, &c.Stock, &c.Photo, &c.Active, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning candle row: %w", err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return candles, nil
}

// DecreaseStock is the storage-level guard against overselling: the
// decrement only applies while enough stock remains, and a zero-row
// result surfaces as ErrInsufficientStock so the caller can roll the
// whole order back. NULL stock means unlimited and is left untouched.
func (r *candleRepo) DecreaseStock(ctx context.Context, tx pgx.Tx, id int64, quantity int32) error {
	ctx, span := r.tracer.Start(ctx, "CandleRepository.DecreaseStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.Int("quantity", int(quantity)),
	)

	query := `
		UPDATE candles
		SET stock = CASE WHEN stock IS NULL THEN NULL ELSE stock - $2 END,
			updated_at = NOW()
		WHERE id = $1
			AND (stock IS NULL OR stock >= $2);
	`

	commandTag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error decreasing stock",
			zap.Int64("id", id),
			zap.Int32("quantity", quantity),
			zap.Error(err),
		)

		return fmt.Errorf("error decreasing stock for candle %d: %w", id, err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}

	return nil
}
