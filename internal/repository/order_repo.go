package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/pkg/mylogger"
)

type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByIDWithUser(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus, limit, offset int64) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}

type orderRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/order_repo"),
	}
}

func (r *orderRepo) Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", order.UserID),
		attribute.Int("items_count", len(order.Items)),
	)

	queryOrder := `
		INSERT INTO orders (user_id, email, first_name, last_name, address,
			city, state, zip_code, phone, total_amount, status, payment_method,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at;
	`

	addr := order.ShippingAddress
	if err := tx.QueryRow(
		ctx,
		queryOrder,
		order.UserID,
		order.Email,
		addr.FirstName,
		addr.LastName,
		addr.Address,
		addr.City,
		addr.State,
		addr.ZipCode,
		addr.Phone,
		order.TotalAmount,
		string(order.Status),
		order.PaymentMethod,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.Int64("user_id", order.UserID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (order_id, candle_id, title, price, quantity)
		VALUES ($1, $2, $3, $4, $5);
	`

	for _, item := range order.Items {
		if _, err := tx.Exec(
			ctx,
			queryItem,
			order.ID,
			item.CandleID,
			item.Title,
			item.Price,
			item.Quantity,
		); err != nil {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Failed to insert order item",
				zap.Int64("order_id", order.ID),
				zap.Int64("candle_id", item.CandleID),
				zap.Error(err),
			)

			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, user_id, email, first_name, last_name, address,
		city, state, zip_code, phone, total_amount, status, payment_method,
		created_at, updated_at`

func scanOrder(row pgx.Row, o *domain.Order) error {
	addr := &o.ShippingAddress
	return row.Scan(
		&o.ID, &o.UserID, &o.Email, &addr.FirstName, &addr.LastName,
		&addr.Address, &addr.City, &addr.State, &addr.ZipCode, &addr.Phone,
		&o.TotalAmount, &o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1;`

	var order domain.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query order",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := r.loadItems(ctx, []*domain.Order{&order}); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepo) GetByIDWithUser(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByIDWithUser")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	query := `
		SELECT o.id, o.user_id, o.email, o.first_name, o.last_name, o.address,
			o.city, o.state, o.zip_code, o.phone, o.total_amount, o.status,
			o.payment_method, o.created_at, o.updated_at,
			u.name, u.email, u.phone_number
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1;
	`

	var order domain.Order
	var user domain.OrderUser
	addr := &order.ShippingAddress
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.UserID, &order.Email, &addr.FirstName, &addr.LastName,
		&addr.Address, &addr.City, &addr.State, &addr.ZipCode, &addr.Phone,
		&order.TotalAmount, &order.Status, &order.PaymentMethod,
		&order.CreatedAt, &order.UpdatedAt,
		&user.Name, &user.Email, &user.PhoneNumber,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query order with user",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	order.User = &user

	if err := r.loadItems(ctx, []*domain.Order{&order}); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListByUser")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query user orders",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := r.loadItemsFor(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepo) List(ctx context.Context, status domain.OrderStatus, limit, offset int64) ([]domain.Order, int64, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	span.SetAttributes(
		attribute.String("status", string(status)),
		attribute.Int64("limit", limit),
		attribute.Int64("offset", offset),
	)

	baseQuery := `
		SELECT o.id, o.user_id, o.email, o.first_name, o.last_name, o.address,
			o.city, o.state, o.zip_code, o.phone, o.total_amount, o.status,
			o.payment_method, o.created_at, o.updated_at,
			u.name, u.email, u.phone_number
		FROM orders o
		JOIN users u ON u.id = o.user_id`
	countQuery := `SELECT COUNT(*) FROM orders`

	var args []interface{}
	argId := 1

	if status != "" {
		filter := fmt.Sprintf(" WHERE status = $%d", argId)
		baseQuery += fmt.Sprintf(" WHERE o.status = $%d", argId)
		countQuery += filter

		args = append(args, string(status))
		argId++
	}

	baseQuery += fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d", argId, argId+1)

	rows, err := r.pool.Query(ctx, baseQuery, append(args, limit, offset)...)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query orders",
			zap.Error(err),
		)

		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var user domain.OrderUser
		addr := &o.ShippingAddress
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Email, &addr.FirstName, &addr.LastName,
			&addr.Address, &addr.City, &addr.State, &addr.ZipCode, &addr.Phone,
			&o.TotalAmount, &o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt,
			&user.Name, &user.Email, &user.PhoneNumber,
		); err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("failed to scan order row: %w", err)
		}
		o.User = &user
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to count orders",
			zap.Error(err),
		)

		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	if err := r.loadItemsFor(ctx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2;
	`

	commandTag, err := r.pool.Exec(ctx, query, string(status), id)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update order status",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("failed to update order: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		mylogger.Warn(
			ctx,
			r.logger,
			"Order not found",
			zap.Int64("order_id", id),
		)

		return ErrOrderNotFound
	}

	return nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return orders, nil
}

func (r *orderRepo) loadItemsFor(ctx context.Context, orders []domain.Order) error {
	ptrs := make([]*domain.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	return r.loadItems(ctx, ptrs)
}

// loadItems fetches the line items for a batch of orders in one query.
func (r *orderRepo) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	query := `
		SELECT order_id, candle_id, title, price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id;
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query order items",
			zap.Error(err),
		)

		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.CandleID, &item.Title, &item.Price, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	return nil
}
