package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/internal/metrics"
	"github.com/Hverma1206/saan-candles-backend/internal/repository"
	"github.com/Hverma1206/saan-candles-backend/pkg/mylogger"
)

const (
	defaultPage  = 1
	defaultLimit = 50
)

// TxStarter is satisfied by *pgxpool.Pool.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Notifier delivers best-effort order emails. Implementations must not
// block the caller; PlaceOrder never waits on delivery.
type Notifier interface {
	OrderPlaced(order *domain.Order)
}

type CartItem struct {
	CandleID int64
	Quantity int32
}

type PlaceOrderInput struct {
	Items           []CartItem
	ShippingAddress domain.ShippingAddress
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Pages int64 `json:"pages"`
}

type OrderService interface {
	PlaceOrder(ctx context.Context, user *domain.User, input *PlaceOrderInput) (*domain.Order, error)
	ListMyOrders(ctx context.Context, userID int64) ([]domain.Order, error)
	GetOwnedOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error)
	ListAll(ctx context.Context, status string, page, limit int64) ([]domain.Order, *Pagination, error)
	GetOrderAdmin(ctx context.Context, orderID int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error)
}

type orderService struct {
	db         TxStarter
	orderRepo  repository.OrderRepository
	candleRepo repository.CandleRepository
	notifier   Notifier
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewOrderService(
	db TxStarter,
	orderRepo repository.OrderRepository,
	candleRepo repository.CandleRepository,
	notifier Notifier,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		db:         db,
		orderRepo:  orderRepo,
		candleRepo: candleRepo,
		notifier:   notifier,
		logger:     logger,
		tracer:     otel.Tracer("order_service"),
	}
}

// PlaceOrder validates the cart against the live catalog, snapshots
// server-side prices, then persists the order and decrements stock in a
// single transaction, so a failed line leaves no partial state. Emails
// go out only after commit and never affect the result.
func (s *orderService) PlaceOrder(ctx context.Context, user *domain.User, input *PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", user.ID),
		attribute.Int("items_count", len(input.Items)),
	)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		if err := tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(
				cleanupCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	ids := distinctCandleIDs(input.Items)

	candles, err := s.candleRepo.FindByIDs(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load candles: %w", err)
	}

	byID := make(map[int64]*domain.Candle, len(candles))
	for i := range candles {
		byID[candles[i].ID] = &candles[i]
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		metrics.OrderRejections.WithLabelValues("not_found").Inc()
		return nil, &ProductsNotFoundError{IDs: missing}
	}

	order := &domain.Order{
		UserID:          user.ID,
		Email:           user.Email,
		ShippingAddress: input.ShippingAddress,
		Status:          domain.OrderStatusPending,
		PaymentMethod:   domain.DefaultPaymentMethod,
	}

	for _, item := range input.Items {
		candle := byID[item.CandleID]

		if !candle.Active {
			metrics.OrderRejections.WithLabelValues("unavailable").Inc()
			return nil, &ProductUnavailableError{Title: candle.Title}
		}

		if !candle.HasStock(item.Quantity) {
			metrics.OrderRejections.WithLabelValues("insufficient_stock").Inc()
			return nil, &InsufficientStockError{Title: candle.Title, Available: *candle.Stock}
		}

		// Snapshot the catalog-authoritative title and price; client
		// supplied prices are never consulted.
		order.Items = append(order.Items, domain.OrderItem{
			CandleID: candle.ID,
			Title:    candle.Title,
			Price:    candle.Price,
			Quantity: item.Quantity,
		})
	}

	order.CalculateTotal()

	if err := s.orderRepo.Create(ctx, tx, order); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to create order",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// The conditional decrement re-checks stock at write time, closing
	// the gap between the read above and this write under concurrent
	// placements. Any conflict rolls the whole order back.
	for _, item := range input.Items {
		if err := s.candleRepo.DecreaseStock(ctx, tx, item.CandleID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				metrics.OrderRejections.WithLabelValues("insufficient_stock").Inc()
				return nil, s.stockConflict(ctx, tx, byID[item.CandleID])
			}

			return nil, fmt.Errorf("failed to decrease stock: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to commit transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.OrdersPlaced.Inc()

	mylogger.Info(
		ctx,
		s.logger,
		"Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", user.ID),
		zap.Int64("total_amount", order.TotalAmount),
	)

	s.notifier.OrderPlaced(order)

	return order, nil
}

// stockConflict rebuilds the insufficient-stock error with the remaining
// quantity as another transaction left it.
func (s *orderService) stockConflict(ctx context.Context, tx pgx.Tx, candle *domain.Candle) error {
	stockErr := &InsufficientStockError{Title: candle.Title}

	current, err := s.candleRepo.FindByIDs(ctx, tx, []int64{candle.ID})
	if err == nil && len(current) == 1 && current[0].Stock != nil {
		stockErr.Available = *current[0].Stock
	}

	return stockErr
}

func (s *orderService) ListMyOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *orderService) GetOwnedOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		mylogger.Warn(
			ctx,
			s.logger,
			"Order access denied",
			zap.Int64("order_id", orderID),
			zap.Int64("requester_id", userID),
			zap.Int64("owner_id", order.UserID),
		)

		return nil, ErrAccessDenied
	}

	return order, nil
}

func (s *orderService) ListAll(ctx context.Context, status string, page, limit int64) ([]domain.Order, *Pagination, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	var filter domain.OrderStatus
	if status != "" && status != "all" {
		filter = domain.OrderStatus(status)
		if !filter.Valid() {
			return nil, nil, ErrInvalidStatus
		}
	}

	orders, total, err := s.orderRepo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}

	pagination := &Pagination{
		Total: total,
		Page:  page,
		Pages: int64(math.Ceil(float64(total) / float64(limit))),
	}

	return orders, pagination, nil
}

func (s *orderService) GetOrderAdmin(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.orderRepo.GetByIDWithUser(ctx, orderID)
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	newStatus := domain.OrderStatus(status)
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return nil, err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("status", status),
	)

	return s.orderRepo.GetByIDWithUser(ctx, orderID)
}

func distinctCandleIDs(items []CartItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.CandleID]; ok {
			continue
		}
		seen[item.CandleID] = struct{}{}
		ids = append(ids, item.CandleID)
	}
	return ids
}
