package notification

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/internal/metrics"
	"github.com/Hverma1206/saan-candles-backend/pkg/mylogger"
	"github.com/Hverma1206/saan-candles-backend/pkg/utils"
)

const sendTimeout = 15 * time.Second

// OrderMailer is the delivery half of the notifier, implemented by
// EmailSender.
type OrderMailer interface {
	SendOrderNotification(ctx context.Context, order *domain.Order) error
	SendOrderConfirmation(ctx context.Context, order *domain.Order) error
}

// OrderNotifier sends order emails in the background. A failed or
// slow SMTP server never delays or fails order placement; the breaker
// stops us from piling goroutines onto a dead server.
type OrderNotifier struct {
	mailer  OrderMailer
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewOrderNotifier(mailer OrderMailer, logger *zap.Logger) *OrderNotifier {
	return &OrderNotifier{
		mailer:  mailer,
		breaker: utils.NewBreaker("smtp", logger),
		logger:  logger,
	}
}

// OrderPlaced dispatches the admin alert and the customer confirmation
// and returns immediately.
func (n *OrderNotifier) OrderPlaced(order *domain.Order) {
	go n.deliver("order_notification", order, n.mailer.SendOrderNotification)
	go n.deliver("order_confirmation", order, n.mailer.SendOrderConfirmation)
}

func (n *OrderNotifier) deliver(
	kind string,
	order *domain.Order,
	send func(ctx context.Context, order *domain.Order) error,
) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	_, err := n.breaker.Execute(func() (any, error) {
		return nil, send(ctx, order)
	})
	if err != nil {
		metrics.EmailFailures.WithLabelValues(kind).Inc()

		mylogger.Error(
			ctx,
			n.logger,
			"Failed to send order email",
			zap.String("kind", kind),
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)

		return
	}

	metrics.EmailsSent.WithLabelValues(kind).Inc()

	mylogger.Info(
		ctx,
		n.logger,
		"Order email sent",
		zap.String("kind", kind),
		zap.Int64("order_id", order.ID),
	)
}
