package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
)

type recordingMailer struct {
	mu            sync.Mutex
	notifications []int64
	confirmations []int64
	fail          bool
	done          chan struct{}
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{done: make(chan struct{}, 4)}
}

func (m *recordingMailer) SendOrderNotification(_ context.Context, order *domain.Order) error {
	defer func() { m.done <- struct{}{} }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.notifications = append(m.notifications, order.ID)
	return nil
}

func (m *recordingMailer) SendOrderConfirmation(_ context.Context, order *domain.Order) error {
	defer func() { m.done <- struct{}{} }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.confirmations = append(m.confirmations, order.ID)
	return nil
}

func (m *recordingMailer) waitForSends(t *testing.T, n int) {
	t.Helper()

	for range n {
		select {
		case <-m.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for email send")
		}
	}
}

func TestOrderPlaced_SendsBothEmails(t *testing.T) {
	mailer := newRecordingMailer()
	notifier := NewOrderNotifier(mailer, zap.NewNop())

	order := &domain.Order{ID: 42, Email: "jane@example.com"}
	notifier.OrderPlaced(order)

	mailer.waitForSends(t, 2)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Equal(t, []int64{42}, mailer.notifications)
	assert.Equal(t, []int64{42}, mailer.confirmations)
}

func TestOrderPlaced_ReturnsImmediately(t *testing.T) {
	mailer := newRecordingMailer()
	notifier := NewOrderNotifier(mailer, zap.NewNop())

	start := time.Now()
	notifier.OrderPlaced(&domain.Order{ID: 1})
	elapsed := time.Since(start)

	require.Less(t, elapsed, 100*time.Millisecond)

	mailer.waitForSends(t, 2)
}

func TestOrderPlaced_FailuresAreSwallowed(t *testing.T) {
	mailer := newRecordingMailer()
	mailer.fail = true
	notifier := NewOrderNotifier(mailer, zap.NewNop())

	// Must not panic or surface anything to the caller.
	notifier.OrderPlaced(&domain.Order{ID: 1})

	mailer.waitForSends(t, 2)

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	assert.Empty(t, mailer.notifications)
	assert.Empty(t, mailer.confirmations)
}
