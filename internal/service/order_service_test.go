package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/internal/repository"
)

// fakeTx satisfies pgx.Tx so the service's transaction flow can run
// against in-memory repositories.
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(_ context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(_ context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *fakeTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                             { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row       { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                              { return nil }

type fakeDB struct {
	tx *fakeTx
}

func (db *fakeDB) Begin(_ context.Context) (pgx.Tx, error) { return db.tx, nil }

type fakeCandleRepo struct {
	candles map[int64]*domain.Candle

	decrements   int
	failDecrease map[int64]bool
}

func newFakeCandleRepo(candles ...*domain.Candle) *fakeCandleRepo {
	r := &fakeCandleRepo{
		candles:      make(map[int64]*domain.Candle),
		failDecrease: make(map[int64]bool),
	}
	for _, c := range candles {
		r.candles[c.ID] = c
	}
	return r
}

func (r *fakeCandleRepo) Create(_ context.Context, candle *domain.Candle) (int64, error) {
	r.candles[candle.ID] = candle
	return candle.ID, nil
}

func (r *fakeCandleRepo) GetByID(_ context.Context, id int64) (*domain.Candle, error) {
	c, ok := r.candles[id]
	if !ok {
		return nil, repository.ErrCandleNotFound
	}
	return c, nil
}

func (r *fakeCandleRepo) List(_ context.Context) ([]domain.Candle, error) {
	var out []domain.Candle
	for _, c := range r.candles {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCandleRepo) Update(_ context.Context, id int64, _ *domain.UpdateCandleInput) (*domain.Candle, error) {
	c, ok := r.candles[id]
	if !ok {
		return nil, repository.ErrCandleNotFound
	}
	return c, nil
}

func (r *fakeCandleRepo) Delete(_ context.Context, id int64) error {
	delete(r.candles, id)
	return nil
}

func (r *fakeCandleRepo) FindByIDs(_ context.Context, _ pgx.Tx, ids []int64) ([]domain.Candle, error) {
	var out []domain.Candle
	for _, id := range ids {
		if c, ok := r.candles[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCandleRepo) DecreaseStock(_ context.Context, _ pgx.Tx, id int64, quantity int32) error {
	if r.failDecrease[id] {
		return repository.ErrInsufficientStock
	}

	c, ok := r.candles[id]
	if !ok {
		return repository.ErrInsufficientStock
	}
	if c.Stock == nil {
		r.decrements++
		return nil
	}
	if *c.Stock < int64(quantity) {
		return repository.ErrInsufficientStock
	}
	*c.Stock -= int64(quantity)
	r.decrements++
	return nil
}

type fakeOrderRepo struct {
	nextID  int64
	created []*domain.Order
	orders  map[int64]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1, orders: make(map[int64]*domain.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, _ pgx.Tx, order *domain.Order) error {
	order.ID = r.nextID
	r.nextID++
	r.created = append(r.created, order)
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) GetByIDWithUser(ctx context.Context, id int64) (*domain.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) List(_ context.Context, status domain.OrderStatus, limit, offset int64) ([]domain.Order, int64, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	total := int64(len(out))
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

type fakeNotifier struct {
	notified []*domain.Order
}

func (n *fakeNotifier) OrderPlaced(order *domain.Order) {
	n.notified = append(n.notified, order)
}

func stockOf(v int64) *int64 { return &v }

type orderServiceFixture struct {
	svc      OrderService
	tx       *fakeTx
	candles  *fakeCandleRepo
	orders   *fakeOrderRepo
	notifier *fakeNotifier
}

func newOrderServiceFixture(candles ...*domain.Candle) *orderServiceFixture {
	f := &orderServiceFixture{
		tx:       &fakeTx{},
		candles:  newFakeCandleRepo(candles...),
		orders:   newFakeOrderRepo(),
		notifier: &fakeNotifier{},
	}
	f.svc = NewOrderService(&fakeDB{tx: f.tx}, f.orders, f.candles, f.notifier, zap.NewNop())
	return f
}

func testUser() *domain.User {
	return &domain.User{ID: 7, Email: "jane@example.com", Role: domain.RoleCustomer}
}

func testAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		FirstName: "Jane",
		LastName:  "Doe",
		Address:   "12 Wax Lane",
		City:      "Pune",
		State:     "MH",
		ZipCode:   "411001",
		Phone:     "9876543210",
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newOrderServiceFixture(
		&domain.Candle{ID: 1, Title: "Lavender", Price: 500, Stock: stockOf(5), Active: true},
	)

	order, err := f.svc.PlaceOrder(context.Background(), testUser(), &PlaceOrderInput{
		Items:           []CartItem{{CandleID: 1, Quantity: 2}},
		ShippingAddress: testAddress(),
	})

	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, int64(1000), order.TotalAmount)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.DefaultPaymentMethod, order.PaymentMethod)
	assert.Equal(t, int64(7), order.UserID)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "Lavender", order.Items[0].Title)
	assert.Equal(t, int64(500), order.Items[0].Price)

	assert.Equal(t, int64(3), *f.candles.candles[1].Stock)
	assert.True(t, f.tx.committed)
	assert.Len(t, f.notifier.notified, 1)
}

func TestPlaceOrder_TotalIsSumOfCatalogPrices(t *testing.T) {
	f := newOrderServiceFixture(
		&domain.Candle{ID: 1, Title: "Lavender", Price: 500, Stock: stockOf(10), Active: true},
		&domain.Candle{ID: 2, Title: "Vanilla", Price: 350, Stock: nil, Active: true},
	)

	order, err := f.svc.PlaceOrder(context.Background(), testUser(), &PlaceOrderInput{
		Items: []CartItem{
			{CandleID: 1, Quantity: 3},
			{CandleID: 2, Quantity: 2},
		},
		ShippingAddress: testAddress(),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(500*3+350*2), order.TotalAmount)

	// Unlimited stock stays unlimited.
	assert.Nil(t, f.candles.candles[2].Stock)
}

func TestPlaceOrder_UnknownProducts(t *testing.T) {
	f := newOrderServiceFixture(
		&domain.Candle{ID: 1, Title: "Lavender", Price: 500, Stock: stockOf(5), Active: true},
	)

	order, err := f.svc.PlaceOrder(context.Background(), testUser(), &PlaceOrderInput{
		Items: []CartItem{
			{CandleID: 1, Quantity: 1},
			{CandleID: 42, Quantity: 1},
			{CandleID: 43, Quantity: 1},
		},
		ShippingAddress: testAddress(),
	})

	require.Error(t, err)
	require.Nil(t, order)

	var notFound *ProductsNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.ElementsMatch(t, []int64{42, 43}, notFound.IDs)

	assert.Empty(t, f.orders.created)
	assert.Zero(t, f.candles.decrements)
	assert.True(t, f.tx.rolledBack)
	assert.Empty(t, f.notifier.notified)
}

func TestPlaceOrder_InactiveProduct(t *testing.T) {
	f := newOrderServiceFixture(
		&domain.Candle{ID: 1, Title: "Discontinued", Price: 500, Stock: stockOf(5), Active: false},
	)

	order, err := f.svc.PlaceOrder(context.Background(), testUser(), &PlaceOrderInput{
		Items:           []CartItem{{CandleID: 1, Quantity: 1}},
		ShippingAddress: testAddress(),
	})

	require.Error(t, err)
	require.Nil(t, order)

	var unavailable *ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "Discontinued", unavailable.Title)

	assert.Empty(t, f.orders.created)
	assert.True(t, f.tx.rolledBack)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newOrderServiceFixture(
		&domain.Candle{ID: 1, Title: "Lavender", Price: 500, Stock: stockOf(5), Active: true},
	)

	order, err := f.svc.PlaceOrder(context.Background(), testUser(), &PlaceOrderInput{
		Items:           []CartItem{{CandleID: 1, Quantity: 10}},
		ShippingAddress: testAddress(),
	})

	require.Error(t, err)
	require.Nil(t, order)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Lavender", stockErr.Title)
	assert.Equal(t, int64(5), stockErr.Available)

	assert.Empty(t, f.orders.created)
	assert.Zero(t, f.candles.decrements)
	assert.Equal(t, int64(5), *f.candles.candles[1].Stock)
	assert.True(t, f.tx.rolledBack)
	assert.Empty(t, f.notifier.notified)
}

func TestPlaceOrder_ConcurrentStockConflict(t *testing.T) {
	f := newOrderServiceFixture(
		&domain.Candle{ID: 1, Title: "Lavender", Price: 500, Stock: stockOf(5), Active: true},
	)
	// The read sees enough stock but the decrement loses the race.
	f.candles.failDecrease[1] = true

	order, err := f.svc.PlaceOrder(context.Background(), testUser(), &PlaceOrderInput{
		Items:           []CartItem{{CandleID: 1, Quantity: 2}},
		ShippingAddress: testAddress(),
	})

	require.Error(t, err)
	require.Nil(t, order)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	assert.False(t, f.tx.committed)
	assert.True(t, f.tx.rolledBack)
	assert.Empty(t, f.notifier.notified)
}

func TestGetOwnedOrder(t *testing.T) {
	f := newOrderServiceFixture(
		&domain.Candle{ID: 1, Title: "Lavender", Price: 500, Stock: stockOf(5), Active: true},
	)

	placed, err := f.svc.PlaceOrder(context.Background(), testUser(), &PlaceOrderInput{
		Items:           []CartItem{{CandleID: 1, Quantity: 1}},
		ShippingAddress: testAddress(),
	})
	require.NoError(t, err)

	got, err := f.svc.GetOwnedOrder(context.Background(), placed.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, got.ID)

	_, err = f.svc.GetOwnedOrder(context.Background(), placed.ID, 99)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetOwnedOrder(context.Background(), 404, 7)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestListAll_Pagination(t *testing.T) {
	f := newOrderServiceFixture(
		&domain.Candle{ID: 1, Title: "Lavender", Price: 500, Stock: nil, Active: true},
	)

	for range 3 {
		_, err := f.svc.PlaceOrder(context.Background(), testUser(), &PlaceOrderInput{
			Items:           []CartItem{{CandleID: 1, Quantity: 1}},
			ShippingAddress: testAddress(),
		})
		require.NoError(t, err)
		f.tx.committed = false
	}

	orders, pagination, err := f.svc.ListAll(context.Background(), "", 1, 2)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, int64(3), pagination.Total)
	assert.Equal(t, int64(1), pagination.Page)
	assert.Equal(t, int64(2), pagination.Pages)

	// Out-of-range values fall back to defaults.
	_, pagination, err = f.svc.ListAll(context.Background(), "", 0, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pagination.Page)
	assert.Equal(t, int64(1), pagination.Pages)

	_, _, err = f.svc.ListAll(context.Background(), "bogus", 1, 10)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus(t *testing.T) {
	f := newOrderServiceFixture(
		&domain.Candle{ID: 1, Title: "Lavender", Price: 500, Stock: nil, Active: true},
	)

	placed, err := f.svc.PlaceOrder(context.Background(), testUser(), &PlaceOrderInput{
		Items:           []CartItem{{CandleID: 1, Quantity: 1}},
		ShippingAddress: testAddress(),
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), placed.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)

	_, err = f.svc.UpdateStatus(context.Background(), placed.ID, "teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(context.Background(), 404, "shipped")
	assert.True(t, errors.Is(err, repository.ErrOrderNotFound))
}
