package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/apierror"
	"brewpos/internal/dto"
	"brewpos/internal/model"
	"brewpos/internal/repository"
	"brewpos/internal/state"
	"brewpos/internal/worker"
)

// ---- stubs ----------------------------------------------------------------

type stubDocRepo struct {
	docs map[string][]byte
}

func (s *stubDocRepo) key(orgID uuid.UUID, kind string) string { return orgID.String() + "/" + kind }

func (s *stubDocRepo) Get(_ context.Context, orgID uuid.UUID, kind string) ([]byte, error) {
	data, ok := s.docs[s.key(orgID, kind)]
	if !ok {
		return nil, repository.ErrDocumentMissing
	}
	return data, nil
}

func (s *stubDocRepo) Put(_ context.Context, orgID uuid.UUID, kind string, data []byte) error {
	s.docs[s.key(orgID, kind)] = data
	return nil
}

type nopCache struct{}

func (nopCache) Get(context.Context, uuid.UUID, string) ([]byte, error)    { return nil, nil }
func (nopCache) Set(context.Context, uuid.UUID, string, []byte) error      { return nil }

type nopPersister struct{}

func (nopPersister) EnqueuePersist(context.Context, uuid.UUID, string, json.RawMessage) error {
	return nil
}

type stubReceiptQueue struct {
	jobs []worker.ReceiptJobPayload
}

func (s *stubReceiptQueue) EnqueueReceipt(_ context.Context, payload interface{}) error {
	if job, ok := payload.(worker.ReceiptJobPayload); ok {
		s.jobs = append(s.jobs, job)
	}
	return nil
}

type stubMovements struct {
	created []model.StockMovement
	err     error
}

func (s *stubMovements) Create(_ context.Context, m *model.StockMovement) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *m)
	return nil
}

func (s *stubMovements) ListByOrg(context.Context, uuid.UUID, int, int) ([]model.StockMovement, int64, error) {
	return s.created, int64(len(s.created)), nil
}

// ---- fixture --------------------------------------------------------------

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedInventory() []byte {
	inv := model.Inventory{
		Espresso: []model.Product{
			{ID: "latte", Name: "Latte", Stock: dec("0.10"), Price: dec("4.50"), UsagePerCup: dec("0.018")},
		},
		SingleOrigin: []model.Product{
			{ID: "kenya", Name: "Kenya AA", Stock: dec("0.05"), Price: dec("6.00"), UsagePerCup: dec("0.020")},
		},
		Beans: []model.Product{
			{ID: "house250", Name: "House Blend", Stock: dec("1.00"), Price: dec("12.00"), Grams: 250},
		},
	}
	data, _ := json.Marshal(inv)
	return data
}

type fixture struct {
	svc      *OrderService
	org      uuid.UUID
	queue    *stubReceiptQueue
	moves    *stubMovements
	manager  *state.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	org := uuid.New()
	repo := &stubDocRepo{docs: map[string][]byte{}}
	require.NoError(t, repo.Put(context.Background(), org, model.DocKindInventory, seedInventory()))

	manager := state.NewManager(repo, nopCache{}, nopPersister{}, nil)
	queue := &stubReceiptQueue{}
	moves := &stubMovements{}
	return &fixture{
		svc:     NewOrderService(manager, moves, queue),
		org:     org,
		queue:   queue,
		moves:   moves,
		manager: manager,
	}
}

func (f *fixture) inventory(t *testing.T) model.Inventory {
	t.Helper()
	st, err := f.manager.Acquire(context.Background(), f.org)
	require.NoError(t, err)
	return st.Inventory()
}

// ---- checkout -------------------------------------------------------------

func TestCheckoutDeductsAndEnqueues(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
		Items: []dto.CheckoutItem{
			{ProductID: "latte", Quantity: 2},
			{ProductID: "house250", Quantity: 1},
		},
		Payment: model.PaymentCash,
		Channel: model.ChannelInStore,
	})
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	assert.True(t, order.Total.Equal(dec("21.00")), "2×4.50 + 12.00, got %s", order.Total)

	inv := f.inventory(t)
	_, latte := inv.FindProduct("latte")
	assert.True(t, latte.Stock.Equal(dec("0.064")), "0.10 - 2×0.018")
	_, beans := inv.FindProduct("house250")
	assert.True(t, beans.Stock.Equal(dec("0.75")), "1.00 - 250g")

	require.Len(t, f.queue.jobs, 1, "receipt job enqueued")
	assert.Equal(t, order.ID, f.queue.jobs[0].Order.ID)
}

func TestCheckoutAllOrNothing(t *testing.T) {
	f := newFixture(t)

	// latte line is fine, kenya line exceeds stock: nothing must change
	_, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
		Items: []dto.CheckoutItem{
			{ProductID: "latte", Quantity: 1},
			{ProductID: "kenya", Quantity: 3}, // needs 0.060, has 0.050
		},
		Payment: model.PaymentCash,
		Channel: model.ChannelInStore,
	})

	var stockErr *apierror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortfalls, 1)
	assert.Equal(t, "kenya", stockErr.Shortfalls[0].ProductID)
	assert.True(t, stockErr.Shortfalls[0].Required.Equal(dec("0.060")))
	assert.True(t, stockErr.Shortfalls[0].Available.Equal(dec("0.05")))

	inv := f.inventory(t)
	_, latte := inv.FindProduct("latte")
	assert.True(t, latte.Stock.Equal(dec("0.10")), "passing line not deducted either")
	assert.Empty(t, f.queue.jobs)
}

func TestCheckoutReportsEveryShortfall(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
		Items: []dto.CheckoutItem{
			{ProductID: "latte", Quantity: 100},
			{ProductID: "kenya", Quantity: 100},
		},
		Payment: model.PaymentCash,
		Channel: model.ChannelInStore,
	})

	var stockErr *apierror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Len(t, stockErr.Shortfalls, 2, "all failing lines reported, not just the first")
}

func TestCheckoutAggregatesRepeatedProduct(t *testing.T) {
	f := newFixture(t)

	// two lines of the same product: 3 + 3 cups need 0.108, stock is 0.10
	_, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
		Items: []dto.CheckoutItem{
			{ProductID: "latte", Quantity: 3},
			{ProductID: "latte", Quantity: 3},
		},
		Payment: model.PaymentCash,
		Channel: model.ChannelInStore,
	})

	var stockErr *apierror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortfalls, 1)
	assert.True(t, stockErr.Shortfalls[0].Required.Equal(dec("0.108")))
}

func TestCheckoutUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
		Items:   []dto.CheckoutItem{{ProductID: "ghost", Quantity: 1}},
		Payment: model.PaymentCash,
		Channel: model.ChannelInStore,
	})

	var notFound *apierror.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "product", notFound.Kind)
}

func TestCheckoutSuppliedTotalWins(t *testing.T) {
	f := newFixture(t)

	total := dec("3.99")
	order, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
		Items:   []dto.CheckoutItem{{ProductID: "latte", Quantity: 1}},
		Payment: model.PaymentDebit,
		Channel: model.ChannelInStore,
		Total:   &total,
	})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(dec("3.99")))
}

func TestCheckoutNonPositiveSuppliedTotalIgnored(t *testing.T) {
	f := newFixture(t)

	for _, supplied := range []string{"0", "-5.00"} {
		total := dec(supplied)
		order, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
			Items:   []dto.CheckoutItem{{ProductID: "latte", Quantity: 1}},
			Payment: model.PaymentCash,
			Channel: model.ChannelInStore,
			Total:   &total,
		})
		require.NoError(t, err)
		assert.True(t, order.Total.Equal(dec("4.50")), "supplied %s, got %s", supplied, order.Total)
	}
}

func TestCheckoutPrependsNewestFirst(t *testing.T) {
	f := newFixture(t)
	first := checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})
	second := checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})

	st, err := f.manager.Acquire(context.Background(), f.org)
	require.NoError(t, err)
	docOrders := st.Orders()
	require.Len(t, docOrders, 2)
	assert.Equal(t, second.ID, docOrders[0].ID, "newest order leads the document")
	assert.Equal(t, first.ID, docOrders[1].ID)
}

func TestCheckoutDeliveryRequiresAddress(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
		Items:   []dto.CheckoutItem{{ProductID: "latte", Quantity: 1}},
		Payment: model.PaymentCash,
		Channel: model.ChannelDelivery,
	})

	var validErr *apierror.ValidationError
	require.ErrorAs(t, err, &validErr)
}

func TestCheckoutWritesSaleMovements(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
		Items:   []dto.CheckoutItem{{ProductID: "house250", Quantity: 2}},
		Payment: model.PaymentCash,
		Channel: model.ChannelInStore,
	})
	require.NoError(t, err)

	require.Len(t, f.moves.created, 1)
	mv := f.moves.created[0]
	assert.Equal(t, "sale", mv.Type)
	assert.True(t, mv.DeltaKg.Equal(dec("-0.5")), "deltas are negative for sales")
	require.NotNil(t, mv.OrderID)
	assert.Equal(t, order.ID, *mv.OrderID)
}

func TestCheckoutMovementFailureDoesNotBlockSale(t *testing.T) {
	f := newFixture(t)
	f.moves.err = errors.New("audit table down")

	_, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
		Items:   []dto.CheckoutItem{{ProductID: "latte", Quantity: 1}},
		Payment: model.PaymentCash,
		Channel: model.ChannelInStore,
	})
	assert.NoError(t, err)
}

// ---- void -----------------------------------------------------------------

func checkout(t *testing.T, f *fixture, items ...dto.CheckoutItem) *model.Order {
	t.Helper()
	order, err := f.svc.Checkout(context.Background(), f.org, &dto.CheckoutRequest{
		Items:   items,
		Payment: model.PaymentCash,
		Channel: model.ChannelInStore,
	})
	require.NoError(t, err)
	return order
}

func TestVoidRestocks(t *testing.T) {
	f := newFixture(t)
	order := checkout(t, f, dto.CheckoutItem{ProductID: "house250", Quantity: 2})

	voided, err := f.svc.Void(context.Background(), f.org, order.ID, &dto.VoidRequest{Reason: "customer changed mind"})
	require.NoError(t, err)
	assert.True(t, voided.Voided)
	assert.Equal(t, "customer changed mind", voided.VoidReason)
	require.NotNil(t, voided.VoidedAt)

	inv := f.inventory(t)
	_, beans := inv.FindProduct("house250")
	assert.True(t, beans.Stock.Equal(dec("1.00")), "stock returned")
}

func TestVoidWithoutRestock(t *testing.T) {
	f := newFixture(t)
	order := checkout(t, f, dto.CheckoutItem{ProductID: "house250", Quantity: 1})

	restock := false
	_, err := f.svc.Void(context.Background(), f.org, order.ID, &dto.VoidRequest{Restock: &restock})
	require.NoError(t, err)

	inv := f.inventory(t)
	_, beans := inv.FindProduct("house250")
	assert.True(t, beans.Stock.Equal(dec("0.75")), "stock stays deducted")
}

func TestVoidTwiceIsNoOp(t *testing.T) {
	f := newFixture(t)
	order := checkout(t, f, dto.CheckoutItem{ProductID: "house250", Quantity: 1})

	_, err := f.svc.Void(context.Background(), f.org, order.ID, &dto.VoidRequest{})
	require.NoError(t, err)
	again, err := f.svc.Void(context.Background(), f.org, order.ID, &dto.VoidRequest{})
	require.NoError(t, err)
	assert.True(t, again.Voided)

	inv := f.inventory(t)
	_, beans := inv.FindProduct("house250")
	assert.True(t, beans.Stock.Equal(dec("1.00")), "no double restock")
}

func TestVoidUnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Void(context.Background(), f.org, "missing", &dto.VoidRequest{})
	var notFound *apierror.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "order", notFound.Kind)
}

func TestVoidSkipsDeletedProducts(t *testing.T) {
	f := newFixture(t)
	order := checkout(t, f, dto.CheckoutItem{ProductID: "house250", Quantity: 1})

	// delete the product before voiding
	st, err := f.manager.Acquire(context.Background(), f.org)
	require.NoError(t, err)
	require.NoError(t, st.Mutate(context.Background(), func(m *state.Mutation) error {
		inv := m.Inventory()
		inv.Beans = nil
		m.SetInventory(inv)
		return nil
	}))

	voided, err := f.svc.Void(context.Background(), f.org, order.ID, &dto.VoidRequest{})
	require.NoError(t, err, "void still succeeds, the orphan line is skipped")
	assert.True(t, voided.Voided)
}

// ---- restore --------------------------------------------------------------

func TestRestoreReappliesDeductions(t *testing.T) {
	f := newFixture(t)
	order := checkout(t, f, dto.CheckoutItem{ProductID: "house250", Quantity: 2})
	_, err := f.svc.Void(context.Background(), f.org, order.ID, &dto.VoidRequest{})
	require.NoError(t, err)

	restored, err := f.svc.Restore(context.Background(), f.org, order.ID)
	require.NoError(t, err)
	assert.False(t, restored.Voided)
	assert.Nil(t, restored.VoidedAt)

	inv := f.inventory(t)
	_, beans := inv.FindProduct("house250")
	assert.True(t, beans.Stock.Equal(dec("0.5")), "deduction applied again")
}

func TestRestoreRefusedWhenStockGone(t *testing.T) {
	f := newFixture(t)
	order := checkout(t, f, dto.CheckoutItem{ProductID: "house250", Quantity: 2})
	_, err := f.svc.Void(context.Background(), f.org, order.ID, &dto.VoidRequest{})
	require.NoError(t, err)

	// drain the stock another way
	checkout(t, f, dto.CheckoutItem{ProductID: "house250", Quantity: 3})

	_, err = f.svc.Restore(context.Background(), f.org, order.ID)
	var stockErr *apierror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
}

func TestRestoreAggregatesRepeatedLines(t *testing.T) {
	f := newFixture(t)
	// Two separate cart lines of the same beans: 0.25 kg each, 0.5 kg total.
	order := checkout(t, f,
		dto.CheckoutItem{ProductID: "house250", Quantity: 1},
		dto.CheckoutItem{ProductID: "house250", Quantity: 1},
	)
	require.Len(t, order.Lines, 2)
	_, err := f.svc.Void(context.Background(), f.org, order.ID, &dto.VoidRequest{})
	require.NoError(t, err)

	// Leave only 0.25 kg on hand: enough for either line alone, not both.
	checkout(t, f, dto.CheckoutItem{ProductID: "house250", Quantity: 3})

	_, err = f.svc.Restore(context.Background(), f.org, order.ID)
	var stockErr *apierror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortfalls, 1)
	assert.True(t, stockErr.Shortfalls[0].Required.Equal(dec("0.5")))
	assert.True(t, stockErr.Shortfalls[0].Available.Equal(dec("0.25")))

	inv := f.inventory(t)
	_, beans := inv.FindProduct("house250")
	assert.True(t, beans.Stock.Equal(dec("0.25")), "refused restore leaves stock untouched")
}

// ---- list/get -------------------------------------------------------------

func TestListNewestFirst(t *testing.T) {
	f := newFixture(t)
	first := checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})
	second := checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})

	orders, err := f.svc.List(context.Background(), f.org, nil)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestListFiltersVoided(t *testing.T) {
	f := newFixture(t)
	kept := checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})
	voided := checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})
	_, err := f.svc.Void(context.Background(), f.org, voided.ID, &dto.VoidRequest{})
	require.NoError(t, err)

	active, err := f.svc.List(context.Background(), f.org, &dto.OrderReportFilter{Status: "active"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, kept.ID, active[0].ID)

	gone, err := f.svc.List(context.Background(), f.org, &dto.OrderReportFilter{Status: "voided"})
	require.NoError(t, err)
	require.Len(t, gone, 1)
	assert.Equal(t, voided.ID, gone[0].ID)
}

func TestListRejectsBadDateFilter(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.List(context.Background(), f.org, &dto.OrderReportFilter{From: "yesterday"})
	var vErr *apierror.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t)
	order := checkout(t, f, dto.CheckoutItem{ProductID: "latte", Quantity: 1})

	got, err := f.svc.Get(context.Background(), f.org, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.Get(context.Background(), f.org, "nope")
	var notFound *apierror.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
