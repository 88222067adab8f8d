package state

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/model"
)

type persistCall struct {
	kind string
	doc  json.RawMessage
}

type stubPersister struct {
	calls []persistCall
	err   error
}

func (s *stubPersister) EnqueuePersist(_ context.Context, _ uuid.UUID, kind string, doc json.RawMessage) error {
	s.calls = append(s.calls, persistCall{kind: kind, doc: doc})
	return s.err
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestStore(p Persister) *Store {
	inv := model.Inventory{
		Espresso: []model.Product{{ID: "e1", Name: "Latte", Stock: dec("1.0"), Price: dec("4.50"), UsagePerCup: dec("0.018")}},
		Beans:    []model.Product{{ID: "b1", Name: "House", Stock: dec("5.0"), Price: dec("12"), Grams: 250}},
	}
	return NewStore(uuid.New(), inv, nil, p, nil)
}

func TestMutateCommitsAndPersists(t *testing.T) {
	p := &stubPersister{}
	st := newTestStore(p)

	err := st.Mutate(context.Background(), func(m *Mutation) error {
		inv := m.Inventory()
		_, prod := inv.FindProduct("e1")
		prod.Stock = dec("0.5")
		m.SetInventory(inv)
		return nil
	})
	require.NoError(t, err)

	inv := st.Inventory()
	_, prod := inv.FindProduct("e1")
	assert.True(t, prod.Stock.Equal(dec("0.5")))

	require.Len(t, p.calls, 1)
	assert.Equal(t, model.DocKindInventory, p.calls[0].kind)
}

func TestMutateErrorRollsBackEverything(t *testing.T) {
	p := &stubPersister{}
	st := newTestStore(p)
	before := st.Inventory()

	err := st.Mutate(context.Background(), func(m *Mutation) error {
		inv := m.Inventory()
		_, prod := inv.FindProduct("e1")
		prod.Stock = decimal.Zero
		m.SetInventory(inv)
		m.SetOrders([]model.Order{{ID: "o1"}})
		return errors.New("boom")
	})
	require.Error(t, err)

	assert.Equal(t, before, st.Inventory(), "inventory untouched after failed mutation")
	assert.Empty(t, st.Orders())
	assert.Empty(t, p.calls, "nothing enqueued on abort")
}

func TestMutateNormalizesOnCommit(t *testing.T) {
	p := &stubPersister{}
	st := newTestStore(p)

	err := st.Mutate(context.Background(), func(m *Mutation) error {
		inv := m.Inventory()
		inv.Beans = append(inv.Beans, model.Product{ID: "b2", Name: "house", Stock: dec("2"), Grams: 250})
		m.SetInventory(inv)
		return nil
	})
	require.NoError(t, err)

	inv := st.Inventory()
	require.Len(t, inv.Beans, 1, "duplicate folded on commit")
	assert.True(t, inv.Beans[0].Stock.Equal(dec("2")), "lower-stock copy survives")
}

func TestMutatePersistFailureDoesNotFailCommit(t *testing.T) {
	p := &stubPersister{err: errors.New("queue down")}
	st := newTestStore(p)

	err := st.Mutate(context.Background(), func(m *Mutation) error {
		m.SetOrders([]model.Order{{ID: "o1"}})
		return nil
	})
	require.NoError(t, err, "local commit wins even when the queue is down")
	assert.Len(t, st.Orders(), 1)
}

func TestMutateOnlyPersistsTouchedKinds(t *testing.T) {
	p := &stubPersister{}
	st := newTestStore(p)

	err := st.Mutate(context.Background(), func(m *Mutation) error {
		m.SetOrders([]model.Order{{ID: "o1"}})
		return nil
	})
	require.NoError(t, err)

	require.Len(t, p.calls, 1)
	assert.Equal(t, model.DocKindOrders, p.calls[0].kind)
}

func TestApplyRemoteDoesNotPersist(t *testing.T) {
	p := &stubPersister{}
	st := newTestStore(p)

	st.ApplyRemoteInventory(model.Inventory{
		Espresso: []model.Product{{ID: "e9", Name: "Flat White", Stock: dec("2")}},
	})
	st.ApplyRemoteOrders([]model.Order{{ID: "remote-1"}})

	assert.Empty(t, p.calls, "remote applies must never echo back")

	inv := st.Inventory()
	require.Len(t, inv.Espresso, 1)
	assert.Equal(t, "e9", inv.Espresso[0].ID)
	assert.Len(t, st.Orders(), 1)
}

func TestApplyRemoteInventoryNormalizes(t *testing.T) {
	st := newTestStore(&stubPersister{})

	st.ApplyRemoteInventory(model.Inventory{
		Beans: []model.Product{
			{ID: "a", Name: "House", Stock: dec("5"), Grams: 250},
			{ID: "b", Name: "House", Stock: dec("-1"), Grams: 250},
		},
	})

	inv := st.Inventory()
	require.Len(t, inv.Beans, 1)
	assert.True(t, inv.Beans[0].Stock.IsZero(), "negative clamped then kept as lower")
}

func TestSnapshotsAreCopies(t *testing.T) {
	st := newTestStore(&stubPersister{})

	inv := st.Inventory()
	inv.Espresso[0].Stock = dec("999")

	fresh := st.Inventory()
	assert.False(t, fresh.Espresso[0].Stock.Equal(dec("999")), "caller mutations stay local")
}
