// Package state holds the canonical in-memory inventory and orders for each
// organization during a server session. Local mutations are applied
// synchronously and are immediately visible to subsequent reads; persistence
// to the remote document store is asynchronous and fire-and-forget, so the
// local copy can briefly run ahead of the remote one.
package state

import (
	"context"
	"encoding/json"
	"sync"

	"brewpos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Persister enqueues a document write without blocking the mutator.
// Implemented by the worker dispatcher.
type Persister interface {
	EnqueuePersist(ctx context.Context, orgID uuid.UUID, kind string, doc json.RawMessage) error
}

// Store is the single mutation entry point for one organization's state.
// Every committed inventory transition has passed through Normalize, so
// consumers never observe duplicate products, whatever the mutation logic did.
type Store struct {
	mu       sync.RWMutex
	orgID    uuid.UUID
	inv      model.Inventory
	orders   []model.Order
	persist  Persister
	tieBreak model.TieBreak
}

// NewStore builds a store seeded with the loaded documents. The seed inventory
// is normalized on the way in.
func NewStore(orgID uuid.UUID, inv model.Inventory, orders []model.Order, persist Persister, tieBreak model.TieBreak) *Store {
	if orders == nil {
		orders = []model.Order{}
	}
	return &Store{
		orgID:    orgID,
		inv:      inv.Normalize(tieBreak),
		orders:   orders,
		persist:  persist,
		tieBreak: tieBreak,
	}
}

func (s *Store) OrgID() uuid.UUID { return s.orgID }

// Inventory returns a copy of the current inventory.
func (s *Store) Inventory() model.Inventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyInventory(s.inv)
}

// Orders returns a copy of the current orders in document order.
func (s *Store) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Mutation is the working copy handed to a Mutate closure. The closure edits
// it freely; nothing is committed until it returns nil.
type Mutation struct {
	inv           model.Inventory
	orders        []model.Order
	invTouched    bool
	ordersTouched bool
}

// Inventory returns the working inventory.
func (m *Mutation) Inventory() model.Inventory { return m.inv }

// Orders returns the working orders slice.
func (m *Mutation) Orders() []model.Order { return m.orders }

// SetInventory replaces the working inventory with a direct value.
func (m *Mutation) SetInventory(inv model.Inventory) {
	m.inv = inv
	m.invTouched = true
}

// UpdateInventory replaces the working inventory with a function of the
// previous value.
func (m *Mutation) UpdateInventory(fn func(model.Inventory) model.Inventory) {
	m.inv = fn(m.inv)
	m.invTouched = true
}

// SetOrders replaces the working orders collection.
func (m *Mutation) SetOrders(orders []model.Order) {
	if orders == nil {
		orders = []model.Order{}
	}
	m.orders = orders
	m.ordersTouched = true
}

// Mutate runs fn with exclusive access to both collections. When fn returns
// an error nothing is committed, the all-or-nothing guarantee checkout relies
// on. On success the inventory (if touched) is threaded through Normalize
// before committing, and persistence jobs are enqueued for whatever fn
// touched. Enqueue failures are logged, never returned: local state is the
// source of truth for the session and the next natural write retries the sync.
func (s *Store) Mutate(ctx context.Context, fn func(*Mutation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := &Mutation{inv: copyInventory(s.inv), orders: append([]model.Order{}, s.orders...)}
	if err := fn(m); err != nil {
		return err
	}

	if m.invTouched {
		s.inv = m.inv.Normalize(s.tieBreak)
	}
	if m.ordersTouched {
		s.orders = m.orders
	}

	if m.invTouched {
		s.enqueuePersist(ctx, model.DocKindInventory, s.inv)
	}
	if m.ordersTouched {
		s.enqueuePersist(ctx, model.DocKindOrders, s.orders)
	}
	return nil
}

// SetInventory is the convenience form of Mutate for inventory-only changes.
func (s *Store) SetInventory(ctx context.Context, fn func(model.Inventory) model.Inventory) {
	_ = s.Mutate(ctx, func(m *Mutation) error {
		m.UpdateInventory(fn)
		return nil
	})
}

// ApplyRemoteInventory replaces local inventory with a normalized incoming
// value from the realtime stream. Last-writer-wins: a local write racing with
// this notification is clobbered. No persistence is triggered, echoing the
// document back would ping-pong between instances.
func (s *Store) ApplyRemoteInventory(inv model.Inventory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inv = inv.Normalize(s.tieBreak)
}

// ApplyRemoteOrders replaces local orders with the incoming array.
func (s *Store) ApplyRemoteOrders(orders []model.Order) {
	if orders == nil {
		orders = []model.Order{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
}

func (s *Store) enqueuePersist(ctx context.Context, kind string, doc interface{}) {
	if s.persist == nil {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		log.Error().Err(err).Str("org_id", s.orgID.String()).Str("kind", kind).
			Msg("state: marshal for persist failed")
		return
	}
	if err := s.persist.EnqueuePersist(ctx, s.orgID, kind, data); err != nil {
		log.Error().Err(err).Str("org_id", s.orgID.String()).Str("kind", kind).
			Msg("state: persist enqueue failed, local state stays ahead of remote")
	}
}

func copyInventory(inv model.Inventory) model.Inventory {
	return model.Inventory{
		Espresso:     append([]model.Product{}, inv.Espresso...),
		SingleOrigin: append([]model.Product{}, inv.SingleOrigin...),
		Beans:        append([]model.Product{}, inv.Beans...),
	}
}
