package state

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"brewpos/internal/apierror"
	"brewpos/internal/model"
	"brewpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DocCache is the fallback read path when the primary store is missing a
// document. Implemented by infra.DocCache; Get returns (nil, nil) on a miss.
type DocCache interface {
	Get(ctx context.Context, orgID uuid.UUID, kind string) ([]byte, error)
	Set(ctx context.Context, orgID uuid.UUID, kind string, data []byte) error
}

// Subscriber attaches a realtime listener to a freshly loaded store. The
// listener must stop when ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, orgID uuid.UUID, st *Store)
}

type entry struct {
	store  *Store
	cancel context.CancelFunc
}

// Manager owns the per-organization store lifecycle: load-then-subscribe on
// first use, teardown on release/shutdown. It replaces the ambient module
// globals of older POS clients with an explicit object whose lifetime is the
// server process.
type Manager struct {
	mu         sync.Mutex
	stores     map[uuid.UUID]*entry
	docs       repository.StateDocRepository
	cache      DocCache
	persist    Persister
	subscriber Subscriber
	tieBreak   model.TieBreak
}

func NewManager(docs repository.StateDocRepository, cache DocCache, persist Persister, subscriber Subscriber) *Manager {
	return &Manager{
		stores:     make(map[uuid.UUID]*entry),
		docs:       docs,
		cache:      cache,
		persist:    persist,
		subscriber: subscriber,
		tieBreak:   model.KeepLowerStock,
	}
}

// Acquire returns the store for org, loading documents and starting the
// realtime listener on first use. Subsequent calls return the same store.
func (m *Manager) Acquire(ctx context.Context, orgID uuid.UUID) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.stores[orgID]; ok {
		return e.store, nil
	}

	invData, err := m.loadDocument(ctx, orgID, model.DocKindInventory)
	if err != nil {
		return nil, err
	}
	ordersData, err := m.loadDocument(ctx, orgID, model.DocKindOrders)
	if err != nil {
		return nil, err
	}

	var inv model.Inventory
	if len(invData) > 0 {
		if err := json.Unmarshal(invData, &inv); err != nil {
			log.Warn().Err(err).Str("org_id", orgID.String()).
				Msg("state: malformed inventory document, starting from empty")
			inv = model.Inventory{}
		}
	}
	var orders []model.Order
	if len(ordersData) > 0 {
		if err := json.Unmarshal(ordersData, &orders); err != nil {
			log.Warn().Err(err).Str("org_id", orgID.String()).
				Msg("state: malformed orders document, starting from empty")
			orders = []model.Order{}
		}
	}

	st := NewStore(orgID, inv, orders, m.persist, m.tieBreak)

	// Listener lifetime is bound to the manager, not to the acquiring request.
	listenCtx, cancel := context.WithCancel(context.Background())
	if m.subscriber != nil {
		m.subscriber.Subscribe(listenCtx, orgID, st)
	}

	m.stores[orgID] = &entry{store: st, cancel: cancel}
	return st, nil
}

// loadDocument reads one document, falling back to the cached copy (or an
// empty default) when the primary store has none, and eagerly writing the
// fallback back to self-heal the missing document. A hard read failure, as
// opposed to a clean "absent", aborts the load.
func (m *Manager) loadDocument(ctx context.Context, orgID uuid.UUID, kind string) ([]byte, error) {
	data, err := m.docs.Get(ctx, orgID, kind)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, repository.ErrDocumentMissing) {
		return nil, &apierror.PersistenceError{Op: "load", Err: err}
	}

	if m.cache != nil {
		cached, cerr := m.cache.Get(ctx, orgID, kind)
		if cerr != nil {
			log.Warn().Err(cerr).Str("org_id", orgID.String()).Str("kind", kind).
				Msg("state: cache fallback read failed")
		} else if cached != nil {
			log.Info().Str("org_id", orgID.String()).Str("kind", kind).
				Msg("state: remote document missing, restored from cache")
			m.selfHeal(ctx, orgID, kind, cached)
			return cached, nil
		}
	}

	fallback := emptyDocument(kind)
	m.selfHeal(ctx, orgID, kind, fallback)
	return fallback, nil
}

// selfHeal writes a fallback document back to the primary store, best-effort.
func (m *Manager) selfHeal(ctx context.Context, orgID uuid.UUID, kind string, data []byte) {
	if err := m.docs.Put(ctx, orgID, kind, data); err != nil {
		log.Error().Err(err).Str("org_id", orgID.String()).Str("kind", kind).
			Msg("state: self-heal write failed")
	}
}

func emptyDocument(kind string) []byte {
	if kind == model.DocKindOrders {
		return []byte("[]")
	}
	data, _ := json.Marshal(model.Inventory{}.Normalize(nil))
	return data
}

// Release tears one organization's store down, stopping its listener.
func (m *Manager) Release(orgID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.stores[orgID]; ok {
		e.cancel()
		delete(m.stores, orgID)
	}
}

// Close stops every listener. Called from main on shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for org, e := range m.stores {
		e.cancel()
		delete(m.stores, org)
	}
}
