package state

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/model"
	"brewpos/internal/repository"
)

type docKey struct {
	org  uuid.UUID
	kind string
}

type stubDocRepo struct {
	docs    map[docKey][]byte
	getErr  error
	puts    []docKey
	putData map[docKey][]byte
}

func newStubDocRepo() *stubDocRepo {
	return &stubDocRepo{docs: map[docKey][]byte{}, putData: map[docKey][]byte{}}
}

func (s *stubDocRepo) Get(_ context.Context, orgID uuid.UUID, kind string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.docs[docKey{orgID, kind}]
	if !ok {
		return nil, repository.ErrDocumentMissing
	}
	return data, nil
}

func (s *stubDocRepo) Put(_ context.Context, orgID uuid.UUID, kind string, data []byte) error {
	key := docKey{orgID, kind}
	s.puts = append(s.puts, key)
	s.putData[key] = data
	return nil
}

type stubCache struct {
	docs map[docKey][]byte
	sets []docKey
}

func newStubCache() *stubCache { return &stubCache{docs: map[docKey][]byte{}} }

func (s *stubCache) Get(_ context.Context, orgID uuid.UUID, kind string) ([]byte, error) {
	return s.docs[docKey{orgID, kind}], nil
}

func (s *stubCache) Set(_ context.Context, orgID uuid.UUID, kind string, data []byte) error {
	key := docKey{orgID, kind}
	s.sets = append(s.sets, key)
	s.docs[key] = data
	return nil
}

type stubSubscriber struct {
	subscribed []uuid.UUID
}

func (s *stubSubscriber) Subscribe(_ context.Context, orgID uuid.UUID, _ *Store) {
	s.subscribed = append(s.subscribed, orgID)
}

func TestAcquireLoadsDocumentsAndSubscribes(t *testing.T) {
	org := uuid.New()
	repo := newStubDocRepo()
	repo.docs[docKey{org, model.DocKindInventory}] = []byte(`{"espresso":[{"id":"e1","name":"Latte","stock":"2"}],"singleOrigin":[],"beans":[]}`)
	repo.docs[docKey{org, model.DocKindOrders}] = []byte(`[{"id":"o1","lines":[],"total":"4.5","payment":"cash","channel":"instore"}]`)
	sub := &stubSubscriber{}

	m := NewManager(repo, newStubCache(), &stubPersister{}, sub)
	st, err := m.Acquire(context.Background(), org)
	require.NoError(t, err)

	inv := st.Inventory()
	require.Len(t, inv.Espresso, 1)
	assert.Len(t, st.Orders(), 1)
	assert.Equal(t, []uuid.UUID{org}, sub.subscribed)
}

func TestAcquireReturnsSameStore(t *testing.T) {
	org := uuid.New()
	sub := &stubSubscriber{}
	m := NewManager(newStubDocRepo(), newStubCache(), &stubPersister{}, sub)

	first, err := m.Acquire(context.Background(), org)
	require.NoError(t, err)
	second, err := m.Acquire(context.Background(), org)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, sub.subscribed, 1, "subscribed once, not per acquire")
}

func TestAcquireFallsBackToCacheAndSelfHeals(t *testing.T) {
	org := uuid.New()
	repo := newStubDocRepo() // both documents missing
	cache := newStubCache()
	cache.docs[docKey{org, model.DocKindInventory}] = []byte(`{"espresso":[{"id":"e1","name":"Latte","stock":"3"}],"singleOrigin":[],"beans":[]}`)

	m := NewManager(repo, cache, &stubPersister{}, &stubSubscriber{})
	st, err := m.Acquire(context.Background(), org)
	require.NoError(t, err)

	inv := st.Inventory()
	require.Len(t, inv.Espresso, 1, "cached inventory restored")

	// both documents were written back: inventory from cache, orders as empty
	assert.Contains(t, repo.puts, docKey{org, model.DocKindInventory})
	assert.Contains(t, repo.puts, docKey{org, model.DocKindOrders})
	assert.Equal(t, []byte("[]"), repo.putData[docKey{org, model.DocKindOrders}])
}

func TestAcquireHardReadFailureAborts(t *testing.T) {
	repo := newStubDocRepo()
	repo.getErr = errors.New("connection refused")

	m := NewManager(repo, newStubCache(), &stubPersister{}, &stubSubscriber{})
	_, err := m.Acquire(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestAcquireMalformedDocumentStartsEmpty(t *testing.T) {
	org := uuid.New()
	repo := newStubDocRepo()
	repo.docs[docKey{org, model.DocKindInventory}] = []byte(`{not json`)
	repo.docs[docKey{org, model.DocKindOrders}] = []byte(`"also wrong"`)

	m := NewManager(repo, newStubCache(), &stubPersister{}, &stubSubscriber{})
	st, err := m.Acquire(context.Background(), org)
	require.NoError(t, err)

	inv := st.Inventory()
	assert.Empty(t, inv.Espresso)
	assert.Empty(t, st.Orders())
}

func TestReleaseDropsStore(t *testing.T) {
	org := uuid.New()
	sub := &stubSubscriber{}
	m := NewManager(newStubDocRepo(), newStubCache(), &stubPersister{}, sub)

	first, err := m.Acquire(context.Background(), org)
	require.NoError(t, err)
	m.Release(org)

	second, err := m.Acquire(context.Background(), org)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
