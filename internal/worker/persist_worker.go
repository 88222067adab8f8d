package worker

// persist_worker.go
// Drains QueuePersist: writes state documents to Postgres through the circuit
// breaker, refreshes the Redis fallback cache, and broadcasts the change on
// the organization's realtime channel.
//
// There is no retry/backoff here on purpose: a failed document write is
// superseded by the next natural write of the same document, so retrying a
// stale payload buys nothing. Failures land in the DLQ for inspection.

import (
	"context"
	"encoding/json"

	"brewpos/internal/infra"
	"brewpos/internal/realtime"
	"brewpos/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// PersistWorker processes document write jobs from QueuePersist.
type PersistWorker struct {
	docs      repository.StateDocRepository
	cache     *infra.DocCache
	publisher *realtime.Publisher
	cb        *infra.CircuitBreaker
	rdb       *redis.Client
}

func NewPersistWorker(
	docs repository.StateDocRepository,
	cache *infra.DocCache,
	publisher *realtime.Publisher,
	cb *infra.CircuitBreaker,
	rdb *redis.Client,
) *PersistWorker {
	return &PersistWorker{docs: docs, cache: cache, publisher: publisher, cb: cb, rdb: rdb}
}

// Process handles a single persist job.
func (w *PersistWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload PersistJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("persist_worker: invalid payload")
		return
	}

	writeErr := w.cb.Execute(func() error {
		return w.docs.Put(ctx, payload.OrgID, payload.Kind, payload.Doc)
	})
	if writeErr != nil {
		log.Error().Err(writeErr).
			Str("org_id", payload.OrgID.String()).
			Str("kind", payload.Kind).
			Msg("persist_worker: document write failed")
		SendToDLQ(ctx, w.rdb, QueuePersist, "persist", raw, writeErr.Error(), 1)
		return
	}

	// Refresh the fallback cache so a lost primary document can self-heal
	// from a recent copy.
	if err := w.cache.Set(ctx, payload.OrgID, payload.Kind, payload.Doc); err != nil {
		log.Warn().Err(err).Str("org_id", payload.OrgID.String()).Str("kind", payload.Kind).
			Msg("persist_worker: cache refresh failed")
	}

	if err := w.publisher.PublishDocument(ctx, payload.OrgID, payload.Kind, payload.Doc); err != nil {
		log.Warn().Err(err).Str("org_id", payload.OrgID.String()).Str("kind", payload.Kind).
			Msg("persist_worker: realtime publish failed, peers stay stale until next write")
	}

	log.Debug().Str("org_id", payload.OrgID.String()).Str("kind", payload.Kind).
		Msg("persist_worker: document persisted")
}
