package realtime

import (
	"context"
	"encoding/json"

	"brewpos/internal/model"
	"brewpos/internal/state"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Listener subscribes a state store to its organization's change channel.
// It satisfies state.Subscriber.
type Listener struct {
	rdb        *redis.Client
	instanceID string
}

func NewListener(rdb *redis.Client, instanceID string) *Listener {
	return &Listener{rdb: rdb, instanceID: instanceID}
}

// Subscribe starts a goroutine consuming notifications for org until ctx is
// cancelled. Subscription errors leave the client on stale local state; the
// go-redis PubSub reconnects on its own, and no extra retry logic is layered
// on top.
func (l *Listener) Subscribe(ctx context.Context, orgID uuid.UUID, st *state.Store) {
	pubsub := l.rdb.Subscribe(ctx, ChannelFor(orgID.String()))

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		log.Info().Str("org_id", orgID.String()).Msg("realtime: listener started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Str("org_id", orgID.String()).Msg("realtime: listener stopped")
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				l.handleMessage(st, []byte(msg.Payload))
			}
		}
	}()
}

// handleMessage applies one raw notification to the store. Split out of the
// subscribe loop so it can be exercised without a Redis connection.
func (l *Listener) handleMessage(st *state.Store, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Err(err).Msg("realtime: malformed envelope, dropped")
		return
	}
	if env.Producer == l.instanceID {
		return // our own write echoed back
	}

	switch env.EventType {
	case EventInventoryReplaced:
		var inv model.Inventory
		if err := json.Unmarshal(env.Payload, &inv); err != nil {
			log.Warn().Err(err).Str("event_id", env.EventID).
				Msg("realtime: malformed inventory payload, dropped")
			return
		}
		st.ApplyRemoteInventory(inv)
	case EventOrdersReplaced:
		var orders []model.Order
		if err := json.Unmarshal(env.Payload, &orders); err != nil {
			// A malformed orders array replaces local orders with empty,
			// matching what the document store would hand back on next load.
			orders = []model.Order{}
		}
		st.ApplyRemoteOrders(orders)
	default:
		log.Debug().Str("event_type", env.EventType).Msg("realtime: ignored event")
	}
}
