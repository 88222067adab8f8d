package realtime

import (
	"context"
	"encoding/json"
	"time"

	"brewpos/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Publisher broadcasts a document replacement after a successful persist.
type Publisher struct {
	rdb        *redis.Client
	instanceID string
}

func NewPublisher(rdb *redis.Client, instanceID string) *Publisher {
	return &Publisher{rdb: rdb, instanceID: instanceID}
}

// PublishDocument announces that (org, kind) now holds doc. The full document
// rides in the payload so listeners replace state without a read-back.
func (p *Publisher) PublishDocument(ctx context.Context, orgID uuid.UUID, kind string, doc json.RawMessage) error {
	eventType := EventInventoryReplaced
	if kind == model.DocKindOrders {
		eventType = EventOrdersReplaced
	}
	env := Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Producer:   p.instanceID,
		OrgID:      orgID.String(),
		Payload:    doc,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, ChannelFor(orgID.String()), data).Err()
}
