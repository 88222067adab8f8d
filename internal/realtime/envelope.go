// Package realtime fans state document changes out to every server instance
// serving the same organization. The model is last-writer-wins: a notification
// fully replaces the local copy, no merge is attempted. Two instances selling
// the same product can both pass their local sufficiency check before either
// deduction is visible to the other, that oversell window is inherent to this
// design and is accepted, not hidden.
package realtime

import (
	"encoding/json"
	"time"
)

// Event types carried on the per-organization channel.
const (
	EventInventoryReplaced = "inventory.replaced"
	EventOrdersReplaced    = "orders.replaced"
)

// Envelope wraps every published notification. Producer is the publishing
// instance id; listeners drop their own events instead of re-applying them.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	OrgID      string          `json:"org_id"`
	Payload    json.RawMessage `json:"payload"`
}

// ChannelFor returns the pub/sub channel name for one organization.
func ChannelFor(orgID string) string { return "pos:events:" + orgID }
