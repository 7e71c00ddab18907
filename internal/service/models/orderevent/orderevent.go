package orderevent

import (
	"time"

	"github.com/tokyogo/backend/internal/service/models/order"
)

const (
	TypeCreated       = "order.created"
	TypeStatusChanged = "order.status_changed"
)

// Event is the payload published to the order events exchange.
type Event struct {
	EventID    string      `json:"event_id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Order      order.Order `json:"order"`
}
