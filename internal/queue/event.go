// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds carried on the floor.activity queue.
const (
	KindSessionStarted   = "session.started"
	KindSessionSettled   = "session.settled"
	KindSessionCompleted = "session.completed"
)

// FloorEvent is published for every session lifecycle transition.  It
// contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type FloorEvent struct {
	EventID      string `json:"event_id"`
	Kind         string `json:"kind"`
	SessionID    uint64 `json:"session_id"`
	CustomerName string `json:"customer_name"`
	PeopleCount  int    `json:"people_count"`
	Window       string `json:"window"`
	Price        int64  `json:"price"`
	PaidAmount   int64  `json:"paid_amount"`
	HeadsPaid    int    `json:"heads_paid,omitempty"`
	AmountPaid   int64  `json:"amount_paid,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}
