package models

import "time"

// Message statuses as reported by the routing backend.
const (
	MessageQueued    = "queued"
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageFailed    = "failed"
)

// Message directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message is one SMS as seen by the router. The client never mutates
// messages; delivery state changes arrive via refetch.
type Message struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	To          string     `json:"to"`
	From        string     `json:"from"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	Direction   string     `json:"direction"`
	GHLAccount  string     `json:"ghl_account,omitempty"`
	ErrorDetail string     `json:"error_detail,omitempty"`
	SentAt      time.Time  `json:"sent_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}
