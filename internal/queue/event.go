// Package queue defines the message payloads exchanged over the broker
// and the background consumer that records session events.
package queue

// SessionCreatedEvent is published when a registration session is
// created. It carries enough for downstream consumers (rosters,
// notifications, analytics) to act without querying the database.
type SessionCreatedEvent struct {
	EventID    string  `json:"event_id"`
	SessionID  uint64  `json:"session_id"`
	Code       string  `json:"code"`
	Number     int     `json:"number"`
	FlightDate string  `json:"flight_date"`
	StartsAt   string  `json:"starts_at"`
	EndsAt     string  `json:"ends_at,omitempty"`
	Status     string  `json:"status"`
	CreatorID  *uint64 `json:"creator_id,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// KeyIssuedEvent is published when a validation key is issued to a
// pilot for a session.
type KeyIssuedEvent struct {
	EventID   string `json:"event_id"`
	SessionID uint64 `json:"session_id"`
	Key       string `json:"key"`
	PilotName string `json:"pilot_name"`
	MonthTag  string `json:"month_tag"`
	IssuedAt  string `json:"issued_at"`
}
