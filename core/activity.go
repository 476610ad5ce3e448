package core

import "time"

// EventTypeMessage is the only event type the listener records today.
const EventTypeMessage = "message"

// InboundMessage is the gateway-agnostic view of a chat message event.
type InboundMessage struct {
	AuthorID   string
	AuthorName string
	GuildID    string
	FromBot    bool
}

// ActivityEvent is one recorded unit of community activity. Rows are immutable
// except for the one-way Processed transition flipped by the points consumer.
type ActivityEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Amount    int       `json:"amount"`
	EventType string    `json:"event_type"`
	Date      time.Time `json:"date"`
	Processed bool      `json:"processed_status"`
	CreatedAt time.Time `json:"created_at"`
}
