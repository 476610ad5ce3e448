package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/guild-genesis/herald/ports"
	"github.com/rs/zerolog"
)

// WatermillListener delivers invalidation events to a callback.
type WatermillListener struct {
	subscriber message.Subscriber
	log        zerolog.Logger
}

// NewWatermillListener creates a listener on the given subscriber.
func NewWatermillListener(subscriber message.Subscriber, log zerolog.Logger) ports.InvalidationListener {
	return &WatermillListener{subscriber: subscriber, log: log}
}

// Listen blocks, invoking fn for every invalidation event until the context is
// cancelled. Malformed messages are acked and dropped.
func (l *WatermillListener) Listen(ctx context.Context, fn func(scopes []string)) error {
	messages, err := l.subscriber.Subscribe(ctx, InvalidationTopic)
	if err != nil {
		return err
	}

	for msg := range messages {
		var event InvalidationEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			l.log.Warn().Err(err).Str("message", msg.UUID).Msg("dropping malformed invalidation event")
			msg.Ack()
			continue
		}
		fn(event.Scopes)
		msg.Ack()
	}
	return nil
}
