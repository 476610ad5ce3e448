package service

import (
	"context"
	"time"

	"github.com/guild-genesis/herald/core"
	"github.com/guild-genesis/herald/internal/ratelimit"
	"github.com/guild-genesis/herald/ports"
	"github.com/rs/zerolog"
)

// ActivityRecorder turns inbound chat messages into persisted activity
// events. Messages from bots or foreign guilds are ignored before they reach
// the rate limiter, so they never consume a member's message budget.
type ActivityRecorder struct {
	repo    ports.ActivityRepository
	limiter *ratelimit.FixedWindow
	log     zerolog.Logger

	guildID string
	points  int
}

// NewActivityRecorder creates a recorder scoped to one guild. Each author may
// earn points for at most maxPerMinute messages per minute.
func NewActivityRecorder(repo ports.ActivityRepository, guildID string, points, maxPerMinute int, log zerolog.Logger) *ActivityRecorder {
	return &ActivityRecorder{
		repo:    repo,
		limiter: ratelimit.New(maxPerMinute, time.Minute),
		log:     log,
		guildID: guildID,
		points:  points,
	}
}

// Record processes one inbound message. Filtered or rate-limited messages are
// dropped silently. A persistence failure is logged and returned; callers on
// the gateway path ignore it so a database hiccup never takes the connection
// down with it.
func (r *ActivityRecorder) Record(ctx context.Context, msg core.InboundMessage) error {
	if msg.FromBot {
		return nil
	}
	if r.guildID != "" && msg.GuildID != r.guildID {
		return nil
	}
	if !r.limiter.Allow(msg.AuthorID) {
		r.log.Debug().Str("user_id", msg.AuthorID).Msg("message rate limited")
		return nil
	}

	id, err := r.repo.Insert(ctx, msg.AuthorID, msg.AuthorName, r.points)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", msg.AuthorID).Msg("failed to record activity")
		return err
	}
	r.log.Info().Str("event_id", id).Str("user_id", msg.AuthorID).Int("amount", r.points).Msg("activity recorded")
	return nil
}
