package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/guild-genesis/herald/ports"
)

const (
	// InvalidationTopic carries stale-scope announcements after a confirmed
	// mutation.
	InvalidationTopic = "herald.cache.invalidate"

	// LogoutTopic carries session-teardown announcements.
	LogoutTopic = "herald.auth.logout"
)

// InvalidationEvent names the read scopes that must be refetched.
type InvalidationEvent struct {
	Scopes []string `json:"scopes"`
}

// LogoutEvent represents a logout event.
type LogoutEvent struct {
	Address string `json:"address"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishInvalidation announces that the named read scopes are stale.
func (p *WatermillPublisher) PublishInvalidation(ctx context.Context, scopes ...string) error {
	payload, err := json.Marshal(InvalidationEvent{Scopes: scopes})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := p.publisher.Publish(InvalidationTopic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// PublishLogout publishes a logout event for the address.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address string) error {
	payload, err := json.Marshal(LogoutEvent{Address: address})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := p.publisher.Publish(LogoutTopic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
