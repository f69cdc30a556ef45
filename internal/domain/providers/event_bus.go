package providers

import (
	"context"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
)

// EventBus carries center status-change events from the consensus rebuild to
// live consumers (the SSE stream). Implementations fan out to every
// subscriber of a channel.
type EventBus interface {
	// Publish publishes an event to all subscribers of the channel.
	Publish(ctx context.Context, channel string, event *entities.CenterStatusEvent) error

	// Subscribe subscribes to events on a channel.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.CenterStatusEvent, error)

	// Unsubscribe tears down this bus's subscription to a channel.
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions.
	Close() error
}

// EventChannelStatusUpdates is the channel carrying every center
// status-change event.
const EventChannelStatusUpdates = "centers:status"
