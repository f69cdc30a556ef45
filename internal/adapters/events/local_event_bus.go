package events

import (
	"context"
	"sync"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/providers"
)

// LocalEventBus is an in-process EventBus used when Redis is not configured.
// Events only reach subscribers in the same process, which is all a
// single-instance deployment needs.
type LocalEventBus struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.CenterStatusEvent]struct{}
	closed      bool
}

// NewLocalEventBus creates an in-process event bus.
func NewLocalEventBus() providers.EventBus {
	return &LocalEventBus{
		subscribers: make(map[string]map[chan *entities.CenterStatusEvent]struct{}),
	}
}

// Publish delivers the event to current subscribers. Slow subscribers with a
// full buffer miss the event rather than block the publisher.
func (b *LocalEventBus) Publish(ctx context.Context, channel string, event *entities.CenterStatusEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for subscriber := range b.subscribers[channel] {
		select {
		case subscriber <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber on the channel. The subscription ends
// when ctx is cancelled.
func (b *LocalEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.CenterStatusEvent, error) {
	b.mu.Lock()
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.CenterStatusEvent]struct{})
	}
	eventChan := make(chan *entities.CenterStatusEvent, 100)
	b.subscribers[channel][eventChan] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.removeSubscriber(channel, eventChan)
	}()

	return eventChan, nil
}

func (b *LocalEventBus) removeSubscriber(channel string, eventChan chan *entities.CenterStatusEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subscribers, exists := b.subscribers[channel]
	if !exists {
		return
	}
	if _, ok := subscribers[eventChan]; !ok {
		return
	}
	delete(subscribers, eventChan)
	close(eventChan)
	if len(subscribers) == 0 {
		delete(b.subscribers, channel)
	}
}

// Unsubscribe drops every subscriber on the channel.
func (b *LocalEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for subscriber := range b.subscribers[channel] {
		close(subscriber)
	}
	delete(b.subscribers, channel)
	return nil
}

// Close shuts the bus down and closes all subscriber channels.
func (b *LocalEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for channel, subscribers := range b.subscribers {
		for subscriber := range subscribers {
			close(subscriber)
		}
		delete(b.subscribers, channel)
	}
	return nil
}
