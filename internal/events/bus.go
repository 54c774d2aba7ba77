// Package events implements the generic plugin event bus the orchestrator
// publishes to on every tier-raising outcome (spec §4.10).
package events

import (
	"sync"

	"github.com/OpenBMB/privacyguard/internal/model"
)

// PrivacyActivated is the event name emitted whenever a checkpoint raises
// a message or tool call above S1.
const PrivacyActivated = "privacy_activated"

// Event is a single published occurrence. Provider/Model are only
// populated for S3 direct-response outcomes.
type Event struct {
	Name       string
	Tier       model.Tier
	Provider   string
	Model      string
	Reason     string
	SessionKey string
}

// Handler receives published events. Handlers run in their own goroutine
// and must not block the publisher — a slow or panicking handler is the
// handler's problem, not the bus's.
type Handler func(Event)

// Bus is a minimal fan-out publish/subscribe bus. Safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus builds an empty Bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers a handler invoked for every future Publish call.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish fans the event out to every subscribed handler on its own
// goroutine, never blocking the caller.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h := h
		go func() {
			defer func() { _ = recover() }()
			h(e)
		}()
	}
}

// PrivacyActivatedEvent builds the spec's canonical event shape.
func PrivacyActivatedEvent(tier model.Tier, provider, modelName, reason, sessionKey string) Event {
	return Event{
		Name:       PrivacyActivated,
		Tier:       tier,
		Provider:   provider,
		Model:      modelName,
		Reason:     reason,
		SessionKey: sessionKey,
	}
}
