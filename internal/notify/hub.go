// Package notify fans change notifications out to views that cache data
// from the store, such as the dashboard and the translator.
package notify

import (
	"context"
	"sync"

	"vetclinic/m/internal/logger"
)

type Topic string

const (
	TopicPatients     Topic = "patients"
	TopicAppointments Topic = "appointments"
	TopicInventory    Topic = "inventory"
	TopicLedger       Topic = "ledger"
	TopicSettings     Topic = "settings"
)

// Refresher is implemented by every component that must rebuild its view
// after data it shows has changed.
type Refresher interface {
	Refresh(ctx context.Context, topic Topic) error
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context, topic Topic) error

func (f RefresherFunc) Refresh(ctx context.Context, topic Topic) error { return f(ctx, topic) }

type Hub struct {
	mu   sync.RWMutex
	subs map[Topic][]Refresher
	log  logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{subs: make(map[Topic][]Refresher), log: log}
}

// Subscribe registers r for each topic.
func (h *Hub) Subscribe(r Refresher, topics ...Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		h.subs[t] = append(h.subs[t], r)
	}
}

// Publish calls every subscriber of topic in registration order. A failing
// subscriber is logged and does not stop the others; the change that
// triggered the publish has already been committed.
func (h *Hub) Publish(ctx context.Context, topic Topic) {
	h.mu.RLock()
	subs := append([]Refresher(nil), h.subs[topic]...)
	h.mu.RUnlock()

	for _, r := range subs {
		if err := r.Refresh(ctx, topic); err != nil {
			h.log.Warn("refresh failed", map[string]any{"topic": string(topic), "error": err})
		}
	}
}
