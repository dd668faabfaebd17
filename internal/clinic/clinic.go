// Package clinic holds the clinic's use cases. Every service reaches the
// database only through store.Gateway scopes and tells interested views
// about committed changes through a Notifier.
package clinic

import (
	"context"
	"time"

	"vetclinic/m/domain"
	"vetclinic/m/internal/notify"
	"vetclinic/m/internal/store"
)

type Notifier interface {
	Publish(ctx context.Context, topic notify.Topic)
}

// base carries what every service needs. now is replaceable in tests.
type base struct {
	gw  *store.Gateway
	hub Notifier
	now func() time.Time
}

func newBase(gw *store.Gateway, hub Notifier) base {
	return base{gw: gw, hub: hub, now: time.Now}
}

func (b base) today() domain.Date { return domain.NewDate(b.now()) }

func (b base) publish(ctx context.Context, topics ...notify.Topic) {
	if b.hub == nil {
		return
	}
	for _, t := range topics {
		b.hub.Publish(ctx, t)
	}
}
