// Package dashboard keeps the headline clinic metrics up to date and exports
// them as prometheus gauges.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"vetclinic/m/domain"
	"vetclinic/m/internal/logger"
	"vetclinic/m/internal/notify"
	"vetclinic/m/internal/store"
)

const DefaultInterval = 5 * time.Minute

type Metrics struct {
	Patients             int64     `json:"total_patients"`
	UpcomingAppointments int64     `json:"upcoming_appointments"`
	InventoryItems       int64     `json:"inventory_items"`
	Revenue              float64   `json:"total_revenue"`
	RefreshedAt          time.Time `json:"refreshed_at"`
}

type Board struct {
	gw  *store.Gateway
	log logger.Logger
	now func() time.Time

	mu   sync.RWMutex
	last Metrics

	registry     *prometheus.Registry
	patients     prometheus.Gauge
	appointments prometheus.Gauge
	items        prometheus.Gauge
	revenue      prometheus.Gauge
	refreshes    *prometheus.CounterVec
	bills        prometheus.Counter
}

func New(gw *store.Gateway, log logger.Logger) *Board {
	b := &Board{
		gw:       gw,
		log:      log,
		now:      time.Now,
		registry: prometheus.NewRegistry(),
		patients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vetclinic", Name: "patients_total", Help: "Registered owners.",
		}),
		appointments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vetclinic", Name: "upcoming_appointments", Help: "Appointments scheduled from now on.",
		}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vetclinic", Name: "inventory_items", Help: "Inventory items on record.",
		}),
		revenue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vetclinic", Name: "revenue_total", Help: "Sum of all billing totals.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetclinic", Name: "dashboard_refreshes_total", Help: "Dashboard refreshes by trigger.",
		}, []string{"trigger"}),
		bills: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vetclinic", Name: "bills_generated_total", Help: "Bills generated since start.",
		}),
	}
	b.registry.MustRegister(b.patients, b.appointments, b.items, b.revenue, b.refreshes, b.bills)
	return b
}

// Registry is served at /metrics.
func (b *Board) Registry() *prometheus.Registry { return b.registry }

// BillGenerated counts a generated bill.
func (b *Board) BillGenerated() { b.bills.Inc() }

// Refresh recomputes every metric in a single read scope. topic names the
// change that triggered it; an empty topic is a timed or manual refresh.
func (b *Board) Refresh(ctx context.Context, topic notify.Topic) error {
	now := b.now()
	var m Metrics
	err := b.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		if m.Patients, err = tx.CountOwners(ctx); err != nil {
			return err
		}
		if m.UpcomingAppointments, err = tx.CountAppointmentsFrom(ctx, domain.NewDateTime(now)); err != nil {
			return err
		}
		if m.InventoryItems, err = tx.CountInventory(ctx); err != nil {
			return err
		}
		m.Revenue, err = tx.TotalRevenue(ctx)
		return err
	})
	if err != nil {
		return err
	}
	m.RefreshedAt = now

	b.mu.Lock()
	b.last = m
	b.mu.Unlock()

	b.patients.Set(float64(m.Patients))
	b.appointments.Set(float64(m.UpcomingAppointments))
	b.items.Set(float64(m.InventoryItems))
	b.revenue.Set(m.Revenue)
	trigger := string(topic)
	if trigger == "" {
		trigger = "timer"
	}
	b.refreshes.WithLabelValues(trigger).Inc()
	return nil
}

func (b *Board) Snapshot() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

// Run refreshes immediately and then on every tick until ctx is done.
func (b *Board) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if err := b.Refresh(ctx, ""); err != nil {
		b.log.Error("dashboard refresh failed", map[string]any{"error": err})
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Refresh(ctx, ""); err != nil {
				b.log.Error("dashboard refresh failed", map[string]any{"error": err})
			}
		}
	}
}
