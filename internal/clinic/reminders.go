package clinic

import (
	"context"

	"vetclinic/m/domain"
	"vetclinic/m/internal/config"
	"vetclinic/m/internal/store"
)

const DefaultExpiryWindowDays = 30

// SettingsSource supplies the current operator settings.
type SettingsSource interface {
	Get() config.Settings
}

// Reminders answers the read-only reminder queries shown at start-up and
// on the dashboard.
type Reminders struct {
	base
	settings SettingsSource
}

func NewReminders(gw *store.Gateway, settings SettingsSource) *Reminders {
	return &Reminders{base: newBase(gw, nil), settings: settings}
}

func (r *Reminders) VaccinesDueToday(ctx context.Context) ([]domain.VaccineEntry, error) {
	var due []domain.VaccineEntry
	err := r.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		due, err = tx.VaccinesDueOn(ctx, r.today())
		return err
	})
	return due, err
}

// ExpiringWithin lists items expiring in the next days days, including
// items already past their expiry. Non-positive days use the default window.
func (r *Reminders) ExpiringWithin(ctx context.Context, days int) ([]domain.InventoryItem, error) {
	if days <= 0 {
		days = DefaultExpiryWindowDays
	}
	var items []domain.InventoryItem
	err := r.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		items, err = tx.ExpiringBy(ctx, r.today().AddDays(days))
		return err
	})
	return items, err
}

// LowStock uses the low_stock_threshold setting.
func (r *Reminders) LowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.BelowThreshold(ctx, r.settings.Get().LowStockThreshold)
}

// BelowThreshold lists items whose stock is strictly below threshold.
func (r *Reminders) BelowThreshold(ctx context.Context, threshold int) ([]domain.InventoryItem, error) {
	if threshold < 0 {
		return nil, invalid("threshold", "Threshold cannot be negative.")
	}
	var items []domain.InventoryItem
	err := r.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		items, err = tx.BelowStock(ctx, int64(threshold))
		return err
	})
	return items, err
}
