package clinic

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"vetclinic/m/internal/config"
	"vetclinic/m/internal/logger"
	"vetclinic/m/internal/notify"
	"vetclinic/m/internal/store"
	"vetclinic/m/internal/testutil"
)

var fixedNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.Local)

type recordingHub struct {
	mu     sync.Mutex
	topics []notify.Topic
}

func (h *recordingHub) Publish(ctx context.Context, topic notify.Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.topics = append(h.topics, topic)
}

func (h *recordingHub) saw(topic notify.Topic) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range h.topics {
		if t == topic {
			return true
		}
	}
	return false
}

type staticSettings struct{ s config.Settings }

func (s staticSettings) Get() config.Settings { return s.s }

type fixture struct {
	db           *sqlx.DB
	gw           *store.Gateway
	hub          *recordingHub
	patients     *Patients
	inventory    *Inventory
	billing      *Billing
	analytics    *Analytics
	reminders    *Reminders
	appointments *Appointments
	expenses     *Expenses
	operators    *Operators
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, _ := testutil.OpenDB(t)
	gw := store.New(db, logger.Discard())
	hub := &recordingHub{}
	settings := config.DefaultSettings()
	settings.LowStockThreshold = 5

	f := &fixture{
		db:           db,
		gw:           gw,
		hub:          hub,
		patients:     NewPatients(gw, hub),
		inventory:    NewInventory(gw, hub),
		billing:      NewBilling(gw, hub),
		analytics:    NewAnalytics(gw),
		reminders:    NewReminders(gw, staticSettings{settings}),
		appointments: NewAppointments(gw, hub),
		expenses:     NewExpenses(gw, hub),
		operators:    NewOperators(gw),
	}
	f.setNow(fixedNow)
	return f
}

func (f *fixture) setNow(t time.Time) {
	clock := func() time.Time { return t }
	f.patients.now = clock
	f.inventory.now = clock
	f.billing.now = clock
	f.analytics.now = clock
	f.reminders.now = clock
	f.appointments.now = clock
	f.expenses.now = clock
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := f.db.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func (f *fixture) addItem(t *testing.T, name string, stock int64, purchase, selling float64) int64 {
	t.Helper()
	item, err := f.inventory.Add(context.Background(), ItemInput{
		ItemName: name, StockCount: stock, PurchasePrice: purchase, SellingPrice: selling,
	})
	if err != nil {
		t.Fatalf("add item %s: %v", name, err)
	}
	return item.ID
}
