package clinic

import (
	"context"

	"github.com/shopspring/decimal"

	"vetclinic/m/domain"
	"vetclinic/m/internal/store"
)

type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type InventorySnapshot struct {
	domain.InventoryItem
	PotentialProfit float64 `json:"potential_profit"`
}

// Report aggregates the ledgers over [Start, End] and pairs them with the
// inventory as it stands now.
type Report struct {
	Start         domain.Date            `json:"start"`
	End           domain.Date            `json:"end"`
	TotalRevenue  float64                `json:"total_revenue"`
	TotalExpenses float64                `json:"total_expenses"`
	NetProfit     float64                `json:"net_profit"`
	ServicesSold  map[string]int64       `json:"services_sold"`
	Monthly       []MonthRevenue         `json:"monthly"`
	Inventory     []InventorySnapshot    `json:"inventory"`
	Bills         []domain.BillingRecord `json:"bills"`
	Expenses      []domain.ExpenseRecord `json:"expenses"`
}

type Analytics struct {
	base
}

func NewAnalytics(gw *store.Gateway) *Analytics {
	return &Analytics{base: newBase(gw, nil)}
}

// Report reads bills, expenses and inventory in one scope. The range is
// inclusive and start must not be after end.
func (a *Analytics) Report(ctx context.Context, start, end domain.Date) (Report, error) {
	if start.After(end) {
		return Report{}, invalid("start", "Start date must be before end date.")
	}

	r := Report{Start: start, End: end}
	var items []domain.InventoryItem
	err := a.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		if r.Bills, err = tx.BillingRecordsBetween(ctx, start, end); err != nil {
			return err
		}
		if r.Expenses, err = tx.ExpensesBetween(ctx, start, end); err != nil {
			return err
		}
		items, err = tx.ListInventory(ctx, "")
		return err
	})
	if err != nil {
		return Report{}, err
	}

	revenue := decimal.Zero
	r.ServicesSold = map[string]int64{}
	for _, b := range r.Bills {
		revenue = revenue.Add(decimal.NewFromFloat(b.TotalAmount))
		for name, qty := range b.Details.Services {
			r.ServicesSold[name] += qty
		}
	}
	expenses := decimal.Zero
	for _, e := range r.Expenses {
		expenses = expenses.Add(decimal.NewFromFloat(e.Amount))
	}
	r.TotalRevenue = revenue.InexactFloat64()
	r.TotalExpenses = expenses.InexactFloat64()
	r.NetProfit = revenue.Sub(expenses).InexactFloat64()
	r.Monthly = MonthlySeries(start, end, r.Bills)

	r.Inventory = make([]InventorySnapshot, 0, len(items))
	for _, it := range items {
		r.Inventory = append(r.Inventory, InventorySnapshot{InventoryItem: it, PotentialProfit: it.PotentialProfit()})
	}
	return r, nil
}

// MonthlySeries buckets bills by month. Every month from start's month to
// end's month appears once, in order, with 0 for months without bills.
func MonthlySeries(start, end domain.Date, bills []domain.BillingRecord) []MonthRevenue {
	byMonth := map[string]decimal.Decimal{}
	for _, b := range bills {
		key := b.BillDate.MonthStart().Time().Format("2006-01")
		byMonth[key] = byMonth[key].Add(decimal.NewFromFloat(b.TotalAmount))
	}

	var series []MonthRevenue
	for m := start.MonthStart(); !m.After(end); m = m.NextMonth() {
		key := m.Time().Format("2006-01")
		series = append(series, MonthRevenue{Month: key, Revenue: byMonth[key].InexactFloat64()})
	}
	return series
}
