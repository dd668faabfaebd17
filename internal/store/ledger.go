package store

import (
	"context"

	"vetclinic/m/domain"
)

// The ledger tables are append-only: there are no update or delete methods.

func (t *Tx) InsertBillingRecord(ctx context.Context, rec *domain.BillingRecord) error {
	id, err := t.insert(ctx, "insert billing record",
		`INSERT INTO billings (bill_date, total_amount, details) VALUES (?, ?, ?)`,
		rec.BillDate, rec.TotalAmount, rec.Details)
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// BillingRecordsBetween is inclusive on both ends.
func (t *Tx) BillingRecordsBetween(ctx context.Context, start, end domain.Date) ([]domain.BillingRecord, error) {
	records := []domain.BillingRecord{}
	err := t.list(ctx, "billing records", &records,
		`SELECT id, bill_date, total_amount, details FROM billings
                WHERE bill_date >= ? AND bill_date <= ? ORDER BY bill_date, id`, start, end)
	return records, err
}

func (t *Tx) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	if err := t.tx.GetContext(ctx, &total, `SELECT COALESCE(SUM(total_amount), 0) FROM billings`); err != nil {
		return 0, fault("total revenue", err)
	}
	return total, nil
}

func (t *Tx) InsertExpense(ctx context.Context, e *domain.ExpenseRecord) error {
	id, err := t.insert(ctx, "insert expense",
		`INSERT INTO expenses (expense_date, category, amount, description) VALUES (?, ?, ?, ?)`,
		e.ExpenseDate, e.Category, e.Amount, e.Description)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (t *Tx) ExpensesBetween(ctx context.Context, start, end domain.Date) ([]domain.ExpenseRecord, error) {
	expenses := []domain.ExpenseRecord{}
	err := t.list(ctx, "expenses", &expenses,
		`SELECT id, expense_date, category, amount, description FROM expenses
                WHERE expense_date >= ? AND expense_date <= ? ORDER BY expense_date, id`, start, end)
	return expenses, err
}
