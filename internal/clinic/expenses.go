package clinic

import (
	"context"
	"strings"

	"vetclinic/m/domain"
	"vetclinic/m/internal/notify"
	"vetclinic/m/internal/store"
)

type ExpenseInput struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// Expenses appends to the expense ledger. Entries are dated today and are
// never edited afterwards.
type Expenses struct {
	base
}

func NewExpenses(gw *store.Gateway, hub Notifier) *Expenses {
	return &Expenses{base: newBase(gw, hub)}
}

func (s *Expenses) Record(ctx context.Context, in ExpenseInput) (domain.ExpenseRecord, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return domain.ExpenseRecord{}, invalid("category", "Expense category is required.")
	}
	if in.Amount <= 0 {
		return domain.ExpenseRecord{}, invalid("amount", "Amount must be greater than zero.")
	}
	e := domain.ExpenseRecord{
		ExpenseDate: s.today(),
		Category:    category,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.gw.Scope(ctx, func(tx *store.Tx) error { return tx.InsertExpense(ctx, &e) }); err != nil {
		return domain.ExpenseRecord{}, err
	}
	s.publish(ctx, notify.TopicLedger)
	return e, nil
}

func (s *Expenses) List(ctx context.Context, start, end domain.Date) ([]domain.ExpenseRecord, error) {
	if start.After(end) {
		return nil, invalid("start", "Start date must be before end date.")
	}
	var list []domain.ExpenseRecord
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		list, err = tx.ExpensesBetween(ctx, start, end)
		return err
	})
	return list, err
}
