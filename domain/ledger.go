package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BillingRecord is an append-only ledger entry. Details is a snapshot taken
// when the bill was generated and is never recomputed from live inventory.
type BillingRecord struct {
	ID          int64       `db:"id" json:"id"`
	BillDate    Date        `db:"bill_date" json:"bill_date"`
	TotalAmount float64     `db:"total_amount" json:"total_amount"`
	Details     BillDetails `db:"details" json:"details"`
}

type BillDetails struct {
	Patient    string           `json:"patient,omitempty"`
	Services   map[string]int64 `json:"services"`
	Inventory  []InventoryLine  `json:"inventory"`
	Additional Adjustments      `json:"additional"`
}

type InventoryLine struct {
	ItemID    int64   `json:"item_id,omitempty"`
	Name      string  `json:"name"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type Adjustments struct {
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
}

func (d BillDetails) Value() (driver.Value, error) {
	if d.Services == nil {
		d.Services = map[string]int64{}
	}
	if d.Inventory == nil {
		d.Inventory = []InventoryLine{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *BillDetails) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case nil:
		*d = BillDetails{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into BillDetails", src)
	}
	var out BillDetails
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode bill details: %w", err)
	}
	*d = out
	return nil
}

type ExpenseRecord struct {
	ID          int64   `db:"id" json:"id"`
	ExpenseDate Date    `db:"expense_date" json:"expense_date"`
	Category    string  `db:"category" json:"category"`
	Amount      float64 `db:"amount" json:"amount"`
	Description string  `db:"description" json:"description,omitempty"`
}
