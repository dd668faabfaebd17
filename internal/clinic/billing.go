package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vetclinic/m/domain"
	"vetclinic/m/internal/notify"
	"vetclinic/m/internal/store"
)

// ServiceRate is a catalog entry offered on the billing form.
type ServiceRate struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// DefaultServices is the clinic's standard price list. "Other" carries a
// free-form price entered per bill.
var DefaultServices = []ServiceRate{
	{Name: "Consultation", Price: 50},
	{Name: "Vaccination", Price: 30},
	{Name: "Surgery", Price: 200},
	{Name: "Grooming", Price: 40},
	{Name: "Dental Cleaning", Price: 80},
	{Name: "X-Ray", Price: 100},
	{Name: "Other", Price: 0},
}

type ServiceLine struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int64   `json:"quantity"`
}

// Invoice is a bill being assembled. Inventory lines record the unit price
// at the moment they were added; stock is only deducted when the bill is
// generated. An Invoice is not safe for concurrent use.
type Invoice struct {
	ID     string                 `json:"id"`
	Lines  []domain.InventoryLine `json:"lines"`
	Billed bool                   `json:"billed"`
}

func (inv *Invoice) pending(itemID int64) int64 {
	var n int64
	for _, l := range inv.Lines {
		if l.ItemID == itemID {
			n += l.Quantity
		}
	}
	return n
}

type BillRequest struct {
	Patient         string        `json:"patient"`
	Services        []ServiceLine `json:"services"`
	Other           *ServiceLine  `json:"other,omitempty"`
	TaxPercent      float64       `json:"tax_percent"`
	DiscountPercent float64       `json:"discount_percent"`
}

// Bill is the outcome of generating an invoice. InvoiceNumber is for
// display only; the ledger identity is Record.ID.
type Bill struct {
	InvoiceNumber   string                 `json:"invoice_number"`
	IssuedAt        time.Time              `json:"issued_at"`
	Patient         string                 `json:"patient"`
	Services        []ServiceLine          `json:"services"`
	Other           *ServiceLine           `json:"other,omitempty"`
	Inventory       []domain.InventoryLine `json:"inventory"`
	Subtotal        float64                `json:"subtotal"`
	DiscountPercent float64                `json:"discount_percent"`
	Discount        float64                `json:"discount"`
	TaxPercent      float64                `json:"tax_percent"`
	Tax             float64                `json:"tax"`
	Total           float64                `json:"total"`
	Record          domain.BillingRecord   `json:"record"`
}

// Totals applies the discount to the subtotal first and the tax to the
// discounted amount. Zero or negative percentages are not applied.
func Totals(subtotal decimal.Decimal, discountPercent, taxPercent float64) (discount, tax, total decimal.Decimal) {
	hundred := decimal.NewFromInt(100)
	discount = decimal.Zero
	if discountPercent > 0 {
		discount = subtotal.Mul(decimal.NewFromFloat(discountPercent)).Div(hundred)
	}
	afterDiscount := subtotal.Sub(discount)
	tax = decimal.Zero
	if taxPercent > 0 {
		tax = afterDiscount.Mul(decimal.NewFromFloat(taxPercent)).Div(hundred)
	}
	return discount, tax, afterDiscount.Add(tax)
}

func InvoiceNumber(t time.Time) string {
	return "INV-" + t.Format("20060102150405")
}

type Billing struct {
	base
}

func NewBilling(gw *store.Gateway, hub Notifier) *Billing {
	return &Billing{base: newBase(gw, hub)}
}

func (b *Billing) NewInvoice() *Invoice {
	return &Invoice{ID: uuid.NewString()}
}

// AddInventoryLine reserves qty units of the named item on inv. It fails
// with ErrNotFound for an unknown item and ErrInsufficientStock when qty,
// together with what inv already holds for that item, exceeds the stock.
// Stock itself is unchanged.
func (b *Billing) AddInventoryLine(ctx context.Context, inv *Invoice, itemName string, qty int64) (domain.InventoryLine, error) {
	if inv.Billed {
		return domain.InventoryLine{}, invalid("invoice", "Invoice has already been billed.")
	}
	if qty <= 0 {
		return domain.InventoryLine{}, invalid("quantity", "Quantity must be a positive integer.")
	}
	name := strings.TrimSpace(itemName)
	if name == "" {
		return domain.InventoryLine{}, invalid("item_name", "Item name is required.")
	}

	var item domain.InventoryItem
	err := b.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		item, err = tx.InventoryItemByName(ctx, name)
		return err
	})
	if err != nil {
		return domain.InventoryLine{}, err
	}
	if inv.pending(item.ID)+qty > item.StockCount {
		return domain.InventoryLine{}, fmt.Errorf("%s: requested %d, available %d: %w",
			item.ItemName, qty, item.StockCount-inv.pending(item.ID), ErrInsufficientStock)
	}

	line := domain.InventoryLine{ItemID: item.ID, Name: item.ItemName, Quantity: qty, UnitPrice: item.SellingPrice}
	inv.Lines = append(inv.Lines, line)
	return line, nil
}

func validateServiceLine(field string, l ServiceLine) (ServiceLine, error) {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return l, invalid(field, "Service name is required.")
	}
	if l.UnitPrice < 0 || l.Quantity <= 0 {
		return l, &ValidationError{Field: l.Name, Message: "Invalid price or quantity for service."}
	}
	return l, nil
}

// GenerateBill computes the totals and, in one scope, deducts stock for
// every inventory line on inv and appends the billing record. If any line
// no longer fits the stock the whole bill is rolled back. inv may be nil
// for a bill without inventory.
func (b *Billing) GenerateBill(ctx context.Context, inv *Invoice, req BillRequest) (Bill, error) {
	if inv == nil {
		inv = &Invoice{}
	}
	if inv.Billed {
		return Bill{}, invalid("invoice", "Invoice has already been billed.")
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return Bill{}, invalid("discount_percent", "Discount must be between 0 and 100 percent.")
	}
	if req.TaxPercent < 0 {
		return Bill{}, invalid("tax_percent", "Tax cannot be negative.")
	}

	servicesSold := map[string]int64{}
	subtotal := decimal.Zero
	services := make([]ServiceLine, 0, len(req.Services))
	for i, l := range req.Services {
		l, err := validateServiceLine(fmt.Sprintf("services[%d]", i), l)
		if err != nil {
			return Bill{}, err
		}
		services = append(services, l)
		servicesSold[l.Name] += l.Quantity
		subtotal = subtotal.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(l.Quantity)))
	}
	var other *ServiceLine
	if req.Other != nil {
		l := *req.Other
		if strings.TrimSpace(l.Name) == "" {
			l.Name = "Other"
		}
		l, err := validateServiceLine("other", l)
		if err != nil {
			return Bill{}, err
		}
		other = &l
		servicesSold[l.Name] += l.Quantity
		subtotal = subtotal.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(l.Quantity)))
	}
	for _, l := range inv.Lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(l.Quantity)))
	}
	if len(services) == 0 && other == nil && len(inv.Lines) == 0 {
		return Bill{}, invalid("services", "Add at least one service or item to the bill.")
	}

	discount, tax, total := Totals(subtotal, req.DiscountPercent, req.TaxPercent)
	now := b.now()
	record := domain.BillingRecord{
		BillDate:    domain.NewDate(now),
		TotalAmount: total.InexactFloat64(),
		Details: domain.BillDetails{
			Patient:   strings.TrimSpace(req.Patient),
			Services:  servicesSold,
			Inventory: append([]domain.InventoryLine{}, inv.Lines...),
			Additional: domain.Adjustments{
				Tax:      tax.InexactFloat64(),
				Discount: discount.InexactFloat64(),
			},
		},
	}

	err := b.gw.Scope(ctx, func(tx *store.Tx) error {
		for _, l := range inv.Lines {
			if err := tx.DeductStock(ctx, l.ItemID, l.Quantity); err != nil {
				if errors.Is(err, store.ErrInsufficientStock) {
					return fmt.Errorf("%s: %w", l.Name, ErrInsufficientStock)
				}
				return err
			}
		}
		return tx.InsertBillingRecord(ctx, &record)
	})
	if err != nil {
		return Bill{}, err
	}
	inv.Billed = true
	b.publish(ctx, notify.TopicInventory, notify.TopicLedger)

	return Bill{
		InvoiceNumber:   InvoiceNumber(now),
		IssuedAt:        now,
		Patient:         record.Details.Patient,
		Services:        services,
		Other:           other,
		Inventory:       record.Details.Inventory,
		Subtotal:        subtotal.InexactFloat64(),
		DiscountPercent: req.DiscountPercent,
		Discount:        record.Details.Additional.Discount,
		TaxPercent:      req.TaxPercent,
		Tax:             record.Details.Additional.Tax,
		Total:           record.TotalAmount,
		Record:          record,
	}, nil
}
