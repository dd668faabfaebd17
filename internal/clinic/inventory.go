package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vetclinic/m/domain"
	"vetclinic/m/internal/notify"
	"vetclinic/m/internal/store"
)

// ItemInput is the add/modify form for an inventory item. A nil or blank
// PurchaseDate means today on create and "unchanged" on update. A nil or
// blank ExpiryDate means the item does not expire.
type ItemInput struct {
	ItemName      string       `json:"item_name"`
	StockCount    int64        `json:"stock_count"`
	PurchasePrice float64      `json:"purchase_price"`
	SellingPrice  float64      `json:"selling_price"`
	PurchaseDate  *domain.Date `json:"purchase_date,omitempty"`
	ExpiryDate    *domain.Date `json:"expiry_date,omitempty"`
}

type Inventory struct {
	base
}

func NewInventory(gw *store.Gateway, hub Notifier) *Inventory {
	return &Inventory{base: newBase(gw, hub)}
}

// validateItem applies the write-time rules. The expiry date is only
// checked against today when the item is first created.
func (s *Inventory) validateItem(in ItemInput, creating bool) (domain.InventoryItem, error) {
	name := strings.TrimSpace(in.ItemName)
	if name == "" {
		return domain.InventoryItem{}, invalid("item_name", "Item name is required.")
	}
	if in.StockCount < 0 {
		return domain.InventoryItem{}, invalid("stock_count", "Stock cannot be negative.")
	}
	if in.PurchasePrice <= 0 || in.SellingPrice <= 0 {
		return domain.InventoryItem{}, invalid("price", "Prices must be greater than zero.")
	}
	if in.SellingPrice < in.PurchasePrice {
		return domain.InventoryItem{}, invalid("selling_price", "Selling price cannot be lower than purchase price.")
	}
	expiry := in.ExpiryDate
	if expiry != nil && expiry.IsZero() {
		expiry = nil
	}
	today := s.today()
	if creating && expiry != nil && expiry.Before(today) {
		return domain.InventoryItem{}, invalid("expiry_date", "Expiry date cannot be in the past.")
	}
	purchased := today
	if in.PurchaseDate != nil && !in.PurchaseDate.IsZero() {
		purchased = *in.PurchaseDate
	}
	return domain.InventoryItem{
		ItemName:      name,
		StockCount:    in.StockCount,
		PurchasePrice: in.PurchasePrice,
		SellingPrice:  in.SellingPrice,
		PurchaseDate:  purchased,
		ExpiryDate:    expiry,
	}, nil
}

func (s *Inventory) Add(ctx context.Context, in ItemInput) (domain.InventoryItem, error) {
	item, err := s.validateItem(in, true)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	if err := s.gw.Scope(ctx, func(tx *store.Tx) error { return tx.InsertInventoryItem(ctx, &item) }); err != nil {
		return domain.InventoryItem{}, err
	}
	s.publish(ctx, notify.TopicInventory)
	return item, nil
}

func (s *Inventory) validateRows(rows []ItemInput) ([]domain.InventoryItem, error) {
	items := make([]domain.InventoryItem, 0, len(rows))
	for i, row := range rows {
		item, err := s.validateItem(row, true)
		if err != nil {
			if ve, ok := err.(*ValidationError); ok {
				return nil, invalid(fmt.Sprintf("row %d %s", i+1, ve.Field), ve.Message)
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Import adds every row in one scope. A single invalid row rejects the
// whole batch and names the offending row.
func (s *Inventory) Import(ctx context.Context, rows []ItemInput) (int, error) {
	items, err := s.validateRows(rows)
	if err != nil {
		return 0, err
	}
	err = s.gw.Scope(ctx, func(tx *store.Tx) error {
		for i := range items {
			if err := tx.InsertInventoryItem(ctx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.publish(ctx, notify.TopicInventory)
	return len(items), nil
}

// Seed adds the rows whose item_name is not stocked yet and returns how
// many were added. Loading the same file again adds nothing. Only rows
// that would be added are validated, so an item that has expired since it
// was first seeded does not block later starts.
func (s *Inventory) Seed(ctx context.Context, rows []ItemInput) (int, error) {
	added := 0
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		for i, row := range rows {
			_, err := tx.InventoryItemByName(ctx, strings.TrimSpace(row.ItemName))
			if err == nil {
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			item, err := s.validateItem(row, true)
			if err != nil {
				if ve, ok := err.(*ValidationError); ok {
					return invalid(fmt.Sprintf("row %d %s", i+1, ve.Field), ve.Message)
				}
				return err
			}
			if err := tx.InsertInventoryItem(ctx, &item); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if added > 0 {
		s.publish(ctx, notify.TopicInventory)
	}
	return added, nil
}

// Update overwrites every editable field of item id.
func (s *Inventory) Update(ctx context.Context, id int64, in ItemInput) (domain.InventoryItem, error) {
	item, err := s.validateItem(in, false)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	item.ID = id
	err = s.gw.Scope(ctx, func(tx *store.Tx) error {
		if in.PurchaseDate == nil || in.PurchaseDate.IsZero() {
			current, err := tx.InventoryItemByID(ctx, id)
			if err != nil {
				return err
			}
			item.PurchaseDate = current.PurchaseDate
		}
		return tx.UpdateInventoryItem(ctx, item)
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}
	s.publish(ctx, notify.TopicInventory)
	return item, nil
}

func (s *Inventory) Delete(ctx context.Context, id int64) error {
	if err := s.gw.Scope(ctx, func(tx *store.Tx) error { return tx.DeleteInventoryItem(ctx, id) }); err != nil {
		return err
	}
	s.publish(ctx, notify.TopicInventory)
	return nil
}

func (s *Inventory) Get(ctx context.Context, id int64) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		item, err = tx.InventoryItemByID(ctx, id)
		return err
	})
	return item, err
}

func (s *Inventory) List(ctx context.Context, filter string) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	err := s.gw.Scope(ctx, func(tx *store.Tx) error {
		var err error
		items, err = tx.ListInventory(ctx, filter)
		return err
	})
	return items, err
}
