package store

import (
	"context"
	"fmt"
	"strings"

	"vetclinic/m/domain"
)

const inventoryColumns = `id, item_name, stock_count, purchase_price, selling_price, purchase_date, expiry_date`

func (t *Tx) InsertInventoryItem(ctx context.Context, item *domain.InventoryItem) error {
	id, err := t.insert(ctx, "insert inventory item",
		`INSERT INTO inventory (item_name, stock_count, purchase_price, selling_price, purchase_date, expiry_date)
                VALUES (?, ?, ?, ?, ?, ?)`,
		item.ItemName, item.StockCount, item.PurchasePrice, item.SellingPrice, item.PurchaseDate, item.ExpiryDate)
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

func (t *Tx) InventoryItemByID(ctx context.Context, id int64) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := t.get(ctx, "inventory item by id", &item, `SELECT `+inventoryColumns+` FROM inventory WHERE id = ?`, id)
	return item, err
}

// InventoryItemByName returns the oldest item with that exact name. Names
// are not unique in storage.
func (t *Tx) InventoryItemByName(ctx context.Context, name string) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := t.get(ctx, "inventory item by name", &item,
		`SELECT `+inventoryColumns+` FROM inventory WHERE item_name = ? ORDER BY id LIMIT 1`, name)
	return item, err
}

// ListInventory filters by a case-insensitive name substring.
func (t *Tx) ListInventory(ctx context.Context, filter string) ([]domain.InventoryItem, error) {
	items := []domain.InventoryItem{}
	pattern := "%" + strings.ToLower(strings.TrimSpace(filter)) + "%"
	err := t.list(ctx, "list inventory", &items,
		`SELECT `+inventoryColumns+` FROM inventory WHERE LOWER(item_name) LIKE ? ORDER BY item_name, id`, pattern)
	return items, err
}

func (t *Tx) UpdateInventoryItem(ctx context.Context, item domain.InventoryItem) error {
	return t.exec(ctx, "update inventory item",
		`UPDATE inventory SET item_name = ?, stock_count = ?, purchase_price = ?, selling_price = ?,
                purchase_date = ?, expiry_date = ? WHERE id = ?`,
		item.ItemName, item.StockCount, item.PurchasePrice, item.SellingPrice, item.PurchaseDate, item.ExpiryDate, item.ID)
}

func (t *Tx) DeleteInventoryItem(ctx context.Context, id int64) error {
	return t.exec(ctx, "delete inventory item", `DELETE FROM inventory WHERE id = ?`, id)
}

// DeductStock lowers stock_count by qty only if enough stock remains, so
// the count can never go negative even if it changed since it was read.
func (t *Tx) DeductStock(ctx context.Context, id, qty int64) error {
	res, err := t.tx.ExecContext(ctx,
		t.tx.Rebind(`UPDATE inventory SET stock_count = stock_count - ? WHERE id = ? AND stock_count >= ?`),
		qty, id, qty)
	if err != nil {
		return fault("deduct stock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fault("deduct stock", err)
	}
	if n == 0 {
		if _, err := t.InventoryItemByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("deduct %d from item %d: %w", qty, id, ErrInsufficientStock)
	}
	return nil
}

// ExpiringBy returns items with an expiry on or before day, including those
// already expired.
func (t *Tx) ExpiringBy(ctx context.Context, day domain.Date) ([]domain.InventoryItem, error) {
	items := []domain.InventoryItem{}
	err := t.list(ctx, "expiring inventory", &items,
		`SELECT `+inventoryColumns+` FROM inventory
                WHERE expiry_date IS NOT NULL AND expiry_date <= ?
                ORDER BY expiry_date ASC, id`, day)
	return items, err
}

func (t *Tx) BelowStock(ctx context.Context, threshold int64) ([]domain.InventoryItem, error) {
	items := []domain.InventoryItem{}
	err := t.list(ctx, "low stock inventory", &items,
		`SELECT `+inventoryColumns+` FROM inventory WHERE stock_count < ? ORDER BY stock_count ASC, item_name`, threshold)
	return items, err
}

func (t *Tx) CountInventory(ctx context.Context) (int64, error) {
	return t.count(ctx, "count inventory", `SELECT COUNT(*) FROM inventory`)
}
