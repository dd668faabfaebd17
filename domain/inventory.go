package domain

import "github.com/shopspring/decimal"

type InventoryItem struct {
	ID            int64   `db:"id" json:"id"`
	ItemName      string  `db:"item_name" json:"item_name"`
	StockCount    int64   `db:"stock_count" json:"stock_count"`
	PurchasePrice float64 `db:"purchase_price" json:"purchase_price"`
	SellingPrice  float64 `db:"selling_price" json:"selling_price"`
	PurchaseDate  Date    `db:"purchase_date" json:"purchase_date"`
	ExpiryDate    *Date   `db:"expiry_date" json:"expiry_date,omitempty"`
}

// PotentialProfit is the margin the current stock would realise if sold at
// the current selling price.
func (i InventoryItem) PotentialProfit() float64 {
	margin := decimal.NewFromFloat(i.SellingPrice).Sub(decimal.NewFromFloat(i.PurchasePrice))
	return margin.Mul(decimal.NewFromInt(i.StockCount)).InexactFloat64()
}
