package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"vetclinic/m/domain"
	"vetclinic/m/internal/clinic"
	"vetclinic/m/internal/logger"
)

// InventoryColumns is the header shared by the seed file, the import
// endpoint and the CSV export.
var InventoryColumns = []string{"item_name", "stock_count", "purchase_price", "selling_price", "purchase_date", "expiry_date"}

// Seeder adds rows that are not stocked yet.
type Seeder interface {
	Seed(ctx context.Context, rows []clinic.ItemInput) (int, error)
}

// ParseInventoryCSV reads rows keyed by the header line. Columns may come in
// any order; item_name, stock_count, purchase_price and selling_price are
// required, the dates are optional.
func ParseInventoryCSV(r io.Reader) ([]clinic.ItemInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("inventory csv is empty")
		}
		return nil, fmt.Errorf("read inventory header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range InventoryColumns[:4] {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("inventory csv: missing column %s", required)
		}
	}

	var rows []clinic.ItemInput
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read inventory row %d: %w", line, err)
		}
		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if field("item_name") == "" && field("stock_count") == "" {
			continue
		}

		row := clinic.ItemInput{ItemName: field("item_name")}
		if row.StockCount, err = strconv.ParseInt(field("stock_count"), 10, 64); err != nil {
			return nil, fmt.Errorf("row %d: invalid stock_count %q", line, field("stock_count"))
		}
		if row.PurchasePrice, err = strconv.ParseFloat(field("purchase_price"), 64); err != nil {
			return nil, fmt.Errorf("row %d: invalid purchase_price %q", line, field("purchase_price"))
		}
		if row.SellingPrice, err = strconv.ParseFloat(field("selling_price"), 64); err != nil {
			return nil, fmt.Errorf("row %d: invalid selling_price %q", line, field("selling_price"))
		}
		if row.PurchaseDate, err = optionalDate(field("purchase_date")); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if row.ExpiryDate, err = optionalDate(field("expiry_date")); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func optionalDate(s string) (*domain.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadInventory seeds the inventory from the CSV at path. Items already in
// stock are skipped, so it is safe on every start. Failures are logged and
// leave the inventory untouched.
func LoadInventory(ctx context.Context, inv Seeder, path string, log logger.Logger) {
	file, err := os.Open(path)
	if err != nil {
		log.Warn("unable to open inventory seed", map[string]any{"path": path, "error": err})
		return
	}
	defer file.Close()

	rows, err := ParseInventoryCSV(file)
	if err != nil {
		log.Warn("unable to parse inventory seed", map[string]any{"path": path, "error": err})
		return
	}
	n, err := inv.Seed(ctx, rows)
	if err != nil {
		log.Error("unable to import inventory seed", map[string]any{"path": path, "error": err})
		return
	}
	log.Info("seeded inventory", map[string]any{"path": path, "rows": len(rows), "added": n})
}
