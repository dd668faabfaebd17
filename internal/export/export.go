// Package export renders bills, analytics reports and the inventory in the
// plain formats operators save or print.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"vetclinic/m/domain"
	"vetclinic/m/internal/clinic"
	"vetclinic/m/internal/seed"
)

type Translator interface {
	T(key string) string
}

func money(currency string, v float64) string {
	return fmt.Sprintf("%s%.2f", currency, v)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// BillText lays out a generated bill as a printable invoice.
func BillText(b clinic.Bill, tr Translator, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", tr.T("Invoice Number"), b.InvoiceNumber)
	fmt.Fprintf(&sb, "%s: %s\n\n", tr.T("Date"), b.IssuedAt.Format(domain.DateLayout))
	if b.Patient != "" {
		fmt.Fprintf(&sb, "%s: %s\n", tr.T("Patient"), b.Patient)
	}

	lines := append([]clinic.ServiceLine{}, b.Services...)
	if b.Other != nil {
		lines = append(lines, *b.Other)
	}
	if len(lines) > 0 {
		fmt.Fprintf(&sb, "\n%s:\n", tr.T("Services"))
		for _, l := range lines {
			fmt.Fprintf(&sb, " - %s x%d: %s\n", l.Name, l.Quantity, money(currency, l.UnitPrice*float64(l.Quantity)))
		}
	}
	if len(b.Inventory) > 0 {
		fmt.Fprintf(&sb, "\n%s:\n", tr.T("Inventory Used"))
		for _, l := range b.Inventory {
			fmt.Fprintf(&sb, " - %s x%d: %s\n", l.Name, l.Quantity, money(currency, l.UnitPrice*float64(l.Quantity)))
		}
	}

	fmt.Fprintf(&sb, "\n%s: %s\n", tr.T("Subtotal"), money(currency, b.Subtotal))
	if b.Discount > 0 {
		fmt.Fprintf(&sb, "%s (%s): -%s\n", tr.T("Discount"), percent(b.DiscountPercent), money(currency, b.Discount))
	}
	if b.Tax > 0 {
		fmt.Fprintf(&sb, "%s (%s): %s\n", tr.T("Tax"), percent(b.TaxPercent), money(currency, b.Tax))
	}
	fmt.Fprintf(&sb, "\n%s: %s\n", tr.T("Total Bill"), money(currency, b.Total))
	return sb.String()
}

// ReportText summarises an analytics report. Services are listed by name.
func ReportText(r clinic.Report, tr Translator, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s - %s):\n\n", tr.T("Analytics Report"), r.Start, r.End)
	fmt.Fprintf(&sb, "%s: %s\n", tr.T("Total Revenue"), money(currency, r.TotalRevenue))
	fmt.Fprintf(&sb, "%s: %s\n", tr.T("Total Expenses"), money(currency, r.TotalExpenses))
	fmt.Fprintf(&sb, "%s: %s\n\n", tr.T("Net Profit"), money(currency, r.NetProfit))

	fmt.Fprintf(&sb, "%s:\n", tr.T("Monthly Revenue"))
	for _, m := range r.Monthly {
		fmt.Fprintf(&sb, "  %s: %s\n", m.Month, money(currency, m.Revenue))
	}

	fmt.Fprintf(&sb, "\n%s:\n", tr.T("Services Sold"))
	names := make([]string, 0, len(r.ServicesSold))
	for name := range r.ServicesSold {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "  %s: %d\n", name, r.ServicesSold[name])
	}

	fmt.Fprintf(&sb, "\n%s:\n", tr.T("Remaining Inventory"))
	for _, it := range r.Inventory {
		fmt.Fprintf(&sb, "  %s: %d %s @ %s %s, %s %s\n", it.ItemName, it.StockCount, tr.T("units"),
			money(currency, it.SellingPrice), tr.T("each"), tr.T("Potential Profit"), money(currency, it.PotentialProfit))
	}
	return sb.String()
}

// WriteInventoryCSV writes items with the same header the importer reads.
func WriteInventoryCSV(w io.Writer, items []domain.InventoryItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(seed.InventoryColumns); err != nil {
		return err
	}
	for _, it := range items {
		expiry := ""
		if it.ExpiryDate != nil {
			expiry = it.ExpiryDate.String()
		}
		record := []string{
			it.ItemName,
			strconv.FormatInt(it.StockCount, 10),
			strconv.FormatFloat(it.PurchasePrice, 'f', -1, 64),
			strconv.FormatFloat(it.SellingPrice, 'f', -1, 64),
			it.PurchaseDate.String(),
			expiry,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ErrWriteFailed wraps I/O failures while saving an export.
var ErrWriteFailed = errors.New("export failed")

// Resolve maps name to a path inside dir. name must be relative and may
// not climb out of dir.
func Resolve(dir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &clinic.ValidationError{Field: "path", Message: "Export path is required."}
	}
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" || clean == "." ||
		clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", &clinic.ValidationError{Field: "path", Message: "Export path must be a file name inside the export folder."}
	}
	return filepath.Join(dir, clean), nil
}

// WriteFile saves text as UTF-8 under dir and returns the full path. It
// creates missing subdirectories and never overwrites an existing file.
func WriteFile(dir, name, text string) (string, error) {
	path, err := Resolve(dir, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrWriteFailed, name, unwrapPath(err))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", &clinic.ValidationError{Field: "path", Message: "An export with this name already exists."}
		}
		return "", fmt.Errorf("%w: %s: %v", ErrWriteFailed, name, unwrapPath(err))
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: %s: %v", ErrWriteFailed, name, unwrapPath(err))
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrWriteFailed, name, unwrapPath(err))
	}
	return path, nil
}

// unwrapPath drops the server-side path from an fs error.
func unwrapPath(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
