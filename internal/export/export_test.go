package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vetclinic/m/domain"
	"vetclinic/m/internal/clinic"
	"vetclinic/m/internal/seed"
)

type identity struct{}

func (identity) T(key string) string { return key }

func TestBillText(t *testing.T) {
	bill := clinic.Bill{
		InvoiceNumber:   "INV-20240615103000",
		IssuedAt:        time.Date(2024, time.June, 15, 10, 30, 0, 0, time.Local),
		Patient:         "Rex (+201234567)",
		Services:        []clinic.ServiceLine{{Name: "Consultation", UnitPrice: 50, Quantity: 2}},
		Other:           &clinic.ServiceLine{Name: "Nail trim", UnitPrice: 20, Quantity: 1},
		Inventory:       []domain.InventoryLine{{Name: "Shampoo", Quantity: 2, UnitPrice: 40}},
		Subtotal:        200,
		DiscountPercent: 10,
		Discount:        20,
		TaxPercent:      5,
		Tax:             9,
		Total:           189,
	}
	text := BillText(bill, identity{}, "LE")
	for _, want := range []string{
		"Invoice Number: INV-20240615103000",
		"Date: 2024-06-15",
		" - Consultation x2: LE100.00",
		" - Nail trim x1: LE20.00",
		"Inventory Used:\n - Shampoo x2: LE80.00",
		"Discount (10%): -LE20.00",
		"Tax (5%): LE9.00",
		"Total Bill: LE189.00",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("bill text missing %q:\n%s", want, text)
		}
	}
}

func TestReportText(t *testing.T) {
	r := clinic.Report{
		Start:         domain.DateOf(2024, time.January, 15),
		End:           domain.DateOf(2024, time.March, 10),
		TotalRevenue:  100,
		TotalExpenses: 40,
		NetProfit:     60,
		ServicesSold:  map[string]int64{"Vaccination": 1, "Consultation": 2},
		Monthly:       []clinic.MonthRevenue{{Month: "2024-01"}, {Month: "2024-02", Revenue: 100}, {Month: "2024-03"}},
	}
	text := ReportText(r, identity{}, "$")
	if !strings.HasPrefix(text, "Analytics Report (2024-01-15 - 2024-03-10)") {
		t.Fatalf("header: %q", text)
	}
	if strings.Index(text, "Consultation: 2") > strings.Index(text, "Vaccination: 1") {
		t.Fatalf("services not sorted:\n%s", text)
	}
	if !strings.Contains(text, "2024-02: $100.00") || !strings.Contains(text, "Net Profit: $60.00") {
		t.Fatalf("missing figures:\n%s", text)
	}
}

func TestInventoryCSVRoundTrip(t *testing.T) {
	expiry := domain.DateOf(2025, time.January, 31)
	items := []domain.InventoryItem{
		{ItemName: "Syringe, 5ml", StockCount: 100, PurchasePrice: 1, SellingPrice: 2.5, PurchaseDate: domain.DateOf(2024, time.June, 1)},
		{ItemName: "Shampoo", StockCount: 4, PurchasePrice: 10, SellingPrice: 15, PurchaseDate: domain.DateOf(2024, time.June, 2), ExpiryDate: &expiry},
	}
	var buf bytes.Buffer
	if err := WriteInventoryCSV(&buf, items); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := seed.ParseInventoryCSV(&buf)
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	if len(rows) != 2 || rows[0].ItemName != "Syringe, 5ml" || rows[1].ExpiryDate.String() != "2025-01-31" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(dir, "bills/inv.txt", "الإجمالي: LE10.00\n")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(dir, "bills", "inv.txt") {
		t.Fatalf("path = %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "الإجمالي: LE10.00\n" {
		t.Fatalf("read back: %q %v", b, err)
	}
	if _, err := WriteFile(dir, " ", "x"); !clinic.IsValidation(err) {
		t.Fatalf("empty path: %v", err)
	}
	if _, err := WriteFile(dir, "bills/inv.txt", "again"); !clinic.IsValidation(err) {
		t.Fatalf("existing file: %v", err)
	}
	if b, _ := os.ReadFile(path); string(b) != "الإجمالي: LE10.00\n" {
		t.Fatalf("existing export was overwritten: %q", b)
	}
}

func TestWriteFileStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "exports")
	outside := filepath.Join(root, "settings.env")
	if err := os.WriteFile(outside, []byte("SECRET=keep\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{outside, "../settings.env", "a/../../settings.env", "..", "."} {
		if _, err := WriteFile(dir, name, "report"); !clinic.IsValidation(err) {
			t.Errorf("%q: expected ValidationError, got %v", name, err)
		}
	}
	if b, _ := os.ReadFile(outside); string(b) != "SECRET=keep\n" {
		t.Fatalf("file outside the export dir changed: %q", b)
	}
	if path, err := WriteFile(dir, "a/../report.txt", "ok"); err != nil || path != filepath.Join(dir, "report.txt") {
		t.Fatalf("cleaned name: %s %v", path, err)
	}
}

func TestWriteFileFailureHidesServerPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	if err := os.WriteFile(dir, []byte("not a directory"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := WriteFile(dir, "bills/inv.txt", "x")
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}
	if strings.Contains(err.Error(), dir) {
		t.Fatalf("error leaks export dir: %v", err)
	}
}
