package clinic

import (
	"context"
	"testing"
	"time"

	"vetclinic/m/domain"
)

func TestMonthlySeriesHasNoGaps(t *testing.T) {
	start := domain.DateOf(2024, time.January, 15)
	end := domain.DateOf(2024, time.March, 10)
	bills := []domain.BillingRecord{{BillDate: domain.DateOf(2024, time.February, 5), TotalAmount: 100}}

	series := MonthlySeries(start, end, bills)
	want := []MonthRevenue{{"2024-01", 0}, {"2024-02", 100}, {"2024-03", 0}}
	if len(series) != len(want) {
		t.Fatalf("series = %+v", series)
	}
	for i := range want {
		if series[i] != want[i] {
			t.Fatalf("series[%d] = %+v, want %+v", i, series[i], want[i])
		}
	}
}

func TestMonthlySeriesAcrossYearEnd(t *testing.T) {
	series := MonthlySeries(domain.DateOf(2023, time.November, 30), domain.DateOf(2024, time.February, 1), nil)
	if len(series) != 4 || series[0].Month != "2023-11" || series[3].Month != "2024-02" {
		t.Fatalf("series = %+v", series)
	}
}

func TestReportAggregatesLedgers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addItem(t, "Shampoo", 4, 10, 15)

	f.setNow(time.Date(2024, time.February, 5, 9, 0, 0, 0, time.Local))
	if _, err := f.billing.GenerateBill(ctx, nil, BillRequest{
		Services: []ServiceLine{{Name: "Consultation", UnitPrice: 50, Quantity: 2}},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.billing.GenerateBill(ctx, nil, BillRequest{
		Services: []ServiceLine{{Name: "Consultation", UnitPrice: 50, Quantity: 1}, {Name: "Grooming", UnitPrice: 40, Quantity: 1}},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.expenses.Record(ctx, ExpenseInput{Category: "Rent", Amount: 60}); err != nil {
		t.Fatal(err)
	}
	f.setNow(time.Date(2024, time.April, 1, 9, 0, 0, 0, time.Local))
	if _, err := f.billing.GenerateBill(ctx, nil, BillRequest{
		Services: []ServiceLine{{Name: "Surgery", UnitPrice: 200, Quantity: 1}},
	}); err != nil {
		t.Fatal(err)
	}

	start, end := domain.DateOf(2024, time.January, 15), domain.DateOf(2024, time.March, 10)
	first, err := f.analytics.Report(ctx, start, end)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if first.TotalRevenue != 190 || first.TotalExpenses != 60 || first.NetProfit != 130 {
		t.Fatalf("totals: revenue=%v expenses=%v net=%v", first.TotalRevenue, first.TotalExpenses, first.NetProfit)
	}
	if first.ServicesSold["Consultation"] != 3 || first.ServicesSold["Grooming"] != 1 || first.ServicesSold["Surgery"] != 0 {
		t.Fatalf("services: %v", first.ServicesSold)
	}
	if len(first.Monthly) != 3 || first.Monthly[1].Revenue != 190 {
		t.Fatalf("monthly: %+v", first.Monthly)
	}
	if len(first.Inventory) != 1 || first.Inventory[0].PotentialProfit != 20 {
		t.Fatalf("inventory snapshot: %+v", first.Inventory)
	}

	second, err := f.analytics.Report(ctx, start, end)
	if err != nil {
		t.Fatalf("second report: %v", err)
	}
	if second.TotalRevenue != first.TotalRevenue || second.TotalExpenses != first.TotalExpenses || second.NetProfit != first.NetProfit {
		t.Fatalf("repeated aggregation differs: %+v vs %+v", first, second)
	}
}

func TestReportRejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.analytics.Report(context.Background(), domain.DateOf(2024, time.March, 1), domain.DateOf(2024, time.February, 1))
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestExpenseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.expenses.Record(ctx, ExpenseInput{Category: "", Amount: 10}); !IsValidation(err) {
		t.Fatalf("empty category: %v", err)
	}
	if _, err := f.expenses.Record(ctx, ExpenseInput{Category: "Supplies", Amount: 0}); !IsValidation(err) {
		t.Fatalf("zero amount: %v", err)
	}
	e, err := f.expenses.Record(ctx, ExpenseInput{Category: "Supplies", Amount: 12.5, Description: "gloves"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !e.ExpenseDate.Equal(domain.NewDate(fixedNow)) {
		t.Fatalf("expense date = %s", e.ExpenseDate)
	}
}
