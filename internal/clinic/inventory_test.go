package clinic

import (
	"context"
	"errors"
	"testing"

	"vetclinic/m/domain"
	"vetclinic/m/internal/notify"
)

func TestAddRejectsSellingBelowPurchase(t *testing.T) {
	f := newFixture(t)
	pairs := []struct{ purchase, selling float64 }{
		{10, 9.99},
		{100, 1},
		{0.5, 0.25},
		{250, 249},
	}
	for _, p := range pairs {
		_, err := f.inventory.Add(context.Background(), ItemInput{
			ItemName: "Amoxicillin", StockCount: 5, PurchasePrice: p.purchase, SellingPrice: p.selling,
		})
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("purchase=%v selling=%v: expected ValidationError, got %v", p.purchase, p.selling, err)
		}
	}
	if n := f.count(t, "inventory"); n != 0 {
		t.Fatalf("inventory rows = %d, want 0", n)
	}
}

func TestAddValidatesFields(t *testing.T) {
	f := newFixture(t)
	yesterday := domain.NewDate(fixedNow).AddDays(-1)
	cases := map[string]ItemInput{
		"empty name":     {ItemName: " ", StockCount: 1, PurchasePrice: 1, SellingPrice: 2},
		"negative stock": {ItemName: "A", StockCount: -1, PurchasePrice: 1, SellingPrice: 2},
		"zero price":     {ItemName: "A", StockCount: 1, PurchasePrice: 0, SellingPrice: 2},
		"past expiry":    {ItemName: "A", StockCount: 1, PurchasePrice: 1, SellingPrice: 2, ExpiryDate: &yesterday},
	}
	for name, in := range cases {
		if _, err := f.inventory.Add(context.Background(), in); !IsValidation(err) {
			t.Fatalf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestAddDefaultsPurchaseDateAndPublishes(t *testing.T) {
	f := newFixture(t)
	expiry := domain.NewDate(fixedNow)
	item, err := f.inventory.Add(context.Background(), ItemInput{
		ItemName: "Vitamin B", StockCount: 4, PurchasePrice: 3, SellingPrice: 5, ExpiryDate: &expiry,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !item.PurchaseDate.Equal(domain.NewDate(fixedNow)) {
		t.Fatalf("purchase date = %s", item.PurchaseDate)
	}
	if !f.hub.saw(notify.TopicInventory) {
		t.Fatal("inventory change was not published")
	}
	if got := item.PotentialProfit(); got != 8 {
		t.Fatalf("potential profit = %v, want 8", got)
	}
}

func TestUpdateRevalidatesButAllowsOldExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addItem(t, "Flea drops", 10, 20, 30)

	if _, err := f.inventory.Update(ctx, id, ItemInput{ItemName: "Flea drops", StockCount: 10, PurchasePrice: 20, SellingPrice: 10}); !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	past := domain.NewDate(fixedNow).AddDays(-10)
	updated, err := f.inventory.Update(ctx, id, ItemInput{ItemName: "Flea drops", StockCount: 7, PurchasePrice: 20, SellingPrice: 35, ExpiryDate: &past})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := f.inventory.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.StockCount != 7 || got.SellingPrice != 35 || got.ExpiryDate == nil || !got.ExpiryDate.Equal(past) {
		t.Fatalf("unexpected item after update: %+v", got)
	}
	if !updated.PurchaseDate.Equal(got.PurchaseDate) {
		t.Fatalf("purchase date changed: %s vs %s", updated.PurchaseDate, got.PurchaseDate)
	}

	if _, err := f.inventory.Update(ctx, id+100, ItemInput{ItemName: "X", StockCount: 1, PurchasePrice: 1, SellingPrice: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestImportIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	rows := []ItemInput{
		{ItemName: "Gauze", StockCount: 100, PurchasePrice: 1, SellingPrice: 2},
		{ItemName: "Syringe", StockCount: -3, PurchasePrice: 1, SellingPrice: 2},
	}
	if _, err := f.inventory.Import(context.Background(), rows); !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if n := f.count(t, "inventory"); n != 0 {
		t.Fatalf("rows = %d after rejected import", n)
	}

	rows[1].StockCount = 3
	n, err := f.inventory.Import(context.Background(), rows)
	if err != nil || n != 2 {
		t.Fatalf("import: n=%d err=%v", n, err)
	}
	items, err := f.inventory.List(context.Background(), "syr")
	if err != nil || len(items) != 1 || items[0].ItemName != "Syringe" {
		t.Fatalf("filter: %v %+v", err, items)
	}
}

func TestBlankDatesMeanNoExpiryAndKeepPurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blank := domain.Date{}

	item, err := f.inventory.Add(ctx, ItemInput{
		ItemName: "Ear cleaner", StockCount: 3, PurchasePrice: 4, SellingPrice: 6, ExpiryDate: &blank,
	})
	if err != nil {
		t.Fatalf("add with blank expiry: %v", err)
	}
	if item.ExpiryDate != nil {
		t.Fatalf("expiry = %v, want none", item.ExpiryDate)
	}

	f.setNow(fixedNow.AddDate(0, 0, 5))
	blankPurchase := domain.Date{}
	if _, err := f.inventory.Update(ctx, item.ID, ItemInput{
		ItemName: "Ear cleaner", StockCount: 2, PurchasePrice: 4, SellingPrice: 6,
		PurchaseDate: &blankPurchase, ExpiryDate: &blank,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := f.inventory.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ExpiryDate != nil {
		t.Fatalf("stored expiry = %v, want none", got.ExpiryDate)
	}
	if !got.PurchaseDate.Equal(domain.NewDate(fixedNow)) {
		t.Fatalf("purchase date = %s, want unchanged", got.PurchaseDate)
	}
	expiring, err := f.reminders.ExpiringWithin(ctx, 30)
	if err != nil || len(expiring) != 0 {
		t.Fatalf("expiring = %+v, %v", expiring, err)
	}
}

func TestSeedSkipsStockedNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addItem(t, "Gauze", 7, 1, 2)
	expired := domain.NewDate(fixedNow).AddDays(-30)

	rows := []ItemInput{
		{ItemName: "Gauze", StockCount: 100, PurchasePrice: 1, SellingPrice: 2, ExpiryDate: &expired},
		{ItemName: "Syringe", StockCount: 50, PurchasePrice: 1, SellingPrice: 2},
		{ItemName: "Syringe", StockCount: 50, PurchasePrice: 1, SellingPrice: 2},
	}
	n, err := f.inventory.Seed(ctx, rows)
	if err != nil || n != 1 {
		t.Fatalf("seed: n=%d err=%v", n, err)
	}
	if n, err := f.inventory.Seed(ctx, rows); err != nil || n != 0 {
		t.Fatalf("second seed: n=%d err=%v", n, err)
	}
	if got := f.count(t, "inventory"); got != 2 {
		t.Fatalf("inventory rows = %d, want 2", got)
	}
	items, err := f.inventory.List(ctx, "gauze")
	if err != nil || len(items) != 1 || items[0].StockCount != 7 {
		t.Fatalf("existing item changed: %+v %v", items, err)
	}
}
