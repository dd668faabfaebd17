package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"vetclinic/m/domain"
)

func TestVaccinesDueToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := registration("+201234567", "Mona", "Rex")
	reg.Vaccines = []VaccineInput{
		{VaccineType: "خماسي", VaccineDate: domain.DateOf(2024, time.June, 8), NextIn: "1w"},
		{VaccineType: "Rabies", VaccineDate: domain.DateOf(2024, time.June, 8), NextIn: "2w"},
	}
	if _, err := f.patients.Register(ctx, reg); err != nil {
		t.Fatal(err)
	}

	due, err := f.reminders.VaccinesDueToday(ctx)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 || due[0].VaccineType != "خماسي" || due[0].PetName != "Rex" || due[0].OwnerPhone != "+201234567" {
		t.Fatalf("unexpected: %+v", due)
	}
}

func TestExpiringWithinIncludesExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := domain.NewDate(fixedNow)
	soon, later := today.AddDays(10), today.AddDays(45)
	for name, exp := range map[string]*domain.Date{"Soon": &soon, "Later": &later, "Never": nil} {
		if _, err := f.inventory.Add(ctx, ItemInput{ItemName: name, StockCount: 1, PurchasePrice: 1, SellingPrice: 2, ExpiryDate: exp}); err != nil {
			t.Fatal(err)
		}
	}
	// an item that expired after it was stocked
	old := f.addItem(t, "Expired", 1, 1, 2)
	past := today.AddDays(-3)
	if _, err := f.inventory.Update(ctx, old, ItemInput{ItemName: "Expired", StockCount: 1, PurchasePrice: 1, SellingPrice: 2, ExpiryDate: &past}); err != nil {
		t.Fatal(err)
	}

	items, err := f.reminders.ExpiringWithin(ctx, 0)
	if err != nil {
		t.Fatalf("expiring: %v", err)
	}
	if len(items) != 2 || items[0].ItemName != "Expired" || items[1].ItemName != "Soon" {
		t.Fatalf("unexpected: %+v", items)
	}
	items, err = f.reminders.ExpiringWithin(ctx, 60)
	if err != nil || len(items) != 3 {
		t.Fatalf("60 days: %v %d", err, len(items))
	}
}

func TestLowStockIsStrict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addItem(t, "Four", 4, 1, 2)
	f.addItem(t, "Five", 5, 1, 2)

	items, err := f.reminders.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(items) != 1 || items[0].ItemName != "Four" {
		t.Fatalf("unexpected: %+v", items)
	}
	items, err = f.reminders.BelowThreshold(ctx, 6)
	if err != nil || len(items) != 2 {
		t.Fatalf("threshold 6: %v %d", err, len(items))
	}
}

func TestScheduleAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.patients.Register(ctx, registration("+201234567", "Mona", "Rex")); err != nil {
		t.Fatal(err)
	}
	at := func(s string) domain.DateTime {
		dt, err := domain.ParseDateTime(s)
		if err != nil {
			t.Fatal(err)
		}
		return dt
	}

	late, err := f.appointments.Schedule(ctx, AppointmentInput{OwnerPhone: "+201234567", PetName: "rex", ScheduledAt: at("2024-06-20 16:00"), Purpose: "Checkup"})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if late.PetName == nil || *late.PetName != "Rex" || late.OwnerName != "Mona" {
		t.Fatalf("joined names missing: %+v", late)
	}
	// same slot twice is allowed
	for i := 0; i < 2; i++ {
		if _, err := f.appointments.Schedule(ctx, AppointmentInput{OwnerPhone: "+201234567", ScheduledAt: at("2024-06-18 09:00"), Purpose: "Vaccination"}); err != nil {
			t.Fatalf("schedule early %d: %v", i, err)
		}
	}

	list, err := f.appointments.List(ctx)
	if err != nil || len(list) != 3 {
		t.Fatalf("list: %v %d", err, len(list))
	}
	if list[2].ID != late.ID {
		t.Fatalf("not ordered by time: %+v", list)
	}

	if _, err := f.appointments.Schedule(ctx, AppointmentInput{OwnerPhone: "+209999999", ScheduledAt: at("2024-06-20 16:00"), Purpose: "Checkup"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown owner: %v", err)
	}
	if _, err := f.appointments.Schedule(ctx, AppointmentInput{OwnerPhone: "+201234567", PetName: "Ghost", ScheduledAt: at("2024-06-20 16:00"), Purpose: "Checkup"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown pet: %v", err)
	}
	if _, err := f.appointments.Schedule(ctx, AppointmentInput{OwnerPhone: "+201234567", ScheduledAt: at("2024-06-20 16:00")}); !IsValidation(err) {
		t.Fatalf("missing purpose: %v", err)
	}

	if err := f.appointments.Delete(ctx, late.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.appointments.Get(ctx, late.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get deleted: %v", err)
	}
}

func TestOperatorsFirstIsAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.operators.Register(ctx, "Reception", "secret", "staff")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.Role != domain.RoleAdmin || first.Username != "reception" {
		t.Fatalf("first operator: %+v", first)
	}
	second, err := f.operators.Register(ctx, "vet", "secret2", "")
	if err != nil || second.Role != domain.RoleStaff {
		t.Fatalf("second: %v %+v", err, second)
	}
	if _, err := f.operators.Register(ctx, "VET", "x", "staff"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate: %v", err)
	}

	if _, err := f.operators.Authenticate(ctx, "vet", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if err := f.operators.ResetPassword(ctx, second.ID, "changed"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := f.operators.Authenticate(ctx, "vet", "changed"); err != nil {
		t.Fatalf("login after reset: %v", err)
	}
}
