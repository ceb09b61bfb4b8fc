package workorder

import (
	"testing"

	"autoservice-backend/models"
)

func TestNormalizeStatus(t *testing.T) {
	cases := map[models.WorkStatus]models.WorkStatus{
		"NEW":             models.StatusNew,
		"in progress":     models.StatusInProgress,
		"ISSUED":          models.StatusInProgress,
		"pending-payment": models.StatusPendingPayment,
		"payed":           models.StatusPayed,
		"PAID":            models.StatusPayed,
		"":                models.StatusNew,
		"weird":           models.StatusNew,
	}
	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Errorf("NormalizeStatus(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestDeriveStatus(t *testing.T) {
	mileage := 120000.0
	zero := 0.0
	paid := []models.Payment{{ID: 1, Method: models.MethodCash, Amount: 10}}

	cases := []struct {
		name     string
		order    models.Order
		explicit bool
		want     models.WorkStatus
	}{
		{"empty order", models.Order{Status: models.StatusNew}, false, models.StatusNew},
		{"whitespace only", models.Order{Customer: "   ", Reason: "\t"}, false, models.StatusNew},
		{"customer", models.Order{Customer: "Ivanov"}, false, models.StatusInProgress},
		{"company", models.Order{Company: "ООО Ромашка"}, false, models.StatusInProgress},
		{"mileage", models.Order{Mileage: &mileage}, false, models.StatusInProgress},
		{"zero mileage", models.Order{Mileage: &zero}, false, models.StatusNew},
		{"parts", models.Order{Parts: []models.LineItem{{ID: 1}}}, false, models.StatusInProgress},
		{"payments", models.Order{Customer: "X", Payments: paid}, false, models.StatusPayed},
		{"payed kept without content", models.Order{Status: models.StatusPayed}, false, models.StatusPayed},
		{"pending kept", models.Order{Status: models.StatusPendingPayment, Payments: paid}, false, models.StatusPendingPayment},
		{"in progress not explicit drops to new", models.Order{Status: models.StatusInProgress}, false, models.StatusNew},
		{"explicit in progress kept over payments", models.Order{Status: models.StatusInProgress, Payments: paid}, true, models.StatusInProgress},
		{"explicit new falls through", models.Order{Status: models.StatusNew, Customer: "A"}, true, models.StatusInProgress},
		{"legacy spelling", models.Order{Status: "paid"}, false, models.StatusPayed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStatus(tc.order, tc.explicit); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDeriveStatusIdempotent(t *testing.T) {
	paid := []models.Payment{{ID: 1, Method: models.MethodCard, Amount: 5}}
	orders := []models.Order{
		{},
		{Customer: "A"},
		{Payments: paid},
		{Status: models.StatusPendingPayment},
		{Status: models.StatusInProgress, Payments: paid},
		{Status: "ISSUED", Car: "Lada"},
	}
	for _, explicit := range []bool{false, true} {
		for i, o := range orders {
			first := DeriveStatus(o, explicit)
			o.Status = first
			if again := DeriveStatus(o, explicit); again != first {
				t.Fatalf("order %d explicit=%v: %s then %s", i, explicit, first, again)
			}
		}
	}
}

func TestDeriveStatusPaymentsNeverRegress(t *testing.T) {
	o := models.Order{Payments: []models.Payment{{ID: 1, Method: models.MethodCash, Amount: 1}}}
	for _, s := range []models.WorkStatus{"", models.StatusNew, models.StatusInProgress, models.StatusPayed, models.StatusPendingPayment} {
		o.Status = s
		got := DeriveStatus(o, false)
		if got == models.StatusNew || got == models.StatusInProgress {
			t.Fatalf("status %q with payments derived %s", s, got)
		}
	}
}
