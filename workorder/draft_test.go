package workorder

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"autoservice-backend/models"
)

var fixedNow = time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func serverOrder() models.Order {
	return models.Order{
		ID:       "000007",
		Date:     "01.03.2026",
		Customer: "Petrov",
		Car:      "Lada Vesta",
		Status:   models.StatusInProgress,
		Services: []models.LineItem{{ID: 1, Title: "a", Qty: 1, Price: 100}, {ID: 2, Title: "b", Qty: 2, Price: 50}},
		Parts:    []models.LineItem{},
		Payments: []models.Payment{},
	}
}

func TestReconcileDraftScalarWinsArrayFallsBack(t *testing.T) {
	server := serverOrder()
	draft := &models.OrderDraft{Customer: strPtr("X")}

	got := Reconcile(&server, draft, fixedNow)
	if got.Customer != "X" {
		t.Fatalf("customer = %q", got.Customer)
	}
	if !reflect.DeepEqual(got.Services, server.Services) {
		t.Fatalf("services = %+v", got.Services)
	}
	if got.Car != "Lada Vesta" {
		t.Fatalf("car = %q", got.Car)
	}
}

func TestReconcileDraftArraysReplaceWholesale(t *testing.T) {
	server := serverOrder()
	services := []models.LineItem{{ID: 9, Title: "only", Qty: 1, Price: 1}}
	draft := &models.OrderDraft{Services: &services}

	got := Reconcile(&server, draft, fixedNow)
	if len(got.Services) != 1 || got.Services[0].ID != 9 {
		t.Fatalf("services = %+v", got.Services)
	}
	services[0].Title = "mutated"
	if got.Services[0].Title != "only" {
		t.Fatal("result shares draft slice")
	}
}

func TestReconcileEmptyDraftIgnored(t *testing.T) {
	server := serverOrder()
	empty := []models.LineItem{}
	draft := &models.OrderDraft{Customer: strPtr(" "), Car: strPtr(""), Services: &empty}

	got := Reconcile(&server, draft, fixedNow)
	if !reflect.DeepEqual(got, server) {
		t.Fatalf("got %+v, want server order", got)
	}
}

func TestReconcileFallbacks(t *testing.T) {
	got := Reconcile(nil, nil, fixedNow)
	if got.Date != "09.03.2026" || got.Status != models.StatusNew || got.Services == nil {
		t.Fatalf("skeleton = %+v", got)
	}

	draft := &models.OrderDraft{Customer: strPtr("Ivanov"), Reason: strPtr("noise")}
	got = Reconcile(nil, draft, fixedNow)
	if got.Customer != "Ivanov" || got.Reason != "noise" || got.Date != "09.03.2026" {
		t.Fatalf("draft-only = %+v", got)
	}
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	server := serverOrder()
	before := server.Clone()
	services := []models.LineItem{{ID: 3, Title: "c", Qty: 1, Price: 10}}
	draft := &models.OrderDraft{Customer: strPtr("Y"), Services: &services}

	got := Reconcile(&server, draft, fixedNow)
	got.Services[0].Price = 999
	got.Customer = "Z"

	if !reflect.DeepEqual(server, before) {
		t.Fatal("server order mutated")
	}
	if services[0].Price != 10 || *draft.Customer != "Y" {
		t.Fatal("draft mutated")
	}
}

func TestDraftKey(t *testing.T) {
	if DraftKey("") != "order-draft-new" || DraftKey("000042") != "order-draft-000042" {
		t.Fatal("unexpected draft key")
	}
}

func TestDraftStores(t *testing.T) {
	stores := map[string]DraftStore{
		"memory": NewMemoryDrafts(),
		"file":   NewFileDrafts(filepath.Join(t.TempDir(), "drafts", "drafts.json")),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			if d, err := ReadDraft(store, "order-draft-1"); err != nil || d != nil {
				t.Fatalf("missing draft: %v %v", d, err)
			}
			o := serverOrder()
			if err := WriteDraft(store, "order-draft-1", o); err != nil {
				t.Fatalf("write: %v", err)
			}
			d, err := ReadDraft(store, "order-draft-1")
			if err != nil || d == nil {
				t.Fatalf("read: %v %v", d, err)
			}
			if got := d.ApplyTo(models.Order{}); !reflect.DeepEqual(got, o) {
				t.Fatalf("round trip: %+v", got)
			}
			if err := store.Remove("order-draft-1"); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if _, ok, _ := store.Get("order-draft-1"); ok {
				t.Fatal("draft still present")
			}
			if err := store.Remove("order-draft-1"); err != nil {
				t.Fatalf("second remove: %v", err)
			}
		})
	}
}
