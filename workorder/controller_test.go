package workorder

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"autoservice-backend/models"
)

func newTestController(store OrderStore, tickets TicketService, drafts DraftStore, opts ...Option) *Controller {
	base := []Option{WithClock(func() time.Time { return fixedNow })}
	return NewController(store, tickets, drafts, append(base, opts...)...)
}

func pricedOrder(id string) models.Order {
	return models.Order{
		ID:       id,
		Date:     "05.03.2026",
		Customer: "Sidorov",
		Status:   models.StatusInProgress,
		Services: []models.LineItem{{ID: 1, Title: "Work", Qty: 1, Price: 2000}},
		Parts:    []models.LineItem{{ID: 2, Title: "Filter", Qty: 1, Price: 500}},
		Payments: []models.Payment{},
	}
}

func TestNewOrderCreation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seed(41)
	drafts := NewMemoryDrafts()
	var navigated string
	c := newTestController(store, &fakeTickets{}, drafts, WithNavigate(func(id string) { navigated = id }))

	o, err := c.Load(ctx, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if o.ID != "" || o.Status != models.StatusNew || o.Date != "09.03.2026" {
		t.Fatalf("unexpected new order %+v", o)
	}

	if err := c.Edit(func(o *models.Order) { o.Customer = "Ivanov" }); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := c.AddLineItem(ServiceLines, "Diagnostics", "1", "1500"); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if got := c.Order().Status; got != models.StatusInProgress {
		t.Fatalf("status = %s", got)
	}
	if _, ok, _ := drafts.Get(DraftKey("")); !ok {
		t.Fatal("draft for new order not written")
	}

	saved, err := c.Save(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != "000042" || navigated != "000042" {
		t.Fatalf("id = %q, navigated = %q", saved.ID, navigated)
	}
	if _, ok, _ := drafts.Get(DraftKey("")); ok {
		t.Fatal("draft under the new-order key survived the first save")
	}
	if _, ok, _ := drafts.Get(DraftKey("000042")); !ok {
		t.Fatal("draft not moved to the assigned id")
	}
	if c.Dirty() {
		t.Fatal("dirty right after save")
	}

	reader := newTestController(store, &fakeTickets{}, NewMemoryDrafts())
	loaded, _ := reader.Load(ctx, "000042")
	if len(loaded.Services) != 1 || loaded.Services[0].Title != "Diagnostics" || loaded.Services[0].Price != 1500 {
		t.Fatalf("services after reload = %+v", loaded.Services)
	}
	if loaded.Status != models.StatusInProgress {
		t.Fatalf("status after reload = %s", loaded.Status)
	}
}

func TestAcceptPaymentWithPercentDiscount(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000010"))
	tickets := &fakeTickets{}
	c := newTestController(store, tickets, NewMemoryDrafts())

	if _, err := c.Load(ctx, "000010"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.SetDiscount("10", "0"); err != nil {
		t.Fatalf("discount: %v", err)
	}
	tot := c.Totals()
	if tot.DiscountValue != 200 || tot.Total != 2300 {
		t.Fatalf("totals = %+v", tot)
	}

	res, err := c.AcceptPayment(ctx, models.MethodCash, "")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if res.TicketErr != nil {
		t.Fatalf("ticket: %v", res.TicketErr)
	}
	if len(res.Order.Payments) != 1 || res.Order.Payments[0].Amount != 2300 || res.Order.Payments[0].Method != models.MethodCash {
		t.Fatalf("payments = %+v", res.Order.Payments)
	}
	if res.Order.Payments[0].Date != "05.03.2026" {
		t.Fatalf("payment date = %q", res.Order.Payments[0].Date)
	}
	if res.Order.Status != models.StatusPayed {
		t.Fatalf("status = %s", res.Order.Status)
	}
	if tickets.generated() != 1 {
		t.Fatalf("ticket generated %d times", tickets.generated())
	}
	if res.Ticket == nil || res.Order.PdfURL == nil || *res.Order.PdfURL != res.Ticket.URL {
		t.Fatalf("ticket not stamped: %+v", res.Order)
	}

	stored, _ := store.GetOrder(ctx, "000010")
	if stored.Status != models.StatusPayed || stored.PdfPath == nil || *stored.PdfPath != "tickets/000010/ticket-000010.pdf" {
		t.Fatalf("stored order = %+v", stored)
	}
	if Due(stored) != 0 {
		t.Fatalf("due after payment = %v", Due(stored))
	}
}

func TestAcceptPaymentPartialAmount(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000011"))
	c := newTestController(store, &fakeTickets{}, NewMemoryDrafts())
	c.Load(ctx, "000011")

	res, err := c.AcceptPayment(ctx, models.MethodCard, "1000,50")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got := res.Order.Payments[0].Amount; got != 1000.5 {
		t.Fatalf("amount = %v", got)
	}
	if got := Due(res.Order); got != 1499.5 {
		t.Fatalf("due = %v", got)
	}
}

func TestDeferredPayment(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	o := pricedOrder("000012")
	url, path := "/old", "tickets/000012/old.pdf"
	o.PdfURL, o.PdfPath = &url, &path
	store.put(o)
	tickets := &fakeTickets{}
	c := newTestController(store, tickets, NewMemoryDrafts())
	c.Load(ctx, "000012")

	res, err := c.AcceptPayment(ctx, models.MethodLater, "500")
	if err != nil {
		t.Fatalf("accept later: %v", err)
	}
	if res.Order.Status != models.StatusPendingPayment {
		t.Fatalf("status = %s", res.Order.Status)
	}
	for _, p := range res.Order.Payments {
		if p.Amount != 0 {
			t.Fatalf("deferred payment recorded amount %v", p.Amount)
		}
	}
	if tickets.generated() != 0 {
		t.Fatal("ticket generated for deferred payment")
	}
	if res.Order.PdfURL != nil || res.Order.PdfPath != nil {
		t.Fatal("ticket reference not cleared")
	}

	settled, err := c.SettlePending(ctx, models.MethodLater)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.Order.Status != models.StatusPayed || len(settled.Order.Payments) != 1 {
		t.Fatalf("settled = %+v", settled.Order)
	}
	if p := settled.Order.Payments[0]; p.Method != models.MethodCash || p.Amount != 2500 {
		t.Fatalf("settle payment = %+v", p)
	}
	if tickets.generated() != 1 {
		t.Fatalf("tickets generated = %d", tickets.generated())
	}

	if _, err := c.SettlePending(ctx, models.MethodCash); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("settle on payed order: %v", err)
	}
}

func TestSaveFallsBackToCreateOn404(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000005"))
	c := newTestController(store, &fakeTickets{}, NewMemoryDrafts())
	c.Load(ctx, "000005")

	if err := store.DeleteOrder(ctx, "000005"); err != nil {
		t.Fatal(err)
	}
	c.Edit(func(o *models.Order) { o.Reason = "brakes squeal" })

	saved, err := c.Save(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != "000006" || c.Order().ID != "000006" {
		t.Fatalf("adopted id = %q / %q", saved.ID, c.Order().ID)
	}
	if c.LastError() != nil || c.Phase() != PhaseSaved {
		t.Fatalf("phase %s err %v", c.Phase(), c.LastError())
	}
	if store.creates != 1 || store.updates != 1 {
		t.Fatalf("creates=%d updates=%d", store.creates, store.updates)
	}
}

func TestSaveFailureKeepsEdits(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000020"))
	c := newTestController(store, &fakeTickets{}, NewMemoryDrafts())
	c.Load(ctx, "000020")

	store.updateFn = func(ctx context.Context, id string, o models.Order) (models.Order, error) {
		return models.Order{}, errors.New("connection reset")
	}
	c.Edit(func(o *models.Order) { o.Car = "Kia Rio" })

	if _, err := c.Save(ctx); err == nil {
		t.Fatal("expected save error")
	}
	if c.Order().Car != "Kia Rio" || !c.Dirty() {
		t.Fatal("edits lost after failed save")
	}
	if c.Phase() != PhaseError || c.LastError() == nil {
		t.Fatalf("phase %s err %v", c.Phase(), c.LastError())
	}
}

func TestTicketFailureKeepsPayment(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000030"))
	tickets := &fakeTickets{fail: true}
	c := newTestController(store, tickets, NewMemoryDrafts())
	c.Load(ctx, "000030")

	res, err := c.AcceptPayment(ctx, models.MethodCash, "")
	if err != nil {
		t.Fatalf("payment should succeed: %v", err)
	}
	if !errors.Is(res.TicketErr, ErrTicketFailed) || !errors.Is(c.TicketError(), ErrTicketFailed) {
		t.Fatalf("ticket error = %v", res.TicketErr)
	}
	stored, _ := store.GetOrder(ctx, "000030")
	if stored.Status != models.StatusPayed || len(stored.Payments) != 1 {
		t.Fatalf("payment rolled back: %+v", stored)
	}

	tickets.mu.Lock()
	tickets.fail = false
	tickets.mu.Unlock()
	ref, err := c.RetryTicket(ctx)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if tickets.generated() != 2 || c.TicketError() != nil {
		t.Fatalf("generated=%d ticketErr=%v", tickets.generated(), c.TicketError())
	}
	stored, _ = store.GetOrder(ctx, "000030")
	if stored.PdfURL == nil || *stored.PdfURL != ref.URL {
		t.Fatalf("retry did not stamp order: %+v", stored)
	}
	if len(stored.Payments) != 1 {
		t.Fatalf("retry duplicated payment: %+v", stored.Payments)
	}
}

func TestRetryTicketRequiresPayedOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000031"))
	c := newTestController(store, &fakeTickets{}, NewMemoryDrafts())
	c.Load(ctx, "000031")
	if _, err := c.RetryTicket(ctx); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v", err)
	}
}

func TestAcceptPaymentRejectsReentry(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000040"))
	entered := make(chan struct{})
	release := make(chan struct{})
	tickets := &fakeTickets{generate: func(ctx context.Context, o models.Order) (models.TicketRef, error) {
		close(entered)
		<-release
		return models.TicketRef{URL: "/u", Path: "p"}, nil
	}}
	c := newTestController(store, tickets, NewMemoryDrafts())
	c.Load(ctx, "000040")

	done := make(chan error, 1)
	go func() {
		_, err := c.AcceptPayment(ctx, models.MethodCash, "")
		done <- err
	}()
	<-entered

	if _, err := c.AcceptPayment(ctx, models.MethodCash, ""); !errors.Is(err, ErrBusy) {
		t.Fatalf("second accept: %v", err)
	}
	if _, err := c.Save(ctx); !errors.Is(err, ErrBusy) {
		t.Fatalf("save during payment: %v", err)
	}
	if _, err := c.Load(ctx, "000040"); !errors.Is(err, ErrBusy) {
		t.Fatalf("load during payment: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if tickets.generated() != 1 {
		t.Fatalf("tickets generated = %d", tickets.generated())
	}
	if got := c.Order().Payments; len(got) != 1 {
		t.Fatalf("payments = %+v", got)
	}
}

func TestLoadTimeoutFallsBackToDraft(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.getFn = func(ctx context.Context, id string) (models.Order, error) {
		<-ctx.Done()
		return models.Order{}, ctx.Err()
	}
	drafts := NewMemoryDrafts()
	if err := WriteDraft(drafts, DraftKey("000003"), models.Order{ID: "000003", Customer: "Draft", Date: "01.01.2026"}); err != nil {
		t.Fatal(err)
	}
	c := newTestController(store, &fakeTickets{}, drafts, WithLoadTimeout(20*time.Millisecond))

	start := time.Now()
	o, err := c.Load(ctx, "000003")
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("load did not honour its timeout")
	}
	if o.Customer != "Draft" || o.ID != "000003" || o.Status != models.StatusInProgress {
		t.Fatalf("fallback order = %+v", o)
	}
	if !errors.Is(c.LoadError(), ErrLoadFailed) || c.Phase() != PhaseError {
		t.Fatalf("load error = %v phase = %s", c.LoadError(), c.Phase())
	}
	if err := c.Edit(func(o *models.Order) { o.Phone = "+7 900" }); err != nil {
		t.Fatalf("edit after failed load: %v", err)
	}

	empty := newTestController(store, &fakeTickets{}, NewMemoryDrafts(), WithLoadTimeout(10*time.Millisecond))
	o, _ = empty.Load(ctx, "000004")
	if o.ID != "000004" || o.Date != "09.03.2026" || o.HasContent() {
		t.Fatalf("skeleton fallback = %+v", o)
	}
}

func TestPersistDraftWaitsForHydration(t *testing.T) {
	ctx := context.Background()
	drafts := NewMemoryDrafts()
	WriteDraft(drafts, DraftKey(""), models.Order{Customer: "Keep"})
	c := newTestController(newMemStore(), &fakeTickets{}, drafts)

	if err := c.PersistDraft(); !errors.Is(err, ErrNotHydrated) {
		t.Fatalf("persist before load: %v", err)
	}
	c.Edit(func(o *models.Order) { o.Customer = "" })
	d, _ := ReadDraft(drafts, DraftKey(""))
	if d == nil || d.Customer == nil || *d.Customer != "Keep" {
		t.Fatal("draft overwritten before hydration")
	}

	o, _ := c.Load(ctx, "")
	if o.Customer != "Keep" {
		t.Fatalf("draft not restored: %+v", o)
	}
	if err := c.PersistDraft(); err != nil {
		t.Fatalf("persist after load: %v", err)
	}
}

func TestLineItemEditing(t *testing.T) {
	ctx := context.Background()
	c := newTestController(newMemStore(), &fakeTickets{}, NewMemoryDrafts())
	c.Load(ctx, "")

	a, _ := c.AddLineItem(PartLines, "Oil", "4", "900")
	b, _ := c.AddLineItem(PartLines, "Filter", "1", "450")
	if a.ID == b.ID {
		t.Fatal("line ids collide")
	}
	if _, err := c.AddLineItem(PartLines, "  ", "1", "1"); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("empty add: %v", err)
	}
	if _, err := c.AddLineItem("tyres", "x", "1", "1"); !errors.Is(err, ErrInvalidLineKind) {
		t.Fatalf("bad kind: %v", err)
	}

	if err := c.EditLineItem(PartLines, a.ID, "Oil 5W-30", "abc", "1 000,5"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	parts := c.Order().Parts
	if parts[0].Title != "Oil 5W-30" || parts[0].Qty != 0 || parts[0].Price != 1000.5 {
		t.Fatalf("edited row = %+v", parts[0])
	}

	if err := c.EditLineItem(PartLines, a.ID, "   ", "1", "1"); err != nil {
		t.Fatalf("clear title: %v", err)
	}
	parts = c.Order().Parts
	if len(parts) != 1 || parts[0].ID != b.ID {
		t.Fatalf("row not removed: %+v", parts)
	}

	if err := c.DeleteLineItem(PartLines, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.DeleteLineItem(PartLines, b.ID); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if got := c.Order().Status; got != models.StatusNew {
		t.Fatalf("status after removing everything = %s", got)
	}
}

func TestChangeStatusIsExplicit(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	o := pricedOrder("000050")
	o.Status = models.StatusPayed
	o.Payments = []models.Payment{{ID: 1, Method: models.MethodCash, Amount: 2500}}
	store.put(o)
	c := newTestController(store, &fakeTickets{}, NewMemoryDrafts())
	c.Load(ctx, "000050")

	if _, err := c.ChangeStatus(ctx, "DONE"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("invalid status: %v", err)
	}
	updates := store.updates
	if _, err := c.ChangeStatus(ctx, models.StatusPayed); err != nil || store.updates != updates {
		t.Fatalf("same-status change hit the store: err=%v updates=%d", err, store.updates)
	}

	saved, err := c.ChangeStatus(ctx, models.StatusInProgress)
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	if saved.Status != models.StatusInProgress {
		t.Fatalf("saved status = %s", saved.Status)
	}
	c.Edit(func(o *models.Order) { o.Reason = "correction" })
	if got := c.Order().Status; got != models.StatusInProgress {
		t.Fatalf("status after edit = %s", got)
	}
	if saved, _ := c.Save(ctx); saved.Status != models.StatusInProgress {
		t.Fatalf("status after save = %s", saved.Status)
	}
}

func TestRefreshNeverClobbersCompletedSave(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000060"))
	c := newTestController(store, &fakeTickets{}, NewMemoryDrafts())
	c.Load(ctx, "000060")

	server := pricedOrder("000060")
	server.Customer = "Server copy"
	store.put(server)
	if applied, err := c.Refresh(ctx); err != nil || !applied {
		t.Fatalf("clean refresh: applied=%v err=%v", applied, err)
	}
	if c.Order().Customer != "Server copy" {
		t.Fatal("refresh not applied")
	}

	c.Edit(func(o *models.Order) { o.Customer = "Unsaved" })
	if applied, _ := c.Refresh(ctx); applied {
		t.Fatal("refresh applied over unsaved edits")
	}

	started := make(chan struct{})
	release := make(chan struct{})
	store.getFn = func(ctx context.Context, id string) (models.Order, error) {
		close(started)
		<-release
		return server, nil
	}
	type result struct {
		applied bool
		err     error
	}
	done := make(chan result, 1)
	go func() {
		applied, err := c.Refresh(ctx)
		done <- result{applied, err}
	}()
	<-started
	if _, err := c.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	close(release)
	r := <-done
	if r.err != nil || r.applied {
		t.Fatalf("stale refresh: applied=%v err=%v", r.applied, r.err)
	}
	if c.Order().Customer != "Unsaved" {
		t.Fatalf("customer = %q", c.Order().Customer)
	}
}

func TestNoopSaveSkipsStore(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000070"))
	c := newTestController(store, &fakeTickets{}, NewMemoryDrafts())
	c.Load(ctx, "000070")

	if c.Dirty() {
		t.Fatal("dirty right after load")
	}
	if _, err := c.Save(ctx); err != nil || store.updates != 0 {
		t.Fatalf("no-op save: err=%v updates=%d", err, store.updates)
	}
	c.Edit(func(o *models.Order) { v := 1500.0; o.Mileage = &v })
	if !c.Dirty() {
		t.Fatal("not dirty after edit")
	}
	if _, err := c.Save(ctx); err != nil || store.updates != 1 {
		t.Fatalf("save: err=%v updates=%d", err, store.updates)
	}
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000080"))
	tickets := &fakeTickets{}
	drafts := NewMemoryDrafts()
	c := newTestController(store, tickets, drafts)
	c.Load(ctx, "000080")
	c.Edit(func(o *models.Order) { o.Reason = "x" })

	if err := c.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.count() != 0 {
		t.Fatal("order still stored")
	}
	if len(tickets.deleted) != 1 || tickets.deleted[0] != "000080" {
		t.Fatalf("ticket deletions = %v", tickets.deleted)
	}
	if _, ok, _ := drafts.Get(DraftKey("000080")); ok {
		t.Fatal("draft survived delete")
	}
	if c.Hydrated() || c.Order().ID != "" || c.Phase() != PhaseIdle {
		t.Fatalf("controller not reset: %+v", c.Order())
	}
}

func TestSuggestTitles(t *testing.T) {
	ctx := context.Background()
	c := newTestController(newMemStore(), &fakeTickets{}, NewMemoryDrafts(),
		WithCatalog(fakeCatalog{names: []string{"Wheel alignment", "Oil change"}}))
	if got := c.SuggestTitles(ctx, "OIL"); len(got) != 1 || got[0] != "Oil change" {
		t.Fatalf("catalog suggestions = %v", got)
	}

	offline := newTestController(newMemStore(), &fakeTickets{}, NewMemoryDrafts(),
		WithCatalog(fakeCatalog{err: errors.New("offline")}))
	got := offline.SuggestTitles(ctx, "замена")
	if len(got) == 0 {
		t.Fatal("no fallback suggestions")
	}
	for _, name := range got {
		if !strings.HasPrefix(name, "Замена") {
			t.Fatalf("unexpected suggestion %q", name)
		}
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })
	d.Trigger()
	d.Trigger()
	d.Trigger()
	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d", got)
	}

	d.Trigger()
	d.Flush()
	if got := calls.Load(); got != 2 {
		t.Fatalf("calls after flush = %d", got)
	}
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 2 {
		t.Fatalf("flushed call fired again: %d", got)
	}

	d.Trigger()
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 2 {
		t.Fatalf("stopped call fired: %d", got)
	}
}

// editDuringUpdate makes the first PUT run edit before it is stored.
func editDuringUpdate(t *testing.T, store *memStore, edit func() error) {
	t.Helper()
	edited := false
	store.updateFn = func(ctx context.Context, id string, o models.Order) (models.Order, error) {
		if !edited {
			edited = true
			if err := edit(); err != nil {
				t.Errorf("edit in flight: %v", err)
			}
		}
		o = o.Clone()
		o.ID = id
		store.put(o)
		return o, nil
	}
}

func TestEditDuringPaymentKeepsPayment(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000070"))
	c := newTestController(store, &fakeTickets{}, NewMemoryDrafts())
	c.Load(ctx, "000070")

	editDuringUpdate(t, store, func() error {
		return c.Edit(func(o *models.Order) { o.Reason = "Rattle at idle" })
	})
	res, err := c.AcceptPayment(ctx, models.MethodCash, "")
	if err != nil {
		t.Fatalf("accept payment: %v", err)
	}
	if res.TicketErr != nil {
		t.Fatalf("ticket: %v", res.TicketErr)
	}

	o := c.Order()
	if o.Reason != "Rattle at idle" {
		t.Fatalf("edit lost, reason = %q", o.Reason)
	}
	if o.Status != models.StatusPayed || len(o.Payments) != 1 {
		t.Fatalf("working order status=%s payments=%d", o.Status, len(o.Payments))
	}
	if o.PdfURL == nil {
		t.Fatal("ticket stamp lost")
	}

	if _, err := c.Save(ctx); err != nil {
		t.Fatalf("follow-up save: %v", err)
	}
	server, _ := store.GetOrder(ctx, "000070")
	if server.Status != models.StatusPayed || len(server.Payments) != 1 {
		t.Fatalf("server status=%s payments=%d", server.Status, len(server.Payments))
	}
	if server.Reason != "Rattle at idle" {
		t.Fatalf("server reason = %q", server.Reason)
	}
}

func TestEditDuringStatusChangeKeepsStatus(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000071"))
	c := newTestController(store, &fakeTickets{}, NewMemoryDrafts())
	c.Load(ctx, "000071")

	editDuringUpdate(t, store, func() error {
		_, err := c.AddLineItem(PartLines, "Gasket", "2", "150")
		return err
	})
	if _, err := c.ChangeStatus(ctx, models.StatusPendingPayment); err != nil {
		t.Fatalf("change status: %v", err)
	}
	o := c.Order()
	if o.Status != models.StatusPendingPayment {
		t.Fatalf("status = %s", o.Status)
	}
	if len(o.Parts) != 2 {
		t.Fatalf("parts = %d, want the added gasket kept", len(o.Parts))
	}
	if !c.Dirty() {
		t.Fatal("in-flight edit should stay unsaved")
	}

	if _, err := c.Save(ctx); err != nil {
		t.Fatalf("follow-up save: %v", err)
	}
	server, _ := store.GetOrder(ctx, "000071")
	if server.Status != models.StatusPendingPayment || len(server.Parts) != 2 {
		t.Fatalf("server status=%s parts=%d", server.Status, len(server.Parts))
	}
}

func TestRefreshWithoutLoadTimeout(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(pricedOrder("000072"))
	c := newTestController(store, &fakeTickets{}, NewMemoryDrafts(), WithLoadTimeout(0))
	c.Load(ctx, "000072")
	if c.LoadError() != nil {
		t.Fatalf("load: %v", c.LoadError())
	}

	server := pricedOrder("000072")
	server.Customer = "Fresh"
	store.getFn = func(ctx context.Context, id string) (models.Order, error) {
		if err := ctx.Err(); err != nil {
			return models.Order{}, err
		}
		if _, ok := ctx.Deadline(); ok {
			t.Error("refresh set a deadline with the timeout disabled")
		}
		return server, nil
	}
	applied, err := c.Refresh(ctx)
	if err != nil || !applied {
		t.Fatalf("refresh: applied=%v err=%v", applied, err)
	}
	if c.Order().Customer != "Fresh" {
		t.Fatalf("customer = %q", c.Order().Customer)
	}
}
