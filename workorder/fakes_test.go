package workorder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"autoservice-backend/models"
)

// memStore is an in-memory order persistence service.
type memStore struct {
	mu      sync.Mutex
	orders  map[string]models.Order
	lastSeq int

	getFn    func(ctx context.Context, id string) (models.Order, error)
	updateFn func(ctx context.Context, id string, o models.Order) (models.Order, error)
	createFn func(ctx context.Context, o models.Order) (models.Order, error)

	creates, updates, deletes int
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]models.Order{}}
}

// seed stores n orders so the next id is n+1.
func (s *memStore) seed(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.lastSeq++
		id := fmt.Sprintf("%06d", s.lastSeq)
		s.orders[id] = models.Order{ID: id, Status: models.StatusNew}
	}
}

func (s *memStore) put(o models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o.Clone()
	if n, err := strconv.Atoi(o.ID); err == nil && n > s.lastSeq {
		s.lastSeq = n
	}
}

func (s *memStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return o.Clone(), nil
}

func (s *memStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	return out, nil
}

func (s *memStore) CreateOrder(ctx context.Context, o models.Order) (models.Order, error) {
	if s.createFn != nil {
		return s.createFn(ctx, o)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	s.lastSeq++
	o = o.Clone()
	o.ID = fmt.Sprintf("%06d", s.lastSeq)
	o.EnsureCollections()
	s.orders[o.ID] = o
	return o.Clone(), nil
}

func (s *memStore) UpdateOrder(ctx context.Context, id string, o models.Order) (models.Order, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, o)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if _, ok := s.orders[id]; !ok {
		return models.Order{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	o = o.Clone()
	o.ID = id
	s.orders[id] = o
	return o.Clone(), nil
}

func (s *memStore) DeleteOrder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return ErrNotFound
	}
	s.deletes++
	delete(s.orders, id)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// fakeTickets counts generation calls and can be told to fail.
type fakeTickets struct {
	mu       sync.Mutex
	calls    int
	deleted  []string
	fail     bool
	generate func(ctx context.Context, o models.Order) (models.TicketRef, error)
}

var errPrinter = errors.New("printer on fire")

func (f *fakeTickets) GenerateTicket(ctx context.Context, o models.Order) (models.TicketRef, error) {
	f.mu.Lock()
	f.calls++
	fail := f.fail
	f.mu.Unlock()
	if f.generate != nil {
		return f.generate(ctx, o)
	}
	if fail {
		return models.TicketRef{}, errPrinter
	}
	name := "ticket-" + o.ID + ".pdf"
	return models.TicketRef{
		URL:  "/api/tickets/" + o.ID + "/pdf?filename=" + name,
		Path: "tickets/" + o.ID + "/" + name,
	}, nil
}

func (f *fakeTickets) DeleteTickets(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, orderID)
	return nil
}

func (f *fakeTickets) generated() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCatalog struct {
	names []string
	err   error
}

func (f fakeCatalog) SuggestServices(ctx context.Context, query string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return FilterNames(f.names, query, 20), nil
}
