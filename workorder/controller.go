package workorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"autoservice-backend/models"
	"autoservice-backend/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultLoadTimeout bounds the order fetch in Load and Refresh.
const DefaultLoadTimeout = 8 * time.Second

// Phase is the controller's state machine position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseSaving
	PhasePaying
	PhaseSaved
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseSaving:
		return "saving"
	case PhasePaying:
		return "paying"
	case PhaseSaved:
		return "saved"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

func (p Phase) busy() bool {
	return p == PhaseLoading || p == PhaseSaving || p == PhasePaying
}

// LineKind selects the services or parts collection.
type LineKind string

const (
	ServiceLines LineKind = "services"
	PartLines    LineKind = "parts"
)

// PaymentResult reports a payment and its ticket independently.
// TicketErr set means the payment is committed but the ticket is missing.
type PaymentResult struct {
	Order     models.Order
	Ticket    *models.TicketRef
	TicketErr error
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLoadTimeout(d time.Duration) Option {
	return func(c *Controller) { c.loadTimeout = d }
}

// WithDraftDelay debounces draft writes; zero writes on every change.
func WithDraftDelay(d time.Duration) Option {
	return func(c *Controller) { c.draftDelay = d }
}

func WithCatalog(cat Catalog) Option {
	return func(c *Controller) { c.catalog = cat }
}

// WithNavigate is called with the new id when a save assigns one.
func WithNavigate(fn func(id string)) Option {
	return func(c *Controller) { c.onNavigate = fn }
}

// Controller owns one work order being edited and drives its load, save,
// status and payment flows against the injected collaborators.
type Controller struct {
	store       OrderStore
	tickets     TicketService
	drafts      DraftStore
	catalog     Catalog
	log         *zap.Logger
	now         func() time.Time
	loadTimeout time.Duration
	draftDelay  time.Duration
	onNavigate  func(id string)
	tracer      trace.Tracer
	persist     *Debouncer

	mu             sync.Mutex
	phase          Phase
	order          models.Order
	explicitStatus bool
	hydrated       bool
	lastSaved      string
	saves          uint64
	lastLineID     int64
	loadErr        error
	lastErr        error
	ticketErr      error
}

func NewController(store OrderStore, tickets TicketService, drafts DraftStore, opts ...Option) *Controller {
	c := &Controller{
		store:       store,
		tickets:     tickets,
		drafts:      drafts,
		log:         zap.NewNop(),
		now:         time.Now,
		loadTimeout: DefaultLoadTimeout,
		tracer:      otel.Tracer("autoservice-backend/workorder"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.order = Skeleton(c.now())
	c.persist = NewDebouncer(c.draftDelay, c.persistQuietly)
	return c
}

// Load fetches order id (empty for a new order), reconciles it with the
// cached draft and makes the result the working order. A failed fetch is not
// returned as an error: the best-effort order is returned and the failure is
// kept in LoadError. The only error is ErrBusy.
func (c *Controller) Load(ctx context.Context, id string) (models.Order, error) {
	ctx, span := c.tracer.Start(ctx, "workorder.Load", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	if err := c.begin(PhaseLoading); err != nil {
		return models.Order{}, err
	}
	c.persist.Stop()

	var server *models.Order
	var fetchErr error
	if id != "" {
		fetchCtx, cancel := ctx, context.CancelFunc(func() {})
		if c.loadTimeout > 0 {
			fetchCtx, cancel = context.WithTimeout(ctx, c.loadTimeout)
		}
		o, err := c.store.GetOrder(fetchCtx, id)
		cancel()
		if err != nil {
			fetchErr = err
			c.log.Warn("order fetch failed, using local data", zap.String("id", id), zap.Error(err))
			endSpan(span, err)
		} else {
			server = &o
		}
	}

	draft, err := ReadDraft(c.drafts, DraftKey(id))
	if err != nil {
		c.log.Warn("draft unreadable", zap.String("key", DraftKey(id)), zap.Error(err))
	}

	merged := Reconcile(server, draft, c.now())
	if merged.ID == "" {
		merged.ID = id
	}
	explicit := merged.Status != models.StatusNew
	merged.Status = DeriveStatus(merged, explicit)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = merged
	c.explicitStatus = explicit
	c.hydrated = true
	c.lastErr, c.ticketErr = nil, nil
	c.lastSaved = ""
	if server != nil {
		c.lastSaved = snapshot(*server)
	}
	if fetchErr != nil {
		c.loadErr = fmt.Errorf("%w: %v", ErrLoadFailed, fetchErr)
		c.phase = PhaseError
	} else {
		c.loadErr = nil
		c.phase = PhaseReady
	}
	return c.order.Clone(), nil
}

// Refresh re-fetches the working order and applies it only when no save
// completed meanwhile and there are no unsaved local edits.
func (c *Controller) Refresh(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if !c.hydrated {
		c.mu.Unlock()
		return false, ErrNotHydrated
	}
	id, seq := c.order.ID, c.saves
	c.mu.Unlock()
	if id == "" {
		return false, ErrNoOrderID
	}

	fetchCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.loadTimeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, c.loadTimeout)
	}
	o, err := c.store.GetOrder(fetchCtx, id)
	cancel()
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saves != seq || c.phase.busy() || c.order.ID != id || c.dirtyLocked() {
		return false, nil
	}
	o.EnsureCollections()
	o.Status = NormalizeStatus(o.Status)
	c.order = o.Clone()
	c.lastSaved = snapshot(o)
	c.explicitStatus = o.Status != models.StatusNew
	return true, nil
}

// PersistDraft writes the working order to the draft cache. Before the first
// Load completes it refuses with ErrNotHydrated so a blank order never
// overwrites a real draft.
func (c *Controller) PersistDraft() error {
	c.mu.Lock()
	if !c.hydrated {
		c.mu.Unlock()
		return ErrNotHydrated
	}
	o := c.order.Clone()
	c.mu.Unlock()
	return WriteDraft(c.drafts, DraftKey(o.ID), o)
}

// FlushDraft forces a pending debounced draft write.
func (c *Controller) FlushDraft() {
	c.persist.Flush()
}

func (c *Controller) persistQuietly() {
	if err := c.PersistDraft(); err != nil && !errors.Is(err, ErrNotHydrated) {
		c.log.Warn("draft write failed", zap.Error(err))
	}
}

// Edit applies fn to the working order. The id and status are not editable
// here; status is re-derived after fn runs.
func (c *Controller) Edit(fn func(o *models.Order)) error {
	return c.mutate(func(o *models.Order) error {
		fn(o)
		return nil
	})
}

// SetDiscount stores raw discount inputs; blank or malformed input clears the field.
func (c *Controller) SetDiscount(percentInput, amountInput string) error {
	return c.mutate(func(o *models.Order) error {
		o.DiscountPercent = optionalDecimal(percentInput)
		o.DiscountAmount = optionalDecimal(amountInput)
		return nil
	})
}

// AddLineItem appends a row with a locally generated id.
func (c *Controller) AddLineItem(kind LineKind, title, qtyInput, priceInput string) (models.LineItem, error) {
	var added models.LineItem
	err := c.mutate(func(o *models.Order) error {
		items, err := linesOf(o, kind)
		if err != nil {
			return err
		}
		title = strings.TrimSpace(title)
		if title == "" {
			return ErrEmptyTitle
		}
		added = models.LineItem{
			ID:    c.nextLineID(o),
			Title: title,
			Qty:   utils.DecimalOrZero(qtyInput),
			Price: utils.DecimalOrZero(priceInput),
		}
		*items = append(*items, added)
		return nil
	})
	return added, err
}

// EditLineItem rewrites row id. An emptied title removes the row; quantities
// and prices that do not parse become 0.
func (c *Controller) EditLineItem(kind LineKind, id int64, title, qtyInput, priceInput string) error {
	return c.mutate(func(o *models.Order) error {
		items, err := linesOf(o, kind)
		if err != nil {
			return err
		}
		idx := indexOfLine(*items, id)
		if idx < 0 {
			return ErrLineNotFound
		}
		title = strings.TrimSpace(title)
		if title == "" {
			*items = append((*items)[:idx], (*items)[idx+1:]...)
			return nil
		}
		(*items)[idx] = models.LineItem{
			ID:    id,
			Title: title,
			Qty:   utils.DecimalOrZero(qtyInput),
			Price: utils.DecimalOrZero(priceInput),
		}
		return nil
	})
}

func (c *Controller) DeleteLineItem(kind LineKind, id int64) error {
	return c.mutate(func(o *models.Order) error {
		items, err := linesOf(o, kind)
		if err != nil {
			return err
		}
		idx := indexOfLine(*items, id)
		if idx < 0 {
			return ErrLineNotFound
		}
		*items = append((*items)[:idx], (*items)[idx+1:]...)
		return nil
	})
}

// mutate runs fn on a copy of the working order and commits it when fn succeeds.
// Status is re-derived synchronously; the draft write is scheduled afterwards.
func (c *Controller) mutate(fn func(o *models.Order) error) error {
	c.mu.Lock()
	if c.phase == PhaseLoading {
		c.mu.Unlock()
		return ErrBusy
	}
	next := c.order.Clone()
	if err := fn(&next); err != nil {
		c.mu.Unlock()
		return err
	}
	next.ID = c.order.ID
	next.Status = c.order.Status
	next.EnsureCollections()
	next.Status = DeriveStatus(next, c.explicitStatus)
	c.order = next
	c.mu.Unlock()

	c.persist.Trigger()
	return nil
}

type saveRequest struct {
	status      *models.WorkStatus
	payments    *[]models.Payment
	clearTicket bool
}

type SaveOption func(*saveRequest)

// WithStatus saves with an explicit status instead of the derived one.
func WithStatus(s models.WorkStatus) SaveOption {
	return func(r *saveRequest) { r.status = &s }
}

// WithPayments saves with the given payment list.
func WithPayments(p []models.Payment) SaveOption {
	return func(r *saveRequest) {
		cp := append([]models.Payment{}, p...)
		r.payments = &cp
	}
}

// Save creates or updates the working order. An update answered with
// ErrNotFound is retried as a create and the new id is adopted. On failure
// the working order is left untouched.
func (c *Controller) Save(ctx context.Context, opts ...SaveOption) (models.Order, error) {
	var req saveRequest
	for _, opt := range opts {
		opt(&req)
	}
	if req.status != nil && !req.status.Valid() {
		return models.Order{}, ErrInvalidStatus
	}

	ctx, span := c.tracer.Start(ctx, "workorder.Save")
	defer span.End()

	if err := c.begin(PhaseSaving); err != nil {
		return models.Order{}, err
	}
	saved, err := c.save(ctx, req)
	c.finish(err)
	endSpan(span, err)
	return saved, err
}

func (c *Controller) save(ctx context.Context, req saveRequest) (models.Order, error) {
	c.mu.Lock()
	before := c.order.Clone()
	payload := before.Clone()
	explicit := c.explicitStatus
	if req.payments != nil {
		payload.Payments = append([]models.Payment{}, (*req.payments)...)
	}
	if req.clearTicket {
		payload.AttachTicket(nil)
	}
	if req.status != nil {
		payload.Status = *req.status
		explicit = true
	} else {
		payload.Status = DeriveStatus(payload, explicit)
	}
	noop := req.status == nil && req.payments == nil && !req.clearTicket &&
		payload.ID != "" && snapshot(payload) == c.lastSaved
	c.mu.Unlock()

	if noop {
		return payload, nil
	}

	saved, err := c.write(ctx, payload)
	if err != nil {
		c.log.Warn("order save failed", zap.String("id", payload.ID), zap.Error(err))
		return models.Order{}, fmt.Errorf("save order: %w", err)
	}
	saved.EnsureCollections()
	saved.Status = NormalizeStatus(saved.Status)

	c.mu.Lock()
	c.saves++
	c.lastSaved = snapshot(saved)
	c.explicitStatus = explicit || saved.Status != models.StatusNew
	if snapshot(c.order) == snapshot(before) {
		c.order = saved.Clone()
	} else {
		c.order = rebase(c.order, saved, c.explicitStatus)
	}
	current := c.order.Clone()
	hydrated := c.hydrated
	c.mu.Unlock()

	if hydrated {
		if err := WriteDraft(c.drafts, DraftKey(current.ID), current); err != nil {
			c.log.Warn("draft write failed", zap.Error(err))
		}
	}
	if saved.ID != before.ID {
		if err := c.drafts.Remove(DraftKey(before.ID)); err != nil {
			c.log.Warn("draft cleanup failed", zap.Error(err))
		}
		if c.onNavigate != nil {
			c.onNavigate(saved.ID)
		}
	}
	return saved.Clone(), nil
}

// rebase keeps the edits made to local while a save was in flight and takes
// the fields only a save may change from saved.
func rebase(local, saved models.Order, explicit bool) models.Order {
	next, base := local.Clone(), saved.Clone()
	next.ID = base.ID
	next.Status = base.Status
	next.Payments = base.Payments
	next.PdfURL, next.PdfPath = base.PdfURL, base.PdfPath
	next.EnsureCollections()
	next.Status = DeriveStatus(next, explicit)
	return next
}

func (c *Controller) write(ctx context.Context, payload models.Order) (models.Order, error) {
	if payload.ID == "" {
		return c.store.CreateOrder(ctx, payload)
	}
	saved, err := c.store.UpdateOrder(ctx, payload.ID, payload)
	if errors.Is(err, ErrNotFound) {
		c.log.Info("order unknown to server, creating it", zap.String("id", payload.ID))
		payload.ID = ""
		return c.store.CreateOrder(ctx, payload)
	}
	return saved, err
}

// AcceptPayment records a payment and prints its ticket.
//
// With MethodLater the order is saved as PENDING_PAYMENT, no payment is
// appended and no ticket is made. Otherwise a payment of amountInput (or the
// whole due amount when blank or not positive) is appended, the order is
// saved as PAYED and exactly one ticket is generated. A ticket failure is
// reported in PaymentResult.TicketErr and never undoes the payment.
func (c *Controller) AcceptPayment(ctx context.Context, method models.PaymentMethod, amountInput string) (PaymentResult, error) {
	if !method.Valid() {
		return PaymentResult{}, ErrInvalidMethod
	}
	ctx, span := c.tracer.Start(ctx, "workorder.AcceptPayment", trace.WithAttributes(attribute.String("payment.method", string(method))))
	defer span.End()

	if err := c.begin(PhasePaying); err != nil {
		return PaymentResult{}, err
	}
	res, err := c.acceptPayment(ctx, method, amountInput)
	c.finish(err)
	endSpan(span, err)
	return res, err
}

func (c *Controller) acceptPayment(ctx context.Context, method models.PaymentMethod, amountInput string) (PaymentResult, error) {
	pending := models.StatusPendingPayment
	if method == models.MethodLater {
		saved, err := c.save(ctx, saveRequest{status: &pending, clearTicket: true})
		if err != nil {
			return PaymentResult{}, err
		}
		return PaymentResult{Order: saved}, nil
	}

	c.mu.Lock()
	o := c.order.Clone()
	c.mu.Unlock()

	amount, ok := utils.ParseDecimal(amountInput)
	if !ok || amount <= 0 {
		amount = Due(o)
	}
	date := strings.TrimSpace(o.Date)
	if date == "" {
		date = c.now().Format(DateLayout)
	}
	payments := append(o.Payments, models.Payment{
		ID:     c.now().UnixMilli(),
		Date:   date,
		Method: method,
		Amount: utils.Round2(amount),
	})
	payed := models.StatusPayed
	saved, err := c.save(ctx, saveRequest{status: &payed, payments: &payments})
	if err != nil {
		return PaymentResult{}, err
	}

	res := PaymentResult{Order: saved}
	stamped, ref, terr := c.issueTicket(ctx, saved)
	res.Ticket = ref
	if terr != nil {
		res.TicketErr = terr
		return res, nil
	}
	res.Order = stamped
	return res, nil
}

// RetryTicket regenerates the ticket of a PAYED order.
func (c *Controller) RetryTicket(ctx context.Context) (models.TicketRef, error) {
	ctx, span := c.tracer.Start(ctx, "workorder.RetryTicket")
	defer span.End()

	if err := c.begin(PhasePaying); err != nil {
		return models.TicketRef{}, err
	}
	c.mu.Lock()
	o := c.order.Clone()
	c.mu.Unlock()

	var err error
	var ref *models.TicketRef
	switch {
	case o.ID == "":
		err = ErrNoOrderID
	case o.Status != models.StatusPayed:
		err = ErrInvalidStatus
	default:
		_, ref, err = c.issueTicket(ctx, o)
	}
	c.finish(err)
	endSpan(span, err)
	if err != nil {
		return models.TicketRef{}, err
	}
	return *ref, nil
}

func (c *Controller) issueTicket(ctx context.Context, o models.Order) (models.Order, *models.TicketRef, error) {
	ref, err := c.tickets.GenerateTicket(ctx, o)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrTicketFailed, err)
		c.log.Error("ticket generation failed", zap.String("id", o.ID), zap.Error(err))
		c.setTicketErr(err)
		return o, nil, err
	}

	stamped := o.Clone()
	stamped.AttachTicket(&ref)
	updated, err := c.store.UpdateOrder(ctx, o.ID, stamped)
	if err != nil {
		err = fmt.Errorf("%w: stamp ticket: %v", ErrTicketFailed, err)
		c.log.Error("ticket stamp failed", zap.String("id", o.ID), zap.Error(err))
		c.setTicketErr(err)
		return o, &ref, err
	}
	updated.EnsureCollections()
	updated.Status = NormalizeStatus(updated.Status)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	c.lastSaved = snapshot(updated)
	if snapshot(c.order) == snapshot(o) {
		c.order = updated.Clone()
	} else {
		c.order.AttachTicket(&ref)
	}
	c.ticketErr = nil
	return updated.Clone(), &ref, nil
}

// SettlePending pays the whole due amount of a PENDING_PAYMENT order.
// A deferred method is replaced with cash.
func (c *Controller) SettlePending(ctx context.Context, method models.PaymentMethod) (PaymentResult, error) {
	c.mu.Lock()
	status := c.order.Status
	c.mu.Unlock()
	if status != models.StatusPendingPayment {
		return PaymentResult{}, ErrInvalidStatus
	}
	if method == "" || method == models.MethodLater {
		method = models.MethodCash
	}
	return c.AcceptPayment(ctx, method, "")
}

// ChangeStatus is the operator's explicit status override. Setting the
// current status is a no-op; anything else is saved immediately.
func (c *Controller) ChangeStatus(ctx context.Context, next models.WorkStatus) (models.Order, error) {
	if !next.Valid() {
		return models.Order{}, ErrInvalidStatus
	}
	c.mu.Lock()
	current := c.order.Clone()
	c.mu.Unlock()
	if current.Status == next {
		return current, nil
	}
	return c.Save(ctx, WithStatus(next))
}

// Delete removes the order, its tickets and its draft, and resets the
// controller to an empty order.
func (c *Controller) Delete(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "workorder.Delete")
	defer span.End()

	if err := c.begin(PhaseSaving); err != nil {
		return err
	}
	c.mu.Lock()
	id := c.order.ID
	c.mu.Unlock()

	if id != "" {
		if err := c.store.DeleteOrder(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("delete order: %w", err)
			c.finish(err)
			endSpan(span, err)
			return err
		}
		if err := c.tickets.DeleteTickets(ctx, id); err != nil {
			c.log.Warn("ticket cleanup failed", zap.String("id", id), zap.Error(err))
		}
	}
	c.persist.Stop()
	if err := c.drafts.Remove(DraftKey(id)); err != nil {
		c.log.Warn("draft cleanup failed", zap.String("id", id), zap.Error(err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = Skeleton(c.now())
	c.hydrated = false
	c.explicitStatus = false
	c.lastSaved = ""
	c.lastErr, c.loadErr, c.ticketErr = nil, nil, nil
	c.phase = PhaseIdle
	return nil
}

// SuggestTitles asks the catalog for matching titles and falls back to the
// built-in list when there is no catalog or it fails.
func (c *Controller) SuggestTitles(ctx context.Context, query string) []string {
	if c.catalog != nil {
		names, err := c.catalog.SuggestServices(ctx, query)
		if err == nil {
			return names
		}
		c.log.Debug("catalog lookup failed", zap.Error(err))
	}
	return FilterNames(models.DefaultServiceNames, query, 20)
}

// FilterNames returns up to limit names containing query, case-insensitively.
func FilterNames(names []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []string{}
	for _, n := range names {
		if q == "" || strings.Contains(strings.ToLower(n), q) {
			out = append(out, n)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

func (c *Controller) Order() models.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Clone()
}

func (c *Controller) Totals() Totals {
	return OrderTotals(c.Order())
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) Hydrated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hydrated
}

// LoadError is the soft failure of the last Load, if any.
func (c *Controller) LoadError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// TicketError is set while the last ticket attempt has failed.
func (c *Controller) TicketError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticketErr
}

// Dirty reports unsaved changes relative to the last saved snapshot.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirtyLocked()
}

func (c *Controller) dirtyLocked() bool {
	return snapshot(c.order) != c.lastSaved
}

func (c *Controller) begin(p Phase) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase.busy() {
		return ErrBusy
	}
	c.phase = p
	return nil
}

func (c *Controller) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.phase = PhaseError
		c.lastErr = err
		return
	}
	c.phase = PhaseSaved
	c.lastErr = nil
}

func (c *Controller) setTicketErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticketErr = err
}

// nextLineID is a millisecond timestamp, bumped to stay unique. Caller holds mu.
func (c *Controller) nextLineID(o *models.Order) int64 {
	id := c.now().UnixMilli()
	if id <= c.lastLineID {
		id = c.lastLineID + 1
	}
	for hasLine(o.Services, id) || hasLine(o.Parts, id) {
		id++
	}
	c.lastLineID = id
	return id
}

func linesOf(o *models.Order, kind LineKind) (*[]models.LineItem, error) {
	switch kind {
	case ServiceLines:
		return &o.Services, nil
	case PartLines:
		return &o.Parts, nil
	}
	return nil, ErrInvalidLineKind
}

func indexOfLine(items []models.LineItem, id int64) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func hasLine(items []models.LineItem, id int64) bool {
	return indexOfLine(items, id) >= 0
}

func optionalDecimal(input string) *float64 {
	v, ok := utils.ParseDecimal(input)
	if !ok || v < 0 {
		return nil
	}
	return &v
}

func snapshot(o models.Order) string {
	c := o.Clone()
	c.EnsureCollections()
	raw, _ := json.Marshal(c)
	return string(raw)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
