// Package apiclient talks to the work-order HTTP API. Client satisfies the
// workorder OrderStore, TicketService and Catalog ports.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"autoservice-backend/models"
	"autoservice-backend/tickets"
	"autoservice-backend/workorder"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// writeAttempts bounds how often a keyed write is sent when the transport fails.
const writeAttempts = 2

// ErrTransport wraps failures where no response was received.
var ErrTransport = errors.New("api: transport failure")

type idempotencyKeyCtx struct{}

// WithIdempotencyKey makes writes under ctx use key instead of a fresh one,
// so resending the same write replays the first answer.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

func operationKey(ctx context.Context) string {
	if key, ok := ctx.Value(idempotencyKeyCtx{}).(string); ok && key != "" {
		return key
	}
	return uuid.NewString()
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// Unwrap maps 404 onto workorder.ErrNotFound.
func (e *APIError) Unwrap() error {
	if e.Status == fasthttp.StatusNotFound {
		return workorder.ErrNotFound
	}
	return nil
}

type Option func(*Client)

// WithHTTPClient replaces the underlying fasthttp client.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithRenderer(r tickets.Renderer) Option {
	return func(c *Client) { c.renderer = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout bounds requests whose context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

type Client struct {
	base     string
	http     *fasthttp.Client
	renderer tickets.Renderer
	log      *zap.Logger
	timeout  time.Duration
	tracer   trace.Tracer

	mu    sync.RWMutex
	token string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &fasthttp.Client{Name: "workshopctl"},
		log:     zap.NewNop(),
		timeout: defaultTimeout,
		tracer:  otel.Tracer("autoservice-backend/apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a bearer token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, login, password string) error {
	body, _ := json.Marshal(map[string]string{"login": login, "password": password})
	var out struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, "Login", fasthttp.MethodPost, "/api/auth/login", body, "", &out); err != nil {
		return err
	}
	if out.Token == "" {
		return errors.New("api: login returned no token")
	}
	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	err := c.doJSON(ctx, "GetOrder", fasthttp.MethodGet, "/api/orders/"+url.PathEscape(id), nil, "", &o)
	return o, err
}

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := c.doJSON(ctx, "ListOrders", fasthttp.MethodGet, "/api/orders", nil, "", &out)
	return out, err
}

// SearchOrders is ListOrders with the server-side q and status filters.
func (c *Client) SearchOrders(ctx context.Context, q string, status models.WorkStatus) ([]models.Order, error) {
	v := url.Values{}
	if q != "" {
		v.Set("q", q)
	}
	if status != "" {
		v.Set("status", string(status))
	}
	path := "/api/orders"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out []models.Order
	err := c.doJSON(ctx, "SearchOrders", fasthttp.MethodGet, path, nil, "", &out)
	return out, err
}

func (c *Client) CreateOrder(ctx context.Context, o models.Order) (models.Order, error) {
	body, err := json.Marshal(o)
	if err != nil {
		return models.Order{}, err
	}
	var out models.Order
	err = c.doJSON(ctx, "CreateOrder", fasthttp.MethodPost, "/api/orders", body, operationKey(ctx), &out)
	return out, err
}

func (c *Client) UpdateOrder(ctx context.Context, id string, o models.Order) (models.Order, error) {
	body, err := json.Marshal(o)
	if err != nil {
		return models.Order{}, err
	}
	var out models.Order
	err = c.doJSON(ctx, "UpdateOrder", fasthttp.MethodPut, "/api/orders/"+url.PathEscape(id), body, operationKey(ctx), &out)
	return out, err
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DeleteOrder", fasthttp.MethodDelete, "/api/orders/"+url.PathEscape(id), nil, "", nil)
}

// PendingOrders lists orders awaiting payment.
func (c *Client) PendingOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := c.doJSON(ctx, "PendingOrders", fasthttp.MethodGet, "/api/orders/pending", nil, "", &out)
	return out, err
}

// GenerateTicket renders the ticket PDF locally and uploads it.
func (c *Client) GenerateTicket(ctx context.Context, o models.Order) (models.TicketRef, error) {
	if o.ID == "" {
		return models.TicketRef{}, workorder.ErrNoOrderID
	}
	pdf, err := c.renderer.RenderBytes(o)
	if err != nil {
		return models.TicketRef{}, fmt.Errorf("render ticket: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, tickets.DefaultName(o.ID)))
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	if err != nil {
		return models.TicketRef{}, err
	}
	if _, err := part.Write(pdf); err != nil {
		return models.TicketRef{}, err
	}
	if err := w.Close(); err != nil {
		return models.TicketRef{}, err
	}

	var ref models.TicketRef
	path := "/api/files/tickets/" + url.PathEscape(o.ID) + "/pdf"
	err = c.do(ctx, "GenerateTicket", fasthttp.MethodPost, path, buf.Bytes(), w.FormDataContentType(), "", &ref)
	return ref, err
}

// DeleteTickets removes every stored ticket of orderID.
func (c *Client) DeleteTickets(ctx context.Context, orderID string) error {
	items, err := c.ListTickets(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.TicketID != orderID {
			continue
		}
		path := "/api/tickets/" + url.PathEscape(orderID) + "/pdf?filename=" + url.QueryEscape(it.Name)
		if err := c.doJSON(ctx, "DeleteTicket", fasthttp.MethodDelete, path, nil, "", nil); err != nil && !errors.Is(err, workorder.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (c *Client) ListTickets(ctx context.Context) ([]tickets.FileInfo, error) {
	var out []tickets.FileInfo
	err := c.doJSON(ctx, "ListTickets", fasthttp.MethodGet, "/api/tickets", nil, "", &out)
	return out, err
}

func (c *Client) SuggestServices(ctx context.Context, query string) ([]string, error) {
	path := "/api/services"
	if q := strings.TrimSpace(query); q != "" {
		path += "?q=" + url.QueryEscape(q)
	}
	var out []string
	err := c.doJSON(ctx, "SuggestServices", fasthttp.MethodGet, path, nil, "", &out)
	return out, err
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body []byte, key string, out any) error {
	return c.do(ctx, op, method, path, body, "application/json", key, out)
}

// do sends one request. A write carrying key is resent with the same key
// when no response arrived.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, contentType, key string, out any) error {
	ctx, span := c.tracer.Start(ctx, "apiclient."+op, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))
	defer span.End()

	err := c.roundTrip(ctx, method, path, body, contentType, key, out)
	for attempt := 1; err != nil && key != "" && errors.Is(err, ErrTransport) && attempt < writeAttempts; attempt++ {
		c.log.Info("resending write", zap.String("op", op), zap.Int("attempt", attempt+1), zap.Error(err))
		err = c.roundTrip(ctx, method, path, body, contentType, key, out)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Debug("api call failed", zap.String("op", op), zap.Error(err))
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte, contentType, key string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		req.Header.SetContentType(contentType)
		req.SetBody(body)
	}
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		apiErr := &APIError{Status: status}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(resp.Body(), &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}
	if out == nil || status == fasthttp.StatusNoContent || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}
