package workorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"autoservice-backend/models"
)

// DateLayout is the display format of order and payment dates.
const DateLayout = "02.01.2006"

const draftKeyPrefix = "order-draft-"

// DraftKey is the cache key of the draft for order id; unsaved orders share "new".
func DraftKey(id string) string {
	if id == "" {
		return draftKeyPrefix + "new"
	}
	return draftKeyPrefix + id
}

// Skeleton is an empty order dated today.
func Skeleton(now time.Time) models.Order {
	o := models.Order{Date: now.Format(DateLayout), Status: models.StatusNew}
	o.EnsureCollections()
	return o
}

// Reconcile merges a cached draft with the server copy of an order.
//
// A missing or contentless draft leaves the server order as is. Otherwise
// every field the draft defines wins; collections are taken whole from the
// draft when it has them. Without a server order the draft is laid over a
// fresh skeleton, and without either the skeleton is returned. Inputs are
// never modified.
func Reconcile(server *models.Order, draft *models.OrderDraft, now time.Time) models.Order {
	var out models.Order
	switch {
	case draft == nil || !draft.HasContent():
		if server != nil {
			out = server.Clone()
		} else {
			out = Skeleton(now)
		}
	case server != nil:
		out = draft.ApplyTo(*server)
	default:
		out = draft.ApplyTo(Skeleton(now))
	}
	if out.Date == "" {
		out.Date = now.Format(DateLayout)
	}
	out.EnsureCollections()
	out.Status = NormalizeStatus(out.Status)
	return out
}

// DraftStore is a string key-value cache for drafts. Writes are last-writer-wins.
type DraftStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// ReadDraft loads and decodes the draft stored under key. A missing or
// undecodable entry yields nil.
func ReadDraft(store DraftStore, key string) (*models.OrderDraft, error) {
	raw, ok, err := store.Get(key)
	if err != nil || !ok || raw == "" {
		return nil, err
	}
	var d models.OrderDraft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", key, err)
	}
	return &d, nil
}

// WriteDraft encodes o as a full draft under key.
func WriteDraft(store DraftStore, key string, o models.Order) error {
	raw, err := json.Marshal(models.DraftOf(o))
	if err != nil {
		return err
	}
	return store.Set(key, string(raw))
}

// MemoryDrafts keeps drafts in process memory.
type MemoryDrafts struct {
	mu    sync.Mutex
	items map[string]string
}

func NewMemoryDrafts() *MemoryDrafts {
	return &MemoryDrafts{items: map[string]string{}}
}

func (m *MemoryDrafts) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryDrafts) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryDrafts) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// FileDrafts keeps drafts in a single JSON object on disk. Concurrent
// processes are not coordinated; the last write wins.
type FileDrafts struct {
	mu   sync.Mutex
	path string
}

func NewFileDrafts(path string) *FileDrafts {
	return &FileDrafts{path: path}
}

func (f *FileDrafts) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := items[key]
	return v, ok, nil
}

func (f *FileDrafts) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.read()
	if err != nil {
		return err
	}
	items[key] = value
	return f.write(items)
}

func (f *FileDrafts) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return f.write(items)
}

func (f *FileDrafts) read() (map[string]string, error) {
	items := map[string]string{}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode drafts file: %w", err)
	}
	return items, nil
}

func (f *FileDrafts) write(items map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
