// Package tickets renders ticket PDFs and keeps them on disk under
// <upload dir>/tickets/<order id>/.
package tickets

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"autoservice-backend/models"
)

var (
	ErrInvalidID   = errors.New("invalid ticket id")
	ErrInvalidPath = errors.New("invalid ticket path")
	ErrNotFound    = errors.New("ticket pdf not found")
)

var unsafeID = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
var ticketName = regexp.MustCompile(`(?i)^ticket-([a-zA-Z0-9_-]+)\.pdf$`)

// SanitizeID strips everything but letters, digits, '_' and '-'.
func SanitizeID(id string) string {
	return unsafeID.ReplaceAllString(id, "")
}

// DefaultName is the file name used when an upload carries no PDF name.
func DefaultName(id string) string {
	return "ticket-" + id + ".pdf"
}

// URLFor is the API location of a stored ticket.
func URLFor(id, name string) string {
	return "/api/tickets/" + url.PathEscape(id) + "/pdf?filename=" + url.QueryEscape(name)
}

// FileInfo describes a stored PDF.
type FileInfo struct {
	Name        string    `json:"name"`
	TicketID    string    `json:"ticketId,omitempty"`
	Size        int64     `json:"size"`
	Mtime       time.Time `json:"mtime"`
	URL         string    `json:"url"`
	DownloadURL string    `json:"downloadUrl"`
}

// Store is the on-disk ticket file store.
type Store struct {
	root    string
	tickets string
}

func NewStore(uploadDir string) (*Store, error) {
	root, err := filepath.Abs(uploadDir)
	if err != nil {
		return nil, err
	}
	s := &Store{root: root, tickets: filepath.Join(root, "tickets")}
	if err := os.MkdirAll(s.tickets, 0o755); err != nil {
		return nil, fmt.Errorf("create tickets dir: %w", err)
	}
	return s, nil
}

func (s *Store) Root() string { return s.root }

// Save writes r as <id>/<name>. Names without a .pdf suffix fall back to DefaultName.
func (s *Store) Save(id, name string, r io.Reader) (models.TicketRef, error) {
	id = SanitizeID(id)
	if id == "" {
		return models.TicketRef{}, ErrInvalidID
	}
	name = filepath.Base(strings.TrimSpace(name))
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") || name == ".pdf" {
		name = DefaultName(id)
	}
	full, err := s.resolve(id, name)
	if err != nil {
		return models.TicketRef{}, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return models.TicketRef{}, err
	}
	f, err := os.Create(full)
	if err != nil {
		return models.TicketRef{}, err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return models.TicketRef{}, err
	}
	if err := f.Close(); err != nil {
		return models.TicketRef{}, err
	}
	return models.TicketRef{
		URL:  URLFor(id, name),
		Path: "tickets/" + id + "/" + name,
	}, nil
}

// Path locates an existing ticket; an empty name means DefaultName(id).
func (s *Store) Path(id, name string) (string, error) {
	id = SanitizeID(id)
	if id == "" {
		return "", ErrInvalidID
	}
	if name == "" {
		name = DefaultName(id)
	}
	full, err := s.resolve(id, filepath.Base(name))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		return "", ErrNotFound
	}
	return full, nil
}

// Delete removes one ticket and its directory once empty.
func (s *Store) Delete(id, name string) error {
	full, err := s.Path(id, name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return err
	}
	s.removeIfEmpty(filepath.Dir(full))
	return nil
}

// DeleteAll removes every ticket of order id, including a legacy root-level
// ticket-<id>.pdf.
func (s *Store) DeleteAll(id string) error {
	id = SanitizeID(id)
	if id == "" {
		return ErrInvalidID
	}
	if err := os.RemoveAll(filepath.Join(s.tickets, id)); err != nil {
		return err
	}
	legacy := filepath.Join(s.root, DefaultName(id))
	if err := os.Remove(legacy); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns all PDFs, newest first.
func (s *Store) List() ([]FileInfo, error) {
	items := []FileInfo{}
	dirs, err := os.ReadDir(s.tickets)
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.tickets, d.Name()))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.IsDir() || !isPDF(f.Name()) {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			items = append(items, FileInfo{
				Name:        f.Name(),
				TicketID:    d.Name(),
				Size:        info.Size(),
				Mtime:       info.ModTime().UTC(),
				URL:         URLFor(d.Name(), f.Name()),
				DownloadURL: "/api/tickets/file/" + url.PathEscape(f.Name()) + "?ticketId=" + url.QueryEscape(d.Name()) + "&download=1",
			})
		}
	}

	legacy, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	for _, f := range legacy {
		if f.IsDir() || !isPDF(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		items = append(items, FileInfo{
			Name:        f.Name(),
			Size:        info.Size(),
			Mtime:       info.ModTime().UTC(),
			URL:         "/api/tickets/file/" + url.PathEscape(f.Name()),
			DownloadURL: "/api/tickets/file/" + url.PathEscape(f.Name()) + "?download=1",
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Mtime.After(items[j].Mtime) })
	return items, nil
}

// FindByName looks a file up by name, first in the upload root and then in
// the directory of ticketID (or the id inferred from ticket-<id>.pdf).
func (s *Store) FindByName(name, ticketID string) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", ErrInvalidPath
	}
	id := SanitizeID(ticketID)
	if id == "" {
		if m := ticketName.FindStringSubmatch(name); m != nil {
			id = m[1]
		}
	}
	candidates := []string{filepath.Join(s.root, name)}
	if id != "" {
		candidates = append(candidates, filepath.Join(s.tickets, id, name))
	}
	for _, c := range candidates {
		if !s.inside(c) {
			return "", ErrInvalidPath
		}
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c, nil
		}
	}
	return "", ErrNotFound
}

func (s *Store) DeleteByName(name, ticketID string) error {
	full, err := s.FindByName(name, ticketID)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return err
	}
	if dir := filepath.Dir(full); strings.HasPrefix(dir, s.tickets+string(filepath.Separator)) {
		s.removeIfEmpty(dir)
	}
	return nil
}

// TicketIDs lists the order ids that have a ticket directory.
func (s *Store) TicketIDs() ([]string, error) {
	dirs, err := os.ReadDir(s.tickets)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d.IsDir() {
			ids = append(ids, d.Name())
		}
	}
	return ids, nil
}

func (s *Store) resolve(id, name string) (string, error) {
	full := filepath.Join(s.tickets, id, name)
	if !s.inside(full) {
		return "", ErrInvalidPath
	}
	return full, nil
}

func (s *Store) inside(p string) bool {
	rel, err := filepath.Rel(s.root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (s *Store) removeIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) == 0 {
		_ = os.Remove(dir)
	}
}

func isPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}
