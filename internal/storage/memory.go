// Package storage provides in-process implementations of the driver's
// persistence seam: an in-memory store for tests and concurrent use,
// and a filesystem store for local runs.
package storage

import (
	"fmt"
	"sync"

	"github.com/vampirenirmal/bookforge/internal/book"
	"github.com/vampirenirmal/bookforge/internal/core"
)

// Memory is a thread-safe in-memory store.
type Memory struct {
	mu       sync.RWMutex
	books    map[string]*book.Book
	chapters map[string]map[int]string
	images   map[string]map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		books:    make(map[string]*book.Book),
		chapters: make(map[string]map[int]string),
		images:   make(map[string]map[string]string),
	}
}

func (m *Memory) SaveBook(b *book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.books[b.ID] = &cp
	return nil
}

func (m *Memory) LoadBook(id string) (*book.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	if !ok {
		return nil, core.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *Memory) SaveChapter(bookID string, number int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chapters[bookID] == nil {
		m.chapters[bookID] = make(map[int]string)
	}
	m.chapters[bookID][number] = text
	return nil
}

func (m *Memory) LoadChapter(bookID string, number int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.chapters[bookID][number]
	if !ok {
		return "", fmt.Errorf("chapter %d of book %s: %w", number, bookID, core.ErrBookNotFound)
	}
	return text, nil
}

func (m *Memory) SaveImage(bookID, name, base64Data string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.images[bookID] == nil {
		m.images[bookID] = make(map[string]string)
	}
	m.images[bookID][name] = base64Data
	return nil
}

// LoadImage is a test convenience; the interface does not require it.
func (m *Memory) LoadImage(bookID, name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.images[bookID][name]
	return img, ok
}

func (m *Memory) Delete(bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, bookID)
	delete(m.chapters, bookID)
	delete(m.images, bookID)
	return nil
}
