package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vampirenirmal/bookforge/internal/book"
	"github.com/vampirenirmal/bookforge/internal/core"
)

// Filesystem persists books under a base directory, one directory per
// book: book.json, chapter-N.txt and images alongside.
type Filesystem struct {
	baseDir string
}

// NewFilesystem creates the base directory if needed.
func NewFilesystem(baseDir string) (*Filesystem, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &Filesystem{baseDir: baseDir}, nil
}

func (f *Filesystem) bookDir(id string) string {
	return filepath.Join(f.baseDir, id)
}

func (f *Filesystem) SaveBook(b *book.Book) error {
	dir := f.bookDir(b.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating book directory: %w", err)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding book: %w", err)
	}

	// Write-then-rename keeps the record readable by a concurrent
	// status poller.
	tmp := filepath.Join(dir, "book.json.tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing book: %w", err)
	}
	return os.Rename(tmp, filepath.Join(dir, "book.json"))
}

func (f *Filesystem) LoadBook(id string) (*book.Book, error) {
	data, err := os.ReadFile(filepath.Join(f.bookDir(id), "book.json"))
	if os.IsNotExist(err) {
		return nil, core.ErrBookNotFound
	} else if err != nil {
		return nil, fmt.Errorf("reading book: %w", err)
	}

	var b book.Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decoding book: %w", err)
	}
	return &b, nil
}

func (f *Filesystem) SaveChapter(bookID string, number int, text string) error {
	dir := f.bookDir(bookID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating book directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("chapter-%03d.txt", number))
	return os.WriteFile(path, []byte(text), 0644)
}

func (f *Filesystem) LoadChapter(bookID string, number int) (string, error) {
	path := filepath.Join(f.bookDir(bookID), fmt.Sprintf("chapter-%03d.txt", number))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("chapter %d of book %s: %w", number, bookID, core.ErrBookNotFound)
	} else if err != nil {
		return "", fmt.Errorf("reading chapter: %w", err)
	}
	return string(data), nil
}

func (f *Filesystem) SaveImage(bookID, name, base64Data string) error {
	dir := f.bookDir(bookID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating book directory: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, name+".b64"), []byte(base64Data), 0644)
}

func (f *Filesystem) Delete(bookID string) error {
	return os.RemoveAll(f.bookDir(bookID))
}
