// Package book holds the top-level driver: the state machine that takes
// a book from pending through outlining and generating to completed or
// failed.
package book

import (
	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/outline"
)

// Status is the book lifecycle state the UI polls.
type Status string

const (
	StatusPending    Status = "pending"
	StatusOutlining  Status = "outlining"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Book is the driver-owned record. Only the driver and the chapter
// orchestrator mutate it; it is terminal once completed or failed.
type Book struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Genre         string               `json:"genre"`
	BookType      format.BookType      `json:"bookType"`
	Format        format.Format        `json:"bookFormat"`
	DialogueStyle format.DialogueStyle `json:"dialogueStyle"`
	Preset        string               `json:"bookPreset,omitempty"`
	Rating        format.ContentRating `json:"contentRating"`

	TargetWords    int `json:"targetWords"`
	TargetChapters int `json:"targetChapters"`

	Status         Status `json:"status"`
	FailureReason  string `json:"failureReason,omitempty"`
	CurrentChapter int    `json:"currentChapter"`
	TotalWords     int    `json:"totalWords"`

	OriginalIdea         string           `json:"originalIdea"`
	Plan                 *outline.Plan    `json:"plan,omitempty"`
	Outline              *outline.Outline `json:"outline,omitempty"`
	VisualStyleGuide     string           `json:"visualStyleGuide,omitempty"`
	CharacterVisualGuide string           `json:"characterVisualGuide,omitempty"`
	CoverImage           string           `json:"coverImage,omitempty"` // base64, empty until generated
}

// StatusSnapshot is the polling contract with the UI.
type StatusSnapshot struct {
	ID             string               `json:"id"`
	Status         Status               `json:"status"`
	CurrentChapter int                  `json:"currentChapter"`
	TotalChapters  int                  `json:"totalChapters"`
	TotalWords     int                  `json:"totalWords"`
	BookFormat     format.Format        `json:"bookFormat"`
	DialogueStyle  format.DialogueStyle `json:"dialogueStyle"`
	BookPreset     string               `json:"bookPreset,omitempty"`
}

// Snapshot renders the polling view of a book.
func (b *Book) Snapshot() StatusSnapshot {
	return StatusSnapshot{
		ID:             b.ID,
		Status:         b.Status,
		CurrentChapter: b.CurrentChapter,
		TotalChapters:  b.TargetChapters,
		TotalWords:     b.TotalWords,
		BookFormat:     b.Format,
		DialogueStyle:  b.DialogueStyle,
		BookPreset:     b.Preset,
	}
}

// IsVisual reports whether the book runs the illustrated path.
func (b *Book) IsVisual() bool {
	return format.IsVisual(b.Format, b.DialogueStyle, b.Preset)
}

// Storage is the persistence seam the driver writes through. The
// production key-value store lives outside this repository.
type Storage interface {
	SaveBook(b *Book) error
	LoadBook(id string) (*Book, error)
	SaveChapter(bookID string, number int, text string) error
	LoadChapter(bookID string, number int) (string, error)
	SaveImage(bookID, name, base64Data string) error
	Delete(bookID string) error
}
