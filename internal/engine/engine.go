// Package engine assembles the book generation engine as one injected
// object: provider gateway, state store, persistence and driver. The
// HTTP layer that calls it lives outside this repository. There are no
// package-level globals; two Engines in one process are fully isolated
// apart from the provider quota they share upstream.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vampirenirmal/bookforge/internal/book"
	"github.com/vampirenirmal/bookforge/internal/config"
	"github.com/vampirenirmal/bookforge/internal/illustration"
	"github.com/vampirenirmal/bookforge/internal/provider"
	"github.com/vampirenirmal/bookforge/internal/state"
	"github.com/vampirenirmal/bookforge/internal/storage"
)

// Engine is the single entry point library callers hold.
type Engine struct {
	cfg     *config.Config
	gateway provider.Client
	states  *state.Store
	store   book.Storage
	driver  *book.Driver
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	storage     book.Storage
	client      provider.Client
	illustrator book.Illustrator
	logger      *slog.Logger
}

// WithStorage replaces the default in-memory persistence.
func WithStorage(s book.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithClient replaces the provider gateway; tests inject mocks here.
func WithClient(c provider.Client) Option {
	return func(o *options) { o.client = c }
}

// WithIllustrator attaches the illustration service client.
func WithIllustrator(i book.Illustrator) Option {
	return func(o *options) { o.illustrator = i }
}

// WithLogger sets the root logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New wires an Engine from config.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		gw, err := provider.NewGateway(cfg, provider.WithLogger(o.logger))
		if err != nil {
			return nil, fmt.Errorf("building provider gateway: %w", err)
		}
		client = gw
	}

	store := o.storage
	if store == nil {
		store = storage.NewMemory()
	}

	illustrator := o.illustrator
	if illustrator == nil && cfg.AppURL != "" {
		illustrator = illustration.NewClient(cfg.AppURL).WithLogger(o.logger)
	}

	states := state.NewStore().WithLogger(o.logger)

	driverOpts := []book.Option{book.WithLogger(o.logger)}
	if illustrator != nil {
		driverOpts = append(driverOpts, book.WithIllustrator(illustrator))
	}

	return &Engine{
		cfg:     cfg,
		gateway: client,
		states:  states,
		store:   store,
		driver:  book.NewDriver(client, states, store, driverOpts...),
		logger:  o.logger.With("component", "engine"),
	}, nil
}

// CreateBook registers a pending book and returns its id.
func (e *Engine) CreateBook(req book.CreateRequest) (*book.Book, error) {
	return e.driver.Create(req)
}

// GenerateBook runs a pending book to completion. Call it once per
// book; independent books may run concurrently.
func (e *Engine) GenerateBook(ctx context.Context, bookID string) error {
	return e.driver.Run(ctx, bookID)
}

// Status serves the UI polling contract.
func (e *Engine) Status(bookID string) (book.StatusSnapshot, error) {
	b, err := e.store.LoadBook(bookID)
	if err != nil {
		return book.StatusSnapshot{}, err
	}
	return b.Snapshot(), nil
}

// Title serves the title polling endpoint.
func (e *Engine) Title(bookID string) (string, error) {
	b, err := e.store.LoadBook(bookID)
	if err != nil {
		return "", err
	}
	return b.Title, nil
}

// Chapter returns persisted chapter text.
func (e *Engine) Chapter(bookID string, number int) (string, error) {
	return e.store.LoadChapter(bookID, number)
}

// DeleteBook removes a book everywhere: persistence and runtime state.
func (e *Engine) DeleteBook(bookID string) error {
	e.states.Delete(bookID)
	return e.store.Delete(bookID)
}
