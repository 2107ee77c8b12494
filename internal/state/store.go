package state

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vampirenirmal/bookforge/internal/core"
)

// maxSeedsPerChapter caps sensory/friction injections so texture never
// crowds out the story.
const maxSeedsPerChapter = 2

// Store keys runtime state by book id. The driver serializes all
// mutations for one book; the mutex exists for inter-book concurrency.
type Store struct {
	mu     sync.Mutex
	books  map[string]*BookState
	logger *slog.Logger
}

// NewStore creates an empty state store.
func NewStore() *Store {
	return &Store{
		books:  make(map[string]*BookState),
		logger: slog.Default().With("component", "state_store"),
	}
}

// WithLogger sets a custom logger.
func (s *Store) WithLogger(logger *slog.Logger) *Store {
	s.logger = logger.With("component", "state_store")
	return s
}

// GetOrCreate returns the record for a book, creating it on first use.
func (s *Store) GetOrCreate(bookID string) *BookState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.books[bookID]; ok {
		return st
	}
	st := &BookState{
		BookID:        bookID,
		Facts:         make(map[string]*CharacterFact),
		Arcs:          make(map[string]*TensionArc),
		Secrets:       make(map[string]*Secret),
		Voices:        make(map[string]*VoiceProfile),
		UsedSeeds:     make(map[string]bool),
		UsedFrictions: make(map[string]bool),
		SeedChapters:  make(map[int]int),
	}
	s.books[bookID] = st
	return st
}

// Delete drops a book's record entirely.
func (s *Store) Delete(bookID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books, bookID)
}

// =============================================================================
// Character facts
// =============================================================================

// UpdateFacts applies a partial update. Ages are monotonic unless the
// update carries a time-jump marker; knows/wounds/conditions are unioned;
// a location change without a narrated transit is rejected.
func (s *Store) UpdateFacts(bookID string, update FactUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.books[bookID]
	if !ok {
		return core.ErrBookNotFound
	}

	key := canonicalName(update.Name)
	fact, ok := st.Facts[key]
	if !ok {
		fact = &CharacterFact{Name: update.Name}
		st.Facts[key] = fact
	}

	if update.Age != nil {
		if fact.Age != nil && *update.Age < *fact.Age {
			return &core.StateConflictError{
				BookID: bookID,
				Entity: "character:" + update.Name,
				Reason: fmt.Sprintf("age regression %d -> %d", *fact.Age, *update.Age),
			}
		}
		if fact.Age != nil && *update.Age > *fact.Age+1 && !update.TimeJump {
			return &core.StateConflictError{
				BookID: bookID,
				Entity: "character:" + update.Name,
				Reason: fmt.Sprintf("age jump %d -> %d without time-jump marker", *fact.Age, *update.Age),
			}
		}
		age := *update.Age
		fact.Age = &age
	}

	if update.Location != "" && update.Location != fact.Location {
		if fact.Location != "" && !update.TransitSeen {
			return &core.StateConflictError{
				BookID: bookID,
				Entity: "character:" + update.Name,
				Reason: fmt.Sprintf("location change %q -> %q without a transit beat", fact.Location, update.Location),
			}
		}
		fact.Location = update.Location
	}

	if update.Status != "" {
		fact.Status = update.Status
	}
	if update.LastAction != "" {
		fact.LastAction = update.LastAction
	}
	fact.Knows = union(fact.Knows, update.Knows)
	fact.Wounds = union(fact.Wounds, update.Wounds)
	fact.Conditions = union(fact.Conditions, update.Conditions)

	return nil
}

// SeedFacts installs the plan's starting characters without invariant
// checks; there is no prior state to conflict with.
func (s *Store) SeedFacts(bookID string, facts []CharacterFact) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.books[bookID]
	if st == nil {
		return
	}
	for i := range facts {
		f := facts[i]
		st.Facts[canonicalName(f.Name)] = &f
	}
}

// Facts returns the characters sorted by name for stable prompts.
func (s *Store) Facts(bookID string) []CharacterFact {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.books[bookID]
	if !ok {
		return nil
	}
	out := make([]CharacterFact, 0, len(st.Facts))
	for _, f := range st.Facts {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// =============================================================================
// Tension arcs
// =============================================================================

// RegisterArc creates a new arc and returns its id.
func (s *Store) RegisterArc(bookID string, arcType ArcType, participants []string, target int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.books[bookID]
	if st == nil {
		return ""
	}
	id := uuid.NewString()
	st.Arcs[id] = &TensionArc{
		ID:           id,
		Type:         arcType,
		Participants: participants,
		TargetLevel:  target,
	}
	return id
}

// UpdateTension appends a history point if the level change stays inside
// the format cap.
func (s *Store) UpdateTension(bookID, arcID string, point TensionPoint, maxDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.books[bookID]
	if !ok {
		return core.ErrBookNotFound
	}
	arc, ok := st.Arcs[arcID]
	if !ok {
		return &core.StateConflictError{BookID: bookID, Entity: "arc:" + arcID, Reason: "unknown arc"}
	}

	if point.Level < 0 || point.Level > 10 {
		return &core.StateConflictError{
			BookID: bookID,
			Entity: "arc:" + arcID,
			Reason: fmt.Sprintf("level %d outside [0,10]", point.Level),
		}
	}

	delta := point.Level - arc.CurrentLevel
	if delta < 0 {
		delta = -delta
	}
	if delta > maxDelta {
		return &core.StateConflictError{
			BookID: bookID,
			Entity: "arc:" + arcID,
			Reason: fmt.Sprintf("tension jump %d -> %d exceeds cap %d", arc.CurrentLevel, point.Level, maxDelta),
		}
	}

	arc.CurrentLevel = point.Level
	arc.History = append(arc.History, point)
	if point.Level >= arc.TargetLevel && arc.PeakChapter == 0 {
		arc.PeakChapter = point.Chapter
	}
	return nil
}

// Arcs returns the arcs sorted by id.
func (s *Store) Arcs(bookID string) []TensionArc {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.books[bookID]
	if !ok {
		return nil
	}
	out := make([]TensionArc, 0, len(st.Arcs))
	for _, a := range st.Arcs {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// =============================================================================
// Secrets
// =============================================================================

// RegisterSecret stores a new secret and returns its id.
func (s *Store) RegisterSecret(bookID string, secret Secret) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.books[bookID]
	if st == nil {
		return ""
	}
	if secret.ID == "" {
		secret.ID = uuid.NewString()
	}
	st.Secrets[secret.ID] = &secret
	return secret.ID
}

// AddBreadcrumb attaches a clue to a secret.
func (s *Store) AddBreadcrumb(bookID, secretID string, bc Breadcrumb) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.books[bookID]
	if !ok {
		return core.ErrBookNotFound
	}
	secret, ok := st.Secrets[secretID]
	if !ok {
		return &core.StateConflictError{BookID: bookID, Entity: "secret:" + secretID, Reason: "unknown secret"}
	}
	if secret.IsRevealed {
		return &core.StateConflictError{BookID: bookID, Entity: "secret:" + secretID, Reason: "breadcrumb after reveal"}
	}
	secret.Breadcrumbs = append(secret.Breadcrumbs, bc)
	return nil
}

// RevealSecret flips a secret to revealed if the breadcrumb gate passes:
// minCount planted, at least two distinct types, and one within the last
// three chapters.
func (s *Store) RevealSecret(bookID, secretID string, chapter int, method string, minCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.books[bookID]
	if !ok {
		return core.ErrBookNotFound
	}
	secret, ok := st.Secrets[secretID]
	if !ok {
		return &core.StateConflictError{BookID: bookID, Entity: "secret:" + secretID, Reason: "unknown secret"}
	}
	if secret.IsRevealed {
		return &core.StateConflictError{BookID: bookID, Entity: "secret:" + secretID, Reason: "already revealed"}
	}

	if len(secret.Breadcrumbs) < minCount {
		return &core.StateConflictError{
			BookID: bookID,
			Entity: "secret:" + secretID,
			Reason: fmt.Sprintf("only %d of %d required breadcrumbs planted", len(secret.Breadcrumbs), minCount),
		}
	}

	types := make(map[string]bool)
	recent := false
	for _, bc := range secret.Breadcrumbs {
		types[bc.Type] = true
		if chapter-bc.Chapter <= 3 {
			recent = true
		}
	}
	if len(types) < 2 {
		return &core.StateConflictError{
			BookID: bookID,
			Entity: "secret:" + secretID,
			Reason: "breadcrumbs lack diversity (need 2 distinct types)",
		}
	}
	if !recent {
		return &core.StateConflictError{
			BookID: bookID,
			Entity: "secret:" + secretID,
			Reason: "no breadcrumb within the last 3 chapters",
		}
	}

	secret.IsRevealed = true
	secret.RevealChapter = chapter
	secret.RevealMethod = method
	return nil
}

// Secrets returns the secrets sorted by id.
func (s *Store) Secrets(bookID string) []Secret {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.books[bookID]
	if !ok {
		return nil
	}
	out := make([]Secret, 0, len(st.Secrets))
	for _, sec := range st.Secrets {
		out = append(out, *sec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// =============================================================================
// Voice profiles
// =============================================================================

// SetVoice stores a character's dialogue rules.
func (s *Store) SetVoice(bookID string, profile VoiceProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.books[bookID]
	if st == nil {
		return
	}
	st.Voices[canonicalName(profile.Name)] = &profile
}

// Voice looks up a profile by character name.
func (s *Store) Voice(bookID, name string) (VoiceProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.books[bookID]
	if !ok {
		return VoiceProfile{}, false
	}
	p, ok := st.Voices[canonicalName(name)]
	if !ok {
		return VoiceProfile{}, false
	}
	return *p, true
}

// =============================================================================
// Chaos / friction history
// =============================================================================

// ClaimSeed records a chaos seed as used if the per-chapter budget
// allows. Returns false when the seed was already used or the chapter is
// saturated.
func (s *Store) ClaimSeed(bookID string, chapter int, seed string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.books[bookID]
	if st == nil {
		return false
	}
	if st.UsedSeeds[seed] || st.SeedChapters[chapter] >= maxSeedsPerChapter {
		return false
	}
	st.UsedSeeds[seed] = true
	st.SeedChapters[chapter]++
	return true
}

// ClaimFriction records a friction event as used.
func (s *Store) ClaimFriction(bookID, event string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.books[bookID]
	if st == nil {
		return false
	}
	if st.UsedFrictions[event] {
		return false
	}
	st.UsedFrictions[event] = true
	return true
}

// SeedUsed reports whether a chaos seed was already spent on this book.
func (s *Store) SeedUsed(bookID, seed string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.books[bookID]
	if st == nil {
		return false
	}
	return st.UsedSeeds[seed]
}

func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func union(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}
	for _, v := range extra {
		if v != "" && !seen[v] {
			base = append(base, v)
			seen[v] = true
		}
	}
	return base
}
