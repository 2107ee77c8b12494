package state

import (
	"errors"
	"testing"

	"github.com/vampirenirmal/bookforge/internal/core"
)

func intPtr(i int) *int { return &i }

func TestUpdateFactsAgeMonotonic(t *testing.T) {
	tests := []struct {
		name     string
		first    FactUpdate
		second   FactUpdate
		wantErr  bool
		finalAge int
	}{
		{
			name:     "normal aging",
			first:    FactUpdate{Name: "Mara", Age: intPtr(29)},
			second:   FactUpdate{Name: "Mara", Age: intPtr(30)},
			finalAge: 30,
		},
		{
			name:     "regression rejected",
			first:    FactUpdate{Name: "Mara", Age: intPtr(29)},
			second:   FactUpdate{Name: "Mara", Age: intPtr(25)},
			wantErr:  true,
			finalAge: 29,
		},
		{
			name:     "large jump needs marker",
			first:    FactUpdate{Name: "Mara", Age: intPtr(29)},
			second:   FactUpdate{Name: "Mara", Age: intPtr(40)},
			wantErr:  true,
			finalAge: 29,
		},
		{
			name:     "time jump authorizes",
			first:    FactUpdate{Name: "Mara", Age: intPtr(29)},
			second:   FactUpdate{Name: "Mara", Age: intPtr(40), TimeJump: true},
			finalAge: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			store.GetOrCreate("b1")
			if err := store.UpdateFacts("b1", tt.first); err != nil {
				t.Fatalf("first update: %v", err)
			}
			err := store.UpdateFacts("b1", tt.second)
			if (err != nil) != tt.wantErr {
				t.Fatalf("second update error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var conflict *core.StateConflictError
				if !errors.As(err, &conflict) {
					t.Fatalf("error type = %T, want StateConflictError", err)
				}
			}
			facts := store.Facts("b1")
			if len(facts) != 1 || facts[0].Age == nil || *facts[0].Age != tt.finalAge {
				t.Fatalf("final facts = %+v, want age %d", facts, tt.finalAge)
			}
		})
	}
}

func TestUpdateFactsLocationTransit(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("b1")

	if err := store.UpdateFacts("b1", FactUpdate{Name: "Jonas", Location: "the docks"}); err != nil {
		t.Fatalf("initial location: %v", err)
	}

	err := store.UpdateFacts("b1", FactUpdate{Name: "Jonas", Location: "the lighthouse"})
	if err == nil {
		t.Fatal("location change without transit should be rejected")
	}

	if err := store.UpdateFacts("b1", FactUpdate{Name: "Jonas", Location: "the lighthouse", TransitSeen: true}); err != nil {
		t.Fatalf("location change with transit: %v", err)
	}
	if got := store.Facts("b1")[0].Location; got != "the lighthouse" {
		t.Fatalf("location = %q", got)
	}
}

func TestUpdateFactsUnions(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("b1")

	_ = store.UpdateFacts("b1", FactUpdate{Name: "Mara", Knows: []string{"the will is forged"}})
	_ = store.UpdateFacts("b1", FactUpdate{Name: "mara", Knows: []string{"the will is forged", "Jonas lied"}, Wounds: []string{"sprained wrist"}})

	facts := store.Facts("b1")
	if len(facts) != 1 {
		t.Fatalf("characters = %d, want 1 (name matching is case-insensitive)", len(facts))
	}
	if len(facts[0].Knows) != 2 {
		t.Fatalf("knows = %v, want deduplicated union of 2", facts[0].Knows)
	}
	if len(facts[0].Wounds) != 1 {
		t.Fatalf("wounds = %v", facts[0].Wounds)
	}
}

func TestUpdateTensionCap(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("b1")
	arcID := store.RegisterArc("b1", ArcMystery, []string{"Mara", "Jonas"}, 8)

	if err := store.UpdateTension("b1", arcID, TensionPoint{Chapter: 1, Level: 1, Reason: "first hint"}, 1); err != nil {
		t.Fatalf("step to 1: %v", err)
	}
	if err := store.UpdateTension("b1", arcID, TensionPoint{Chapter: 2, Level: 4, Reason: "body found"}, 1); err == nil {
		t.Fatal("jump of 3 with cap 1 should be rejected")
	}
	if err := store.UpdateTension("b1", arcID, TensionPoint{Chapter: 2, Level: 2, Reason: "body found"}, 1); err != nil {
		t.Fatalf("step to 2: %v", err)
	}

	arcs := store.Arcs("b1")
	if arcs[0].CurrentLevel != 2 || len(arcs[0].History) != 2 {
		t.Fatalf("arc = %+v", arcs[0])
	}
}

func TestRevealSecretGate(t *testing.T) {
	crumb := func(ch int, typ string) Breadcrumb {
		return Breadcrumb{Chapter: ch, Type: typ, Obviousness: BreadcrumbSubtle}
	}

	tests := []struct {
		name    string
		crumbs  []Breadcrumb
		chapter int
		wantErr bool
	}{
		{
			name:    "too few breadcrumbs",
			crumbs:  []Breadcrumb{crumb(1, "object"), crumb(2, "dialogue")},
			chapter: 5,
			wantErr: true,
		},
		{
			name:    "no type diversity",
			crumbs:  []Breadcrumb{crumb(1, "object"), crumb(2, "object"), crumb(4, "object")},
			chapter: 5,
			wantErr: true,
		},
		{
			name:    "no recent breadcrumb",
			crumbs:  []Breadcrumb{crumb(1, "object"), crumb(1, "dialogue"), crumb(2, "behavior")},
			chapter: 9,
			wantErr: true,
		},
		{
			name:    "gate passes",
			crumbs:  []Breadcrumb{crumb(1, "object"), crumb(3, "dialogue"), crumb(4, "behavior")},
			chapter: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			store.GetOrCreate("b1")
			id := store.RegisterSecret("b1", Secret{Type: "identity", Description: "Jonas is the heir"})
			for _, bc := range tt.crumbs {
				if err := store.AddBreadcrumb("b1", id, bc); err != nil {
					t.Fatalf("AddBreadcrumb: %v", err)
				}
			}
			err := store.RevealSecret("b1", id, tt.chapter, "confession", 3)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RevealSecret() error = %v, wantErr %v", err, tt.wantErr)
			}
			revealed := store.Secrets("b1")[0].IsRevealed
			if revealed == tt.wantErr {
				t.Fatalf("IsRevealed = %v after err=%v", revealed, err)
			}
		})
	}
}

func TestChaosSeedBudget(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("b1")

	if !store.ClaimSeed("b1", 1, "a cold draft") {
		t.Fatal("first seed should be claimable")
	}
	if store.ClaimSeed("b1", 1, "a cold draft") {
		t.Fatal("repeat seed should be rejected")
	}
	if !store.ClaimSeed("b1", 1, "distant thunder") {
		t.Fatal("second distinct seed should be claimable")
	}
	if store.ClaimSeed("b1", 1, "a dripping tap") {
		t.Fatal("chapter budget of 2 should be enforced")
	}
	if !store.ClaimSeed("b1", 2, "a dripping tap") {
		t.Fatal("budget is per chapter")
	}
}

func TestCrossBookIsolation(t *testing.T) {
	store := NewStore()
	store.GetOrCreate("b1")
	store.GetOrCreate("b2")

	_ = store.UpdateFacts("b1", FactUpdate{Name: "Mara", Age: intPtr(29)})
	if got := len(store.Facts("b2")); got != 0 {
		t.Fatalf("book b2 sees %d characters from b1", got)
	}
	store.Delete("b1")
	if got := len(store.Facts("b1")); got != 0 {
		t.Fatalf("deleted book still has %d characters", got)
	}
}
