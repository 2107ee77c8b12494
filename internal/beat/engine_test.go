package beat

import (
	"context"
	"strings"
	"testing"

	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/heat"
	"github.com/vampirenirmal/bookforge/internal/provider"
	"github.com/vampirenirmal/bookforge/internal/state"
)

const flatAttempt = `Mara walked to the door. Mara opened the door slowly.
Mara looked at the room again. Mara felt a pang of dread. Mara stepped
inside very quietly. Mara closed the door behind her.`

const beatOne = `Rain hammered the tin roof. Mara counted the seconds between
each gust and tried to remember how the harbor had smelled in June, all brine
and diesel and hot rope. Nothing came. The lamp guttered. Somewhere below, a
door slammed against its frame, and the whole house seemed to lean into the
cold that followed it up the stairs.`

const beatTwo = `The ferry horn sounded twice across the bay. Mara pulled her
coat tighter and read the timetable again, tracing the smudged column of
departures with one cold finger until the numbers stopped meaning anything. A
gull wheeled overhead. Behind the ticket office someone was frying onions, and
the smell carried all the way down the ramp.`

const beatThree = `Nothing on the answering machine but static. She played it
a third time anyway, hunting for a voice inside the hiss the way you hunt for
a face in wallpaper, and then the tape ran out with a clunk. The kettle
shrieked. Warmth crept back into the kitchen while she wrote the date on a
fresh page and underlined it twice.`

func testInput() ChapterInput {
	return ChapterInput{
		BookID:         "b1",
		Chapter:        2,
		PlanText:       "Mara searches the empty house. She finds the hidden ledgers. A message on the machine changes everything.",
		TargetWords:    900,
		Format:         format.ConfigFor(format.Novel),
		Genre:          "mystery",
		Rating:         format.RatingGeneral,
		ContentType:    heat.ContentGeneral,
		Anchor:         "A detective returns to her childhood harbor town.",
		Synopsis:       "Mara has traced the missing ledgers to her late uncle's house.",
		CharacterNames: []string{"Mara"},
	}
}

func TestPlanBeats(t *testing.T) {
	tests := []struct {
		name        string
		targetWords int
		beatSize    int
		wantCount   int
	}{
		{"small chapter floors at three", 500, 400, 3},
		{"even split", 1600, 400, 4},
		{"remainder rounds up", 1700, 400, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			beats := PlanBeats("One. Two. Three. Four. Five. Six.", tt.targetWords, tt.beatSize)
			if len(beats) != tt.wantCount {
				t.Fatalf("beat count = %d, want %d", len(beats), tt.wantCount)
			}

			total := 0
			for _, b := range beats {
				total += b.TargetWords
			}
			if total != tt.targetWords {
				t.Fatalf("target words sum = %d, want %d (last beat absorbs remainder)", total, tt.targetWords)
			}

			if beats[0].Momentum != MomentumEscalate {
				t.Errorf("first beat momentum = %s", beats[0].Momentum)
			}
			if beats[len(beats)-1].Momentum != MomentumResolve {
				t.Errorf("last beat momentum = %s", beats[len(beats)-1].Momentum)
			}
			for _, b := range beats {
				if b.Summary == "" {
					t.Errorf("beat %d has no summary", b.Number)
				}
			}
		})
	}
}

func TestGenerateChapterRetriesWithFeedback(t *testing.T) {
	mock := provider.NewMockClient().Respond("beat", flatAttempt, beatOne, beatTwo, beatThree)
	store := state.NewStore()
	store.GetOrCreate("b1")

	engine := NewEngine(mock, store)
	result, err := engine.GenerateChapter(context.Background(), testInput())
	if err != nil {
		t.Fatalf("GenerateChapter() error = %v", err)
	}

	if len(result.Beats) != 3 {
		t.Fatalf("beats = %d, want 3", len(result.Beats))
	}

	first := result.Beats[0]
	if first.Attempts != 2 {
		t.Fatalf("first beat attempts = %d, want 2", first.Attempts)
	}
	if first.Report.Metrics.SentenceVariance < 4.2 {
		t.Fatalf("accepted variance = %.2f, want >= 4.2", first.Report.Metrics.SentenceVariance)
	}
	if first.Report.Metrics.NameDensity > 2.5 {
		t.Fatalf("accepted name density = %.2f, want <= 2.5", first.Report.Metrics.NameDensity)
	}

	log := strings.Join(first.CorrectionLog, "\n")
	for _, want := range []string{"RHYTHM", "NAME OVERUSE"} {
		if !strings.Contains(log, want) {
			t.Errorf("correction log missing %s:\n%s", want, log)
		}
	}

	if result.Metrics.PassedFirstTry != 2 {
		t.Errorf("PassedFirstTry = %d, want 2", result.Metrics.PassedFirstTry)
	}
	if result.Metrics.TotalRetries != 1 {
		t.Errorf("TotalRetries = %d, want 1", result.Metrics.TotalRetries)
	}

	// The retry prompt must carry the surgical feedback verbatim.
	foundFeedback := false
	for _, call := range mock.Calls {
		if strings.Contains(call.Prompt, "PREVIOUS ATTEMPT FAILED") && strings.Contains(call.Prompt, "RHYTHM") {
			foundFeedback = true
		}
	}
	if !foundFeedback {
		t.Error("no retry prompt carried the surgical feedback")
	}
}

func TestGenerateChapterAcceptsBestAfterMaxAttempts(t *testing.T) {
	mock := provider.NewMockClient().Respond("beat", flatAttempt)
	store := state.NewStore()
	store.GetOrCreate("b2")

	in := testInput()
	in.BookID = "b2"
	in.TargetWords = 400 // still floors at three beats

	engine := NewEngine(mock, store)
	result, err := engine.GenerateChapter(context.Background(), in)
	if err != nil {
		t.Fatalf("GenerateChapter() error = %v", err)
	}

	if len(result.Beats) != 3 {
		t.Fatalf("beats = %d, want 3 (final failure is never fatal)", len(result.Beats))
	}
	for _, b := range result.Beats {
		if b.Report.IsValid {
			t.Fatal("flat prose should never validate")
		}
		if b.Attempts > 3 {
			t.Fatalf("attempts = %d, want <= 3", b.Attempts)
		}
		if b.Text == "" {
			t.Fatal("best attempt text must be kept")
		}
	}
}

func TestGenerateChapterAssemblesInOrder(t *testing.T) {
	mock := provider.NewMockClient().Respond("beat", beatOne, beatTwo, beatThree)
	store := state.NewStore()
	store.GetOrCreate("b3")

	in := testInput()
	in.BookID = "b3"

	engine := NewEngine(mock, store)
	result, err := engine.GenerateChapter(context.Background(), in)
	if err != nil {
		t.Fatalf("GenerateChapter() error = %v", err)
	}

	i1 := strings.Index(result.Text, "Rain hammered")
	i2 := strings.Index(result.Text, "ferry horn")
	i3 := strings.Index(result.Text, "answering machine")
	if !(i1 >= 0 && i1 < i2 && i2 < i3) {
		t.Fatalf("beats out of order: %d %d %d", i1, i2, i3)
	}
}

func TestSemanticRewind(t *testing.T) {
	rewind := `Mara studied the locked drawer in the lamplight. The key turned
out to be taped under the telephone table. Coins, receipts, a dead moth.
Mara studied the locked drawer in the lamplight again.`
	if !semanticRewind(rewind) {
		t.Fatal("identical opening and closing action not detected")
	}
	if semanticRewind(beatOne) {
		t.Fatal("false positive on healthy beat")
	}
}

func TestBuildLogicBridge(t *testing.T) {
	prev := "She dropped the key into the harbor and watched it sink."

	therefore := buildLogicBridge(prev, false)
	if !strings.Contains(therefore, "THEREFORE") {
		t.Fatalf("bridge = %q", therefore)
	}

	but := buildLogicBridge(prev, true)
	if !strings.Contains(but, "BUT") {
		t.Fatalf("loop bridge = %q", but)
	}

	if buildLogicBridge("", false) != "" {
		t.Fatal("no bridge without history")
	}
}
