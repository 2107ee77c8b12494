// Package validate holds the math-based quality checks. A validator
// never rewrites text; it measures, and turns failed measurements into
// surgical feedback the beat engine pastes into the retry prompt.
package validate

import "fmt"

// Metrics are the measured values behind a report, kept so the beat
// engine can aggregate them across attempts and chapters.
type Metrics struct {
	SentenceVariance float64
	NameDensity      float64
	StaccatoRatio    float64
	LoopSimilarity   float64
	BannedHits       int
	MaxStarterRun    int
	SensoryHits      int
	WordCount        int

	// Format-specific sub-metrics; zero when not applicable.
	DialogueRatio  float64
	FancyTagRatio  float64
	LongParaRatio  float64
	PanelCount     int
	MaxBubbleWords int
}

// Report is the outcome of one validation pass. Corrections invalidate
// the text; warnings are advisory and survive acceptance.
type Report struct {
	IsValid     bool
	Corrections []string
	Warnings    []string
	Metrics     Metrics
}

func (r *Report) addCorrection(format string, args ...any) {
	r.IsValid = false
	r.Corrections = append(r.Corrections, fmt.Sprintf(format, args...))
}

func (r *Report) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge folds another report into this one.
func (r *Report) Merge(other Report) {
	if !other.IsValid {
		r.IsValid = false
	}
	r.Corrections = append(r.Corrections, other.Corrections...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
