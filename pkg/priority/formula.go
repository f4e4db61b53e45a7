package priority

import (
	"context"
	"strings"
	"time"
)

const (
	categoryWeight = 0.5
	subjectWeight  = 0.5
	deadlineWeight = 3.0

	defaultUrgency    = 3.0
	defaultDifficulty = 3.5
)

// Mean urgency per task category, from the survey the scoring model was trained on.
var categoryUrgency = map[string]float64{
	"ulangan":         3.991722,
	"pts_pas":         4.533113,
	"tugas":           3.597682,
	"presentasi":      3.594371,
	"proyek":          4.046358,
	"ekstrakurikuler": 2.149007,
	"organisasi":      2.498344,
}

// Mean difficulty per subject.
var subjectDifficulty = map[string]float64{
	"agama":      2.241722,
	"pkn":        2.754967,
	"olahraga":   1.394040,
	"indonesia":  2.572848,
	"inggris":    3.062914,
	"mandarin":   3.390728,
	"matematika": 3.662252,
	"biologi":    3.470199,
	"fisika":     3.764901,
	"kimia":      3.913907,
	"senbud":     2.483444,
	"prakarya":   2.296358,
	"sejarah":    3.468543,
	"ekonomi":    3.160596,
	"sosiologi":  2.544702,
	"geografi":   3.831126,
	"komputer":   2.509934,
}

// FormulaScorer computes the weighted urgency/difficulty/deadline score
// in-process, without the model service.
type FormulaScorer struct {
	now func() time.Time
}

// NewFormulaScorer returns a scorer that uses the wall clock.
func NewFormulaScorer() *FormulaScorer {
	return &FormulaScorer{now: time.Now}
}

// Score never fails; unknown categories and subjects use neutral defaults.
func (s *FormulaScorer) Score(_ context.Context, req Request) (float64, error) {
	urgency, ok := categoryUrgency[strings.ToLower(strings.TrimSpace(req.Category))]
	if !ok {
		urgency = defaultUrgency
	}

	difficulty, ok := subjectDifficulty[strings.ToLower(strings.TrimSpace(req.Subject))]
	if !ok {
		difficulty = defaultDifficulty
	}

	return categoryWeight*urgency + subjectWeight*difficulty + deadlineWeight*deadlineImpact(req.Deadline, s.now()), nil
}

func deadlineImpact(deadline, now time.Time) float64 {
	left := deadline.Sub(now)
	switch {
	case left <= 24*time.Hour:
		return 6
	case left <= 48*time.Hour:
		return 4
	default:
		return 2
	}
}
