package match

import (
	"context"
	"log/slog"
	"sort"

	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
)

// ReportSource supplies the pool of open missing-person reports.
type ReportSource interface {
	ListOpenReports(ctx context.Context) ([]models.MissingPersonReport, error)
}

// Engine scores a newly registered person against every open report and
// returns the ranked candidates above the acceptance threshold.
type Engine struct {
	reports   ReportSource
	weights   Weights
	threshold float64
	limit     int
}

// The acceptance threshold is chosen so that either one strong signal
// combination (high name similarity + age + gender) or a single ID match
// qualifies, while coincidental partial matches do not.
const (
	DefaultThreshold     = 70
	DefaultMaxCandidates = 5
)

func NewEngine(reports ReportSource, weights Weights, threshold float64, limit int) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if limit <= 0 {
		limit = DefaultMaxCandidates
	}
	return &Engine{
		reports:   reports,
		weights:   weights,
		threshold: threshold,
		limit:     limit,
	}
}

// FindCandidates is side-effect-free except for the read query. Matching is
// best-effort assistance: a store read failure is logged and yields an empty
// list rather than propagating to the registration path. An empty result is
// a normal, non-error outcome.
func (e *Engine) FindCandidates(ctx context.Context, p models.Person) []models.Candidate {
	reports, err := e.reports.ListOpenReports(ctx)
	if err != nil {
		slog.Error("list open reports for matching", "person_id", p.ID, "error", err)
		return nil
	}

	var candidates []models.Candidate
	for _, r := range reports {
		total, reasons := Score(p, r, e.weights)
		if total < e.threshold {
			continue
		}
		candidates = append(candidates, models.Candidate{
			ReportID:      r.ID,
			FullName:      r.FullName,
			Score:         total,
			Reasons:       reasons,
			PosterCode:    r.PosterCode,
			ReporterName:  r.ReporterName,
			ReporterPhone: r.ReporterPhone,
			Locale:        r.Locale,
		})
	}

	// Stable sort keeps input order as the tie-break so output is
	// reproducible for identical inputs.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > e.limit {
		candidates = candidates[:e.limit]
	}

	observability.CandidatesFound.Add(float64(len(candidates)))
	return candidates
}
