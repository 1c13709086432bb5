package match

import (
	"fmt"
	"strings"

	"github.com/your-org/reunite/internal/models"
)

// Weights holds the per-signal point values. The defaults were carried over
// from the field-tested deployment; treat them as tunable parameters, not
// derived quantities.
type Weights struct {
	IDMatch     float64 `yaml:"id_match"`
	Name        float64 `yaml:"name"`
	AgeStep     float64 `yaml:"age_step"`
	GenderMatch float64 `yaml:"gender_match"`
}

func DefaultWeights() Weights {
	return Weights{
		IDMatch:     100,
		Name:        50,
		AgeStep:     10,
		GenderMatch: 10,
	}
}

// nameSimilarityFloor is the minimum normalized similarity for the name
// signal to contribute at all.
const nameSimilarityFloor = 0.7

// maxAgeDiff is the largest age difference (years) that still contributes.
const maxAgeDiff = 2

// Score computes the composite match score between a registered person and
// an open report. The four signals are independently additive. Absent
// optional fields (national ID, empty names) contribute nothing; they are
// never an error.
func Score(p models.Person, r models.MissingPersonReport, w Weights) (float64, []string) {
	var total float64
	var reasons []string

	// An exact national-ID match alone clears the acceptance threshold.
	if p.NationalID != "" && r.NationalID != "" && p.NationalID == r.NationalID {
		total += w.IDMatch
		reasons = append(reasons, "ID matches exactly")
	}

	if sim := NameSimilarity(p.FullName, r.FullName); sim > nameSimilarityFloor {
		total += sim * w.Name
		reasons = append(reasons, fmt.Sprintf("names are %d%% similar", int(sim*100)))
	}

	diff := p.Age - r.Age
	if diff < 0 {
		diff = -diff
	}
	if diff <= maxAgeDiff {
		total += float64(maxAgeDiff+1-diff) * w.AgeStep
		if diff == 0 {
			reasons = append(reasons, "age matches exactly")
		} else {
			reasons = append(reasons, fmt.Sprintf("age within %d years", diff))
		}
	}

	if p.Gender != "" && p.Gender == r.Gender {
		total += w.GenderMatch
		reasons = append(reasons, "gender matches")
	}

	return total, reasons
}

// NameSimilarity returns a normalized edit-distance similarity in [0,1]
// between two full names, case-insensitive. Empty names never match.
func NameSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

// levenshtein computes the classic edit distance with unit costs for
// insert, delete and substitute. Two-row rolling buffer.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
