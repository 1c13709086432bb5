package match

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/reunite/internal/models"
)

type fakeReports struct {
	reports []models.MissingPersonReport
	err     error
}

func (f *fakeReports) ListOpenReports(ctx context.Context) ([]models.MissingPersonReport, error) {
	return f.reports, f.err
}

func report(name string, age int, gender models.Gender) models.MissingPersonReport {
	return models.MissingPersonReport{
		ID:            uuid.New(),
		FullName:      name,
		Age:           age,
		Gender:        gender,
		ReporterName:  "Reporter",
		ReporterPhone: "+94771234567",
		PosterCode:    "ABCD2345",
		Locale:        "en",
		Status:        models.ReportStatusMissing,
	}
}

func TestFindCandidatesEmptyPool(t *testing.T) {
	e := NewEngine(&fakeReports{}, DefaultWeights(), 0, 0)

	got := e.FindCandidates(context.Background(), models.Person{FullName: "Kamal Perera", Age: 34})
	assert.Empty(t, got)
}

func TestFindCandidatesStoreFailureIsAbsorbed(t *testing.T) {
	e := NewEngine(&fakeReports{err: errors.New("connection refused")}, DefaultWeights(), 0, 0)

	got := e.FindCandidates(context.Background(), models.Person{FullName: "Kamal Perera", Age: 34})
	assert.Empty(t, got)
}

func TestFindCandidatesThreshold(t *testing.T) {
	src := &fakeReports{reports: []models.MissingPersonReport{
		report("Kamal Perera", 34, models.GenderMale),    // 90: name + age + gender
		report("Someone Unrelated", 80, models.GenderFemale), // below threshold
	}}
	e := NewEngine(src, DefaultWeights(), 0, 0)

	got := e.FindCandidates(context.Background(), models.Person{
		FullName: "Kamal Perera", Age: 34, Gender: models.GenderMale,
	})

	require.Len(t, got, 1)
	assert.Equal(t, src.reports[0].ID, got[0].ReportID)
	assert.Equal(t, 90.0, got[0].Score)
	assert.NotEmpty(t, got[0].Reasons)
	assert.Equal(t, "+94771234567", got[0].ReporterPhone)
}

func TestFindCandidatesLimitAndOrdering(t *testing.T) {
	var reports []models.MissingPersonReport
	// Eight reports that all clear the threshold, with varying age offsets
	// so the scores differ.
	for i := 0; i < 8; i++ {
		reports = append(reports, report("Kamal Perera", 34+i%3, models.GenderMale))
	}
	e := NewEngine(&fakeReports{reports: reports}, DefaultWeights(), 0, 0)

	got := e.FindCandidates(context.Background(), models.Person{
		FullName: "Kamal Perera", Age: 34, Gender: models.GenderMale,
	})

	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestFindCandidatesStableTieBreak(t *testing.T) {
	var reports []models.MissingPersonReport
	for i := 0; i < 6; i++ {
		r := report("Kamal Perera", 34, models.GenderMale)
		r.PosterCode = fmt.Sprintf("CODE%04d", i)
		reports = append(reports, r)
	}
	e := NewEngine(&fakeReports{reports: reports}, DefaultWeights(), 0, 0)

	got := e.FindCandidates(context.Background(), models.Person{
		FullName: "Kamal Perera", Age: 34, Gender: models.GenderMale,
	})

	// All scores tie; stable sort preserves input order.
	require.Len(t, got, 5)
	for i, c := range got {
		assert.Equal(t, fmt.Sprintf("CODE%04d", i), c.PosterCode)
	}
}

func TestFindCandidatesCustomThreshold(t *testing.T) {
	src := &fakeReports{reports: []models.MissingPersonReport{
		report("Kamal Perera", 34, models.GenderMale), // scores 90
	}}
	e := NewEngine(src, DefaultWeights(), 95, 5)

	got := e.FindCandidates(context.Background(), models.Person{
		FullName: "Kamal Perera", Age: 34, Gender: models.GenderMale,
	})
	assert.Empty(t, got)
}
