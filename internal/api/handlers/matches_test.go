package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

type fakeHub struct {
	mu     sync.Mutex
	events []*dto.WSEvent
}

func (f *fakeHub) BroadcastEvent(event *dto.WSEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeHub) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	return types
}

type fakePublisher struct {
	mu    sync.Mutex
	tasks []models.NotificationTask
}

func (f *fakePublisher) PublishTask(_ context.Context, task models.NotificationTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakePublisher) published() []models.NotificationTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.NotificationTask(nil), f.tasks...)
}

// fakeMatchStore keeps the real store's confirmation contract: one match
// per report, first confirmation flips the report to FOUND, any later
// attempt gets ErrAlreadyMatched.
type fakeMatchStore struct {
	mu         sync.Mutex
	matches    []*models.Match
	persons    map[uuid.UUID]*models.Person
	reports    map[uuid.UUID]*models.MissingPersonReport
	shelters   map[uuid.UUID]*models.Shelter
	confirmErr error
}

func (f *fakeMatchStore) ConfirmMatch(_ context.Context, personID, reportID uuid.UUID, score float64, method models.MatchMethod, confirmedBy string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	report, ok := f.reports[reportID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if report.Status != models.ReportStatusMissing {
		return nil, storage.ErrAlreadyMatched
	}
	if _, ok := f.persons[personID]; !ok {
		return nil, storage.ErrNotFound
	}

	m := &models.Match{
		ID:          uuid.New(),
		ReportID:    reportID,
		PersonID:    personID,
		Score:       score,
		Method:      method,
		ConfirmedBy: confirmedBy,
		ConfirmedAt: time.Now(),
	}
	f.matches = append(f.matches, m)
	report.Status = models.ReportStatusFound
	return m, nil
}

func (f *fakeMatchStore) GetMatch(_ context.Context, id uuid.UUID) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMatchStore) GetPerson(_ context.Context, id uuid.UUID) (*models.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.persons[id], nil
}

func (f *fakeMatchStore) GetReport(_ context.Context, id uuid.UUID) (*models.MissingPersonReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reports[id], nil
}

func (f *fakeMatchStore) GetShelter(_ context.Context, id uuid.UUID) (*models.Shelter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shelters[id], nil
}

func (f *fakeMatchStore) matchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matches)
}

func newMatchStore() (*fakeMatchStore, *models.Person, *models.MissingPersonReport) {
	shelter := &models.Shelter{ID: uuid.New(), Name: "Galle Central", ContactPhone: "+94112223344"}
	person := &models.Person{ID: uuid.New(), ShelterID: shelter.ID, FullName: "Kamal Perera", Age: 34, Gender: models.GenderMale}
	report := &models.MissingPersonReport{
		ID:            uuid.New(),
		FullName:      "Kamal Perera",
		Age:           35,
		Gender:        models.GenderMale,
		ReporterName:  "Nimal Perera",
		ReporterPhone: "+94771234567",
		PosterCode:    "KJM3PW2X",
		Locale:        "si",
		Status:        models.ReportStatusMissing,
	}
	store := &fakeMatchStore{
		persons:  map[uuid.UUID]*models.Person{person.ID: person},
		reports:  map[uuid.UUID]*models.MissingPersonReport{report.ID: report},
		shelters: map[uuid.UUID]*models.Shelter{shelter.ID: shelter},
	}
	return store, person, report
}

func newMatchRouter(store MatchStore, pub TaskPublisher, hub EventBroadcaster) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMatchHandler(store, pub, hub)
	r.POST("/matches", h.Confirm)
	r.GET("/matches/:id", h.Get)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestConfirmMatchSuccess(t *testing.T) {
	store, person, report := newMatchStore()
	hub := &fakeHub{}
	pub := &fakePublisher{}
	r := newMatchRouter(store, pub, hub)

	w := postJSON(t, r, "/matches", dto.ConfirmMatchRequest{
		PersonID:    person.ID,
		ReportID:    report.ID,
		Score:       190,
		ConfirmedBy: "staff-7",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Match   dto.MatchResponse `json:"match"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, person.ID, resp.Match.PersonID)
	assert.Equal(t, "MANUAL", resp.Match.Method) // default when omitted
	assert.Equal(t, 1, store.matchCount())

	assert.Contains(t, hub.eventTypes(), "match_confirmed")

	// The reporter notification is published off the request path.
	require.Eventually(t, func() bool {
		return len(pub.published()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	task := pub.published()[0]
	assert.Equal(t, models.TaskKindConfirmed, task.Kind)
	require.NotNil(t, task.MatchID)
	require.Len(t, task.Alerts, 1)
	assert.Equal(t, "+94771234567", task.Alerts[0].ReporterPhone)
	assert.Equal(t, "si", task.Alerts[0].Locale)
}

func TestConfirmMatchTwiceConflicts(t *testing.T) {
	store, person, report := newMatchStore()
	r := newMatchRouter(store, &fakePublisher{}, &fakeHub{})
	req := dto.ConfirmMatchRequest{PersonID: person.ID, ReportID: report.ID, Score: 190}

	first := postJSON(t, r, "/matches", req)
	require.Equal(t, http.StatusOK, first.Code)

	second := postJSON(t, r, "/matches", req)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "report already matched")
	assert.Equal(t, 1, store.matchCount(), "conflict must not insert a second match")
}

func TestConfirmDifferentPersonSameReportConflicts(t *testing.T) {
	store, person, report := newMatchStore()
	other := &models.Person{ID: uuid.New(), ShelterID: person.ShelterID, FullName: "Sunil Perera", Age: 36, Gender: models.GenderMale}
	store.persons[other.ID] = other
	r := newMatchRouter(store, &fakePublisher{}, &fakeHub{})

	first := postJSON(t, r, "/matches", dto.ConfirmMatchRequest{PersonID: person.ID, ReportID: report.ID, Score: 190})
	require.Equal(t, http.StatusOK, first.Code)

	second := postJSON(t, r, "/matches", dto.ConfirmMatchRequest{PersonID: other.ID, ReportID: report.ID, Score: 120})
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, 1, store.matchCount())
}

func TestConfirmUnknownPersonNotFound(t *testing.T) {
	store, _, report := newMatchStore()
	r := newMatchRouter(store, &fakePublisher{}, &fakeHub{})

	w := postJSON(t, r, "/matches", dto.ConfirmMatchRequest{PersonID: uuid.New(), ReportID: report.ID, Score: 90})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, store.matchCount())
}

func TestConfirmStoreFailure(t *testing.T) {
	store, person, report := newMatchStore()
	store.confirmErr = errors.New("connection reset by peer")
	hub := &fakeHub{}
	pub := &fakePublisher{}
	r := newMatchRouter(store, pub, hub)

	w := postJSON(t, r, "/matches", dto.ConfirmMatchRequest{PersonID: person.ID, ReportID: report.ID, Score: 190})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "confirmation failed")
	assert.Equal(t, 0, store.matchCount())
	assert.Empty(t, hub.eventTypes())
	assert.Empty(t, pub.published())
}

func TestConfirmInvalidMethod(t *testing.T) {
	store, person, report := newMatchStore()
	r := newMatchRouter(store, &fakePublisher{}, &fakeHub{})

	w := postJSON(t, r, "/matches", dto.ConfirmMatchRequest{
		PersonID: person.ID,
		ReportID: report.ID,
		Method:   "PHOTO_MATCH",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, store.matchCount())
}
