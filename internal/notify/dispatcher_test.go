package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/reunite/internal/models"
)

type fakeSender struct {
	mu       sync.Mutex
	messages map[string]string // to -> body
	failFor  map[string]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		messages: make(map[string]string),
		failFor:  make(map[string]bool),
	}
}

func (f *fakeSender) Send(ctx context.Context, to, message string) (SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return SendResult{}, errors.New("gateway unavailable")
	}
	f.messages[to] = message
	return SendResult{MessageID: "msg-" + to}, nil
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	writeLocale(t, dir, "en", enCatalog)
	c, err := LoadCatalog(dir, "en")
	require.NoError(t, err)
	return c
}

func alert(phone string) models.CandidateAlert {
	return models.CandidateAlert{
		ReportID:      uuid.New(),
		ReporterPhone: phone,
		PosterCode:    "ABCD2345",
		Locale:        "en",
		Score:         90,
	}
}

func TestDispatchRendersContactVariant(t *testing.T) {
	sender := newFakeSender()
	d := NewDispatcher(testCatalog(t), sender, "http://example.org", nil)

	task := models.NotificationTask{
		Kind:         models.TaskKindCandidates,
		PersonID:     uuid.New(),
		PersonName:   "Kamal Perera",
		ShelterName:  "Galle Central",
		ShelterPhone: "+94911234567",
		Alerts:       []models.CandidateAlert{alert("+94770000001")},
	}

	delivered := d.Dispatch(context.Background(), task)
	assert.Equal(t, 1, delivered)

	body := sender.messages["+94770000001"]
	assert.Contains(t, body, "Kamal Perera")
	assert.Contains(t, body, "Galle Central")
	assert.Contains(t, body, "+94911234567")
	assert.Contains(t, body, "http://example.org/posters/ABCD2345")
}

func TestDispatchNoContactVariantOmitsPhone(t *testing.T) {
	sender := newFakeSender()
	d := NewDispatcher(testCatalog(t), sender, "http://example.org", nil)

	task := models.NotificationTask{
		Kind:        models.TaskKindCandidates,
		PersonID:    uuid.New(),
		PersonName:  "Kamal Perera",
		ShelterName: "Galle Central",
		Alerts:      []models.CandidateAlert{alert("+94770000002")},
	}

	delivered := d.Dispatch(context.Background(), task)
	assert.Equal(t, 1, delivered)

	body := sender.messages["+94770000002"]
	assert.NotContains(t, body, "Call")
	assert.NotContains(t, body, "+9491")
	assert.Contains(t, body, "http://example.org/posters/ABCD2345")
}

func TestDispatchFailuresAreIndependent(t *testing.T) {
	sender := newFakeSender()
	sender.failFor["+94770000002"] = true
	d := NewDispatcher(testCatalog(t), sender, "http://example.org", nil)

	task := models.NotificationTask{
		Kind:         models.TaskKindCandidates,
		PersonID:     uuid.New(),
		PersonName:   "Kamal Perera",
		ShelterName:  "Galle Central",
		ShelterPhone: "+94911234567",
		Alerts: []models.CandidateAlert{
			alert("+94770000001"),
			alert("+94770000002"),
			alert("+94770000003"),
		},
	}

	delivered := d.Dispatch(context.Background(), task)

	// One alert fails, the other two still go out.
	assert.Equal(t, 2, delivered)
	assert.Contains(t, sender.messages, "+94770000001")
	assert.Contains(t, sender.messages, "+94770000003")
	assert.NotContains(t, sender.messages, "+94770000002")
}

func TestDispatchEmptyPhoneSkipped(t *testing.T) {
	sender := newFakeSender()
	d := NewDispatcher(testCatalog(t), sender, "http://example.org", nil)

	task := models.NotificationTask{
		Kind:       models.TaskKindCandidates,
		PersonID:   uuid.New(),
		PersonName: "Kamal Perera",
		Alerts:     []models.CandidateAlert{alert("")},
	}

	delivered := d.Dispatch(context.Background(), task)
	assert.Equal(t, 0, delivered)
	assert.Empty(t, sender.messages)
}

func TestDispatchConfirmedVariant(t *testing.T) {
	sender := newFakeSender()

	var mu sync.Mutex
	var events []models.DeliveryEvent
	onDone := func(evt models.DeliveryEvent) {
		mu.Lock()
		events = append(events, evt)
		mu.Unlock()
	}

	d := NewDispatcher(testCatalog(t), sender, "http://example.org", onDone)

	matchID := uuid.New()
	task := models.NotificationTask{
		Kind:        models.TaskKindConfirmed,
		PersonID:    uuid.New(),
		PersonName:  "Kamal Perera",
		ShelterName: "Galle Central",
		MatchID:     &matchID,
		Alerts:      []models.CandidateAlert{alert("+94770000004")},
	}

	delivered := d.Dispatch(context.Background(), task)
	assert.Equal(t, 1, delivered)

	body := sender.messages["+94770000004"]
	assert.Contains(t, body, "found at")

	require.Len(t, events, 1)
	assert.Equal(t, "sms_delivered", events[0].Kind)
	assert.Equal(t, "msg-+94770000004", events[0].MessageID)
}
