package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

type MatchHandler struct {
	db       MatchStore
	producer TaskPublisher
	hub      EventBroadcaster
}

func NewMatchHandler(db MatchStore, producer TaskPublisher, hub EventBroadcaster) *MatchHandler {
	return &MatchHandler{db: db, producer: producer, hub: hub}
}

// Confirm executes the atomic person-report link on staff approval. A report
// that is no longer MISSING yields an explicit "already matched" conflict;
// re-confirming the same pair after success is rejected the same way.
func (h *MatchHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	method := models.MatchMethodManual
	if req.Method != "" {
		method = models.MatchMethod(req.Method)
		if method != models.MatchMethodManual && method != models.MatchMethodAutomatic {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid method"})
			return
		}
	}

	m, err := h.db.ConfirmMatch(c.Request.Context(), req.PersonID, req.ReportID, req.Score, method, req.ConfirmedBy)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyMatched):
			c.JSON(http.StatusConflict, gin.H{"success": false, "reason": "report already matched"})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "reason": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "reason": "confirmation failed"})
		}
		return
	}
	observability.MatchesConfirmed.WithLabelValues(string(m.Method)).Inc()

	h.afterConfirm(c.Request.Context(), m)

	c.JSON(http.StatusOK, gin.H{"success": true, "match": dto.NewMatchResponse(m)})
}

// afterConfirm broadcasts the confirmation and schedules the "found"
// notification to the original reporter. Best-effort: lookups or publish
// failures are logged, never surfaced to the confirming staff.
func (h *MatchHandler) afterConfirm(ctx context.Context, m *models.Match) {
	person, err := h.db.GetPerson(ctx, m.PersonID)
	if err != nil || person == nil {
		slog.Error("load person after confirm", "person_id", m.PersonID, "error", err)
		return
	}
	report, err := h.db.GetReport(ctx, m.ReportID)
	if err != nil || report == nil {
		slog.Error("load report after confirm", "report_id", m.ReportID, "error", err)
		return
	}
	shelter, err := h.db.GetShelter(ctx, person.ShelterID)
	if err != nil || shelter == nil {
		slog.Error("load shelter after confirm", "shelter_id", person.ShelterID, "error", err)
		return
	}

	h.hub.BroadcastEvent(&dto.WSEvent{
		Type:      "match_confirmed",
		ShelterID: shelter.ID,
		Data:      dto.NewMatchResponse(m),
	})

	matchID := m.ID
	task := models.NotificationTask{
		Kind:         models.TaskKindConfirmed,
		PersonID:     person.ID,
		PersonName:   person.FullName,
		ShelterName:  shelter.Name,
		ShelterPhone: shelter.ContactPhone,
		MatchID:      &matchID,
		Alerts: []models.CandidateAlert{{
			ReportID:      report.ID,
			ReporterPhone: report.ReporterPhone,
			PosterCode:    report.PosterCode,
			Locale:        report.Locale,
			Score:         m.Score,
		}},
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.producer.PublishTask(pubCtx, task); err != nil {
			slog.Error("publish confirmation notification", "match_id", m.ID, "error", err)
		}
	}()
}

func (h *MatchHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	m, err := h.db.GetMatch(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}

	c.JSON(http.StatusOK, dto.NewMatchResponse(m))
}
