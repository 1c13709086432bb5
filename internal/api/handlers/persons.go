package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/match"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

type PersonHandler struct {
	db       PersonStore
	minio    *storage.MinIOStore
	engine   *match.Engine
	producer TaskPublisher
	hub      EventBroadcaster
}

func NewPersonHandler(db PersonStore, minio *storage.MinIOStore, engine *match.Engine, producer TaskPublisher, hub EventBroadcaster) *PersonHandler {
	return &PersonHandler{db: db, minio: minio, engine: engine, producer: producer, hub: hub}
}

// Register inserts one person and returns candidate suggestions for the
// intake UI. Matching is best-effort: a matching outage yields an empty
// candidate list, never a failed registration. Reporter notifications are
// scheduled in the background; the response does not wait on them.
func (h *PersonHandler) Register(c *gin.Context) {
	var req dto.RegisterPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gender := models.Gender(req.Gender)
	if !gender.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gender"})
		return
	}

	shelter, err := h.db.GetShelter(c.Request.Context(), req.ShelterID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if shelter == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shelter not found"})
		return
	}

	person := &models.Person{
		ShelterID:  req.ShelterID,
		FullName:   req.FullName,
		Age:        req.Age,
		Gender:     gender,
		NationalID: req.NationalID,
	}
	if err := h.db.CreatePerson(c.Request.Context(), person); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	observability.RegistrationsTotal.Inc()

	candidates := h.engine.FindCandidates(c.Request.Context(), *person)
	h.afterMatching(shelter, person, candidates)

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		Person:     dto.NewPersonResponse(person),
		Candidates: dto.NewCandidateResponses(candidates),
	})
}

// BulkRegister inserts a batch of persons for one shelter and matches each
// independently and in parallel. A failure on one entry never aborts the
// others.
func (h *PersonHandler) BulkRegister(c *gin.Context) {
	var req dto.BulkRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shelter, err := h.db.GetShelter(c.Request.Context(), req.ShelterID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if shelter == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shelter not found"})
		return
	}

	results := make([]dto.BulkItemResult, len(req.Persons))

	var wg sync.WaitGroup
	for i, entry := range req.Persons {
		wg.Add(1)
		go func(i int, entry dto.BulkPersonEntry) {
			defer wg.Done()
			results[i] = h.registerOne(c.Request.Context(), shelter, entry)
		}(i, entry)
	}
	wg.Wait()

	registered := 0
	for _, r := range results {
		if r.Error == "" {
			registered++
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"results":    results,
		"total":      len(results),
		"registered": registered,
	})
}

func (h *PersonHandler) registerOne(ctx context.Context, shelter *models.Shelter, entry dto.BulkPersonEntry) dto.BulkItemResult {
	result := dto.BulkItemResult{FullName: entry.FullName}

	gender := models.Gender(entry.Gender)
	if !gender.Valid() {
		result.Error = "invalid gender"
		return result
	}

	person := &models.Person{
		ShelterID:  shelter.ID,
		FullName:   entry.FullName,
		Age:        entry.Age,
		Gender:     gender,
		NationalID: entry.NationalID,
	}
	if err := h.db.CreatePerson(ctx, person); err != nil {
		slog.Error("bulk register person", "full_name", entry.FullName, "error", err)
		result.Error = err.Error()
		return result
	}
	observability.RegistrationsTotal.Inc()

	candidates := h.engine.FindCandidates(ctx, *person)
	h.afterMatching(shelter, person, candidates)

	pr := dto.NewPersonResponse(person)
	result.Person = &pr
	result.Candidates = dto.NewCandidateResponses(candidates)
	return result
}

// afterMatching broadcasts the match activity and schedules reporter
// notifications. Fire-and-forget: a publish failure is logged and absorbed,
// the registration response never waits or fails on it.
func (h *PersonHandler) afterMatching(shelter *models.Shelter, person *models.Person, candidates []models.Candidate) {
	if len(candidates) == 0 {
		return
	}

	h.hub.BroadcastEvent(&dto.WSEvent{
		Type:      "candidates_found",
		ShelterID: shelter.ID,
		Data: gin.H{
			"person_id":   person.ID,
			"person_name": person.FullName,
			"candidates":  dto.NewCandidateResponses(candidates),
		},
	})

	task := models.NotificationTask{
		Kind:         models.TaskKindCandidates,
		PersonID:     person.ID,
		PersonName:   person.FullName,
		ShelterName:  shelter.Name,
		ShelterPhone: shelter.ContactPhone,
	}
	for _, cand := range candidates {
		task.Alerts = append(task.Alerts, models.CandidateAlert{
			ReportID:      cand.ReportID,
			ReporterPhone: cand.ReporterPhone,
			PosterCode:    cand.PosterCode,
			Locale:        cand.Locale,
			Score:         cand.Score,
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.producer.PublishTask(ctx, task); err != nil {
			// Lost notifications are acceptable but must be loud enough
			// to support manual follow-up.
			slog.Error("publish notification task", "person_id", person.ID,
				"alerts", len(task.Alerts), "error", err)
		}
	}()
}

func (h *PersonHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}

	person, err := h.db.GetPerson(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if person == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		return
	}

	c.JSON(http.StatusOK, dto.NewPersonResponse(person))
}

func (h *PersonHandler) List(c *gin.Context) {
	var shelterID *uuid.UUID
	if s := c.Query("shelter_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shelter_id"})
			return
		}
		shelterID = &id
	}

	persons, err := h.db.ListPersons(c.Request.Context(), shelterID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.PersonResponse, 0, len(persons))
	for i := range persons {
		resp = append(resp, dto.NewPersonResponse(&persons[i]))
	}

	c.JSON(http.StatusOK, gin.H{"persons": resp, "total": len(resp)})
}

// UploadPhoto accepts a multipart image upload for a registered person.
func (h *PersonHandler) UploadPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}

	person, err := h.db.GetPerson(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if person == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read image failed"})
		return
	}

	key, err := h.minio.PutPersonPhoto(c.Request.Context(), id, imageData, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store image failed"})
		return
	}

	if err := h.db.SetPersonPhoto(c.Request.Context(), id, key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"photo_url": "/v1/persons/" + id.String() + "/photo"})
}

func (h *PersonHandler) GetPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return
	}

	person, err := h.db.GetPerson(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if person == nil || person.PhotoKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}

	data, err := h.minio.GetPhoto(c.Request.Context(), person.PhotoKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}
