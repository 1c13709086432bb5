package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

type ShelterHandler struct {
	db *storage.PostgresStore
}

func NewShelterHandler(db *storage.PostgresStore) *ShelterHandler {
	return &ShelterHandler{db: db}
}

func (h *ShelterHandler) Create(c *gin.Context) {
	var req dto.CreateShelterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shelter, err := h.db.CreateShelter(c.Request.Context(), req.Name, req.District, req.ContactPhone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.NewShelterResponse(shelter))
}

func (h *ShelterHandler) List(c *gin.Context) {
	shelters, err := h.db.ListShelters(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.ShelterResponse, 0, len(shelters))
	for i := range shelters {
		resp = append(resp, dto.NewShelterResponse(&shelters[i]))
	}

	c.JSON(http.StatusOK, gin.H{"shelters": resp, "total": len(resp)})
}

func (h *ShelterHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shelter id"})
		return
	}

	shelter, err := h.db.GetShelter(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if shelter == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shelter not found"})
		return
	}

	c.JSON(http.StatusOK, dto.NewShelterResponse(shelter))
}
