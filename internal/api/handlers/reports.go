package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

type ReportHandler struct {
	db    *storage.PostgresStore
	minio *storage.MinIOStore
}

func NewReportHandler(db *storage.PostgresStore, minio *storage.MinIOStore) *ReportHandler {
	return &ReportHandler{db: db, minio: minio}
}

func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gender := models.Gender(req.Gender)
	if !gender.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gender"})
		return
	}

	report := &models.MissingPersonReport{
		FullName:            req.FullName,
		Age:                 req.Age,
		Gender:              gender,
		NationalID:          req.NationalID,
		LastSeenLocation:    req.LastSeenLocation,
		LastSeenDistrict:    req.LastSeenDistrict,
		LastSeenDate:        req.LastSeenDate,
		ClothingDescription: req.ClothingDescription,
		ReporterName:        req.ReporterName,
		ReporterPhone:       req.ReporterPhone,
		AlternatePhone:      req.AlternatePhone,
		Locale:              req.Locale,
	}
	if report.Locale == "" {
		report.Locale = "en"
	}

	if err := h.db.CreateReport(c.Request.Context(), report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.NewReportResponse(report, false))
}

func (h *ReportHandler) List(c *gin.Context) {
	var status *models.ReportStatus
	if s := c.Query("status"); s != "" {
		st := models.ReportStatus(s)
		status = &st
	}

	reports, err := h.db.ListReports(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		resp = append(resp, dto.NewReportResponse(&reports[i], false))
	}

	c.JSON(http.StatusOK, gin.H{"reports": resp, "total": len(resp)})
}

func (h *ReportHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	report, err := h.db.GetReport(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	c.JSON(http.StatusOK, dto.NewReportResponse(report, false))
}

// GetByPosterCode serves the public view link printed on posters and sent
// in SMS notifications. No auth, reporter contact redacted.
func (h *ReportHandler) GetByPosterCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "poster code required"})
		return
	}

	report, err := h.db.GetReportByPosterCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	c.JSON(http.StatusOK, dto.NewReportResponse(report, true))
}

// UploadPhoto accepts a multipart image upload for the report poster.
func (h *ReportHandler) UploadPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	report, err := h.db.GetReport(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
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

	key, err := h.minio.PutReportPhoto(c.Request.Context(), id, imageData, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store image failed"})
		return
	}

	if err := h.db.SetReportPhoto(c.Request.Context(), id, key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"photo_url": "/v1/reports/" + id.String() + "/photo"})
}

func (h *ReportHandler) GetPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	report, err := h.db.GetReport(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if report == nil || report.PhotoKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}

	data, err := h.minio.GetPhoto(c.Request.Context(), report.PhotoKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}
