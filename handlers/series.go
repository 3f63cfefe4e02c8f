package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/contractor-po/config"
	"github.com/yourusername/contractor-po/models"
	"gorm.io/gorm"
)

type SeriesHandler struct {
	db *gorm.DB
}

func NewSeriesHandler(db *gorm.DB) *SeriesHandler {
	return &SeriesHandler{db: db}
}

type CreateSeriesRequest struct {
	JobNumbers []string `json:"jobNumbers"`
}

// CreateSeries saves a group of job numbers. Creation is set-idempotent:
// if a series with exactly the same job numbers already exists, it is
// returned instead of duplicated.
func (h *SeriesHandler) CreateSeries(c *gin.Context) {
	var req CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.JobNumbers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job numbers array is required and must not be empty"})
		return
	}

	valid := make([]string, 0, len(req.JobNumbers))
	for _, jn := range req.JobNumbers {
		if strings.TrimSpace(jn) != "" {
			valid = append(valid, jn)
		}
	}
	if len(valid) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one valid job number is required"})
		return
	}
	sort.Strings(valid)

	// The series table stays small; set equality is checked in memory.
	var existing []models.Series
	if err := h.db.Find(&existing).Error; err != nil {
		config.LogError(config.GetLogger(), "series", "CreateSeries", "db find", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving series"})
		return
	}
	for _, s := range existing {
		if sameJobNumbers(s.JobNumbers, valid) {
			c.JSON(http.StatusOK, gin.H{"message": "Series already exists", "series": s})
			return
		}
	}

	series := models.Series{JobNumbers: valid, SavedAt: time.Now()}
	if err := h.db.Create(&series).Error; err != nil {
		config.LogError(config.GetLogger(), "series", "CreateSeries", "db create", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving series"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Series saved successfully", "series": series})
}

func sameJobNumbers(a models.StringList, sortedB []string) bool {
	if len(a) != len(sortedB) {
		return false
	}
	sortedA := append([]string(nil), a...)
	sort.Strings(sortedA)
	for i := range sortedA {
		if sortedA[i] != sortedB[i] {
			return false
		}
	}
	return true
}

func (h *SeriesHandler) ListSeries(c *gin.Context) {
	var series []models.Series
	if err := h.db.Order("created_at desc").Find(&series).Error; err != nil {
		config.LogError(config.GetLogger(), "series", "ListSeries", "db find", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching series"})
		return
	}
	c.JSON(http.StatusOK, series)
}

// SearchSeries finds the most recent series containing a job number.
func (h *SeriesHandler) SearchSeries(c *gin.Context) {
	jobNumber := c.Param("jobNumber")

	var all []models.Series
	if err := h.db.Order("created_at desc").Find(&all).Error; err != nil {
		config.LogError(config.GetLogger(), "series", "SearchSeries", "db find", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching series"})
		return
	}

	for i := range all {
		if all[i].Contains(jobNumber) {
			c.JSON(http.StatusOK, gin.H{
				"found":      true,
				"seriesId":   all[i].ID,
				"jobNumbers": all[i].JobNumbers,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"found": false, "seriesId": nil, "jobNumbers": []string{}})
}

func (h *SeriesHandler) GetSeries(c *gin.Context) {
	var series models.Series
	if err := h.db.First(&series, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Series not found"})
		return
	}
	c.JSON(http.StatusOK, series)
}
