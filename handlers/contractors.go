package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/contractor-po/config"
	"github.com/yourusername/contractor-po/models"
	"gorm.io/gorm"
)

type ContractorHandler struct {
	db *gorm.DB
}

func NewContractorHandler(db *gorm.DB) *ContractorHandler {
	return &ContractorHandler{db: db}
}

func (h *ContractorHandler) ListContractors(c *gin.Context) {
	var contractors []models.Contractor
	if err := h.db.Where("is_deleted = ?", 0).Order("creation_date desc").Find(&contractors).Error; err != nil {
		config.LogError(config.GetLogger(), "contractors", "ListContractors", "db find", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching contractors"})
		return
	}
	c.JSON(http.StatusOK, contractors)
}

type ContractorRequest struct {
	Name string `json:"name"`
}

func (h *ContractorHandler) CreateContractor(c *gin.Context) {
	var req ContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contractor name is required"})
		return
	}

	// Keep generating until the ID is unused. Collisions are unlikely but
	// the ID carries a wall-clock component.
	var contractorID string
	for {
		contractorID = models.NewContractorID()
		var count int64
		if err := h.db.Model(&models.Contractor{}).
			Where("contractor_id = ?", contractorID).
			Count(&count).Error; err != nil {
			config.LogError(config.GetLogger(), "contractors", "CreateContractor", "id check", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating contractor"})
			return
		}
		if count == 0 {
			break
		}
	}

	contractor := models.Contractor{
		ContractorID: contractorID,
		Name:         strings.TrimSpace(req.Name),
		CreationDate: time.Now(),
	}

	if err := h.db.Create(&contractor).Error; err != nil {
		config.LogError(config.GetLogger(), "contractors", "CreateContractor", "db create", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating contractor"})
		return
	}

	c.JSON(http.StatusCreated, contractor)
}

// UpdateContractor edits the display name only; the generated ID is fixed.
func (h *ContractorHandler) UpdateContractor(c *gin.Context) {
	var req ContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contractor name is required"})
		return
	}

	var contractor models.Contractor
	if err := h.db.First(&contractor, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
		return
	}

	contractor.Name = strings.TrimSpace(req.Name)
	if err := h.db.Save(&contractor).Error; err != nil {
		config.LogError(config.GetLogger(), "contractors", "UpdateContractor", "db save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating contractor"})
		return
	}

	c.JSON(http.StatusOK, contractor)
}

func (h *ContractorHandler) DeleteContractor(c *gin.Context) {
	var contractor models.Contractor
	if err := h.db.First(&contractor, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
		return
	}

	contractor.IsDeleted = 1
	if err := h.db.Save(&contractor).Error; err != nil {
		config.LogError(config.GetLogger(), "contractors", "DeleteContractor", "db save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting contractor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contractor deleted successfully"})
}
