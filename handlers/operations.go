package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/contractor-po/config"
	"github.com/yourusername/contractor-po/models"
	"gorm.io/gorm"
)

type OperationHandler struct {
	db *gorm.DB
}

func NewOperationHandler(db *gorm.DB) *OperationHandler {
	return &OperationHandler{db: db}
}

// ListOperations returns active catalog entries, optionally filtered by a
// case-insensitive name search.
func (h *OperationHandler) ListOperations(c *gin.Context) {
	query := h.db.Where("is_deleted = ?", 0)
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(ops_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var operations []models.Operation
	if err := query.Order("ops_name asc").Find(&operations).Error; err != nil {
		config.LogError(config.GetLogger(), "operations", "ListOperations", "db find", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching operations"})
		return
	}

	c.JSON(http.StatusOK, operations)
}

func (h *OperationHandler) GetOperation(c *gin.Context) {
	var operation models.Operation
	if err := h.db.First(&operation, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Operation not found"})
		return
	}
	c.JSON(http.StatusOK, operation)
}

type OperationRequest struct {
	OpsName     string   `json:"opsName"`
	Type        string   `json:"type"`
	RatePerUnit *float64 `json:"ratePerUnit"`
}

// validate checks the shared create/update shape and returns the rate
// normalized to 4 decimal places.
func (r *OperationRequest) validate() (float64, string, bool) {
	if r.OpsName == "" || r.Type == "" || r.RatePerUnit == nil {
		return 0, "Operation name, type, and rate/unit are required", false
	}
	if !models.ValidOpType(r.Type) {
		return 0, "Operation type must be one of 1:1, 1*x, 1/x", false
	}
	rate := models.RoundRate(*r.RatePerUnit)
	if rate < 0 {
		return 0, "Rate/unit must be a valid number greater than or equal to 0", false
	}
	return rate, "", true
}

func (h *OperationHandler) CreateOperation(c *gin.Context) {
	var req OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Operation name, type, and rate/unit are required"})
		return
	}

	rate, msg, ok := req.validate()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	// A soft-deleted operation's name may be reused.
	var count int64
	if err := h.db.Model(&models.Operation{}).
		Where("ops_name = ? AND is_deleted = ?", req.OpsName, 0).
		Count(&count).Error; err != nil {
		config.LogError(config.GetLogger(), "operations", "CreateOperation", "uniqueness check", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating operation"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Operation already exists"})
		return
	}

	operation := models.Operation{
		OpsName:     req.OpsName,
		Type:        req.Type,
		RatePerUnit: rate,
	}

	if err := h.db.Create(&operation).Error; err != nil {
		config.LogError(config.GetLogger(), "operations", "CreateOperation", "db create", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating operation"})
		return
	}

	c.JSON(http.StatusCreated, operation)
}

func (h *OperationHandler) UpdateOperation(c *gin.Context) {
	var req OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Operation name, type, and rate/unit are required"})
		return
	}

	rate, msg, ok := req.validate()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var operation models.Operation
	if err := h.db.First(&operation, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Operation not found"})
		return
	}

	operation.OpsName = req.OpsName
	operation.Type = req.Type
	operation.RatePerUnit = rate

	if err := h.db.Save(&operation).Error; err != nil {
		config.LogError(config.GetLogger(), "operations", "UpdateOperation", "db save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating operation"})
		return
	}

	c.JSON(http.StatusOK, operation)
}

// DeleteOperation soft-deletes a catalog entry. Ledger lines that already
// reference it keep their snapshots.
func (h *OperationHandler) DeleteOperation(c *gin.Context) {
	var operation models.Operation
	if err := h.db.First(&operation, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Operation not found"})
		return
	}

	operation.IsDeleted = 1
	if err := h.db.Save(&operation).Error; err != nil {
		config.LogError(config.GetLogger(), "operations", "DeleteOperation", "db save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting operation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Operation deleted successfully"})
}
