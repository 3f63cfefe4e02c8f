package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/contractor-po/models"
	"gorm.io/gorm"
)

func contractorsRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewContractorHandler(db)
	router := gin.New()
	router.GET("/contractors", handler.ListContractors)
	router.POST("/contractors", handler.CreateContractor)
	router.PUT("/contractors/:id", handler.UpdateContractor)
	router.DELETE("/contractors/:id", handler.DeleteContractor)
	return router
}

func TestCreateContractor(t *testing.T) {
	db := setupTestDB(t)
	router := contractorsRouter(db)

	w := doJSON(router, "POST", "/contractors", ContractorRequest{Name: "  Ravi  "})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Contractor
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Ravi", created.Name)
	assert.True(t, strings.HasPrefix(created.ContractorID, "CTR"))
	assert.False(t, created.CreationDate.IsZero())
}

func TestCreateContractorRequiresName(t *testing.T) {
	db := setupTestDB(t)
	router := contractorsRouter(db)

	assert.Equal(t, http.StatusBadRequest, doJSON(router, "POST", "/contractors", ContractorRequest{Name: "   "}).Code)
}

func TestContractorIDsDistinct(t *testing.T) {
	db := setupTestDB(t)
	router := contractorsRouter(db)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		w := doJSON(router, "POST", "/contractors", ContractorRequest{Name: "Ravi"})
		assert.Equal(t, http.StatusCreated, w.Code)

		var created models.Contractor
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.False(t, seen[created.ContractorID])
		seen[created.ContractorID] = true
	}
}

func TestUpdateContractorName(t *testing.T) {
	db := setupTestDB(t)
	router := contractorsRouter(db)

	contractor := models.Contractor{ContractorID: "CTR1", Name: "Ravi"}
	assert.NoError(t, db.Create(&contractor).Error)
	id := strconv.FormatUint(uint64(contractor.ID), 10)

	w := doJSON(router, "PUT", "/contractors/"+id, ContractorRequest{Name: "Somchai"})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Contractor
	assert.NoError(t, db.First(&updated, contractor.ID).Error)
	assert.Equal(t, "Somchai", updated.Name)
	assert.Equal(t, "CTR1", updated.ContractorID)
}

func TestListContractorsHidesDeleted(t *testing.T) {
	db := setupTestDB(t)
	router := contractorsRouter(db)

	keep := models.Contractor{ContractorID: "CTR1", Name: "Ravi"}
	gone := models.Contractor{ContractorID: "CTR2", Name: "Somchai"}
	assert.NoError(t, db.Create(&keep).Error)
	assert.NoError(t, db.Create(&gone).Error)

	id := strconv.FormatUint(uint64(gone.ID), 10)
	assert.Equal(t, http.StatusOK, doJSON(router, "DELETE", "/contractors/"+id, nil).Code)

	w := doJSON(router, "GET", "/contractors", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ravi")
	assert.NotContains(t, w.Body.String(), "Somchai")
}
