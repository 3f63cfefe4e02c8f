package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/contractor-po/models"
	"gorm.io/gorm"
)

func operationsRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewOperationHandler(db)
	router := gin.New()
	router.GET("/operations", handler.ListOperations)
	router.GET("/operations/:id", handler.GetOperation)
	router.POST("/operations", handler.CreateOperation)
	router.PUT("/operations/:id", handler.UpdateOperation)
	router.DELETE("/operations/:id", handler.DeleteOperation)
	return router
}

func TestCreateOperation(t *testing.T) {
	db := setupTestDB(t)
	router := operationsRouter(db)

	w := doJSON(router, "POST", "/operations", OperationRequest{
		OpsName: "Binding", Type: models.OpTypeDivide, RatePerUnit: floatPtr(0.5),
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Operation
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Binding", created.OpsName)
	assert.Equal(t, models.OpTypeDivide, created.Type)
	assert.Equal(t, 0.5, created.RatePerUnit)
}

func TestCreateOperationRateNormalized(t *testing.T) {
	db := setupTestDB(t)
	router := operationsRouter(db)

	w := doJSON(router, "POST", "/operations", OperationRequest{
		OpsName: "Stitch", Type: models.OpTypeOneToOne, RatePerUnit: floatPtr(0.123456),
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Operation
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 0.1235, created.RatePerUnit)
}

func TestCreateOperationValidation(t *testing.T) {
	db := setupTestDB(t)
	router := operationsRouter(db)

	t.Run("Missing Fields", func(t *testing.T) {
		w := doJSON(router, "POST", "/operations", OperationRequest{OpsName: "Binding"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Bad Type", func(t *testing.T) {
		w := doJSON(router, "POST", "/operations", OperationRequest{
			OpsName: "Binding", Type: "2:1", RatePerUnit: floatPtr(0.5),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Negative Rate", func(t *testing.T) {
		w := doJSON(router, "POST", "/operations", OperationRequest{
			OpsName: "Binding", Type: models.OpTypeOneToOne, RatePerUnit: floatPtr(-1),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateOperationDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	router := operationsRouter(db)

	req := OperationRequest{OpsName: "Binding", Type: models.OpTypeOneToOne, RatePerUnit: floatPtr(0.5)}
	assert.Equal(t, http.StatusCreated, doJSON(router, "POST", "/operations", req).Code)
	assert.Equal(t, http.StatusConflict, doJSON(router, "POST", "/operations", req).Code)
}

func TestDeletedOperationNameReusable(t *testing.T) {
	db := setupTestDB(t)
	router := operationsRouter(db)

	req := OperationRequest{OpsName: "Binding", Type: models.OpTypeOneToOne, RatePerUnit: floatPtr(0.5)}
	w := doJSON(router, "POST", "/operations", req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Operation
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := strconv.FormatUint(uint64(created.ID), 10)

	assert.Equal(t, http.StatusOK, doJSON(router, "DELETE", "/operations/"+id, nil).Code)
	assert.Equal(t, http.StatusCreated, doJSON(router, "POST", "/operations", req).Code)
}

func TestListOperationsSearch(t *testing.T) {
	db := setupTestDB(t)
	router := operationsRouter(db)

	createOperation(t, db, "Binding", models.OpTypeOneToOne, 0.5)
	createOperation(t, db, "Lamination", models.OpTypeOneToOne, 1.2)

	w := doJSON(router, "GET", "/operations?search=bind", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Binding")
	assert.NotContains(t, w.Body.String(), "Lamination")
}

func TestListOperationsHidesDeleted(t *testing.T) {
	db := setupTestDB(t)
	router := operationsRouter(db)

	createOperation(t, db, "Binding", models.OpTypeOneToOne, 0.5)
	id := createOperation(t, db, "Lamination", models.OpTypeOneToOne, 1.2)

	assert.Equal(t, http.StatusOK, doJSON(router, "DELETE", "/operations/"+id, nil).Code)

	w := doJSON(router, "GET", "/operations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Binding")
	assert.NotContains(t, w.Body.String(), "Lamination")
}

func TestUpdateOperation(t *testing.T) {
	db := setupTestDB(t)
	router := operationsRouter(db)

	id := createOperation(t, db, "Binding", models.OpTypeOneToOne, 0.5)

	w := doJSON(router, "PUT", "/operations/"+id, OperationRequest{
		OpsName: "Perfect Binding", Type: models.OpTypeDivide, RatePerUnit: floatPtr(0.75),
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Operation
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Perfect Binding", updated.OpsName)
	assert.Equal(t, models.OpTypeDivide, updated.Type)
	assert.Equal(t, 0.75, updated.RatePerUnit)
}

func TestGetOperationNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := operationsRouter(db)

	w := doJSON(router, "GET", "/operations/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
