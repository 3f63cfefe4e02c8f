package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func seriesRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSeriesHandler(db)
	router := gin.New()
	router.GET("/series", handler.ListSeries)
	router.GET("/series/search/:jobNumber", handler.SearchSeries)
	router.GET("/series/:id", handler.GetSeries)
	router.POST("/series", handler.CreateSeries)
	return router
}

func TestCreateSeries(t *testing.T) {
	db := setupTestDB(t)
	router := seriesRouter(db)

	w := doJSON(router, "POST", "/series", CreateSeriesRequest{JobNumbers: []string{"J2", "J1", "J3"}})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Series saved successfully")
}

func TestCreateSeriesSetIdempotent(t *testing.T) {
	db := setupTestDB(t)
	router := seriesRouter(db)

	assert.Equal(t, http.StatusCreated, doJSON(router, "POST", "/series", CreateSeriesRequest{JobNumbers: []string{"J1", "J2"}}).Code)

	// Same set in a different order is the same series.
	w := doJSON(router, "POST", "/series", CreateSeriesRequest{JobNumbers: []string{"J2", "J1"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Series already exists")

	// A different set is a new series.
	assert.Equal(t, http.StatusCreated, doJSON(router, "POST", "/series", CreateSeriesRequest{JobNumbers: []string{"J1", "J2", "J3"}}).Code)
}

func TestCreateSeriesValidation(t *testing.T) {
	db := setupTestDB(t)
	router := seriesRouter(db)

	assert.Equal(t, http.StatusBadRequest, doJSON(router, "POST", "/series", CreateSeriesRequest{}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, "POST", "/series", CreateSeriesRequest{JobNumbers: []string{"  ", ""}}).Code)
}

func TestSearchSeries(t *testing.T) {
	db := setupTestDB(t)
	router := seriesRouter(db)

	assert.Equal(t, http.StatusCreated, doJSON(router, "POST", "/series", CreateSeriesRequest{JobNumbers: []string{"J1", "J2"}}).Code)

	w := doJSON(router, "GET", "/series/search/J2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"found":true`)
	assert.Contains(t, w.Body.String(), "J1")

	w = doJSON(router, "GET", "/series/search/J9", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"found":false`)
}
