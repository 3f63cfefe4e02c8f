package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/contractor-po/config"
	"github.com/yourusername/contractor-po/handlers"
	"github.com/yourusername/contractor-po/middleware"
	"github.com/yourusername/contractor-po/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// ERP connection is lazy; nothing to do here if it is down. The two
	// prefill endpoints degrade, everything else keeps working.
	erp := utils.NewERPClient(cfg.ERPDSN)

	// Setup router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Request logging middleware
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		config.GetLogger().WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Info("request")
	})

	// Health check
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Server is running",
		})
	})

	authHandler := handlers.NewAuthHandler(db, cfg)
	router.POST("/api/auth/login", authHandler.Login)
	router.POST("/api/auth/register", authHandler.Register)

	api := router.Group("/api")
	api.Use(middleware.JwtAuthMiddleware(cfg))
	{
		operationHandler := handlers.NewOperationHandler(db)
		api.GET("/operations", operationHandler.ListOperations)
		api.GET("/operations/:id", operationHandler.GetOperation)
		api.POST("/operations", operationHandler.CreateOperation)
		api.PUT("/operations/:id", operationHandler.UpdateOperation)
		api.DELETE("/operations/:id", operationHandler.DeleteOperation)

		contractorHandler := handlers.NewContractorHandler(db)
		api.GET("/contractors", contractorHandler.ListContractors)
		api.POST("/contractors", contractorHandler.CreateContractor)
		api.PUT("/contractors/:id", contractorHandler.UpdateContractor)
		api.DELETE("/contractors/:id", contractorHandler.DeleteContractor)

		jobHandler := handlers.NewJobHandler(db, erp)
		api.GET("/jobs", jobHandler.ListJobs)
		api.POST("/jobs", jobHandler.CreateJob)
		api.POST("/jobs/ledger", jobHandler.SaveJobLedger)
		api.GET("/jobs/ledger/jobnumbers", jobHandler.ListLedgerJobNumbers)
		api.GET("/jobs/search/:jobNumber", jobHandler.SearchJob)
		api.GET("/jobs/search-numbers/:jobNumberPart", jobHandler.SearchJobNumbers)
		api.GET("/jobs/details/:jobNumber", jobHandler.GetJobDetails)
		api.GET("/jobs/:id", jobHandler.GetJob)

		workHandler := handlers.NewWorkHandler(db)
		api.GET("/work/pending/:jobNumber", workHandler.ListPendingOps)
		api.POST("/work/record", workHandler.RecordWork)

		billHandler := handlers.NewBillHandler(db)
		api.GET("/bills", billHandler.ListBills)
		api.GET("/bills/:billNumber", billHandler.GetBill)
		api.POST("/bills", billHandler.CreateBill)
		api.PUT("/bills/:billNumber", billHandler.UpdateBill)
		api.PATCH("/bills/:billNumber/pay", billHandler.PayBill)
		api.DELETE("/bills/:billNumber", billHandler.DeleteBill)

		seriesHandler := handlers.NewSeriesHandler(db)
		api.POST("/series", seriesHandler.CreateSeries)
		api.GET("/series", seriesHandler.ListSeries)
		api.GET("/series/search/:jobNumber", seriesHandler.SearchSeries)
		api.GET("/series/:id", seriesHandler.GetSeries)
	}

	// Start server
	port := cfg.Port
	if port == "" {
		port = "3000"
	}

	log.Printf("Starting contractor-po API server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
