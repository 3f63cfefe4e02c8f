package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/contractor-po/config"
	"github.com/yourusername/contractor-po/models"
	"github.com/yourusername/contractor-po/utils"
	"gorm.io/gorm"
)

type JobHandler struct {
	db  *gorm.DB
	erp utils.ERPClientInterface
}

func NewJobHandler(db *gorm.DB, erp utils.ERPClientInterface) *JobHandler {
	return &JobHandler{db: db, erp: erp}
}

// fetchOperations loads catalog entries for a set of opaque ID strings and
// keys them back by the same strings. Unparseable IDs are skipped.
func fetchOperations(db *gorm.DB, ids []string) (map[string]*models.Operation, error) {
	numeric := make([]uint64, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			continue
		}
		numeric = append(numeric, n)
	}

	byID := make(map[string]*models.Operation, len(numeric))
	if len(numeric) == 0 {
		return byID, nil
	}

	var operations []models.Operation
	if err := db.Where("id IN ?", numeric).Find(&operations).Error; err != nil {
		return nil, err
	}
	for i := range operations {
		byID[strconv.FormatUint(uint64(operations[i].ID), 10)] = &operations[i]
	}
	return byID, nil
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	var jobs []models.Job
	if err := h.db.Order("created_at desc").Find(&jobs).Error; err != nil {
		config.LogError(config.GetLogger(), "jobs", "ListJobs", "db find", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching jobs"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	var job models.Job
	if err := h.db.First(&job, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

type CreateJobRequest struct {
	JobNumber  string  `json:"jobNumber" binding:"required"`
	ClientName string  `json:"clientName" binding:"required"`
	JobTitle   string  `json:"jobTitle" binding:"required"`
	Qty        float64 `json:"qty" binding:"required"`
	ProductCat string  `json:"productCat"`
	UnitPrice  float64 `json:"unitPrice"`
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	job := models.Job{
		JobNumber:  req.JobNumber,
		ClientName: req.ClientName,
		JobTitle:   req.JobTitle,
		Qty:        req.Qty,
		ProductCat: req.ProductCat,
		UnitPrice:  req.UnitPrice,
	}

	if err := h.db.Create(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Job number already exists"})
			return
		}
		config.LogError(config.GetLogger(), "jobs", "CreateJob", "db create", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating job"})
		return
	}

	c.JSON(http.StatusCreated, job)
}

type LedgerOpRequest struct {
	OperationID string   `json:"operationId"`
	QtyPerBook  *float64 `json:"qtyPerBook"`
	RatePerBook *float64 `json:"ratePerBook"`
}

// A line with a wrong-typed field decodes to its zero value instead of
// failing the request; the per-line validation then drops it.
func (r *LedgerOpRequest) UnmarshalJSON(data []byte) error {
	type plain LedgerOpRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*r = LedgerOpRequest{}
		return nil
	}
	*r = LedgerOpRequest(p)
	return nil
}

type SaveLedgerRequest struct {
	JobNumber  string            `json:"jobNumber"`
	Qty        float64           `json:"qty"`
	Operations []LedgerOpRequest `json:"operations"`
}

// SaveJobLedger seeds or extends the operation ledger for a job. Required
// totals derive from each operation's conversion type; an incoming line
// whose composite key matches an existing ledger line adds to that line's
// totals instead of replacing them.
func (h *JobHandler) SaveJobLedger(c *gin.Context) {
	var req SaveLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.JobNumber == "" || len(req.Operations) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job number and at least one operation are required"})
		return
	}

	ids := make([]string, 0, len(req.Operations))
	for _, op := range req.Operations {
		if op.OperationID != "" {
			ids = append(ids, op.OperationID)
		}
	}
	catalog, err := fetchOperations(h.db, ids)
	if err != nil {
		config.LogError(config.GetLogger(), "jobs", "SaveJobLedger", "catalog lookup", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving job operations"})
		return
	}

	now := time.Now()
	ops := make([]models.LedgerOp, 0, len(req.Operations))
	for _, op := range req.Operations {
		if op.OperationID == "" || op.QtyPerBook == nil || op.RatePerBook == nil {
			continue
		}
		if *op.QtyPerBook < 0 || *op.RatePerBook < 0 {
			continue
		}

		total := catalog[op.OperationID].TotalOpsQty(*op.QtyPerBook, req.Qty)
		ops = append(ops, models.LedgerOp{
			OpID:            op.OperationID,
			QtyPerBook:      *op.QtyPerBook,
			TotalOpsQty:     total,
			PendingOpsQty:   total, // nothing completed yet
			ValuePerBook:    *op.RatePerBook,
			CreationDate:    now,
			LastUpdatedDate: now,
		})
	}

	if len(ops) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid operations to save"})
		return
	}

	var ledger models.JobLedger
	err = h.db.Where("job_id = ?", req.JobNumber).First(&ledger).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ledger = models.JobLedger{JobID: req.JobNumber, TotalQty: req.Qty, Ops: ops}
	case err != nil:
		config.LogError(config.GetLogger(), "jobs", "SaveJobLedger", "ledger lookup", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving job operations"})
		return
	default:
		ledger.TotalQty = req.Qty

		existingIDs := make([]string, 0, len(ledger.Ops))
		for _, e := range ledger.Ops {
			existingIDs = append(existingIDs, e.OpID)
		}
		allCatalog, err := fetchOperations(h.db, append(existingIDs, ids...))
		if err != nil {
			config.LogError(config.GetLogger(), "jobs", "SaveJobLedger", "catalog lookup", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving job operations"})
			return
		}
		nameOf := func(opID string) string {
			if op := allCatalog[opID]; op != nil {
				return op.OpsName
			}
			return "Unknown"
		}

		for _, newOp := range ops {
			newKey := models.MakeOpKey(nameOf(newOp.OpID), newOp.ValuePerBook)
			merged := false
			for i := range ledger.Ops {
				if models.MakeOpKey(nameOf(ledger.Ops[i].OpID), ledger.Ops[i].ValuePerBook) == newKey {
					ledger.Ops[i].TotalOpsQty += newOp.TotalOpsQty
					ledger.Ops[i].PendingOpsQty += newOp.PendingOpsQty
					ledger.Ops[i].LastUpdatedDate = now
					merged = true
					break
				}
			}
			if !merged {
				ledger.Ops = append(ledger.Ops, newOp)
			}
		}
	}

	if err := h.db.Save(&ledger).Error; err != nil {
		config.LogError(config.GetLogger(), "jobs", "SaveJobLedger", "db save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving job operations"})
		return
	}

	c.JSON(http.StatusCreated, ledger)
}

// ListLedgerJobNumbers returns every job number that has a ledger.
func (h *JobHandler) ListLedgerJobNumbers(c *gin.Context) {
	var jobNumbers []string
	if err := h.db.Model(&models.JobLedger{}).Order("job_id asc").Pluck("job_id", &jobNumbers).Error; err != nil {
		config.LogError(config.GetLogger(), "jobs", "ListLedgerJobNumbers", "db pluck", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching job numbers"})
		return
	}
	c.JSON(http.StatusOK, jobNumbers)
}

type previousOpSummary struct {
	OpsID                  string             `json:"opsId"`
	OpsName                string             `json:"opsName"`
	TotalOpsQty            float64            `json:"totalOpsQty"`
	TotalCompleted         float64            `json:"totalCompleted"`
	Pending                float64            `json:"pending"`
	QuantitiesByContractor map[string]float64 `json:"quantitiesByContractor"`
}

type previousOpsResponse struct {
	Contractors []gin.H             `json:"contractors"`
	Operations  []previousOpSummary `json:"operations"`
}

// SearchJob summarizes the ledgered and completed work for a job number:
// per operation, the total ordered, what contractors have completed, and
// the remainder, with a per-contractor breakdown. Completed quantities are
// correlated to ledger lines by composite key.
func (h *JobHandler) SearchJob(c *gin.Context) {
	jobNumber := c.Param("jobNumber")

	var ledger models.JobLedger
	err := h.db.Where("job_id = ?", jobNumber).First(&ledger).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(ledger.Ops) == 0) {
		c.JSON(http.StatusOK, gin.H{"job": nil, "operations": []gin.H{}, "previousOps": nil})
		return
	}
	if err != nil {
		config.LogError(config.GetLogger(), "jobs", "SearchJob", "ledger lookup", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching job"})
		return
	}

	opIDs := make([]string, 0, len(ledger.Ops))
	ledgerIDSet := make(map[string]bool, len(ledger.Ops))
	for _, op := range ledger.Ops {
		opIDs = append(opIDs, op.OpID)
		ledgerIDSet[op.OpID] = true
	}
	catalog, err := fetchOperations(h.db, opIDs)
	if err != nil {
		config.LogError(config.GetLogger(), "jobs", "SearchJob", "catalog lookup", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching job"})
		return
	}

	var workDocs []models.WorkDone
	if err := h.db.Where("job_id = ?", jobNumber).Find(&workDocs).Error; err != nil {
		config.LogError(config.GetLogger(), "jobs", "SearchJob", "work-done lookup", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching job"})
		return
	}

	contractorIDs := make([]string, 0, len(workDocs))
	seen := make(map[string]bool)
	for _, doc := range workDocs {
		if !seen[doc.ContractorID] {
			seen[doc.ContractorID] = true
			contractorIDs = append(contractorIDs, doc.ContractorID)
		}
	}

	contractorName := make(map[string]string, len(contractorIDs))
	if len(contractorIDs) > 0 {
		var contractors []models.Contractor
		if err := h.db.Where("contractor_id IN ?", contractorIDs).Find(&contractors).Error; err != nil {
			config.LogError(config.GetLogger(), "jobs", "SearchJob", "contractor lookup", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching job"})
			return
		}
		for _, ctr := range contractors {
			contractorName[ctr.ContractorID] = ctr.Name
		}
	}

	// Aggregate completed quantities by composite key, overall and per
	// contractor. Entries whose snapshot ID is unknown to the ledger are
	// left out.
	byContractor := make(map[models.OpKey]map[string]float64)
	totalCompleted := make(map[models.OpKey]float64)
	for _, doc := range workDocs {
		for _, od := range doc.OpsDone {
			if od.OpsID == "" || strings.TrimSpace(od.OpsName) == "" || !ledgerIDSet[od.OpsID] {
				continue
			}
			key := models.MakeOpKey(od.OpsName, od.ValuePerBook)
			if byContractor[key] == nil {
				byContractor[key] = make(map[string]float64)
			}
			byContractor[key][doc.ContractorID] += od.OpsDoneQty
			totalCompleted[key] += od.OpsDoneQty
		}
	}

	contractors := make([]gin.H, 0, len(contractorIDs))
	for _, id := range contractorIDs {
		name := contractorName[id]
		if name == "" {
			name = id
		}
		contractors = append(contractors, gin.H{"contractorId": id, "name": name})
	}

	operations := make([]previousOpSummary, 0, len(ledger.Ops))
	for _, op := range ledger.Ops {
		opsName := "Unknown"
		if cat := catalog[op.OpID]; cat != nil {
			opsName = cat.OpsName
		}
		key := models.MakeOpKey(opsName, op.ValuePerBook)

		completed := totalCompleted[key]
		pending := op.TotalOpsQty - completed
		if pending < 0 {
			pending = 0
		}

		quantities := byContractor[key]
		if quantities == nil {
			quantities = map[string]float64{}
		}
		operations = append(operations, previousOpSummary{
			OpsID:                  op.OpID,
			OpsName:                opsName,
			TotalOpsQty:            op.TotalOpsQty,
			TotalCompleted:         completed,
			Pending:                pending,
			QuantitiesByContractor: quantities,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"job":        nil,
		"operations": []gin.H{},
		"previousOps": previousOpsResponse{
			Contractors: contractors,
			Operations:  operations,
		},
	})
}

// SearchJobNumbers resolves a partial job number against the ERP. The ERP
// being down degrades only this endpoint.
func (h *JobHandler) SearchJobNumbers(c *gin.Context) {
	part := c.Param("jobNumberPart")
	if len(part) < 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job number part must be at least 4 characters"})
		return
	}

	jobNumbers, err := h.erp.SearchJobNumbers(part)
	if err != nil {
		config.LogError(config.GetLogger(), "jobs", "SearchJobNumbers", "erp search", part, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error searching job numbers: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, jobNumbers)
}

// GetJobDetails prefills job metadata from the ERP.
func (h *JobHandler) GetJobDetails(c *gin.Context) {
	jobNumber := c.Param("jobNumber")
	if jobNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job number is required"})
		return
	}

	details, err := h.erp.GetJobDetails(jobNumber)
	if err != nil {
		config.LogError(config.GetLogger(), "jobs", "GetJobDetails", "erp lookup", jobNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching job details: " + err.Error()})
		return
	}
	if details == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, details)
}
