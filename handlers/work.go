package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/contractor-po/config"
	"github.com/yourusername/contractor-po/models"
	"gorm.io/gorm"
)

type WorkHandler struct {
	db *gorm.DB
}

func NewWorkHandler(db *gorm.DB) *WorkHandler {
	return &WorkHandler{db: db}
}

// ListPendingOps returns the ledger lines of a job that still have pending
// quantity, enriched with catalog names and rates.
func (h *WorkHandler) ListPendingOps(c *gin.Context) {
	jobNumber := c.Param("jobNumber")

	var ledger models.JobLedger
	if err := h.db.Where("job_id = ?", jobNumber).First(&ledger).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found in ledger"})
		return
	}

	pending := make([]models.LedgerOp, 0, len(ledger.Ops))
	for _, op := range ledger.Ops {
		if op.PendingOpsQty > 0 {
			pending = append(pending, op)
		}
	}

	if len(pending) == 0 {
		c.JSON(http.StatusOK, gin.H{"jobNumber": jobNumber, "operations": []gin.H{}})
		return
	}

	ids := make([]string, 0, len(pending))
	for _, op := range pending {
		ids = append(ids, op.OpID)
	}
	catalog, err := fetchOperations(h.db, ids)
	if err != nil {
		config.LogError(config.GetLogger(), "work", "ListPendingOps", "catalog lookup", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching pending operations"})
		return
	}

	operations := make([]gin.H, 0, len(pending))
	for _, op := range pending {
		opsName := "Unknown"
		rate := 0.0
		if cat := catalog[op.OpID]; cat != nil {
			opsName = cat.OpsName
			rate = cat.RatePerUnit
		}
		operations = append(operations, gin.H{
			"opId":          op.OpID,
			"opsName":       opsName,
			"totalOpsQty":   op.TotalOpsQty,
			"pendingOpsQty": op.PendingOpsQty,
			"qtyPerBook":    op.QtyPerBook,
			"rate":          rate,
			"valuePerBook":  op.ValuePerBook,
		})
	}

	c.JSON(http.StatusOK, gin.H{"jobNumber": jobNumber, "operations": operations})
}

type RecordWorkOp struct {
	OpID         string   `json:"opId"`
	OpsName      string   `json:"opsName"`
	ValuePerBook *float64 `json:"valuePerBook"`
	QtyToAdd     *float64 `json:"qtyToAdd"`
}

// A tuple with a wrong-typed field decodes to its zero value instead of
// failing the whole batch; the per-tuple validation then skips it.
func (o *RecordWorkOp) UnmarshalJSON(data []byte) error {
	type plain RecordWorkOp
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*o = RecordWorkOp{}
		return nil
	}
	*o = RecordWorkOp(p)
	return nil
}

type RecordWorkRequest struct {
	ContractorID string         `json:"contractorId"`
	JobNumber    string         `json:"jobNumber"`
	Operations   []RecordWorkOp `json:"operations"`
}

type workUpdate struct {
	OpID          string  `json:"opId"`
	OpsName       string  `json:"opsName"`
	ValuePerBook  float64 `json:"valuePerBook"`
	PendingOpsQty float64 `json:"pendingOpsQty"`
}

type workSkip struct {
	OpID    string `json:"opId"`
	OpsName string `json:"opsName"`
	Reason  string `json:"reason"`
}

// RecordWork applies a contractor's claimed completed quantities: each valid
// tuple is deducted from the job ledger's pending quantity (clamped at
// zero) and credited to the contractor's work-done record. Invalid tuples
// are skipped, not fatal; the batch fails only when nothing applied. The
// ledger write and the work-done write are sequential, not transactional.
func (h *WorkHandler) RecordWork(c *gin.Context) {
	var req RecordWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ContractorID == "" || req.JobNumber == "" || len(req.Operations) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: contractorId, jobNumber, and operations are required"})
		return
	}

	var ledger models.JobLedger
	if err := h.db.Where("job_id = ?", req.JobNumber).First(&ledger).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found in ledger"})
		return
	}

	now := time.Now()
	updates := make([]workUpdate, 0, len(req.Operations))
	skipped := make([]workSkip, 0)
	credits := make([]models.WorkDoneOp, 0, len(req.Operations))

	for _, op := range req.Operations {
		if op.OpID == "" || strings.TrimSpace(op.OpsName) == "" || op.ValuePerBook == nil {
			skipped = append(skipped, workSkip{OpID: op.OpID, OpsName: op.OpsName, Reason: "missing or invalid fields"})
			continue
		}
		if op.QtyToAdd == nil || *op.QtyToAdd <= 0 {
			skipped = append(skipped, workSkip{OpID: op.OpID, OpsName: op.OpsName, Reason: "quantity must be greater than zero"})
			continue
		}

		// Operation identity is authoritative inside the job's own ledger,
		// so this is an exact ID match, not a composite-key lookup.
		idx := ledger.FindOpByID(op.OpID)
		if idx < 0 {
			skipped = append(skipped, workSkip{OpID: op.OpID, OpsName: op.OpsName, Reason: "operation not found in job ledger"})
			continue
		}

		entry := &ledger.Ops[idx]
		entry.PendingOpsQty -= *op.QtyToAdd
		if entry.PendingOpsQty < 0 {
			// Over-claims are clamped, not rejected.
			entry.PendingOpsQty = 0
		}
		entry.LastUpdatedDate = now

		updates = append(updates, workUpdate{
			OpID:          entry.OpID,
			OpsName:       strings.TrimSpace(op.OpsName),
			ValuePerBook:  entry.ValuePerBook,
			PendingOpsQty: entry.PendingOpsQty,
		})

		// The ledger's own ID and rate are the authoritative snapshot for
		// the work-done credit, not the caller-supplied values.
		credits = append(credits, models.WorkDoneOp{
			OpsID:          entry.OpID,
			OpsName:        strings.TrimSpace(op.OpsName),
			ValuePerBook:   entry.ValuePerBook,
			OpsDoneQty:     *op.QtyToAdd,
			CompletionDate: now,
		})
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid operations to update", "skipped": skipped})
		return
	}

	if err := h.db.Save(&ledger).Error; err != nil {
		config.LogError(config.GetLogger(), "work", "RecordWork", "ledger save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating work"})
		return
	}

	var workDone models.WorkDone
	err := h.db.Where("contractor_id = ? AND job_id = ?", req.ContractorID, req.JobNumber).First(&workDone).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		workDone = models.WorkDone{
			ContractorID: req.ContractorID,
			JobID:        req.JobNumber,
			OpsDone:      credits,
		}
	case err != nil:
		config.LogError(config.GetLogger(), "work", "RecordWork", "work-done lookup", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating work"})
		return
	default:
		for _, credit := range credits {
			if i := workDone.FindOpByID(credit.OpsID); i >= 0 {
				workDone.OpsDone[i].OpsDoneQty += credit.OpsDoneQty
				workDone.OpsDone[i].CompletionDate = now
			} else {
				workDone.OpsDone = append(workDone.OpsDone, credit)
			}
		}
	}

	if err := h.db.Save(&workDone).Error; err != nil {
		config.LogError(config.GetLogger(), "work", "RecordWork", "work-done save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating work"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Work updated successfully",
		"updates":      updates,
		"skipped":      skipped,
		"jobNumber":    req.JobNumber,
		"contractorId": req.ContractorID,
	})
}
