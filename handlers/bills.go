package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/contractor-po/config"
	"github.com/yourusername/contractor-po/models"
	"gorm.io/gorm"
)

type BillHandler struct {
	db *gorm.DB
}

func NewBillHandler(db *gorm.DB) *BillHandler {
	return &BillHandler{db: db}
}

type BillOpRequest struct {
	OpsName      string   `json:"opsName"`
	QtyBook      *float64 `json:"qtyBook"`
	Rate         *float64 `json:"rate"`
	QtyCompleted *float64 `json:"qtyCompleted"`
	TotalValue   *float64 `json:"totalValue"`
}

type BillJobRequest struct {
	JobNumber  string          `json:"jobNumber"`
	ClientName string          `json:"clientName"`
	JobTitle   string          `json:"jobTitle"`
	Ops        []BillOpRequest `json:"ops"`
}

// validateBillJobs checks the shared create/update shape and returns the
// snapshot to store: trimmed names, figures verbatim. The bill does not
// touch the ledgers; the corresponding deduction already happened when the
// work was recorded.
func validateBillJobs(jobs []BillJobRequest) (models.BillJobs, string, bool) {
	if len(jobs) == 0 {
		return nil, "At least one job is required", false
	}

	snapshot := make(models.BillJobs, 0, len(jobs))
	for _, job := range jobs {
		if strings.TrimSpace(job.JobNumber) == "" {
			return nil, "Each job must have a job number", false
		}
		if len(job.Ops) == 0 {
			return nil, "Each job must have at least one operation", false
		}

		ops := make([]models.BillOp, 0, len(job.Ops))
		for _, op := range job.Ops {
			if strings.TrimSpace(op.OpsName) == "" {
				return nil, "Each operation must have an operation name (opsName)", false
			}
			if op.QtyBook == nil || op.Rate == nil || op.QtyCompleted == nil || op.TotalValue == nil {
				return nil, "Each operation must have qtyBook, rate, qtyCompleted, and totalValue", false
			}
			if *op.QtyBook < 0 || *op.Rate < 0 || *op.QtyCompleted < 0 || *op.TotalValue < 0 {
				return nil, "All operation values must be non-negative", false
			}
			ops = append(ops, models.BillOp{
				OpsName:      strings.TrimSpace(op.OpsName),
				QtyBook:      *op.QtyBook,
				Rate:         *op.Rate,
				QtyCompleted: *op.QtyCompleted,
				TotalValue:   *op.TotalValue,
			})
		}
		snapshot = append(snapshot, models.BillJob{
			JobNumber:  job.JobNumber,
			ClientName: job.ClientName,
			JobTitle:   job.JobTitle,
			Ops:        ops,
		})
	}
	return snapshot, "", true
}

// ListBills returns all bills that have not been soft-deleted, newest
// number first.
func (h *BillHandler) ListBills(c *gin.Context) {
	var bills []models.Bill
	if err := h.db.Where("is_deleted <> ?", 1).Order("bill_number desc").Find(&bills).Error; err != nil {
		config.LogError(config.GetLogger(), "bills", "ListBills", "db find", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching bills"})
		return
	}
	c.JSON(http.StatusOK, bills)
}

func (h *BillHandler) GetBill(c *gin.Context) {
	var bill models.Bill
	if err := h.db.Where("bill_number = ?", c.Param("billNumber")).First(&bill).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bill not found"})
		return
	}
	c.JSON(http.StatusOK, bill)
}

// nextBillNumber reads the highest bill number (soft-deleted ones
// included, so numbers are never reused) and increments it. There is no
// reservation lock; the unique index on bill_number is the backstop when
// two creations race.
func (h *BillHandler) nextBillNumber() (string, error) {
	var last models.Bill
	err := h.db.Order("bill_number desc").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NextBillNumber("")
	}
	if err != nil {
		return "", err
	}
	return models.NextBillNumber(last.BillNumber)
}

type CreateBillRequest struct {
	ContractorName string           `json:"contractorName"`
	Jobs           []BillJobRequest `json:"jobs"`
}

func (h *BillHandler) CreateBill(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ContractorName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contractor name is required"})
		return
	}

	snapshot, msg, ok := validateBillJobs(req.Jobs)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	billNumber, err := h.nextBillNumber()
	if err != nil {
		config.LogError(config.GetLogger(), "bills", "CreateBill", "number allocation", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating bill"})
		return
	}

	bill := models.Bill{
		BillNumber:     billNumber,
		ContractorName: strings.TrimSpace(req.ContractorName),
		PaymentStatus:  "No",
		Jobs:           snapshot,
	}

	if err := h.db.Create(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Bill number already exists, please retry"})
			return
		}
		config.LogError(config.GetLogger(), "bills", "CreateBill", "db create", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating bill"})
		return
	}

	c.JSON(http.StatusCreated, bill)
}

type UpdateBillRequest struct {
	ContractorName *string          `json:"contractorName"`
	Jobs           []BillJobRequest `json:"jobs"`
}

// UpdateBill edits the contractor name and the job snapshot only. Editing
// never touches the ledgers; only deletion does.
func (h *BillHandler) UpdateBill(c *gin.Context) {
	var req UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var bill models.Bill
	if err := h.db.Where("bill_number = ?", c.Param("billNumber")).First(&bill).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bill not found"})
		return
	}

	if req.ContractorName != nil {
		if strings.TrimSpace(*req.ContractorName) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Contractor name cannot be empty"})
			return
		}
		bill.ContractorName = strings.TrimSpace(*req.ContractorName)
	}

	if req.Jobs != nil {
		snapshot, msg, ok := validateBillJobs(req.Jobs)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		bill.Jobs = snapshot
	}

	if err := h.db.Save(&bill).Error; err != nil {
		config.LogError(config.GetLogger(), "bills", "UpdateBill", "db save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating bill"})
		return
	}

	c.JSON(http.StatusOK, bill)
}

func (h *BillHandler) PayBill(c *gin.Context) {
	var bill models.Bill
	if err := h.db.Where("bill_number = ?", c.Param("billNumber")).First(&bill).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bill not found"})
		return
	}

	now := time.Now()
	bill.PaymentStatus = "Yes"
	bill.PaymentDate = &now

	if err := h.db.Save(&bill).Error; err != nil {
		config.LogError(config.GetLogger(), "bills", "PayBill", "db save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error marking bill as paid"})
		return
	}

	c.JSON(http.StatusOK, bill)
}

// reversalLine reports what happened to one bill line during deletion.
// Reversal is best-effort: a line whose composite key no longer matches a
// ledger or work-done entry is skipped, and the caller sees which.
type reversalLine struct {
	JobNumber string `json:"jobNumber"`
	OpsName   string `json:"opsName"`
	Ledger    string `json:"ledger"`   // reversed / skipped
	WorkDone  string `json:"workDone"` // reversed / skipped
}

// DeleteBill soft-deletes a bill and reverses its ledger effects: each
// line's completed quantity goes back into the job ledger's pending
// quantity and comes off the contractor's work-done record. A work-done
// entry drained to zero is removed, and an emptied work-done document is
// deleted outright.
func (h *BillHandler) DeleteBill(c *gin.Context) {
	var bill models.Bill
	if err := h.db.Where("bill_number = ? AND is_deleted <> ?", c.Param("billNumber"), 1).First(&bill).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bill not found or already deleted"})
		return
	}

	// The bill stores only a name; reversal needs the contractor identity.
	var contractor models.Contractor
	if err := h.db.Where("name = ?", strings.TrimSpace(bill.ContractorName)).First(&contractor).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found for name: " + bill.ContractorName})
		return
	}

	lines := make([]reversalLine, 0)

	for _, job := range bill.Jobs {
		base := len(lines)
		for _, op := range job.Ops {
			lines = append(lines, reversalLine{JobNumber: job.JobNumber, OpsName: op.OpsName, Ledger: "skipped", WorkDone: "skipped"})
		}

		var ledger models.JobLedger
		err := h.db.Where("job_id = ?", job.JobNumber).First(&ledger).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			config.LogError(config.GetLogger(), "bills", "DeleteBill", "ledger lookup", job.JobNumber, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting bill"})
			return
		}

		if err == nil {
			ids := make([]string, 0, len(ledger.Ops))
			for _, op := range ledger.Ops {
				ids = append(ids, op.OpID)
			}
			catalog, err := fetchOperations(h.db, ids)
			if err != nil {
				config.LogError(config.GetLogger(), "bills", "DeleteBill", "catalog lookup", nil, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting bill"})
				return
			}

			now := time.Now()
			changed := false
			for i, op := range job.Ops {
				key := models.MakeOpKey(op.OpsName, op.Rate)
				for j := range ledger.Ops {
					opsName := "Unknown"
					if cat := catalog[ledger.Ops[j].OpID]; cat != nil {
						opsName = cat.OpsName
					}
					if models.MakeOpKey(opsName, ledger.Ops[j].ValuePerBook) != key {
						continue
					}
					ledger.Ops[j].PendingOpsQty += op.QtyCompleted
					if ledger.Ops[j].PendingOpsQty < 0 {
						ledger.Ops[j].PendingOpsQty = 0
					}
					ledger.Ops[j].LastUpdatedDate = now
					lines[base+i].Ledger = "reversed"
					changed = true
					break
				}
			}

			if changed {
				if err := h.db.Save(&ledger).Error; err != nil {
					config.LogError(config.GetLogger(), "bills", "DeleteBill", "ledger save", nil, err)
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting bill"})
					return
				}
			}
		}

		var workDone models.WorkDone
		err = h.db.Where("contractor_id = ? AND job_id = ?", contractor.ContractorID, job.JobNumber).First(&workDone).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			config.LogError(config.GetLogger(), "bills", "DeleteBill", "work-done lookup", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting bill"})
			return
		}

		changed := false
		for i, op := range job.Ops {
			key := models.MakeOpKey(op.OpsName, op.Rate)
			for j := 0; j < len(workDone.OpsDone); j++ {
				entry := &workDone.OpsDone[j]
				if models.MakeOpKey(entry.OpsName, entry.ValuePerBook) != key {
					continue
				}
				entry.OpsDoneQty -= op.QtyCompleted
				if entry.OpsDoneQty <= 0 {
					workDone.OpsDone = append(workDone.OpsDone[:j], workDone.OpsDone[j+1:]...)
				}
				lines[base+i].WorkDone = "reversed"
				changed = true
				break
			}
		}

		if !changed {
			continue
		}
		if len(workDone.OpsDone) > 0 {
			if err := h.db.Save(&workDone).Error; err != nil {
				config.LogError(config.GetLogger(), "bills", "DeleteBill", "work-done save", nil, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting bill"})
				return
			}
		} else {
			// An empty work-done document is not kept.
			if err := h.db.Delete(&workDone).Error; err != nil {
				config.LogError(config.GetLogger(), "bills", "DeleteBill", "work-done delete", nil, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting bill"})
				return
			}
		}
	}

	bill.IsDeleted = 1
	if err := h.db.Save(&bill).Error; err != nil {
		config.LogError(config.GetLogger(), "bills", "DeleteBill", "bill save", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting bill"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bill deleted successfully", "lines": lines})
}
