package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// WorkDoneOp is a contractor's cumulative completed quantity for one
// operation on one job. Name and rate are snapshots taken when the work
// was first recorded.
type WorkDoneOp struct {
	OpsID          string    `json:"opsId"`
	OpsName        string    `json:"opsName"`
	ValuePerBook   float64   `json:"valuePerBook"`
	OpsDoneQty     float64   `json:"opsDoneQty"`
	CompletionDate time.Time `json:"completionDate"`
}

type WorkDoneOps []WorkDoneOp

func (ops WorkDoneOps) Value() (driver.Value, error) {
	return json.Marshal(ops)
}

func (ops *WorkDoneOps) Scan(value interface{}) error {
	if value == nil {
		*ops = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ops)
	case string:
		return json.Unmarshal([]byte(v), ops)
	default:
		return errors.New("unsupported column type for WorkDoneOps")
	}
}

// WorkDone groups a contractor's completed work on one job. Deleted
// outright when its last operation entry is reversed away.
type WorkDone struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	ContractorID string      `gorm:"index:idx_contractor_job;size:50;not null" json:"contractorId"`
	JobID        string      `gorm:"index:idx_contractor_job;size:50;not null" json:"jobId"`
	OpsDone      WorkDoneOps `gorm:"type:text" json:"opsDone"`
}

// TableName overrides the table name
func (WorkDone) TableName() string {
	return "work_done"
}

// FindOpByID locates an entry by exact catalog ID match. Returns the index
// into OpsDone, or -1.
func (w *WorkDone) FindOpByID(opsID string) int {
	for i := range w.OpsDone {
		if w.OpsDone[i].OpsID == opsID {
			return i
		}
	}
	return -1
}
