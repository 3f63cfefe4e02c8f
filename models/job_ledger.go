package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// LedgerOp is one operation line of a job's operation ledger. OpID is an
// opaque string snapshot of the catalog ID, not a live foreign key.
type LedgerOp struct {
	OpID            string    `json:"opId"`
	QtyPerBook      float64   `json:"qtyPerBook"`
	TotalOpsQty     float64   `json:"totalOpsQty"`
	PendingOpsQty   float64   `json:"pendingOpsQty"`
	ValuePerBook    float64   `json:"valuePerBook"`
	CreationDate    time.Time `json:"creationDate"`
	LastUpdatedDate time.Time `json:"lastUpdatedDate"`
}

type LedgerOps []LedgerOp

func (ops LedgerOps) Value() (driver.Value, error) {
	return json.Marshal(ops)
}

func (ops *LedgerOps) Scan(value interface{}) error {
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
		return errors.New("unsupported column type for LedgerOps")
	}
}

// JobLedger aggregates all operation lines ordered against one job.
// JobID is the job number string, not a foreign key into jobs; ledgers can
// exist for ERP job numbers that were never booked locally.
type JobLedger struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	JobID     string    `gorm:"uniqueIndex;size:50;not null" json:"jobId"`
	TotalQty  float64   `gorm:"not null" json:"totalQty"`
	Ops       LedgerOps `gorm:"type:text" json:"ops"`
}

// TableName overrides the table name
func (JobLedger) TableName() string {
	return "job_ledgers"
}

// FindOpByID locates a ledger line by exact catalog ID match. Returns the
// index into Ops, or -1.
func (l *JobLedger) FindOpByID(opID string) int {
	for i := range l.Ops {
		if l.Ops[i].OpID == opID {
			return i
		}
	}
	return -1
}
