package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// BillOp is an operation snapshot captured at bill-creation time. These are
// copies of the submitted figures, never live references into the ledgers.
type BillOp struct {
	OpsName      string  `json:"opsName"`
	QtyBook      float64 `json:"qtyBook"`
	Rate         float64 `json:"rate"`
	QtyCompleted float64 `json:"qtyCompleted"`
	TotalValue   float64 `json:"totalValue"`
}

type BillJob struct {
	JobNumber  string   `json:"jobNumber"`
	ClientName string   `json:"clientName"`
	JobTitle   string   `json:"jobTitle"`
	Ops        []BillOp `json:"ops"`
}

type BillJobs []BillJob

func (jobs BillJobs) Value() (driver.Value, error) {
	return json.Marshal(jobs)
}

func (jobs *BillJobs) Scan(value interface{}) error {
	if value == nil {
		*jobs = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, jobs)
	case string:
		return json.Unmarshal([]byte(v), jobs)
	default:
		return errors.New("unsupported column type for BillJobs")
	}
}

type Bill struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	BillNumber     string     `gorm:"uniqueIndex;size:8;not null" json:"billNumber"`
	ContractorName string     `gorm:"size:255;not null" json:"contractorName"`
	PaymentStatus  string     `gorm:"size:3;default:'No'" json:"paymentStatus"` // Yes / No
	PaymentDate    *time.Time `json:"paymentDate"`
	Jobs           BillJobs   `gorm:"type:text" json:"jobs"`
	IsDeleted      int        `gorm:"default:0" json:"isDeleted"`
}

// TableName overrides the table name
func (Bill) TableName() string {
	return "bills"
}

const billNumberWidth = 8

// NextBillNumber increments an 8-digit zero-padded bill number. An empty
// last number yields the first of the sequence, "00000001".
func NextBillNumber(last string) (string, error) {
	if last == "" {
		return fmt.Sprintf("%0*d", billNumberWidth, 1), nil
	}
	n, err := strconv.Atoi(last)
	if err != nil {
		return "", fmt.Errorf("malformed bill number %q: %w", last, err)
	}
	return fmt.Sprintf("%0*d", billNumberWidth, n+1), nil
}
