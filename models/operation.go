package models

import (
	"time"
)

// Conversion types governing how an operation's required quantity relates
// to the job quantity.
const (
	OpTypeOneToOne = "1:1"
	OpTypeMultiply = "1*x"
	OpTypeDivide   = "1/x"
)

type Operation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	OpsName     string    `gorm:"size:255;not null;index" json:"opsName"`
	Type        string    `gorm:"size:10;not null" json:"type"` // 1:1, 1*x, 1/x
	RatePerUnit float64   `gorm:"not null" json:"ratePerUnit"`
	IsDeleted   int       `gorm:"default:0" json:"isdeleted"`
}

// TableName overrides the table name
func (Operation) TableName() string {
	return "operations"
}

func ValidOpType(t string) bool {
	return t == OpTypeOneToOne || t == OpTypeMultiply || t == OpTypeDivide
}

// TotalOpsQty derives the required operation quantity for a job of quantity
// totalQty given the per-book factor and this operation's conversion type.
// 1/x means one operation per k books, so the quantity divides.
func (o *Operation) TotalOpsQty(qtyPerBook, totalQty float64) float64 {
	if o != nil && o.Type == OpTypeDivide {
		if qtyPerBook > 0 {
			return totalQty / qtyPerBook
		}
		return 0
	}
	return qtyPerBook * totalQty
}
