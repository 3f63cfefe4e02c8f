package models

import (
	"time"
)

type Job struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	JobNumber  string    `gorm:"uniqueIndex;size:50;not null" json:"jobNumber"`
	ClientName string    `gorm:"size:255;not null" json:"clientName"`
	JobTitle   string    `gorm:"size:255;not null" json:"jobTitle"`
	Qty        float64   `gorm:"not null" json:"qty"`
	ProductCat string    `gorm:"size:255" json:"productCat"`
	UnitPrice  float64   `json:"unitPrice"`
}

// TableName overrides the table name
func (Job) TableName() string {
	return "jobs"
}
