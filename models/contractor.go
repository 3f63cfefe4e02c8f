package models

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

type Contractor struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ContractorID string    `gorm:"uniqueIndex;size:50;not null" json:"contractorId"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	CreationDate time.Time `json:"creationDate"`
	IsDeleted    int       `gorm:"default:0" json:"isdeleted"`
}

// TableName overrides the table name
func (Contractor) TableName() string {
	return "contractors"
}

const contractorIDChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewContractorID builds a CTR-prefixed identifier from the current
// timestamp plus a random suffix. Uniqueness is still re-checked against
// the store by the caller.
func NewContractorID() string {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteByte(contractorIDChars[rand.Intn(len(contractorIDChars))])
	}
	return fmt.Sprintf("CTR%d%s", time.Now().UnixMilli(), b.String())
}
