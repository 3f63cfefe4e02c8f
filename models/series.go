package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported column type for StringList")
	}
}

// Series is a saved group of job numbers billed together.
type Series struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	JobNumbers StringList `gorm:"type:text" json:"jobNumbers"`
	SavedAt    time.Time  `json:"savedAt"`
}

// TableName overrides the table name
func (Series) TableName() string {
	return "series"
}

// Contains reports whether the series includes the given job number.
func (s *Series) Contains(jobNumber string) bool {
	for _, jn := range s.JobNumbers {
		if jn == jobNumber {
			return true
		}
	}
	return false
}
