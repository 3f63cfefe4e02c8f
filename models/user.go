package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `gorm:"uniqueIndex;size:100;not null" json:"userId"`
	Passkey   string    `gorm:"size:255;not null" json:"-"`
	Name      string    `gorm:"size:255" json:"name"`
	Role      string    `gorm:"size:20;default:'user'" json:"role"` // admin, user
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}
