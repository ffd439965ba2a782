package dbconnector

import (
	"gorm.io/gorm"
)

// User is keyed by the external chat identity, not a surrogate id.
type User struct {
	UserID   int64 `gorm:"primaryKey"`
	Balance  int64 `gorm:"default:0"`
	ReferBy  *int64
	RefCount int64 `gorm:"default:0"`
	RefEarn  int64 `gorm:"default:0"`
}

type Withdrawal struct {
	gorm.Model
	UserID int64  `gorm:"not null"`
	Method string `gorm:"not null"`
	Number string `gorm:"not null"`
	Amount int64  `gorm:"not null"`
	Status string `gorm:"default:'Pending'"`
}

type Task struct {
	gorm.Model
	UserID   int64 `gorm:"not null"`
	Username string
	FileID   string `gorm:"not null"`
	Status   string `gorm:"default:'Pending'"`
}

type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}
