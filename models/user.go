package models

import (
	"time"
)

// User model
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time `gorm:"index"`
	Email          string     `gorm:"size:150;not null;unique"`
	Name           string     `gorm:"size:100;not null"`
	HashedPassword []byte     `gorm:"not null"`
	// StartDate marks the first month the user tracks; entries dated before
	// it are rejected.
	StartDate *time.Time

	Accounts      []BankAccount  `gorm:"foreignKey:UserID"`
	Cards         []CreditCard   `gorm:"foreignKey:UserID"`
	Categories    []Category     `gorm:"foreignKey:UserID"`
	FixedExpenses []FixedExpense `gorm:"foreignKey:UserID"`
	FixedRevenues []FixedRevenue `gorm:"foreignKey:UserID"`
}
