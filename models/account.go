package models

import "time"

// BankAccount holds a cached running balance in the smallest currency unit
// (cents). Every transaction that touches the account adjusts it; it is not
// derived live from the ledger.
type BankAccount struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:100;not null"`
	Balance   int64  `gorm:"not null;default:0"` // cents
}
