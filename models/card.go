package models

import "time"

// CreditCard defines a recurring billing cycle. ClosingDay and DueDay are
// 1-31 as configured; the billing package clamps them to the length of the
// month they land in.
type CreditCard struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     uint   `gorm:"index;not null"`
	Name       string `gorm:"size:100;not null"`
	Limit      int64  `gorm:"column:limit_amount;not null"` // cents
	ClosingDay int    `gorm:"not null"`
	DueDay     int    `gorm:"not null"`
	Brand      string `gorm:"size:50;default:other"`
	Bank       string `gorm:"size:50;default:other"`
}
