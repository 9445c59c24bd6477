package models

import "time"

// FixedExpense is a recurring expense template. It references at most one of
// account or card as funding source. Card-linked templates materialize
// automatically through renewal; account-linked ones are toggled manually.
type FixedExpense struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint   `gorm:"index;not null"`
	Description string `gorm:"size:200;not null"`
	Amount      int64  `gorm:"not null"` // cents
	DayOfMonth  int    `gorm:"not null"`
	CategoryID  *uint  `gorm:"index"`
	AccountID   *uint  `gorm:"index"`
	CardID      *uint  `gorm:"index"`
}

// FixedRevenue is a recurring income template, always account-funded.
type FixedRevenue struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint   `gorm:"index;not null"`
	Description string `gorm:"size:200;not null"`
	Amount      int64  `gorm:"not null"` // cents
	DayOfMonth  int    `gorm:"not null"`
	CategoryID  *uint  `gorm:"index"`
	AccountID   *uint  `gorm:"index"`
}
