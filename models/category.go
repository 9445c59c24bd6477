package models

import "time"

// Category semantic types. Transfer and payment are system categories:
// created automatically, never deletable.
const (
	CategoryIncome   = "income"
	CategoryExpense  = "expense"
	CategoryTransfer = "transfer"
	CategoryPayment  = "payment"
)

type Category struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:100;not null"`
	Type      string `gorm:"size:20;not null;index"`
	ColorHex  string `gorm:"size:7;default:#64748b"`
}

// IsSystem reports whether the category is reserved and must not be deleted.
func (c *Category) IsSystem() bool {
	return c.Type == CategoryTransfer || c.Type == CategoryPayment
}
