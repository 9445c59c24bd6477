package models

import "time"

// Transaction types.
const (
	TypeIncome      = "income"
	TypeExpense     = "expense"
	TypeTransferOut = "transfer_out"
	TypeTransferIn  = "transfer_in"
	TypeCardPayment = "card_payment"
)

// Transaction is a ledger entry. It references at most one of account or
// card as the funding source, never both.
type Transaction struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint      `gorm:"index;not null"`
	Description string    `gorm:"size:200;not null"`
	Amount      int64     `gorm:"not null"` // cents
	Date        time.Time `gorm:"not null;index"`
	Type        string    `gorm:"size:20;not null;index"`

	CategoryID     *uint `gorm:"index"`
	AccountID      *uint `gorm:"index"`
	CardID         *uint `gorm:"index"`
	FixedExpenseID *uint `gorm:"index"`
	FixedRevenueID *uint `gorm:"index"`

	// RefPeriod is the first day of the month the entry logically belongs to
	// when it was anticipated to an earlier date. When set it overrides the
	// calendar month for period matching.
	RefPeriod *time.Time `gorm:"index"`
	// TemplateSeq orders entries generated from the same fixed template: the
	// absolute period index (year*12 + month-1) of the covered period.
	TemplateSeq *int

	// Installment group for split purchases.
	InstallmentID      string `gorm:"size:36;index"`
	InstallmentCurrent int
	InstallmentTotal   int
	TotalPurchase      int64 // cents, full purchase amount of the group

	// PairKey links the two legs of an invoice payment (bank expense and
	// card payment) so deleting one can find the other.
	PairKey string `gorm:"size:36;index"`
}

// Anticipated reports whether the entry was moved ahead of its logical
// period.
func (t *Transaction) Anticipated() bool {
	return t.RefPeriod != nil
}
