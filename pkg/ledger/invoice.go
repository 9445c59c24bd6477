package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AprendendoLinux/financeiro/models"
	"github.com/AprendendoLinux/financeiro/pkg/billing"
	"github.com/AprendendoLinux/financeiro/pkg/money"
)

// paymentGraceDays extends the invoice window when looking for payments, so
// a payment made a few days late still settles its invoice.
const paymentGraceDays = 20

// CardStats describes a card's invoice and limit state for one cycle.
//
// Used limit is a running total over the card's whole history (all non-future
// spend minus every payment ever made), not reset per cycle: paying an
// invoice frees limit permanently.
type CardStats struct {
	Card          models.CreditCard `json:"card"`
	Limit         int64             `json:"limit"`
	Used          int64             `json:"used"`
	Available     int64             `json:"available"`
	Percent       float64           `json:"percent"`
	InvoiceAmount int64             `json:"invoice_amount"`
	Paid          bool              `json:"paid"`
	OpenDate      time.Time         `json:"open_date"`
	CloseDate     time.Time         `json:"close_date"`
	DueDate       time.Time         `json:"due_date"`
	TargetMonth   time.Month        `json:"target_month"`
	TargetYear    int               `json:"target_year"`
}

// CardStats computes the invoice window and limit usage of a card for the
// given reference month.
func (s *Service) CardStats(userID, cardID uint, year int, month time.Month) (*CardStats, error) {
	var card models.CreditCard
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	today := s.today()
	open, close, due := billing.InvoiceDates(card.ClosingDay, card.DueDay, year, month)

	// invoice total: purchases inside the window; template-generated entries
	// only count once their date arrives
	invoiceExpenses, err := sumCents(s.db.Model(&models.Transaction{}).
		Where("card_id = ? AND type = ? AND date >= ? AND date <= ?", card.ID, models.TypeExpense, open, close).
		Where("fixed_expense_id IS NULL OR date <= ?", today))
	if err != nil {
		return nil, err
	}
	invoicePayments, err := sumCents(s.db.Model(&models.Transaction{}).
		Where("card_id = ? AND type = ? AND date >= ? AND date <= ?",
			card.ID, models.TypeCardPayment, open, due.AddDate(0, 0, paymentGraceDays)))
	if err != nil {
		return nil, err
	}
	currentInvoice := invoiceExpenses - invoicePayments

	totalSpent, err := sumCents(s.db.Model(&models.Transaction{}).
		Where("card_id = ? AND type = ?", card.ID, models.TypeExpense).
		Where("date <= ? OR fixed_expense_id IS NULL", today))
	if err != nil {
		return nil, err
	}
	totalPaid, err := sumCents(s.db.Model(&models.Transaction{}).
		Where("card_id = ? AND type = ?", card.ID, models.TypeCardPayment))
	if err != nil {
		return nil, err
	}
	used := totalSpent - totalPaid

	stats := &CardStats{
		Card:        card,
		Limit:       card.Limit,
		Used:        used,
		Available:   card.Limit - used,
		Percent:     money.Percent(used, card.Limit),
		Paid:        currentInvoice <= 1, // a cent of rounding dust still counts as paid
		OpenDate:    open,
		CloseDate:   close,
		DueDate:     due,
		TargetMonth: due.Month(),
		TargetYear:  due.Year(),
	}
	if currentInvoice > 0 {
		stats.InvoiceAmount = currentInvoice
	}
	return stats, nil
}

// CheckCardLimit verifies the card can absorb another purchase of the given
// amount against its currently available limit.
func (s *Service) CheckCardLimit(userID, cardID uint, amount int64) error {
	today := s.today()
	stats, err := s.CardStats(userID, cardID, today.Year(), today.Month())
	if err != nil {
		return err
	}
	if amount > stats.Available {
		return fmt.Errorf("%w: available %s", ErrInsufficientLimit, money.FormatCents(stats.Available))
	}
	return nil
}

// PayInvoice registers an invoice payment: one expense debited from the bank
// account and one card_payment credited to the card, both dated the same day
// and linked by a shared pair key. Fails without mutating state when the
// account balance is insufficient.
func (s *Service) PayInvoice(userID, cardID, accountID uint, amount int64, date time.Time) error {
	if err := s.checkStartDate(userID, date); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var card models.CreditCard
		if err := tx.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
			return ErrNotFound
		}
		var account models.BankAccount
		if err := tx.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
			return ErrNotFound
		}
		if account.Balance < amount {
			return fmt.Errorf("%w in account %s", ErrInsufficientFunds, account.Name)
		}
		payCat, err := ensureSystemCategory(tx, userID, models.CategoryPayment)
		if err != nil {
			return err
		}

		pairKey := uuid.NewString()
		bankLeg := models.Transaction{
			UserID:      userID,
			AccountID:   &account.ID,
			CategoryID:  &payCat.ID,
			Description: "Invoice payment " + card.Name,
			Amount:      amount,
			Date:        date,
			Type:        models.TypeExpense,
			PairKey:     pairKey,
		}
		cardLeg := models.Transaction{
			UserID:      userID,
			CardID:      &card.ID,
			Description: "Payment received",
			Amount:      amount,
			Date:        date,
			Type:        models.TypeCardPayment,
			PairKey:     pairKey,
		}
		if err := tx.Create(&bankLeg).Error; err != nil {
			return err
		}
		if err := tx.Create(&cardLeg).Error; err != nil {
			return err
		}
		return adjustBalance(tx, account.ID, -amount)
	})
}

// hasInvoicePayment reports whether the invoice covering the given purchase
// date has already received a payment.
func (s *Service) hasInvoicePayment(userID uint, card *models.CreditCard, purchaseDate time.Time) (bool, error) {
	ref := purchaseDate
	if purchaseDate.Day() > card.ClosingDay {
		ref = billing.AddMonths(purchaseDate, 1)
	}
	open, _, due := billing.InvoiceDates(card.ClosingDay, card.DueDay, ref.Year(), ref.Month())

	var n int64
	err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND card_id = ? AND type = ?", userID, card.ID, models.TypeCardPayment).
		Where("date >= ? AND date <= ?", open, due.AddDate(0, 0, 10)).
		Count(&n).Error
	return n > 0, err
}

// adjustBalance applies a signed delta to an account's cached balance.
func adjustBalance(tx *gorm.DB, accountID uint, delta int64) error {
	return tx.Model(&models.BankAccount{}).Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error
}

// ensureSystemCategory finds or creates one of the reserved transfer/payment
// categories for the user.
func ensureSystemCategory(tx *gorm.DB, userID uint, catType string) (*models.Category, error) {
	var cat models.Category
	err := tx.Where("user_id = ? AND type = ?", userID, catType).First(&cat).Error
	if err == nil {
		return &cat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	switch catType {
	case models.CategoryPayment:
		cat = models.Category{UserID: userID, Name: "Payment", Type: catType, ColorHex: "#EF4444"}
	case models.CategoryTransfer:
		cat = models.Category{UserID: userID, Name: "Transfer", Type: catType, ColorHex: "#3B82F6"}
	default:
		return nil, fmt.Errorf("not a system category type: %s", catType)
	}
	if err := tx.Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}
