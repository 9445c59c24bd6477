package ledger

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/AprendendoLinux/financeiro/models"
	"github.com/AprendendoLinux/financeiro/pkg/billing"
)

// ToggleFixedExpense materializes or unmaterializes an account-funded fixed
// expense for the given period.
//
// If the period already has an entry for the template it is removed and the
// account balance restored (an exact round-trip). Otherwise one is created:
// dated at the template's clamped day inside the period or, when the period
// lies in a future month, dated today with RefPeriod recording the month it
// belongs to (the "anticipation" affordance). An insufficient balance aborts
// before anything is written.
func (s *Service) ToggleFixedExpense(userID, fixedID uint, year int, month time.Month) error {
	var fixed models.FixedExpense
	if err := s.db.Where("id = ? AND user_id = ?", fixedID, userID).First(&fixed).Error; err != nil {
		return ErrNotFound
	}
	if fixed.CardID != nil {
		return ErrAutomaticTemplate
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Transaction
		err := periodScope(
			tx.Where("user_id = ? AND fixed_expense_id = ?", userID, fixed.ID), year, month,
		).First(&existing).Error
		if err == nil {
			if existing.AccountID != nil {
				if err := adjustBalance(tx, *existing.AccountID, existing.Amount); err != nil {
					return err
				}
			}
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if fixed.AccountID == nil {
			// template has no funding source yet; nothing to post
			return nil
		}

		var account models.BankAccount
		if err := tx.Where("id = ? AND user_id = ?", *fixed.AccountID, userID).First(&account).Error; err != nil {
			return ErrNotFound
		}
		if account.Balance < fixed.Amount {
			return fmt.Errorf("%w in account %s", ErrInsufficientFunds, account.Name)
		}

		entry := s.templateEntry(userID, year, month, fixed.DayOfMonth)
		entry.Description = fixed.Description
		entry.Amount = fixed.Amount
		entry.Type = models.TypeExpense
		entry.CategoryID = fixed.CategoryID
		entry.AccountID = fixed.AccountID
		entry.FixedExpenseID = &fixed.ID
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return adjustBalance(tx, account.ID, -fixed.Amount)
	})
}

// ToggleFixedRevenue mirrors ToggleFixedExpense for income templates; no
// balance check applies since the account is credited.
func (s *Service) ToggleFixedRevenue(userID, fixedID uint, year int, month time.Month) error {
	var fixed models.FixedRevenue
	if err := s.db.Where("id = ? AND user_id = ?", fixedID, userID).First(&fixed).Error; err != nil {
		return ErrNotFound
	}
	if fixed.AccountID == nil {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Transaction
		err := periodScope(
			tx.Where("user_id = ? AND fixed_revenue_id = ?", userID, fixed.ID), year, month,
		).First(&existing).Error
		if err == nil {
			if err := adjustBalance(tx, *fixed.AccountID, -existing.Amount); err != nil {
				return err
			}
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		entry := s.templateEntry(userID, year, month, fixed.DayOfMonth)
		entry.Description = fixed.Description
		entry.Amount = fixed.Amount
		entry.Type = models.TypeIncome
		entry.CategoryID = fixed.CategoryID
		entry.AccountID = fixed.AccountID
		entry.FixedRevenueID = &fixed.ID
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return adjustBalance(tx, *fixed.AccountID, fixed.Amount)
	})
}

// templateEntry builds the skeleton of a template-generated transaction for
// the given period: date, reference period and sequence number.
func (s *Service) templateEntry(userID uint, year int, month time.Month, dayOfMonth int) models.Transaction {
	today := s.today()
	seq := billing.PeriodIndex(year, month)
	entry := models.Transaction{UserID: userID, TemplateSeq: &seq}

	periodStart := billing.PeriodStart(year, month)
	if periodStart.After(billing.PeriodStart(today.Year(), today.Month())) {
		// future period paid now: date today, remember the month it covers
		entry.Date = today
		entry.RefPeriod = &periodStart
	} else {
		entry.Date = billing.SafeDate(year, month, dayOfMonth)
	}
	return entry
}
