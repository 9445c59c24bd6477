package ledger

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AprendendoLinux/financeiro/models"
	"github.com/AprendendoLinux/financeiro/pkg/billing"
)

const (
	// renewHorizonMonths is the safety horizon: when a card-linked template's
	// newest generated entry is closer than this, another batch is generated.
	renewHorizonMonths = 3
	// renewBatchMonths is how many monthly occurrences each batch covers.
	renewBatchMonths = 12
)

// RenewCardFixedExpenses tops up the generated entries of every card-linked
// fixed expense so that at least the safety horizon ahead of today is
// covered. Templates with no generated entry at all are skipped: bootstrap
// happens only when the template is created.
func (s *Service) RenewCardFixedExpenses(userID uint) error {
	var templates []models.FixedExpense
	if err := s.db.Where("user_id = ? AND card_id IS NOT NULL", userID).Find(&templates).Error; err != nil {
		return err
	}
	horizon := billing.AddMonths(s.today(), renewHorizonMonths)

	for i := range templates {
		var last models.Transaction
		err := s.db.Where("fixed_expense_id = ?", templates[i].ID).
			Order("date DESC").First(&last).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if last.Date.Before(horizon) {
			start := billing.AddMonths(last.Date, 1)
			if _, err := s.GenerateFixedOccurrences(s.db, &templates[i], start, renewBatchMonths); err != nil {
				return err
			}
		}
	}
	return nil
}

// GenerateFixedOccurrences creates one card expense per month from the
// template, starting in start's month, skipping any period that already has
// an entry for the template. Returns how many entries were created.
func (s *Service) GenerateFixedOccurrences(db *gorm.DB, fixed *models.FixedExpense, start time.Time, months int) (int, error) {
	created := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		cur := start
		for i := 0; i < months; i++ {
			year, month := cur.Year(), cur.Month()

			var n int64
			if err := periodScope(
				tx.Model(&models.Transaction{}).Where("fixed_expense_id = ?", fixed.ID), year, month,
			).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				seq := billing.PeriodIndex(year, month)
				entry := models.Transaction{
					UserID:         fixed.UserID,
					Description:    fixed.Description,
					Amount:         fixed.Amount,
					Date:           billing.SafeDate(year, month, fixed.DayOfMonth),
					Type:           models.TypeExpense,
					CategoryID:     fixed.CategoryID,
					CardID:         fixed.CardID,
					FixedExpenseID: &fixed.ID,
					TemplateSeq:    &seq,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
				created++
			}
			cur = billing.AddMonths(cur, 1)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
