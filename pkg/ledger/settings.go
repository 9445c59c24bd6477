package ledger

import (
	"errors"

	"gorm.io/gorm"

	"github.com/AprendendoLinux/financeiro/models"
)

// Deletion rules for the reference entities. Transactions always win: an
// entity still referenced by ledger entries cannot be removed, while
// recurring templates detach from it instead.

// DeleteCategory removes a category unless it is system-reserved or still in
// use by transactions or templates.
func (s *Service) DeleteCategory(userID, categoryID uint) error {
	var cat models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&cat).Error; err != nil {
		return ErrNotFound
	}
	if cat.IsSystem() {
		return ErrSystemCategory
	}
	if used, err := anyRows(s.db.Model(&models.Transaction{}).Where("category_id = ?", cat.ID)); err != nil {
		return err
	} else if used {
		return ErrInUse
	}
	for _, q := range []*gorm.DB{
		s.db.Model(&models.FixedExpense{}).Where("category_id = ?", cat.ID),
		s.db.Model(&models.FixedRevenue{}).Where("category_id = ?", cat.ID),
	} {
		if used, err := anyRows(q); err != nil {
			return err
		} else if used {
			return ErrInUse
		}
	}
	return s.db.Delete(&cat).Error
}

// DeleteAccount removes a bank account with no transactions, detaching any
// templates that pointed at it.
func (s *Service) DeleteAccount(userID, accountID uint) error {
	var account models.BankAccount
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		return ErrNotFound
	}
	if used, err := anyRows(s.db.Model(&models.Transaction{}).Where("account_id = ?", account.ID)); err != nil {
		return err
	} else if used {
		return ErrInUse
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FixedExpense{}).Where("account_id = ?", account.ID).
			Update("account_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.FixedRevenue{}).Where("account_id = ?", account.ID).
			Update("account_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&account).Error
	})
}

// DeleteCard removes a credit card with no transactions, detaching templates.
func (s *Service) DeleteCard(userID, cardID uint) error {
	var card models.CreditCard
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
		return ErrNotFound
	}
	if used, err := anyRows(s.db.Model(&models.Transaction{}).Where("card_id = ?", card.ID)); err != nil {
		return err
	} else if used {
		return ErrInUse
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FixedExpense{}).Where("card_id = ?", card.ID).
			Update("card_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&card).Error
	})
}

// DeleteFixedExpense ends a recurring expense plan. Historical transactions
// survive with the template link nulled, so past-month aggregates keep their
// amounts.
func (s *Service) DeleteFixedExpense(userID, fixedID uint) error {
	var fixed models.FixedExpense
	if err := s.db.Where("id = ? AND user_id = ?", fixedID, userID).First(&fixed).Error; err != nil {
		return ErrNotFound
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).Where("fixed_expense_id = ?", fixed.ID).
			Update("fixed_expense_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&fixed).Error
	})
}

// DeleteFixedRevenue ends a recurring income plan, keeping history.
func (s *Service) DeleteFixedRevenue(userID, fixedID uint) error {
	var fixed models.FixedRevenue
	if err := s.db.Where("id = ? AND user_id = ?", fixedID, userID).First(&fixed).Error; err != nil {
		return ErrNotFound
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).Where("fixed_revenue_id = ?", fixed.ID).
			Update("fixed_revenue_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&fixed).Error
	})
}

func anyRows(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Count(&n).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return n > 0, nil
}
