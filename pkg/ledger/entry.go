package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AprendendoLinux/financeiro/models"
	"github.com/AprendendoLinux/financeiro/pkg/billing"
)

// EntryInput describes a new ledger entry or recurring template.
type EntryInput struct {
	Type        string // models.TypeIncome or models.TypeExpense
	Description string
	Amount      int64 // cents
	Date        time.Time
	CategoryID  *uint
	AccountID   *uint
	CardID      *uint
	// Installments > 1 splits a card purchase into that many monthly slices.
	Installments int
	// Fixed registers a recurring template instead of a concrete entry.
	// Card-linked fixed expenses eagerly generate a year of occurrences.
	Fixed bool
}

// CreateEntry records a one-off transaction or a recurring template for the
// user. Account expenses check the balance first; card expenses check the
// available limit; nothing is written when a check fails.
func (s *Service) CreateEntry(userID uint, in EntryInput) error {
	if in.Type != models.TypeIncome && in.Type != models.TypeExpense {
		return fmt.Errorf("unsupported entry type %q", in.Type)
	}
	if in.AccountID != nil && in.CardID != nil {
		return errors.New("entry cannot reference both an account and a card")
	}
	if err := s.checkStartDate(userID, in.Date); err != nil {
		return err
	}

	if in.Fixed {
		return s.createTemplate(userID, in)
	}

	// limit check reads card history, keep it outside the write transaction
	if in.Type == models.TypeExpense && in.CardID != nil {
		if err := s.CheckCardLimit(userID, *in.CardID, in.Amount); err != nil {
			return err
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if in.AccountID != nil {
			var account models.BankAccount
			if err := tx.Where("id = ? AND user_id = ?", *in.AccountID, userID).First(&account).Error; err != nil {
				return ErrNotFound
			}
			if in.Type == models.TypeExpense {
				if account.Balance < in.Amount {
					return fmt.Errorf("%w in account %s", ErrInsufficientFunds, account.Name)
				}
				if err := adjustBalance(tx, account.ID, -in.Amount); err != nil {
					return err
				}
			} else {
				if err := adjustBalance(tx, account.ID, in.Amount); err != nil {
					return err
				}
			}
		}

		if in.Type == models.TypeExpense && in.CardID != nil && in.Installments > 1 {
			return s.createInstallments(tx, userID, in)
		}

		entry := models.Transaction{
			UserID:      userID,
			Description: in.Description,
			Amount:      in.Amount,
			Date:        in.Date,
			Type:        in.Type,
			CategoryID:  in.CategoryID,
			AccountID:   in.AccountID,
			CardID:      in.CardID,
		}
		return tx.Create(&entry).Error
	})
}

// createInstallments splits a card purchase into equal monthly slices
// sharing one group identifier. The cents remainder lands on the first
// slice so the slices always add up to the purchase amount.
func (s *Service) createInstallments(tx *gorm.DB, userID uint, in EntryInput) error {
	n := int64(in.Installments)
	per := in.Amount / n
	first := in.Amount - per*(n-1)
	groupID := uuid.NewString()

	for i := 0; i < in.Installments; i++ {
		amount := per
		if i == 0 {
			amount = first
		}
		entry := models.Transaction{
			UserID:             userID,
			Description:        fmt.Sprintf("%s (%d/%d)", in.Description, i+1, in.Installments),
			Amount:             amount,
			Date:               billing.AddMonths(in.Date, i),
			Type:               models.TypeExpense,
			CategoryID:         in.CategoryID,
			CardID:             in.CardID,
			InstallmentID:      groupID,
			InstallmentCurrent: i + 1,
			InstallmentTotal:   in.Installments,
			TotalPurchase:      in.Amount,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// createTemplate registers a fixed expense or revenue. A card-linked fixed
// expense immediately generates a year of occurrences; everything else waits
// for a manual toggle.
func (s *Service) createTemplate(userID uint, in EntryInput) error {
	if in.DayOfMonth() < 1 || in.DayOfMonth() > 31 {
		return fmt.Errorf("day of month out of range: %d", in.DayOfMonth())
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if in.Type == models.TypeExpense {
			fixed := models.FixedExpense{
				UserID:      userID,
				Description: in.Description,
				Amount:      in.Amount,
				DayOfMonth:  in.DayOfMonth(),
				CategoryID:  in.CategoryID,
				AccountID:   in.AccountID,
				CardID:      in.CardID,
			}
			if err := tx.Create(&fixed).Error; err != nil {
				return err
			}
			if fixed.CardID != nil {
				_, err := s.GenerateFixedOccurrences(tx, &fixed, in.Date, renewBatchMonths)
				return err
			}
			return nil
		}
		fixed := models.FixedRevenue{
			UserID:      userID,
			Description: in.Description,
			Amount:      in.Amount,
			DayOfMonth:  in.DayOfMonth(),
			CategoryID:  in.CategoryID,
			AccountID:   in.AccountID,
		}
		return tx.Create(&fixed).Error
	})
}

// DayOfMonth derives the recurring day from the entry date.
func (in EntryInput) DayOfMonth() int {
	return in.Date.Day()
}

// DeleteEntry removes a transaction, reversing its balance effect and
// cleaning up what depends on it:
//
//   - deleting a future template-generated entry cancels the whole plan:
//     this and later occurrences are removed, past ones are detached from
//     the template, and the template itself is deleted;
//   - deleting a past template-generated entry removes just that occurrence,
//     the plan stays active;
//   - a card purchase whose invoice already received a payment is protected;
//   - deleting either leg of an invoice payment removes its counterpart and
//     restores the bank balance.
func (s *Service) DeleteEntry(userID, entryID uint) error {
	var entry models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
		return ErrNotFound
	}
	today := s.today()

	if entry.FixedExpenseID != nil && entry.Date.After(today) {
		return s.cancelFixedPlan(userID, &entry)
	}

	if entry.CardID != nil && entry.Type == models.TypeExpense {
		var card models.CreditCard
		if err := s.db.Where("id = ? AND user_id = ?", *entry.CardID, userID).First(&card).Error; err == nil {
			paid, err := s.hasInvoicePayment(userID, &card, entry.Date)
			if err != nil {
				return err
			}
			if paid {
				return ErrInvoicePaid
			}
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if entry.PairKey != "" {
			var other models.Transaction
			err := tx.Where("pair_key = ? AND id <> ? AND user_id = ?", entry.PairKey, entry.ID, userID).
				First(&other).Error
			if err == nil {
				if other.AccountID != nil {
					if err := balanceReversal(tx, &other); err != nil {
						return err
					}
				}
				if err := tx.Delete(&other).Error; err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if entry.AccountID != nil {
			if err := balanceReversal(tx, &entry); err != nil {
				return err
			}
		}
		return tx.Delete(&entry).Error
	})
}

// cancelFixedPlan removes the given future occurrence and everything after
// it, detaches the surviving history and drops the template.
func (s *Service) cancelFixedPlan(userID uint, entry *models.Transaction) error {
	fixedID := *entry.FixedExpenseID
	return s.db.Transaction(func(tx *gorm.DB) error {
		var doomed []models.Transaction
		if err := tx.Where("user_id = ? AND fixed_expense_id = ? AND date >= ?", userID, fixedID, entry.Date).
			Find(&doomed).Error; err != nil {
			return err
		}
		for i := range doomed {
			if doomed[i].AccountID != nil {
				if err := balanceReversal(tx, &doomed[i]); err != nil {
					return err
				}
			}
			if err := tx.Delete(&doomed[i]).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Transaction{}).
			Where("fixed_expense_id = ?", fixedID).
			Update("fixed_expense_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", fixedID, userID).
			Delete(&models.FixedExpense{}).Error
	})
}

// balanceReversal undoes the balance effect the entry had on its account.
func balanceReversal(tx *gorm.DB, entry *models.Transaction) error {
	if entry.AccountID == nil {
		return nil
	}
	switch entry.Type {
	case models.TypeIncome, models.TypeTransferIn:
		return adjustBalance(tx, *entry.AccountID, -entry.Amount)
	case models.TypeExpense, models.TypeTransferOut:
		return adjustBalance(tx, *entry.AccountID, entry.Amount)
	}
	return nil
}

// AnticipateEntry moves an entry to today, recording the month it logically
// belongs to so the move can be undone and period matching stays stable.
func (s *Service) AnticipateEntry(userID, entryID uint) error {
	var entry models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
		return ErrNotFound
	}
	today := s.today()
	updates := map[string]interface{}{"date": today}
	if entry.RefPeriod == nil {
		updates["ref_period"] = billing.PeriodStart(entry.Date.Year(), entry.Date.Month())
	}
	return s.db.Model(&entry).Updates(updates).Error
}

// UndoAnticipate restores an anticipated entry to its logical period, dated
// at the owning template's day of month (clamped). Entries without a
// template link cannot be restored: there is no day to return to.
func (s *Service) UndoAnticipate(userID, entryID uint) error {
	var entry models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
		return ErrNotFound
	}
	if entry.RefPeriod == nil {
		return ErrNotAnticipated
	}

	day := 0
	switch {
	case entry.FixedExpenseID != nil:
		var fixed models.FixedExpense
		if err := s.db.Where("id = ? AND user_id = ?", *entry.FixedExpenseID, userID).First(&fixed).Error; err != nil {
			return ErrNotFound
		}
		day = fixed.DayOfMonth
	case entry.FixedRevenueID != nil:
		var fixed models.FixedRevenue
		if err := s.db.Where("id = ? AND user_id = ?", *entry.FixedRevenueID, userID).First(&fixed).Error; err != nil {
			return ErrNotFound
		}
		day = fixed.DayOfMonth
	default:
		return ErrNotAnticipated
	}

	ref := *entry.RefPeriod
	restored := billing.SafeDate(ref.Year(), ref.Month(), day)
	return s.db.Model(&entry).
		Updates(map[string]interface{}{"date": restored, "ref_period": nil}).Error
}

// FutureInstallments lists the not-yet-due slices of split purchases on a
// card, soonest first.
func (s *Service) FutureInstallments(userID, cardID uint) ([]models.Transaction, error) {
	var items []models.Transaction
	err := s.db.Where("user_id = ? AND card_id = ? AND type = ? AND date > ? AND installment_total > 1",
		userID, cardID, models.TypeExpense, s.today()).
		Order("date ASC").Find(&items).Error
	return items, err
}

// AdvanceInstallments pulls the selected installment slices onto today's
// invoice, keeping each slice's logical period. Returns how many moved.
func (s *Service) AdvanceInstallments(userID uint, entryIDs []uint) (int, error) {
	if len(entryIDs) == 0 {
		return 0, nil
	}
	today := s.today()
	count := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range entryIDs {
			var entry models.Transaction
			if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			updates := map[string]interface{}{"date": today}
			if entry.RefPeriod == nil {
				updates["ref_period"] = billing.PeriodStart(entry.Date.Year(), entry.Date.Month())
			}
			if err := tx.Model(&entry).Updates(updates).Error; err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// TransferFunds moves money between two of the user's accounts, writing a
// transfer_out/transfer_in pair under the system transfer category.
func (s *Service) TransferFunds(userID, sourceID, targetID uint, amount int64, date time.Time, description string) error {
	if sourceID == targetID {
		return ErrSameAccount
	}
	if err := s.checkStartDate(userID, date); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var source, target models.BankAccount
		if err := tx.Where("id = ? AND user_id = ?", sourceID, userID).First(&source).Error; err != nil {
			return ErrNotFound
		}
		if err := tx.Where("id = ? AND user_id = ?", targetID, userID).First(&target).Error; err != nil {
			return ErrNotFound
		}
		if source.Balance < amount {
			return fmt.Errorf("%w in account %s", ErrInsufficientFunds, source.Name)
		}
		transferCat, err := ensureSystemCategory(tx, userID, models.CategoryTransfer)
		if err != nil {
			return err
		}

		outDesc := description
		if outDesc == "" {
			outDesc = "Transfer to " + target.Name
		}
		inDesc := description
		if inDesc == "" {
			inDesc = "Received from " + source.Name
		}
		out := models.Transaction{
			UserID: userID, AccountID: &source.ID, CategoryID: &transferCat.ID,
			Description: outDesc, Amount: amount, Date: date, Type: models.TypeTransferOut,
		}
		in := models.Transaction{
			UserID: userID, AccountID: &target.ID, CategoryID: &transferCat.ID,
			Description: inDesc, Amount: amount, Date: date, Type: models.TypeTransferIn,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		if err := tx.Create(&in).Error; err != nil {
			return err
		}
		if err := adjustBalance(tx, source.ID, -amount); err != nil {
			return err
		}
		return adjustBalance(tx, target.ID, amount)
	})
}

// checkStartDate rejects operations dated before the user's tracking start
// month.
func (s *Service) checkStartDate(userID uint, date time.Time) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return ErrNotFound
	}
	if user.StartDate == nil {
		return nil
	}
	start := billing.PeriodStart(user.StartDate.Year(), user.StartDate.Month())
	if billing.PeriodStart(date.Year(), date.Month()).Before(start) {
		return ErrBeforeStart
	}
	return nil
}
