package ledger

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/AprendendoLinux/financeiro/models"
	"github.com/AprendendoLinux/financeiro/pkg/billing"
)

// EntryView is a transaction plus the per-item display flags the dashboard
// needs.
type EntryView struct {
	models.Transaction
	// Scheduled marks card entries dated in the future that have not been
	// anticipated; they are shown but not yet real.
	Scheduled bool `json:"scheduled"`
	// LockedAnticipate blocks anticipating this entry while an earlier
	// pending occurrence of the same template exists.
	LockedAnticipate bool `json:"locked_anticipate"`
	// LockedByCascade blocks un-anticipating this entry because a later
	// occurrence of the same template is also present in the view.
	LockedByCascade bool `json:"locked_by_cascade"`
}

type FixedExpenseStatus struct {
	Template models.FixedExpense `json:"template"`
	Paid     bool                `json:"paid"`
}

type FixedRevenueStatus struct {
	Template models.FixedRevenue `json:"template"`
	Received bool                `json:"received"`
}

// Dashboard is the aggregate state of one month view.
type Dashboard struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`

	Entries []EntryView `json:"entries"`

	// Realized figures: money that has actually hit balances in the period.
	IncomeRealized  int64 `json:"income_realized"`
	ExpenseRealized int64 `json:"expense_realized"`
	BalanceRealized int64 `json:"balance_realized"`

	// BalanceProjected answers "where do I land once everything known
	// settles": all templates plus unmaterialized ad-hoc entries minus full
	// invoice windows.
	BalanceProjected int64 `json:"balance_projected"`

	// CashOnHand is the sum of all account balances right now.
	CashOnHand int64 `json:"cash_on_hand"`

	FixedExpenses []FixedExpenseStatus `json:"fixed_expenses"`
	FixedRevenues []FixedRevenueStatus `json:"fixed_revenues"`
	Cards         []CardStats          `json:"cards"`

	AllowNext  bool `json:"allow_next"`
	FutureView bool `json:"future_view"`
}

// Dashboard renews overdue card templates, then aggregates the requested
// month. A month before the user's tracking start is clamped forward to the
// start month.
func (s *Service) Dashboard(userID uint, year int, month time.Month) (*Dashboard, error) {
	if err := s.RenewCardFixedExpenses(userID); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, ErrNotFound
	}
	if user.StartDate != nil {
		start := billing.PeriodStart(user.StartDate.Year(), user.StartDate.Month())
		if billing.PeriodStart(year, month).Before(start) {
			year, month = start.Year(), start.Month()
		}
	}
	today := s.today()

	var entries []models.Transaction
	err := periodScope(s.db.Where("user_id = ?", userID), year, month).
		Where("type IN ?", []string{
			models.TypeIncome, models.TypeExpense, models.TypeTransferOut, models.TypeTransferIn,
		}).
		Order("date DESC, created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	views, err := s.buildEntryViews(userID, entries, today)
	if err != nil {
		return nil, err
	}

	paymentCatIDs, err := s.paymentCategoryIDs(userID)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{Year: year, Month: month, Entries: views}
	s.sumRealized(dash, paymentCatIDs, today)

	if err := s.sumProjected(dash, userID, paymentCatIDs, year, month); err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.BankAccount{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(balance), 0)").Scan(&dash.CashOnHand).Error; err != nil {
		return nil, err
	}

	if err := s.fixedStatuses(dash, userID, entries); err != nil {
		return nil, err
	}

	var cards []models.CreditCard
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&cards).Error; err != nil {
		return nil, err
	}
	for i := range cards {
		stats, err := s.CardStats(userID, cards[i].ID, year, month)
		if err != nil {
			return nil, err
		}
		dash.Cards = append(dash.Cards, *stats)
	}

	if err := s.navigation(dash, userID, today); err != nil {
		return nil, err
	}
	return dash, nil
}

// buildEntryViews computes the scheduled and lock flags for the listed
// entries.
func (s *Service) buildEntryViews(userID uint, entries []models.Transaction, today time.Time) ([]EntryView, error) {
	views := make([]EntryView, 0, len(entries))

	type templateKey struct {
		expense bool
		id      uint
	}
	grouped := map[templateKey][]int{}

	for i := range entries {
		t := entries[i]
		v := EntryView{Transaction: t}
		v.Scheduled = t.Date.After(today) && !t.Anticipated() && t.AccountID == nil

		if v.Scheduled && (t.FixedExpenseID != nil || t.FixedRevenueID != nil) {
			// an earlier pending occurrence must be anticipated first
			q := s.db.Model(&models.Transaction{}).
				Where("user_id = ? AND date < ? AND date > ?", userID, t.Date, today)
			if t.FixedExpenseID != nil {
				q = q.Where("fixed_expense_id = ?", *t.FixedExpenseID)
			} else {
				q = q.Where("fixed_revenue_id = ?", *t.FixedRevenueID)
			}
			pending, err := anyRows(q)
			if err != nil {
				return nil, err
			}
			v.LockedAnticipate = pending
		}

		if t.FixedExpenseID != nil {
			grouped[templateKey{true, *t.FixedExpenseID}] = append(grouped[templateKey{true, *t.FixedExpenseID}], len(views))
		} else if t.FixedRevenueID != nil {
			grouped[templateKey{false, *t.FixedRevenueID}] = append(grouped[templateKey{false, *t.FixedRevenueID}], len(views))
		}
		views = append(views, v)
	}

	// within a template group only the latest occurrence may be
	// un-anticipated; order by sequence number
	for _, idxs := range grouped {
		if len(idxs) < 2 {
			continue
		}
		sort.Slice(idxs, func(a, b int) bool {
			return viewSeq(&views[idxs[a]]) < viewSeq(&views[idxs[b]])
		})
		for _, idx := range idxs[:len(idxs)-1] {
			views[idx].LockedByCascade = true
		}
	}
	return views, nil
}

func viewSeq(v *EntryView) int {
	if v.TemplateSeq != nil {
		return *v.TemplateSeq
	}
	return billing.PeriodIndex(v.Date.Year(), v.Date.Month())
}

// sumRealized fills the realized income/expense totals: invoice payments are
// excluded (the card purchases they cover are counted instead) and card
// spend only counts once its date arrives.
func (s *Service) sumRealized(dash *Dashboard, paymentCatIDs map[uint]bool, today time.Time) {
	for i := range dash.Entries {
		t := &dash.Entries[i].Transaction
		switch t.Type {
		case models.TypeIncome:
			dash.IncomeRealized += t.Amount
		case models.TypeExpense:
			if t.CategoryID != nil && paymentCatIDs[*t.CategoryID] {
				continue
			}
			if t.CardID != nil && t.Date.After(today) {
				continue
			}
			dash.ExpenseRealized += t.Amount
		}
	}
	dash.BalanceRealized = dash.IncomeRealized - dash.ExpenseRealized
}

// sumProjected computes the settled-state balance: every known obligation
// and income for the period, with card spend represented by whole invoice
// windows rather than individual purchases.
func (s *Service) sumProjected(dash *Dashboard, userID uint, paymentCatIDs map[uint]bool, year int, month time.Month) error {
	var incomeProjected, expenseProjected int64

	var revenues []models.FixedRevenue
	if err := s.db.Where("user_id = ?", userID).Find(&revenues).Error; err != nil {
		return err
	}
	for i := range revenues {
		incomeProjected += revenues[i].Amount
	}

	var accountExpenses []models.FixedExpense
	if err := s.db.Where("user_id = ? AND card_id IS NULL", userID).Find(&accountExpenses).Error; err != nil {
		return err
	}
	for i := range accountExpenses {
		expenseProjected += accountExpenses[i].Amount
	}

	for i := range dash.Entries {
		t := &dash.Entries[i].Transaction
		switch t.Type {
		case models.TypeIncome:
			if t.FixedRevenueID == nil {
				incomeProjected += t.Amount
			}
		case models.TypeExpense:
			// ad-hoc account spend; card purchases come in via the invoice
			// windows below and payments would double count them
			if t.FixedExpenseID == nil && t.CardID == nil {
				if t.CategoryID != nil && paymentCatIDs[*t.CategoryID] {
					continue
				}
				expenseProjected += t.Amount
			}
		}
	}

	var cards []models.CreditCard
	if err := s.db.Where("user_id = ?", userID).Find(&cards).Error; err != nil {
		return err
	}
	for i := range cards {
		open, close, _ := billing.InvoiceDates(cards[i].ClosingDay, cards[i].DueDay, year, month)
		total, err := sumCents(s.db.Model(&models.Transaction{}).
			Where("user_id = ? AND card_id = ? AND type = ? AND date >= ? AND date <= ?",
				userID, cards[i].ID, models.TypeExpense, open, close))
		if err != nil {
			return err
		}
		expenseProjected += total
	}

	dash.BalanceProjected = incomeProjected - expenseProjected
	return nil
}

// fixedStatuses reports, per template, whether this month's occurrence is
// already materialized.
func (s *Service) fixedStatuses(dash *Dashboard, userID uint, entries []models.Transaction) error {
	paidExpense := map[uint]bool{}
	receivedRevenue := map[uint]bool{}
	for i := range entries {
		if entries[i].FixedExpenseID != nil {
			paidExpense[*entries[i].FixedExpenseID] = true
		}
		if entries[i].FixedRevenueID != nil {
			receivedRevenue[*entries[i].FixedRevenueID] = true
		}
	}

	var expenses []models.FixedExpense
	if err := s.db.Where("user_id = ? AND card_id IS NULL", userID).
		Order("day_of_month").Find(&expenses).Error; err != nil {
		return err
	}
	for i := range expenses {
		dash.FixedExpenses = append(dash.FixedExpenses, FixedExpenseStatus{
			Template: expenses[i], Paid: paidExpense[expenses[i].ID],
		})
	}

	var revenues []models.FixedRevenue
	if err := s.db.Where("user_id = ?", userID).
		Order("day_of_month").Find(&revenues).Error; err != nil {
		return err
	}
	for i := range revenues {
		dash.FixedRevenues = append(dash.FixedRevenues, FixedRevenueStatus{
			Template: revenues[i], Received: receivedRevenue[revenues[i].ID],
		})
	}
	return nil
}

// navigation bounds the month selector: forward navigation stops at the
// newest known transaction (or today, whichever is later).
func (s *Service) navigation(dash *Dashboard, userID uint, today time.Time) error {
	maxNav := today
	var last models.Transaction
	err := s.db.Where("user_id = ?", userID).Order("date DESC").First(&last).Error
	if err == nil && last.Date.After(maxNav) {
		maxNav = last.Date
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	next := billing.PeriodStart(dash.Year, dash.Month).AddDate(0, 1, 0)
	dash.AllowNext = !next.After(billing.PeriodStart(maxNav.Year(), maxNav.Month()))
	dash.FutureView = billing.PeriodStart(dash.Year, dash.Month).
		After(billing.PeriodStart(today.Year(), today.Month()))
	return nil
}

// paymentCategoryIDs returns the ids of the user's payment-type categories.
func (s *Service) paymentCategoryIDs(userID uint) (map[uint]bool, error) {
	var cats []models.Category
	if err := s.db.Where("user_id = ? AND type = ?", userID, models.CategoryPayment).
		Find(&cats).Error; err != nil {
		return nil, err
	}
	ids := make(map[uint]bool, len(cats))
	for i := range cats {
		ids[cats[i].ID] = true
	}
	return ids, nil
}

// MonthEntries lists every entry of the period in chronological order,
// including card payment legs. Used by the export endpoint.
func (s *Service) MonthEntries(userID uint, year int, month time.Month) ([]models.Transaction, error) {
	var entries []models.Transaction
	err := periodScope(s.db.Where("user_id = ?", userID), year, month).
		Order("date ASC, created_at ASC").
		Find(&entries).Error
	return entries, err
}
