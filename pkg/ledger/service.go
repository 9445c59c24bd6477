// Package ledger implements the bookkeeping core: materializing recurring
// templates into concrete transactions, renewing card-linked templates,
// invoice accounting and the monthly dashboard aggregation. Every operation
// takes the owning user id explicitly; there is no ambient session state.
package ledger

import (
	"time"

	"gorm.io/gorm"

	"github.com/AprendendoLinux/financeiro/pkg/billing"
)

// Service runs ledger operations against a gorm database. Now is the clock
// used for "today" decisions (anticipation, renewal horizon, future flags)
// and can be replaced in tests.
type Service struct {
	db  *gorm.DB
	Now func() time.Time
}

func New(db *gorm.DB) *Service {
	return &Service{db: db, Now: time.Now}
}

// today returns the current date truncated to midnight UTC. All transaction
// dates are stored date-only, so comparisons happen at day granularity.
func (s *Service) today() time.Time {
	n := s.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// periodScope narrows a transaction query to entries belonging to the given
// period. The identity rule is canonical: an entry with RefPeriod set belongs
// to that period and no other; otherwise its calendar month decides.
func periodScope(q *gorm.DB, year int, month time.Month) *gorm.DB {
	start := billing.PeriodStart(year, month)
	end := start.AddDate(0, 1, 0)
	return q.Where("(ref_period IS NULL AND date >= ? AND date < ?) OR ref_period = ?", start, end, start)
}

// sumCents evaluates SUM(amount) over the given transaction query.
func sumCents(q *gorm.DB) (int64, error) {
	var total int64
	err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}
