package ledger

import "errors"

var (
	// ErrNotFound covers both missing records and records owned by another
	// user; callers cannot tell the two apart.
	ErrNotFound = errors.New("record not found")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInsufficientLimit = errors.New("insufficient card limit")
	ErrSameAccount       = errors.New("source and target accounts are the same")
	ErrInvoicePaid       = errors.New("invoice already paid")
	ErrNotAnticipated    = errors.New("entry was not anticipated")

	// ErrAutomaticTemplate is returned when toggling a card-linked fixed
	// expense, which only materializes through renewal.
	ErrAutomaticTemplate = errors.New("card-linked fixed expenses are automatic")

	// ErrInUse rejects deleting an account, card or category still
	// referenced by transactions.
	ErrInUse = errors.New("record is referenced by existing transactions")

	ErrSystemCategory = errors.New("system categories cannot be deleted")
	ErrBeforeStart    = errors.New("date precedes the tracking start month")
)
