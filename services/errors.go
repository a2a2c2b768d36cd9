package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidParameters rejects a settlement call before any mutation.
	ErrInvalidParameters = errors.New("invalid session parameters")
	// ErrSessionFinished guards terminal sessions against further settlement.
	ErrSessionFinished = errors.New("session already finished")
	ErrSessionNotFound = errors.New("session not found")
	ErrCardNotFound    = errors.New("card not found")
	// ErrConcurrentModification means the transaction lost a race and the
	// whole operation may be retried.
	ErrConcurrentModification = errors.New("concurrent modification, retry")
	// ErrTimeout means the persistence commit exceeded its deadline; no
	// partial state was applied.
	ErrTimeout = errors.New("ledger transaction timed out")
)

// InsufficientBalanceError reports a wallet that cannot cover a debit.
type InsufficientBalanceError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need %s, have %s (short %s)",
		e.Required.StringFixed(2), e.Available.StringFixed(2), e.Shortfall().StringFixed(2))
}

// Shortfall is the amount missing from the wallet.
func (e *InsufficientBalanceError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}
