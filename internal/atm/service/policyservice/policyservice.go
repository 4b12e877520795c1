// Package policyservice holds the pure predicates deciding whether a money
// operation is permitted. No I/O: callers supply the daily total and balance.
package policyservice

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/123kaze/cq/internal/atm/domain"
)

var (
	ErrNonPositiveAmount   = errors.New("amount must be > 0")
	ErrNotMultipleOf100    = errors.New("withdrawal amount must be a multiple of 100")
	ErrExceedsSingleLimit  = errors.New("exceeds single withdrawal limit")
	ErrExceedsDailyLimit   = errors.New("exceeds daily withdrawal limit")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")
	ErrBadPassword         = errors.New("password must be 6 decimal digits")
)

var withdrawalMultiple = decimal.NewFromInt(domain.WithdrawalMultiple)

// CheckWithdrawal reports the first violated withdrawal rule. The check
// order matches the messages shown to the user: positivity, cash multiple,
// single cap, daily cap, balance.
func CheckWithdrawal(amount, todaySoFar, balance decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if !amount.Mod(withdrawalMultiple).IsZero() {
		return ErrNotMultipleOf100
	}
	if amount.GreaterThan(domain.SingleWithdrawalLimit) {
		return ErrExceedsSingleLimit
	}
	if todaySoFar.Add(amount).GreaterThan(domain.DailyWithdrawalLimit) {
		return ErrExceedsDailyLimit
	}
	if amount.GreaterThan(balance) {
		return ErrInsufficientBalance
	}
	return nil
}

// CheckDeposit permits any positive amount.
func CheckDeposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	return nil
}

// CheckTransferTarget validates the target before any amount is known:
// it must exist and differ from the source.
func CheckTransferTarget(source, target string, targetExists bool) error {
	if !targetExists {
		return domain.ErrTargetNotFound
	}
	if target == source {
		return ErrSelfTransfer
	}
	return nil
}

// CheckTransferAmount validates the transfer amount against the source
// balance. Transfers carry no daily cap.
func CheckTransferAmount(amount, balance decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if amount.GreaterThan(balance) {
		return ErrInsufficientBalance
	}
	return nil
}

// ValidateNewPassword requires exactly 6 decimal digits.
func ValidateNewPassword(password string) error {
	if len(password) != domain.PasswordLength {
		return ErrBadPassword
	}
	for _, c := range password {
		if c < '0' || c > '9' {
			return ErrBadPassword
		}
	}
	return nil
}
