package domain

import "github.com/shopspring/decimal"

// TransactionType labels an audit log entry.
type TransactionType string

const (
	TypeBalanceQuery TransactionType = "BALANCE_QUERY"
	TypeWithdrawal   TransactionType = "WITHDRAWAL"
	TypeDeposit      TransactionType = "DEPOSIT"
	TypeTransfer     TransactionType = "TRANSFER"
)

// Account is one record of the account store. The account number is the
// primary key; Balance never goes negative.
type Account struct {
	Number   string
	Name     string
	IDCard   string
	Password string
	Balance  decimal.Decimal
}

// Transaction is one append-only audit log entry. Date and Time are the
// unpadded local stamps produced by pkg/clock; TargetAccount is empty except
// for transfers.
type Transaction struct {
	AccountNumber string
	Type          TransactionType
	Amount        decimal.Decimal
	Date          string
	Time          string
	TargetAccount string
}

const (
	MaxLoginAttempts    = 3
	AccountNumberLength = 19
	IDCardLength        = 18
	PasswordLength      = 6
	WithdrawalMultiple  = 100
)

var (
	InitialBalance        = decimal.RequireFromString("10000.00")
	SingleWithdrawalLimit = decimal.RequireFromString("2000.00")
	DailyWithdrawalLimit  = decimal.RequireFromString("5000.00")
)
