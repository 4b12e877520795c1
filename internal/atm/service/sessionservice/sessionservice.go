// Package sessionservice drives the terminal session: the authentication
// state machine and the money operations available once authenticated.
package sessionservice

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/123kaze/cq/internal/atm/domain"
	"github.com/123kaze/cq/internal/atm/service/policyservice"
	"github.com/123kaze/cq/pkg/clock"
)

type AccountRepo interface {
	Lookup(number string) (*domain.Account, error)
	Mutate(number string, fn func(*domain.Account)) error
	MutatePair(from, to string, fn func(from, to *domain.Account)) error
}

type AuditRepo interface {
	Append(tx *domain.Transaction)
	TodayWithdrawTotal(accountNumber string) (decimal.Decimal, error)
}

type LockRepo interface {
	IsLocked(accountNumber string) (bool, error)
	Lock(accountNumber string) error
}

// State of the authentication machine.
type State int

const (
	Unauth State = iota
	PromptingPassword
	Auth
	Terminated
)

// ExitSentinel typed instead of an account number ends the session.
const ExitSentinel = "exit"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

type Service struct {
	accounts AccountRepo
	audit    AuditRepo
	locks    LockRepo
	clk      clock.Clock

	state     State
	pending   string
	current   string
	attempts  int
	sessionID string
}

func New(accounts AccountRepo, audit AuditRepo, locks LockRepo, clk clock.Clock) *Service {
	return &Service{
		accounts: accounts,
		audit:    audit,
		locks:    locks,
		clk:      clk,
		state:    Unauth,
	}
}

func (s *Service) State() State { return s.state }

// RemainingAttempts left before the lockout threshold. The counter is
// per-process: failures accumulate across account numbers within one run.
func (s *Service) RemainingAttempts() int {
	return domain.MaxLoginAttempts - s.attempts
}

// SubmitAccount resolves the account number in the Unauth state. The account
// must exist and not be locked before a password is ever asked for; neither
// failure touches the attempt counter.
func (s *Service) SubmitAccount(number string) error {
	if number == ExitSentinel {
		s.state = Terminated
		return nil
	}
	if _, err := s.accounts.Lookup(number); err != nil {
		return err
	}
	locked, err := s.locks.IsLocked(number)
	if err != nil {
		zap.L().Error("failed to read lock list", zap.Error(err))
		return err
	}
	if locked {
		return domain.ErrAccountLocked
	}
	s.pending = number
	s.state = PromptingPassword
	return nil
}

// SubmitPassword verifies the password for the pending account. On success
// the session is authenticated and the attempt counter resets. On failure
// the counter grows; at the threshold the pending account is locked and the
// session terminates.
func (s *Service) SubmitPassword(password string) (string, error) {
	acc, err := s.accounts.Lookup(s.pending)
	if err != nil {
		s.state = Unauth
		return "", err
	}
	if acc.Password == password {
		s.current = s.pending
		s.pending = ""
		s.attempts = 0
		s.state = Auth
		s.sessionID = uuid.NewString()
		zap.L().Info("login successful",
			zap.String("session", s.sessionID),
			zap.String("account", s.current))
		return acc.Name, nil
	}

	s.attempts++
	zap.L().Info("wrong password",
		zap.String("account", s.pending),
		zap.Int("attempts", s.attempts))
	if s.attempts >= domain.MaxLoginAttempts {
		if err := s.locks.Lock(s.pending); err != nil {
			zap.L().Error("failed to lock account", zap.Error(err))
		}
		s.state = Terminated
	} else {
		s.state = Unauth
	}
	s.pending = ""
	return "", domain.ErrWrongPassword
}

// CheckBalance returns the current balance and records the query.
func (s *Service) CheckBalance() (decimal.Decimal, error) {
	acc, err := s.authed()
	if err != nil {
		return decimal.Zero, err
	}
	s.record(domain.TypeBalanceQuery, decimal.Zero, "")
	return acc.Balance, nil
}

// TodayWithdrawn reports the amount already withdrawn today, recomputed from
// the audit log.
func (s *Service) TodayWithdrawn() (decimal.Decimal, error) {
	if _, err := s.authed(); err != nil {
		return decimal.Zero, err
	}
	return s.todayTotal(), nil
}

// Withdraw debits the account after the full policy check and returns the
// new balance.
func (s *Service) Withdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	acc, err := s.authed()
	if err != nil {
		return decimal.Zero, err
	}
	if err := policyservice.CheckWithdrawal(amount, s.todayTotal(), acc.Balance); err != nil {
		return decimal.Zero, err
	}

	var newBalance decimal.Decimal
	if err := s.accounts.Mutate(s.current, func(a *domain.Account) {
		a.Balance = a.Balance.Sub(amount)
		newBalance = a.Balance
	}); err != nil {
		zap.L().Error("failed to persist account store", zap.Error(err))
	}
	s.record(domain.TypeWithdrawal, amount, "")
	zap.L().Info("withdrawal",
		zap.String("session", s.sessionID),
		zap.String("account", s.current),
		zap.String("amount", amount.StringFixed(2)))
	return newBalance, nil
}

// Deposit credits the account and returns the new balance.
func (s *Service) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if _, err := s.authed(); err != nil {
		return decimal.Zero, err
	}
	if err := policyservice.CheckDeposit(amount); err != nil {
		return decimal.Zero, err
	}

	var newBalance decimal.Decimal
	if err := s.accounts.Mutate(s.current, func(a *domain.Account) {
		a.Balance = a.Balance.Add(amount)
		newBalance = a.Balance
	}); err != nil {
		zap.L().Error("failed to persist account store", zap.Error(err))
	}
	s.record(domain.TypeDeposit, amount, "")
	zap.L().Info("deposit",
		zap.String("session", s.sessionID),
		zap.String("account", s.current),
		zap.String("amount", amount.StringFixed(2)))
	return newBalance, nil
}

// CheckTransferTarget validates the target account before the amount is
// asked for.
func (s *Service) CheckTransferTarget(target string) error {
	if _, err := s.authed(); err != nil {
		return err
	}
	_, err := s.accounts.Lookup(target)
	return policyservice.CheckTransferTarget(s.current, target, err == nil)
}

// Transfer moves amount to the target account. Both balances change and the
// store is flushed before the audit record is appended; the recipient name
// and the new source balance come back for display.
func (s *Service) Transfer(amount decimal.Decimal, target string) (recipient string, newBalance decimal.Decimal, err error) {
	acc, err := s.authed()
	if err != nil {
		return "", decimal.Zero, err
	}
	if err := s.CheckTransferTarget(target); err != nil {
		return "", decimal.Zero, err
	}
	if err := policyservice.CheckTransferAmount(amount, acc.Balance); err != nil {
		return "", decimal.Zero, err
	}

	if err := s.accounts.MutatePair(s.current, target, func(from, to *domain.Account) {
		from.Balance = from.Balance.Sub(amount)
		to.Balance = to.Balance.Add(amount)
		recipient = to.Name
		newBalance = from.Balance
	}); err != nil {
		zap.L().Error("failed to persist account store", zap.Error(err))
	}
	s.record(domain.TypeTransfer, amount, target)
	zap.L().Info("transfer",
		zap.String("session", s.sessionID),
		zap.String("account", s.current),
		zap.String("target", target),
		zap.String("amount", amount.StringFixed(2)))
	return recipient, newBalance, nil
}

// ChangePassword verifies the old password and installs the new one.
func (s *Service) ChangePassword(old, newPassword, confirm string) error {
	acc, err := s.authed()
	if err != nil {
		return err
	}
	if acc.Password != old {
		return domain.ErrWrongPassword
	}
	if err := policyservice.ValidateNewPassword(newPassword); err != nil {
		return err
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	if err := s.accounts.Mutate(s.current, func(a *domain.Account) {
		a.Password = newPassword
	}); err != nil {
		zap.L().Error("failed to persist account store", zap.Error(err))
	}
	zap.L().Info("password changed",
		zap.String("session", s.sessionID),
		zap.String("account", s.current))
	return nil
}

// AccountInfo returns a copy of the authenticated account.
func (s *Service) AccountInfo() (*domain.Account, error) {
	return s.authed()
}

// Logout clears the session and returns the machine to Unauth.
func (s *Service) Logout() {
	if s.state != Auth {
		return
	}
	zap.L().Info("logout",
		zap.String("session", s.sessionID),
		zap.String("account", s.current))
	s.current = ""
	s.sessionID = ""
	s.state = Unauth
}

func (s *Service) authed() (*domain.Account, error) {
	if s.state != Auth {
		return nil, ErrNotAuthenticated
	}
	return s.accounts.Lookup(s.current)
}

// todayTotal reads the daily withdrawal sum from the audit log. An unreadable
// log counts as zero, matching the append-only best-effort contract.
func (s *Service) todayTotal() decimal.Decimal {
	total, err := s.audit.TodayWithdrawTotal(s.current)
	if err != nil {
		zap.L().Error("failed to read audit log", zap.Error(err))
		return decimal.Zero
	}
	return total
}

func (s *Service) record(typ domain.TransactionType, amount decimal.Decimal, target string) {
	now := s.clk.Now()
	s.audit.Append(&domain.Transaction{
		AccountNumber: s.current,
		Type:          typ,
		Amount:        amount,
		Date:          clock.DateStamp(now),
		Time:          clock.TimeStamp(now),
		TargetAccount: target,
	})
}
