package sessionservice

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/123kaze/cq/internal/atm/domain"
	accountrepo "github.com/123kaze/cq/internal/atm/repo/account-repo"
	auditrepo "github.com/123kaze/cq/internal/atm/repo/audit-repo"
	lockrepo "github.com/123kaze/cq/internal/atm/repo/lock-repo"
	"github.com/123kaze/cq/internal/atm/service/policyservice"
	"github.com/123kaze/cq/pkg/clock"
)

const (
	zhangSan = "1234567890123456789"
	liHua    = "5002222005040623456"
)

var testMoment = time.Date(2025, time.January, 5, 9, 4, 7, 0, time.Local)

type fixture struct {
	service  *Service
	accounts *accountrepo.Repository
	dir      string
	auditLog string
	lockFile string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	clk := clock.Fixed{Moment: testMoment}

	accounts := accountrepo.New(filepath.Join(dir, "accounts.dat"))
	require.NoError(t, accounts.Load())
	require.NoError(t, accounts.SeedDemoAccounts())

	auditPath := filepath.Join(dir, "transactions.dat")
	lockPath := filepath.Join(dir, "locked_accounts.dat")
	audit := auditrepo.New(auditPath, clk)
	locks := lockrepo.New(lockPath)

	return &fixture{
		service:  New(accounts, audit, locks, clk),
		accounts: accounts,
		dir:      dir,
		auditLog: auditPath,
		lockFile: lockPath,
	}
}

func (f *fixture) login(t *testing.T, number, password string) {
	t.Helper()
	require.NoError(t, f.service.SubmitAccount(number))
	name, err := f.service.SubmitPassword(password)
	require.NoError(t, err)
	require.NotEmpty(t, name)
	require.Equal(t, Auth, f.service.State())
}

func (f *fixture) auditLines(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.auditLog)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestSubmitAccountExitSentinel(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.service.SubmitAccount("exit"))
	assert.Equal(t, Terminated, f.service.State())
}

func TestSubmitAccountNotFound(t *testing.T) {
	f := newFixture(t)
	err := f.service.SubmitAccount("0000000000000000000")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Equal(t, Unauth, f.service.State())
	assert.Equal(t, domain.MaxLoginAttempts, f.service.RemainingAttempts())
}

func TestSubmitAccountLocked(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, lockrepo.New(f.lockFile).Lock(zhangSan))

	err := f.service.SubmitAccount(zhangSan)
	assert.ErrorIs(t, err, domain.ErrAccountLocked)
	assert.Equal(t, Unauth, f.service.State())
}

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.service.SubmitAccount(zhangSan))
	assert.Equal(t, PromptingPassword, f.service.State())

	name, err := f.service.SubmitPassword("123456")
	require.NoError(t, err)
	assert.Equal(t, "Zhang San", name)
	assert.Equal(t, Auth, f.service.State())
	assert.Equal(t, domain.MaxLoginAttempts, f.service.RemainingAttempts())
}

func TestThreeWrongPasswordsLockAndTerminate(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, f.service.SubmitAccount(zhangSan))
		_, err := f.service.SubmitPassword("000000")
		assert.ErrorIs(t, err, domain.ErrWrongPassword)
		assert.Equal(t, Unauth, f.service.State())
	}
	assert.Equal(t, 1, f.service.RemainingAttempts())

	require.NoError(t, f.service.SubmitAccount(zhangSan))
	_, err := f.service.SubmitPassword("000000")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)
	assert.Equal(t, Terminated, f.service.State())

	locked, err := lockrepo.New(f.lockFile).IsLocked(zhangSan)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestAttemptCounterSpansAccounts(t *testing.T) {
	f := newFixture(t)

	// two failures on Zhang San, the third on Li Hua: the per-process
	// counter locks Li Hua
	for i := 0; i < 2; i++ {
		require.NoError(t, f.service.SubmitAccount(zhangSan))
		_, err := f.service.SubmitPassword("000000")
		assert.ErrorIs(t, err, domain.ErrWrongPassword)
	}

	require.NoError(t, f.service.SubmitAccount(liHua))
	_, err := f.service.SubmitPassword("000000")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)
	assert.Equal(t, Terminated, f.service.State())

	locks := lockrepo.New(f.lockFile)
	locked, err := locks.IsLocked(liHua)
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = locks.IsLocked(zhangSan)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestSuccessfulLoginResetsCounter(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.SubmitAccount(zhangSan))
	_, err := f.service.SubmitPassword("000000")
	assert.ErrorIs(t, err, domain.ErrWrongPassword)

	f.login(t, zhangSan, "123456")
	assert.Equal(t, domain.MaxLoginAttempts, f.service.RemainingAttempts())
}

func TestCheckBalanceRecordsQuery(t *testing.T) {
	f := newFixture(t)
	f.login(t, zhangSan, "123456")

	balance, err := f.service.CheckBalance()
	require.NoError(t, err)
	assert.Equal(t, "10000.00", balance.StringFixed(2))

	lines := f.auditLines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, zhangSan+",BALANCE_QUERY,0.00,2025-1-5,9:4:7,", lines[0])
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	f.login(t, zhangSan, "123456")

	balance, err := f.service.Withdraw(decimal.RequireFromString("500"))
	require.NoError(t, err)
	assert.Equal(t, "9500.00", balance.StringFixed(2))

	lines := f.auditLines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, zhangSan+",WITHDRAWAL,500.00,2025-1-5,9:4:7,", lines[0])

	// persisted store carries the new balance
	reloaded := accountrepo.New(filepath.Join(f.dir, "accounts.dat"))
	require.NoError(t, reloaded.Load())
	acc, err := reloaded.Lookup(zhangSan)
	require.NoError(t, err)
	assert.Equal(t, "9500.00", acc.Balance.StringFixed(2))
}

func TestWithdrawRejectedOverSingleLimit(t *testing.T) {
	f := newFixture(t)
	f.login(t, zhangSan, "123456")

	_, err := f.service.Withdraw(decimal.RequireFromString("2500"))
	assert.ErrorIs(t, err, policyservice.ErrExceedsSingleLimit)

	balance, err := f.service.AccountInfo()
	require.NoError(t, err)
	assert.Equal(t, "10000.00", balance.Balance.StringFixed(2))
	assert.Empty(t, f.auditLines(t))
}

func TestWithdrawDailyLimitFromAuditLog(t *testing.T) {
	f := newFixture(t)
	f.login(t, zhangSan, "123456")

	for i := 0; i < 2; i++ {
		_, err := f.service.Withdraw(decimal.RequireFromString("2000"))
		require.NoError(t, err)
	}

	_, err := f.service.Withdraw(decimal.RequireFromString("1500"))
	assert.ErrorIs(t, err, policyservice.ErrExceedsDailyLimit)

	acc, err := f.service.AccountInfo()
	require.NoError(t, err)
	assert.Equal(t, "6000.00", acc.Balance.StringFixed(2))

	today, err := f.service.TodayWithdrawn()
	require.NoError(t, err)
	assert.Equal(t, "4000.00", today.StringFixed(2))
}

func TestDeposit(t *testing.T) {
	f := newFixture(t)
	f.login(t, zhangSan, "123456")

	balance, err := f.service.Deposit(decimal.RequireFromString("123.45"))
	require.NoError(t, err)
	assert.Equal(t, "10123.45", balance.StringFixed(2))

	lines := f.auditLines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, zhangSan+",DEPOSIT,123.45,2025-1-5,9:4:7,", lines[0])
}

func TestDepositRejectsNonPositive(t *testing.T) {
	f := newFixture(t)
	f.login(t, zhangSan, "123456")

	_, err := f.service.Deposit(decimal.Zero)
	assert.ErrorIs(t, err, policyservice.ErrNonPositiveAmount)
	assert.Empty(t, f.auditLines(t))
}

func TestTransfer(t *testing.T) {
	f := newFixture(t)
	f.login(t, zhangSan, "123456")

	recipient, balance, err := f.service.Transfer(decimal.RequireFromString("250"), liHua)
	require.NoError(t, err)
	assert.Equal(t, "Li Hua", recipient)
	assert.Equal(t, "9750.00", balance.StringFixed(2))

	lines := f.auditLines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, zhangSan+",TRANSFER,250.00,2025-1-5,9:4:7,"+liHua, lines[0])

	target, err := f.accounts.Lookup(liHua)
	require.NoError(t, err)
	assert.Equal(t, "1000249.00", target.Balance.StringFixed(2))
}

func TestTransferRejections(t *testing.T) {
	f := newFixture(t)
	f.login(t, zhangSan, "123456")

	err := f.service.CheckTransferTarget("0000000000000000000")
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)

	err = f.service.CheckTransferTarget(zhangSan)
	assert.ErrorIs(t, err, policyservice.ErrSelfTransfer)

	_, _, err = f.service.Transfer(decimal.RequireFromString("10000.01"), liHua)
	assert.ErrorIs(t, err, policyservice.ErrInsufficientBalance)
	assert.Empty(t, f.auditLines(t))
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	f.login(t, zhangSan, "123456")

	require.NoError(t, f.service.ChangePassword("123456", "654321", "654321"))

	acc, err := f.accounts.Lookup(zhangSan)
	require.NoError(t, err)
	assert.Equal(t, "654321", acc.Password)
}

func TestChangePasswordRejections(t *testing.T) {
	f := newFixture(t)
	f.login(t, zhangSan, "123456")

	tests := []struct {
		name          string
		old           string
		newPassword   string
		confirm       string
		expectedError error
	}{
		{
			name:          "Wrong old password",
			old:           "999999",
			newPassword:   "654321",
			confirm:       "654321",
			expectedError: domain.ErrWrongPassword,
		},
		{
			name:          "New password not six digits",
			old:           "123456",
			newPassword:   "abc123",
			confirm:       "abc123",
			expectedError: policyservice.ErrBadPassword,
		},
		{
			name:          "Confirmation mismatch",
			old:           "123456",
			newPassword:   "654321",
			confirm:       "654322",
			expectedError: ErrPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.ChangePassword(tt.old, tt.newPassword, tt.confirm)
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}

	acc, err := f.accounts.Lookup(zhangSan)
	require.NoError(t, err)
	assert.Equal(t, "123456", acc.Password)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.login(t, zhangSan, "123456")

	f.service.Logout()
	assert.Equal(t, Unauth, f.service.State())

	_, err := f.service.CheckBalance()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestOperationsRequireAuth(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CheckBalance()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.service.Withdraw(decimal.RequireFromString("100"))
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.service.Deposit(decimal.RequireFromString("100"))
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, _, err = f.service.Transfer(decimal.RequireFromString("100"), liHua)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	err = f.service.ChangePassword("123456", "654321", "654321")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
