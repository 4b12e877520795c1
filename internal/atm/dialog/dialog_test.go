package dialog

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountrepo "github.com/123kaze/cq/internal/atm/repo/account-repo"
	auditrepo "github.com/123kaze/cq/internal/atm/repo/audit-repo"
	lockrepo "github.com/123kaze/cq/internal/atm/repo/lock-repo"
	"github.com/123kaze/cq/internal/atm/service/sessionservice"
	"github.com/123kaze/cq/pkg/clock"
)

const zhangSan = "1234567890123456789"

func runScript(t *testing.T, lines ...string) (string, *sessionservice.Service) {
	t.Helper()
	dir := t.TempDir()
	clk := clock.Fixed{Moment: time.Date(2025, time.January, 5, 9, 4, 7, 0, time.Local)}

	accounts := accountrepo.New(filepath.Join(dir, "accounts.dat"))
	require.NoError(t, accounts.Load())
	require.NoError(t, accounts.SeedDemoAccounts())
	audit := auditrepo.New(filepath.Join(dir, "transactions.dat"), clk)
	locks := lockrepo.New(filepath.Join(dir, "locked_accounts.dat"))
	session := sessionservice.New(accounts, audit, locks, clk)

	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	d := New(in, &out, session)
	require.NoError(t, d.Run())
	return out.String(), session
}

func TestRunExitSentinel(t *testing.T) {
	out, session := runScript(t, "exit")
	assert.Contains(t, out, "Welcome to ATM Simulation System")
	assert.Equal(t, sessionservice.Terminated, session.State())
}

func TestRunLoginAndLogout(t *testing.T) {
	out, session := runScript(t,
		zhangSan,
		"123456",
		"7",
		"n",
	)
	assert.Contains(t, out, "Login successful! Welcome Zhang San !")
	assert.Contains(t, out, "Thank you for using, welcome next time!")
	assert.Equal(t, sessionservice.Unauth, session.State())
}

func TestRunCheckBalance(t *testing.T) {
	out, _ := runScript(t,
		zhangSan,
		"123456",
		"1",
		"", // press Enter to continue
		"7",
		"n",
	)
	assert.Contains(t, out, "Current balance: ¥10000.00")
}

func TestRunWithdrawFlow(t *testing.T) {
	out, _ := runScript(t,
		zhangSan,
		"123456",
		"2",
		"500",
		"",
		"7",
		"n",
	)
	assert.Contains(t, out, "Today's withdrawals: ¥0.00")
	assert.Contains(t, out, "Withdrawal successful! Withdrawn amount: ¥500.00")
	assert.Contains(t, out, "Remaining balance: ¥9500.00")
}

func TestRunWithdrawRejectsBadInput(t *testing.T) {
	out, _ := runScript(t,
		zhangSan,
		"123456",
		"2",
		"abc",
		"",
		"2",
		"2500",
		"",
		"7",
		"n",
	)
	assert.Contains(t, out, "Invalid amount!")
	assert.Contains(t, out, "Exceeds single withdrawal limit!")
}

func TestRunTransferConfirmMismatch(t *testing.T) {
	out, _ := runScript(t,
		zhangSan,
		"123456",
		"4",
		"5002222005040623456",
		"5002222005040623457",
		"",
		"7",
		"n",
	)
	assert.Contains(t, out, "Two account numbers do not match!")
}

func TestRunTransferSuccess(t *testing.T) {
	out, _ := runScript(t,
		zhangSan,
		"123456",
		"4",
		"5002222005040623456",
		"5002222005040623456",
		"250",
		"",
		"7",
		"n",
	)
	assert.Contains(t, out, "Transfer successful! Transfer amount: ¥250.00")
	assert.Contains(t, out, "Recipient: Li Hua")
}

func TestRunWrongPasswordLockout(t *testing.T) {
	out, session := runScript(t,
		zhangSan,
		"000000",
		"y",
		zhangSan,
		"000000",
		"y",
		zhangSan,
		"000000",
	)
	assert.Contains(t, out, "Wrong password! Remaining attempts: 2")
	assert.Contains(t, out, "Wrong password! Remaining attempts: 1")
	assert.Contains(t, out, "Too many wrong password attempts, account has been locked!")
	assert.Equal(t, sessionservice.Terminated, session.State())
}

func TestRunUnknownAccountThenDecline(t *testing.T) {
	out, _ := runScript(t,
		"0000000000000000000",
		"n",
	)
	assert.Contains(t, out, "Account does not exist!")
	assert.Contains(t, out, "Continue to try login? (y/n):")
}

func TestRunInvalidMenuChoice(t *testing.T) {
	out, _ := runScript(t,
		zhangSan,
		"123456",
		"9",
		"",
		"7",
		"n",
	)
	assert.Contains(t, out, "Invalid choice, please re-enter!")
}
