// Package auditrepo maintains the append-only transaction log. The log is
// also the source of truth for daily withdrawal limits: the per-day total is
// recomputed from the file on every call, never cached.
package auditrepo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/123kaze/cq/internal/atm/domain"
	"github.com/123kaze/cq/pkg/clock"
)

type Repository struct {
	path string
	clk  clock.Clock
}

func New(path string, clk clock.Clock) *Repository {
	return &Repository{
		path: path,
		clk:  clk,
	}
}

// Append writes one record to the log. Best-effort: failures are logged and
// swallowed, a lost audit line never fails the money operation that caused it.
func (r *Repository) Append(tx *domain.Transaction) {
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		zap.L().Error("failed to open audit log", zap.Error(err))
		return
	}
	defer f.Close()

	line := strings.Join([]string{
		tx.AccountNumber,
		string(tx.Type),
		tx.Amount.StringFixed(2),
		tx.Date,
		tx.Time,
		tx.TargetAccount,
	}, ",")
	if _, err := f.WriteString(line + "\n"); err != nil {
		zap.L().Error("failed to append audit record", zap.Error(err))
	}
}

// TodayWithdrawTotal scans the log and sums WITHDRAWAL amounts for the
// account dated today. Date equality is on the unpadded stamp format, the
// same format Append writes. A missing log means no withdrawals yet.
func (r *Repository) TodayWithdrawTotal(accountNumber string) (decimal.Decimal, error) {
	total := decimal.Zero

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return total, nil
		}
		return total, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	today := clock.DateStamp(r.clk.Now())

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ",")
		if len(fields) < 5 {
			continue
		}
		if fields[0] != accountNumber || fields[1] != string(domain.TypeWithdrawal) || fields[3] != today {
			continue
		}
		amount, err := decimal.NewFromString(fields[2])
		if err != nil {
			zap.L().Warn("skipping audit record with bad amount", zap.Error(err))
			continue
		}
		total = total.Add(amount)
	}
	if err := scanner.Err(); err != nil {
		return total, fmt.Errorf("read audit log: %w", err)
	}
	return total, nil
}
