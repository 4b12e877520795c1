// Package app wires the ATM simulator together: config, logger, the three
// file-backed repositories, the session service and the terminal dialog.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/123kaze/cq/internal/atm/config"
	"github.com/123kaze/cq/internal/atm/dialog"
	accountrepo "github.com/123kaze/cq/internal/atm/repo/account-repo"
	auditrepo "github.com/123kaze/cq/internal/atm/repo/audit-repo"
	lockrepo "github.com/123kaze/cq/internal/atm/repo/lock-repo"
	"github.com/123kaze/cq/internal/atm/service/sessionservice"
	"github.com/123kaze/cq/pkg/clock"
	"github.com/123kaze/cq/pkg/logger"
)

type Application struct {
	in  io.Reader
	out io.Writer
}

func New() *Application {
	return &Application{
		in:  os.Stdin,
		out: os.Stdout,
	}
}

// Run starts the simulator and blocks until the session ends. A closed
// stdin counts as a normal ending.
func (a *Application) Run() error {
	cfg := config.New()

	if err := logger.Init(cfg.LogLvl); err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	accounts := accountrepo.New(cfg.AccountsFile)
	if err := accounts.Load(); err != nil {
		zap.L().Error("failed to load account store", zap.Error(err))
		return fmt.Errorf("can't load account store: %w", err)
	}
	if accounts.Len() == 0 {
		if err := accounts.SeedDemoAccounts(); err != nil {
			zap.L().Error("failed to seed demo accounts", zap.Error(err))
			return fmt.Errorf("can't seed demo accounts: %w", err)
		}
		zap.L().Info("seeded demo accounts", zap.String("file", cfg.AccountsFile))
	}

	clk := clock.System{}
	audit := auditrepo.New(cfg.TransactionsFile, clk)
	locks := lockrepo.New(cfg.LockedFile)
	session := sessionservice.New(accounts, audit, locks, clk)

	err := dialog.New(a.in, a.out, session).Run()
	if errors.Is(err, io.EOF) {
		err = nil
	}

	// the store is flushed once more on the way out
	if saveErr := accounts.Save(); saveErr != nil {
		zap.L().Error("failed to save account store on exit", zap.Error(saveErr))
	}
	return err
}
