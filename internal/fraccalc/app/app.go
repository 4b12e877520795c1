// Package app wires the fraction calculator: config, logger and the REPL.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/123kaze/cq/internal/fraccalc/config"
	"github.com/123kaze/cq/internal/fraccalc/dialog"
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

// Run blocks on the REPL until stdin closes.
func (a *Application) Run() error {
	cfg := config.New()

	if err := logger.Init(cfg.LogLvl); err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	return dialog.New(a.in, a.out).Run()
}
