package config

import (
	"flag"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	AccountsFile     string `env:"ATM_ACCOUNTS_FILE"     envDefault:"accounts.dat"`
	TransactionsFile string `env:"ATM_TRANSACTIONS_FILE" envDefault:"transactions.dat"`
	LockedFile       string `env:"ATM_LOCKED_FILE"       envDefault:"locked_accounts.dat"`
	LogLvl           string `env:"LOG_LVL"               envDefault:"info"`
}

func New() *Config {
	cfg := &Config{}

	env.Parse(cfg)

	flag.StringVar(&cfg.AccountsFile, "accounts", cfg.AccountsFile, "path to the account store file")
	flag.StringVar(&cfg.TransactionsFile, "transactions", cfg.TransactionsFile, "path to the audit log file")
	flag.StringVar(&cfg.LockedFile, "locked", cfg.LockedFile, "path to the locked accounts file")
	flag.StringVar(&cfg.LogLvl, "l", cfg.LogLvl, "log level")
	flag.Parse()

	return cfg
}
