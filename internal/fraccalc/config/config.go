package config

import (
	"flag"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	LogLvl string `env:"LOG_LVL" envDefault:"info"`
}

func New() *Config {
	cfg := &Config{}

	env.Parse(cfg)

	flag.StringVar(&cfg.LogLvl, "l", cfg.LogLvl, "log level")
	flag.Parse()

	return cfg
}
