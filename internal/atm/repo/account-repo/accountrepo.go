// Package accountrepo persists the account store as a flat text file, one
// account per line: number,name,idCard,password,balance. Values must not
// contain commas; the file carries no quoting or escaping.
package accountrepo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/123kaze/cq/internal/atm/domain"
)

const fieldsPerLine = 5

type Repository struct {
	path     string
	accounts map[string]*domain.Account
}

func New(path string) *Repository {
	return &Repository{
		path:     path,
		accounts: make(map[string]*domain.Account),
	}
}

// Load reads the store file into memory. A missing file is an empty store,
// not an error. Malformed lines are skipped.
func (r *Repository) Load() error {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open account store: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		acc, err := parseLine(line)
		if err != nil {
			zap.L().Warn("skipping malformed account line", zap.Error(err))
			continue
		}
		r.accounts[acc.Number] = acc
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read account store: %w", err)
	}
	return nil
}

// Save rewrites the whole store file atomically (tmp file + rename), lines
// ordered by account number so repeated saves of the same state are
// byte-identical.
func (r *Repository) Save() error {
	numbers := make([]string, 0, len(r.accounts))
	for n := range r.accounts {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)

	tmp := r.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create account store: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, n := range numbers {
		if _, err := w.WriteString(formatLine(r.accounts[n]) + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("write account store: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush account store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close account store: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace account store: %w", err)
	}
	return nil
}

// Lookup returns a copy of the stored account.
func (r *Repository) Lookup(number string) (*domain.Account, error) {
	acc, ok := r.accounts[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

// Mutate applies fn to the stored account and rewrites the file.
func (r *Repository) Mutate(number string, fn func(*domain.Account)) error {
	acc, ok := r.accounts[number]
	if !ok {
		return domain.ErrAccountNotFound
	}
	fn(acc)
	return r.Save()
}

// MutatePair applies fn to two stored accounts and rewrites the file once,
// so both ends of a transfer hit disk together.
func (r *Repository) MutatePair(from, to string, fn func(from, to *domain.Account)) error {
	src, ok := r.accounts[from]
	if !ok {
		return domain.ErrAccountNotFound
	}
	dst, ok := r.accounts[to]
	if !ok {
		return domain.ErrTargetNotFound
	}
	fn(src, dst)
	return r.Save()
}

// Len reports the number of loaded accounts.
func (r *Repository) Len() int {
	return len(r.accounts)
}

// SeedDemoAccounts populates the two demo accounts and persists them. Called
// by the bootstrap only when the loaded store is empty.
func (r *Repository) SeedDemoAccounts() error {
	demos := []*domain.Account{
		{
			Number:   "1234567890123456789",
			Name:     "Zhang San",
			IDCard:   "110101199001011234",
			Password: "123456",
			Balance:  domain.InitialBalance,
		},
		{
			Number:   "5002222005040623456",
			Name:     "Li Hua",
			IDCard:   "500222200504062345",
			Password: "123456",
			Balance:  decimal.RequireFromString("999999.00"),
		},
	}
	for _, acc := range demos {
		r.accounts[acc.Number] = acc
	}
	return r.Save()
}

func parseLine(line string) (*domain.Account, error) {
	fields := strings.Split(line, ",")
	if len(fields) != fieldsPerLine {
		return nil, fmt.Errorf("want %d fields, got %d", fieldsPerLine, len(fields))
	}
	balance, err := decimal.NewFromString(fields[4])
	if err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	return &domain.Account{
		Number:   fields[0],
		Name:     fields[1],
		IDCard:   fields[2],
		Password: fields[3],
		Balance:  balance,
	}, nil
}

func formatLine(acc *domain.Account) string {
	return strings.Join([]string{
		acc.Number,
		acc.Name,
		acc.IDCard,
		acc.Password,
		acc.Balance.StringFixed(2),
	}, ",")
}
