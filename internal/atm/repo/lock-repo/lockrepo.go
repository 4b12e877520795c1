// Package lockrepo tracks accounts that exceeded the password attempt
// threshold, one bare account number per line in an append-only file.
package lockrepo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

type Repository struct {
	path string
}

func New(path string) *Repository {
	return &Repository{path: path}
}

// IsLocked scans the lock file for the account number. A missing file means
// nothing is locked.
func (r *Repository) IsLocked(accountNumber string) (bool, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open lock list: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if scanner.Text() == accountNumber {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read lock list: %w", err)
	}
	return false, nil
}

// Lock appends the account number. Duplicates are tolerated, IsLocked stops
// at the first match.
func (r *Repository) Lock(accountNumber string) error {
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open lock list: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(accountNumber + "\n"); err != nil {
		return fmt.Errorf("append lock list: %w", err)
	}
	return nil
}
