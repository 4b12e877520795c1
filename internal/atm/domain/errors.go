package domain

import "errors"

var (
	// ErrAccountNotFound - the account number is not in the store.
	ErrAccountNotFound = errors.New("account does not exist")

	// ErrAccountLocked - the account is in the lock list and cannot authenticate.
	ErrAccountLocked = errors.New("account is locked")

	// ErrWrongPassword - password verification failed.
	ErrWrongPassword = errors.New("wrong password")

	// ErrTargetNotFound - transfer target account is not in the store.
	ErrTargetNotFound = errors.New("target account does not exist")
)
