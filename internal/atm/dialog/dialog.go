// Package dialog is the terminal surface of the ATM: it prompts, parses
// input lines and renders results. All decisions live in the session
// service; the dialog only translates between text and operations.
package dialog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/123kaze/cq/internal/atm/domain"
	"github.com/123kaze/cq/internal/atm/service/policyservice"
	"github.com/123kaze/cq/internal/atm/service/sessionservice"
)

type Dialog struct {
	in      *bufio.Scanner
	out     io.Writer
	session *sessionservice.Service
}

func New(in io.Reader, out io.Writer, session *sessionservice.Service) *Dialog {
	return &Dialog{
		in:      bufio.NewScanner(in),
		out:     out,
		session: session,
	}
}

// Run drives the terminal session: login loop, main menu, and after a
// logout the continue prompt that decides between a fresh login and ending
// the program. Returns nil on every normal ending (exit sentinel, lockout,
// declined retry).
func (d *Dialog) Run() error {
	d.printf("\nWelcome to ATM Simulation System\n")
	d.printf("Please insert your card (enter account number) or type 'exit' to quit\n")

	for {
		for d.session.State() == sessionservice.Unauth {
			ok, err := d.login()
			if err != nil {
				return err
			}
			if d.session.State() == sessionservice.Terminated {
				return nil
			}
			if !ok {
				cont, err := d.askRetry()
				if err != nil {
					return err
				}
				if !cont {
					return nil
				}
			}
		}

		if err := d.menuLoop(); err != nil {
			return err
		}

		// back from a logout
		cont, err := d.askRetry()
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}

// login walks one attempt of the two-step authentication. The bool result
// says whether the user ended up authenticated.
func (d *Dialog) login() (bool, error) {
	d.printf("\nPlease enter your 19-digit account number: ")
	number, err := d.readLine()
	if err != nil {
		return false, err
	}

	if err := d.session.SubmitAccount(number); err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			d.printf("Account does not exist!\n")
		case errors.Is(err, domain.ErrAccountLocked):
			d.printf("Account is locked, please contact bank customer service!\n")
		default:
			return false, err
		}
		return false, nil
	}
	if d.session.State() != sessionservice.PromptingPassword {
		return false, nil
	}

	d.printf("Please enter 6-digit password: ")
	password, err := d.readLine()
	if err != nil {
		return false, err
	}

	name, err := d.session.SubmitPassword(password)
	if err != nil {
		d.printf("Wrong password! Remaining attempts: %d\n", d.session.RemainingAttempts())
		if d.session.State() == sessionservice.Terminated {
			d.printf("Too many wrong password attempts, account has been locked!\n")
			d.printf("Too many login failures, program exits.\n")
		}
		return false, nil
	}

	d.printf("\nLogin successful! Welcome %s !\n", name)
	return true, nil
}

func (d *Dialog) askRetry() (bool, error) {
	d.printf("\nContinue to try login? (y/n): ")
	choice, err := d.readLine()
	if err != nil {
		return false, err
	}
	return choice == "y" || choice == "Y", nil
}

func (d *Dialog) menuLoop() error {
	for d.session.State() == sessionservice.Auth {
		d.printf("\nMain Menu\n")
		d.printf("1. Check Balance\n")
		d.printf("2. Withdraw\n")
		d.printf("3. Deposit\n")
		d.printf("4. Transfer\n")
		d.printf("5. Change Password\n")
		d.printf("6. Display Account Information\n")
		d.printf("7. Exit/Logout\n")
		d.printf("Please choose operation (1-7): ")

		choice, err := d.readLine()
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = d.checkBalance()
		case "2":
			err = d.withdraw()
		case "3":
			err = d.deposit()
		case "4":
			err = d.transfer()
		case "5":
			err = d.changePassword()
		case "6":
			err = d.accountInfo()
		case "7":
			d.session.Logout()
			d.printf("\nThank you for using, welcome next time!\n")
			return nil
		default:
			d.printf("Invalid choice, please re-enter!\n")
		}
		if err != nil {
			return err
		}

		d.printf("\nPress Enter to continue...")
		if _, err := d.readLine(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dialog) checkBalance() error {
	balance, err := d.session.CheckBalance()
	if err != nil {
		return err
	}
	d.printf("\nBalance Inquiry\n")
	d.printf("Current balance: ¥%s\n", balance.StringFixed(2))
	return nil
}

func (d *Dialog) withdraw() error {
	d.printf("\nWithdrawal\n")
	d.printf("Single withdrawal limit: ¥%s\n", domain.SingleWithdrawalLimit.StringFixed(2))
	d.printf("Daily withdrawal limit: ¥%s\n", domain.DailyWithdrawalLimit.StringFixed(2))
	d.printf("Withdrawal amount must be multiple of %d\n", domain.WithdrawalMultiple)

	today, err := d.session.TodayWithdrawn()
	if err != nil {
		return err
	}
	d.printf("Today's withdrawals: ¥%s\n", today.StringFixed(2))

	d.printf("Please enter withdrawal amount: ")
	amount, ok, err := d.readAmount()
	if err != nil || !ok {
		return err
	}

	balance, opErr := d.session.Withdraw(amount)
	switch {
	case opErr == nil:
		d.printf("Withdrawal successful! Withdrawn amount: ¥%s\n", amount.StringFixed(2))
		d.printf("Remaining balance: ¥%s\n", balance.StringFixed(2))
	case errors.Is(opErr, policyservice.ErrNonPositiveAmount):
		d.printf("Invalid amount!\n")
	case errors.Is(opErr, policyservice.ErrNotMultipleOf100):
		d.printf("Withdrawal amount must be multiple of %d!\n", domain.WithdrawalMultiple)
	case errors.Is(opErr, policyservice.ErrExceedsSingleLimit):
		d.printf("Exceeds single withdrawal limit!\n")
	case errors.Is(opErr, policyservice.ErrExceedsDailyLimit):
		d.printf("Exceeds daily withdrawal limit!\n")
	case errors.Is(opErr, policyservice.ErrInsufficientBalance):
		d.printf("Insufficient balance!\n")
	default:
		return opErr
	}
	return nil
}

func (d *Dialog) deposit() error {
	d.printf("\nDeposit\n")
	d.printf("Please enter deposit amount: ")
	amount, ok, err := d.readAmount()
	if err != nil || !ok {
		return err
	}

	balance, opErr := d.session.Deposit(amount)
	switch {
	case opErr == nil:
		d.printf("Deposit successful! Deposit amount: ¥%s\n", amount.StringFixed(2))
		d.printf("Current balance: ¥%s\n", balance.StringFixed(2))
	case errors.Is(opErr, policyservice.ErrNonPositiveAmount):
		d.printf("Invalid amount!\n")
	default:
		return opErr
	}
	return nil
}

func (d *Dialog) transfer() error {
	d.printf("\nTransfer\n")
	d.printf("Please enter target account number: ")
	target, err := d.readLine()
	if err != nil {
		return err
	}

	if err := d.session.CheckTransferTarget(target); err != nil {
		switch {
		case errors.Is(err, domain.ErrTargetNotFound):
			d.printf("Target account does not exist!\n")
		case errors.Is(err, policyservice.ErrSelfTransfer):
			d.printf("Cannot transfer to yourself!\n")
		default:
			return err
		}
		return nil
	}

	d.printf("Please re-enter target account number to confirm: ")
	confirm, err := d.readLine()
	if err != nil {
		return err
	}
	if target != confirm {
		d.printf("Two account numbers do not match!\n")
		return nil
	}

	d.printf("Please enter transfer amount: ")
	amount, ok, err := d.readAmount()
	if err != nil || !ok {
		return err
	}

	recipient, balance, opErr := d.session.Transfer(amount, target)
	switch {
	case opErr == nil:
		d.printf("Transfer successful! Transfer amount: ¥%s\n", amount.StringFixed(2))
		d.printf("Remaining balance: ¥%s\n", balance.StringFixed(2))
		d.printf("Recipient: %s\n", recipient)
	case errors.Is(opErr, policyservice.ErrNonPositiveAmount):
		d.printf("Invalid amount!\n")
	case errors.Is(opErr, policyservice.ErrInsufficientBalance):
		d.printf("Insufficient balance!\n")
	default:
		return opErr
	}
	return nil
}

func (d *Dialog) changePassword() error {
	d.printf("\nChange Password\n")
	d.printf("Please enter current password: ")
	old, err := d.readLine()
	if err != nil {
		return err
	}

	d.printf("Please enter new password (6 digits): ")
	newPassword, err := d.readLine()
	if err != nil {
		return err
	}

	d.printf("Please re-enter new password to confirm: ")
	confirm, err := d.readLine()
	if err != nil {
		return err
	}

	opErr := d.session.ChangePassword(old, newPassword, confirm)
	switch {
	case opErr == nil:
		d.printf("Password changed successfully!\n")
	case errors.Is(opErr, domain.ErrWrongPassword):
		d.printf("Current password is incorrect!\n")
	case errors.Is(opErr, policyservice.ErrBadPassword):
		d.printf("Password must be 6 digits!\n")
	case errors.Is(opErr, sessionservice.ErrPasswordMismatch):
		d.printf("Two passwords do not match!\n")
	default:
		return opErr
	}
	return nil
}

func (d *Dialog) accountInfo() error {
	acc, err := d.session.AccountInfo()
	if err != nil {
		return err
	}
	d.printf("\nAccount Information:\n")
	d.printf("Account: %s\n", acc.Number)
	d.printf("Name: %s\n", acc.Name)
	d.printf("ID Card: %s\n", acc.IDCard)
	d.printf("Balance: ¥%s\n", acc.Balance.StringFixed(2))
	return nil
}

// readAmount parses one input line as a money amount. A malformed amount is
// an input error, reported here; ok is false and the caller returns to the
// menu.
func (d *Dialog) readAmount() (decimal.Decimal, bool, error) {
	line, err := d.readLine()
	if err != nil {
		return decimal.Zero, false, err
	}
	amount, parseErr := decimal.NewFromString(line)
	if parseErr != nil {
		d.printf("Invalid amount!\n")
		return decimal.Zero, false, nil
	}
	return amount, true, nil
}

// readLine blocks for the next input line. io.EOF comes back unchanged so
// Run can end the session cleanly on a closed stdin.
func (d *Dialog) readLine() (string, error) {
	if !d.in.Scan() {
		if err := d.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(d.in.Text()), nil
}

func (d *Dialog) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}
