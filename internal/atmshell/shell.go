// Package atmshell provides the interactive console menu of the ATM.
package atmshell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-atm/internal/domain"
	"github.com/go-petr/pet-atm/internal/ledger"
	"github.com/go-petr/pet-atm/internal/logger"
	"github.com/go-petr/pet-atm/pkg/configpkg"
	"github.com/go-petr/pet-atm/pkg/moneypkg"
)

// Service provides the ledger operations needed by the shell.
type Service interface {
	CreateAccount(ctx context.Context, holderName string, initialDeposit decimal.Decimal, pin string) (domain.AccountInfo, error)
	Authenticate(ctx context.Context, id, pin string) (*ledger.Account, error)
	Deposit(ctx context.Context, id string, amount decimal.Decimal) (domain.AccountInfo, error)
	Withdraw(ctx context.Context, id string, amount decimal.Decimal) (domain.AccountInfo, error)
	Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (domain.TransferResult, error)
	ChangePin(ctx context.Context, id, newPin string) error
	History(ctx context.Context, id string, limit int) ([]domain.Transaction, error)
	ListAccounts(ctx context.Context) []domain.AccountInfo
}

// Option configures a Shell.
type Option func(*Shell)

// WithPinReader reads PINs through r instead of the line input.
func WithPinReader(r PinReader) Option {
	return func(s *Shell) {
		s.pins = r
	}
}

// Shell runs the ATM menus over a line oriented input and output.
type Shell struct {
	service Service
	in      *bufio.Scanner
	out     io.Writer
	pins    PinReader

	validate      *validator.Validate
	pinRule       string
	minPin        int
	maxPin        int
	statementSize int
}

// New returns Shell reading commands from in and writing to out.
func New(service Service, in io.Reader, out io.Writer, config configpkg.Config, opts ...Option) *Shell {
	s := &Shell{
		service:       service,
		in:            bufio.NewScanner(in),
		out:           out,
		validate:      newValidator(),
		pinRule:       pinRule(config.MinPinLength, config.MaxPinLength),
		minPin:        config.MinPinLength,
		maxPin:        config.MaxPinLength,
		statementSize: config.MiniStatementSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run shows the main menu until the user exits or the input ends.
func (s *Shell) Run(ctx context.Context) error {
	log, _ := logger.WithSession(*zerolog.Ctx(ctx))
	ctx = log.WithContext(ctx)

	log.Info().Msg("session started")
	defer func() { log.Info().Msg("session ended") }()

	s.println("=== Welcome to the ATM ===")

	for {
		s.println("\nMain Menu:")
		s.println("1. Create new account")
		s.println("2. Login to account")
		s.println("3. List accounts (admin)")
		s.println("4. Exit")

		choice, err := s.readLine("Choose (1-4): ")
		if err != nil {
			return ignoreEOF(err)
		}

		switch choice {
		case "1":
			err = s.createAccount(ctx)
		case "2":
			err = s.login(ctx)
		case "3":
			s.listAccounts(ctx)
		case "4":
			s.println("Goodbye!")
			return nil
		default:
			s.println("Invalid choice, try again.")
		}

		if err != nil {
			return ignoreEOF(err)
		}
	}
}

func (s *Shell) createAccount(ctx context.Context) error {
	s.println("\n--- Create Account ---")

	name, err := s.readLine("Full name: ")
	if err != nil {
		return err
	}

	if err := s.validate.Var(name, "required"); err != nil {
		s.println("Name cannot be empty.")
		return nil
	}

	var initial decimal.Decimal

	for {
		line, err := s.readLine("Initial deposit (>=0): ")
		if err != nil {
			return err
		}

		initial, err = moneypkg.Parse(line)
		if err == nil && !initial.IsNegative() {
			break
		}

		s.println("Enter a valid non-negative amount with at most two decimals.")
	}

	pin, err := s.readNewPin()
	if err != nil {
		return err
	}

	info, err := s.service.CreateAccount(ctx, name, initial, pin)
	if !s.succeeded(err) {
		return nil
	}

	s.printf("Account created! Account Number: %s\n", info.ID)

	return nil
}

func (s *Shell) login(ctx context.Context) error {
	s.println("\n--- Login ---")

	id, ok, err := s.readAccountNumber("Account Number: ")
	if err != nil || !ok {
		return err
	}

	pin, err := s.readPin("Enter PIN: ")
	if err != nil {
		return err
	}

	acc, err := s.service.Authenticate(ctx, id, pin)
	if err != nil {
		s.println(message(err))
		return nil
	}

	log := zerolog.Ctx(ctx).With().Str("account", id).Logger()
	ctx = log.WithContext(ctx)

	log.Info().Msg("logged in")
	s.printf("Welcome, %s!\n", acc.HolderName())

	return s.accountMenu(ctx, acc)
}

func (s *Shell) accountMenu(ctx context.Context, acc *ledger.Account) error {
	for {
		s.println("\nAccount Menu:")
		s.println("1. Show balance")
		s.println("2. Deposit")
		s.println("3. Withdraw")
		s.println("4. Transfer")
		s.printf("5. Mini-statement (last %d)\n", s.statementSize)
		s.println("6. Change PIN")
		s.println("7. Logout")

		choice, err := s.readLine("Choose (1-7): ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			s.printf("Balance: %s\n", moneypkg.Format(acc.Balance()))
		case "2":
			err = s.deposit(ctx, acc)
		case "3":
			err = s.withdraw(ctx, acc)
		case "4":
			err = s.transfer(ctx, acc)
		case "5":
			s.miniStatement(ctx, acc)
		case "6":
			err = s.changePin(ctx, acc)
		case "7":
			zerolog.Ctx(ctx).Info().Msg("logged out")
			s.println("Logged out.")

			return nil
		default:
			s.println("Invalid choice.")
		}

		if err != nil {
			return err
		}
	}
}

func (s *Shell) deposit(ctx context.Context, acc *ledger.Account) error {
	amount, ok, err := s.readAmount("Amount to deposit: ")
	if err != nil || !ok {
		return err
	}

	info, err := s.service.Deposit(ctx, acc.ID(), amount)
	if !s.succeeded(err) {
		return nil
	}

	s.printf("Deposited %s. New balance: %s\n", moneypkg.Format(amount), moneypkg.Format(info.Balance))

	return nil
}

func (s *Shell) withdraw(ctx context.Context, acc *ledger.Account) error {
	amount, ok, err := s.readAmount("Amount to withdraw: ")
	if err != nil || !ok {
		return err
	}

	info, err := s.service.Withdraw(ctx, acc.ID(), amount)
	if !s.succeeded(err) {
		return nil
	}

	s.printf("Withdrawn %s. New balance: %s\n", moneypkg.Format(amount), moneypkg.Format(info.Balance))

	return nil
}

func (s *Shell) transfer(ctx context.Context, acc *ledger.Account) error {
	target, ok, err := s.readAccountNumber("Target Account Number: ")
	if err != nil || !ok {
		return err
	}

	if target == acc.ID() {
		s.println(message(domain.ErrSameAccount))
		return nil
	}

	amount, ok, err := s.readAmount("Amount to transfer: ")
	if err != nil || !ok {
		return err
	}

	res, err := s.service.Transfer(ctx, acc.ID(), target, amount)
	if errors.Is(err, domain.ErrAccountNotFound) {
		s.println("Target account not found.")
		return nil
	}

	if !s.succeeded(err) {
		return nil
	}

	s.printf("Transferred %s to %s. Your new balance: %s\n",
		moneypkg.Format(amount), target, moneypkg.Format(res.FromAccount.Balance))

	return nil
}

func (s *Shell) changePin(ctx context.Context, acc *ledger.Account) error {
	s.println("Change PIN:")

	current, err := s.readPin("Enter current PIN: ")
	if err != nil {
		return err
	}

	if !acc.Authenticate(current) {
		zerolog.Ctx(ctx).Warn().Msg("wrong current pin on pin change")
		s.println("Incorrect current PIN.")

		return nil
	}

	pin, err := s.readNewPin()
	if err != nil {
		return err
	}

	if !s.succeeded(s.service.ChangePin(ctx, acc.ID(), pin)) {
		return nil
	}

	s.println("PIN changed successfully.")

	return nil
}

func (s *Shell) miniStatement(ctx context.Context, acc *ledger.Account) {
	s.println("\n--- Mini Statement ---")

	txs, err := s.service.History(ctx, acc.ID(), s.statementSize)
	if err != nil {
		s.println(message(err))
		return
	}

	if len(txs) == 0 {
		s.println("No transactions yet.")
		return
	}

	for _, tx := range txs {
		s.printf("%s | %-14s | %10s | %s\n",
			tx.CreatedAt.Local().Format("2006-01-02 15:04"),
			tx.Kind,
			moneypkg.Format(tx.Amount),
			tx.Note,
		)
	}
}

func (s *Shell) listAccounts(ctx context.Context) {
	s.println("\n--- Accounts in system ---")

	accounts := s.service.ListAccounts(ctx)
	if len(accounts) == 0 {
		s.println("No accounts.")
		return
	}

	for _, a := range accounts {
		s.printf("Account: %s | Name: %s | Balance: %s\n", a.ID, a.HolderName, moneypkg.Format(a.Balance))
	}
}

// readNewPin asks for a PIN twice until both entries match and follow the PIN policy.
func (s *Shell) readNewPin() (string, error) {
	for {
		p1, err := s.readPin(fmt.Sprintf("Set PIN (%d-%d digits): ", s.minPin, s.maxPin))
		if err != nil {
			return "", err
		}

		p2, err := s.readPin("Confirm PIN: ")
		if err != nil {
			return "", err
		}

		if p1 != p2 {
			s.println("PINs do not match. Try again.")
			continue
		}

		if err := s.validate.Var(p1, s.pinRule); err != nil {
			s.println(s.pinMessage(err))
			continue
		}

		return p1, nil
	}
}

func (s *Shell) pinMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "Invalid PIN."
	}

	switch ve[0].Tag() {
	case "numeric":
		return "PIN must contain digits only."
	case "min", "required":
		return "PIN too short."
	case "max":
		return "PIN too long."
	default:
		return "Invalid PIN."
	}
}

// readAccountNumber returns ok=false if the number is malformed.
func (s *Shell) readAccountNumber(prompt string) (string, bool, error) {
	id, err := s.readLine(prompt)
	if err != nil {
		return "", false, err
	}

	if err := s.validate.Var(id, "required,accountnum"); err != nil {
		s.println("Invalid account number, please check the digits.")
		return "", false, nil
	}

	return id, true, nil
}

// readAmount returns ok=false if the input is not a positive amount.
func (s *Shell) readAmount(prompt string) (decimal.Decimal, bool, error) {
	line, err := s.readLine(prompt)
	if err != nil {
		return decimal.Zero, false, err
	}

	amount, err := moneypkg.Parse(line)
	if err != nil {
		s.println("Invalid amount.")
		return decimal.Zero, false, nil
	}

	if !amount.IsPositive() {
		s.println(message(domain.ErrInvalidAmount))
		return decimal.Zero, false, nil
	}

	return amount, true, nil
}

func (s *Shell) readPin(prompt string) (string, error) {
	if s.pins != nil {
		return s.pins.ReadPin(prompt)
	}

	return s.readLine(prompt)
}

func (s *Shell) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)

	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return strings.TrimSpace(s.in.Text()), nil
}

// succeeded reports whether the operation took effect, printing what the user
// should know otherwise. A failed save still counts as success.
func (s *Shell) succeeded(err error) bool {
	if err == nil {
		return true
	}

	if errors.Is(err, domain.ErrSnapshotWrite) {
		s.println("Warning: the change could not be saved and will be lost when the ATM stops.")
		return true
	}

	s.println(message(err))

	return false
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func message(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return "Account not found."
	case errors.Is(err, domain.ErrInvalidPin):
		return "Incorrect PIN."
	case errors.Is(err, domain.ErrInvalidAmount):
		return "Amount must be positive."
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "Insufficient balance."
	case errors.Is(err, domain.ErrSameAccount):
		return "Cannot transfer to same account."
	case errors.Is(err, domain.ErrInvalidHolderName):
		return "Name cannot be empty."
	case errors.Is(err, domain.ErrAccountNumbersExhausted):
		return "No account number available, please try again later."
	default:
		return "Operation failed, please try again later."
	}
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}
