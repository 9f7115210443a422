package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-atm/internal/domain"
	"github.com/go-petr/pet-atm/pkg/moneypkg"
	"github.com/go-petr/pet-atm/pkg/pinpkg"
)

// Account holds the balance, credential and transaction history of one account.
//
// All methods are safe for concurrent use. Every mutation and every read of
// mutable state happens under the account's own mutex.
type Account struct {
	mu sync.Mutex

	id         string
	holderName string
	createdAt  time.Time

	balance    decimal.Decimal
	credential pinpkg.Credential
	history    []domain.Transaction
}

func newAccount(id, holderName string, initialDeposit decimal.Decimal, cred pinpkg.Credential) *Account {
	a := &Account{
		id:         id,
		holderName: holderName,
		createdAt:  time.Now().UTC(),
		balance:    initialDeposit,
		credential: cred,
	}

	if initialDeposit.IsPositive() {
		a.history = append(a.history, domain.NewTransaction(domain.TxDeposit, initialDeposit, "Initial deposit"))
	}

	return a
}

// restoreAccount rebuilds an account from its persisted record and rejects
// records that break the account invariants.
func restoreAccount(rec domain.AccountRecord) (*Account, error) {
	if rec.ID == "" {
		return nil, errors.New("empty account id")
	}

	if rec.Balance.IsNegative() || !moneypkg.HasScale(rec.Balance) {
		return nil, errors.Errorf("invalid balance %s", rec.Balance)
	}

	if !rec.Credential.Valid() {
		return nil, errors.New("invalid credential")
	}

	history := make([]domain.Transaction, len(rec.Transactions))
	for i, tx := range rec.Transactions {
		if !tx.Kind.Valid() {
			return nil, errors.Wrapf(domain.ErrInvalidTransactionKind, "transaction %d: %q", i, tx.Kind)
		}

		if tx.Amount.IsNegative() {
			return nil, errors.Errorf("transaction %d: negative amount %s", i, tx.Amount)
		}

		history[i] = tx
	}

	return &Account{
		id:         rec.ID,
		holderName: rec.HolderName,
		createdAt:  rec.CreatedAt,
		balance:    rec.Balance,
		credential: rec.Credential,
		history:    history,
	}, nil
}

// ID returns the account number.
func (a *Account) ID() string {
	return a.id
}

// HolderName returns the account holder name.
func (a *Account) HolderName() string {
	return a.holderName
}

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.balance
}

// Info returns the public view of the account.
func (a *Account) Info() domain.AccountInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.info()
}

// Authenticate checks the PIN against the current credential.
func (a *Account) Authenticate(pin string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.credential.Verify(pin)
}

// Deposit adds a strictly positive amount to the balance.
//
// A non-positive amount, or one with more than two decimals, is rejected with
// domain.ErrInvalidAmount and leaves the account untouched.
func (a *Account) Deposit(amount decimal.Decimal, note string) (domain.Transaction, error) {
	tx, _, err := a.deposit(amount, note)
	return tx, err
}

// Withdraw takes amount from the balance if the balance covers it.
func (a *Account) Withdraw(amount decimal.Decimal, note string) (domain.Transaction, error) {
	tx, _, err := a.withdraw(amount, note)
	return tx, err
}

// deposit is Deposit that also returns the account view taken under the same lock.
func (a *Account) deposit(amount decimal.Decimal, note string) (domain.Transaction, domain.AccountInfo, error) {
	if !moneypkg.IsPositive(amount) {
		return domain.Transaction{}, domain.AccountInfo{}, domain.ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tx := a.credit(amount, note)

	return tx, a.info(), nil
}

// withdraw is Withdraw that also returns the account view taken under the same lock.
func (a *Account) withdraw(amount decimal.Decimal, note string) (domain.Transaction, domain.AccountInfo, error) {
	if !moneypkg.IsPositive(amount) {
		return domain.Transaction{}, domain.AccountInfo{}, domain.ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.debit(amount, note)
	if err != nil {
		return domain.Transaction{}, domain.AccountInfo{}, err
	}

	return tx, a.info(), nil
}

// RecordTransfer appends a TRANSFER_IN or TRANSFER_OUT entry without touching the balance.
func (a *Account) RecordTransfer(kind domain.TxKind, amount decimal.Decimal, counterpartyID string) (domain.Transaction, error) {
	if kind != domain.TxTransferIn && kind != domain.TxTransferOut {
		return domain.Transaction{}, domain.ErrInvalidTransactionKind
	}

	if !moneypkg.IsPositive(amount) {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.appendTransfer(kind, amount, counterpartyID), nil
}

// ChangePin replaces the credential with a freshly salted one and records the change.
func (a *Account) ChangePin(newPin string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cred, err := a.credential.Rotate(newPin)
	if err != nil {
		return err
	}

	a.credential = cred
	a.history = append(a.history, domain.NewTransaction(domain.TxAdministrative, decimal.Zero, "PIN changed"))

	return nil
}

// History returns up to limit most recent transactions, oldest first.
//
// The returned slice is a copy.
func (a *Account) History(limit int) []domain.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()

	if limit <= 0 {
		return []domain.Transaction{}
	}

	from := len(a.history) - limit
	if from < 0 {
		from = 0
	}

	out := make([]domain.Transaction, len(a.history)-from)
	copy(out, a.history[from:])

	return out
}

// The methods below expect a.mu to be held.

func (a *Account) info() domain.AccountInfo {
	return domain.AccountInfo{
		ID:         a.id,
		HolderName: a.holderName,
		Balance:    a.balance,
		CreatedAt:  a.createdAt,
	}
}

func (a *Account) record() domain.AccountRecord {
	history := make([]domain.Transaction, len(a.history))
	copy(history, a.history)

	return domain.AccountRecord{
		ID:           a.id,
		HolderName:   a.holderName,
		Balance:      a.balance,
		Credential:   a.credential,
		CreatedAt:    a.createdAt,
		Transactions: history,
	}
}

func (a *Account) credit(amount decimal.Decimal, note string) domain.Transaction {
	a.balance = a.balance.Add(amount)

	tx := domain.NewTransaction(domain.TxDeposit, amount, note)
	a.history = append(a.history, tx)

	return tx
}

func (a *Account) debit(amount decimal.Decimal, note string) (domain.Transaction, error) {
	if a.balance.LessThan(amount) {
		return domain.Transaction{}, domain.ErrInsufficientFunds
	}

	a.balance = a.balance.Sub(amount)

	tx := domain.NewTransaction(domain.TxWithdraw, amount, note)
	a.history = append(a.history, tx)

	return tx, nil
}

func (a *Account) appendTransfer(kind domain.TxKind, amount decimal.Decimal, counterpartyID string) domain.Transaction {
	direction := "From"
	if kind == domain.TxTransferOut {
		direction = "To"
	}

	tx := domain.NewTransaction(kind, amount, fmt.Sprintf("%s %s", direction, counterpartyID))
	a.history = append(a.history, tx)

	return tx
}

// lockPair locks both accounts in ascending id order and returns the matching unlock.
func lockPair(a, b *Account) (unlock func()) {
	first, second := a, b
	if b.id < a.id {
		first, second = b, a
	}

	first.mu.Lock()
	second.mu.Lock()

	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
