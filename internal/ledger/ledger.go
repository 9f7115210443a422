// Package ledger implements the account ledger engine: the account directory,
// single-account operations and transfers between accounts.
//
// Every successful mutation is followed by a full snapshot save through the
// Store. A failed save never rolls back the in-memory change; the operation
// returns its result together with an error wrapping domain.ErrSnapshotWrite.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-atm/internal/domain"
	"github.com/go-petr/pet-atm/pkg/accountnumpkg"
	"github.com/go-petr/pet-atm/pkg/errorspkg"
	"github.com/go-petr/pet-atm/pkg/moneypkg"
	"github.com/go-petr/pet-atm/pkg/pinpkg"
)

// DefaultAccountNumberAttempts bounds the retries when a generated account number is taken.
const DefaultAccountNumberAttempts = 100

// Store provides persistence needed by the ledger.
//
//go:generate mockgen -source ledger.go -destination ledger_mock.go -package ledger
type Store interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Save(ctx context.Context, snap domain.Snapshot) error
	// Preserve keeps a copy of the stored snapshot that loaded but could not be restored.
	Preserve(ctx context.Context) error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithAccountNumberGenerator replaces the account number generator.
func WithAccountNumberGenerator(gen func() (string, error)) Option {
	return func(l *Ledger) {
		l.newAccountNumber = gen
	}
}

// WithAccountNumberAttempts sets how many generated numbers are tried before giving up.
func WithAccountNumberAttempts(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.attempts = n
		}
	}
}

// Ledger is the directory of all accounts.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]*Account

	// saveMu serializes snapshot writes so an older snapshot never lands after a newer one.
	saveMu sync.Mutex
	store  Store

	newAccountNumber func() (string, error)
	attempts         int
}

// New returns an empty ledger persisted through store. A nil store keeps the ledger in memory only.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		accounts:         make(map[string]*Account),
		store:            store,
		newAccountNumber: accountnumpkg.Generate,
		attempts:         DefaultAccountNumberAttempts,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Open returns a ledger restored from the store.
//
// A missing snapshot is a first run and yields an empty ledger. A snapshot
// that cannot be read or restored also yields an empty, usable ledger, along
// with an error wrapping domain.ErrSnapshotRead.
func Open(ctx context.Context, store Store, opts ...Option) (*Ledger, error) {
	log := zerolog.Ctx(ctx)

	l := New(store, opts...)

	snap, err := store.Load(ctx)
	if err != nil {
		log.Error().Stack().Err(err).Msg("cannot load snapshot, starting with an empty ledger")
		return l, fmt.Errorf("%w: %v", domain.ErrSnapshotRead, err)
	}

	accounts, err := restoreAccounts(snap)
	if err != nil {
		log.Error().Err(err).Msg("invalid snapshot, starting with an empty ledger")

		if perr := store.Preserve(ctx); perr != nil {
			log.Error().Stack().Err(perr).Msg("cannot preserve invalid snapshot")
		}

		return l, fmt.Errorf("%w: %v", domain.ErrSnapshotRead, err)
	}

	l.accounts = accounts

	log.Info().Int("accounts", len(accounts)).Msg("ledger loaded")

	return l, nil
}

func restoreAccounts(snap domain.Snapshot) (map[string]*Account, error) {
	accounts := make(map[string]*Account, len(snap.Accounts))

	for _, rec := range snap.Accounts {
		a, err := restoreAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", rec.ID, err)
		}

		if _, dup := accounts[a.id]; dup {
			return nil, fmt.Errorf("duplicate account %q", rec.ID)
		}

		accounts[a.id] = a
	}

	return accounts, nil
}

// CreateAccount opens a new account and returns its public view.
func (l *Ledger) CreateAccount(ctx context.Context, holderName string, initialDeposit decimal.Decimal, pin string) (domain.AccountInfo, error) {
	log := zerolog.Ctx(ctx)

	holderName = strings.TrimSpace(holderName)
	if holderName == "" {
		return domain.AccountInfo{}, domain.ErrInvalidHolderName
	}

	if initialDeposit.IsNegative() || !moneypkg.HasScale(initialDeposit) {
		return domain.AccountInfo{}, domain.ErrInvalidAmount
	}

	cred, err := pinpkg.New(pin)
	if err != nil {
		if errors.Is(err, pinpkg.ErrEmptyPin) {
			return domain.AccountInfo{}, domain.ErrInvalidPin
		}

		log.Error().Err(err).Msg("cannot create credential")

		return domain.AccountInfo{}, errorspkg.ErrInternal
	}

	l.mu.Lock()

	id, err := l.freeAccountNumber()
	if err != nil {
		l.mu.Unlock()
		log.Error().Err(err).Int("attempts", l.attempts).Msg("cannot allocate account number")

		if errors.Is(err, domain.ErrAccountNumbersExhausted) {
			return domain.AccountInfo{}, err
		}

		return domain.AccountInfo{}, errorspkg.ErrInternal
	}

	a := newAccount(id, holderName, initialDeposit, cred)
	l.accounts[id] = a

	l.mu.Unlock()

	log.Info().Str("account", id).Str("initial_deposit", initialDeposit.String()).Msg("account created")

	return a.Info(), l.persist(ctx)
}

// freeAccountNumber draws account numbers until one is not taken. l.mu must be held.
func (l *Ledger) freeAccountNumber() (string, error) {
	for i := 0; i < l.attempts; i++ {
		id, err := l.newAccountNumber()
		if err != nil {
			return "", err
		}

		if _, taken := l.accounts[id]; !taken {
			return id, nil
		}
	}

	return "", domain.ErrAccountNumbersExhausted
}

// Authenticate returns the account if pin matches its credential.
func (l *Ledger) Authenticate(ctx context.Context, id, pin string) (*Account, error) {
	log := zerolog.Ctx(ctx)

	a, err := l.account(id)
	if err != nil {
		log.Info().Err(err).Str("account", id).Send()
		return nil, err
	}

	if !a.Authenticate(pin) {
		log.Warn().Str("account", id).Msg("wrong pin")
		return nil, domain.ErrInvalidPin
	}

	return a, nil
}

// Deposit adds amount to the account balance.
func (l *Ledger) Deposit(ctx context.Context, id string, amount decimal.Decimal) (domain.AccountInfo, error) {
	log := zerolog.Ctx(ctx)

	a, err := l.account(id)
	if err != nil {
		return domain.AccountInfo{}, err
	}

	_, info, err := a.deposit(amount, "Cash deposit")
	if err != nil {
		log.Info().Str("account", id).Str("amount", amount.String()).Err(err).Send()
		return domain.AccountInfo{}, err
	}

	log.Info().Str("account", id).Str("amount", amount.String()).Msg("deposit")

	return info, l.persist(ctx)
}

// Withdraw takes amount from the account balance.
func (l *Ledger) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (domain.AccountInfo, error) {
	log := zerolog.Ctx(ctx)

	a, err := l.account(id)
	if err != nil {
		return domain.AccountInfo{}, err
	}

	_, info, err := a.withdraw(amount, "Cash withdrawal")
	if err != nil {
		log.Info().Str("account", id).Str("amount", amount.String()).Err(err).Send()
		return domain.AccountInfo{}, err
	}

	log.Info().Str("account", id).Str("amount", amount.String()).Msg("withdrawal")

	return info, l.persist(ctx)
}

// ChangePin replaces the account PIN.
func (l *Ledger) ChangePin(ctx context.Context, id, newPin string) error {
	log := zerolog.Ctx(ctx)

	a, err := l.account(id)
	if err != nil {
		return err
	}

	if err := a.ChangePin(newPin); err != nil {
		if errors.Is(err, pinpkg.ErrEmptyPin) {
			return domain.ErrInvalidPin
		}

		log.Error().Err(err).Str("account", id).Msg("cannot rotate credential")

		return errorspkg.ErrInternal
	}

	log.Info().Str("account", id).Msg("pin changed")

	return l.persist(ctx)
}

// History returns up to limit most recent transactions of the account, oldest first.
func (l *Ledger) History(ctx context.Context, id string, limit int) ([]domain.Transaction, error) {
	a, err := l.account(id)
	if err != nil {
		return nil, err
	}

	return a.History(limit), nil
}

// ListAccounts returns all accounts ordered by account number.
func (l *Ledger) ListAccounts(ctx context.Context) []domain.AccountInfo {
	accounts := l.sortedAccounts()

	items := make([]domain.AccountInfo, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, a.Info())
	}

	return items
}

// Snapshot returns the full state of the ledger.
//
// All accounts are locked in ascending id order while copying, so the
// snapshot never shows one half of a transfer.
func (l *Ledger) Snapshot() domain.Snapshot {
	accounts := l.sortedAccounts()

	for _, a := range accounts {
		a.mu.Lock()
	}

	snap := domain.Snapshot{
		Meta:     domain.Meta{Version: domain.SnapshotVersion},
		Accounts: make([]domain.AccountRecord, 0, len(accounts)),
	}

	for _, a := range accounts {
		snap.Accounts = append(snap.Accounts, a.record())
	}

	for _, a := range accounts {
		a.mu.Unlock()
	}

	return snap
}

func (l *Ledger) account(id string) (*Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return a, nil
}

func (l *Ledger) sortedAccounts() []*Account {
	l.mu.RLock()

	accounts := make([]*Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		accounts = append(accounts, a)
	}

	l.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].id < accounts[j].id
	})

	return accounts
}

func (l *Ledger) persist(ctx context.Context) error {
	if l.store == nil {
		return nil
	}

	l.saveMu.Lock()
	defer l.saveMu.Unlock()

	if err := l.store.Save(ctx, l.Snapshot()); err != nil {
		zerolog.Ctx(ctx).Warn().Stack().Err(err).Msg("ledger change kept in memory only")
		return fmt.Errorf("%w: %v", domain.ErrSnapshotWrite, err)
	}

	return nil
}
