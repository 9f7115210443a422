package ledger

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-atm/internal/domain"
	"github.com/go-petr/pet-atm/pkg/moneypkg"
	"github.com/go-petr/pet-atm/pkg/pinpkg"
	"github.com/go-petr/pet-atm/pkg/randompkg"
)

func dec(s string) decimal.Decimal {
	return moneypkg.MustParse(s)
}

func mustCredential(t *testing.T, pin string) pinpkg.Credential {
	t.Helper()

	cred, err := pinpkg.New(pin)
	if err != nil {
		t.Fatalf("pinpkg.New(%q) returned error: %v", pin, err)
	}

	return cred
}

func seedAccount(t *testing.T, balance string) *Account {
	t.Helper()
	return newAccount("1000000009", randompkg.Owner(), dec(balance), mustCredential(t, "1234"))
}

func TestNewAccount(t *testing.T) {
	a := seedAccount(t, "5000")

	require.True(t, a.Balance().Equal(dec("5000")))

	history := a.History(10)
	require.Len(t, history, 1)
	require.Equal(t, domain.TxDeposit, history[0].Kind)
	require.True(t, history[0].Amount.Equal(dec("5000")))
	require.Equal(t, "Initial deposit", history[0].Note)

	empty := seedAccount(t, "0")
	require.True(t, empty.Balance().IsZero())
	require.Empty(t, empty.History(10))
}

func TestAccountDeposit(t *testing.T) {
	testCases := []struct {
		name        string
		amount      string
		wantBalance string
		wantErr     error
	}{
		{name: "OK", amount: "50", wantBalance: "150"},
		{name: "Cents", amount: "0.01", wantBalance: "100.01"},
		{name: "Zero", amount: "0", wantBalance: "100", wantErr: domain.ErrInvalidAmount},
		{name: "Negative", amount: "-5", wantBalance: "100", wantErr: domain.ErrInvalidAmount},
		{name: "TooPrecise", amount: "0.001", wantBalance: "100", wantErr: domain.ErrInvalidAmount},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := seedAccount(t, "100")
			amount, _ := decimal.NewFromString(tc.amount)

			tx, err := a.Deposit(amount, "Cash deposit")
			require.ErrorIs(t, err, tc.wantErr)
			require.True(t, a.Balance().Equal(dec(tc.wantBalance)), "balance = %v, want %v", a.Balance(), tc.wantBalance)

			history := a.History(100)
			if tc.wantErr != nil {
				require.Empty(t, tx)
				require.Len(t, history, 1)

				return
			}

			require.Len(t, history, 2)
			require.Equal(t, tx, history[1])
			require.Equal(t, domain.TxDeposit, tx.Kind)
			require.True(t, tx.Amount.Equal(amount))
			require.Equal(t, "Cash deposit", tx.Note)
		})
	}
}

func TestAccountWithdraw(t *testing.T) {
	testCases := []struct {
		name        string
		amount      string
		wantBalance string
		wantErr     error
	}{
		{name: "OK", amount: "30", wantBalance: "70"},
		{name: "WholeBalance", amount: "100", wantBalance: "0"},
		{name: "InsufficientFunds", amount: "100.01", wantBalance: "100", wantErr: domain.ErrInsufficientFunds},
		{name: "Zero", amount: "0", wantBalance: "100", wantErr: domain.ErrInvalidAmount},
		{name: "Negative", amount: "-1", wantBalance: "100", wantErr: domain.ErrInvalidAmount},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := seedAccount(t, "100")

			tx, err := a.Withdraw(dec(tc.amount), "Cash withdrawal")
			require.ErrorIs(t, err, tc.wantErr)
			require.True(t, a.Balance().Equal(dec(tc.wantBalance)), "balance = %v, want %v", a.Balance(), tc.wantBalance)
			require.False(t, a.Balance().IsNegative())

			history := a.History(100)
			if tc.wantErr != nil {
				require.Len(t, history, 1)
				return
			}

			require.Len(t, history, 2)
			require.Equal(t, tx, history[1])
			require.Equal(t, domain.TxWithdraw, tx.Kind)
			require.True(t, tx.Amount.Equal(dec(tc.amount)))
		})
	}
}

func TestAccountRecordTransfer(t *testing.T) {
	a := seedAccount(t, "100")

	_, err := a.RecordTransfer(domain.TxDeposit, dec("10"), "2000000008")
	require.ErrorIs(t, err, domain.ErrInvalidTransactionKind)

	_, err = a.RecordTransfer(domain.TxTransferIn, dec("0"), "2000000008")
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	in, err := a.RecordTransfer(domain.TxTransferIn, dec("10"), "2000000008")
	require.NoError(t, err)
	require.Equal(t, "From 2000000008", in.Note)

	out, err := a.RecordTransfer(domain.TxTransferOut, dec("5"), "2000000008")
	require.NoError(t, err)
	require.Equal(t, "To 2000000008", out.Note)

	// Annotations never move money.
	require.True(t, a.Balance().Equal(dec("100")))
	require.Equal(t, []domain.Transaction{in, out}, a.History(2))
}

func TestAccountChangePin(t *testing.T) {
	a := seedAccount(t, "100")

	require.True(t, a.Authenticate("1234"))

	err := a.ChangePin("")
	require.ErrorIs(t, err, pinpkg.ErrEmptyPin)
	require.True(t, a.Authenticate("1234"))
	require.Len(t, a.History(10), 1)

	require.NoError(t, a.ChangePin("9876"))
	require.False(t, a.Authenticate("1234"))
	require.True(t, a.Authenticate("9876"))

	last := a.History(1)[0]
	require.Equal(t, domain.TxAdministrative, last.Kind)
	require.True(t, last.Amount.IsZero())
	require.Equal(t, "PIN changed", last.Note)
	require.True(t, a.Balance().Equal(dec("100")))

	// Changing back to an old PIN works, the intermediate one is gone.
	require.NoError(t, a.ChangePin("1234"))
	require.True(t, a.Authenticate("1234"))
	require.False(t, a.Authenticate("9876"))
}

func TestAccountHistory(t *testing.T) {
	a := seedAccount(t, "0")
	require.NotNil(t, a.History(5))
	require.Empty(t, a.History(5))

	var all []domain.Transaction

	for i := 1; i <= 5; i++ {
		tx, err := a.Deposit(decimal.NewFromInt(int64(i)), "")
		require.NoError(t, err)

		all = append(all, tx)
	}

	testCases := []struct {
		name  string
		limit int
		want  []domain.Transaction
	}{
		{name: "Window", limit: 3, want: all[2:]},
		{name: "Exact", limit: 5, want: all},
		{name: "MoreThanAvailable", limit: 50, want: all},
		{name: "One", limit: 1, want: all[4:]},
		{name: "Zero", limit: 0, want: []domain.Transaction{}},
		{name: "Negative", limit: -1, want: []domain.Transaction{}},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, a.History(tc.limit))
		})
	}
}

func TestAccountHistoryIsCopy(t *testing.T) {
	a := seedAccount(t, "10")

	got := a.History(10)
	require.Len(t, got, 1)

	got[0].Note = "tampered"

	_, err := a.Withdraw(dec("1"), "")
	require.NoError(t, err)

	require.Equal(t, "Initial deposit", a.History(10)[0].Note)
	require.Len(t, got, 1)
}

func TestAccountConcurrentWithdrawals(t *testing.T) {
	for i := 0; i < 50; i++ {
		a := seedAccount(t, "3000")

		var wg sync.WaitGroup

		errs := make(chan error, 2)

		for j := 0; j < 2; j++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := a.Withdraw(dec("3000"), "Cash withdrawal")
				errs <- err
			}()
		}

		wg.Wait()
		close(errs)

		var succeeded, rejected int

		for err := range errs {
			switch err {
			case nil:
				succeeded++
			case domain.ErrInsufficientFunds:
				rejected++
			default:
				t.Fatalf("Withdraw() returned unexpected error: %v", err)
			}
		}

		require.Equal(t, 1, succeeded)
		require.Equal(t, 1, rejected)
		require.True(t, a.Balance().IsZero())
	}
}

func TestAccountConcurrentDeposits(t *testing.T) {
	a := seedAccount(t, "0")

	const workers = 100

	var wg sync.WaitGroup

	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			if _, err := a.Deposit(dec("1"), ""); err != nil {
				t.Errorf("Deposit() returned error: %v", err)
			}
		}()
	}

	wg.Wait()

	require.True(t, a.Balance().Equal(decimal.NewFromInt(workers)))
	require.Len(t, a.History(workers*2), workers)
}

func TestRestoreAccount(t *testing.T) {
	valid := func() domain.AccountRecord {
		return seedAccount(t, "42.50").record()
	}

	testCases := []struct {
		name    string
		mutate  func(rec *domain.AccountRecord)
		wantErr bool
	}{
		{
			name:   "OK",
			mutate: func(rec *domain.AccountRecord) {},
		},
		{
			name:    "EmptyID",
			mutate:  func(rec *domain.AccountRecord) { rec.ID = "" },
			wantErr: true,
		},
		{
			name:    "NegativeBalance",
			mutate:  func(rec *domain.AccountRecord) { rec.Balance = dec("-1") },
			wantErr: true,
		},
		{
			name:    "FractionalCents",
			mutate:  func(rec *domain.AccountRecord) { rec.Balance = decimal.New(1, -3) },
			wantErr: true,
		},
		{
			name:    "MissingCredential",
			mutate:  func(rec *domain.AccountRecord) { rec.Credential = pinpkg.Credential{} },
			wantErr: true,
		},
		{
			name:    "UnknownKind",
			mutate:  func(rec *domain.AccountRecord) { rec.Transactions[0].Kind = "REFUND" },
			wantErr: true,
		},
		{
			name:    "NegativeTransaction",
			mutate:  func(rec *domain.AccountRecord) { rec.Transactions[0].Amount = dec("-3") },
			wantErr: true,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			rec := valid()
			tc.mutate(&rec)

			a, err := restoreAccount(rec)
			if tc.wantErr {
				require.Error(t, err)
				require.Nil(t, a)

				return
			}

			require.NoError(t, err)
			require.Equal(t, rec, a.record())
			require.True(t, a.Authenticate("1234"))
		})
	}
}
