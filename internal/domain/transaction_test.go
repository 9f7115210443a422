package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestTxKindValid(t *testing.T) {
	for _, k := range []TxKind{TxDeposit, TxWithdraw, TxTransferIn, TxTransferOut, TxAdministrative} {
		if !k.Valid() {
			t.Errorf("%q.Valid() = false, want true", k)
		}
	}

	for _, k := range []TxKind{"", "deposit", "REFUND"} {
		if k.Valid() {
			t.Errorf("%q.Valid() = true, want false", k)
		}
	}
}

func TestNewTransaction(t *testing.T) {
	before := time.Now()
	tx := NewTransaction(TxDeposit, decimal.NewFromInt(10), "Cash deposit")

	if tx.ID == uuid.Nil {
		t.Error("tx.ID is nil, want random uuid")
	}

	if tx.CreatedAt.Before(before.Add(-time.Second)) || tx.CreatedAt.After(time.Now().Add(time.Second)) {
		t.Errorf("tx.CreatedAt = %v, want close to now", tx.CreatedAt)
	}

	other := NewTransaction(TxDeposit, decimal.NewFromInt(10), "Cash deposit")
	if other.ID == tx.ID {
		t.Error("two transactions share an id")
	}
}
