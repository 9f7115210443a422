// Package domain provides definitions of all entities.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxKind classifies a transaction.
type TxKind string

// Transaction kinds.
const (
	TxDeposit        TxKind = "DEPOSIT"
	TxWithdraw       TxKind = "WITHDRAW"
	TxTransferIn     TxKind = "TRANSFER_IN"
	TxTransferOut    TxKind = "TRANSFER_OUT"
	TxAdministrative TxKind = "ADMINISTRATIVE"
)

// Valid reports whether k is a known kind.
func (k TxKind) Valid() bool {
	switch k {
	case TxDeposit, TxWithdraw, TxTransferIn, TxTransferOut, TxAdministrative:
		return true
	default:
		return false
	}
}

// Transaction is an immutable audit record of one account event.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	Kind      TxKind          `json:"kind"`
	Amount    decimal.Decimal `json:"amount"` // magnitude, never negative
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTransaction returns a transaction stamped with a new id and the current time.
func NewTransaction(kind TxKind, amount decimal.Decimal, note string) Transaction {
	return Transaction{
		ID:        uuid.New(),
		Kind:      kind,
		Amount:    amount,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
}
