package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-atm/pkg/pinpkg"
)

// AccountInfo is the public view of an account.
type AccountInfo struct {
	ID         string          `json:"id"`
	HolderName string          `json:"holder_name"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AccountRecord is the persisted form of an account, credential and history included.
type AccountRecord struct {
	ID           string            `json:"id"`
	HolderName   string            `json:"holder_name"`
	Balance      decimal.Decimal   `json:"balance"`
	Credential   pinpkg.Credential `json:"credential"`
	CreatedAt    time.Time         `json:"created_at"`
	Transactions []Transaction     `json:"transactions"`
}

// TransferResult is the result of a transfer between two accounts.
type TransferResult struct {
	FromAccount AccountInfo `json:"from_account"`
	ToAccount   AccountInfo `json:"to_account"`
	FromEntry   Transaction `json:"from_entry"`
	ToEntry     Transaction `json:"to_entry"`
}
