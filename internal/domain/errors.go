package domain

import "errors"

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidPin indicates that the PIN does not match the account credential.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrInvalidAmount indicates a non-positive or malformed amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds indicates that the account balance cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSameAccount indicates a transfer to the source account itself.
	ErrSameAccount = errors.New("cannot transfer to the same account")
	// ErrInvalidHolderName indicates a blank account holder name.
	ErrInvalidHolderName = errors.New("invalid holder name")
	// ErrInvalidTransactionKind indicates a transaction kind not allowed for the operation.
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")
	// ErrAccountNumbersExhausted indicates that no free account number was found within the retry budget.
	ErrAccountNumbersExhausted = errors.New("no free account number")
	// ErrSnapshotRead indicates that the persisted snapshot could not be loaded.
	// The ledger starts empty and a copy of the snapshot file is kept for inspection.
	ErrSnapshotRead = errors.New("snapshot read failure")
	// ErrSnapshotWrite indicates that the ledger could not be persisted.
	// The in-memory operation that triggered the write has already been applied.
	ErrSnapshotWrite = errors.New("snapshot write failure")
)
