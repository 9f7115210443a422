package ledger

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-atm/internal/domain"
	"github.com/go-petr/pet-atm/pkg/moneypkg"
)

// Transfer moves amount from one account to another.
//
// The caller is expected to be authenticated as fromID. The source is debited
// and the destination credited, then each side gets its TRANSFER_OUT or
// TRANSFER_IN entry. Both accounts stay locked for the whole sequence, taken
// in ascending id order, so concurrent transfers in opposite directions cannot
// deadlock and no reader observes a half applied transfer.
//
// Nothing is written to disk between the debit and the credit. A crash after
// the in-memory transfer but before the save loses the whole transfer, never
// one half of it.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (domain.TransferResult, error) {
	log := zerolog.Ctx(ctx).With().
		Str("from_account", fromID).
		Str("to_account", toID).
		Str("amount", amount.String()).
		Logger()

	var result domain.TransferResult

	if fromID == toID {
		log.Info().Err(domain.ErrSameAccount).Send()
		return result, domain.ErrSameAccount
	}

	to, err := l.account(toID)
	if err != nil {
		log.Info().Err(err).Msg("destination lookup")
		return result, err
	}

	if !moneypkg.IsPositive(amount) {
		log.Info().Err(domain.ErrInvalidAmount).Send()
		return result, domain.ErrInvalidAmount
	}

	from, err := l.account(fromID)
	if err != nil {
		log.Info().Err(err).Msg("source lookup")
		return result, err
	}

	unlock := lockPair(from, to)

	if _, err := from.debit(amount, "Transfer to "+toID); err != nil {
		unlock()
		log.Info().Err(err).Send()

		return result, err
	}

	to.credit(amount, "Transfer from "+fromID)

	result.FromEntry = from.appendTransfer(domain.TxTransferOut, amount, toID)
	result.ToEntry = to.appendTransfer(domain.TxTransferIn, amount, fromID)
	result.FromAccount = from.info()
	result.ToAccount = to.info()

	unlock()

	log.Info().Msg("transfer completed")

	return result, l.persist(ctx)
}
