package bank

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"upi/internal/domain"
	"upi/pkg/errors"
)

// SettleLocal performs the same-bank check-then-mutate sequence as one
// critical section: match the payer by suffix, verify PIN and funds, debit
// the payer, credit the merchant and append one intra-bank ledger entry.
// On any failure no state changes and ErrTransactionFailed is returned; the
// coarse error deliberately does not distinguish unknown payer, bad PIN and
// insufficient funds.
func (b *Bank) SettleLocal(mid, mmid, pin string, amount decimal.Decimal) (domain.LedgerEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	merchant, ok := b.merchants[mid]
	if !ok {
		return domain.LedgerEntry{}, errors.ErrTransactionFailed
	}

	payer := b.payerBySuffix(mmid)
	if payer == nil || payer.PIN != pin || payer.Balance.LessThan(amount) {
		return domain.LedgerEntry{}, errors.ErrTransactionFailed
	}

	payer.Balance = payer.Balance.Sub(amount)
	merchant.Balance = merchant.Balance.Add(amount)

	entry := b.ledger.Append(domain.TransactionRecord{
		ID:        uuid.New(),
		From:      mmid,
		To:        mid,
		Amount:    amount,
		Kind:      domain.KindIntraBank,
		Timestamp: time.Now(),
	})
	return entry, nil
}

// SettleCross moves funds from a payer at the sender bank to a merchant at
// the receiving bank, appending one cross-bank entry to each ledger. Both
// banks are locked for the whole unit, acquired in name order so two
// opposite-direction transfers cannot deadlock. The payer is matched by
// exact MMID equality, not the suffix check the same-bank path uses.
func (sender *Bank) SettleCross(receiver *Bank, mid, mmid, pin string, amount decimal.Decimal) ([]domain.LedgerEntry, error) {
	if sender == receiver {
		entry, err := sender.settleCrossSameBank(mid, mmid, pin, amount)
		if err != nil {
			return nil, err
		}
		return []domain.LedgerEntry{entry}, nil
	}

	first, second := sender, receiver
	if second.name < first.name {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	merchant, ok := receiver.merchants[mid]
	if !ok {
		return nil, errors.ErrTransactionFailed
	}

	payer := sender.payerByMMID(mmid)
	if payer == nil || payer.PIN != pin || payer.Balance.LessThan(amount) {
		return nil, errors.ErrTransactionFailed
	}

	payer.Balance = payer.Balance.Sub(amount)
	merchant.Balance = merchant.Balance.Add(amount)

	record := domain.TransactionRecord{
		ID:        uuid.New(),
		From:      mmid,
		To:        mid,
		Amount:    amount,
		Kind:      domain.KindCrossBank,
		Timestamp: time.Now(),
	}
	senderEntry := sender.ledger.Append(record)
	receiverEntry := receiver.ledger.Append(record)

	return []domain.LedgerEntry{senderEntry, receiverEntry}, nil
}

// settleCrossSameBank handles the degenerate case where both parties bank
// at the same institution but the caller used the cross-bank path. One lock,
// one ledger, still tagged cross-bank and still matched by exact MMID.
func (b *Bank) settleCrossSameBank(mid, mmid, pin string, amount decimal.Decimal) (domain.LedgerEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	merchant, ok := b.merchants[mid]
	if !ok {
		return domain.LedgerEntry{}, errors.ErrTransactionFailed
	}

	payer := b.payerByMMID(mmid)
	if payer == nil || payer.PIN != pin || payer.Balance.LessThan(amount) {
		return domain.LedgerEntry{}, errors.ErrTransactionFailed
	}

	payer.Balance = payer.Balance.Sub(amount)
	merchant.Balance = merchant.Balance.Add(amount)

	entry := b.ledger.Append(domain.TransactionRecord{
		ID:        uuid.New(),
		From:      mmid,
		To:        mid,
		Amount:    amount,
		Kind:      domain.KindCrossBank,
		Timestamp: time.Now(),
	})
	return entry, nil
}
