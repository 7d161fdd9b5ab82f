// Package domain holds the core data model of the payment network
// simulation. All balance mutation happens in the settlement engine; the
// types here carry no behavior beyond canonical serialization for hashing.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferKind tags a ledger payload with the settlement path that
// produced it.
type TransferKind string

const (
	KindGenesis   TransferKind = "genesis"
	KindIntraBank TransferKind = "intra-bank"
	KindCrossBank TransferKind = "cross-bank"
)

// MerchantAccount is a merchant registered with one bank. The ID is a
// 16-hex-digit identifier derived at registration and unique within the
// process. Balance is only ever mutated by the settlement engine.
type MerchantAccount struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Branch       string          `json:"branch"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
}

// UserAccount is a payer registered with one bank. MMID is the derived
// mobile-transaction handle presented instead of the full UID.
type UserAccount struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Branch       string          `json:"branch"`
	Mobile       string          `json:"mobile"`
	PIN          string          `json:"-"`
	MMID         string          `json:"mmid"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TransactionRecord is the payload of one ledger entry.
type TransactionRecord struct {
	ID        uuid.UUID       `json:"id"`
	From      string          `json:"from"` // payer handle (MMID), or empty for genesis
	To        string          `json:"to"`   // payee merchant ID, or empty for genesis
	Amount    decimal.Decimal `json:"amount"`
	Kind      TransferKind    `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
}

// Canonical returns the stable serialization of the record used as hash
// input. Any change here invalidates previously computed entry hashes.
func (r TransactionRecord) Canonical() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		r.ID, r.From, r.To, r.Amount.String(), r.Kind, r.Timestamp.UnixNano())
}

// LedgerEntry is one immutable link of a bank's hash chain.
type LedgerEntry struct {
	Index        uint64            `json:"index"`
	PreviousHash string            `json:"previous_hash"`
	Payload      TransactionRecord `json:"payload"`
	Timestamp    time.Time         `json:"timestamp"`
	Hash         string            `json:"hash"`
}

// MerchantSummary is the reporting view of a merchant account.
type MerchantSummary struct {
	Name    string          `json:"name"`
	Branch  string          `json:"branch"`
	Balance decimal.Decimal `json:"balance"`
}

// UserSummary is the reporting view of a user account.
type UserSummary struct {
	Name    string          `json:"name"`
	MMID    string          `json:"mmid"`
	Balance decimal.Decimal `json:"balance"`
}
