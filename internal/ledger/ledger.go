// Package ledger implements the per-bank append-only transaction log. Each
// entry links to its predecessor by hash, so any post-hoc edit of a payload
// or a link is detectable by Verify.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"upi/internal/domain"
)

// genesisPreviousHash is the previous-hash value of the first entry.
const genesisPreviousHash = "0"

// Ledger is an append-only hash chain of transaction records. It is not
// safe for concurrent use on its own; the owning bank serializes access.
type Ledger struct {
	entries []domain.LedgerEntry
}

// New constructs a ledger containing only the genesis entry.
func New() *Ledger {
	now := time.Now()
	genesis := domain.LedgerEntry{
		Index:        0,
		PreviousHash: genesisPreviousHash,
		Payload: domain.TransactionRecord{
			ID:        uuid.New(),
			Amount:    decimal.Zero,
			Kind:      domain.KindGenesis,
			Timestamp: now,
		},
		Timestamp: now,
	}
	genesis.Hash = entryHash(genesis)

	return &Ledger{entries: []domain.LedgerEntry{genesis}}
}

// Append adds one immutable entry recording the given transaction and
// returns it. Entries are never removed or reordered.
func (l *Ledger) Append(record domain.TransactionRecord) domain.LedgerEntry {
	last := l.entries[len(l.entries)-1]

	entry := domain.LedgerEntry{
		Index:        last.Index + 1,
		PreviousHash: last.Hash,
		Payload:      record,
		Timestamp:    time.Now(),
	}
	entry.Hash = entryHash(entry)

	l.entries = append(l.entries, entry)
	return entry
}

// Verify recomputes every entry's hash from its stored fields and checks
// each previous-hash link. A false result signals tampering or a bug; it is
// reported, never repaired.
func (l *Ledger) Verify() bool {
	for i, current := range l.entries {
		if current.Hash != entryHash(current) {
			return false
		}
		if i > 0 && current.PreviousHash != l.entries[i-1].Hash {
			return false
		}
	}
	return true
}

// Length returns the number of entries including genesis.
func (l *Ledger) Length() int {
	return len(l.entries)
}

// Snapshot returns a copy of the chain for reporting.
func (l *Ledger) Snapshot() []domain.LedgerEntry {
	out := make([]domain.LedgerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// entryHash digests the entry's index, previous hash, canonical payload and
// timestamp. The serialization must stay stable or old chains stop
// verifying.
func entryHash(e domain.LedgerEntry) string {
	input := fmt.Sprintf("%d|%s|%s|%d",
		e.Index, e.PreviousHash, e.Payload.Canonical(), e.Timestamp.UnixNano())
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
