// Package bank implements a single logical bank: its branch set, its
// merchant and user registries and its ledger. Every read-then-write path
// runs under the bank's lock, so one bank's state is always internally
// consistent; multi-bank consistency is the settlement package's job.
package bank

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"upi/internal/domain"
	"upi/internal/ledger"
	"upi/pkg/errors"
)

const (
	branchesPerBank = 3
	idHexWidth      = 16
	uidSuffixLen    = 6
	mobileSuffixLen = 4
)

// Bank owns its registries and its ledger exclusively. Accounts are never
// deleted; balances are mutated only by the settle methods below.
type Bank struct {
	mu        sync.RWMutex
	name      string
	branches  []string
	merchants map[string]*domain.MerchantAccount
	users     map[string]*domain.UserAccount
	ledger    *ledger.Ledger
}

// New creates a bank with its recognized branch codes (NAME001..NAME003)
// and a fresh genesis ledger.
func New(name string) *Bank {
	branches := make([]string, 0, branchesPerBank)
	for i := 1; i <= branchesPerBank; i++ {
		branches = append(branches, fmt.Sprintf("%s%03d", name, i))
	}

	return &Bank{
		name:      name,
		branches:  branches,
		merchants: make(map[string]*domain.MerchantAccount),
		users:     make(map[string]*domain.UserAccount),
		ledger:    ledger.New(),
	}
}

func (b *Bank) Name() string { return b.name }

// Branches returns a copy of the recognized branch codes.
func (b *Bank) Branches() []string {
	out := make([]string, len(b.branches))
	copy(out, b.branches)
	return out
}

func (b *Bank) recognizesBranch(branch string) bool {
	for _, code := range b.branches {
		if code == branch {
			return true
		}
	}
	return false
}

// RegisterMerchant validates the branch, derives a unique MID and stores
// the account. The raw password feeds the identifier derivation; only a
// bcrypt hash is kept.
func (b *Bank) RegisterMerchant(name, password, branch string, balance decimal.Decimal) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.recognizesBranch(branch) {
		return "", errors.Wrap(errors.ErrInvalidBranch, branch)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash merchant credential")
	}

	mid := deriveID(name, password)
	for _, exists := b.merchants[mid]; exists; _, exists = b.merchants[mid] {
		mid = deriveID(name, password)
	}

	b.merchants[mid] = &domain.MerchantAccount{
		ID:           mid,
		Name:         name,
		Branch:       branch,
		PasswordHash: string(hash),
		Balance:      balance,
		CreatedAt:    time.Now(),
	}
	return mid, nil
}

// RegisterUser validates the branch, derives a unique UID and its MMID and
// stores the account. The derivation re-rolls while either the UID or the
// resulting MMID collides within this bank.
func (b *Bank) RegisterUser(name, password, branch, mobile, pin string, balance decimal.Decimal) (string, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.recognizesBranch(branch) {
		return "", "", errors.Wrap(errors.ErrInvalidBranch, branch)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", errors.Wrap(err, "hash user credential")
	}

	uid := deriveID(name, password)
	mmid := deriveMMID(uid, mobile)
	for b.uidOrMMIDTaken(uid, mmid) {
		uid = deriveID(name, password)
		mmid = deriveMMID(uid, mobile)
	}

	b.users[uid] = &domain.UserAccount{
		ID:           uid,
		Name:         name,
		Branch:       branch,
		Mobile:       mobile,
		PIN:          pin,
		MMID:         mmid,
		PasswordHash: string(hash),
		Balance:      balance,
		CreatedAt:    time.Now(),
	}
	return uid, mmid, nil
}

func (b *Bank) uidOrMMIDTaken(uid, mmid string) bool {
	if _, exists := b.users[uid]; exists {
		return true
	}
	for _, u := range b.users {
		if u.MMID == mmid {
			return true
		}
	}
	return false
}

// MerchantIDs returns the registered MIDs. Used by the directory's
// forward-search resolution path.
func (b *Bank) MerchantIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.merchants))
	for mid := range b.merchants {
		ids = append(ids, mid)
	}
	return ids
}

// HasMerchant reports whether a MID is registered with this bank.
func (b *Bank) HasMerchant(mid string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.merchants[mid]
	return ok
}

// Merchants returns a reporting snapshot of the merchant registry.
func (b *Bank) Merchants() map[string]domain.MerchantSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]domain.MerchantSummary, len(b.merchants))
	for mid, m := range b.merchants {
		out[mid] = domain.MerchantSummary{Name: m.Name, Branch: m.Branch, Balance: m.Balance}
	}
	return out
}

// Users returns a reporting snapshot of the user registry.
func (b *Bank) Users() map[string]domain.UserSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]domain.UserSummary, len(b.users))
	for uid, u := range b.users {
		out[uid] = domain.UserSummary{Name: u.Name, MMID: u.MMID, Balance: u.Balance}
	}
	return out
}

// MerchantBalance returns a merchant's current balance.
func (b *Bank) MerchantBalance(mid string) (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.merchants[mid]
	if !ok {
		return decimal.Zero, false
	}
	return m.Balance, true
}

// UserBalance returns a user's current balance.
func (b *Bank) UserBalance(uid string) (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.users[uid]
	if !ok {
		return decimal.Zero, false
	}
	return u.Balance, true
}

// LedgerSnapshot returns a copy of the bank's chain. Taken under the read
// lock so it never observes a half-applied transfer.
func (b *Bank) LedgerSnapshot() []domain.LedgerEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.Snapshot()
}

// VerifyLedger checks the chain's structural integrity.
func (b *Bank) VerifyLedger() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.Verify()
}

// deriveID derives a 16-hex-digit identifier from the account details and a
// high-resolution timestamp. Uniqueness is probabilistic; callers re-roll
// on the rare collision.
func deriveID(name, password string) string {
	input := fmt.Sprintf("%s%s%d", name, password, time.Now().UnixNano())
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:idHexWidth]
}

// deriveMMID concatenates the UID and mobile suffixes. Callers depend on
// this exact shape: same-bank payer matching searches for both suffixes
// inside the presented handle.
func deriveMMID(uid, mobile string) string {
	return suffix(uid, uidSuffixLen) + suffix(mobile, mobileSuffixLen)
}

func suffix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// payerBySuffix matches a user by checking that both the mobile suffix and
// the UID suffix appear somewhere in the presented MMID. Same-bank
// transfers match this way; cross-bank transfers use payerByMMID instead.
func (b *Bank) payerBySuffix(mmid string) *domain.UserAccount {
	for uid, u := range b.users {
		if strings.Contains(mmid, suffix(u.Mobile, mobileSuffixLen)) &&
			strings.Contains(mmid, suffix(uid, uidSuffixLen)) {
			return u
		}
	}
	return nil
}

// payerByMMID matches a user by exact MMID equality. This is the
// cross-bank matching strategy.
func (b *Bank) payerByMMID(mmid string) *domain.UserAccount {
	for _, u := range b.users {
		if u.MMID == mmid {
			return u
		}
	}
	return nil
}
