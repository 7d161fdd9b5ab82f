// Package directory resolves an obfuscated merchant token back to the
// (bank, merchant ID) pair it was derived from. The cipher has no decrypt
// direction, so resolution is forward search: obfuscate every known MID and
// compare. A reverse index fed on registration keeps the common case O(1);
// the scan remains as the fallback and yields identical results because the
// cipher is deterministic.
package directory

import (
	"sync"

	"upi/internal/cipher"
	"upi/internal/registry"
	"upi/pkg/errors"
)

// Location names the bank a merchant ID is registered with.
type Location struct {
	BankName   string
	MerchantID string
}

// Service holds a read reference to the bank collection; it owns nothing
// but its token index.
type Service struct {
	registry *registry.Service

	mu    sync.RWMutex
	index map[string]Location
}

func New(reg *registry.Service) *Service {
	return &Service{
		registry: reg,
		index:    make(map[string]Location),
	}
}

// AddMerchant records a freshly registered merchant in the token index.
func (s *Service) AddMerchant(bankName, mid string) error {
	token, err := cipher.ObfuscateMerchantID(mid)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.index[token] = Location{BankName: bankName, MerchantID: mid}
	s.mu.Unlock()
	return nil
}

// Resolve returns the bank and merchant ID a token maps to, or
// ErrUnknownMerchantToken when no registered merchant produces it.
func (s *Service) Resolve(token string) (Location, error) {
	s.mu.RLock()
	loc, ok := s.index[token]
	s.mu.RUnlock()
	if ok {
		return loc, nil
	}

	// Fallback: forward search across every merchant of every bank.
	// Backfills the index on a hit.
	for _, b := range s.registry.All() {
		for _, mid := range b.MerchantIDs() {
			candidate, err := cipher.ObfuscateMerchantID(mid)
			if err != nil {
				continue
			}
			if candidate == token {
				loc = Location{BankName: b.Name(), MerchantID: mid}
				s.mu.Lock()
				s.index[token] = loc
				s.mu.Unlock()
				return loc, nil
			}
		}
	}

	return Location{}, errors.ErrUnknownMerchantToken
}
