// Package registry holds the process-wide collection of banks. It is the
// single shared mutable structure every caller goes through; there is no
// other global state.
package registry

import (
	"sort"
	"sync"

	"upi/internal/bank"
	"upi/pkg/errors"
)

// Service is the lock-protected bank collection injected into the
// settlement engine and the identity directory at construction.
type Service struct {
	mu    sync.RWMutex
	banks map[string]*bank.Bank
}

func New() *Service {
	return &Service{banks: make(map[string]*bank.Bank)}
}

// RegisterBank creates the named bank if it does not exist. Registering an
// existing name is a no-op returning the existing bank.
func (s *Service) RegisterBank(name string) *bank.Bank {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.banks[name]; ok {
		return b
	}
	b := bank.New(name)
	s.banks[name] = b
	return b
}

// Get returns the named bank or ErrBankNotFound.
func (s *Service) Get(name string) (*bank.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.banks[name]
	if !ok {
		return nil, errors.Wrap(errors.ErrBankNotFound, name)
	}
	return b, nil
}

// Names returns the registered bank names in sorted order.
func (s *Service) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.banks))
	for name := range s.banks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the banks in name order. The slice is a snapshot; the banks
// themselves are live and guard their own state.
func (s *Service) All() []*bank.Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()

	banks := make([]*bank.Bank, 0, len(s.banks))
	for _, b := range s.banks {
		banks = append(banks, b)
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i].Name() < banks[j].Name() })
	return banks
}
