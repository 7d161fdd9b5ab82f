// Package settlement is the transaction settlement engine. It owns the
// orchestration of every operation the core exposes: registration, reporting,
// token obfuscation and the two transfer paths. Validation happens before
// any mutation; a returned error always means nothing changed.
package settlement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"upi/internal/cipher"
	"upi/internal/directory"
	"upi/internal/domain"
	"upi/internal/registry"
	"upi/pkg/errors"
	"upi/pkg/logger"
)

// Service orchestrates transfers against the shared bank collection. The
// registry and directory are injected at construction; the engine holds no
// state of its own.
type Service struct {
	registry  *registry.Service
	directory *directory.Service
	logger    logger.Logger
}

func NewService(reg *registry.Service, dir *directory.Service, log logger.Logger) *Service {
	return &Service{
		registry:  reg,
		directory: dir,
		logger:    log,
	}
}

// RegisterBank creates the named bank; registering an existing bank is a
// no-op. Returns the bank's recognized branch codes.
func (s *Service) RegisterBank(name string) []string {
	b := s.registry.RegisterBank(name)
	return b.Branches()
}

// RegisterMerchant registers a merchant with the named bank, creating the
// bank on first reference, and feeds the token index.
func (s *Service) RegisterMerchant(req *RegisterMerchantRequest) (string, error) {
	b := s.registry.RegisterBank(req.Bank)

	mid, err := b.RegisterMerchant(req.Name, req.Password, req.Branch, req.Balance)
	if err != nil {
		return "", err
	}

	if err := s.directory.AddMerchant(req.Bank, mid); err != nil {
		return "", errors.Wrap(err, "index merchant token")
	}

	s.logger.Info("Merchant registered", map[string]interface{}{
		"bank":   req.Bank,
		"mid":    mid,
		"branch": req.Branch,
	})
	return mid, nil
}

// RegisterUser registers a user with the named bank, creating the bank on
// first reference. Returns the derived UID and MMID.
func (s *Service) RegisterUser(req *RegisterUserRequest) (string, string, error) {
	b := s.registry.RegisterBank(req.Bank)

	uid, mmid, err := b.RegisterUser(req.Name, req.Password, req.Branch, req.Mobile, req.PIN, req.Balance)
	if err != nil {
		return "", "", err
	}

	s.logger.Info("User registered", map[string]interface{}{
		"bank":   req.Bank,
		"uid":    uid,
		"branch": req.Branch,
	})
	return uid, mmid, nil
}

// ListMerchants reports every bank's merchant registry. Banks without
// merchants are omitted.
func (s *Service) ListMerchants() map[string]map[string]domain.MerchantSummary {
	out := make(map[string]map[string]domain.MerchantSummary)
	for _, b := range s.registry.All() {
		merchants := b.Merchants()
		if len(merchants) > 0 {
			out[b.Name()] = merchants
		}
	}
	return out
}

// ListUsers reports every bank's user registry. Banks without users are
// omitted.
func (s *Service) ListUsers() map[string]map[string]domain.UserSummary {
	out := make(map[string]map[string]domain.UserSummary)
	for _, b := range s.registry.All() {
		users := b.Users()
		if len(users) > 0 {
			out[b.Name()] = users
		}
	}
	return out
}

// ObfuscateMerchantID returns the externally shareable token for a MID.
func (s *Service) ObfuscateMerchantID(mid string) (string, error) {
	return cipher.ObfuscateMerchantID(mid)
}

// TransferSameBank settles a transfer where payer and merchant hold
// accounts at the same bank. The token may resolve to any bank; when the
// resolved merchant is not registered with the stated one the settlement
// fails with the coarse transaction error.
func (s *Service) TransferSameBank(req *SameBankTransferRequest) (*Receipt, error) {
	b, err := s.registry.Get(req.Bank)
	if err != nil {
		return nil, err
	}

	loc, err := s.directory.Resolve(req.Token)
	if err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, errors.ErrTransactionFailed
	}

	entry, err := b.SettleLocal(loc.MerchantID, req.MMID, req.PIN, req.Amount)
	if err != nil {
		s.logger.Warn("Same-bank transfer failed", map[string]interface{}{
			"bank": req.Bank,
			"mid":  loc.MerchantID,
		})
		return nil, err
	}

	s.logger.Info("Same-bank transfer settled", map[string]interface{}{
		"bank":   req.Bank,
		"mid":    loc.MerchantID,
		"amount": req.Amount.String(),
		"index":  entry.Index,
	})
	return receiptFor(entry, req.Bank, req.Bank, loc.MerchantID), nil
}

// TransferCrossBank settles a transfer where the payer banks with the
// sender bank and the merchant with the merchant bank. Both ledgers record
// the same transaction.
func (s *Service) TransferCrossBank(req *CrossBankTransferRequest) (*Receipt, error) {
	sender, err := s.registry.Get(req.SenderBank)
	if err != nil {
		return nil, err
	}
	receiver, err := s.registry.Get(req.MerchantBank)
	if err != nil {
		return nil, err
	}

	loc, err := s.directory.Resolve(req.Token)
	if err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, errors.ErrTransactionFailed
	}

	entries, err := sender.SettleCross(receiver, loc.MerchantID, req.MMID, req.PIN, req.Amount)
	if err != nil {
		s.logger.Warn("Cross-bank transfer failed", map[string]interface{}{
			"sender_bank":   req.SenderBank,
			"merchant_bank": req.MerchantBank,
			"mid":           loc.MerchantID,
		})
		return nil, err
	}

	s.logger.Info("Cross-bank transfer settled", map[string]interface{}{
		"sender_bank":   req.SenderBank,
		"merchant_bank": req.MerchantBank,
		"mid":           loc.MerchantID,
		"amount":        req.Amount.String(),
	})
	return receiptFor(entries[0], req.SenderBank, req.MerchantBank, loc.MerchantID), nil
}

// GetLedger returns an ordered snapshot of a bank's chain.
func (s *Service) GetLedger(bankName string) ([]domain.LedgerEntry, error) {
	b, err := s.registry.Get(bankName)
	if err != nil {
		return nil, err
	}
	return b.LedgerSnapshot(), nil
}

// VerifyLedger checks a bank's chain integrity, returning
// ErrLedgerIntegrityViolation when verification fails. Corruption is
// reported, never repaired.
func (s *Service) VerifyLedger(bankName string) error {
	b, err := s.registry.Get(bankName)
	if err != nil {
		return err
	}
	if !b.VerifyLedger() {
		return errors.Wrap(errors.ErrLedgerIntegrityViolation, bankName)
	}
	return nil
}

func receiptFor(entry domain.LedgerEntry, senderBank, merchantBank, mid string) *Receipt {
	return &Receipt{
		TransactionID: entry.Payload.ID,
		SenderBank:    senderBank,
		MerchantBank:  merchantBank,
		MerchantID:    mid,
		Amount:        entry.Payload.Amount,
		Kind:          entry.Payload.Kind,
	}
}

// Receipt summarizes one settled transfer for the caller.
type Receipt struct {
	TransactionID uuid.UUID           `json:"transaction_id"`
	SenderBank    string              `json:"sender_bank"`
	MerchantBank  string              `json:"merchant_bank"`
	MerchantID    string              `json:"merchant_id"`
	Amount        decimal.Decimal     `json:"amount"`
	Kind          domain.TransferKind `json:"kind"`
}
