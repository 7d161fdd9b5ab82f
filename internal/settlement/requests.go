package settlement

import "github.com/shopspring/decimal"

// Request DTOs for the engine's operations. Validation tags are enforced at
// the request-handling boundary; the engine re-checks the invariants that
// matter for atomicity (positive amount, branch membership) itself.

type RegisterMerchantRequest struct {
	Bank     string          `json:"bank" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Password string          `json:"password" validate:"required,min=4"`
	Branch   string          `json:"branch" validate:"required"`
	Balance  decimal.Decimal `json:"balance" validate:"gte=0"`
}

type RegisterUserRequest struct {
	Bank     string          `json:"bank" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Password string          `json:"password" validate:"required,min=4"`
	Branch   string          `json:"branch" validate:"required"`
	Mobile   string          `json:"mobile" validate:"required,mobile"`
	PIN      string          `json:"pin" validate:"required,pin"`
	Balance  decimal.Decimal `json:"balance" validate:"gte=0"`
}

type SameBankTransferRequest struct {
	Bank   string          `json:"bank" validate:"required"`
	Token  string          `json:"token" validate:"required,hexid"`
	MMID   string          `json:"mmid" validate:"required"`
	PIN    string          `json:"pin" validate:"required,pin"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

type CrossBankTransferRequest struct {
	SenderBank   string          `json:"sender_bank" validate:"required"`
	MerchantBank string          `json:"merchant_bank" validate:"required"`
	Token        string          `json:"token" validate:"required,hexid"`
	MMID         string          `json:"mmid" validate:"required"`
	PIN          string          `json:"pin" validate:"required,pin"`
	Amount       decimal.Decimal `json:"amount" validate:"gt=0"`
}
