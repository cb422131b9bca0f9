package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod selects the simulated provider. Values other than the named
// ones are accepted and settle on the default path.
type PaymentMethod string

const (
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodMomo   PaymentMethod = "momo"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// PaymentRequest is a payment handed to the gateway. Nothing in it is
// validated.
type PaymentRequest struct {
	ID        string          `json:"id,omitempty"`
	Method    PaymentMethod   `json:"method"`
	Account   string          `json:"account"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

// PaymentOutcome is the settlement result of a simulated payment.
type PaymentOutcome struct {
	Success   bool            `json:"success"`
	Provider  PaymentMethod   `json:"provider"`
	Account   string          `json:"account"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	TxID      string          `json:"txId"`
	Time      time.Time       `json:"time"`
	Message   string          `json:"message"`
}
