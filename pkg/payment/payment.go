package payment

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const StatusSuccessful = "successful"

var (
	ErrGateway         = errors.New("payment gateway error")
	ErrMalformed       = errors.New("malformed gateway response")
	ErrFractionalMinor = errors.New("amount has fractional minor units")
)

// Verdict is the gateway's authoritative view of one transaction.
type Verdict struct {
	TransactionID string
	TxRef         string
	FlwRef        string
	Status        string
	AmountMinor   int64
	Currency      string
	PaymentType   string
}

func (v *Verdict) Successful() bool {
	return v.Status == StatusSuccessful
}

// Oracle verifies a transaction with the payment gateway.
type Oracle interface {
	VerifyTransaction(ctx context.Context, transactionID string) (*Verdict, error)
}

// ToMinor converts a major-unit gateway amount to integer minor units.
func ToMinor(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(decimal.NewFromInt(100))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s", ErrFractionalMinor, amount.String())
	}
	return minor.IntPart(), nil
}

// VerifyHash compares the webhook hash header against the shared secret in
// constant time. An empty secret never verifies.
func VerifyHash(header, secret string) bool {
	if secret == "" || header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(secret)) == 1
}
