package payment

import (
	"context"
	"strings"
)

// StubOracle approves every transaction for local development. The transaction
// id doubles as the tx_ref, so clients verify with transaction_id == tx_ref.
type StubOracle struct {
	AmountMinor int64
	Currency    string
}

func (s *StubOracle) VerifyTransaction(ctx context.Context, transactionID string) (*Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Verdict{
		TransactionID: "stub-" + transactionID,
		TxRef:         transactionID,
		FlwRef:        "STUB-" + strings.ToUpper(transactionID),
		Status:        StatusSuccessful,
		AmountMinor:   s.AmountMinor,
		Currency:      s.Currency,
		PaymentType:   "stub",
	}, nil
}
