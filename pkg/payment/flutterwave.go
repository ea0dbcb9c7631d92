package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
)

const EventChargeCompleted = "charge.completed"

// FlutterwaveOracle verifies transactions against the Flutterwave v3 API.
type FlutterwaveOracle struct {
	baseURL string
	client  *http.Client
}

// NewFlutterwaveOracle builds an oracle that authenticates with the secret key
// as a bearer token. timeout bounds every verification round trip.
func NewFlutterwaveOracle(baseURL, secretKey string, timeout time.Duration) *FlutterwaveOracle {
	client := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: secretKey,
		TokenType:   "Bearer",
	}))
	client.Timeout = timeout
	return &FlutterwaveOracle{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type flwTransaction struct {
	ID          int64           `json:"id"`
	TxRef       string          `json:"tx_ref"`
	FlwRef      string          `json:"flw_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	PaymentType string          `json:"payment_type"`
}

func (t *flwTransaction) verdict() (*Verdict, error) {
	minor, err := ToMinor(t.Amount)
	if err != nil {
		return nil, err
	}
	return &Verdict{
		TransactionID: strconv.FormatInt(t.ID, 10),
		TxRef:         t.TxRef,
		FlwRef:        t.FlwRef,
		Status:        t.Status,
		AmountMinor:   minor,
		Currency:      t.Currency,
		PaymentType:   t.PaymentType,
	}, nil
}

type flwVerifyResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    *flwTransaction `json:"data"`
}

func (f *FlutterwaveOracle) VerifyTransaction(ctx context.Context, transactionID string) (*Verdict, error) {
	endpoint := fmt.Sprintf("%s/v3/transactions/%s/verify", f.baseURL, url.PathEscape(transactionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrGateway, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}
	var out flwVerifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if out.Status != "success" || out.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrGateway, out.Message)
	}
	return out.Data.verdict()
}

// WebhookEvent is a Flutterwave callback body.
type WebhookEvent struct {
	Event string          `json:"event"`
	Data  *flwTransaction `json:"data"`
}

// ParseWebhook decodes a callback. Only call it after VerifyHash succeeded.
func ParseWebhook(body []byte) (*WebhookEvent, *Verdict, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ev.Event == "" || ev.Data == nil || ev.Data.TxRef == "" {
		return nil, nil, ErrMalformed
	}
	v, err := ev.Data.verdict()
	if err != nil {
		return nil, nil, err
	}
	return &ev, v, nil
}
