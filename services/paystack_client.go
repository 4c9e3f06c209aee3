package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultPaystackBaseURL = "https://api.paystack.co"

// VerifyResult is the subset of a gateway verification the booking flow
// needs. AmountMinor is in the currency's minor unit.
type VerifyResult struct {
	Status        string
	Reference     string
	TransactionID string
	AmountMinor   int64
	Currency      string
	Raw           json.RawMessage
}

type PaymentVerifier interface {
	Verify(ctx context.Context, reference string) (VerifyResult, error)
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID        json.Number `json:"id"`
		Status    string      `json:"status"`
		Reference string      `json:"reference"`
		Amount    json.Number `json:"amount"`
		Currency  string      `json:"currency"`
	} `json:"data"`
}

// PaystackClient calls the Paystack transaction verification endpoint.
type PaystackClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewPaystackClient(baseURL, secretKey string, logger *zap.Logger) *PaystackClient {
	if baseURL == "" {
		baseURL = DefaultPaystackBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetAuthToken(secretKey).
		SetHeader("Accept", "application/json")
	return &PaystackClient{httpClient: client, logger: logger}
}

func (c *PaystackClient) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	var body paystackVerifyResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/transaction/verify/" + url.PathEscape(reference))
	if err != nil {
		c.logger.Error("paystack verify failed", zap.String("reference", reference), zap.Error(err))
		return VerifyResult{}, fmt.Errorf("paystack verify: %w", err)
	}
	if resp.IsError() {
		c.logger.Warn("paystack verify rejected",
			zap.String("reference", reference),
			zap.Int("status_code", resp.StatusCode()),
		)
		return VerifyResult{}, fmt.Errorf("paystack verify: http %d", resp.StatusCode())
	}
	if !body.Status {
		return VerifyResult{}, fmt.Errorf("paystack verify: %s", body.Message)
	}
	amount, err := strconv.ParseInt(body.Data.Amount.String(), 10, 64)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("paystack verify: amount %q: %w", body.Data.Amount, err)
	}
	return VerifyResult{
		Status:        body.Data.Status,
		Reference:     body.Data.Reference,
		TransactionID: body.Data.ID.String(),
		AmountMinor:   amount,
		Currency:      body.Data.Currency,
		Raw:           json.RawMessage(resp.Body()),
	}, nil
}
