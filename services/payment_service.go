package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"myhotel/models"
	"myhotel/utils"

	"go.uber.org/zap"
)

// PaymentStore keeps payment intents between the redirect to the gateway and
// booking submission.
type PaymentStore interface {
	SetExpectedAmount(ctx context.Context, ref string, amount float64, ttl time.Duration) error
	ExpectedAmount(ctx context.Context, ref string) (float64, bool, error)
	SetVerifiedPayment(ctx context.Context, ref string, payload []byte, ttl time.Duration) error
	VerifiedPayment(ctx context.Context, ref string) ([]byte, bool, error)
	ClaimVerifiedPayment(ctx context.Context, ref string) ([]byte, bool, error)
	ConsumePayment(ctx context.Context, ref string) error
}

type PaymentService struct {
	Store         PaymentStore
	Verifier      PaymentVerifier
	Bookings      *BookingService
	WebhookSecret string
	IntentTTL     time.Duration
	Log           *zap.Logger
}

func NewPaymentService(store PaymentStore, verifier PaymentVerifier, bookings *BookingService, webhookSecret string, ttl time.Duration, log *zap.Logger) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PaymentService{
		Store:         store,
		Verifier:      verifier,
		Bookings:      bookings,
		WebhookSecret: webhookSecret,
		IntentTTL:     ttl,
		Log:           log,
	}
}

func cleanReference(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", Validation("missing_reference", "Payment reference is required.")
	}
	return ref, nil
}

// StoreExpectedAmount records the amount the customer is about to pay.
func (s *PaymentService) StoreExpectedAmount(ctx context.Context, ref string, amount float64) error {
	ref, err := cleanReference(ref)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return Validation("invalid_amount", "Amount must be greater than zero.")
	}
	if err := s.Store.SetExpectedAmount(ctx, ref, utils.RoundMoney(amount), s.IntentTTL); err != nil {
		return Internal(err)
	}
	return nil
}

// Verify asks the gateway about ref and compares the paid amount with the
// recorded expectation. A matching success is kept for booking submission.
func (s *PaymentService) Verify(ctx context.Context, ref string) (PaymentProof, error) {
	ref, err := cleanReference(ref)
	if err != nil {
		return PaymentProof{}, err
	}
	expected, ok, err := s.Store.ExpectedAmount(ctx, ref)
	if err != nil {
		return PaymentProof{}, Internal(err)
	}
	if !ok {
		return PaymentProof{}, PaymentFailed("payment_intent_missing", "No expected amount was recorded for this payment.")
	}
	res, err := s.Verifier.Verify(ctx, ref)
	if err != nil {
		s.Log.Warn("payment verification failed", zap.String("reference", ref), zap.Error(err))
		e := PaymentFailed("payment_verification_failed", "Payment could not be verified.")
		e.Err = err
		return PaymentProof{}, e
	}
	proof := PaymentProof{
		Reference:      ref,
		Status:         res.Status,
		TransactionID:  res.TransactionID,
		PaidAmount:     utils.RoundMoney(float64(res.AmountMinor) / 100),
		ExpectedAmount: expected,
		Payload:        res.Raw,
	}
	if !strings.EqualFold(proof.Status, "success") {
		return proof, PaymentFailed("payment_not_successful", fmt.Sprintf("Payment status is %q.", proof.Status))
	}
	if !utils.AmountsMatch(proof.PaidAmount, expected) {
		s.Log.Warn("payment amount mismatch",
			zap.String("reference", ref),
			zap.Float64("paid", proof.PaidAmount),
			zap.Float64("expected", expected),
		)
		return proof, PaymentFailed("payment_mismatch",
			fmt.Sprintf("Paid amount %.2f does not match the expected amount %.2f.", proof.PaidAmount, expected))
	}
	raw, err := json.Marshal(proof)
	if err != nil {
		return proof, Internal(err)
	}
	if err := s.Store.SetVerifiedPayment(ctx, ref, raw, s.IntentTTL); err != nil {
		return proof, Internal(err)
	}
	return proof, nil
}

// Proof returns the verified payment stored for ref.
func (s *PaymentService) Proof(ctx context.Context, ref string) (*PaymentProof, error) {
	ref, err := cleanReference(ref)
	if err != nil {
		return nil, err
	}
	raw, ok, err := s.Store.VerifiedPayment(ctx, ref)
	if err != nil {
		return nil, Internal(err)
	}
	if !ok {
		return nil, PaymentFailed("payment_not_verified", "Payment has not been verified.")
	}
	var proof PaymentProof
	if err := json.Unmarshal(raw, &proof); err != nil {
		return nil, Internal(err)
	}
	return &proof, nil
}

// Checkout claims the verified payment for ref and books with it. The claim
// is atomic, so one proof pays for at most one booking request; a failed
// booking puts the proof back for a retry.
func (s *PaymentService) Checkout(ctx context.Context, ref string, req CreateBookingRequest) ([]models.Booking, error) {
	ref, err := cleanReference(ref)
	if err != nil {
		return nil, err
	}
	raw, ok, err := s.Store.ClaimVerifiedPayment(ctx, ref)
	if err != nil {
		return nil, Internal(err)
	}
	if !ok {
		return nil, PaymentFailed("payment_not_verified", "Payment has not been verified.")
	}
	var proof PaymentProof
	if err := json.Unmarshal(raw, &proof); err != nil {
		return nil, Internal(err)
	}

	req.RequirePayment = true
	req.Payment = &proof
	bookings, err := s.Bookings.Create(ctx, req)
	if err != nil {
		if rerr := s.Store.SetVerifiedPayment(ctx, ref, raw, s.IntentTTL); rerr != nil {
			s.Log.Error("failed to release payment claim", zap.String("reference", ref), zap.Error(rerr))
		}
		return nil, err
	}
	if err := s.Store.ConsumePayment(ctx, ref); err != nil {
		s.Log.Warn("failed to clear payment intent", zap.String("reference", ref), zap.Error(err))
	}
	return bookings, nil
}

// SignWebhook is the gateway signature: hex HMAC-SHA512 of the body.
func SignWebhook(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// HandleWebhook checks the signature and confirms pending bookings on
// charge.success. It returns the number of bookings confirmed.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (int, error) {
	if s.WebhookSecret == "" {
		return 0, Forbidden("webhook_disabled", "Webhook is not configured.")
	}
	expected := SignWebhook(s.WebhookSecret, body)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return 0, Unauthorized("invalid_signature", "Invalid webhook signature.")
	}
	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return 0, Validation("invalid_payload", "Webhook payload is not valid JSON.")
	}
	if ev.Event != "charge.success" {
		return 0, nil
	}
	n, err := s.Bookings.ConfirmByPaymentReference(ctx, ev.Data.Reference)
	if err != nil {
		return 0, err
	}
	s.Log.Info("payment webhook processed", zap.String("reference", ev.Data.Reference), zap.Int("confirmed", n))
	return n, nil
}
