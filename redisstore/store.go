// Package redisstore keeps short-lived state in Redis: auth tokens, payment
// intents and verified payment proofs, and login rate limits.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

type Store struct {
	Client *redis.Client
}

// New connects and pings. The caller owns Close.
func New(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     50,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &Store{Client: client}, nil
}

func NewWithClient(client *redis.Client) *Store {
	return &Store{Client: client}
}

func (s *Store) Close() error {
	return s.Client.Close()
}

func expectedAmountKey(ref string) string { return "payment:" + ref + ":expected" }

func verifiedPaymentKey(ref string) string { return "payment:" + ref + ":verified" }

func tokenKey(token string) string { return "auth:token:" + token }

func loginAttemptsKey(username string) string { return "auth:attempts:" + username }

// SetExpectedAmount records what the customer is about to pay for ref.
func (s *Store) SetExpectedAmount(ctx context.Context, ref string, amount float64, ttl time.Duration) error {
	return s.Client.Set(ctx, expectedAmountKey(ref), strconv.FormatFloat(amount, 'f', 2, 64), ttl).Err()
}

func (s *Store) ExpectedAmount(ctx context.Context, ref string) (float64, bool, error) {
	raw, err := s.Client.Get(ctx, expectedAmountKey(ref)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("expected amount for %s: %w", ref, err)
	}
	return v, true, nil
}

func (s *Store) SetVerifiedPayment(ctx context.Context, ref string, payload []byte, ttl time.Duration) error {
	return s.Client.Set(ctx, verifiedPaymentKey(ref), payload, ttl).Err()
}

func (s *Store) VerifiedPayment(ctx context.Context, ref string) ([]byte, bool, error) {
	raw, err := s.Client.Get(ctx, verifiedPaymentKey(ref)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// ClaimVerifiedPayment atomically takes the verified proof for ref. Only one
// caller can claim a given proof; the rest see ok == false.
func (s *Store) ClaimVerifiedPayment(ctx context.Context, ref string) ([]byte, bool, error) {
	raw, err := s.Client.GetDel(ctx, verifiedPaymentKey(ref)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// ConsumePayment drops both payment keys once a booking has used them.
func (s *Store) ConsumePayment(ctx context.Context, ref string) error {
	return s.Client.Del(ctx, expectedAmountKey(ref), verifiedPaymentKey(ref)).Err()
}

func (s *Store) SetToken(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return s.Client.Set(ctx, tokenKey(token), strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *Store) TokenUser(ctx context.Context, token string) (uint, bool, error) {
	raw, err := s.Client.Get(ctx, tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("token payload: %w", err)
	}
	return uint(id), true, nil
}

func (s *Store) DeleteToken(ctx context.Context, token string) error {
	return s.Client.Del(ctx, tokenKey(token)).Err()
}

// HitLoginAttempt counts an attempt for username inside window and reports
// whether the limit is now exceeded.
func (s *Store) HitLoginAttempt(ctx context.Context, username string, limit int, window time.Duration) (bool, error) {
	key := loginAttemptsKey(username)
	count, err := s.Client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := s.Client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count > int64(limit), nil
}

func (s *Store) ResetLoginAttempts(ctx context.Context, username string) error {
	return s.Client.Del(ctx, loginAttemptsKey(username)).Err()
}
