package auth

import (
	"context"
	"errors"
)

var (
	// ErrInvalidToken covers malformed, expired, and unverifiable tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Verifier turns a bearer token into the authenticated principal identifier.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Chain tries each verifier in order and returns the first success. This is
// what lets the API accept both federated ID tokens and locally issued ones
// behind a single contract.
type Chain struct {
	verifiers []Verifier
}

func NewChain(verifiers ...Verifier) *Chain {
	return &Chain{verifiers: verifiers}
}

func (c *Chain) Verify(ctx context.Context, token string) (string, error) {
	for _, v := range c.verifiers {
		userID, err := v.Verify(ctx, token)
		if err == nil {
			return userID, nil
		}
	}
	return "", ErrInvalidToken
}
