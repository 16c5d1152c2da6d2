// Package acme exposes the challenge reconciler as a lego DNS-01 provider.
package acme

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/dns01"
)

// Challenger publishes and withdraws a proof value for a domain.
type Challenger interface {
	Provision(ctx context.Context, domain, proof string) error
	Clean(ctx context.Context, domain, proof string) error
}

type Solver struct {
	challenger Challenger
	timeout    time.Duration
	interval   time.Duration
}

var (
	_ challenge.Provider        = (*Solver)(nil)
	_ challenge.ProviderTimeout = (*Solver)(nil)
)

type Option func(*Solver)

// WithPropagation sets how long lego waits for the record to appear and how
// often it checks.
func WithPropagation(timeout, interval time.Duration) Option {
	return func(s *Solver) {
		s.timeout = timeout
		s.interval = interval
	}
}

func NewSolver(c Challenger, opts ...Option) *Solver {
	s := &Solver{
		challenger: c,
		timeout:    dns01.DefaultPropagationTimeout,
		interval:   dns01.DefaultPollingInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) Present(domain, token, keyAuth string) error {
	return s.challenger.Provision(context.Background(), domain, Proof(keyAuth))
}

func (s *Solver) CleanUp(domain, token, keyAuth string) error {
	return s.challenger.Clean(context.Background(), domain, Proof(keyAuth))
}

func (s *Solver) Timeout() (timeout, interval time.Duration) {
	return s.timeout, s.interval
}

// Proof returns the TXT value a DNS-01 validation expects for keyAuth. It
// matches dns01.GetChallengeInfo without the CNAME lookups that call makes.
func Proof(keyAuth string) string {
	sum := sha256.Sum256([]byte(keyAuth))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
