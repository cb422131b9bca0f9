// Package gateway simulates an external payment provider. No network I/O
// happens: each payment settles after a random delay with a per-method
// success probability, and failure is reported in the outcome, never as an
// error.
package gateway

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/backoffice/internal/domain"
	"github.com/gosuda/backoffice/internal/idgen"
)

const (
	MessageSuccess = "Payment processed (mock)"
	MessageFailure = "Mock gateway failed"
)

// Config sets the settlement delay window and success probabilities.
type Config struct {
	MinDelay           time.Duration
	MaxDelay           time.Duration
	BankSuccessRate    float64
	MomoSuccessRate    float64
	DefaultSuccessRate float64
}

// DefaultConfig returns an 800ms-1800ms delay window and rates of 0.90 for
// bank, 0.92 for momo and 0.99 for everything else.
func DefaultConfig() Config {
	return Config{
		MinDelay:           800 * time.Millisecond,
		MaxDelay:           1800 * time.Millisecond,
		BankSuccessRate:    0.90,
		MomoSuccessRate:    0.92,
		DefaultSuccessRate: 0.99,
	}
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSeed makes the delay and outcome draws reproducible.
func WithSeed(seed1, seed2 uint64) Option {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewPCG(seed1, seed2)) //nolint:gosec // simulation, not security
	}
}

// WithClock overrides the outcome timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		s.now = now
	}
}

// Simulator is a mock payment gateway. It is safe for concurrent use.
type Simulator struct {
	cfg Config
	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Simulator.
func New(cfg Config, opts ...Option) *Simulator {
	s := &Simulator{
		cfg: cfg,
		now: time.Now,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // simulation, not security
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit starts a simulated payment. The returned channel receives exactly one
// outcome once the delay elapses and is never closed. It is buffered, so a
// caller that stops waiting leaves nothing blocked.
func (s *Simulator) Submit(req domain.PaymentRequest) <-chan domain.PaymentOutcome {
	out := make(chan domain.PaymentOutcome, 1)
	delay := s.delay()

	log.Debug().
		Str("method", string(method(req))).
		Str("reference", req.Reference).
		Dur("delay", delay).
		Msg("gateway: payment submitted")

	time.AfterFunc(delay, func() {
		out <- s.settle(req)
	})
	return out
}

// Process submits req and waits for its outcome.
func (s *Simulator) Process(req domain.PaymentRequest) domain.PaymentOutcome {
	return <-s.Submit(req)
}

// SuccessRate returns the success probability applied to m.
func (s *Simulator) SuccessRate(m domain.PaymentMethod) float64 {
	switch m {
	case domain.PaymentMethodBank:
		return s.cfg.BankSuccessRate
	case domain.PaymentMethodMomo:
		return s.cfg.MomoSuccessRate
	default:
		return s.cfg.DefaultSuccessRate
	}
}

// delay draws uniformly from [MinDelay, MaxDelay).
func (s *Simulator) delay() time.Duration {
	span := s.cfg.MaxDelay - s.cfg.MinDelay
	if span <= 0 {
		return max(s.cfg.MinDelay, 0)
	}

	s.mu.Lock()
	n := s.rng.Int64N(int64(span))
	s.mu.Unlock()

	return s.cfg.MinDelay + time.Duration(n)
}

func (s *Simulator) settle(req domain.PaymentRequest) domain.PaymentOutcome {
	m := method(req)

	s.mu.Lock()
	ok := s.rng.Float64() < s.SuccessRate(m)
	s.mu.Unlock()

	outcome := domain.PaymentOutcome{
		Success:   ok,
		Provider:  m,
		Account:   req.Account,
		Amount:    req.Amount,
		Reference: req.Reference,
		TxID:      idgen.New("tx"),
		Time:      s.now().UTC(),
		Message:   MessageFailure,
	}
	if ok {
		outcome.Message = MessageSuccess
	}

	log.Debug().
		Bool("success", ok).
		Str("tx_id", outcome.TxID).
		Str("reference", req.Reference).
		Msg("gateway: payment settled")

	return outcome
}

// method applies the bank default to an unset method.
func method(req domain.PaymentRequest) domain.PaymentMethod {
	if req.Method == "" {
		return domain.PaymentMethodBank
	}
	return req.Method
}
