// Package payments runs a payment through the gateway and records the
// outcome in the payments log and the audit trail. A pub/sub event and a
// finance inbox notice for declines are optional.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/backoffice/internal/domain"
	"github.com/gosuda/backoffice/internal/idgen"
	"github.com/gosuda/backoffice/internal/store"
	redisstore "github.com/gosuda/backoffice/internal/store/redis"
)

// Gateway settles payment requests.
type Gateway interface {
	Submit(req domain.PaymentRequest) <-chan domain.PaymentOutcome
}

// Publisher broadcasts settled outcomes.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Notifier posts inbox messages to portal roles.
type Notifier interface {
	NotifyAll(ctx context.Context, to []domain.Role, subject, body string) error
}

// Service records gateway outcomes for the organization carried by ctx.
type Service struct {
	store     *store.Store
	gateway   Gateway
	publisher Publisher
	notifier  Notifier
	notifyTo  []domain.Role
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier posts a message to the inboxes of to for every declined
// payment. With no roles the finance inbox is used.
func WithNotifier(n Notifier, to ...domain.Role) Option {
	return func(s *Service) {
		s.notifier = n
		s.notifyTo = to
		if len(to) == 0 {
			s.notifyTo = []domain.Role{domain.RoleFinance}
		}
	}
}

// NewService creates a payments service. publisher may be nil.
func NewService(st *store.Store, gw Gateway, publisher Publisher, opts ...Option) *Service {
	s := &Service{
		store:     st,
		gateway:   gw,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pay submits req and records its outcome. A declined payment is returned
// with Success false and a nil error. If ctx ends first the outcome is
// neither awaited nor recorded and ctx.Err() is returned.
func (s *Service) Pay(ctx context.Context, req domain.PaymentRequest) (domain.PaymentOutcome, error) {
	if req.ID == "" {
		req.ID = idgen.New("pay")
	}

	var outcome domain.PaymentOutcome
	select {
	case outcome = <-s.gateway.Submit(req):
	case <-ctx.Done():
		return domain.PaymentOutcome{}, fmt.Errorf("payments.Pay: %w", ctx.Err())
	}

	org := s.store.ActiveOrg(ctx)
	logger := log.With().Str("org", org).Str("payment_id", req.ID).Str("tx_id", outcome.TxID).Logger()

	if _, err := store.Append(ctx, s.store, s.store.Key(ctx, domain.CollectionPaymentsLog), outcome); err != nil {
		return outcome, fmt.Errorf("payments.Pay: payments log: %w", err)
	}

	entry := domain.AuditEntry{
		ID:         uuid.New(),
		Org:        org,
		Actor:      "system",
		Action:     auditAction(outcome),
		Resource:   "payment",
		ResourceID: req.ID,
		Details: map[string]any{
			"txId":      outcome.TxID,
			"provider":  outcome.Provider,
			"amount":    outcome.Amount.String(),
			"reference": outcome.Reference,
			"message":   outcome.Message,
		},
		CreatedAt: s.now().UTC(),
	}
	if _, err := store.Append(ctx, s.store, s.store.Key(ctx, domain.CollectionAudit), entry); err != nil {
		return outcome, fmt.Errorf("payments.Pay: audit: %w", err)
	}

	if s.publisher != nil {
		// The outcome is already recorded; a lost event is only logged.
		s.publish(ctx, redisstore.PaymentsChannel(org), outcome)
		s.publish(ctx, redisstore.AuditChannel(org), entry)
	}

	if !outcome.Success && s.notifier != nil {
		body := fmt.Sprintf("%s payment of %s to %s (ref %q) was declined. Transaction %s.",
			outcome.Provider, outcome.Amount.StringFixed(2), outcome.Account, outcome.Reference, outcome.TxID)
		if err := s.notifier.NotifyAll(ctx, s.notifyTo, "Payment failed", body); err != nil {
			logger.Warn().Err(err).Msg("payments: notify failed")
		}
	}

	logger.Info().Bool("success", outcome.Success).Str("reference", outcome.Reference).Msg("payment recorded")
	return outcome, nil
}

// History returns the active organization's payments log.
func (s *Service) History(ctx context.Context) ([]domain.PaymentOutcome, error) {
	outcomes, err := store.Read[domain.PaymentOutcome](ctx, s.store, s.store.Key(ctx, domain.CollectionPaymentsLog))
	if err != nil {
		return nil, fmt.Errorf("payments.History: %w", err)
	}
	return outcomes, nil
}

func (s *Service) publish(ctx context.Context, channel string, event any) {
	payload, err := json.Marshal(event)
	if err == nil {
		err = s.publisher.Publish(ctx, channel, payload)
	}
	if err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("payments: publish failed")
	}
}

func auditAction(o domain.PaymentOutcome) string {
	if o.Success {
		return "payment.settled"
	}
	return "payment.failed"
}
