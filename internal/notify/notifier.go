// Package notify posts notices into an organization's portal inbox.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/backoffice/internal/domain"
	"github.com/gosuda/backoffice/internal/idgen"
	"github.com/gosuda/backoffice/internal/store"
)

// ErrNoRecipient is returned when a notice has no recipient role.
var ErrNoRecipient = errors.New("notify: no recipient") //nolint:gochecknoglobals // sentinel error

// Notifier writes messages to the Messages collection of the organization
// carried by ctx.
type Notifier struct {
	store *store.Store
	from  string
	now   func() time.Time
}

// New creates a Notifier whose messages are signed by from.
func New(st *store.Store, from string) *Notifier {
	return &Notifier{
		store: st,
		from:  from,
		now:   time.Now,
	}
}

// Notify posts one message to the inbox of role to.
func (n *Notifier) Notify(ctx context.Context, to domain.Role, subject, body string) error {
	if to == "" {
		return fmt.Errorf("notify.Notifier.Notify: %w", ErrNoRecipient)
	}

	msg := domain.Message{
		ID:        idgen.New("msg"),
		From:      n.from,
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: n.now().UTC(),
	}
	if _, err := store.Append(ctx, n.store, n.store.Key(ctx, domain.CollectionMessages), msg); err != nil {
		return fmt.Errorf("notify.Notifier.Notify: %w", err)
	}

	log.Debug().Str("org", n.store.ActiveOrg(ctx)).Str("to", string(to)).Str("subject", subject).Msg("notify: message posted")
	return nil
}

// NotifyAll posts the message to every role in to. It keeps going after a
// failure and returns the last error.
func (n *Notifier) NotifyAll(ctx context.Context, to []domain.Role, subject, body string) error {
	var lastErr error
	for _, role := range to {
		if err := n.Notify(ctx, role, subject, body); err != nil {
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("notify.Notifier.NotifyAll: %w", lastErr)
	}
	return nil
}

// Inbox returns the messages addressed to role, oldest first.
func (n *Notifier) Inbox(ctx context.Context, role domain.Role) ([]domain.Message, error) {
	all, err := store.Read[domain.Message](ctx, n.store, n.store.Key(ctx, domain.CollectionMessages))
	if err != nil {
		return nil, fmt.Errorf("notify.Notifier.Inbox: %w", err)
	}

	out := make([]domain.Message, 0, len(all))
	for _, m := range all {
		if m.To == role {
			out = append(out, m)
		}
	}
	return out, nil
}
