package redis

import (
	"context"
	"fmt"
	"strings"
)

// Event is one message received on an organization's channels.
type Event struct {
	Channel string
	Payload []byte
}

// Kind returns the channel family of the event, "payments" or "audit".
func (e Event) Kind() string {
	kind, _, _ := strings.Cut(e.Channel, ":")
	return kind
}

func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := c.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis.Client.Publish: %w", err)
	}
	return nil
}

// Watch subscribes to the payments and audit channels of org. Events are
// delivered until ctx ends or stop is called; the channel is then closed.
func (c *Client) Watch(ctx context.Context, org string) (events <-chan Event, stop func(), err error) {
	sub := c.client.Subscribe(ctx, PaymentsChannel(org), AuditChannel(org))

	// One confirmation per channel.
	for range 2 {
		if _, err := sub.Receive(ctx); err != nil {
			_ = sub.Close()
			return nil, nil, fmt.Errorf("redis.Client.Watch: %q: confirm subscription: %w", org, err)
		}
	}

	out := make(chan Event, 64)
	msgs := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- Event{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, func() { _ = sub.Close() }, nil
}

// PaymentsChannel returns the channel carrying settled payment outcomes for an
// organization.
func PaymentsChannel(org string) string {
	return "payments:" + org
}

// AuditChannel returns the channel carrying audit entries for an organization.
func AuditChannel(org string) string {
	return "audit:" + org
}
