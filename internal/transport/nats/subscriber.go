// Package nats subscribes to external cache invalidation signals.
package nats

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	moderation "github.com/reshetovitsme/chat-guard/internal/modules/moderation/service"
	"github.com/samber/oops"
)

// Invalidator applies invalidation signals
type Invalidator interface {
	Apply(inv moderation.Invalidation) error
}

// Subscriber listens for invalidation signals published by the settings owner
type Subscriber struct {
	conn        *nats.Conn
	sub         *nats.Subscription
	invalidator Invalidator
}

// Connect dials NATS with infinite reconnects
func Connect(url string, invalidator Invalidator) (*Subscriber, error) {
	opts := []nats.Option{
		nats.Name("chat-guard"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, oops.With("url", url, "context", "failed to connect to NATS").Wrap(err)
	}
	slog.Info("NATS connected", "url", nc.ConnectedUrl())

	return &Subscriber{conn: nc, invalidator: invalidator}, nil
}

// Subscribe starts consuming the invalidation subject
func (s *Subscriber) Subscribe(subject string) error {
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		s.handle(msg.Data)
	})
	if err != nil {
		return oops.With("subject", subject, "context", "failed to subscribe").Wrap(err)
	}
	s.sub = sub
	return nil
}

// Close drains the subscription and closes the connection
func (s *Subscriber) Close() {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			slog.Warn("Failed to unsubscribe from NATS", "error", err)
		}
	}
	s.conn.Close()
}

func (s *Subscriber) handle(data []byte) {
	var inv moderation.Invalidation
	if err := json.Unmarshal(data, &inv); err != nil {
		slog.Warn("Dropping malformed invalidation signal", "error", err)
		return
	}
	if err := s.invalidator.Apply(inv); err != nil {
		slog.Warn("Rejected invalidation signal", "chat_id", inv.ChatID, "error", err)
	}
}
