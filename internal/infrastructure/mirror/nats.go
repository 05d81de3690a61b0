// Package mirror republishes committed events to NATS so other consumers
// (alerting, archival) can follow the stream without holding a websocket.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"

	"agentsight/internal/domain/event"
	"agentsight/internal/errs"
	"agentsight/internal/ports"
)

type NATSMirror struct {
	conn    *nats.Conn
	subject string
}

var _ ports.EventMirror = (*NATSMirror)(nil)

func NewNATSMirror(url string, subject string) (*NATSMirror, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("nats url is required")
	}
	if strings.TrimSpace(subject) == "" {
		return nil, errors.New("nats subject is required")
	}

	conn, err := nats.Connect(url, nats.Name("agentsight"))
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}
	return &NATSMirror{conn: conn, subject: subject}, nil
}

// Publish sends the event JSON to <subject>.<source_app>. The context is
// accepted for interface symmetry; nats publishes are fire-and-forget.
func (m *NATSMirror) Publish(ctx context.Context, ev event.Event) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return errs.Wrap(err, "marshal event")
	}
	if err := m.conn.Publish(m.subject+"."+subjectToken(ev.SourceApp), data); err != nil {
		return errs.Wrap(err, "publish event")
	}
	return nil
}

func (m *NATSMirror) Close() {
	m.conn.Close()
}

// subjectToken makes a source_app safe as a NATS subject token.
func subjectToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
