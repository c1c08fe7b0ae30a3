// Package events publishes game events to NATS so other processes can
// follow games as they are played.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wanderer/session"
)

// Conn is the part of a NATS connection the publisher uses.
type Conn interface {
	Publish(subj string, data []byte) error
}

// Publisher sends every session event to <prefix>.<type>. It never blocks
// or fails a game; publish errors are logged and dropped.
type Publisher struct {
	conn   Conn
	prefix string
}

func NewPublisher(conn Conn, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: prefix}
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("wanderer"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return nc, nil
}

// Subject is where events of type typ go.
func (p *Publisher) Subject(typ string) string {
	return p.prefix + "." + typ
}

func (p *Publisher) Observe(evt session.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Err(err).Str("type", evt.Type).Msg("failed to marshal event")
		return
	}
	if err := p.conn.Publish(p.Subject(evt.Type), data); err != nil {
		log.Warn().Err(err).Str("type", evt.Type).Msg("failed to publish event")
		return
	}
	log.Debug().Str("subject", p.Subject(evt.Type)).Msg("published event")
}
