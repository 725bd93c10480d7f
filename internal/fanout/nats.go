package fanout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NatsPublisher mirrors every fan-out event onto NATS so out-of-process
// workers (SMS, email) and other branch nodes can react. Subjects follow
// bajeh.event.<kind>.<audience>.
type NatsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

// Subject returns the NATS subject an event for one audience travels on.
func Subject(kind EventKind, audience Audience) string {
	return fmt.Sprintf("bajeh.event.%s.%s", kind, audience)
}

func (p *NatsPublisher) Publish(_ context.Context, ev Event, audiences ...Audience) error {
	if p.nc == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode fanout event: %w", err)
	}
	var firstErr error
	for _, a := range audiences {
		if err := p.nc.Publish(Subject(ev.Kind, a), data); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("publish %s: %w", ev.Kind, err)
		}
	}
	return firstErr
}
