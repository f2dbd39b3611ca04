package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pitabwire/frame/queue"
	"github.com/pitabwire/frame/workerpool"
	"github.com/pitabwire/util"
	"github.com/rs/xid"
)

// Publisher wraps frame's queue manager to emit typed events. A nil
// Publisher is valid and drops everything, so callers never need to
// guard emission.
type Publisher struct {
	queueMgr queue.Manager
	pool     workerpool.WorkerPool
	source   string
	queueRef string
}

// NewPublisher creates a publisher that emits events to the given queue
// reference. When pool is non-nil, publishing happens off the caller's
// path.
func NewPublisher(queueMgr queue.Manager, pool workerpool.WorkerPool, source string, queueRef string) *Publisher {
	return &Publisher{
		queueMgr: queueMgr,
		pool:     pool,
		source:   source,
		queueRef: queueRef,
	}
}

// Emit publishes a typed event to the event bus.
func (p *Publisher) Emit(ctx context.Context, eventType EventType, ownerID string, data interface{}) error {
	if p == nil || p.queueMgr == nil {
		return nil
	}

	envelope := Envelope{
		ID:        xid.New().String(),
		Type:      eventType,
		Source:    p.source,
		OwnerID:   ownerID,
		Timestamp: time.Now().UTC(),
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	envelope.Data = raw

	if p.pool != nil {
		return p.pool.Submit(ctx, func() {
			if pubErr := p.queueMgr.Publish(ctx, p.queueRef, envelope); pubErr != nil {
				util.Log(ctx).WithError(pubErr).
					WithField("event_type", string(eventType)).
					Warn("event publish failed")
			}
		})
	}

	return p.queueMgr.Publish(ctx, p.queueRef, envelope)
}
