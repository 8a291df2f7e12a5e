package application

import (
	"context"
	"sync"

	"github.com/bnema/followcheck/internal/domain"
	"go.uber.org/zap"
)

type EventHandler interface {
	HandleEvent(ctx context.Context, event Event) error
}

type queuedEvent struct {
	ctx   context.Context
	event Event
}

// Dispatcher runs events for different conversations concurrently while
// keeping each conversation's events in arrival order, one at a time.
type Dispatcher struct {
	handler EventHandler
	logger  *zap.Logger

	mu     sync.Mutex
	queues map[domain.ConversationID][]queuedEvent
	wg     sync.WaitGroup
}

func NewDispatcher(handler EventHandler, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		handler: handler,
		logger:  logger,
		queues:  map[domain.ConversationID][]queuedEvent{},
	}
}

// Dispatch queues event and returns without waiting for it to be handled.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	queue, running := d.queues[event.Conversation]
	d.queues[event.Conversation] = append(queue, queuedEvent{ctx: ctx, event: event})
	if running {
		return
	}

	d.wg.Add(1)
	go d.drain(event.Conversation)
}

// Wait blocks until every queued event has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Active returns the number of conversations with queued or running events.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}

func (d *Dispatcher) drain(conversation domain.ConversationID) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		queue := d.queues[conversation]
		if len(queue) == 0 {
			delete(d.queues, conversation)
			d.mu.Unlock()
			return
		}
		next := queue[0]
		d.queues[conversation] = queue[1:]
		d.mu.Unlock()

		if err := d.handler.HandleEvent(next.ctx, next.event); err != nil {
			d.logger.Error("handle event",
				zap.String("event_id", next.event.ID),
				zap.Int64("conversation", int64(conversation)),
				zap.Error(err),
			)
		}
	}
}
