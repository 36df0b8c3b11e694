package workers

import (
	"context"
	"time"

	"github.com/fluencyclub/schoolcrm/services"
	"github.com/fluencyclub/schoolcrm/utils"
)

// OutboxWorker retries undelivered outbox events in the background. The
// synchronous dispatch after a payment transition handles the happy path;
// this worker picks up whatever that attempt could not deliver.
type OutboxWorker struct {
	dispatcher *services.OutboxDispatcher
	interval   time.Duration
	batchSize  int
}

// NewOutboxWorker creates a worker polling at the given interval.
func NewOutboxWorker(dispatcher *services.OutboxDispatcher, interval time.Duration) *OutboxWorker {
	return &OutboxWorker{
		dispatcher: dispatcher,
		interval:   interval,
		batchSize:  50,
	}
}

// Run processes batches until the context is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	utils.LogInfo("Outbox worker started, interval %v", w.interval)

	for {
		select {
		case <-ctx.Done():
			utils.LogInfo("Outbox worker stopped")
			return
		case <-ticker.C:
			if n := w.dispatcher.DispatchPending(w.batchSize); n > 0 {
				utils.LogInfo("Outbox worker delivered %d events", n)
			}
		}
	}
}
