package workers

import (
	"context"
	"time"

	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/services"
	"github.com/fluencyclub/schoolcrm/utils"
	"gorm.io/gorm"
)

// ReconciliationWorker sweeps payments that have been pending longer than
// maxAge and re-queries the gateway for their authoritative status. The
// settlement transition it applies is the same conditional update the
// confirm operation uses, so racing with a live confirmation is safe.
type ReconciliationWorker struct {
	db       *gorm.DB
	payments *services.PaymentService
	interval time.Duration
	maxAge   time.Duration
}

// NewReconciliationWorker creates a worker sweeping at the given interval.
func NewReconciliationWorker(db *gorm.DB, payments *services.PaymentService, interval, maxAge time.Duration) *ReconciliationWorker {
	return &ReconciliationWorker{
		db:       db,
		payments: payments,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Run sweeps until the context is cancelled.
func (w *ReconciliationWorker) Run(ctx context.Context) {
	if w.payments.Gateway() == nil {
		utils.LogInfo("Reconciliation worker not started: no gateway configured")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	utils.LogInfo("Reconciliation worker started, interval %v", w.interval)

	for {
		select {
		case <-ctx.Done():
			utils.LogInfo("Reconciliation worker stopped")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				utils.LogError("Reconciliation sweep failed: %v", err)
			}
		}
	}
}

// sweep resolves stuck pending payments one by one. Individual failures
// are logged and left for the next sweep.
func (w *ReconciliationWorker) sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-w.maxAge)

	var stuck []models.Payment
	if err := w.db.
		Where("status = ? AND payment_method <> ? AND created_at < ?",
			models.PaymentStatusPending, models.PaymentMethodTest, cutoff).
		Order("id").
		Limit(100).
		Find(&stuck).Error; err != nil {
		return err
	}

	if len(stuck) == 0 {
		return nil
	}
	utils.LogInfo("Reconciliation found %d stuck payments", len(stuck))

	for _, payment := range stuck {
		result := w.payments.ConfirmPayment(ctx, payment.ID)
		if !result.Success {
			// Still in flight at the gateway, or the query failed; the
			// payment stays pending and is retried next sweep.
			utils.LogInfo("Payment ID %d not reconciled: %s", payment.ID, result.Error)
		}
	}
	return nil
}
