package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/gateway"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentResult is what every public payment operation returns. Callers
// branch on Success; nothing is allowed to panic or propagate past these
// operations.
type PaymentResult struct {
	Success           bool   `json:"success"`
	PaymentURL        string `json:"payment_url,omitempty"`
	PaymentID         uint   `json:"payment_id,omitempty"`
	ExternalPaymentID string `json:"external_payment_id,omitempty"`
	TransactionID     string `json:"transaction_id,omitempty"`
	Message           string `json:"message,omitempty"`
	Error             string `json:"error,omitempty"`
}

func failure(format string, v ...interface{}) PaymentResult {
	return PaymentResult{Success: false, Error: fmt.Sprintf(format, v...)}
}

// PaymentService owns the payment state transitions: it creates pending
// payments against the gateway, and it alone moves them to paid or failed.
type PaymentService struct {
	db      *gorm.DB
	gateway gateway.Client // nil when no gateway credentials are configured
	stub    *gateway.StubClient
	outbox  *OutboxDispatcher

	returnURL string
	maxAmount float64
	strict    bool
}

// NewPaymentService wires the orchestrator. gw may be nil; unless strict
// mode is on, initiation then falls back to the local stub gateway.
func NewPaymentService(db *gorm.DB, gw gateway.Client, cfg *config.Config) *PaymentService {
	return &PaymentService{
		db:        db,
		gateway:   gw,
		stub:      gateway.NewStubClient(cfg.BaseURL),
		outbox:    NewOutboxDispatcher(db),
		returnURL: cfg.PaymentReturnURL,
		maxAmount: cfg.PaymentMaxAmount,
		strict:    cfg.PaymentStrictMode,
	}
}

// InitiatePayment creates a pending payment and a hosted payment link for
// it. All failures come back as a structured result, never as a panic.
func (s *PaymentService) InitiatePayment(ctx context.Context, student *models.User, course *models.Course, amount float64, currency, description, returnURL string) (result PaymentResult) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("Panic during payment initiation: %v", r)
			result = failure("Failed to create payment: %v", r)
		}
	}()

	if currency == "" {
		currency = models.DefaultCurrency
	}
	if errs := ValidatePaymentInput(student, amount, s.maxAmount, currency); len(errs) > 0 {
		return failure("%s", errs[0])
	}

	if description == "" {
		if course != nil {
			description = "Course payment: " + course.Title
		} else {
			description = "Tuition payment"
		}
	}
	if returnURL == "" {
		returnURL = s.returnURL
	}

	gw := s.gateway
	if gw == nil {
		if s.strict {
			utils.LogError("Payment initiation rejected: gateway not configured and strict mode is on")
			return failure("Payment gateway is not configured")
		}
		utils.LogInfo("Payment gateway not configured, using test payments")
		gw = s.stub
	}

	reference := uuid.New().String()
	req := gateway.PaymentRequest{
		Amount:      amount,
		Currency:    currency,
		ReturnURL:   returnURL,
		Capture:     true,
		Description: description,
		Customer: gateway.Customer{
			Name:  student.FullName(),
			Email: student.Email,
		},
		Receipt: gateway.LineItem{
			Description: description,
			Quantity:    "1.00",
			Amount:      amount,
			TaxCode:     "1",
		},
		Metadata: map[string]string{
			"reference":  reference,
			"student_id": strconv.FormatUint(uint64(student.ID), 10),
		},
	}
	if course != nil {
		req.Metadata["course_id"] = strconv.FormatUint(uint64(course.ID), 10)
	}

	link, err := gw.CreatePaymentLink(ctx, req)
	if err != nil {
		utils.LogError("Failed to create payment link for student ID %d: %v", student.ID, err)
		return failure("Failed to create payment: %v", err)
	}

	payment := models.Payment{
		StudentID:         student.ID,
		Amount:            amount,
		Currency:          currency,
		Status:            models.PaymentStatusPending,
		TransactionID:     link.ID,
		ExternalPaymentID: reference,
		PaymentMethod:     gw.Method(),
		Description:       description,
	}
	if course != nil {
		payment.CourseID = &course.ID
	}
	if err := s.db.Create(&payment).Error; err != nil {
		utils.LogError("Failed to persist payment for student ID %d: %v", student.ID, err)
		return failure("Failed to create payment: %v", err)
	}

	utils.LogInfo("Created %s payment ID %d for student ID %d, amount %s %s",
		payment.PaymentMethod, payment.ID, student.ID, FormatAmount(amount), currency)

	result = PaymentResult{
		Success:           true,
		PaymentURL:        link.URL,
		PaymentID:         payment.ID,
		ExternalPaymentID: reference,
		TransactionID:     link.ID,
	}
	if payment.PaymentMethod == models.PaymentMethodTest {
		result.Message = "Test payment (gateway not configured)"
	}
	return result
}

// ConfirmPayment settles a payment: test payments are trusted directly,
// real ones are re-checked against the gateway first. The paid transition
// is conditional on the payment still being pending, so duplicate
// confirmations are no-ops and never double-invoice.
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentID uint) (result PaymentResult) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("Panic during payment confirmation: %v", r)
			result = failure("Failed to confirm payment: %v", r)
		}
	}()

	var payment models.Payment
	if err := s.db.First(&payment, paymentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return failure("Payment not found")
		}
		utils.LogError("Failed to load payment ID %d: %v", paymentID, err)
		return failure("Failed to confirm payment: %v", err)
	}

	switch payment.Status {
	case models.PaymentStatusPaid:
		return PaymentResult{Success: true, PaymentID: payment.ID, TransactionID: payment.TransactionID, Message: "Payment already confirmed"}
	case models.PaymentStatusFailed:
		return failure("Payment already failed")
	}

	// Test payments model a trusted local confirmation and skip
	// gateway verification.
	if payment.PaymentMethod == models.PaymentMethodTest {
		if err := s.markPaid(&payment, payment.TransactionID); err != nil {
			utils.LogError("Failed to confirm test payment ID %d: %v", payment.ID, err)
			return failure("Failed to confirm payment: %v", err)
		}
		return PaymentResult{Success: true, PaymentID: payment.ID, TransactionID: payment.TransactionID, Message: "Test payment confirmed"}
	}

	if s.gateway == nil {
		return failure("Payment gateway is not configured")
	}

	link, err := s.gateway.FetchPaymentLink(ctx, payment.TransactionID)
	if err != nil {
		utils.LogError("Failed to query gateway for payment ID %d: %v", payment.ID, err)
		return failure("Failed to confirm payment: %v", err)
	}

	switch link.Status {
	case gateway.StatusSucceeded:
		if err := s.markPaid(&payment, link.ID); err != nil {
			utils.LogError("Failed to settle payment ID %d: %v", payment.ID, err)
			return failure("Failed to confirm payment: %v", err)
		}
		return PaymentResult{Success: true, PaymentID: payment.ID, TransactionID: payment.TransactionID}
	case gateway.StatusCanceled:
		if err := s.markFailed(&payment); err != nil {
			utils.LogError("Failed to mark payment ID %d as failed: %v", payment.ID, err)
			return failure("Failed to confirm payment: %v", err)
		}
		return PaymentResult{Success: true, PaymentID: payment.ID, Message: "Payment was cancelled"}
	default:
		// Query-then-decide: nothing is written for in-flight states.
		return failure("Payment has not completed. Status: %s", link.RawStatus)
	}
}

// markPaid performs the pending->paid transition atomically and records
// the side effects (enrollment, invoice, confirmation email) as outbox
// events in the same transaction. Zero rows affected means another
// confirmation already won the race; nothing else happens.
func (s *PaymentService) markPaid(payment *models.Payment, transactionID string) error {
	now := time.Now()
	transitioned := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":         models.PaymentStatusPaid,
				"paid_at":        now,
				"transaction_id": transactionID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			utils.LogInfo("Payment ID %d already settled, skipping side effects", payment.ID)
			return nil
		}
		transitioned = true

		for _, eventType := range []string{
			models.OutboxEventEnrollStudent,
			models.OutboxEventCreateInvoice,
			models.OutboxEventPaymentConfirmEmail,
		} {
			if err := tx.Create(&models.OutboxEvent{
				EventType: eventType,
				PaymentID: payment.ID,
				Status:    models.OutboxStatusPending,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if transitioned {
		payment.Status = models.PaymentStatusPaid
		payment.PaidAt = &now
		payment.TransactionID = transactionID
		utils.LogInfo("Payment ID %d transitioned to paid", payment.ID)
		// Best effort: whatever fails here stays in the outbox and is
		// retried by the worker. The paid status is never rolled back.
		s.outbox.DispatchPayment(payment.ID)
	}
	return nil
}

// markFailed performs the pending->failed transition. No enrollment or
// invoice side effects fire; only the failure notification is queued.
func (s *PaymentService) markFailed(payment *models.Payment) error {
	transitioned := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
			Update("status", models.PaymentStatusFailed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		transitioned = true
		return tx.Create(&models.OutboxEvent{
			EventType: models.OutboxEventPaymentFailureEmail,
			PaymentID: payment.ID,
			Status:    models.OutboxStatusPending,
		}).Error
	})
	if err != nil {
		return err
	}

	if transitioned {
		payment.Status = models.PaymentStatusFailed
		utils.LogInfo("Payment ID %d transitioned to failed", payment.ID)
		s.outbox.DispatchPayment(payment.ID)
	}
	return nil
}

// FindByReference resolves a payment by the opaque reference token handed
// out at initiation. Used by the test-payment page and gateway callbacks.
// An unknown reference comes back as a not-found AppError so handlers can
// tell it apart from a database failure.
func (s *PaymentService) FindByReference(reference string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Where("external_payment_id = ?", reference).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NotFoundError("Payment not found", err)
		}
		return nil, utils.WrapError(err, "failed to load payment by reference")
	}
	return &payment, nil
}

// Outbox exposes the dispatcher for the background worker.
func (s *PaymentService) Outbox() *OutboxDispatcher {
	return s.outbox
}

// Gateway exposes the configured gateway client, nil when unconfigured.
// Used by the reconciliation worker.
func (s *PaymentService) Gateway() gateway.Client {
	return s.gateway
}
