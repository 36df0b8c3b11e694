package services

import (
	"time"

	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"gorm.io/gorm"
)

// MaxOutboxAttempts bounds retries per event; beyond it the event stays
// failed and needs operator attention.
const MaxOutboxAttempts = 5

// OutboxDispatcher executes the durable side effects recorded next to
// payment state transitions: enrollment, invoicing and notification
// emails. Every handler is idempotent, so redelivery is harmless.
type OutboxDispatcher struct {
	db *gorm.DB
}

// NewOutboxDispatcher creates a dispatcher over the given database.
func NewOutboxDispatcher(db *gorm.DB) *OutboxDispatcher {
	return &OutboxDispatcher{db: db}
}

// DispatchPayment runs all undelivered events for one payment in insert
// order. Called synchronously right after a settlement transition.
func (d *OutboxDispatcher) DispatchPayment(paymentID uint) {
	var events []models.OutboxEvent
	if err := d.db.
		Where("payment_id = ? AND status <> ?", paymentID, models.OutboxStatusSent).
		Order("id").
		Find(&events).Error; err != nil {
		utils.LogError("Failed to load outbox events for payment ID %d: %v", paymentID, err)
		return
	}
	for i := range events {
		d.deliver(&events[i])
	}
}

// DispatchPending runs a batch of undelivered events that still have
// attempts left. Called by the background worker.
func (d *OutboxDispatcher) DispatchPending(limit int) int {
	var events []models.OutboxEvent
	if err := d.db.
		Where("status <> ? AND attempts < ?", models.OutboxStatusSent, MaxOutboxAttempts).
		Order("id").
		Limit(limit).
		Find(&events).Error; err != nil {
		utils.LogError("Failed to load pending outbox events: %v", err)
		return 0
	}

	delivered := 0
	for i := range events {
		if d.deliver(&events[i]) {
			delivered++
		}
	}
	return delivered
}

func (d *OutboxDispatcher) deliver(event *models.OutboxEvent) bool {
	err := d.handle(event)

	updates := map[string]interface{}{
		"attempts": event.Attempts + 1,
	}
	if err != nil {
		utils.LogError("Outbox event ID %d (%s) failed: %v", event.ID, event.EventType, err)
		updates["status"] = models.OutboxStatusFailed
		updates["last_error"] = err.Error()
	} else {
		now := time.Now()
		updates["status"] = models.OutboxStatusSent
		updates["sent_at"] = now
		updates["last_error"] = ""
	}
	if dbErr := d.db.Model(event).Updates(updates).Error; dbErr != nil {
		utils.LogError("Failed to update outbox event ID %d: %v", event.ID, dbErr)
	}
	return err == nil
}

func (d *OutboxDispatcher) handle(event *models.OutboxEvent) error {
	var payment models.Payment
	if err := d.db.Preload("Student").Preload("Course").First(&payment, event.PaymentID).Error; err != nil {
		return err
	}

	switch event.EventType {
	case models.OutboxEventEnrollStudent:
		return d.enrollStudent(&payment)
	case models.OutboxEventCreateInvoice:
		return d.createInvoice(&payment)
	case models.OutboxEventPaymentConfirmEmail:
		return utils.SendPaymentConfirmationEmail(&payment)
	case models.OutboxEventPaymentFailureEmail:
		return utils.SendPaymentFailureEmail(&payment, payment.Description)
	default:
		utils.LogError("Unknown outbox event type: %s", event.EventType)
		return nil
	}
}

// enrollStudent adds the paying student to the first active group of the
// paid course. A payment without a course, or a course without an active
// group, is logged and tolerated so invoicing is never blocked.
func (d *OutboxDispatcher) enrollStudent(payment *models.Payment) error {
	if payment.CourseID == nil {
		utils.LogInfo("Payment ID %d has no course, skipping enrollment", payment.ID)
		return nil
	}

	var group models.Group
	err := d.db.
		Where("course_id = ? AND is_active = ?", *payment.CourseID, true).
		Order("id").
		First(&group).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.LogInfo("No active group for course ID %d, skipping enrollment", *payment.CourseID)
			return nil
		}
		return err
	}

	var count int64
	if err := d.db.Table("group_students").
		Where("group_id = ? AND user_id = ?", group.ID, payment.StudentID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	student := models.User{Model: gorm.Model{ID: payment.StudentID}}
	if err := d.db.Model(&group).Association("Students").Append(&student); err != nil {
		return err
	}
	utils.LogInfo("Enrolled student ID %d into group ID %d (%s)", payment.StudentID, group.ID, group.Title)
	return nil
}

// createInvoice creates the settlement receipt for a paid payment,
// exactly once per payment.
func (d *OutboxDispatcher) createInvoice(payment *models.Payment) error {
	var existing models.Invoice
	err := d.db.Where("payment_id = ?", payment.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	paidAt := payment.PaidAt
	date := time.Now()
	if paidAt != nil {
		date = *paidAt
	}

	invoice := models.Invoice{
		InvoiceNumber: InvoiceNumber(date.Format("20060102"), payment.ID),
		StudentID:     payment.StudentID,
		PaymentID:     payment.ID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Status:        models.InvoiceStatusPaid,
		Description:   payment.Description,
		DueDate:       date,
		PaidAt:        paidAt,
	}
	if err := d.db.Create(&invoice).Error; err != nil {
		return err
	}
	utils.LogInfo("Created invoice %s for payment ID %d", invoice.InvoiceNumber, payment.ID)
	return nil
}
