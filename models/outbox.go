package models

import "time"

// Outbox event types
const (
	OutboxEventEnrollStudent       = "enroll_student"
	OutboxEventCreateInvoice       = "create_invoice"
	OutboxEventPaymentConfirmEmail = "payment_confirmation_email"
	OutboxEventPaymentFailureEmail = "payment_failure_email"
)

// Outbox event statuses
const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)

// OutboxEvent is a durable record of a side effect that must eventually
// run. Events are written in the same transaction as the state change
// that caused them and dispatched afterwards, so a crash between the two
// loses nothing.
type OutboxEvent struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	EventType string     `gorm:"index" json:"event_type"`
	PaymentID uint       `gorm:"index" json:"payment_id"`
	Payload   string     `json:"payload"`
	Status    string     `gorm:"index;default:'pending'" json:"status"`
	Attempts  int        `gorm:"default:0" json:"attempts"`
	LastError string     `json:"last_error"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
