package models

import (
	"time"
)

// DefaultCurrency is used when a caller does not specify one.
const DefaultCurrency = "RUB"

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Payment methods
const (
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodTest     = "test"
)

// Payment identifies a single attempted charge for a course. Rows are
// created on initiation and mutated only by the settlement transition.
type Payment struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	StudentID         uint       `gorm:"index" json:"student_id"`
	Student           User       `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	CourseID          *uint      `gorm:"index" json:"course_id,omitempty"`
	Course            *Course    `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Amount            float64    `json:"amount"`
	Currency          string     `gorm:"default:'RUB'" json:"currency"`
	Status            string     `gorm:"index;default:'pending'" json:"status"`
	TransactionID     string     `gorm:"index" json:"transaction_id"`
	ExternalPaymentID string     `gorm:"index" json:"external_payment_id"`
	PaymentMethod     string     `json:"payment_method"`
	Description       string     `json:"description"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Invoice statuses
const (
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice is the settlement receipt derived from exactly one paid Payment.
// Immutable after creation.
type Invoice struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	InvoiceNumber string     `gorm:"uniqueIndex;not null" json:"invoice_number"`
	StudentID     uint       `gorm:"index" json:"student_id"`
	Student       User       `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	PaymentID     uint       `gorm:"uniqueIndex" json:"payment_id"`
	Payment       Payment    `json:"payment,omitempty" gorm:"foreignKey:PaymentID"`
	Amount        float64    `json:"amount"`
	Currency      string     `gorm:"default:'RUB'" json:"currency"`
	Status        string     `gorm:"default:'paid'" json:"status"`
	Description   string     `json:"description"`
	DueDate       time.Time  `json:"due_date"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Refund statuses
const (
	RefundStatusRequested = "requested"
	RefundStatusApproved  = "approved"
	RefundStatusRejected  = "rejected"
	RefundStatusProcessed = "processed"
)

// Refund records a request to return money for a paid Payment
type Refund struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PaymentID   uint       `gorm:"index" json:"payment_id"`
	Payment     Payment    `json:"payment,omitempty" gorm:"foreignKey:PaymentID"`
	Amount      float64    `json:"amount"`
	Reason      string     `json:"reason"`
	Status      string     `gorm:"default:'requested'" json:"status"`
	ProcessedBy *uint      `json:"processed_by,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
