package services

import (
	"fmt"

	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
)

// ValidatePaymentInput checks a payment request before any external call
// is made. It returns all problems found, first one worst.
func ValidatePaymentInput(student *models.User, amount, maxAmount float64, currency string) []string {
	var errs []string

	if student == nil || student.ID == 0 {
		errs = append(errs, "Student is required")
	}
	if amount <= 0 {
		errs = append(errs, "Amount must be greater than zero")
	}
	if maxAmount > 0 && amount > maxAmount {
		errs = append(errs, fmt.Sprintf("Amount exceeds the maximum of %s", FormatAmount(maxAmount)))
	}
	if !utils.ValidateCurrency(currency) {
		errs = append(errs, "Invalid currency code")
	}

	return errs
}

// FormatAmount renders an amount the way the gateway and receipts expect it.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// InvoiceNumber builds the invoice number for a paid payment from the
// settlement date and payment id, e.g. INV-20250114-42.
func InvoiceNumber(date string, paymentID uint) string {
	return fmt.Sprintf("INV-%s-%d", date, paymentID)
}
