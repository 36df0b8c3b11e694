package controllers

import (
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/services"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/payments/test-payment/:reference
//
// Landing page for test payments. When no gateway is configured the
// initiation step hands out links pointing here instead of a hosted
// checkout, so local and staging flows can be exercised end to end.
func TestPaymentPage(c *gin.Context) {
	utils.LogInfo("TestPaymentPage called")
	reference := c.Param("reference")

	payment, err := paymentService.FindByReference(reference)
	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.LogError("Payment not found for reference: %s", reference)
			utils.NotFound(c, "Payment not found")
			return
		}
		utils.LogError("Failed to resolve reference %s: %v", reference, err)
		utils.InternalServerError(c, "Failed to look up payment", err.Error())
		return
	}
	if payment.PaymentMethod != models.PaymentMethodTest {
		utils.LogError("Payment ID: %d is not a test payment", payment.ID)
		utils.BadRequest(c, "Not a test payment", nil)
		return
	}

	utils.Success(c, "Test payment ready", gin.H{
		"payment_id":     payment.ID,
		"amount":         services.FormatAmount(payment.Amount),
		"currency":       payment.Currency,
		"description":    payment.Description,
		"status":         payment.Status,
		"transaction_id": payment.TransactionID,
		"complete_url":   "/v1/payments/test-payment/" + reference + "/complete",
	})
}

// POST /v1/payments/test-payment/:reference/complete
//
// Simulates the payer finishing checkout and settles the payment.
func CompleteTestPayment(c *gin.Context) {
	utils.LogInfo("CompleteTestPayment called")
	reference := c.Param("reference")

	payment, err := paymentService.FindByReference(reference)
	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.LogError("Payment not found for reference: %s", reference)
			utils.NotFound(c, "Payment not found")
			return
		}
		utils.LogError("Failed to resolve reference %s: %v", reference, err)
		utils.InternalServerError(c, "Failed to look up payment", err.Error())
		return
	}
	if payment.PaymentMethod != models.PaymentMethodTest {
		utils.LogError("Payment ID: %d is not a test payment", payment.ID)
		utils.BadRequest(c, "Not a test payment", nil)
		return
	}
	utils.LogInfo("Completing test payment ID: %d", payment.ID)

	result := paymentService.ConfirmPayment(c.Request.Context(), payment.ID)
	if !result.Success {
		utils.LogError("Test payment completion failed for payment ID: %d: %s", payment.ID, result.Error)
		utils.BadRequest(c, "Payment completion failed", result.Error)
		return
	}

	utils.LogInfo("Test payment ID: %d completed", payment.ID)
	utils.Success(c, "Payment completed successfully", gin.H{
		"payment_id":     result.PaymentID,
		"transaction_id": result.TransactionID,
	})
}
