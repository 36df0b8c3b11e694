package controllers

import (
	"strconv"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/services"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

var paymentService *services.PaymentService

// InitPaymentController wires the shared payment service into the
// payment handlers. Must be called once at startup.
func InitPaymentController(svc *services.PaymentService) {
	paymentService = svc
}

// POST /v1/payments/initiate
func InitiatePayment(c *gin.Context) {
	utils.LogInfo("InitiatePayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	utils.LogInfo("Processing payment initiation for user ID: %d", user.ID)

	var req struct {
		CourseID    uint    `json:"course_id"`
		Amount      float64 `json:"amount" binding:"required"`
		Currency    string  `json:"currency"`
		Description string  `json:"description"`
		ReturnURL   string  `json:"return_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request. amount is required", err.Error())
		return
	}

	var course *models.Course
	if req.CourseID != 0 {
		var found models.Course
		if err := config.DB.First(&found, req.CourseID).Error; err != nil {
			utils.LogError("Course not found for ID: %d", req.CourseID)
			utils.NotFound(c, "Course not found")
			return
		}
		if !found.IsActive {
			utils.LogError("Course ID: %d is not open for enrollment", found.ID)
			utils.BadRequest(c, "Course is not open for enrollment", nil)
			return
		}
		course = &found
		utils.LogInfo("Found course ID: %d for payment", found.ID)
	}

	result := paymentService.InitiatePayment(c.Request.Context(), &user, course, req.Amount, req.Currency, req.Description, req.ReturnURL)
	if !result.Success {
		utils.LogError("Payment initiation failed for user ID: %d: %s", user.ID, result.Error)
		utils.BadRequest(c, "Payment initiation failed", result.Error)
		return
	}

	utils.LogInfo("Payment ID: %d initiated for user ID: %d", result.PaymentID, user.ID)
	utils.Success(c, "Payment initiated successfully", gin.H{
		"payment_id":          result.PaymentID,
		"payment_url":         result.PaymentURL,
		"external_payment_id": result.ExternalPaymentID,
		"message":             result.Message,
	})
}

// POST /v1/payments/:id/confirm
func ConfirmPayment(c *gin.Context) {
	utils.LogInfo("ConfirmPayment called")
	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.LogError("Invalid payment ID format: %v", err)
		utils.BadRequest(c, "Invalid payment ID", nil)
		return
	}
	utils.LogInfo("Processing confirmation for payment ID: %d", paymentID)

	result := paymentService.ConfirmPayment(c.Request.Context(), uint(paymentID))
	if !result.Success {
		if result.Error == "Payment not found" {
			utils.NotFound(c, result.Error)
			return
		}
		utils.LogError("Confirmation failed for payment ID: %d: %s", paymentID, result.Error)
		utils.BadRequest(c, "Payment confirmation failed", result.Error)
		return
	}

	utils.LogInfo("Payment ID: %d confirmed, message: %s", paymentID, result.Message)
	utils.Success(c, result.Message, gin.H{
		"payment_id":     result.PaymentID,
		"transaction_id": result.TransactionID,
	})
}

// GET /v1/payments/return
//
// The gateway redirects the payer here after checkout. The payment is
// looked up by the opaque reference we put in the link metadata; the
// authoritative status still comes from the gateway, never the redirect.
func PaymentReturn(c *gin.Context) {
	utils.LogInfo("PaymentReturn called")
	reference := c.Query("reference")
	if reference == "" {
		utils.BadRequest(c, "reference is required", nil)
		return
	}

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
	utils.LogInfo("Found payment ID: %d for reference: %s", payment.ID, reference)

	result := paymentService.ConfirmPayment(c.Request.Context(), payment.ID)
	if !result.Success {
		utils.LogError("Return confirmation failed for payment ID: %d: %s", payment.ID, result.Error)
		utils.BadRequest(c, "Payment confirmation failed", gin.H{
			"payment_id": payment.ID,
			"error":      result.Error,
		})
		return
	}

	utils.Success(c, result.Message, gin.H{
		"payment_id":     result.PaymentID,
		"transaction_id": result.TransactionID,
	})
}

// GET /v1/payments/my
func ListMyPayments(c *gin.Context) {
	utils.LogInfo("ListMyPayments called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Payment{}).Where("student_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count payments for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch payments", err.Error())
		return
	}
	pagination.SetTotal(total)

	var payments []models.Payment
	if err := query.Preload("Course").
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&payments).Error; err != nil {
		utils.LogError("Failed to fetch payments for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch payments", err.Error())
		return
	}

	utils.LogInfo("Retrieved %d payments for user ID: %d", len(payments), user.ID)
	utils.SendPaginatedResponse(c, gin.H{"payments": payments}, pagination)
}

// GET /v1/payments/:id
func GetPayment(c *gin.Context) {
	utils.LogInfo("GetPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid payment ID", nil)
		return
	}

	query := config.DB.Preload("Course").Preload("Student")
	if !user.IsAdmin() {
		query = query.Where("student_id = ?", user.ID)
	}

	var payment models.Payment
	if err := query.First(&payment, paymentID).Error; err != nil {
		utils.LogError("Payment not found for ID: %d, user ID: %d", paymentID, user.ID)
		utils.NotFound(c, "Payment not found")
		return
	}

	utils.Success(c, "Payment retrieved successfully", gin.H{"payment": payment})
}
