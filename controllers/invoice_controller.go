package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
)

// GET /v1/invoices/my
func ListMyInvoices(c *gin.Context) {
	utils.LogInfo("ListMyInvoices called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Invoice{}).Where("student_id = ?", user.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count invoices for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch invoices", err.Error())
		return
	}
	pagination.SetTotal(total)

	var invoices []models.Invoice
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&invoices).Error; err != nil {
		utils.LogError("Failed to fetch invoices for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch invoices", err.Error())
		return
	}

	utils.LogInfo("Retrieved %d invoices for user ID: %d", len(invoices), user.ID)
	utils.SendPaginatedResponse(c, gin.H{"invoices": invoices}, pagination)
}

// DownloadInvoice generates and returns a PDF invoice
func DownloadInvoice(c *gin.Context) {
	utils.LogInfo("Starting invoice download process")

	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("Unauthorized invoice download attempt - no user found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	utils.LogInfo("User authenticated for invoice download: %s", user.Email)

	invoiceID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.LogError("Invalid invoice ID format in download request: %v", err)
		utils.BadRequest(c, "Invalid invoice ID", nil)
		return
	}
	utils.LogInfo("Processing invoice download for invoice ID: %d", invoiceID)

	query := config.DB.Preload("Student").Preload("Payment.Course")
	if !user.IsAdmin() {
		query = query.Where("student_id = ?", user.ID)
	}

	var invoice models.Invoice
	if err := query.First(&invoice, invoiceID).Error; err != nil {
		utils.LogError("Invoice not found for download - Invoice ID: %d, User ID: %d", invoiceID, user.ID)
		utils.NotFound(c, "Invoice not found")
		return
	}
	utils.LogInfo("Found invoice for PDF generation - Invoice ID: %d", invoiceID)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// School info
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "Fluency Club")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Online Language School")
	pdf.Ln(8)
	pdf.Cell(100, 8, "Email: billing@fluencyclub.fun | https://fluencyclub.fun")
	pdf.Ln(12)

	// Invoice title and header info
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "INVOICE "+invoice.InvoiceNumber)
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(60, 8, "Issued: "+invoice.CreatedAt.Format("2006-01-02"))
	if invoice.PaidAt != nil {
		pdf.Cell(60, 8, "Paid: "+invoice.PaidAt.Format("2006-01-02 15:04"))
	}
	pdf.Ln(8)
	pdf.Cell(60, 8, "Status: "+invoice.Status)
	pdf.Ln(10)

	// Student info
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, invoice.Student.FullName())
	pdf.Ln(6)
	pdf.Cell(100, 8, invoice.Student.Email)
	if invoice.Student.Phone != "" {
		pdf.Ln(6)
		pdf.Cell(100, 8, "Phone: "+invoice.Student.Phone)
	}
	pdf.Ln(10)

	// Line item table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(90, 8, "Description", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	description := invoice.Description
	if description == "" {
		description = "Tuition payment"
	}
	pdf.CellFormat(90, 8, description, "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "1", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f %s", invoice.Amount, invoice.Currency), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	// Total
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(110, 10, "Total:", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, fmt.Sprintf("%.2f %s", invoice.Amount, invoice.Currency), "", 1, "R", false, 0, "")

	// Thank you note
	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 12)
	pdf.Cell(0, 10, "Thank you for studying with Fluency Club!")

	var buf bytes.Buffer
	_ = pdf.Output(&buf)
	utils.LogInfo("PDF invoice generated successfully for invoice ID: %d", invoiceID)

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", invoice.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	utils.LogInfo("Invoice download completed for invoice ID: %d", invoiceID)
}
