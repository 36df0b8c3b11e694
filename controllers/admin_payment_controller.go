package controllers

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
)

// Admin: list all payments with filters
func AdminListPayments(c *gin.Context) {
	utils.LogInfo("AdminListPayments called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Payment{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("payment_method = ?", method)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("created_at >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count payments: %v", err)
		utils.InternalServerError(c, "Failed to fetch payments", err.Error())
		return
	}
	pagination.SetTotal(total)

	var payments []models.Payment
	if err := query.Preload("Student").Preload("Course").
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&payments).Error; err != nil {
		utils.LogError("Failed to fetch payments: %v", err)
		utils.InternalServerError(c, "Failed to fetch payments", err.Error())
		return
	}

	utils.LogInfo("Retrieved %d payments for admin listing", len(payments))
	utils.SendPaginatedResponse(c, gin.H{"payments": payments}, pagination)
}

// Admin: download payments report as Excel
func DownloadPaymentsReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadPaymentsReportExcel called")

	period := c.DefaultQuery("period", "day")
	utils.LogDebug("Generating Excel report for period: %s", period)

	now := time.Now()
	var startDate, endDate time.Time

	switch period {
	case "day":
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
	case "week":
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		startDate = endDate.AddDate(0, 0, -6)
		startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	case "month":
		startDate = now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
		endDate = now.Add(24 * time.Hour)
	default:
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	var payments []models.Payment
	query := config.DB.Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Preload("Student").
		Preload("Course").
		Order("created_at DESC")
	if err := query.Find(&payments).Error; err != nil {
		utils.LogError("Failed to fetch payments: %v", err)
		utils.InternalServerError(c, "Failed to fetch payments", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d payments for Excel report", len(payments))

	// --- Calculate summary ---
	var summary struct {
		TotalPayments int
		TotalPaid     int
		TotalFailed   int
		TotalPending  int
		PaidRevenue   float64
		TotalStudents int
		AveragePaid   float64
	}
	studentSet := make(map[uint]bool)
	for _, payment := range payments {
		summary.TotalPayments++
		studentSet[payment.StudentID] = true
		switch payment.Status {
		case models.PaymentStatusPaid:
			summary.TotalPaid++
			summary.PaidRevenue += payment.Amount
		case models.PaymentStatusFailed:
			summary.TotalFailed++
		default:
			summary.TotalPending++
		}
	}
	summary.TotalStudents = len(studentSet)
	if summary.TotalPaid > 0 {
		summary.AveragePaid = math.Round((summary.PaidRevenue/float64(summary.TotalPaid))*100) / 100
	}
	summary.PaidRevenue = math.Round(summary.PaidRevenue*100) / 100

	// --- Excel Generation ---
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Payments Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}
	utils.LogDebug("Created Excel sheet for payments report")

	// School details
	schoolRow := sheet.AddRow()
	schoolRow.AddCell().SetString("FLUENCY CLUB - Payments Report")
	schoolRow = sheet.AddRow()
	schoolRow.AddCell().SetString("Online Language School")
	schoolRow = sheet.AddRow()
	schoolRow.AddCell().SetString("Email: billing@fluencyclub.fun")
	schoolRow = sheet.AddRow()
	schoolRow.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	// Table headers
	headers := []string{"Payment ID", "Student ID", "Student", "Course", "Date", "Amount", "Currency", "Method", "Status", "Transaction ID"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	// Table rows
	for _, payment := range payments {
		courseTitle := ""
		if payment.Course != nil {
			courseTitle = payment.Course.Title
		}
		row := sheet.AddRow()
		row.AddCell().SetInt(int(payment.ID))
		row.AddCell().SetInt(int(payment.StudentID))
		row.AddCell().SetString(payment.Student.FullName())
		row.AddCell().SetString(courseTitle)
		row.AddCell().SetString(payment.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetFloat(payment.Amount)
		row.AddCell().SetString(payment.Currency)
		row.AddCell().SetString(payment.PaymentMethod)
		row.AddCell().SetString(payment.Status)
		row.AddCell().SetString(payment.TransactionID)
	}

	sheet.AddRow() // spacing

	// --- Summary Section ---
	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Summary")
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	summaryRow.Cells[0].SetStyle(style)

	summaryData := [][]string{
		{"Total Payments", fmt.Sprintf("%d", summary.TotalPayments)},
		{"Paid", fmt.Sprintf("%d", summary.TotalPaid)},
		{"Failed", fmt.Sprintf("%d", summary.TotalFailed)},
		{"Pending", fmt.Sprintf("%d", summary.TotalPending)},
		{"Paid Revenue", fmt.Sprintf("%.2f", summary.PaidRevenue)},
		{"Unique Students", fmt.Sprintf("%d", summary.TotalStudents)},
		{"Avg. Paid Amount", fmt.Sprintf("%.2f", summary.AveragePaid)},
	}
	for _, data := range summaryData {
		row := sheet.AddRow()
		row.AddCell().SetString(data[0])
		row.AddCell().SetString(data[1])
	}

	userVal, _ := c.Get("user")
	if admin, ok := userVal.(models.User); ok {
		utils.LogAdminAction(c, models.AdminActionExport, "Payment", nil,
			fmt.Sprintf("Exported %s payments report (%d rows) as admin %s", period, len(payments), admin.Username))
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=payments_report_%s.xlsx", period))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", err.Error())
		return
	}
	utils.LogInfo("Successfully generated Excel report for period %s", period)
}

// Admin: process a refund request for a paid payment
func AdminCreateRefund(c *gin.Context) {
	utils.LogInfo("AdminCreateRefund called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	admin := userVal.(models.User)

	var req struct {
		PaymentID uint    `json:"payment_id" binding:"required"`
		Amount    float64 `json:"amount"`
		Reason    string  `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid refund request: %v", err)
		utils.BadRequest(c, "Invalid request. payment_id and reason are required", err.Error())
		return
	}

	var payment models.Payment
	if err := config.DB.First(&payment, req.PaymentID).Error; err != nil {
		utils.LogError("Payment not found for ID: %d", req.PaymentID)
		utils.NotFound(c, "Payment not found")
		return
	}
	if payment.Status != models.PaymentStatusPaid {
		utils.LogError("Refund rejected: payment ID %d has status %s", payment.ID, payment.Status)
		utils.BadRequest(c, "Only paid payments can be refunded", nil)
		return
	}

	amount := req.Amount
	if amount == 0 {
		amount = payment.Amount
	}
	if amount < 0 || amount > payment.Amount {
		utils.BadRequest(c, "Refund amount must be between 0 and the paid amount", nil)
		return
	}

	refund := models.Refund{
		PaymentID:   payment.ID,
		Amount:      amount,
		Reason:      req.Reason,
		Status:      models.RefundStatusRequested,
		ProcessedBy: &admin.ID,
	}
	if err := config.DB.Create(&refund).Error; err != nil {
		utils.LogError("Failed to create refund for payment ID: %d: %v", payment.ID, err)
		utils.InternalServerError(c, "Failed to create refund", err.Error())
		return
	}

	utils.LogAdminAction(c, models.AdminActionCreate, "Refund", &refund.ID,
		fmt.Sprintf("Refund requested for payment %d, amount %.2f", payment.ID, amount))
	utils.LogInfo("Refund ID: %d created for payment ID: %d", refund.ID, payment.ID)
	utils.Created(c, "Refund request created", gin.H{"refund": refund})
}
