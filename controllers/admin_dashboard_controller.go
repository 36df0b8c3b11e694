package controllers

import (
	"time"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// Admin: back-office dashboard summary
func AdminDashboard(c *gin.Context) {
	utils.LogInfo("AdminDashboard called")
	db := config.DB

	var totalStudents, totalTeachers int64
	db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&totalStudents)
	db.Model(&models.User{}).Where("role = ?", models.RoleTeacher).Count(&totalTeachers)

	var activeCourses, activeGroups int64
	db.Model(&models.Course{}).Where("is_active = ?", true).Count(&activeCourses)
	db.Model(&models.Group{}).Where("is_active = ?", true).Count(&activeGroups)

	monthStart := time.Now().AddDate(0, 0, -30)

	var paidCount, pendingCount, failedCount int64
	db.Model(&models.Payment{}).Where("status = ?", models.PaymentStatusPaid).Count(&paidCount)
	db.Model(&models.Payment{}).Where("status = ?", models.PaymentStatusPending).Count(&pendingCount)
	db.Model(&models.Payment{}).Where("status = ?", models.PaymentStatusFailed).Count(&failedCount)

	var monthRevenue float64
	db.Model(&models.Payment{}).
		Where("status = ? AND paid_at >= ?", models.PaymentStatusPaid, monthStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&monthRevenue)

	var newLeads, convertedLeads int64
	db.Model(&models.Lead{}).Where("status = ?", models.LeadStatusNew).Count(&newLeads)
	db.Model(&models.Lead{}).Where("status = ? AND converted_at >= ?", models.LeadStatusConverted, monthStart).Count(&convertedLeads)

	var openDeals int64
	var pipelineValue float64
	db.Model(&models.Deal{}).
		Where("status NOT IN ?", []string{models.DealStatusWon, models.DealStatusLost, models.DealStatusCancelled}).
		Count(&openDeals)
	db.Model(&models.Deal{}).
		Where("status NOT IN ?", []string{models.DealStatusWon, models.DealStatusLost, models.DealStatusCancelled}).
		Select("COALESCE(SUM(value), 0)").Scan(&pipelineValue)

	var openTickets int64
	db.Model(&models.SupportTicket{}).
		Where("status IN ?", []string{models.TicketStatusOpen, models.TicketStatusInProgress}).
		Count(&openTickets)

	var upcomingLessons int64
	db.Model(&models.Lesson{}).
		Where("start_time >= ? AND is_completed = ?", time.Now(), false).
		Count(&upcomingLessons)

	utils.Success(c, "Dashboard retrieved successfully", gin.H{
		"users": gin.H{
			"students": totalStudents,
			"teachers": totalTeachers,
		},
		"courses": gin.H{
			"active_courses": activeCourses,
			"active_groups":  activeGroups,
		},
		"payments": gin.H{
			"paid":          paidCount,
			"pending":       pendingCount,
			"failed":        failedCount,
			"month_revenue": monthRevenue,
		},
		"crm": gin.H{
			"new_leads":        newLeads,
			"converted_30d":    convertedLeads,
			"open_deals":       openDeals,
			"pipeline_value":   pipelineValue,
		},
		"support": gin.H{
			"open_tickets": openTickets,
		},
		"lessons": gin.H{
			"upcoming": upcomingLessons,
		},
	})
}
