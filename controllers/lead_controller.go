package controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// POST /v1/leads
//
// Public endpoint: this is where the website signup form lands.
func CreateLead(c *gin.Context) {
	utils.LogInfo("CreateLead called")

	var req struct {
		FirstName          string `json:"first_name" binding:"required"`
		LastName           string `json:"last_name" binding:"required"`
		Email              string `json:"email"`
		Phone              string `json:"phone"`
		Age                *int   `json:"age"`
		InterestedCourseID *uint  `json:"interested_course_id"`
		Source             string `json:"source"`
		Notes              string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid lead request: %v", err)
		utils.BadRequest(c, "Invalid request. first_name and last_name are required", err.Error())
		return
	}

	if req.Email == "" && req.Phone == "" {
		utils.BadRequest(c, "Either email or phone is required", nil)
		return
	}
	if req.Email != "" && !utils.ValidateEmail(req.Email) {
		utils.BadRequest(c, "Invalid email format", nil)
		return
	}
	if req.Phone != "" && !utils.ValidatePhone(req.Phone) {
		utils.BadRequest(c, "Invalid phone number format", nil)
		return
	}

	if req.InterestedCourseID != nil {
		var course models.Course
		if err := config.DB.First(&course, *req.InterestedCourseID).Error; err != nil {
			utils.NotFound(c, "Course not found")
			return
		}
	}

	lead := models.Lead{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		Age:                req.Age,
		InterestedCourseID: req.InterestedCourseID,
		Status:             models.LeadStatusNew,
		Source:             req.Source,
		Notes:              req.Notes,
	}
	if lead.Source == "" {
		lead.Source = models.LeadSourceWebsite
	}

	if err := config.DB.Create(&lead).Error; err != nil {
		utils.LogError("Failed to create lead: %v", err)
		utils.InternalServerError(c, "Failed to create lead", err.Error())
		return
	}
	utils.LogInfo("Created lead ID: %d from source: %s", lead.ID, lead.Source)

	// Notify admins about the fresh lead; delivery problems must not
	// fail the signup.
	var admins []models.User
	if err := config.DB.Where("role = ? AND is_active = ?", models.RoleAdmin, true).Find(&admins).Error; err == nil {
		for i := range admins {
			if err := utils.SendLeadNotificationEmail(&admins[i], &lead); err != nil {
				utils.LogError("Failed to notify admin ID: %d about lead ID: %d: %v", admins[i].ID, lead.ID, err)
			}
		}
	}

	utils.Created(c, "Thank you! We will contact you shortly.", gin.H{"lead_id": lead.ID})
}

// Staff: list leads with filters
func ListLeads(c *gin.Context) {
	utils.LogInfo("ListLeads called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Lead{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if source := c.Query("source"); source != "" {
		query = query.Where("source = ?", source)
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		query = query.Where("assigned_to_id = ?", assignedTo)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count leads: %v", err)
		utils.InternalServerError(c, "Failed to fetch leads", err.Error())
		return
	}
	pagination.SetTotal(total)

	var leads []models.Lead
	if err := query.Preload("InterestedCourse").Preload("AssignedTo").
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&leads).Error; err != nil {
		utils.LogError("Failed to fetch leads: %v", err)
		utils.InternalServerError(c, "Failed to fetch leads", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, gin.H{"leads": leads}, pagination)
}

// Staff: get one lead with its notes and activities
func GetLead(c *gin.Context) {
	leadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lead ID", nil)
		return
	}

	var lead models.Lead
	if err := config.DB.Preload("InterestedCourse").Preload("AssignedTo").
		First(&lead, leadID).Error; err != nil {
		utils.NotFound(c, "Lead not found")
		return
	}

	var notes []models.Note
	config.DB.Where("lead_id = ?", lead.ID).Order("created_at DESC").Find(&notes)

	var activities []models.Activity
	config.DB.Where("lead_id = ?", lead.ID).Order("due_date").Find(&activities)

	utils.Success(c, "Lead retrieved successfully", gin.H{
		"lead":       lead,
		"notes":      notes,
		"activities": activities,
	})
}

// Staff: move a lead through the pipeline
func UpdateLeadStatus(c *gin.Context) {
	utils.LogInfo("UpdateLeadStatus called")

	leadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lead ID", nil)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. status is required", err.Error())
		return
	}

	switch req.Status {
	case models.LeadStatusNew, models.LeadStatusContacted, models.LeadStatusInterested,
		models.LeadStatusDemoScheduled, models.LeadStatusDemoCompleted, models.LeadStatusProposalSent,
		models.LeadStatusNegotiation, models.LeadStatusLost:
	case models.LeadStatusConverted:
		utils.BadRequest(c, "Use the convert endpoint to convert a lead", nil)
		return
	default:
		utils.BadRequest(c, "Invalid lead status", nil)
		return
	}

	var lead models.Lead
	if err := config.DB.First(&lead, leadID).Error; err != nil {
		utils.NotFound(c, "Lead not found")
		return
	}
	if lead.Status == models.LeadStatusConverted {
		utils.BadRequest(c, "Converted leads cannot change status", nil)
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}
	if err := config.DB.Model(&lead).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update lead ID: %d: %v", lead.ID, err)
		utils.InternalServerError(c, "Failed to update lead", err.Error())
		return
	}

	utils.LogInfo("Lead ID: %d moved to status: %s", lead.ID, req.Status)
	utils.Success(c, "Lead updated successfully", gin.H{"lead": lead})
}

// Staff: assign a lead to a manager
func AssignLead(c *gin.Context) {
	utils.LogInfo("AssignLead called")

	leadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lead ID", nil)
		return
	}

	var req struct {
		AssignedToID uint `json:"assigned_to_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. assigned_to_id is required", err.Error())
		return
	}

	var lead models.Lead
	if err := config.DB.First(&lead, leadID).Error; err != nil {
		utils.NotFound(c, "Lead not found")
		return
	}

	var manager models.User
	if err := config.DB.Where("id = ? AND is_active = ?", req.AssignedToID, true).First(&manager).Error; err != nil {
		utils.NotFound(c, "Manager not found")
		return
	}

	if err := config.DB.Model(&lead).Update("assigned_to_id", manager.ID).Error; err != nil {
		utils.LogError("Failed to assign lead ID: %d: %v", lead.ID, err)
		utils.InternalServerError(c, "Failed to assign lead", err.Error())
		return
	}

	utils.LogInfo("Lead ID: %d assigned to user ID: %d", lead.ID, manager.ID)
	utils.Success(c, "Lead assigned successfully", gin.H{
		"lead_id":     lead.ID,
		"assigned_to": manager.Username,
	})
}

// Staff: convert a lead into a customer
func ConvertLead(c *gin.Context) {
	utils.LogInfo("ConvertLead called")

	leadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lead ID", nil)
		return
	}

	var req struct {
		UserID *uint `json:"user_id"`
	}
	_ = c.ShouldBindJSON(&req)

	var lead models.Lead
	if err := config.DB.First(&lead, leadID).Error; err != nil {
		utils.NotFound(c, "Lead not found")
		return
	}
	if lead.Status == models.LeadStatusConverted {
		utils.Conflict(c, "Lead is already converted", nil)
		return
	}

	if req.UserID != nil {
		var user models.User
		if err := config.DB.First(&user, *req.UserID).Error; err != nil {
			utils.NotFound(c, "User not found")
			return
		}
	}

	now := time.Now()
	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction: %v", tx.Error)
		utils.InternalServerError(c, "Failed to convert lead", nil)
		return
	}

	if err := tx.Model(&lead).Updates(map[string]interface{}{
		"status":       models.LeadStatusConverted,
		"converted_at": now,
	}).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to update lead ID: %d: %v", lead.ID, err)
		utils.InternalServerError(c, "Failed to convert lead", err.Error())
		return
	}

	customer := models.Customer{
		LeadID:       &lead.ID,
		UserID:       req.UserID,
		AssignedToID: lead.AssignedToID,
	}
	if err := tx.Create(&customer).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to create customer for lead ID: %d: %v", lead.ID, err)
		utils.InternalServerError(c, "Failed to convert lead", err.Error())
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit lead conversion for lead ID: %d: %v", lead.ID, err)
		utils.InternalServerError(c, "Failed to convert lead", err.Error())
		return
	}

	utils.LogAdminAction(c, models.AdminActionUpdate, "Lead", &lead.ID,
		fmt.Sprintf("Converted lead %s to customer %d", lead.FullName(), customer.ID))
	utils.LogInfo("Lead ID: %d converted to customer ID: %d", lead.ID, customer.ID)
	utils.Success(c, "Lead converted successfully", gin.H{
		"lead_id":     lead.ID,
		"customer_id": customer.ID,
	})
}
