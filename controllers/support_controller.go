package controllers

import (
	"strconv"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// POST /v1/support/tickets
func CreateTicket(c *gin.Context) {
	utils.LogInfo("CreateTicket called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required"`
		Priority    string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. title and description are required", err.Error())
		return
	}

	if req.Priority != "" {
		switch req.Priority {
		case models.TicketPriorityLow, models.TicketPriorityMedium, models.TicketPriorityHigh:
		default:
			utils.BadRequest(c, "Invalid priority", nil)
			return
		}
	}

	ticket := models.SupportTicket{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TicketStatusOpen,
		Priority:    req.Priority,
		UserID:      user.ID,
	}
	if ticket.Priority == "" {
		ticket.Priority = models.TicketPriorityMedium
	}

	if err := config.DB.Create(&ticket).Error; err != nil {
		utils.LogError("Failed to create ticket for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to create ticket", err.Error())
		return
	}
	utils.LogInfo("Created ticket ID: %d for user ID: %d", ticket.ID, user.ID)

	// Let admins know, but never fail the ticket on email problems.
	var admins []models.User
	if err := config.DB.Where("role = ? AND is_active = ?", models.RoleAdmin, true).Find(&admins).Error; err == nil {
		for i := range admins {
			if err := utils.SendTicketNotificationEmail(&admins[i], &ticket, req.Description); err != nil {
				utils.LogError("Failed to notify admin ID: %d about ticket ID: %d: %v", admins[i].ID, ticket.ID, err)
			}
		}
	}

	utils.Created(c, "Ticket created successfully", gin.H{"ticket": ticket})
}

// GET /v1/support/tickets/my
func ListMyTickets(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.SupportTicket{}).Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count tickets for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch tickets", err.Error())
		return
	}
	pagination.SetTotal(total)

	var tickets []models.SupportTicket
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&tickets).Error; err != nil {
		utils.LogError("Failed to fetch tickets for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch tickets", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, gin.H{"tickets": tickets}, pagination)
}

// Staff: list all tickets
func AdminListTickets(c *gin.Context) {
	utils.LogInfo("AdminListTickets called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.SupportTicket{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		query = query.Where("assigned_to_id = ?", assignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count tickets: %v", err)
		utils.InternalServerError(c, "Failed to fetch tickets", err.Error())
		return
	}
	pagination.SetTotal(total)

	var tickets []models.SupportTicket
	if err := query.Preload("User").Preload("AssignedTo").
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&tickets).Error; err != nil {
		utils.LogError("Failed to fetch tickets: %v", err)
		utils.InternalServerError(c, "Failed to fetch tickets", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, gin.H{"tickets": tickets}, pagination)
}

// GET /v1/support/tickets/:id
func GetTicket(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	ticketID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid ticket ID", nil)
		return
	}

	query := config.DB.Preload("User").Preload("AssignedTo").Preload("Messages.Sender")
	if user.Role == models.RoleStudent || user.Role == models.RoleParent {
		query = query.Where("user_id = ?", user.ID)
	}

	var ticket models.SupportTicket
	if err := query.First(&ticket, ticketID).Error; err != nil {
		utils.NotFound(c, "Ticket not found")
		return
	}

	utils.Success(c, "Ticket retrieved successfully", gin.H{"ticket": ticket})
}

// POST /v1/support/tickets/:id/messages
func AddTicketMessage(c *gin.Context) {
	utils.LogInfo("AddTicketMessage called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	ticketID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid ticket ID", nil)
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. content is required", err.Error())
		return
	}

	query := config.DB.Preload("User")
	if user.Role == models.RoleStudent || user.Role == models.RoleParent {
		query = query.Where("user_id = ?", user.ID)
	}

	var ticket models.SupportTicket
	if err := query.First(&ticket, ticketID).Error; err != nil {
		utils.NotFound(c, "Ticket not found")
		return
	}
	if ticket.Status == models.TicketStatusClosed {
		utils.BadRequest(c, "Ticket is closed", nil)
		return
	}

	message := models.TicketMessage{
		TicketID: ticket.ID,
		SenderID: user.ID,
		Content:  req.Content,
	}
	if err := config.DB.Create(&message).Error; err != nil {
		utils.LogError("Failed to add message to ticket ID: %d: %v", ticket.ID, err)
		utils.InternalServerError(c, "Failed to add message", err.Error())
		return
	}
	utils.LogInfo("Message ID: %d added to ticket ID: %d", message.ID, ticket.ID)

	// Staff replies notify the ticket owner.
	if user.ID != ticket.UserID {
		if err := utils.SendTicketNotificationEmail(&ticket.User, &ticket, req.Content); err != nil {
			utils.LogError("Failed to notify ticket owner for ticket ID: %d: %v", ticket.ID, err)
		}
	}

	utils.Created(c, "Message added successfully", gin.H{"message": message})
}

// Staff: update ticket status or assignee
func UpdateTicket(c *gin.Context) {
	utils.LogInfo("UpdateTicket called")

	ticketID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid ticket ID", nil)
		return
	}

	var req struct {
		Status       string `json:"status"`
		Priority     string `json:"priority"`
		AssignedToID *uint  `json:"assigned_to_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var ticket models.SupportTicket
	if err := config.DB.First(&ticket, ticketID).Error; err != nil {
		utils.NotFound(c, "Ticket not found")
		return
	}

	updates := map[string]interface{}{}
	if req.Status != "" {
		switch req.Status {
		case models.TicketStatusOpen, models.TicketStatusInProgress, models.TicketStatusResolved, models.TicketStatusClosed:
		default:
			utils.BadRequest(c, "Invalid ticket status", nil)
			return
		}
		updates["status"] = req.Status
	}
	if req.Priority != "" {
		switch req.Priority {
		case models.TicketPriorityLow, models.TicketPriorityMedium, models.TicketPriorityHigh:
		default:
			utils.BadRequest(c, "Invalid priority", nil)
			return
		}
		updates["priority"] = req.Priority
	}
	if req.AssignedToID != nil {
		var staff models.User
		if err := config.DB.Where("id = ? AND role IN ?", *req.AssignedToID,
			[]string{models.RoleAdmin, models.RoleTeacher}).First(&staff).Error; err != nil {
			utils.BadRequest(c, "Assignee must be a staff member", nil)
			return
		}
		updates["assigned_to_id"] = *req.AssignedToID
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update", nil)
		return
	}

	if err := config.DB.Model(&ticket).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update ticket ID: %d: %v", ticket.ID, err)
		utils.InternalServerError(c, "Failed to update ticket", err.Error())
		return
	}

	utils.LogInfo("Ticket ID: %d updated", ticket.ID)
	utils.Success(c, "Ticket updated successfully", gin.H{"ticket": ticket})
}
