package controllers

import (
	"strconv"
	"time"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// Staff: plan a call, meeting or email for a lead, customer or deal
func CreateActivity(c *gin.Context) {
	utils.LogInfo("CreateActivity called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description"`
		ActivityType string `json:"activity_type" binding:"required"`
		CustomerID   *uint  `json:"customer_id"`
		LeadID       *uint  `json:"lead_id"`
		DealID       *uint  `json:"deal_id"`
		AssignedToID uint   `json:"assigned_to_id"`
		DueDate      string `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. title, activity_type and due_date are required", err.Error())
		return
	}

	switch req.ActivityType {
	case models.ActivityTypeCall, models.ActivityTypeMeeting, models.ActivityTypeEmail, models.ActivityTypeNote:
	default:
		utils.BadRequest(c, "Invalid activity type", nil)
		return
	}
	if req.CustomerID == nil && req.LeadID == nil && req.DealID == nil {
		utils.BadRequest(c, "Activity must reference a lead, customer or deal", nil)
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		utils.BadRequest(c, "Invalid due_date", err.Error())
		return
	}

	assignedTo := req.AssignedToID
	if assignedTo == 0 {
		assignedTo = user.ID
	}

	activity := models.Activity{
		Title:        req.Title,
		Description:  req.Description,
		ActivityType: req.ActivityType,
		Status:       models.ActivityStatusPlanned,
		CustomerID:   req.CustomerID,
		LeadID:       req.LeadID,
		DealID:       req.DealID,
		AssignedToID: assignedTo,
		DueDate:      dueDate,
		CreatedByID:  user.ID,
	}
	if err := config.DB.Create(&activity).Error; err != nil {
		utils.LogError("Failed to create activity: %v", err)
		utils.InternalServerError(c, "Failed to create activity", err.Error())
		return
	}

	utils.LogInfo("Created activity ID: %d assigned to user ID: %d", activity.ID, assignedTo)
	utils.Created(c, "Activity created successfully", gin.H{"activity": activity})
}

// Staff: list activities with filters
func ListActivities(c *gin.Context) {
	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Activity{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if activityType := c.Query("type"); activityType != "" {
		query = query.Where("activity_type = ?", activityType)
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		query = query.Where("assigned_to_id = ?", assignedTo)
	}
	if leadID := c.Query("lead_id"); leadID != "" {
		query = query.Where("lead_id = ?", leadID)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count activities: %v", err)
		utils.InternalServerError(c, "Failed to fetch activities", err.Error())
		return
	}
	pagination.SetTotal(total)

	var activities []models.Activity
	if err := query.Preload("AssignedTo").
		Order("due_date").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&activities).Error; err != nil {
		utils.LogError("Failed to fetch activities: %v", err)
		utils.InternalServerError(c, "Failed to fetch activities", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, gin.H{"activities": activities}, pagination)
}

// Staff: mark an activity completed or cancelled
func CompleteActivity(c *gin.Context) {
	utils.LogInfo("CompleteActivity called")

	activityID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid activity ID", nil)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Status == "" {
		req.Status = models.ActivityStatusCompleted
	}
	if req.Status != models.ActivityStatusCompleted && req.Status != models.ActivityStatusCancelled {
		utils.BadRequest(c, "Status must be completed or cancelled", nil)
		return
	}

	var activity models.Activity
	if err := config.DB.First(&activity, activityID).Error; err != nil {
		utils.NotFound(c, "Activity not found")
		return
	}
	if activity.Status != models.ActivityStatusPlanned {
		utils.BadRequest(c, "Only planned activities can be closed", nil)
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.ActivityStatusCompleted {
		updates["completed_at"] = time.Now()
	}
	if err := config.DB.Model(&activity).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update activity ID: %d: %v", activity.ID, err)
		utils.InternalServerError(c, "Failed to update activity", err.Error())
		return
	}

	utils.LogInfo("Activity ID: %d closed as %s", activity.ID, req.Status)
	utils.Success(c, "Activity updated successfully", gin.H{"activity": activity})
}

// Staff: create an internal task
func CreateTask(c *gin.Context) {
	utils.LogInfo("CreateTask called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description"`
		Priority     string `json:"priority"`
		AssignedToID uint   `json:"assigned_to_id"`
		DueDate      string `json:"due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. title and due_date are required", err.Error())
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		utils.BadRequest(c, "Invalid due_date", err.Error())
		return
	}

	assignedTo := req.AssignedToID
	if assignedTo == 0 {
		assignedTo = user.ID
	}

	task := models.Task{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Status:       models.TaskStatusNew,
		AssignedToID: assignedTo,
		DueDate:      dueDate,
		CreatedByID:  user.ID,
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}

	if err := config.DB.Create(&task).Error; err != nil {
		utils.LogError("Failed to create task: %v", err)
		utils.InternalServerError(c, "Failed to create task", err.Error())
		return
	}

	utils.LogInfo("Created task ID: %d assigned to user ID: %d", task.ID, assignedTo)
	utils.Created(c, "Task created successfully", gin.H{"task": task})
}

// Staff: list tasks
func ListTasks(c *gin.Context) {
	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Task{})

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
		utils.LogError("Failed to count tasks: %v", err)
		utils.InternalServerError(c, "Failed to fetch tasks", err.Error())
		return
	}
	pagination.SetTotal(total)

	var tasks []models.Task
	if err := query.Preload("AssignedTo").
		Order("due_date").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&tasks).Error; err != nil {
		utils.LogError("Failed to fetch tasks: %v", err)
		utils.InternalServerError(c, "Failed to fetch tasks", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, gin.H{"tasks": tasks}, pagination)
}

// Staff: update a task's status
func UpdateTaskStatus(c *gin.Context) {
	utils.LogInfo("UpdateTaskStatus called")

	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid task ID", nil)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. status is required", err.Error())
		return
	}

	switch req.Status {
	case models.TaskStatusNew, models.TaskStatusInProgress, models.TaskStatusCompleted, models.TaskStatusCancelled:
	default:
		utils.BadRequest(c, "Invalid task status", nil)
		return
	}

	var task models.Task
	if err := config.DB.First(&task, taskID).Error; err != nil {
		utils.NotFound(c, "Task not found")
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.TaskStatusCompleted {
		updates["completed_at"] = time.Now()
	}
	if err := config.DB.Model(&task).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update task ID: %d: %v", task.ID, err)
		utils.InternalServerError(c, "Failed to update task", err.Error())
		return
	}

	utils.LogInfo("Task ID: %d moved to status: %s", task.ID, req.Status)
	utils.Success(c, "Task updated successfully", gin.H{"task": task})
}

// Staff: attach a note to a lead, customer or deal
func CreateNote(c *gin.Context) {
	utils.LogInfo("CreateNote called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		Title      string `json:"title" binding:"required"`
		Content    string `json:"content"`
		CustomerID *uint  `json:"customer_id"`
		LeadID     *uint  `json:"lead_id"`
		DealID     *uint  `json:"deal_id"`
		IsPrivate  bool   `json:"is_private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. title is required", err.Error())
		return
	}
	if req.CustomerID == nil && req.LeadID == nil && req.DealID == nil {
		utils.BadRequest(c, "Note must reference a lead, customer or deal", nil)
		return
	}

	note := models.Note{
		Title:       req.Title,
		Content:     req.Content,
		CustomerID:  req.CustomerID,
		LeadID:      req.LeadID,
		DealID:      req.DealID,
		IsPrivate:   req.IsPrivate,
		CreatedByID: user.ID,
	}
	if err := config.DB.Create(&note).Error; err != nil {
		utils.LogError("Failed to create note: %v", err)
		utils.InternalServerError(c, "Failed to create note", err.Error())
		return
	}

	utils.LogInfo("Created note ID: %d by user ID: %d", note.ID, user.ID)
	utils.Created(c, "Note created successfully", gin.H{"note": note})
}

// Staff: list customers
func ListCustomers(c *gin.Context) {
	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Customer{})

	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		query = query.Where("assigned_to_id = ?", assignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count customers: %v", err)
		utils.InternalServerError(c, "Failed to fetch customers", err.Error())
		return
	}
	pagination.SetTotal(total)

	var customers []models.Customer
	if err := query.Preload("User").Preload("Lead").Preload("AssignedTo").
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&customers).Error; err != nil {
		utils.LogError("Failed to fetch customers: %v", err)
		utils.InternalServerError(c, "Failed to fetch customers", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, gin.H{"customers": customers}, pagination)
}
