package controllers

import (
	"strconv"
	"time"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// Staff: create a deal for a customer
func CreateDeal(c *gin.Context) {
	utils.LogInfo("CreateDeal called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		Title             string  `json:"title" binding:"required"`
		CustomerID        uint    `json:"customer_id" binding:"required"`
		Value             float64 `json:"value"`
		Currency          string  `json:"currency"`
		Probability       int     `json:"probability"`
		ExpectedCloseDate string  `json:"expected_close_date"`
		AssignedToID      *uint   `json:"assigned_to_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. title and customer_id are required", err.Error())
		return
	}
	if req.Value < 0 {
		utils.BadRequest(c, "Deal value cannot be negative", nil)
		return
	}
	if req.Probability < 0 || req.Probability > 100 {
		utils.BadRequest(c, "Probability must be between 0 and 100", nil)
		return
	}

	var customer models.Customer
	if err := config.DB.First(&customer, req.CustomerID).Error; err != nil {
		utils.NotFound(c, "Customer not found")
		return
	}

	deal := models.Deal{
		Title:        req.Title,
		CustomerID:   customer.ID,
		LeadID:       customer.LeadID,
		Value:        req.Value,
		Currency:     req.Currency,
		Status:       models.DealStatusNew,
		Probability:  req.Probability,
		AssignedToID: req.AssignedToID,
		CreatedByID:  user.ID,
	}
	if deal.Currency == "" {
		deal.Currency = models.DefaultCurrency
	}
	if req.ExpectedCloseDate != "" {
		if t, err := parseDate(req.ExpectedCloseDate); err == nil {
			deal.ExpectedCloseDate = &t
		}
	}

	if err := config.DB.Create(&deal).Error; err != nil {
		utils.LogError("Failed to create deal: %v", err)
		utils.InternalServerError(c, "Failed to create deal", err.Error())
		return
	}

	utils.LogInfo("Created deal ID: %d for customer ID: %d", deal.ID, customer.ID)
	utils.Created(c, "Deal created successfully", gin.H{"deal": deal})
}

// Staff: list deals with filters
func ListDeals(c *gin.Context) {
	utils.LogInfo("ListDeals called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Deal{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		query = query.Where("assigned_to_id = ?", assignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count deals: %v", err)
		utils.InternalServerError(c, "Failed to fetch deals", err.Error())
		return
	}
	pagination.SetTotal(total)

	var deals []models.Deal
	if err := query.Preload("Customer").Preload("AssignedTo").
		Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&deals).Error; err != nil {
		utils.LogError("Failed to fetch deals: %v", err)
		utils.InternalServerError(c, "Failed to fetch deals", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, gin.H{"deals": deals}, pagination)
}

// Staff: move a deal through its pipeline
func UpdateDealStatus(c *gin.Context) {
	utils.LogInfo("UpdateDealStatus called")

	dealID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid deal ID", nil)
		return
	}

	var req struct {
		Status      string `json:"status" binding:"required"`
		Probability *int   `json:"probability"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. status is required", err.Error())
		return
	}

	switch req.Status {
	case models.DealStatusNew, models.DealStatusQualified, models.DealStatusProposal,
		models.DealStatusNegotiation, models.DealStatusWon, models.DealStatusLost,
		models.DealStatusCancelled:
	default:
		utils.BadRequest(c, "Invalid deal status", nil)
		return
	}

	var deal models.Deal
	if err := config.DB.First(&deal, dealID).Error; err != nil {
		utils.NotFound(c, "Deal not found")
		return
	}
	if deal.IsClosed() {
		utils.BadRequest(c, "Closed deals cannot change status", nil)
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Probability != nil {
		if *req.Probability < 0 || *req.Probability > 100 {
			utils.BadRequest(c, "Probability must be between 0 and 100", nil)
			return
		}
		updates["probability"] = *req.Probability
	}
	switch req.Status {
	case models.DealStatusWon:
		updates["closed_at"] = time.Now()
		updates["probability"] = 100
	case models.DealStatusLost, models.DealStatusCancelled:
		updates["closed_at"] = time.Now()
		updates["probability"] = 0
	}

	if err := config.DB.Model(&deal).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update deal ID: %d: %v", deal.ID, err)
		utils.InternalServerError(c, "Failed to update deal", err.Error())
		return
	}

	utils.LogInfo("Deal ID: %d moved to status: %s", deal.ID, req.Status)
	utils.Success(c, "Deal updated successfully", gin.H{"deal": deal})
}
