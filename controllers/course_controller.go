package controllers

import (
	"fmt"
	"strconv"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/courses
func ListCourses(c *gin.Context) {
	utils.LogInfo("ListCourses called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Course{}).Where("is_active = ?", true)

	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if language := c.Query("language"); language != "" {
		query = query.Where("language = ?", language)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count courses: %v", err)
		utils.InternalServerError(c, "Failed to fetch courses", err.Error())
		return
	}
	pagination.SetTotal(total)

	var courses []models.Course
	if err := query.Order("title").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&courses).Error; err != nil {
		utils.LogError("Failed to fetch courses: %v", err)
		utils.InternalServerError(c, "Failed to fetch courses", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, gin.H{"courses": courses}, pagination)
}

// GET /v1/courses/:id
func GetCourse(c *gin.Context) {
	courseID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid course ID", nil)
		return
	}

	var course models.Course
	if err := config.DB.Preload("Groups").First(&course, courseID).Error; err != nil {
		utils.NotFound(c, "Course not found")
		return
	}

	utils.Success(c, "Course retrieved successfully", gin.H{"course": course})
}

// Admin: create a course
func CreateCourse(c *gin.Context) {
	utils.LogInfo("CreateCourse called")

	var req struct {
		Title         string  `json:"title" binding:"required"`
		Description   string  `json:"description"`
		Price         float64 `json:"price"`
		Currency      string  `json:"currency"`
		Level         string  `json:"level"`
		Language      string  `json:"language"`
		DurationHours int     `json:"duration_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. title is required", err.Error())
		return
	}
	if req.Price < 0 {
		utils.BadRequest(c, "Price cannot be negative", nil)
		return
	}
	if req.Currency != "" && !utils.ValidateCurrency(req.Currency) {
		utils.BadRequest(c, "Invalid currency code", nil)
		return
	}

	course := models.Course{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Currency:      req.Currency,
		Level:         req.Level,
		Language:      req.Language,
		DurationHours: req.DurationHours,
		IsActive:      true,
	}
	if course.Currency == "" {
		course.Currency = models.DefaultCurrency
	}
	if course.Level == "" {
		course.Level = models.CourseLevelBeginner
	}

	if err := config.DB.Create(&course).Error; err != nil {
		utils.LogError("Failed to create course: %v", err)
		utils.InternalServerError(c, "Failed to create course", err.Error())
		return
	}

	utils.LogAdminAction(c, models.AdminActionCreate, "Course", &course.ID,
		fmt.Sprintf("Created course %q", course.Title))
	utils.LogInfo("Created course ID: %d", course.ID)
	utils.Created(c, "Course created successfully", gin.H{"course": course})
}

// Admin: update a course
func UpdateCourse(c *gin.Context) {
	utils.LogInfo("UpdateCourse called")

	courseID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid course ID", nil)
		return
	}

	var course models.Course
	if err := config.DB.First(&course, courseID).Error; err != nil {
		utils.NotFound(c, "Course not found")
		return
	}

	var req struct {
		Title         *string  `json:"title"`
		Description   *string  `json:"description"`
		Price         *float64 `json:"price"`
		Level         *string  `json:"level"`
		Language      *string  `json:"language"`
		DurationHours *int     `json:"duration_hours"`
		IsActive      *bool    `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			utils.BadRequest(c, "Price cannot be negative", nil)
			return
		}
		updates["price"] = *req.Price
	}
	if req.Level != nil {
		updates["level"] = *req.Level
	}
	if req.Language != nil {
		updates["language"] = *req.Language
	}
	if req.DurationHours != nil {
		updates["duration_hours"] = *req.DurationHours
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update", nil)
		return
	}

	if err := config.DB.Model(&course).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update course ID: %d: %v", course.ID, err)
		utils.InternalServerError(c, "Failed to update course", err.Error())
		return
	}

	utils.LogAdminAction(c, models.AdminActionUpdate, "Course", &course.ID,
		fmt.Sprintf("Updated course %q", course.Title))
	utils.LogInfo("Updated course ID: %d", course.ID)
	utils.Success(c, "Course updated successfully", gin.H{"course": course})
}

// Admin: soft delete a course
func DeleteCourse(c *gin.Context) {
	utils.LogInfo("DeleteCourse called")

	courseID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid course ID", nil)
		return
	}

	var course models.Course
	if err := config.DB.First(&course, courseID).Error; err != nil {
		utils.NotFound(c, "Course not found")
		return
	}

	if err := config.DB.Delete(&course).Error; err != nil {
		utils.LogError("Failed to delete course ID: %d: %v", course.ID, err)
		utils.InternalServerError(c, "Failed to delete course", err.Error())
		return
	}

	utils.LogAdminAction(c, models.AdminActionDelete, "Course", &course.ID,
		fmt.Sprintf("Deleted course %q", course.Title))
	utils.LogInfo("Deleted course ID: %d", course.ID)
	utils.Success(c, "Course deleted successfully", nil)
}
