package controllers

import (
	"fmt"
	"strconv"

	"github.com/fluencyclub/schoolcrm/config"
	"github.com/fluencyclub/schoolcrm/models"
	"github.com/fluencyclub/schoolcrm/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/groups
func ListGroups(c *gin.Context) {
	utils.LogInfo("ListGroups called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Group{})

	if courseID := c.Query("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if teacherID := c.Query("teacher_id"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count groups: %v", err)
		utils.InternalServerError(c, "Failed to fetch groups", err.Error())
		return
	}
	pagination.SetTotal(total)

	var groups []models.Group
	if err := query.Preload("Course").Preload("Teacher").
		Order("start_date DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&groups).Error; err != nil {
		utils.LogError("Failed to fetch groups: %v", err)
		utils.InternalServerError(c, "Failed to fetch groups", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, gin.H{"groups": groups}, pagination)
}

// GET /v1/groups/:id
func GetGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID", nil)
		return
	}

	var group models.Group
	if err := config.DB.Preload("Course").Preload("Teacher").Preload("Students").
		First(&group, groupID).Error; err != nil {
		utils.NotFound(c, "Group not found")
		return
	}

	utils.Success(c, "Group retrieved successfully", gin.H{"group": group})
}

// Staff: create a group for a course
func CreateGroup(c *gin.Context) {
	utils.LogInfo("CreateGroup called")

	var req struct {
		Title       string `json:"title" binding:"required"`
		CourseID    uint   `json:"course_id" binding:"required"`
		TeacherID   uint   `json:"teacher_id"`
		MaxStudents int    `json:"max_students"`
		StartDate   string `json:"start_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. title and course_id are required", err.Error())
		return
	}

	var course models.Course
	if err := config.DB.First(&course, req.CourseID).Error; err != nil {
		utils.NotFound(c, "Course not found")
		return
	}

	if req.TeacherID != 0 {
		var teacher models.User
		if err := config.DB.Where("id = ? AND role = ?", req.TeacherID, models.RoleTeacher).First(&teacher).Error; err != nil {
			utils.BadRequest(c, "Teacher not found", nil)
			return
		}
	}

	group := models.Group{
		Title:       req.Title,
		CourseID:    course.ID,
		TeacherID:   req.TeacherID,
		MaxStudents: req.MaxStudents,
		IsActive:    true,
	}
	if group.MaxStudents == 0 {
		group.MaxStudents = 10
	}
	if req.StartDate != "" {
		if t, err := parseDate(req.StartDate); err == nil {
			group.StartDate = t
		}
	}

	if err := config.DB.Create(&group).Error; err != nil {
		utils.LogError("Failed to create group: %v", err)
		utils.InternalServerError(c, "Failed to create group", err.Error())
		return
	}

	utils.LogAdminAction(c, models.AdminActionCreate, "Group", &group.ID,
		fmt.Sprintf("Created group %q for course %q", group.Title, course.Title))
	utils.LogInfo("Created group ID: %d for course ID: %d", group.ID, course.ID)
	utils.Created(c, "Group created successfully", gin.H{"group": group})
}

// Staff: manually enroll a student into a group
func AddStudentToGroup(c *gin.Context) {
	utils.LogInfo("AddStudentToGroup called")

	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID", nil)
		return
	}

	var req struct {
		StudentID uint `json:"student_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. student_id is required", err.Error())
		return
	}

	var group models.Group
	if err := config.DB.First(&group, groupID).Error; err != nil {
		utils.NotFound(c, "Group not found")
		return
	}

	var student models.User
	if err := config.DB.First(&student, req.StudentID).Error; err != nil {
		utils.NotFound(c, "Student not found")
		return
	}

	var count int64
	if err := config.DB.Table("group_students").
		Where("group_id = ? AND user_id = ?", group.ID, student.ID).
		Count(&count).Error; err == nil && count > 0 {
		utils.Conflict(c, "Student is already in this group", nil)
		return
	}

	var enrolled int64
	config.DB.Table("group_students").Where("group_id = ?", group.ID).Count(&enrolled)
	if group.MaxStudents > 0 && enrolled >= int64(group.MaxStudents) {
		utils.LogError("Group ID: %d is full (%d/%d)", group.ID, enrolled, group.MaxStudents)
		utils.BadRequest(c, "Group is full", nil)
		return
	}

	if err := config.DB.Model(&group).Association("Students").Append(&student); err != nil {
		utils.LogError("Failed to add student ID: %d to group ID: %d: %v", student.ID, group.ID, err)
		utils.InternalServerError(c, "Failed to add student", err.Error())
		return
	}

	utils.LogAdminAction(c, models.AdminActionUpdate, "Group", &group.ID,
		fmt.Sprintf("Added student %s to group %q", student.Username, group.Title))
	utils.LogInfo("Added student ID: %d to group ID: %d", student.ID, group.ID)
	utils.Success(c, "Student added to group", nil)
}

// Staff: remove a student from a group
func RemoveStudentFromGroup(c *gin.Context) {
	utils.LogInfo("RemoveStudentFromGroup called")

	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID", nil)
		return
	}
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		utils.BadRequest(c, "Invalid student ID", nil)
		return
	}

	var group models.Group
	if err := config.DB.First(&group, groupID).Error; err != nil {
		utils.NotFound(c, "Group not found")
		return
	}

	var student models.User
	if err := config.DB.First(&student, studentID).Error; err != nil {
		utils.NotFound(c, "Student not found")
		return
	}

	if err := config.DB.Model(&group).Association("Students").Delete(&student); err != nil {
		utils.LogError("Failed to remove student ID: %d from group ID: %d: %v", student.ID, group.ID, err)
		utils.InternalServerError(c, "Failed to remove student", err.Error())
		return
	}

	utils.LogAdminAction(c, models.AdminActionUpdate, "Group", &group.ID,
		fmt.Sprintf("Removed student %s from group %q", student.Username, group.Title))
	utils.LogInfo("Removed student ID: %d from group ID: %d", student.ID, group.ID)
	utils.Success(c, "Student removed from group", nil)
}
