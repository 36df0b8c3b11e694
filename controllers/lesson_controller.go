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

// GET /v1/lessons
func ListLessons(c *gin.Context) {
	utils.LogInfo("ListLessons called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Lesson{})

	if groupID := c.Query("group_id"); groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}
	if teacherID := c.Query("teacher_id"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}
	if from := c.Query("from"); from != "" {
		if t, err := parseDate(from); err == nil {
			query = query.Where("start_time >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := parseDate(to); err == nil {
			query = query.Where("start_time < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count lessons: %v", err)
		utils.InternalServerError(c, "Failed to fetch lessons", err.Error())
		return
	}
	pagination.SetTotal(total)

	var lessons []models.Lesson
	if err := query.Preload("Group").Preload("Teacher").
		Order("start_time").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&lessons).Error; err != nil {
		utils.LogError("Failed to fetch lessons: %v", err)
		utils.InternalServerError(c, "Failed to fetch lessons", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, gin.H{"lessons": lessons}, pagination)
}

// Staff: schedule a lesson for a group
func CreateLesson(c *gin.Context) {
	utils.LogInfo("CreateLesson called")

	var req struct {
		Title           string `json:"title" binding:"required"`
		Description     string `json:"description"`
		LessonType      string `json:"lesson_type"`
		GroupID         uint   `json:"group_id" binding:"required"`
		TeacherID       uint   `json:"teacher_id"`
		StartTime       string `json:"start_time" binding:"required"`
		DurationMinutes int    `json:"duration_minutes"`
		MeetingURL      string `json:"meeting_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. title, group_id and start_time are required", err.Error())
		return
	}

	var group models.Group
	if err := config.DB.First(&group, req.GroupID).Error; err != nil {
		utils.NotFound(c, "Group not found")
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		utils.BadRequest(c, "start_time must be RFC3339", err.Error())
		return
	}

	teacherID := req.TeacherID
	if teacherID == 0 {
		teacherID = group.TeacherID
	}

	lesson := models.Lesson{
		Title:           req.Title,
		Description:     req.Description,
		LessonType:      req.LessonType,
		GroupID:         group.ID,
		TeacherID:       teacherID,
		StartTime:       startTime,
		DurationMinutes: req.DurationMinutes,
		MeetingURL:      req.MeetingURL,
	}
	if lesson.LessonType == "" {
		lesson.LessonType = models.LessonTypeGroup
	}
	if lesson.DurationMinutes == 0 {
		lesson.DurationMinutes = 60
	}

	if err := config.DB.Create(&lesson).Error; err != nil {
		utils.LogError("Failed to create lesson: %v", err)
		utils.InternalServerError(c, "Failed to create lesson", err.Error())
		return
	}

	utils.LogAdminAction(c, models.AdminActionCreate, "Lesson", &lesson.ID,
		fmt.Sprintf("Scheduled lesson %q for group %q", lesson.Title, group.Title))
	utils.LogInfo("Created lesson ID: %d for group ID: %d", lesson.ID, group.ID)
	utils.Created(c, "Lesson scheduled successfully", gin.H{"lesson": lesson})
}

// Staff: mark a lesson completed
func CompleteLesson(c *gin.Context) {
	utils.LogInfo("CompleteLesson called")

	lessonID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lesson ID", nil)
		return
	}

	var lesson models.Lesson
	if err := config.DB.First(&lesson, lessonID).Error; err != nil {
		utils.NotFound(c, "Lesson not found")
		return
	}

	if err := config.DB.Model(&lesson).Update("is_completed", true).Error; err != nil {
		utils.LogError("Failed to complete lesson ID: %d: %v", lesson.ID, err)
		utils.InternalServerError(c, "Failed to update lesson", err.Error())
		return
	}

	utils.LogInfo("Lesson ID: %d marked completed", lesson.ID)
	utils.Success(c, "Lesson marked completed", nil)
}

// Staff: record attendance for a lesson in one shot
func MarkAttendance(c *gin.Context) {
	utils.LogInfo("MarkAttendance called")

	lessonID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lesson ID", nil)
		return
	}

	var lesson models.Lesson
	if err := config.DB.First(&lesson, lessonID).Error; err != nil {
		utils.NotFound(c, "Lesson not found")
		return
	}

	var req struct {
		Records []struct {
			StudentID uint   `json:"student_id" binding:"required"`
			Status    string `json:"status" binding:"required"`
			Comment   string `json:"comment"`
		} `json:"records" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. records are required", err.Error())
		return
	}

	for _, record := range req.Records {
		switch record.Status {
		case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate, models.AttendanceExcused:
		default:
			utils.BadRequest(c, fmt.Sprintf("Invalid attendance status: %s", record.Status), nil)
			return
		}
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction: %v", tx.Error)
		utils.InternalServerError(c, "Failed to record attendance", nil)
		return
	}

	for _, record := range req.Records {
		// One row per lesson and student; re-marking overwrites.
		var existing models.Attendance
		err := tx.Where("lesson_id = ? AND student_id = ?", lesson.ID, record.StudentID).First(&existing).Error
		if err == nil {
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"status":  record.Status,
				"comment": record.Comment,
			}).Error; err != nil {
				tx.Rollback()
				utils.LogError("Failed to update attendance: %v", err)
				utils.InternalServerError(c, "Failed to record attendance", err.Error())
				return
			}
			continue
		}

		attendance := models.Attendance{
			LessonID:  lesson.ID,
			StudentID: record.StudentID,
			Status:    record.Status,
			Comment:   record.Comment,
		}
		if err := tx.Create(&attendance).Error; err != nil {
			tx.Rollback()
			utils.LogError("Failed to create attendance: %v", err)
			utils.InternalServerError(c, "Failed to record attendance", err.Error())
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit attendance for lesson ID: %d: %v", lesson.ID, err)
		utils.InternalServerError(c, "Failed to record attendance", err.Error())
		return
	}

	utils.LogInfo("Recorded attendance for %d students, lesson ID: %d", len(req.Records), lesson.ID)
	utils.Success(c, "Attendance recorded successfully", gin.H{"recorded": len(req.Records)})
}

// GET /v1/lessons/:id/attendance
func GetLessonAttendance(c *gin.Context) {
	lessonID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lesson ID", nil)
		return
	}

	var records []models.Attendance
	if err := config.DB.Preload("Student").
		Where("lesson_id = ?", lessonID).
		Find(&records).Error; err != nil {
		utils.LogError("Failed to fetch attendance for lesson ID: %d: %v", lessonID, err)
		utils.InternalServerError(c, "Failed to fetch attendance", err.Error())
		return
	}

	utils.Success(c, "Attendance retrieved successfully", gin.H{"attendance": records})
}
