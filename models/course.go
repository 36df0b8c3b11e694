package models

import (
	"time"

	"gorm.io/gorm"
)

// Course levels
const (
	CourseLevelBeginner     = "beginner"
	CourseLevelIntermediate = "intermediate"
	CourseLevelAdvanced     = "advanced"
)

// Course represents a course offered by the school
type Course struct {
	gorm.Model
	Title         string  `gorm:"not null" json:"title"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Currency      string  `gorm:"default:'RUB'" json:"currency"`
	Level         string  `gorm:"default:'beginner'" json:"level"`
	Language      string  `gorm:"default:'English'" json:"language"`
	DurationHours int     `json:"duration_hours"`
	IsActive      bool    `gorm:"default:true" json:"is_active"`
	Groups        []Group `json:"groups,omitempty" gorm:"foreignKey:CourseID"`
}

// Group represents a study group within a course
type Group struct {
	gorm.Model
	Title       string    `gorm:"not null" json:"title"`
	CourseID    uint      `gorm:"index" json:"course_id"`
	Course      Course    `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	TeacherID   uint      `json:"teacher_id"`
	Teacher     User      `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Students    []User    `json:"students,omitempty" gorm:"many2many:group_students;"`
	MaxStudents int       `gorm:"default:10" json:"max_students"`
	StartDate   time.Time `json:"start_date"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
}

// Lesson types
const (
	LessonTypeGroup      = "group"
	LessonTypeIndividual = "individual"
	LessonTypeTrial      = "trial"
)

// Lesson represents a scheduled class for a group
type Lesson struct {
	gorm.Model
	Title           string    `gorm:"not null" json:"title"`
	Description     string    `json:"description"`
	LessonType      string    `gorm:"default:'group'" json:"lesson_type"`
	GroupID         uint      `gorm:"index" json:"group_id"`
	Group           Group     `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	TeacherID       uint      `json:"teacher_id"`
	Teacher         User      `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	StartTime       time.Time `gorm:"index" json:"start_time"`
	DurationMinutes int       `gorm:"default:60" json:"duration_minutes"`
	MeetingURL      string    `json:"meeting_url"`
	IsCompleted     bool      `gorm:"default:false" json:"is_completed"`
}

// Attendance statuses
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// Attendance records a student's presence at a lesson
type Attendance struct {
	gorm.Model
	LessonID  uint   `gorm:"index:idx_attendance_lesson_student,unique" json:"lesson_id"`
	Lesson    Lesson `json:"lesson,omitempty" gorm:"foreignKey:LessonID"`
	StudentID uint   `gorm:"index:idx_attendance_lesson_student,unique" json:"student_id"`
	Student   User   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Status    string `gorm:"default:'present'" json:"status"`
	Comment   string `json:"comment"`
}
