package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Enrollment links a user to a course. The (user, course) pair is unique;
// a second insert surfaces as gorm.ErrDuplicatedKey and is treated as
// "already enrolled" rather than a failure.
type Enrollment struct {
	gorm.Model
	UserID     uint              `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"user_id"`
	CourseID   uint              `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"course_id"`
	EnrolledAt time.Time         `json:"enrolled_at"`
	Progress   datatypes.JSONMap `json:"progress"` // opaque key-value blob, keys owned by the client

	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

type LessonProgress struct {
	gorm.Model
	UserID         uint       `gorm:"uniqueIndex:idx_lesson_progress_user_item;not null" json:"user_id"`
	ScheduleItemID uint       `gorm:"uniqueIndex:idx_lesson_progress_user_item;not null" json:"schedule_item_id"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at"`
}
