package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationTypeAnnouncement = "announcement"
	NotificationTypeAssignment   = "assignment"
	NotificationTypeQuiz         = "quiz"
	NotificationTypeResource     = "resource"
)

type Notification struct {
	gorm.Model
	CourseID         uint   `gorm:"index;not null" json:"course_id"`
	CreatedBy        uint   `json:"created_by"`
	Title            string `gorm:"not null" json:"title"`
	Message          string `gorm:"not null" json:"message"`
	NotificationType string `gorm:"default:announcement" json:"notification_type"`

	Course     Course                  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Recipients []NotificationRecipient `json:"recipients,omitempty"`
}

// NotificationRecipient is one fan-out row per user enrolled at send time.
// Users who enroll later do not receive earlier notifications.
type NotificationRecipient struct {
	gorm.Model
	NotificationID uint       `gorm:"index;not null" json:"notification_id"`
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	EmailSent      bool       `gorm:"default:false" json:"email_sent"`
	ReadAt         *time.Time `json:"read_at"`

	Notification Notification `json:"notification,omitempty" gorm:"foreignKey:NotificationID"`
}
