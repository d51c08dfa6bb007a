package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Code            string         `gorm:"unique;not null" json:"code"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `json:"description"`
	Semester        string         `json:"semester"`
	Prerequisites   string         `json:"prerequisites"`
	InstructorID    uint           `json:"instructor_id"`
	InstructorName  string         `json:"instructor_name"`
	InstructorEmail string         `json:"instructor_email"`
	ScheduleDays    string         `json:"schedule_days"`
	ScheduleTime    string         `json:"schedule_time"`
	OfficeHours     pq.StringArray `gorm:"type:text[]" json:"office_hours"`
	Textbooks       pq.StringArray `gorm:"type:text[]" json:"textbooks"`
	IsPublished     bool           `gorm:"default:false" json:"is_published"`

	ScheduleItems []ScheduleItem    `json:"schedule_items,omitempty"`
	News          []CourseNews      `json:"news,omitempty"`
	Outcomes      []LearningOutcome `json:"outcomes,omitempty"`
	Assessments   []Assessment      `json:"assessments,omitempty"`
	Resources     []Resource        `json:"resources,omitempty"`
	Quizzes       []Quiz            `json:"quizzes,omitempty"`
}

const (
	VideoTypeYouTube  = "youtube"
	VideoTypeUploaded = "uploaded"
)

type ScheduleItem struct {
	gorm.Model
	CourseID  uint           `gorm:"index;not null" json:"course_id"`
	Chapter   string         `gorm:"not null" json:"chapter"`
	Topic     string         `gorm:"not null" json:"topic"`
	Notes     pq.StringArray `gorm:"type:text[]" json:"notes"`
	SlideURL  string         `json:"slide_url"`
	VideoURL  string         `json:"video_url"`
	VideoType string         `json:"video_type"` // youtube, uploaded
	SortOrder int            `json:"sort_order"`
}

type CourseNews struct {
	gorm.Model
	CourseID uint   `gorm:"index;not null" json:"course_id"`
	Date     string `json:"date"`
	Content  string `gorm:"not null" json:"content"`
}

type LearningOutcome struct {
	gorm.Model
	CourseID    uint   `gorm:"index;not null" json:"course_id"`
	OutcomeID   string `json:"outcome_id"` // display label, e.g. "LO1"
	Description string `gorm:"not null" json:"description"`
	SortOrder   int    `json:"sort_order"`
}

type Assessment struct {
	gorm.Model
	CourseID        uint           `gorm:"index;not null" json:"course_id"`
	Activity        string         `gorm:"not null" json:"activity"`
	GradePercentage string         `json:"grade_percentage"`
	Details         pq.StringArray `gorm:"type:text[]" json:"details"`
	SortOrder       int            `json:"sort_order"`
}

type Resource struct {
	gorm.Model
	CourseID       uint   `gorm:"index" json:"course_id"`
	ScheduleItemID *uint  `gorm:"index" json:"schedule_item_id"`
	Name           string `gorm:"not null" json:"name"`
	Type           string `gorm:"not null" json:"type"` // slides, video, document, link
	FileURL        string `json:"file_url"`
}
