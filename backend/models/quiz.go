package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
)

type Quiz struct {
	gorm.Model
	CourseID         uint   `gorm:"index;not null" json:"course_id"`
	ScheduleItemID   *uint  `gorm:"index" json:"schedule_item_id"`
	Title            string `gorm:"not null" json:"title"`
	Description      string `json:"description"`
	TimeLimitMinutes *int   `json:"time_limit_minutes"`
	PassingScore     int    `gorm:"default:60" json:"passing_score"`
	IsPublished      bool   `gorm:"default:false" json:"is_published"`

	Questions []QuizQuestion `json:"questions,omitempty"`
}

type QuizQuestion struct {
	gorm.Model
	QuizID        uint           `gorm:"index;not null" json:"quiz_id"`
	QuestionText  string         `gorm:"not null" json:"question_text"`
	QuestionType  string         `gorm:"default:multiple_choice" json:"question_type"` // multiple_choice, true_false
	Options       datatypes.JSON `json:"options"`                                      // JSON array of option strings
	CorrectAnswer string         `gorm:"not null" json:"correct_answer"`
	Points        int            `gorm:"default:1" json:"points"`
	SortOrder     int            `json:"sort_order"`
}

type QuizAttempt struct {
	gorm.Model
	QuizID      uint              `gorm:"index;not null" json:"quiz_id"`
	UserID      uint              `gorm:"index;not null" json:"user_id"`
	Answers     datatypes.JSONMap `json:"answers"` // question id -> chosen answer
	Score       int               `json:"score"`
	MaxScore    int               `json:"max_score"`
	Percentage  float64           `json:"percentage"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at"`
}
