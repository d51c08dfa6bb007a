package controllers

import (
	"errors"
	"strconv"

	"courseportal/backend/config"
	"courseportal/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

// GetCourses lists published courses for the catalog page.
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := cc.DB.Where("is_published = ?", true).Order("code").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, course := range courses {
		var enrolled int64
		cc.DB.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrolled)

		result = append(result, fiber.Map{
			"id":              course.ID,
			"code":            course.Code,
			"title":           course.Title,
			"description":     course.Description,
			"semester":        course.Semester,
			"instructor_name": course.InstructorName,
			"schedule_days":   course.ScheduleDays,
			"schedule_time":   course.ScheduleTime,
			"enrolled":        enrolled,
		})
	}

	return c.JSON(result)
}

// GetCourseDetails returns the full syllabus view: schedule, news, outcomes,
// assessments, resources and published quizzes.
func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	err = cc.DB.
		Preload("ScheduleItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("schedule_items.sort_order ASC")
		}).
		Preload("News", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_news.date DESC")
		}).
		Preload("Outcomes", func(db *gorm.DB) *gorm.DB {
			return db.Order("learning_outcomes.sort_order ASC")
		}).
		Preload("Assessments", func(db *gorm.DB) *gorm.DB {
			return db.Order("assessments.sort_order ASC")
		}).
		Preload("Resources").
		Preload("Quizzes", "is_published = ?", true).
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if !course.IsPublished {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	// Quiz questions are never exposed on the course view; quizzes are
	// listed with metadata only.
	var quizzes []fiber.Map
	for _, quiz := range course.Quizzes {
		var questionCount int64
		cc.DB.Model(&models.QuizQuestion{}).Where("quiz_id = ?", quiz.ID).Count(&questionCount)
		quizzes = append(quizzes, fiber.Map{
			"id":                 quiz.ID,
			"title":              quiz.Title,
			"description":        quiz.Description,
			"time_limit_minutes": quiz.TimeLimitMinutes,
			"passing_score":      quiz.PassingScore,
			"schedule_item_id":   quiz.ScheduleItemID,
			"questions":          questionCount,
		})
	}

	return c.JSON(fiber.Map{
		"course": fiber.Map{
			"id":               course.ID,
			"code":             course.Code,
			"title":            course.Title,
			"description":      course.Description,
			"semester":         course.Semester,
			"prerequisites":    course.Prerequisites,
			"instructor_name":  course.InstructorName,
			"instructor_email": course.InstructorEmail,
			"schedule_days":    course.ScheduleDays,
			"schedule_time":    course.ScheduleTime,
			"office_hours":     course.OfficeHours,
			"textbooks":        course.Textbooks,
			"schedule":         course.ScheduleItems,
			"news":             course.News,
			"outcomes":         course.Outcomes,
			"assessments":      course.Assessments,
			"resources":        course.Resources,
			"quizzes":          quizzes,
		},
	})
}
