package controllers

import (
	"errors"
	"strconv"
	"time"

	"courseportal/backend/config"
	"courseportal/backend/middleware"
	"courseportal/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewEnrollmentsController(db *gorm.DB, cfg *config.Config) *EnrollmentsController {
	return &EnrollmentsController{DB: db, Cfg: cfg}
}

// Enroll registers the user for a course. Enrolling twice is benign: the
// unique (user, course) index rejects the second row and the request still
// succeeds with "already enrolled".
func (ec *EnrollmentsController) Enroll(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := ec.DB.First(&course, courseID).Error; err != nil {
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

	enrollment := models.Enrollment{
		UserID:     userID,
		CourseID:   course.ID,
		EnrolledAt: time.Now(),
	}

	if err := ec.DB.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(fiber.Map{
				"message":  "Already enrolled",
				"enrolled": true,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not enroll in course",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Enrolled",
		"enrolled": true,
		"enrollment": fiber.Map{
			"id":          enrollment.ID,
			"course_id":   enrollment.CourseID,
			"enrolled_at": enrollment.EnrolledAt,
		},
	})
}

// GetEnrollments backs the student dashboard: enrolled courses with lesson
// completion percentages.
func (ec *EnrollmentsController) GetEnrollments(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var enrollments []models.Enrollment
	if err := ec.DB.Preload("Course").Where("user_id = ?", userID).Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, enrollment := range enrollments {
		var totalLessons int64
		ec.DB.Model(&models.ScheduleItem{}).
			Where("course_id = ?", enrollment.CourseID).
			Count(&totalLessons)

		var doneLessons int64
		ec.DB.Model(&models.LessonProgress{}).
			Joins("JOIN schedule_items ON schedule_items.id = lesson_progresses.schedule_item_id").
			Where("lesson_progresses.user_id = ? AND schedule_items.course_id = ? AND lesson_progresses.completed = ?",
				userID, enrollment.CourseID, true).
			Count(&doneLessons)

		percent := 0
		if totalLessons > 0 {
			percent = int(float64(doneLessons) / float64(totalLessons) * 100)
		}

		result = append(result, fiber.Map{
			"id":          enrollment.ID,
			"course_id":   enrollment.CourseID,
			"enrolled_at": enrollment.EnrolledAt,
			"progress":    enrollment.Progress,
			"course": fiber.Map{
				"id":              enrollment.Course.ID,
				"code":            enrollment.Course.Code,
				"title":           enrollment.Course.Title,
				"semester":        enrollment.Course.Semester,
				"instructor_name": enrollment.Course.InstructorName,
			},
			"total_lessons":    totalLessons,
			"done_lessons":     doneLessons,
			"progress_percent": percent,
		})
	}

	return c.JSON(result)
}

// UpdateLessonProgress marks a schedule item complete (or not) for the user.
func (ec *EnrollmentsController) UpdateLessonProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	itemID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid schedule item ID",
		})
	}

	var input struct {
		Completed bool `json:"completed"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var item models.ScheduleItem
	if err := ec.DB.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Schedule item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// Progress is only tracked for enrolled students.
	var enrolled int64
	ec.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, item.CourseID).
		Count(&enrolled)
	if enrolled == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not enrolled in this course",
		})
	}

	var progress models.LessonProgress
	err = ec.DB.Where("user_id = ? AND schedule_item_id = ?", userID, itemID).First(&progress).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		progress = models.LessonProgress{
			UserID:         userID,
			ScheduleItemID: uint(itemID),
		}
	}

	progress.Completed = input.Completed
	if input.Completed {
		now := time.Now()
		progress.CompletedAt = &now
	} else {
		progress.CompletedAt = nil
	}

	if err := ec.DB.Save(&progress).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save progress",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Progress updated",
		"progress": progress,
	})
}
