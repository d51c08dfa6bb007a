package controllers

import (
	"errors"
	"io"

	"courseportal/backend/config"
	"courseportal/backend/models"
	"courseportal/backend/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminController covers the dashboard bits that do not belong to a single
// resource: stats, the student roster and file uploads.
type AdminController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Storage *storage.Client
}

func NewAdminController(db *gorm.DB, cfg *config.Config, store *storage.Client) *AdminController {
	return &AdminController{DB: db, Cfg: cfg, Storage: store}
}

func (ac *AdminController) Stats(c *fiber.Ctx) error {
	var courses, students, enrollments, quizzes, attempts, notifications int64

	ac.DB.Model(&models.Course{}).Count(&courses)
	ac.DB.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&students)
	ac.DB.Model(&models.Enrollment{}).Count(&enrollments)
	ac.DB.Model(&models.Quiz{}).Count(&quizzes)
	ac.DB.Model(&models.QuizAttempt{}).Count(&attempts)
	ac.DB.Model(&models.Notification{}).Count(&notifications)

	return c.JSON(fiber.Map{
		"courses":       courses,
		"students":      students,
		"enrollments":   enrollments,
		"quizzes":       quizzes,
		"attempts":      attempts,
		"notifications": notifications,
	})
}

// Students lists all enrollments with user and course, newest first.
func (ac *AdminController) Students(c *fiber.Ctx) error {
	var enrollments []models.Enrollment
	if err := ac.DB.Preload("User").Preload("Course").
		Order("enrolled_at DESC").Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, enrollment := range enrollments {
		result = append(result, fiber.Map{
			"enrollment_id": enrollment.ID,
			"enrolled_at":   enrollment.EnrolledAt,
			"user": fiber.Map{
				"id":        enrollment.User.ID,
				"email":     enrollment.User.Email,
				"full_name": enrollment.User.FullName,
			},
			"course": fiber.Map{
				"id":    enrollment.Course.ID,
				"code":  enrollment.Course.Code,
				"title": enrollment.Course.Title,
			},
		})
	}

	return c.JSON(result)
}

// Upload pushes a file to the storage service and returns its public URL.
// The folder form field groups files (slides, videos, documents).
func (ac *AdminController) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file in request",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not read file",
		})
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not read file",
		})
	}

	folder := c.FormValue("folder", "resources")
	url, err := ac.Storage.Upload(c.Context(), folder, fileHeader.Filename, content)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "File storage is not configured",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Upload failed",
		})
	}

	return c.JSON(fiber.Map{
		"message": "File uploaded",
		"url":     url,
	})
}
