package controllers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"courseportal/backend/config"
	"courseportal/backend/mailer"
	"courseportal/backend/middleware"
	"courseportal/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NotificationsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer mailer.Mailer
	Logger *log.Logger
}

func NewNotificationsController(db *gorm.DB, cfg *config.Config, m mailer.Mailer, logger *log.Logger) *NotificationsController {
	return &NotificationsController{DB: db, Cfg: cfg, Mailer: m, Logger: logger}
}

// GetMyNotifications returns the user's inbox, newest first.
func (nc *NotificationsController) GetMyNotifications(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var recipients []models.NotificationRecipient
	if err := nc.DB.
		Preload("Notification").
		Preload("Notification.Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recipients).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	unread := 0
	for _, r := range recipients {
		if r.ReadAt == nil {
			unread++
		}
		result = append(result, fiber.Map{
			"id":                r.ID,
			"read_at":           r.ReadAt,
			"notification_type": r.Notification.NotificationType,
			"title":             r.Notification.Title,
			"message":           r.Notification.Message,
			"created_at":        r.Notification.CreatedAt,
			"course_code":       r.Notification.Course.Code,
			"course_title":      r.Notification.Course.Title,
		})
	}

	return c.JSON(fiber.Map{
		"notifications": result,
		"unread":        unread,
	})
}

// MarkRead stamps a single inbox entry as read. Marking twice keeps the
// original timestamp.
func (nc *NotificationsController) MarkRead(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	recipientID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	var recipient models.NotificationRecipient
	if err := nc.DB.Where("id = ? AND user_id = ?", recipientID, userID).First(&recipient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Notification not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if recipient.ReadAt == nil {
		now := time.Now()
		recipient.ReadAt = &now
		if err := nc.DB.Save(&recipient).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not update notification",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Marked as read",
		"read_at": recipient.ReadAt,
	})
}

// SendNotification creates a course announcement and fans it out to everyone
// enrolled at this moment. Emails are best effort: a failed send is logged
// and counted, never fatal.
func (nc *NotificationsController) SendNotification(c *fiber.Ctx) error {
	var input struct {
		CourseID         uint   `json:"course_id" validate:"required"`
		Title            string `json:"title" validate:"required"`
		Message          string `json:"message" validate:"required"`
		NotificationType string `json:"notification_type"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if input.NotificationType == "" {
		input.NotificationType = models.NotificationTypeAnnouncement
	}

	var course models.Course
	if err := nc.DB.First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	notification := models.Notification{
		CourseID:         course.ID,
		CreatedBy:        middleware.UserID(c),
		Title:            input.Title,
		Message:          input.Message,
		NotificationType: input.NotificationType,
	}
	if err := nc.DB.Create(&notification).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create notification",
		})
	}

	// Recipient list is a snapshot of current enrollments. Students who
	// enroll later do not receive past notifications.
	var enrollments []models.Enrollment
	if err := nc.DB.Preload("User").Where("course_id = ?", course.ID).Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query enrollments",
		})
	}

	html := mailer.NotificationHTML(course.Code, course.Title, notification.Title, notification.Message)
	subject := "[" + course.Code + "] " + notification.Title

	sent, failed := 0, 0
	for _, enrollment := range enrollments {
		recipient := models.NotificationRecipient{
			NotificationID: notification.ID,
			UserID:         enrollment.UserID,
		}

		if err := nc.Mailer.Send(enrollment.User.Email, subject, html); err != nil {
			nc.Logger.Printf("notification %d: email to %s failed: %v", notification.ID, enrollment.User.Email, err)
			failed++
		} else {
			recipient.EmailSent = true
			sent++
		}

		if err := nc.DB.Create(&recipient).Error; err != nil {
			nc.Logger.Printf("notification %d: recipient row for user %d failed: %v", notification.ID, enrollment.UserID, err)
		}
	}

	return c.JSON(fiber.Map{
		"message":       "Notification sent",
		"notification":  notification,
		"recipients":    len(enrollments),
		"emails_sent":   sent,
		"emails_failed": failed,
	})
}

// ListNotifications shows the admin history across all courses.
func (nc *NotificationsController) ListNotifications(c *fiber.Ctx) error {
	var notifications []models.Notification
	if err := nc.DB.Preload("Course").Order("created_at DESC").Find(&notifications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, n := range notifications {
		var recipients int64
		nc.DB.Model(&models.NotificationRecipient{}).Where("notification_id = ?", n.ID).Count(&recipients)

		result = append(result, fiber.Map{
			"id":                n.ID,
			"title":             n.Title,
			"message":           n.Message,
			"notification_type": n.NotificationType,
			"created_at":        n.CreatedAt,
			"course_code":       n.Course.Code,
			"course_title":      n.Course.Title,
			"recipients":        recipients,
		})
	}

	return c.JSON(result)
}
