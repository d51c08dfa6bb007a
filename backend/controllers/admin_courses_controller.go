package controllers

import (
	"errors"
	"strconv"

	"courseportal/backend/config"
	"courseportal/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// AdminCoursesController manages the course catalog. Every handler sits
// behind the staff middleware, so unpublished courses are visible here.
type AdminCoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAdminCoursesController(db *gorm.DB, cfg *config.Config) *AdminCoursesController {
	return &AdminCoursesController{DB: db, Cfg: cfg}
}

type courseInput struct {
	Code            string   `json:"code" validate:"required"`
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description"`
	Semester        string   `json:"semester"`
	Prerequisites   string   `json:"prerequisites"`
	InstructorName  string   `json:"instructor_name"`
	InstructorEmail string   `json:"instructor_email" validate:"omitempty,email"`
	ScheduleDays    string   `json:"schedule_days"`
	ScheduleTime    string   `json:"schedule_time"`
	OfficeHours     []string `json:"office_hours"`
	Textbooks       []string `json:"textbooks"`
	IsPublished     *bool    `json:"is_published"`
}

func (ac *AdminCoursesController) ListCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := ac.DB.Order("code").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, course := range courses {
		var enrolled int64
		ac.DB.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrolled)

		result = append(result, fiber.Map{
			"id":           course.ID,
			"code":         course.Code,
			"title":        course.Title,
			"semester":     course.Semester,
			"is_published": course.IsPublished,
			"enrolled":     enrolled,
		})
	}

	return c.JSON(result)
}

func (ac *AdminCoursesController) CreateCourse(c *fiber.Ctx) error {
	var input courseInput
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

	course := models.Course{
		Code:            input.Code,
		Title:           input.Title,
		Description:     input.Description,
		Semester:        input.Semester,
		Prerequisites:   input.Prerequisites,
		InstructorName:  input.InstructorName,
		InstructorEmail: input.InstructorEmail,
		ScheduleDays:    input.ScheduleDays,
		ScheduleTime:    input.ScheduleTime,
		OfficeHours:     pq.StringArray(input.OfficeHours),
		Textbooks:       pq.StringArray(input.Textbooks),
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}

	if err := ac.DB.Create(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A course with this code already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create course",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

func (ac *AdminCoursesController) GetCourse(c *fiber.Ctx) error {
	course, resp := ac.findCourse(c)
	if course == nil {
		return resp
	}

	if err := ac.DB.
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
		Preload("Quizzes").
		First(course, course.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{"course": course})
}

func (ac *AdminCoursesController) UpdateCourse(c *fiber.Ctx) error {
	course, resp := ac.findCourse(c)
	if course == nil {
		return resp
	}

	var input courseInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Code != "" {
		course.Code = input.Code
	}
	if input.Title != "" {
		course.Title = input.Title
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.Semester != "" {
		course.Semester = input.Semester
	}
	if input.Prerequisites != "" {
		course.Prerequisites = input.Prerequisites
	}
	if input.InstructorName != "" {
		course.InstructorName = input.InstructorName
	}
	if input.InstructorEmail != "" {
		course.InstructorEmail = input.InstructorEmail
	}
	if input.ScheduleDays != "" {
		course.ScheduleDays = input.ScheduleDays
	}
	if input.ScheduleTime != "" {
		course.ScheduleTime = input.ScheduleTime
	}
	if input.OfficeHours != nil {
		course.OfficeHours = pq.StringArray(input.OfficeHours)
	}
	if input.Textbooks != nil {
		course.Textbooks = pq.StringArray(input.Textbooks)
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}

	if err := ac.DB.Save(course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A course with this code already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update course",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Course updated",
		"course":  course,
	})
}

// DeleteCourse removes the course and everything hanging off it. Enrollments,
// schedule, news, quizzes and notifications for the course all go with it.
func (ac *AdminCoursesController) DeleteCourse(c *fiber.Ctx) error {
	course, resp := ac.findCourse(c)
	if course == nil {
		return resp
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		var quizIDs []uint
		tx.Model(&models.Quiz{}).Where("course_id = ?", course.ID).Pluck("id", &quizIDs)
		if len(quizIDs) > 0 {
			if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&models.QuizQuestion{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&models.QuizAttempt{}).Error; err != nil {
				return err
			}
		}

		var notificationIDs []uint
		tx.Model(&models.Notification{}).Where("course_id = ?", course.ID).Pluck("id", &notificationIDs)
		if len(notificationIDs) > 0 {
			if err := tx.Where("notification_id IN ?", notificationIDs).Delete(&models.NotificationRecipient{}).Error; err != nil {
				return err
			}
		}

		var itemIDs []uint
		tx.Model(&models.ScheduleItem{}).Where("course_id = ?", course.ID).Pluck("id", &itemIDs)
		if len(itemIDs) > 0 {
			if err := tx.Where("schedule_item_id IN ?", itemIDs).Delete(&models.LessonProgress{}).Error; err != nil {
				return err
			}
		}

		for _, model := range []interface{}{
			&models.Quiz{}, &models.Notification{}, &models.ScheduleItem{},
			&models.CourseNews{}, &models.LearningOutcome{}, &models.Assessment{},
			&models.Resource{}, &models.Enrollment{},
		} {
			if err := tx.Where("course_id = ?", course.ID).Delete(model).Error; err != nil {
				return err
			}
		}

		return tx.Delete(course).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete course",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Course deleted",
	})
}

// ReplaceSchedule swaps the full schedule in one transaction. The editor
// always submits the whole table, so replace is simpler than diffing.
func (ac *AdminCoursesController) ReplaceSchedule(c *fiber.Ctx) error {
	course, resp := ac.findCourse(c)
	if course == nil {
		return resp
	}

	var input struct {
		Items []struct {
			Chapter   string   `json:"chapter" validate:"required"`
			Topic     string   `json:"topic" validate:"required"`
			Notes     []string `json:"notes"`
			SlideURL  string   `json:"slide_url"`
			VideoURL  string   `json:"video_url"`
			VideoType string   `json:"video_type"`
		} `json:"items" validate:"dive"`
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

	var items []models.ScheduleItem
	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.ScheduleItem{}).Error; err != nil {
			return err
		}
		for i, in := range input.Items {
			item := models.ScheduleItem{
				CourseID:  course.ID,
				Chapter:   in.Chapter,
				Topic:     in.Topic,
				Notes:     pq.StringArray(in.Notes),
				SlideURL:  in.SlideURL,
				VideoURL:  in.VideoURL,
				VideoType: in.VideoType,
				SortOrder: i,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update schedule",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Schedule updated",
		"items":   items,
	})
}

func (ac *AdminCoursesController) AddNews(c *fiber.Ctx) error {
	course, resp := ac.findCourse(c)
	if course == nil {
		return resp
	}

	var input struct {
		Date    string `json:"date"`
		Content string `json:"content" validate:"required"`
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

	news := models.CourseNews{
		CourseID: course.ID,
		Date:     input.Date,
		Content:  input.Content,
	}
	if err := ac.DB.Create(&news).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create news item",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "News added",
		"news":    news,
	})
}

func (ac *AdminCoursesController) ReplaceOutcomes(c *fiber.Ctx) error {
	course, resp := ac.findCourse(c)
	if course == nil {
		return resp
	}

	var input struct {
		Outcomes []struct {
			OutcomeID   string `json:"outcome_id"`
			Description string `json:"description" validate:"required"`
		} `json:"outcomes" validate:"dive"`
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

	var outcomes []models.LearningOutcome
	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.LearningOutcome{}).Error; err != nil {
			return err
		}
		for i, in := range input.Outcomes {
			outcome := models.LearningOutcome{
				CourseID:    course.ID,
				OutcomeID:   in.OutcomeID,
				Description: in.Description,
				SortOrder:   i,
			}
			if err := tx.Create(&outcome).Error; err != nil {
				return err
			}
			outcomes = append(outcomes, outcome)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update outcomes",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Outcomes updated",
		"outcomes": outcomes,
	})
}

func (ac *AdminCoursesController) ReplaceAssessments(c *fiber.Ctx) error {
	course, resp := ac.findCourse(c)
	if course == nil {
		return resp
	}

	var input struct {
		Assessments []struct {
			Activity        string   `json:"activity" validate:"required"`
			GradePercentage string   `json:"grade_percentage"`
			Details         []string `json:"details"`
		} `json:"assessments" validate:"dive"`
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

	var assessments []models.Assessment
	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.Assessment{}).Error; err != nil {
			return err
		}
		for i, in := range input.Assessments {
			assessment := models.Assessment{
				CourseID:        course.ID,
				Activity:        in.Activity,
				GradePercentage: in.GradePercentage,
				Details:         pq.StringArray(in.Details),
				SortOrder:       i,
			}
			if err := tx.Create(&assessment).Error; err != nil {
				return err
			}
			assessments = append(assessments, assessment)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update assessments",
		})
	}

	return c.JSON(fiber.Map{
		"message":     "Assessments updated",
		"assessments": assessments,
	})
}

// AddResource attaches a course file entry, usually pointing at a URL the
// upload endpoint returned.
func (ac *AdminCoursesController) AddResource(c *fiber.Ctx) error {
	course, resp := ac.findCourse(c)
	if course == nil {
		return resp
	}

	var input struct {
		ScheduleItemID *uint  `json:"schedule_item_id"`
		Name           string `json:"name" validate:"required"`
		Type           string `json:"type" validate:"required,oneof=slides video document link"`
		FileURL        string `json:"file_url" validate:"required"`
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

	resource := models.Resource{
		CourseID:       course.ID,
		ScheduleItemID: input.ScheduleItemID,
		Name:           input.Name,
		Type:           input.Type,
		FileURL:        input.FileURL,
	}
	if err := ac.DB.Create(&resource).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create resource",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Resource added",
		"resource": resource,
	})
}

func (ac *AdminCoursesController) DeleteResource(c *fiber.Ctx) error {
	resourceID, err := strconv.Atoi(c.Params("resourceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resource ID",
		})
	}

	var resource models.Resource
	if err := ac.DB.First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Resource not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if err := ac.DB.Delete(&resource).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete resource",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Resource deleted",
	})
}

func (ac *AdminCoursesController) findCourse(c *fiber.Ctx) (*models.Course, error) {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := ac.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return &course, nil
}
