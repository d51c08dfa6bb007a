package controllers

import (
	"encoding/json"
	"errors"
	"strconv"

	"courseportal/backend/config"
	"courseportal/backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminQuizzesController is the authoring side of quizzes. Unlike the student
// endpoints it returns correct answers and unpublished quizzes.
type AdminQuizzesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAdminQuizzesController(db *gorm.DB, cfg *config.Config) *AdminQuizzesController {
	return &AdminQuizzesController{DB: db, Cfg: cfg}
}

type quizInput struct {
	CourseID         uint   `json:"course_id"`
	ScheduleItemID   *uint  `json:"schedule_item_id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	TimeLimitMinutes *int   `json:"time_limit_minutes"`
	PassingScore     *int   `json:"passing_score"`
	IsPublished      *bool  `json:"is_published"`
}

type questionInput struct {
	QuestionText  string   `json:"question_text" validate:"required"`
	QuestionType  string   `json:"question_type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Points        *int     `json:"points"`
}

func (aq *AdminQuizzesController) ListQuizzes(c *fiber.Ctx) error {
	var quizzes []models.Quiz
	query := aq.DB.Order("created_at DESC")
	if courseID := c.Query("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if err := query.Find(&quizzes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, quiz := range quizzes {
		var questions int64
		aq.DB.Model(&models.QuizQuestion{}).Where("quiz_id = ?", quiz.ID).Count(&questions)
		var attempts int64
		aq.DB.Model(&models.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&attempts)

		result = append(result, fiber.Map{
			"id":           quiz.ID,
			"course_id":    quiz.CourseID,
			"title":        quiz.Title,
			"is_published": quiz.IsPublished,
			"questions":    questions,
			"attempts":     attempts,
		})
	}

	return c.JSON(result)
}

func (aq *AdminQuizzesController) CreateQuiz(c *fiber.Ctx) error {
	var input quizInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.CourseID == 0 || input.Title == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "course_id and title are required",
		})
	}

	var course models.Course
	if err := aq.DB.First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	quiz := models.Quiz{
		CourseID:         input.CourseID,
		ScheduleItemID:   input.ScheduleItemID,
		Title:            input.Title,
		Description:      input.Description,
		TimeLimitMinutes: input.TimeLimitMinutes,
	}
	if input.PassingScore != nil {
		quiz.PassingScore = *input.PassingScore
	} else {
		quiz.PassingScore = 60
	}
	if input.IsPublished != nil {
		quiz.IsPublished = *input.IsPublished
	}

	if err := aq.DB.Create(&quiz).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create quiz",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Quiz created",
		"quiz":    quiz,
	})
}

// GetQuiz returns the quiz with full question rows, correct answers included.
func (aq *AdminQuizzesController) GetQuiz(c *fiber.Ctx) error {
	quiz, resp := aq.findQuiz(c)
	if quiz == nil {
		return resp
	}

	var questions []models.QuizQuestion
	if err := aq.DB.Where("quiz_id = ?", quiz.ID).Order("sort_order ASC").Find(&questions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	quiz.Questions = questions

	return c.JSON(fiber.Map{"quiz": quiz})
}

func (aq *AdminQuizzesController) UpdateQuiz(c *fiber.Ctx) error {
	quiz, resp := aq.findQuiz(c)
	if quiz == nil {
		return resp
	}

	var input quizInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Title != "" {
		quiz.Title = input.Title
	}
	if input.Description != "" {
		quiz.Description = input.Description
	}
	if input.ScheduleItemID != nil {
		quiz.ScheduleItemID = input.ScheduleItemID
	}
	if input.TimeLimitMinutes != nil {
		quiz.TimeLimitMinutes = input.TimeLimitMinutes
	}
	if input.PassingScore != nil {
		quiz.PassingScore = *input.PassingScore
	}
	if input.IsPublished != nil {
		quiz.IsPublished = *input.IsPublished
	}

	if err := aq.DB.Save(quiz).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update quiz",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Quiz updated",
		"quiz":    quiz,
	})
}

func (aq *AdminQuizzesController) DeleteQuiz(c *fiber.Ctx) error {
	quiz, resp := aq.findQuiz(c)
	if quiz == nil {
		return resp
	}

	err := aq.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizAttempt{}).Error; err != nil {
			return err
		}
		return tx.Delete(quiz).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete quiz",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Quiz deleted",
	})
}

// ReplaceQuestions swaps the full question list. Sort order follows the
// submitted order.
func (aq *AdminQuizzesController) ReplaceQuestions(c *fiber.Ctx) error {
	quiz, resp := aq.findQuiz(c)
	if quiz == nil {
		return resp
	}

	var input struct {
		Questions []questionInput `json:"questions" validate:"dive"`
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

	var questions []models.QuizQuestion
	err := aq.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return err
		}
		for i, in := range input.Questions {
			options, err := json.Marshal(in.Options)
			if err != nil {
				return err
			}

			question := models.QuizQuestion{
				QuizID:        quiz.ID,
				QuestionText:  in.QuestionText,
				QuestionType:  in.QuestionType,
				Options:       datatypes.JSON(options),
				CorrectAnswer: in.CorrectAnswer,
				SortOrder:     i,
			}
			if question.QuestionType == "" {
				question.QuestionType = models.QuestionTypeMultipleChoice
			}
			if in.Points != nil {
				question.Points = *in.Points
			} else {
				question.Points = 1
			}

			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			questions = append(questions, question)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update questions",
		})
	}

	return c.JSON(fiber.Map{
		"message":   "Questions updated",
		"questions": questions,
	})
}

func (aq *AdminQuizzesController) findQuiz(c *fiber.Ctx) (*models.Quiz, error) {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	var quiz models.Quiz
	if err := aq.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quiz not found",
			})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
	return &quiz, nil
}
