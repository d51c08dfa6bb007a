package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"courseportal/backend/config"
	"courseportal/backend/middleware"
	"courseportal/backend/models"
	"courseportal/backend/quiz"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizzesController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Sessions *quiz.Manager
}

func NewQuizzesController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *QuizzesController {
	qc := &QuizzesController{DB: db, Cfg: cfg}
	qc.Sessions = quiz.NewManager(qc.persistAttempt, logger)
	return qc
}

// persistAttempt writes the finished attempt row. Runs once per session,
// for user submits and timeout auto-submits alike.
func (qc *QuizzesController) persistAttempt(s *quiz.Session, r quiz.Result) error {
	answers := datatypes.JSONMap{}
	for questionID, answer := range s.Answers() {
		answers[strconv.Itoa(int(questionID))] = answer
	}

	now := time.Now()
	attempt := models.QuizAttempt{
		QuizID:      s.QuizID(),
		UserID:      s.UserID(),
		Answers:     answers,
		Score:       r.Score,
		MaxScore:    r.MaxScore,
		Percentage:  r.Percentage,
		StartedAt:   s.StartedAt(),
		CompletedAt: &now,
	}
	return qc.DB.Create(&attempt).Error
}

// GetQuiz returns the quiz with its question list. Correct answers and point
// values stay server-side.
func (qc *QuizzesController) GetQuiz(c *fiber.Ctx) error {
	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	record, err := qc.loadPublishedQuiz(uint(quizID))
	if err != nil {
		return qc.quizLoadError(c, err)
	}

	var questions []fiber.Map
	for _, q := range record.Questions {
		questions = append(questions, fiber.Map{
			"id":            q.ID,
			"question_text": q.QuestionText,
			"question_type": q.QuestionType,
			"options":       parseOptions(q.Options),
			"sort_order":    q.SortOrder,
		})
	}

	return c.JSON(fiber.Map{
		"quiz": fiber.Map{
			"id":                 record.ID,
			"course_id":          record.CourseID,
			"title":              record.Title,
			"description":        record.Description,
			"time_limit_minutes": record.TimeLimitMinutes,
			"passing_score":      record.PassingScore,
			"questions":          questions,
		},
	})
}

// GetAttempts lists the user's past attempts for a quiz, newest first.
func (qc *QuizzesController) GetAttempts(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	var attempts []models.QuizAttempt
	if err := qc.DB.Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("created_at DESC").Find(&attempts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(attempts)
}

// StartAttempt opens a fresh attempt session. An existing live session for
// the same quiz is discarded: a retake never resumes old state.
func (qc *QuizzesController) StartAttempt(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	record, err := qc.loadPublishedQuiz(uint(quizID))
	if err != nil {
		return qc.quizLoadError(c, err)
	}

	var enrolled int64
	qc.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, record.CourseID).
		Count(&enrolled)
	if enrolled == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not enrolled in this course",
		})
	}

	questions := make([]quiz.Question, 0, len(record.Questions))
	for _, q := range record.Questions {
		questions = append(questions, quiz.Question{
			ID:            q.ID,
			Text:          q.QuestionText,
			Type:          q.QuestionType,
			Options:       parseOptions(q.Options),
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		})
	}

	timeLimit := 0
	if record.TimeLimitMinutes != nil {
		timeLimit = *record.TimeLimitMinutes
	}

	session := qc.Sessions.Start(userID, uint(quizID), questions, timeLimit)
	if session.State() == quiz.StateNoQuestions {
		return c.JSON(fiber.Map{
			"state":   session.State().String(),
			"message": "No questions in this quiz",
		})
	}

	return c.JSON(sessionView(session))
}

// AnswerAttempt records an answer on the live session. Answers can be changed
// until the attempt is submitted.
func (qc *QuizzesController) AnswerAttempt(c *fiber.Ctx) error {
	session, resp := qc.activeSession(c)
	if session == nil {
		return resp
	}

	var input struct {
		QuestionID uint   `json:"question_id"`
		Answer     string `json:"answer"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if err := session.Answer(input.QuestionID, input.Answer); err != nil {
		switch {
		case errors.Is(err, quiz.ErrUnknownQuestion):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Question is not part of this quiz",
			})
		default:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Attempt is no longer in progress",
			})
		}
	}

	return c.JSON(sessionView(session))
}

func (qc *QuizzesController) NextQuestion(c *fiber.Ctx) error {
	session, resp := qc.activeSession(c)
	if session == nil {
		return resp
	}

	if err := session.Next(); err != nil {
		if errors.Is(err, quiz.ErrLastQuestion) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Already at the last question, submit instead",
			})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Attempt is no longer in progress",
		})
	}

	return c.JSON(sessionView(session))
}

func (qc *QuizzesController) PreviousQuestion(c *fiber.Ctx) error {
	session, resp := qc.activeSession(c)
	if session == nil {
		return resp
	}

	if err := session.Previous(); err != nil {
		if errors.Is(err, quiz.ErrFirstQuestion) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Already at the first question",
			})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Attempt is no longer in progress",
		})
	}

	return c.JSON(sessionView(session))
}

// SubmitAttempt scores the attempt and persists it. A persistence failure is
// reported but the computed result is still returned, so the student always
// sees their score.
func (qc *QuizzesController) SubmitAttempt(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	result, err := qc.Sessions.Submit(userID, uint(quizID))
	switch {
	case errors.Is(err, quiz.ErrNoSession):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active attempt for this quiz",
		})
	case errors.Is(err, quiz.ErrAlreadySubmitted):
		return c.JSON(fiber.Map{
			"message": "Attempt was already submitted",
			"result":  result,
		})
	case err != nil:
		return c.JSON(fiber.Map{
			"message": "Quiz submitted",
			"result":  result,
			"error":   "Could not save attempt",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Quiz submitted",
		"result":  result,
	})
}

func (qc *QuizzesController) activeSession(c *fiber.Ctx) (*quiz.Session, error) {
	userID := middleware.UserID(c)

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	session, ok := qc.Sessions.Get(userID, uint(quizID))
	if !ok {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active attempt for this quiz",
		})
	}
	return session, nil
}

func (qc *QuizzesController) loadPublishedQuiz(quizID uint) (*models.Quiz, error) {
	var record models.Quiz
	err := qc.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_questions.sort_order ASC")
		}).
		First(&record, quizID).Error
	if err != nil {
		return nil, err
	}
	if !record.IsPublished {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}

func (qc *QuizzesController) quizLoadError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Quiz not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Could not query database",
	})
}

func sessionView(session *quiz.Session) fiber.Map {
	question, index, total := session.Current()
	view := fiber.Map{
		"state": session.State().String(),
		"index": index,
		"total": total,
		"question": fiber.Map{
			"id":            question.ID,
			"question_text": question.Text,
			"question_type": question.Type,
			"options":       question.Options,
		},
		"answers": session.Answers(),
	}
	if remaining := session.Remaining(); remaining >= 0 {
		view["remaining_seconds"] = remaining
	}
	return view
}

func parseOptions(raw datatypes.JSON) []string {
	var options []string
	if len(raw) > 0 {
		json.Unmarshal(raw, &options)
	}
	return options
}
