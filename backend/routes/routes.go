package routes

import (
	"log"

	"courseportal/backend/config"
	"courseportal/backend/controllers"
	"courseportal/backend/mailer"
	"courseportal/backend/middleware"
	"courseportal/backend/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	staffMiddleware := middleware.StaffMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Course catalog and syllabus
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)

	// Enrollment and lesson progress
	enrollmentsController := controllers.NewEnrollmentsController(db, cfg)
	courses.Post("/:id/enroll", enrollmentsController.Enroll)
	app.Get("/api/enrollments", authMiddleware, enrollmentsController.GetEnrollments)
	app.Post("/api/schedule-items/:id/progress", authMiddleware, enrollmentsController.UpdateLessonProgress)

	// Quiz taking
	quizzesController := controllers.NewQuizzesController(db, cfg, logger)
	quizzes := app.Group("/api/quizzes", authMiddleware)
	quizzes.Get("/:id", quizzesController.GetQuiz)
	quizzes.Get("/:id/attempts", quizzesController.GetAttempts)
	quizzes.Post("/:id/attempts", quizzesController.StartAttempt)
	quizzes.Put("/:id/attempts/answer", quizzesController.AnswerAttempt)
	quizzes.Post("/:id/attempts/next", quizzesController.NextQuestion)
	quizzes.Post("/:id/attempts/previous", quizzesController.PreviousQuestion)
	quizzes.Post("/:id/attempts/submit", quizzesController.SubmitAttempt)

	// Notification inbox
	notificationsController := controllers.NewNotificationsController(db, cfg, mailer.New(cfg), logger)
	app.Get("/api/notifications", authMiddleware, notificationsController.GetMyNotifications)
	app.Post("/api/notifications/:id/read", authMiddleware, notificationsController.MarkRead)

	// Admin routes for courses
	adminCoursesController := controllers.NewAdminCoursesController(db, cfg)
	adminCourses := app.Group("/api/admin/courses", staffMiddleware)
	adminCourses.Get("/", adminCoursesController.ListCourses)
	adminCourses.Post("/", adminCoursesController.CreateCourse)
	adminCourses.Get("/:id", adminCoursesController.GetCourse)
	adminCourses.Put("/:id", adminCoursesController.UpdateCourse)
	adminCourses.Delete("/:id", adminCoursesController.DeleteCourse)
	adminCourses.Put("/:id/schedule", adminCoursesController.ReplaceSchedule)
	adminCourses.Post("/:id/news", adminCoursesController.AddNews)
	adminCourses.Put("/:id/outcomes", adminCoursesController.ReplaceOutcomes)
	adminCourses.Put("/:id/assessments", adminCoursesController.ReplaceAssessments)
	adminCourses.Post("/:id/resources", adminCoursesController.AddResource)
	adminCourses.Delete("/:id/resources/:resourceId", adminCoursesController.DeleteResource)

	// Admin routes for quizzes
	adminQuizzesController := controllers.NewAdminQuizzesController(db, cfg)
	adminQuizzes := app.Group("/api/admin/quizzes", staffMiddleware)
	adminQuizzes.Get("/", adminQuizzesController.ListQuizzes)
	adminQuizzes.Post("/", adminQuizzesController.CreateQuiz)
	adminQuizzes.Get("/:id", adminQuizzesController.GetQuiz)
	adminQuizzes.Put("/:id", adminQuizzesController.UpdateQuiz)
	adminQuizzes.Delete("/:id", adminQuizzesController.DeleteQuiz)
	adminQuizzes.Put("/:id/questions", adminQuizzesController.ReplaceQuestions)

	// Admin notifications
	adminNotifications := app.Group("/api/admin/notifications", staffMiddleware)
	adminNotifications.Get("/", notificationsController.ListNotifications)
	adminNotifications.Post("/", notificationsController.SendNotification)

	// Admin dashboard
	adminController := controllers.NewAdminController(db, cfg, storage.NewClient(cfg))
	admin := app.Group("/api/admin", staffMiddleware)
	admin.Get("/stats", adminController.Stats)
	admin.Get("/students", adminController.Students)
	admin.Post("/uploads", adminController.Upload)
}
