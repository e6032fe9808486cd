package routes

import (
	"log"

	"learnhub/config"
	"learnhub/controllers"
	"learnhub/middleware"

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
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// Course catalog
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.ListCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)

	// Enrollment
	enrollmentController := controllers.NewEnrollmentController(db, cfg)
	courses.Post("/:id/enroll", enrollmentController.Enroll)
	courses.Delete("/:id/enroll", enrollmentController.Unenroll)

	// Comments and homework
	commentsController := controllers.NewCommentsController(db, cfg)
	courses.Get("/:id/chapters/:chapterId/comments", commentsController.GetChapterComments)
	courses.Post("/:id/chapters/:chapterId/comments", commentsController.AddChapterComment)

	homeworkController := controllers.NewHomeworkController(db, cfg)
	courses.Get("/:id/homework", homeworkController.ListSubmissions)
	courses.Post("/:id/chapters/:chapterId/homework", homeworkController.SubmitHomework)

	// Progress and leaderboards. Leaderboard routes are registered before the
	// parameterized user routes so "leaderboard" is not captured as a userId.
	progressController := controllers.NewProgressController(db, cfg, logger)
	prog := app.Group("/api/progress", authMiddleware)
	prog.Get("/leaderboard", progressController.GetLearningLeaderboard)
	prog.Get("/leaderboard/course/:courseId", progressController.GetCourseLeaderboard)
	prog.Get("/:userId/enrolled-courses", progressController.GetEnrolledCourses)
	prog.Post("/:userId/courses/batch", progressController.GetProgressBatch)
	prog.Get("/:userId/courses/:courseId", progressController.GetProgress)
	prog.Put("/:userId/courses/:courseId", progressController.UpdateProgress)

	// Payments
	paymentController := controllers.NewPaymentController(db, cfg, logger)
	app.Post("/api/payments", authMiddleware, paymentController.InitiatePayment)
	app.Post("/api/payments/callback", paymentController.PaymentCallback)

	// Bootcamps
	bootcampController := controllers.NewBootcampController(db, cfg)
	app.Get("/api/bootcamps", bootcampController.ListBootcamps)
	app.Get("/api/bootcamps/:id", bootcampController.GetBootcamp)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Post("/courses", coursesController.CreateCourse)
	admin.Put("/courses/:id", coursesController.UpdateCourse)
	admin.Post("/courses/:id/sections", coursesController.AddSection)
	admin.Post("/courses/:id/sections/:sectionId/chapters", coursesController.AddChapter)
	admin.Delete("/courses/:id/chapters/:chapterId", coursesController.DeleteChapter)
	admin.Put("/homework/:submissionId/grade", homeworkController.GradeSubmission)
	admin.Post("/bootcamps", bootcampController.CreateBootcamp)
	admin.Post("/bootcamps/:id/courses", bootcampController.AddCourse)
}
