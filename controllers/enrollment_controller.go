package controllers

import (
	"errors"

	"learnhub/config"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewEnrollmentController(db *gorm.DB, cfg *config.Config) *EnrollmentController {
	return &EnrollmentController{DB: db, Cfg: cfg}
}

// enroll creates the enrollment edge for (userID, courseID). Duplicate
// enrollment is reported via gorm.ErrDuplicatedKey semantics on the unique
// pair index, checked explicitly here for portability across drivers.
func enroll(db *gorm.DB, userID, courseID uint) (*models.Enrollment, error) {
	var existing models.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		return nil, gorm.ErrDuplicatedKey
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	edge := models.Enrollment{UserID: userID, CourseID: courseID}
	if err := db.Create(&edge).Error; err != nil {
		return nil, err
	}
	return &edge, nil
}

// Enroll godoc
// @Summary Enroll the authenticated user in a free course
// @Description Paid courses must go through the payment flow; this endpoint
// only grants access to courses with price zero.
// @Tags enrollment
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 402 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (ec *EnrollmentController) Enroll(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := ec.DB.Where("id = ? AND status = ?", courseID, "Published").First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found or not published")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if course.Price > 0 {
		return utils.Error(c, fiber.StatusPaymentRequired,
			fiber.NewError(fiber.StatusPaymentRequired, "Course requires payment"))
	}

	edge, err := enroll(ec.DB, userID, courseID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.Conflict(c, "Already enrolled in this course")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not enroll")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message":    "Enrolled",
		"enrollment": edge,
	})
}

// Unenroll godoc
// @Summary Remove the authenticated user's enrollment
// @Description Deletes the enrollment edge and the progress record; the
// user drops off both leaderboards immediately.
// @Tags enrollment
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [delete]
func (ec *EnrollmentController) Unenroll(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	result := ec.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not unenroll")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Not enrolled in this course")
	}

	ec.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&models.CourseProgress{})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Unenrolled"})
}
