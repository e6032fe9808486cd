package controllers

import (
	"errors"

	"learnhub/config"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HomeworkController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewHomeworkController(db *gorm.DB, cfg *config.Config) *HomeworkController {
	return &HomeworkController{DB: db, Cfg: cfg}
}

// SubmitHomework godoc
// @Summary Submit homework for a chapter
// @Tags homework
// @Accept json
// @Produce json
// @Success 201 {object} models.HomeworkSubmission
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/chapters/{chapterId}/homework [post]
func (hc *HomeworkController) SubmitHomework(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	chapterID := c.Params("chapterId")

	var input struct {
		Content string `json:"content" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var chapter models.Chapter
	err = hc.DB.
		Where("chapter_id = ? AND section_row_id IN (?)",
			chapterID,
			hc.DB.Model(&models.Section{}).Select("id").Where("course_id = ?", courseID),
		).
		First(&chapter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Chapter not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	submission := models.HomeworkSubmission{
		SubmissionID: uuid.NewString(),
		UserID:       userID,
		CourseID:     courseID,
		ChapterID:    chapterID,
		Content:      input.Content,
	}

	if err := hc.DB.Create(&submission).Error; err != nil {
		return utils.InternalServerError(c, "Could not create submission")
	}

	return utils.Created(c, submission)
}

// GradeSubmission godoc
// @Summary Grade a homework submission
// @Tags homework
// @Accept json
// @Produce json
// @Success 200 {object} models.HomeworkSubmission
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/homework/{submissionId}/grade [put]
func (hc *HomeworkController) GradeSubmission(c *fiber.Ctx) error {
	submissionID := c.Params("submissionId")

	var input struct {
		Grade int `json:"grade" validate:"gte=0,lte=100"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var submission models.HomeworkSubmission
	if err := hc.DB.Where("submission_id = ?", submissionID).First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Submission not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	submission.Graded = true
	submission.Grade = &input.Grade
	if err := hc.DB.Save(&submission).Error; err != nil {
		return utils.InternalServerError(c, "Could not grade submission")
	}

	return c.JSON(submission)
}

// ListSubmissions godoc
// @Summary List the authenticated user's submissions for a course
// @Tags homework
// @Produce json
// @Success 200 {array} models.HomeworkSubmission
// @Security ApiKeyAuth
// @Router /courses/{id}/homework [get]
func (hc *HomeworkController) ListSubmissions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var submissions []models.HomeworkSubmission
	result := hc.DB.
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("created_at DESC").
		Find(&submissions)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not fetch submissions")
	}

	return c.JSON(fiber.Map{"submissions": submissions})
}
