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

type CommentsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCommentsController(db *gorm.DB, cfg *config.Config) *CommentsController {
	return &CommentsController{DB: db, Cfg: cfg}
}

// AddChapterComment godoc
// @Summary Comment on a chapter
// @Tags comments
// @Accept json
// @Produce json
// @Success 201 {object} models.ChapterComment
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/chapters/{chapterId}/comments [post]
func (cc *CommentsController) AddChapterComment(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	chapterID := c.Params("chapterId")

	var input struct {
		Text string `json:"text" validate:"required,max=2000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var chapter models.Chapter
	err = cc.DB.
		Where("chapter_id = ? AND section_row_id IN (?)",
			chapterID,
			cc.DB.Model(&models.Section{}).Select("id").Where("course_id = ?", courseID),
		).
		First(&chapter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Chapter not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	comment := models.ChapterComment{
		CommentID: uuid.NewString(),
		CourseID:  courseID,
		ChapterID: chapterID,
		UserID:    userID,
		UserName:  user.Username,
		UserImage: user.Image,
		Text:      input.Text,
	}

	if err := cc.DB.Create(&comment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create comment")
	}

	return utils.Created(c, comment)
}

// GetChapterComments godoc
// @Summary List a chapter's comments
// @Tags comments
// @Produce json
// @Success 200 {array} models.ChapterComment
// @Router /courses/{id}/chapters/{chapterId}/comments [get]
func (cc *CommentsController) GetChapterComments(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	chapterID := c.Params("chapterId")

	var comments []models.ChapterComment
	result := cc.DB.
		Where("course_id = ? AND chapter_id = ?", courseID, chapterID).
		Order("created_at ASC").
		Find(&comments)
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not fetch comments")
	}

	return c.JSON(fiber.Map{"comments": comments})
}
