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

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

type chapterInput struct {
	Type     string `json:"type" validate:"required,oneof=Text Quiz Video"`
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content"`
	VideoURL string `json:"videoUrl"`
}

type sectionInput struct {
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description"`
	Chapters    []chapterInput `json:"chapters" validate:"dive"`
}

// CreateCourse godoc
// @Summary Create a course
// @Description Creates a draft course with its sections and typed chapters.
// @Tags courses
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	type CourseInput struct {
		Title       string         `json:"title" validate:"required"`
		Description string         `json:"description"`
		Category    string         `json:"category"`
		Image       string         `json:"image"`
		Price       int64          `json:"price" validate:"gte=0"`
		Level       string         `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
		Sections    []sectionInput `json:"sections" validate:"dive"`
	}

	var input CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	teacherID, _ := utils.ExtractUserIDFromToken(c, cc.Cfg)
	var teacher models.User
	cc.DB.First(&teacher, teacherID)

	course := models.Course{
		TeacherID:   teacherID,
		TeacherName: teacher.Username,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Image:       input.Image,
		Price:       input.Price,
		Level:       input.Level,
		Status:      "Draft",
	}
	for i, sec := range input.Sections {
		section := models.Section{
			SectionID:   uuid.NewString(),
			Title:       sec.Title,
			Description: sec.Description,
			Position:    i,
		}
		for j, ch := range sec.Chapters {
			section.Chapters = append(section.Chapters, models.Chapter{
				ChapterID: uuid.NewString(),
				Type:      ch.Type,
				Title:     ch.Title,
				Content:   ch.Content,
				VideoURL:  ch.VideoURL,
				Position:  j,
			})
		}
		course.Sections = append(course.Sections, section)
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return utils.Created(c, fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

// GetCourseDetails godoc
// @Summary Get one course with its sections and chapters
// @Tags courses
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	err = cc.DB.
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Sections.Chapters", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Sections.Chapters.Questions.Options").
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"course": course})
}

// ListCourses godoc
// @Summary List published courses
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course
// @Router /courses [get]
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	query := cc.DB.Model(&models.Course{}).Where("status = ?", "Published")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"courses": courses})
}

// UpdateCourse godoc
// @Summary Update course metadata or publish it
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/courses/{id} [put]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Price       *int64  `json:"price"`
		Status      *string `json:"status" validate:"omitempty,oneof=Draft Published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Title != nil {
		course.Title = *input.Title
	}
	if input.Description != nil {
		course.Description = *input.Description
	}
	if input.Category != nil {
		course.Category = *input.Category
	}
	if input.Price != nil {
		course.Price = *input.Price
	}
	if input.Status != nil {
		course.Status = *input.Status
	}

	if err := cc.DB.Save(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return c.JSON(fiber.Map{
		"message": "Course updated",
		"course":  course,
	})
}

// AddSection godoc
// @Summary Append a section to a course
// @Tags courses
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/sections [post]
func (cc *CoursesController) AddSection(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input sectionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var course models.Course
	if err := cc.DB.Preload("Sections").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	section := models.Section{
		CourseID:    course.ID,
		SectionID:   uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Position:    len(course.Sections),
	}
	for j, ch := range input.Chapters {
		section.Chapters = append(section.Chapters, models.Chapter{
			ChapterID: uuid.NewString(),
			Type:      ch.Type,
			Title:     ch.Title,
			Content:   ch.Content,
			VideoURL:  ch.VideoURL,
			Position:  j,
		})
	}

	if err := cc.DB.Create(&section).Error; err != nil {
		return utils.InternalServerError(c, "Could not create section")
	}

	return utils.Created(c, fiber.Map{
		"message": "Section added",
		"section": section,
	})
}

// AddChapter godoc
// @Summary Append a chapter to a section
// @Tags courses
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/sections/{sectionId}/chapters [post]
func (cc *CoursesController) AddChapter(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	sectionID := c.Params("sectionId")

	var input chapterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var section models.Section
	err = cc.DB.Preload("Chapters").
		Where("course_id = ? AND section_id = ?", courseID, sectionID).
		First(&section).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Section not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	chapter := models.Chapter{
		SectionRowID: section.ID,
		ChapterID:    uuid.NewString(),
		Type:         input.Type,
		Title:        input.Title,
		Content:      input.Content,
		VideoURL:     input.VideoURL,
		Position:     len(section.Chapters),
	}

	if err := cc.DB.Create(&chapter).Error; err != nil {
		return utils.InternalServerError(c, "Could not create chapter")
	}

	return utils.Created(c, fiber.Map{
		"message": "Chapter added",
		"chapter": chapter,
	})
}

// DeleteChapter godoc
// @Summary Remove a chapter from a course
// @Description Progress records are not rewritten here; the aggregator drops
// completions for missing chapters on the next write.
// @Tags courses
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/chapters/{chapterId} [delete]
func (cc *CoursesController) DeleteChapter(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	chapterID := c.Params("chapterId")

	result := cc.DB.
		Where("chapter_id = ? AND section_row_id IN (?)",
			chapterID,
			cc.DB.Model(&models.Section{}).Select("id").Where("course_id = ?", courseID),
		).
		Delete(&models.Chapter{})
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not delete chapter")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Chapter not found")
	}

	return c.JSON(fiber.Map{"message": "Chapter deleted"})
}
