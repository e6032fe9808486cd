package controllers

import (
	"errors"

	"learnhub/config"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BootcampController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewBootcampController(db *gorm.DB, cfg *config.Config) *BootcampController {
	return &BootcampController{DB: db, Cfg: cfg}
}

// CreateBootcamp godoc
// @Summary Create a bootcamp
// @Tags bootcamps
// @Accept json
// @Produce json
// @Success 201 {object} models.Bootcamp
// @Security ApiKeyAuth
// @Router /admin/bootcamps [post]
func (bc *BootcampController) CreateBootcamp(c *fiber.Ctx) error {
	var input struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		Image       string `json:"image"`
		StartDate   string `json:"startDate"`
		EndDate     string `json:"endDate"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	bootcamp := models.Bootcamp{
		Title:       input.Title,
		Description: input.Description,
		Image:       input.Image,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}

	if err := bc.DB.Create(&bootcamp).Error; err != nil {
		return utils.InternalServerError(c, "Could not create bootcamp")
	}

	return utils.Created(c, bootcamp)
}

// AddCourse godoc
// @Summary Add a course to a bootcamp
// @Tags bootcamps
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/bootcamps/{id}/courses [post]
func (bc *BootcampController) AddCourse(c *fiber.Ctx) error {
	bootcampID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid bootcamp ID")
	}

	var input struct {
		CourseID uint `json:"courseId" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var bootcamp models.Bootcamp
	if err := bc.DB.First(&bootcamp, bootcampID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Bootcamp not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var course models.Course
	if err := bc.DB.First(&course, input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bc.DB.Model(&bootcamp).Association("Courses").Append(&course); err != nil {
		return utils.InternalServerError(c, "Could not add course to bootcamp")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Course added to bootcamp"})
}

// ListBootcamps godoc
// @Summary List bootcamps with their courses
// @Tags bootcamps
// @Produce json
// @Success 200 {array} models.Bootcamp
// @Router /bootcamps [get]
func (bc *BootcampController) ListBootcamps(c *fiber.Ctx) error {
	var bootcamps []models.Bootcamp
	if err := bc.DB.Preload("Courses").Find(&bootcamps).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"bootcamps": bootcamps})
}

// GetBootcamp godoc
// @Summary Get one bootcamp with its courses
// @Tags bootcamps
// @Produce json
// @Success 200 {object} models.Bootcamp
// @Failure 404 {object} utils.ErrorResponse
// @Router /bootcamps/{id} [get]
func (bc *BootcampController) GetBootcamp(c *fiber.Ctx) error {
	bootcampID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid bootcamp ID")
	}

	var bootcamp models.Bootcamp
	if err := bc.DB.Preload("Courses").First(&bootcamp, bootcampID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Bootcamp not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"bootcamp": bootcamp})
}
