package controllers

import (
	"errors"
	"log"
	"strconv"

	"learnhub/config"
	"learnhub/models"
	"learnhub/progress"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config

	store      progress.Store
	aggregator *progress.Aggregator
	boards     *progress.Leaderboard
	logger     *log.Logger
}

func NewProgressController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *ProgressController {
	store := progress.NewGormStore(db)
	catalog := progress.NewGormCatalog(db)
	return &ProgressController{
		DB:         db,
		Cfg:        cfg,
		store:      store,
		aggregator: progress.NewAggregator(catalog, store, logger),
		boards:     progress.NewLeaderboard(store),
		logger:     logger,
	}
}

// authorizeOwner allows the record owner or an admin through.
func (pc *ProgressController) authorizeOwner(c *fiber.Ctx, targetUserID uint) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	if userID == targetUserID {
		return nil
	}
	role, err := utils.ExtractRoleFromToken(c, pc.Cfg)
	if err == nil && role == "admin" {
		return nil
	}
	return fiber.NewError(fiber.StatusForbidden, "Forbidden")
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// GetEnrolledCourses godoc
// @Summary List courses a user is enrolled in
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /progress/{userId}/enrolled-courses [get]
func (pc *ProgressController) GetEnrolledCourses(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	courseIDs, err := pc.store.ListEnrolledCourseIDs(userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query enrollments")
	}

	return c.JSON(fiber.Map{
		"userId":    userID,
		"courseIds": courseIDs,
	})
}

// GetProgress godoc
// @Summary Get a user's progress in a course
// @Description Returns the stored record, or an all-incomplete one if the
// user has not started the course yet.
// @Tags progress
// @Produce json
// @Success 200 {object} progress.Record
// @Failure 404 {object} utils.ErrorResponse
// @Router /progress/{userId}/courses/{courseId} [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}
	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	rec, started, err := pc.aggregator.GetProgress(userID, courseID)
	if errors.Is(err, progress.ErrCourseNotFound) {
		return utils.NotFound(c, "Course not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not load progress")
	}

	return c.JSON(fiber.Map{
		"progress": rec,
		"started":  started,
	})
}

// GetProgressBatch godoc
// @Summary Get a user's progress across several courses
// @Description Courses with no record are omitted from the result.
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /progress/{userId}/courses/batch [post]
func (pc *ProgressController) GetProgressBatch(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var input struct {
		CourseIDs []uint `json:"courseIds"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	records, err := pc.store.GetBatch(userID, input.CourseIDs)
	if err != nil {
		return utils.InternalServerError(c, "Could not load progress")
	}

	return c.JSON(fiber.Map{
		"progress": records,
	})
}

// UpdateProgress godoc
// @Summary Merge chapter completions into a user's course progress
// @Description Additive merge: chapters absent from the payload keep their
// prior state; unknown chapter ids are ignored. Only the record owner or an
// admin may write.
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} progress.Record
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/{userId}/courses/{courseId} [put]
func (pc *ProgressController) UpdateProgress(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}
	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	if err := pc.authorizeOwner(c, userID); err != nil {
		ferr := err.(*fiber.Error)
		return utils.Error(c, ferr.Code, ferr)
	}

	var input struct {
		Sections []progress.SectionProgress `json:"sections"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	rec, err := pc.aggregator.ApplyUpdate(userID, courseID, input.Sections)
	if errors.Is(err, progress.ErrCourseNotFound) {
		return utils.NotFound(c, "Course not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not update progress")
	}

	return c.JSON(fiber.Map{
		"message":  "Progress updated",
		"progress": rec,
	})
}

// GetCourseLeaderboard godoc
// @Summary Rank enrolled users of a course by completion
// @Tags leaderboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /progress/leaderboard/course/{courseId} [get]
func (pc *ProgressController) GetCourseLeaderboard(c *fiber.Ctx) error {
	courseID, err := parseIDParam(c, "courseId")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := pc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	entries, err := pc.boards.CourseLeaderboard(courseID)
	if err != nil {
		return utils.InternalServerError(c, "Could not compute leaderboard")
	}

	return c.JSON(fiber.Map{
		"courseId":    courseID,
		"leaderboard": pc.withUsernames(entries),
	})
}

// GetLearningLeaderboard godoc
// @Summary Rank all users by average completion across enrolled courses
// @Tags leaderboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /progress/leaderboard [get]
func (pc *ProgressController) GetLearningLeaderboard(c *fiber.Ctx) error {
	entries, err := pc.boards.LearningLeaderboard()
	if err != nil {
		return utils.InternalServerError(c, "Could not compute leaderboard")
	}

	return c.JSON(fiber.Map{
		"leaderboard": pc.withUsernames(entries),
	})
}

func (pc *ProgressController) withUsernames(entries []progress.Entry) []fiber.Map {
	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}

	nameByID := map[uint]string{}
	if len(ids) > 0 {
		var users []models.User
		if err := pc.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
			pc.logger.Printf("leaderboard username lookup failed: %v", err)
		}
		for _, u := range users {
			nameByID[u.ID] = u.Username
		}
	}

	rows := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, fiber.Map{
			"userId":   e.UserID,
			"username": nameByID[e.UserID],
			"score":    e.Score,
			"rank":     e.Rank,
		})
	}
	return rows
}
