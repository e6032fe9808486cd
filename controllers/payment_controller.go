package controllers

import (
	"errors"
	"fmt"
	"log"

	"learnhub/config"
	"learnhub/models"
	"learnhub/services/email"
	"learnhub/services/payment"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	gateway *payment.Gateway
	mailer  *email.Service
	logger  *log.Logger
}

func NewPaymentController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *PaymentController {
	return &PaymentController{
		DB:      db,
		Cfg:     cfg,
		gateway: payment.NewGateway(cfg.PaymentAPIURL, cfg.PaymentAPIKey),
		mailer:  email.NewService(cfg.SendgridAPIKey, cfg.EmailFrom),
		logger:  logger,
	}
}

// InitiatePayment godoc
// @Summary Start a mobile-money push payment for a course
// @Description Creates a pending transaction and asks the provider to prompt
// the subscriber's phone. Enrollment happens on the provider callback.
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /payments [post]
func (pc *PaymentController) InitiatePayment(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type PaymentInput struct {
		CourseID    uint   `json:"courseId" validate:"required"`
		PhoneNumber string `json:"phoneNumber" validate:"required,e164"`
	}
	var input PaymentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var course models.Course
	if err := pc.DB.Where("id = ? AND status = ?", input.CourseID, "Published").First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found or not published")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if course.Price == 0 {
		return utils.BadRequest(c, "Course is free, enroll directly")
	}

	tx := models.Transaction{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		CourseID:      course.ID,
		Amount:        course.Price,
		PhoneNumber:   input.PhoneNumber,
		Provider:      "momo",
		Status:        "pending",
	}
	if err := pc.DB.Create(&tx).Error; err != nil {
		return utils.InternalServerError(c, "Could not create transaction")
	}

	push, err := pc.gateway.RequestPush(&payment.PushRequest{
		Reference:   tx.TransactionID,
		PhoneNumber: input.PhoneNumber,
		Amount:      course.Price,
		Currency:    "XAF",
		Description: fmt.Sprintf("Enrollment: %s", course.Title),
	})
	if err != nil {
		pc.DB.Model(&tx).Update("status", "failed")
		return utils.Error(c, fiber.StatusBadGateway, err)
	}

	pc.DB.Model(&tx).Update("provider_ref", push.ProviderRef)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message":     "Payment initiated, approve the prompt on your phone",
		"transaction": tx.TransactionID,
	})
}

// PaymentCallback godoc
// @Summary Provider webhook reporting the payment outcome
// @Description On success, enrolls the payer and emails a confirmation. The
// callback is authenticated by a shared secret header.
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /payments/callback [post]
func (pc *PaymentController) PaymentCallback(c *fiber.Ctx) error {
	if c.Get("X-Callback-Secret") != pc.Cfg.PaymentCallbackSecret {
		return utils.Unauthorized(c, "Invalid callback secret")
	}

	var input struct {
		Reference string `json:"reference"`
		Status    string `json:"status"` // completed, failed
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var tx models.Transaction
	if err := pc.DB.Where("transaction_id = ?", input.Reference).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Transaction not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if tx.Status != "pending" {
		// Replayed callback, nothing to do.
		return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Already processed"})
	}

	if input.Status != "completed" {
		pc.DB.Model(&tx).Update("status", "failed")
		return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Payment failed"})
	}

	if err := pc.DB.Model(&tx).Update("status", "completed").Error; err != nil {
		return utils.InternalServerError(c, "Could not update transaction")
	}

	if _, err := enroll(pc.DB, tx.UserID, tx.CourseID); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.InternalServerError(c, "Could not enroll")
	}

	var user models.User
	var course models.Course
	if pc.DB.First(&user, tx.UserID).Error == nil && pc.DB.First(&course, tx.CourseID).Error == nil {
		if err := pc.mailer.SendEnrollmentConfirmation(user.Email, user.Username, course.Title); err != nil {
			pc.logger.Printf("payments: confirmation email for tx %s: %v", tx.TransactionID, err)
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Payment completed, user enrolled"})
}
