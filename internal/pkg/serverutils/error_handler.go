package serverutils

import (
	"errors"

	"ai-annotation-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors to HTTP statuses so controllers
// can just `return err`.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		var limitErr *dto.LimitExceededError
		var reconErr *dto.ReconciliationError
		var genErr *dto.GenerationRequestError
		var saveErr *dto.SaveError

		switch {
		case errors.Is(err, dto.ErrSessionNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(err.Error()))
		case errors.As(err, &validationErr):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(validationErr.Message))
		case errors.As(err, &limitErr):
			return ctx.Status(fiber.StatusPaymentRequired).JSON(ErrorResponse(limitErr.Error()))
		case errors.As(err, &reconErr):
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(reconErr.Error()))
		case errors.As(err, &genErr):
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse(genErr.Error()))
		case errors.As(err, &saveErr):
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(saveErr.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
	}
}
