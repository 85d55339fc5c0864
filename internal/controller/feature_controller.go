package controller

import (
	"ai-annotation-be/internal/pkg/serverutils"
	"ai-annotation-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFeatureController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	ListByQuestion(ctx *fiber.Ctx) error
}

type featureController struct {
	featureService service.IFeatureService
}

func NewFeatureController(featureService service.IFeatureService) IFeatureController {
	return &featureController{
		featureService: featureService,
	}
}

func (c *featureController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/feature/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	// xpath arrives as a query param since it contains slashes
	h.Get("question", c.ListByQuestion)
}

func (c *featureController) List(ctx *fiber.Ctx) error {
	res, err := c.featureService.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list features", res))
}

func (c *featureController) ListByQuestion(ctx *fiber.Ctx) error {
	xpath := ctx.Query("xpath")
	if xpath == "" {
		return fiber.NewError(fiber.StatusBadRequest, "xpath query param is required")
	}
	res, err := c.featureService.ListByQuestion(ctx.Context(), xpath)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list question features", res))
}
