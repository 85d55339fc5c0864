package controller

import (
	"ai-annotation-be/internal/dto"
	"ai-annotation-be/internal/pkg/serverutils"
	"ai-annotation-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISupplementController interface {
	RegisterRoutes(r fiber.Router)
	GetSupplement(ctx *fiber.Ctx) error
	GetResolved(ctx *fiber.Ctx) error
	Open(ctx *fiber.Ctx) error
	SelectLanguage(ctx *fiber.Ctx) error
	UpdateDraft(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
	SaveManual(ctx *fiber.Ctx) error
	Accept(ctx *fiber.Ctx) error
	RequestAutomatic(ctx *fiber.Ctx) error
	Discard(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
}

type supplementController struct {
	queryService    service.IQueryService
	workflowService service.IWorkflowService
}

func NewSupplementController(queryService service.IQueryService, workflowService service.IWorkflowService) ISupplementController {
	return &supplementController{
		queryService:    queryService,
		workflowService: workflowService,
	}
}

func (c *supplementController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/supplement/v1")
	h.Use(serverutils.JwtMiddleware)
	// The question xpath contains slashes, so it travels as a query param.
	h.Get(":submissionId", c.GetSupplement)
	h.Get(":submissionId/resolved", c.GetResolved)

	w := r.Group("/workflow/v1")
	w.Use(serverutils.JwtMiddleware)
	w.Post("open", c.Open)
	w.Post("select-language", c.SelectLanguage)
	w.Put("draft", c.UpdateDraft)
	w.Get("state/:sessionId", c.State)
	w.Post("save", c.SaveManual)
	w.Post("accept", c.Accept)
	w.Post("generate", c.RequestAutomatic)
	w.Post("discard", c.Discard)
	w.Post("close", c.Close)
}

func caller(ctx *fiber.Ctx) (userId, role, organizationId string) {
	if v, ok := ctx.Locals("user_id").(string); ok {
		userId = v
	}
	if v, ok := ctx.Locals("role").(string); ok {
		role = v
	}
	if v, ok := ctx.Locals("organization_id").(string); ok {
		organizationId = v
	}
	return
}

func (c *supplementController) GetSupplement(ctx *fiber.Ctx) error {
	submissionId, err := uuid.Parse(ctx.Params("submissionId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid submission id")
	}
	xpath := ctx.Query("xpath")
	if xpath == "" {
		return fiber.NewError(fiber.StatusBadRequest, "xpath query param is required")
	}

	res, err := c.queryService.GetSupplement(ctx.Context(), submissionId, xpath)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get supplement", res))
}

func (c *supplementController) GetResolved(ctx *fiber.Ctx) error {
	submissionId, err := uuid.Parse(ctx.Params("submissionId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid submission id")
	}
	xpath := ctx.Query("xpath")
	if xpath == "" {
		return fiber.NewError(fiber.StatusBadRequest, "xpath query param is required")
	}

	res, err := c.queryService.GetResolved(ctx.Context(), submissionId, xpath)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get resolved supplement", res))
}

func (c *supplementController) Open(ctx *fiber.Ctx) error {
	userId, role, _ := caller(ctx)

	var req dto.OpenWorkflowRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflowService.Open(ctx.Context(), userId, role, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success open workflow", res))
}

func (c *supplementController) SelectLanguage(ctx *fiber.Ctx) error {
	var req struct {
		SessionId string `json:"session_id" validate:"required"`
		Language  string `json:"language" validate:"required"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflowService.SelectLanguage(ctx.Context(), req.SessionId, req.Language)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success select language", res))
}

func (c *supplementController) UpdateDraft(ctx *fiber.Ctx) error {
	var req dto.UpdateDraftRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflowService.UpdateDraft(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update draft", res))
}

func (c *supplementController) State(ctx *fiber.Ctx) error {
	res, err := c.workflowService.State(ctx.Context(), ctx.Params("sessionId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get workflow state", res))
}

func (c *supplementController) SaveManual(ctx *fiber.Ctx) error {
	userId, role, _ := caller(ctx)

	var req dto.SaveManualRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflowService.SaveManual(ctx.Context(), userId, role, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success save annotation", res))
}

func (c *supplementController) Accept(ctx *fiber.Ctx) error {
	userId, role, _ := caller(ctx)

	var req dto.AcceptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflowService.Accept(ctx.Context(), userId, role, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success accept annotation", res))
}

func (c *supplementController) RequestAutomatic(ctx *fiber.Ctx) error {
	userId, role, organizationId := caller(ctx)

	var req dto.RequestAutomaticRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflowService.RequestAutomatic(ctx.Context(), userId, role, organizationId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success request automatic annotation", res))
}

func (c *supplementController) Discard(ctx *fiber.Ctx) error {
	userId, role, _ := caller(ctx)

	var req dto.DiscardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.workflowService.Discard(ctx.Context(), userId, role, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success discard annotation", res))
}

func (c *supplementController) Close(ctx *fiber.Ctx) error {
	var req dto.CloseWorkflowRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.workflowService.Close(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success close workflow", nil))
}
