package controller

import (
	"rag-assistant-be/internal/dto"
	"rag-assistant-be/internal/pkg/serverutils"
	"rag-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IModeController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Resolve(ctx *fiber.Ctx) error
	Recommend(ctx *fiber.Ctx) error
}

type modeController struct {
	modeService service.IModeService
}

func NewModeController(modeService service.IModeService) IModeController {
	return &modeController{
		modeService: modeService,
	}
}

func (c *modeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/mode/v1")
	h.Get("", c.List)
	h.Post("resolve", c.Resolve)
	h.Post("recommend", c.Recommend)
}

func (c *modeController) List(ctx *fiber.Ctx) error {
	res := c.modeService.List(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success list modes", res))
}

func (c *modeController) Resolve(ctx *fiber.Ctx) error {
	var req dto.ResolveModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.modeService.Resolve(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve mode", res))
}

func (c *modeController) Recommend(ctx *fiber.Ctx) error {
	var req dto.RecommendModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.modeService.Recommend(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success recommend mode", res))
}
