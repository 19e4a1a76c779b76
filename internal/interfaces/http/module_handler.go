package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/saas-backoffice/internal/application/usecase"
)

// ModuleHandler catálogo, módulos vigentes y suscripciones de la empresa.
type ModuleHandler struct {
	svc *usecase.ModuleService
}

// NewModuleHandler construye el handler.
func NewModuleHandler(svc *usecase.ModuleService) *ModuleHandler {
	return &ModuleHandler{svc: svc}
}

// Catalog godoc
// @Summary      Catálogo de módulos
// @Tags         modules
// @Produce      json
// @Success      200  {array}  dto.ModuleResponse
// @Router       /api/modules [get]
func (h *ModuleHandler) Catalog(c *fiber.Ctx) error {
	out, err := h.svc.ListCatalog(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Active godoc
// @Summary      Módulos vigentes del usuario en la empresa del token
// @Description  Sin as_of se usa el reloj del servidor. Los extremos de la vigencia son inclusivos.
// @Tags         modules
// @Produce      json
// @Security     BearerAuth
// @Param        as_of  query  string  false  "Instante RFC3339"
// @Success      200    {object}  dto.ActiveModulesResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      500    {object}  dto.ErrorResponse
// @Router       /api/modules/active [get]
func (h *ModuleHandler) Active(c *fiber.Ctx) error {
	var asOf *time.Time
	if raw := c.Query("as_of"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return badRequest(c, "VALIDATION", "as_of debe ser RFC3339")
		}
		asOf = &t
	}
	out, err := h.svc.ActiveModules(c.UserContext(), GetCompanyID(c), GetUserID(c), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Subscriptions godoc
// @Summary      Suscripciones y créditos de la empresa
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.SubscriptionResponse
// @Router       /api/subscriptions [get]
func (h *ModuleHandler) Subscriptions(c *fiber.Ctx) error {
	out, err := h.svc.ListSubscriptions(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
