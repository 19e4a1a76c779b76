package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/saas-backoffice/internal/application/dto"
	"github.com/jhoicas/saas-backoffice/internal/application/usecase"
)

// AnalyticsHandler reportes de compras de la empresa.
type AnalyticsHandler struct {
	uc *usecase.AnalyticsUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *usecase.AnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// GetSpending godoc
// @Summary      Gasto en módulos por período
// @Description  Agrupa las órdenes de la empresa por módulo. Requiere módulo 'analytics' activo.
// @Tags         analytics
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query  string  false  "Inicio del período (YYYY-MM-DD). Default: primer día del mes."
// @Param        end_date    query  string  false  "Fin del período (YYYY-MM-DD). Default: hoy."
// @Success      200  {object}  dto.SpendingReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/analytics/spending [get]
func (h *AnalyticsHandler) GetSpending(c *fiber.Ctx) error {
	var req dto.SpendingReportRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	report, err := h.uc.GetSpendingReport(c.UserContext(), GetCompanyID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
