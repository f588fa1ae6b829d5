package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/analytics"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/pkg/jwt"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// DashboardHandler expone el panel principal y el historial de ventas.
type DashboardHandler struct {
	base
	dashboard *analytics.DashboardUseCase
	history   *analytics.SalesHistoryUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(dashboard *analytics.DashboardUseCase, history *analytics.SalesHistoryUseCase, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{base: base{log: log.Component("http.dashboard")}, dashboard: dashboard, history: history}
}

// Summary godoc
// @Summary      Panel principal: ventas de hoy y del mes, alertas de inventario y ventas recientes
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Solo admin: otra sucursal"
// @Param        all        query  bool    false  "Solo admin: todas las sucursales"
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	out, err := h.dashboard.GetSummary(c.Context(), scopedBranch(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de ventas paginado, de la más reciente a la más antigua
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD (por defecto hace 30 días)"
// @Param        end_date    query  string  false  "YYYY-MM-DD (incluido, por defecto hoy)"
// @Param        status      query  string  false  "completed | cancelled | pending"
// @Param        limit       query  int     false  "Tamaño de página (20, máx. 100)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.SalesHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *DashboardHandler) History(c *fiber.Ctx) error {
	var in dto.SalesHistoryRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	in.BranchID = scopedBranch(c)
	out, err := h.history.List(c.Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// scopedBranch sucursal que puede consultar el usuario. Cajero y regente solo la suya;
// el admin puede pedir otra con branch_id o todas con all=true.
func scopedBranch(c *fiber.Ctx) string {
	if GetRole(c) != jwt.RoleAdmin {
		return GetBranchID(c)
	}
	if b := c.Query("branch_id"); b != "" {
		return b
	}
	if c.Query("all") == "true" {
		return ""
	}
	return GetBranchID(c)
}
