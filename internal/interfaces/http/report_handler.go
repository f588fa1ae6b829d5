package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/reports"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// ReportHandler expone el resumen de ventas (regente o admin).
type ReportHandler struct {
	base
	uc *reports.SalesReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.SalesReportUseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{base: base{log: log.Component("http.reports")}, uc: uc}
}

// Sales godoc
// @Summary      Resumen de ventas por rango de fechas
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  true   "YYYY-MM-DD"
// @Param        end_date    query  string  true   "YYYY-MM-DD (incluido)"
// @Param        format      query  string  false  "table | document"
// @Param        branch_id   query  string  false  "Solo admin: otra sucursal (all=true para todas)"
// @Success      200  {object}  dto.SalesReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales [get]
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	var in dto.SalesReportRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	// El regente solo ve su sucursal; el admin puede consolidar.
	in.BranchID = scopedBranch(c)
	out, err := h.uc.GenerateReport(c.Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
