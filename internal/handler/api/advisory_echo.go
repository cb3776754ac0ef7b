package api

import (
	"FinAdvise/internal/domain/models"
	"FinAdvise/internal/usecase"
	xhttp "FinAdvise/pkg/http"
	xlogger "FinAdvise/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AdvisoryEchoHandler exposes the advisory tools over HTTP.
type AdvisoryEchoHandler struct {
	logger *xlogger.Logger
	svc    *usecase.AdvisoryService
}

func NewAdvisoryEchoHandler(logger *xlogger.Logger, svc *usecase.AdvisoryService) *AdvisoryEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &AdvisoryEchoHandler{logger: logger, svc: svc}
}

func (h *AdvisoryEchoHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/tools", h.Catalog)
	g.POST("/tools/"+models.ToolResolveClients, h.ResolveClients)
	g.POST("/tools/"+models.ToolGetClientProfile, h.GetClientProfile)
	g.POST("/tools/"+models.ToolAggregateHoldings, h.AggregateHoldings)
	g.POST("/tools/"+models.ToolComputeAllocationDrift, h.ComputeAllocationDrift)
	g.POST("/tools/"+models.ToolGetPortfolioPerformance, h.GetPortfolioPerformance)
}

// Catalog lists the tool definitions for the orchestrator.
func (h *AdvisoryEchoHandler) Catalog(c echo.Context) error {
	tools := models.ToolCatalog()
	return xhttp.ListResponse(c, tools, int64(len(tools)))
}

func (h *AdvisoryEchoHandler) ResolveClients(c echo.Context) error {
	req := &models.ResolveClientsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.rejected(c, models.ToolResolveClients, verr)
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.svc.ResolveClients(c.Request().Context(), *req))
}

func (h *AdvisoryEchoHandler) GetClientProfile(c echo.Context) error {
	req := &models.ClientProfileRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.rejected(c, models.ToolGetClientProfile, verr)
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.svc.GetClientProfile(c.Request().Context(), *req))
}

func (h *AdvisoryEchoHandler) AggregateHoldings(c echo.Context) error {
	req := &models.HoldingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.rejected(c, models.ToolAggregateHoldings, verr)
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.svc.AggregateHoldings(c.Request().Context(), *req))
}

func (h *AdvisoryEchoHandler) ComputeAllocationDrift(c echo.Context) error {
	req := &models.AllocationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.rejected(c, models.ToolComputeAllocationDrift, verr)
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.svc.ComputeAllocationDrift(c.Request().Context(), *req))
}

func (h *AdvisoryEchoHandler) GetPortfolioPerformance(c echo.Context) error {
	req := &models.PerformanceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.rejected(c, models.ToolGetPortfolioPerformance, verr)
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.svc.GetPortfolioPerformance(c.Request().Context(), *req))
}

func (h *AdvisoryEchoHandler) rejected(c echo.Context, tool string, verr []xhttp.ValidationError) {
	fields := make([]string, 0, len(verr))
	for _, e := range verr {
		fields = append(fields, e.Field)
	}
	h.logger.Warn("tool request rejected",
		xlogger.String("tool", tool),
		xlogger.Strings("fields", fields),
		xlogger.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
	)
}
