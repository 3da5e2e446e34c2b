package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-season-tickets/app/factory"
	"github.com/vibast-solutions/ms-go-season-tickets/app/mapper"
	"github.com/vibast-solutions/ms-go-season-tickets/app/service"
	"github.com/vibast-solutions/ms-go-season-tickets/app/types"
)

type CatalogController struct {
	catalogService *service.CatalogService
	logger         logrus.FieldLogger
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
		logger:         factory.NewModuleLogger("catalog-controller"),
	}
}

func (c *CatalogController) ListTeams(ctx echo.Context) error {
	items, err := c.catalogService.ListTeams(ctx.Request().Context())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "List teams failed")
	}

	return ctx.JSON(http.StatusOK, &types.ListTeamsResponse{Teams: mapper.TeamsToTypes(items)})
}

func (c *CatalogController) ListPackages(ctx echo.Context) error {
	req, err := types.NewListPackagesRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.catalogService.ListPackages(ctx.Request().Context(), req.GetTeamId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "List packages failed")
	}

	return ctx.JSON(http.StatusOK, &types.ListPackagesResponse{Packages: mapper.PackagesToTypes(items)})
}
