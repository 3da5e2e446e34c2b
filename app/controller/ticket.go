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

type TicketController struct {
	ticketService *service.TicketService
	logger        logrus.FieldLogger
}

func NewTicketController(ticketService *service.TicketService) *TicketController {
	return &TicketController{
		ticketService: ticketService,
		logger:        factory.NewModuleLogger("tickets-controller"),
	}
}

func (c *TicketController) AssignTicket(ctx echo.Context) error {
	req, err := types.NewAssignTicketRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.ticketService.Assign(ctx.Request().Context(), req.GetSubscriptionId(), req.GetGameId(), req.GetSeatNumber())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Assign ticket failed")
	}

	return ctx.JSON(http.StatusCreated, &types.TicketResponse{
		Message:    "Ticket assigned successfully",
		Assignment: mapper.GameAssignmentToType(item),
	})
}

func (c *TicketController) UseTicket(ctx echo.Context) error {
	req, err := types.NewUseTicketRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.ticketService.Redeem(ctx.Request().Context(), req.GetSubscriptionId(), req.GetGameId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Use ticket failed")
	}

	return ctx.JSON(http.StatusOK, &types.TicketResponse{
		Message:    "Ticket used successfully",
		Assignment: mapper.GameAssignmentToType(item),
	})
}

func (c *TicketController) AssignSeatsForGame(ctx echo.Context) error {
	req, err := types.NewAssignSeatsForGameRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.ticketService.AssignSeatsForGame(ctx.Request().Context(), req.GetGameId(), req.GetTeamId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Assign seats for game failed")
	}

	return ctx.JSON(http.StatusOK, mapper.BulkAssignResultToType(result))
}
