package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-season-tickets/app/factory"
	"github.com/vibast-solutions/ms-go-season-tickets/app/pricing"
	"github.com/vibast-solutions/ms-go-season-tickets/app/seat"
	"github.com/vibast-solutions/ms-go-season-tickets/app/service"
	"github.com/vibast-solutions/ms-go-season-tickets/app/types"
)

func writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}

// writeServiceError maps service sentinels to HTTP codes. Anything unknown is
// logged and reported as a 500 without details.
func writeServiceError(ctx echo.Context, logger logrus.FieldLogger, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrSubscriptionCancelled),
		errors.Is(err, pricing.ErrInvalidInput):
		return writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSubscriptionNotFound),
		errors.Is(err, service.ErrPackageNotFound),
		errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrAssignmentNotFound):
		return writeError(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSubscriptionAlreadyExists),
		errors.Is(err, service.ErrAssignmentAlreadyExists),
		errors.Is(err, seat.ErrSeatUnavailable),
		errors.Is(err, service.ErrAlreadyRedeemed):
		return writeError(ctx, http.StatusConflict, err.Error())
	default:
		factory.LoggerWithContext(logger, ctx).WithError(err).Error(message)
		return writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}
