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

type SubscriptionController struct {
	subscriptionService *service.SubscriptionService
	renewalEngine       *service.RenewalEngine
	logger              logrus.FieldLogger
}

func NewSubscriptionController(
	subscriptionService *service.SubscriptionService,
	renewalEngine *service.RenewalEngine,
) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
		renewalEngine:       renewalEngine,
		logger:              factory.NewModuleLogger("subscriptions-controller"),
	}
}

func (c *SubscriptionController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *SubscriptionController) CreateSubscription(ctx echo.Context) error {
	req, err := types.NewCreateSubscriptionRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.subscriptionService.CreateSubscription(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Create subscription failed")
	}

	return ctx.JSON(http.StatusCreated, &types.SubscriptionEnvelopeResponse{
		Subscription: mapper.SubscriptionToType(item),
	})
}

func (c *SubscriptionController) GetSubscription(ctx echo.Context) error {
	req, err := types.NewSubscriptionRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.subscriptionService.GetSubscription(ctx.Request().Context(), req.GetId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Get subscription failed")
	}

	return ctx.JSON(http.StatusOK, &types.SubscriptionEnvelopeResponse{
		Subscription: mapper.SubscriptionToType(item),
	})
}

func (c *SubscriptionController) RenewSubscription(ctx echo.Context) error {
	req, err := types.NewSubscriptionRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.subscriptionService.RenewOneYear(ctx.Request().Context(), req.GetId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Renew subscription failed")
	}

	return ctx.JSON(http.StatusOK, mapper.RenewResultToType(result))
}

func (c *SubscriptionController) CancelSubscription(ctx echo.Context) error {
	req, err := types.NewSubscriptionRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.subscriptionService.CancelSubscription(ctx.Request().Context(), req.GetId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Cancel subscription failed")
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{
		Message:      "Subscription cancelled successfully",
		Subscription: mapper.SubscriptionToType(item),
	})
}

func (c *SubscriptionController) UpdateSettings(ctx echo.Context) error {
	req, err := types.NewUpdateSettingsRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.subscriptionService.UpdateSettings(ctx.Request().Context(), req.GetId(), req.GetAutoRenew())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Update subscription settings failed")
	}

	return ctx.JSON(http.StatusOK, &types.SubscriptionEnvelopeResponse{
		Subscription: mapper.SubscriptionToType(item),
	})
}

func (c *SubscriptionController) CalculatePrice(ctx echo.Context) error {
	req, err := types.NewCalculatePriceRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	quote, err := c.subscriptionService.QuoteRenewalPrice(ctx.Request().Context(), req.GetId(), req.CandidateEndDateValue())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Calculate renewal price failed")
	}

	return ctx.JSON(http.StatusOK, mapper.QuoteToType(quote))
}

func (c *SubscriptionController) ListRenewalHistory(ctx echo.Context) error {
	req, err := types.NewSubscriptionRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.renewalEngine.History(ctx.Request().Context(), req.GetId())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "List renewal history failed")
	}

	return ctx.JSON(http.StatusOK, &types.ListRenewalHistoryResponse{
		Renewals: mapper.RenewalHistoryToTypes(items),
	})
}

func (c *SubscriptionController) RunRenewals(ctx echo.Context) error {
	result, err := c.renewalEngine.RunOnce(ctx.Request().Context())
	if err != nil {
		return writeServiceError(ctx, c.logger, err, "Renewal run failed")
	}

	statusCode := http.StatusOK
	if result.Skipped {
		statusCode = http.StatusAccepted
	}
	return ctx.JSON(statusCode, mapper.RunResultToType(result))
}
