package grpc

import (
	"context"
	"errors"

	"github.com/vibast-solutions/ms-go-season-tickets/app/mapper"
	"github.com/vibast-solutions/ms-go-season-tickets/app/pricing"
	"github.com/vibast-solutions/ms-go-season-tickets/app/seat"
	"github.com/vibast-solutions/ms-go-season-tickets/app/service"
	"github.com/vibast-solutions/ms-go-season-tickets/app/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Server struct {
	catalogService      *service.CatalogService
	subscriptionService *service.SubscriptionService
	ticketService       *service.TicketService
	renewalEngine       *service.RenewalEngine
}

func NewServer(
	catalogService *service.CatalogService,
	subscriptionService *service.SubscriptionService,
	ticketService *service.TicketService,
	renewalEngine *service.RenewalEngine,
) *Server {
	return &Server{
		catalogService:      catalogService,
		subscriptionService: subscriptionService,
		ticketService:       ticketService,
		renewalEngine:       renewalEngine,
	}
}

func (s *Server) ListTeams(ctx context.Context, _ *types.ListTeamsRequest) (*types.ListTeamsResponse, error) {
	items, err := s.catalogService.ListTeams(ctx)
	if err != nil {
		return nil, toStatusError(ctx, err, "List teams failed")
	}
	return &types.ListTeamsResponse{Teams: mapper.TeamsToTypes(items)}, nil
}

func (s *Server) ListPackages(ctx context.Context, req *types.ListPackagesRequest) (*types.ListPackagesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	items, err := s.catalogService.ListPackages(ctx, req.GetTeamId())
	if err != nil {
		return nil, toStatusError(ctx, err, "List packages failed")
	}
	return &types.ListPackagesResponse{Packages: mapper.PackagesToTypes(items)}, nil
}

func (s *Server) CreateSubscription(ctx context.Context, req *types.CreateSubscriptionRequest) (*types.SubscriptionEnvelopeResponse, error) {
	if err := req.Validate(); err != nil {
		loggerWithContext(ctx).WithError(err).Debug("Create subscription validation failed")
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.subscriptionService.CreateSubscription(ctx, req)
	if err != nil {
		return nil, toStatusError(ctx, err, "Create subscription failed")
	}
	return &types.SubscriptionEnvelopeResponse{Subscription: mapper.SubscriptionToType(item)}, nil
}

func (s *Server) GetSubscription(ctx context.Context, req *types.SubscriptionRequest) (*types.SubscriptionEnvelopeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.subscriptionService.GetSubscription(ctx, req.GetId())
	if err != nil {
		return nil, toStatusError(ctx, err, "Get subscription failed")
	}
	return &types.SubscriptionEnvelopeResponse{Subscription: mapper.SubscriptionToType(item)}, nil
}

func (s *Server) RenewSubscription(ctx context.Context, req *types.SubscriptionRequest) (*types.RenewSubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := s.subscriptionService.RenewOneYear(ctx, req.GetId())
	if err != nil {
		return nil, toStatusError(ctx, err, "Renew subscription failed")
	}
	return mapper.RenewResultToType(result), nil
}

func (s *Server) CancelSubscription(ctx context.Context, req *types.SubscriptionRequest) (*types.MessageResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.subscriptionService.CancelSubscription(ctx, req.GetId())
	if err != nil {
		return nil, toStatusError(ctx, err, "Cancel subscription failed")
	}
	return &types.MessageResponse{
		Message:      "Subscription cancelled successfully",
		Subscription: mapper.SubscriptionToType(item),
	}, nil
}

func (s *Server) UpdateSettings(ctx context.Context, req *types.UpdateSettingsRequest) (*types.SubscriptionEnvelopeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.subscriptionService.UpdateSettings(ctx, req.GetId(), req.GetAutoRenew())
	if err != nil {
		return nil, toStatusError(ctx, err, "Update subscription settings failed")
	}
	return &types.SubscriptionEnvelopeResponse{Subscription: mapper.SubscriptionToType(item)}, nil
}

func (s *Server) CalculatePrice(ctx context.Context, req *types.CalculatePriceRequest) (*types.CalculatePriceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	quote, err := s.subscriptionService.QuoteRenewalPrice(ctx, req.GetId(), req.CandidateEndDateValue())
	if err != nil {
		return nil, toStatusError(ctx, err, "Calculate renewal price failed")
	}
	return mapper.QuoteToType(quote), nil
}

func (s *Server) ListRenewalHistory(ctx context.Context, req *types.SubscriptionRequest) (*types.ListRenewalHistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	items, err := s.renewalEngine.History(ctx, req.GetId())
	if err != nil {
		return nil, toStatusError(ctx, err, "List renewal history failed")
	}
	return &types.ListRenewalHistoryResponse{Renewals: mapper.RenewalHistoryToTypes(items)}, nil
}

func (s *Server) AssignTicket(ctx context.Context, req *types.AssignTicketRequest) (*types.TicketResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.ticketService.Assign(ctx, req.GetSubscriptionId(), req.GetGameId(), req.GetSeatNumber())
	if err != nil {
		return nil, toStatusError(ctx, err, "Assign ticket failed")
	}
	return &types.TicketResponse{
		Message:    "Ticket assigned successfully",
		Assignment: mapper.GameAssignmentToType(item),
	}, nil
}

func (s *Server) UseTicket(ctx context.Context, req *types.UseTicketRequest) (*types.TicketResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.ticketService.Redeem(ctx, req.GetSubscriptionId(), req.GetGameId())
	if err != nil {
		return nil, toStatusError(ctx, err, "Use ticket failed")
	}
	return &types.TicketResponse{
		Message:    "Ticket used successfully",
		Assignment: mapper.GameAssignmentToType(item),
	}, nil
}

func (s *Server) AssignSeatsForGame(ctx context.Context, req *types.AssignSeatsForGameRequest) (*types.AssignSeatsForGameResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := s.ticketService.AssignSeatsForGame(ctx, req.GetGameId(), req.GetTeamId())
	if err != nil {
		return nil, toStatusError(ctx, err, "Assign seats for game failed")
	}
	return mapper.BulkAssignResultToType(result), nil
}

func (s *Server) RunRenewals(ctx context.Context, _ *types.RunRenewalsRequest) (*types.RunRenewalsResponse, error) {
	result, err := s.renewalEngine.RunOnce(ctx)
	if err != nil {
		return nil, toStatusError(ctx, err, "Renewal run failed")
	}
	return mapper.RunResultToType(result), nil
}

func toStatusError(ctx context.Context, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrSubscriptionCancelled),
		errors.Is(err, pricing.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrSubscriptionNotFound),
		errors.Is(err, service.ErrPackageNotFound),
		errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrAssignmentNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrSubscriptionAlreadyExists),
		errors.Is(err, service.ErrAssignmentAlreadyExists),
		errors.Is(err, seat.ErrSeatUnavailable):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrAlreadyRedeemed):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		loggerWithContext(ctx).WithError(err).Error(message)
		return status.Error(codes.Internal, "internal server error")
	}
}
