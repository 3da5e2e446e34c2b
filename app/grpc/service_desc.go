package grpc

import (
	"context"

	"github.com/vibast-solutions/ms-go-season-tickets/app/types"
	"google.golang.org/grpc"
)

const ServiceName = "seasontickets.SeasonTicketsService"

// SeasonTicketsServiceServer is implemented by Server. Registration goes
// through RegisterSeasonTicketsServiceServer.
type SeasonTicketsServiceServer interface {
	ListTeams(context.Context, *types.ListTeamsRequest) (*types.ListTeamsResponse, error)
	ListPackages(context.Context, *types.ListPackagesRequest) (*types.ListPackagesResponse, error)
	CreateSubscription(context.Context, *types.CreateSubscriptionRequest) (*types.SubscriptionEnvelopeResponse, error)
	GetSubscription(context.Context, *types.SubscriptionRequest) (*types.SubscriptionEnvelopeResponse, error)
	RenewSubscription(context.Context, *types.SubscriptionRequest) (*types.RenewSubscriptionResponse, error)
	CancelSubscription(context.Context, *types.SubscriptionRequest) (*types.MessageResponse, error)
	UpdateSettings(context.Context, *types.UpdateSettingsRequest) (*types.SubscriptionEnvelopeResponse, error)
	CalculatePrice(context.Context, *types.CalculatePriceRequest) (*types.CalculatePriceResponse, error)
	ListRenewalHistory(context.Context, *types.SubscriptionRequest) (*types.ListRenewalHistoryResponse, error)
	AssignTicket(context.Context, *types.AssignTicketRequest) (*types.TicketResponse, error)
	UseTicket(context.Context, *types.UseTicketRequest) (*types.TicketResponse, error)
	AssignSeatsForGame(context.Context, *types.AssignSeatsForGameRequest) (*types.AssignSeatsForGameResponse, error)
	RunRenewals(context.Context, *types.RunRenewalsRequest) (*types.RunRenewalsResponse, error)
}

func RegisterSeasonTicketsServiceServer(registrar grpc.ServiceRegistrar, srv SeasonTicketsServiceServer) {
	registrar.RegisterService(&serviceDesc, srv)
}

func unary[Req any, Resp any](name string, call func(SeasonTicketsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(SeasonTicketsServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(server, ctx, req.(*Req))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SeasonTicketsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListTeams", SeasonTicketsServiceServer.ListTeams),
		unary("ListPackages", SeasonTicketsServiceServer.ListPackages),
		unary("CreateSubscription", SeasonTicketsServiceServer.CreateSubscription),
		unary("GetSubscription", SeasonTicketsServiceServer.GetSubscription),
		unary("RenewSubscription", SeasonTicketsServiceServer.RenewSubscription),
		unary("CancelSubscription", SeasonTicketsServiceServer.CancelSubscription),
		unary("UpdateSettings", SeasonTicketsServiceServer.UpdateSettings),
		unary("CalculatePrice", SeasonTicketsServiceServer.CalculatePrice),
		unary("ListRenewalHistory", SeasonTicketsServiceServer.ListRenewalHistory),
		unary("AssignTicket", SeasonTicketsServiceServer.AssignTicket),
		unary("UseTicket", SeasonTicketsServiceServer.UseTicket),
		unary("AssignSeatsForGame", SeasonTicketsServiceServer.AssignSeatsForGame),
		unary("RunRenewals", SeasonTicketsServiceServer.RunRenewals),
	},
	Streams: []grpc.StreamDesc{},
}
