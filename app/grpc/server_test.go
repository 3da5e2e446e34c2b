package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
	"github.com/vibast-solutions/ms-go-season-tickets/app/payment"
	"github.com/vibast-solutions/ms-go-season-tickets/app/pricing"
	"github.com/vibast-solutions/ms-go-season-tickets/app/repository"
	"github.com/vibast-solutions/ms-go-season-tickets/app/seat"
	"github.com/vibast-solutions/ms-go-season-tickets/app/service"
	"github.com/vibast-solutions/ms-go-season-tickets/app/types"
	"github.com/vibast-solutions/ms-go-season-tickets/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

var (
	serverNow   = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	serverToday = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return serverNow }

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memoryStore backs every repository the services need.
type memoryStore struct {
	mu            sync.Mutex
	subscriptions map[uint64]*entity.Subscription
	assignments   map[[2]uint64]*entity.GameAssignment
	history       []*entity.RenewalHistory
	teams         []*entity.Team
	packages      []*entity.Package
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		subscriptions: make(map[uint64]*entity.Subscription),
		assignments:   make(map[[2]uint64]*entity.GameAssignment),
		teams:         []*entity.Team{{ID: 1, Name: "Lakeside Otters", League: "NHL", City: "Lakeside", Season: 2025, TotalGames: 41}},
		packages:      []*entity.Package{{ID: 3, TeamID: 1, Name: "Full Season", NumGames: 41, PriceCents: 500000, Section: "Club"}},
	}
}

type subscriptionStore struct{ *memoryStore }

func (s subscriptionStore) Create(_ context.Context, subscription *entity.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subscription.ID = uint64(len(s.subscriptions) + 1)
	cp := *subscription
	s.subscriptions[subscription.ID] = &cp
	return nil
}

func (s subscriptionStore) FindByID(_ context.Context, id uint64) (*entity.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.subscriptions[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (s subscriptionStore) FindByIDForUpdate(ctx context.Context, id uint64) (*entity.Subscription, error) {
	return s.FindByID(ctx, id)
}

func (s subscriptionStore) FindActiveByUserAndPackage(_ context.Context, userID, packageID uint64) (*entity.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.subscriptions {
		if item.UserID == userID && item.PackageID == packageID && item.Status == entity.SubscriptionStatusActive {
			cp := *item
			return &cp, nil
		}
	}
	return nil, nil
}

func (s subscriptionStore) UpdateEndDate(_ context.Context, id uint64, endDate, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[id].EndDate = endDate
	s.subscriptions[id].UpdatedAt = updatedAt
	return nil
}

func (s subscriptionStore) UpdateStatus(_ context.Context, id uint64, status string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[id].Status = status
	s.subscriptions[id].UpdatedAt = updatedAt
	return nil
}

func (s subscriptionStore) UpdateAutoRenew(_ context.Context, id uint64, autoRenew bool, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[id].AutoRenew = autoRenew
	s.subscriptions[id].UpdatedAt = updatedAt
	return nil
}

func (s subscriptionStore) ListDueAutoRenew(_ context.Context, asOf time.Time) ([]*entity.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*entity.Subscription, 0)
	for _, item := range s.subscriptions {
		if item.Status == entity.SubscriptionStatusActive && item.AutoRenew && !item.EndDate.After(asOf) {
			cp := *item
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s subscriptionStore) ListActiveByTeam(_ context.Context, _ uint64) ([]*entity.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*entity.Subscription, 0)
	for _, item := range s.subscriptions {
		if item.Status == entity.SubscriptionStatusActive {
			cp := *item
			result = append(result, &cp)
		}
	}
	return result, nil
}

type assignmentStore struct{ *memoryStore }

func (s assignmentStore) Create(_ context.Context, assignment *entity.GameAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uint64{assignment.SubscriptionID, assignment.GameID}
	if _, ok := s.assignments[key]; ok {
		return repository.ErrAssignmentAlreadyExists
	}
	assignment.ID = uint64(len(s.assignments) + 1)
	cp := *assignment
	s.assignments[key] = &cp
	return nil
}

func (s assignmentStore) FindBySubscriptionAndGame(_ context.Context, subscriptionID, gameID uint64) (*entity.GameAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.assignments[[2]uint64{subscriptionID, gameID}]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (s assignmentStore) MarkUsed(_ context.Context, id uint64, usedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.assignments {
		if item.ID == id && !item.Used {
			item.Used = true
			item.UsedAt = &usedAt
			return true, nil
		}
	}
	return false, nil
}

type historyStore struct{ *memoryStore }

func (s historyStore) Create(_ context.Context, item *entity.RenewalHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = uint64(len(s.history) + 1)
	s.history = append(s.history, item)
	return nil
}

func (s historyStore) ListBySubscription(_ context.Context, subscriptionID uint64) ([]*entity.RenewalHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*entity.RenewalHistory, 0)
	for _, item := range s.history {
		if item.SubscriptionID == subscriptionID {
			result = append(result, item)
		}
	}
	return result, nil
}

type teamStore struct{ *memoryStore }

func (s teamStore) List(context.Context) ([]*entity.Team, error) { return s.teams, nil }

func (s teamStore) FindByID(_ context.Context, id uint64) (*entity.Team, error) {
	for _, team := range s.teams {
		if team.ID == id {
			return team, nil
		}
	}
	return nil, nil
}

type packageStore struct{ *memoryStore }

func (s packageStore) FindByID(_ context.Context, id uint64) (*entity.Package, error) {
	for _, pkg := range s.packages {
		if pkg.ID == id {
			return pkg, nil
		}
	}
	return nil, nil
}

func (s packageStore) ListByTeam(_ context.Context, teamID uint64) ([]*entity.Package, error) {
	result := make([]*entity.Package, 0)
	for _, pkg := range s.packages {
		if pkg.TeamID == teamID {
			result = append(result, pkg)
		}
	}
	return result, nil
}

func newTestServer(store *memoryStore) *Server {
	cfg := config.SubscriptionConfig{FullYearDays: 365, BillingTimeout: time.Second, Location: time.UTC}
	subs := subscriptionStore{store}
	packages := packageStore{store}
	teams := teamStore{store}

	subscriptionService := service.NewSubscriptionService(passthroughTx{}, subs, packages, fixedClock{}, cfg)
	renewalEngine := service.NewRenewalEngine(passthroughTx{}, subs, historyStore{store}, subscriptionService, payment.NewStubGateway(packages), fixedClock{}, cfg)
	ticketService := service.NewTicketService(subs, assignmentStore{store}, teams, seat.NewRandomAllocator(0), fixedClock{})

	return NewServer(service.NewCatalogService(teams, packages), subscriptionService, ticketService, renewalEngine)
}

func dialTestServer(t *testing.T, srv *Server) *grpc.ClientConn {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.ChainUnaryInterceptor(RequestIDInterceptor(), RecoveryInterceptor(), LoggingInterceptor()))
	RegisterSeasonTicketsServiceServer(server, srv)
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return listener.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, method string, req, resp interface{}) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return conn.Invoke(ctx, fmt.Sprintf("/%s/%s", ServiceName, method), req, resp)
}

func TestSubscriptionLifecycleOverGRPC(t *testing.T) {
	store := newMemoryStore()
	conn := dialTestServer(t, newTestServer(store))

	var created types.SubscriptionEnvelopeResponse
	err := invoke(t, conn, "CreateSubscription", &types.CreateSubscriptionRequest{
		UserId: 7, PackageId: 3, StartDate: "2025-03-10", EndDate: "2026-03-10", AutoRenew: true,
	}, &created)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Subscription == nil || created.Subscription.Id != 1 || created.Subscription.Status != entity.SubscriptionStatusActive {
		t.Fatalf("unexpected created subscription: %+v", created.Subscription)
	}

	err = invoke(t, conn, "CreateSubscription", &types.CreateSubscriptionRequest{
		UserId: 7, PackageId: 3, StartDate: "2025-03-10", EndDate: "2026-03-10",
	}, &types.SubscriptionEnvelopeResponse{})
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}

	var renewed types.RenewSubscriptionResponse
	if err := invoke(t, conn, "RenewSubscription", &types.SubscriptionRequest{Id: 1}, &renewed); err != nil {
		t.Fatalf("renew failed: %v", err)
	}
	if renewed.PreviousEndDate != "2026-03-10" || renewed.NewEndDate != "2027-03-10" {
		t.Fatalf("unexpected renew response: %+v", renewed)
	}

	var cancelled types.MessageResponse
	if err := invoke(t, conn, "CancelSubscription", &types.SubscriptionRequest{Id: 1}, &cancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Subscription == nil || cancelled.Subscription.Status != entity.SubscriptionStatusCancelled {
		t.Fatalf("unexpected cancel response: %+v", cancelled)
	}

	err = invoke(t, conn, "RenewSubscription", &types.SubscriptionRequest{Id: 1}, &types.RenewSubscriptionResponse{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for cancelled renew, got %v", err)
	}
}

func TestGetSubscriptionValidationAndNotFound(t *testing.T) {
	conn := dialTestServer(t, newTestServer(newMemoryStore()))

	err := invoke(t, conn, "GetSubscription", &types.SubscriptionRequest{}, &types.SubscriptionEnvelopeResponse{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}

	err = invoke(t, conn, "GetSubscription", &types.SubscriptionRequest{Id: 99}, &types.SubscriptionEnvelopeResponse{})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestTicketsOverGRPC(t *testing.T) {
	store := newMemoryStore()
	store.subscriptions[1] = &entity.Subscription{
		ID: 1, UserID: 7, PackageID: 3, Status: entity.SubscriptionStatusActive,
		StartDate: serverToday, EndDate: serverToday.AddDate(1, 0, 0),
	}
	conn := dialTestServer(t, newTestServer(store))

	seatNumber := int32(12)
	var assigned types.TicketResponse
	if err := invoke(t, conn, "AssignTicket", &types.AssignTicketRequest{SubscriptionId: 1, GameId: 10, SeatNumber: &seatNumber}, &assigned); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if assigned.Assignment == nil || assigned.Assignment.SeatNumber != 12 || assigned.Assignment.Used {
		t.Fatalf("unexpected assignment: %+v", assigned.Assignment)
	}

	var used types.TicketResponse
	if err := invoke(t, conn, "UseTicket", &types.UseTicketRequest{SubscriptionId: 1, GameId: 10}, &used); err != nil {
		t.Fatalf("use failed: %v", err)
	}
	if used.Assignment == nil || !used.Assignment.Used {
		t.Fatalf("expected used assignment, got %+v", used.Assignment)
	}

	err := invoke(t, conn, "UseTicket", &types.UseTicketRequest{SubscriptionId: 1, GameId: 10}, &types.TicketResponse{})
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition on second use, got %v", err)
	}
}

func TestCatalogAndRenewalsOverGRPC(t *testing.T) {
	store := newMemoryStore()
	store.subscriptions[1] = &entity.Subscription{
		ID: 1, UserID: 7, PackageID: 3, Status: entity.SubscriptionStatusActive,
		StartDate: serverToday.AddDate(-1, 0, 0), EndDate: serverToday, AutoRenew: true,
	}
	conn := dialTestServer(t, newTestServer(store))

	var teams types.ListTeamsResponse
	if err := invoke(t, conn, "ListTeams", &types.ListTeamsRequest{}, &teams); err != nil {
		t.Fatalf("list teams failed: %v", err)
	}
	if len(teams.Teams) != 1 || teams.Teams[0].Name != "Lakeside Otters" {
		t.Fatalf("unexpected teams: %+v", teams.Teams)
	}

	var packages types.ListPackagesResponse
	if err := invoke(t, conn, "ListPackages", &types.ListPackagesRequest{TeamId: 1}, &packages); err != nil {
		t.Fatalf("list packages failed: %v", err)
	}
	if len(packages.Packages) != 1 || packages.Packages[0].Price != "5000.00" {
		t.Fatalf("unexpected packages: %+v", packages.Packages)
	}

	var run types.RunRenewalsResponse
	if err := invoke(t, conn, "RunRenewals", &types.RunRenewalsRequest{}, &run); err != nil {
		t.Fatalf("run renewals failed: %v", err)
	}
	if run.Processed != 1 || run.Failed != 0 || run.Skipped {
		t.Fatalf("unexpected run result: %+v", run)
	}

	var history types.ListRenewalHistoryResponse
	if err := invoke(t, conn, "ListRenewalHistory", &types.SubscriptionRequest{Id: 1}, &history); err != nil {
		t.Fatalf("list history failed: %v", err)
	}
	if len(history.Renewals) != 1 || history.Renewals[0].Status != entity.RenewalStatusCompleted || history.Renewals[0].AmountCents != 500000 {
		t.Fatalf("unexpected history: %+v", history.Renewals)
	}
}

func TestToStatusError(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{err: service.ErrInvalidDateRange, want: codes.InvalidArgument},
		{err: pricing.ErrInvalidInput, want: codes.InvalidArgument},
		{err: service.ErrSubscriptionCancelled, want: codes.InvalidArgument},
		{err: service.ErrTeamNotFound, want: codes.NotFound},
		{err: service.ErrAssignmentNotFound, want: codes.NotFound},
		{err: service.ErrAssignmentAlreadyExists, want: codes.AlreadyExists},
		{err: fmt.Errorf("seat 4: %w", seat.ErrSeatUnavailable), want: codes.AlreadyExists},
		{err: service.ErrAlreadyRedeemed, want: codes.FailedPrecondition},
		{err: errors.New("db down"), want: codes.Internal},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			got := toStatusError(context.Background(), tc.err, "failed")
			if status.Code(got) != tc.want {
				t.Fatalf("expected %s, got %v", tc.want, got)
			}
		})
	}

	if msg := status.Convert(toStatusError(context.Background(), errors.New("db down"), "failed")).Message(); msg != "internal server error" {
		t.Fatalf("expected masked internal message, got %q", msg)
	}
}
