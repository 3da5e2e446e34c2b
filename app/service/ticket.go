package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
	"github.com/vibast-solutions/ms-go-season-tickets/app/factory"
	"github.com/vibast-solutions/ms-go-season-tickets/app/repository"
	"github.com/vibast-solutions/ms-go-season-tickets/app/seat"
)

type ticketSubscriptionRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Subscription, error)
	ListActiveByTeam(ctx context.Context, teamID uint64) ([]*entity.Subscription, error)
}

type gameAssignmentRepository interface {
	Create(ctx context.Context, assignment *entity.GameAssignment) error
	FindBySubscriptionAndGame(ctx context.Context, subscriptionID, gameID uint64) (*entity.GameAssignment, error)
	MarkUsed(ctx context.Context, id uint64, usedAt time.Time) (bool, error)
}

type teamFinder interface {
	FindByID(ctx context.Context, id uint64) (*entity.Team, error)
}

type BulkAssignResult struct {
	GameID   uint64
	Assigned int
	Skipped  int
	Failed   int
}

type TicketService struct {
	subscriptionRepo ticketSubscriptionRepository
	assignmentRepo   gameAssignmentRepository
	teamRepo         teamFinder
	allocator        seat.Allocator
	clock            Clock
	logger           logrus.FieldLogger
}

func NewTicketService(
	subscriptionRepo ticketSubscriptionRepository,
	assignmentRepo gameAssignmentRepository,
	teamRepo teamFinder,
	allocator seat.Allocator,
	clock Clock,
) *TicketService {
	return &TicketService{
		subscriptionRepo: subscriptionRepo,
		assignmentRepo:   assignmentRepo,
		teamRepo:         teamRepo,
		allocator:        allocator,
		clock:            clock,
		logger:           factory.NewModuleLogger("ticket-service"),
	}
}

// Assign allocates a seat for one game. A nil seatNumber lets the allocator
// pick one.
func (s *TicketService) Assign(ctx context.Context, subscriptionID, gameID uint64, seatNumber *int32) (*entity.GameAssignment, error) {
	if gameID == 0 {
		return nil, fmt.Errorf("%w: game_id is required", ErrInvalidRequest)
	}

	subscription, err := s.subscriptionRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, ErrSubscriptionNotFound
	}

	return s.assign(ctx, subscription.ID, gameID, seatNumber)
}

func (s *TicketService) assign(ctx context.Context, subscriptionID, gameID uint64, seatNumber *int32) (*entity.GameAssignment, error) {
	seatNo, err := s.allocator.Allocate(ctx, gameID, seatNumber)
	if err != nil {
		if errors.Is(err, seat.ErrInvalidSeat) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return nil, err
	}

	assignment := &entity.GameAssignment{
		SubscriptionID: subscriptionID,
		GameID:         gameID,
		SeatNumber:     seatNo,
		CreatedAt:      s.clock.Now().UTC(),
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		if releaseErr := s.allocator.Release(ctx, gameID, seatNo); releaseErr != nil {
			s.logger.WithError(releaseErr).
				WithField("game_id", gameID).
				WithField("seat_number", seatNo).
				Warn("Failed to release seat after assignment error")
		}
		if errors.Is(err, repository.ErrAssignmentAlreadyExists) {
			return nil, ErrAssignmentAlreadyExists
		}
		return nil, err
	}

	return assignment, nil
}

// Redeem marks the ticket used exactly once. The flip is a conditional update,
// so of two concurrent calls only one succeeds.
func (s *TicketService) Redeem(ctx context.Context, subscriptionID, gameID uint64) (*entity.GameAssignment, error) {
	assignment, err := s.assignmentRepo.FindBySubscriptionAndGame(ctx, subscriptionID, gameID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if assignment.Used {
		return nil, ErrAlreadyRedeemed
	}

	now := s.clock.Now().UTC()
	ok, err := s.assignmentRepo.MarkUsed(ctx, assignment.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyRedeemed
	}

	assignment.Used = true
	assignment.UsedAt = &now
	return assignment, nil
}

// AssignSeatsForGame gives every active subscription of the team's packages a
// seat for gameID. Pairs that already have an assignment are skipped; other
// per-subscription failures are logged and counted.
func (s *TicketService) AssignSeatsForGame(ctx context.Context, gameID, teamID uint64) (*BulkAssignResult, error) {
	if gameID == 0 {
		return nil, fmt.Errorf("%w: game_id is required", ErrInvalidRequest)
	}

	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}

	subscriptions, err := s.subscriptionRepo.ListActiveByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	result := &BulkAssignResult{GameID: gameID}
	for _, subscription := range subscriptions {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		_, err := s.assign(ctx, subscription.ID, gameID, nil)
		switch {
		case err == nil:
			result.Assigned++
		case errors.Is(err, ErrAssignmentAlreadyExists):
			result.Skipped++
		default:
			result.Failed++
			s.logger.WithError(err).
				WithField("subscription_id", subscription.ID).
				WithField("game_id", gameID).
				Error("Seat assignment failed")
		}
	}

	return result, nil
}
