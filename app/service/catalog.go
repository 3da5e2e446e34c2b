package service

import (
	"context"

	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
)

type teamRepository interface {
	List(ctx context.Context) ([]*entity.Team, error)
	FindByID(ctx context.Context, id uint64) (*entity.Team, error)
}

type CatalogService struct {
	teamRepo    teamRepository
	packageRepo packageRepository
}

func NewCatalogService(teamRepo teamRepository, packageRepo packageRepository) *CatalogService {
	return &CatalogService{teamRepo: teamRepo, packageRepo: packageRepo}
}

func (s *CatalogService) ListTeams(ctx context.Context) ([]*entity.Team, error) {
	return s.teamRepo.List(ctx)
}

func (s *CatalogService) ListPackages(ctx context.Context, teamID uint64) ([]*entity.Package, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}
	return s.packageRepo.ListByTeam(ctx, teamID)
}
