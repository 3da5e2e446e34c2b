package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
	"github.com/vibast-solutions/ms-go-season-tickets/app/pricing"
	"github.com/vibast-solutions/ms-go-season-tickets/app/service"
	"github.com/vibast-solutions/ms-go-season-tickets/app/types"
)

func TeamToType(item *entity.Team) *types.Team {
	if item == nil {
		return nil
	}

	return &types.Team{
		Id:         item.ID,
		Name:       item.Name,
		League:     item.League,
		City:       item.City,
		Season:     item.Season,
		TotalGames: item.TotalGames,
		CreatedAt:  item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func TeamsToTypes(items []*entity.Team) []*types.Team {
	result := make([]*types.Team, 0, len(items))
	for _, item := range items {
		result = append(result, TeamToType(item))
	}
	return result
}

func PackageToType(item *entity.Package) *types.Package {
	if item == nil {
		return nil
	}

	return &types.Package{
		Id:             item.ID,
		TeamId:         item.TeamID,
		Name:           item.Name,
		NumGames:       item.NumGames,
		PriceCents:     item.PriceCents,
		Price:          pricing.FormatMajor(item.PriceCents),
		SeatingSection: item.Section,
		CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func PackagesToTypes(items []*entity.Package) []*types.Package {
	result := make([]*types.Package, 0, len(items))
	for _, item := range items {
		result = append(result, PackageToType(item))
	}
	return result
}

func SubscriptionToType(item *entity.Subscription) *types.Subscription {
	if item == nil {
		return nil
	}

	return &types.Subscription{
		Id:        item.ID,
		UserId:    item.UserID,
		PackageId: item.PackageID,
		Status:    item.Status,
		StartDate: item.StartDate.Format(time.DateOnly),
		EndDate:   item.EndDate.Format(time.DateOnly),
		AutoRenew: item.AutoRenew,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func GameAssignmentToType(item *entity.GameAssignment) *types.GameAssignment {
	if item == nil {
		return nil
	}

	result := &types.GameAssignment{
		Id:             item.ID,
		SubscriptionId: item.SubscriptionID,
		GameId:         item.GameID,
		SeatNumber:     item.SeatNumber,
		Used:           item.Used,
		CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
	}
	if item.UsedAt != nil {
		result.UsedAt = item.UsedAt.UTC().Format(time.RFC3339)
	}
	return result
}

func RenewalHistoryToTypes(items []*entity.RenewalHistory) []*types.RenewalHistory {
	result := make([]*types.RenewalHistory, 0, len(items))
	for _, item := range items {
		result = append(result, &types.RenewalHistory{
			Id:             item.ID,
			SubscriptionId: item.SubscriptionID,
			RenewalDate:    item.RenewalDate.UTC().Format(time.RFC3339),
			AmountCents:    item.AmountCents,
			Status:         item.Status,
		})
	}
	return result
}

func RenewResultToType(item *service.RenewResult) *types.RenewSubscriptionResponse {
	return &types.RenewSubscriptionResponse{
		SubscriptionId:  item.SubscriptionID,
		PreviousEndDate: item.PreviousEndDate.Format(time.DateOnly),
		NewEndDate:      item.NewEndDate.Format(time.DateOnly),
	}
}

func QuoteToType(item *service.Quote) *types.CalculatePriceResponse {
	return &types.CalculatePriceResponse{
		SubscriptionId:   item.SubscriptionID,
		CurrentEndDate:   item.CurrentEndDate.Format(time.DateOnly),
		CandidateEndDate: item.CandidateEndDate.Format(time.DateOnly),
		DaysRemaining:    item.DaysRemaining,
		PriceExact:       item.Price.RatString(),
		PriceCents:       item.PriceCents,
		Price:            pricing.FormatMajor(item.PriceCents),
	}
}

func BulkAssignResultToType(item *service.BulkAssignResult) *types.AssignSeatsForGameResponse {
	return &types.AssignSeatsForGameResponse{
		GameId:   item.GameID,
		Assigned: int32(item.Assigned),
		Skipped:  int32(item.Skipped),
		Failed:   int32(item.Failed),
	}
}

func RunResultToType(item *service.RunResult) *types.RunRenewalsResponse {
	unreconciled := item.Unreconciled
	if unreconciled == nil {
		unreconciled = make([]uint64, 0)
	}
	return &types.RunRenewalsResponse{
		Processed:    int32(item.Processed),
		Failed:       int32(item.Failed),
		Skipped:      item.Skipped,
		Unreconciled: unreconciled,
	}
}
