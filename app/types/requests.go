package types

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

func parseIDParam(ctx echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(ctx.Param(name), 10, 64)
}

func NewListPackagesRequestFromContext(ctx echo.Context) (*ListPackagesRequest, error) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	return &ListPackagesRequest{TeamId: id}, nil
}

func (r *ListPackagesRequest) Validate() error {
	if r.GetTeamId() == 0 {
		return errors.New("invalid team id")
	}
	return nil
}

func NewCreateSubscriptionRequestFromContext(ctx echo.Context) (*CreateSubscriptionRequest, error) {
	var body CreateSubscriptionRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.StartDate = strings.TrimSpace(body.StartDate)
	body.EndDate = strings.TrimSpace(body.EndDate)
	return &body, nil
}

func (r *CreateSubscriptionRequest) Validate() error {
	if r.GetUserId() == 0 {
		return errors.New("user_id is required")
	}
	if r.GetPackageId() == 0 {
		return errors.New("package_id is required")
	}
	if err := validateDate("start_date", r.GetStartDate()); err != nil {
		return err
	}
	return validateDate("end_date", r.GetEndDate())
}

func NewSubscriptionRequestFromContext(ctx echo.Context) (*SubscriptionRequest, error) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	return &SubscriptionRequest{Id: id}, nil
}

func (r *SubscriptionRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid subscription id")
	}
	return nil
}

func NewUpdateSettingsRequestFromContext(ctx echo.Context) (*UpdateSettingsRequest, error) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}

	var body struct {
		AutoRenew *bool `json:"auto_renew"`
	}
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &UpdateSettingsRequest{Id: id, AutoRenew: body.AutoRenew}, nil
}

func (r *UpdateSettingsRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid subscription id")
	}
	if !r.HasAutoRenew() {
		return errors.New("auto_renew is required")
	}
	return nil
}

func NewCalculatePriceRequestFromContext(ctx echo.Context) (*CalculatePriceRequest, error) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}

	var body struct {
		CandidateEndDate string `json:"new_end_date"`
	}
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &CalculatePriceRequest{Id: id, CandidateEndDate: strings.TrimSpace(body.CandidateEndDate)}, nil
}

func (r *CalculatePriceRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid subscription id")
	}
	return validateDate("new_end_date", r.GetCandidateEndDate())
}

// CandidateEndDateValue is only meaningful after Validate succeeded.
func (r *CalculatePriceRequest) CandidateEndDateValue() time.Time {
	t, _ := time.Parse(time.DateOnly, r.GetCandidateEndDate())
	return t
}

func NewAssignTicketRequestFromContext(ctx echo.Context) (*AssignTicketRequest, error) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}

	var body struct {
		GameId     uint64 `json:"game_id"`
		SeatNumber *int32 `json:"seat_number"`
	}
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &AssignTicketRequest{SubscriptionId: id, GameId: body.GameId, SeatNumber: body.SeatNumber}, nil
}

func (r *AssignTicketRequest) Validate() error {
	if r.GetSubscriptionId() == 0 {
		return errors.New("invalid subscription id")
	}
	if r.GetGameId() == 0 {
		return errors.New("game_id is required")
	}
	if seat := r.GetSeatNumber(); seat != nil && *seat <= 0 {
		return errors.New("seat_number must be positive")
	}
	return nil
}

func NewUseTicketRequestFromContext(ctx echo.Context) (*UseTicketRequest, error) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}

	var body struct {
		GameId uint64 `json:"game_id"`
	}
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &UseTicketRequest{SubscriptionId: id, GameId: body.GameId}, nil
}

func (r *UseTicketRequest) Validate() error {
	if r.GetSubscriptionId() == 0 {
		return errors.New("invalid subscription id")
	}
	if r.GetGameId() == 0 {
		return errors.New("game_id is required")
	}
	return nil
}

func NewAssignSeatsForGameRequestFromContext(ctx echo.Context) (*AssignSeatsForGameRequest, error) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return nil, err
	}

	var body struct {
		TeamId uint64 `json:"team_id"`
	}
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &AssignSeatsForGameRequest{GameId: id, TeamId: body.TeamId}, nil
}

func (r *AssignSeatsForGameRequest) Validate() error {
	if r.GetGameId() == 0 {
		return errors.New("invalid game id")
	}
	if r.GetTeamId() == 0 {
		return errors.New("team_id is required")
	}
	return nil
}

func validateDate(field, value string) error {
	if value == "" {
		return errors.New(field + " is required")
	}
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return errors.New(field + " must be YYYY-MM-DD")
	}
	return nil
}
