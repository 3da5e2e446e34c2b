package types

// Wire messages shared by the HTTP API and the gRPC service. Getters are
// nil-safe so handlers can read optional requests without guarding.

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message      string        `json:"message"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

type Team struct {
	Id         uint64 `json:"id"`
	Name       string `json:"name"`
	League     string `json:"league"`
	City       string `json:"city"`
	Season     int32  `json:"season"`
	TotalGames int32  `json:"total_games"`
	CreatedAt  string `json:"created_at"`
}

type Package struct {
	Id             uint64 `json:"id"`
	TeamId         uint64 `json:"team_id"`
	Name           string `json:"name"`
	NumGames       int32  `json:"num_games"`
	PriceCents     int64  `json:"price_cents"`
	Price          string `json:"price"`
	SeatingSection string `json:"seating_section"`
	CreatedAt      string `json:"created_at"`
}

type Subscription struct {
	Id        uint64 `json:"id"`
	UserId    uint64 `json:"user_id"`
	PackageId uint64 `json:"package_id"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	AutoRenew bool   `json:"auto_renew"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type GameAssignment struct {
	Id             uint64 `json:"id"`
	SubscriptionId uint64 `json:"subscription_id"`
	GameId         uint64 `json:"game_id"`
	SeatNumber     int32  `json:"seat_number"`
	Used           bool   `json:"used"`
	UsedAt         string `json:"used_at,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type RenewalHistory struct {
	Id             uint64 `json:"id"`
	SubscriptionId uint64 `json:"subscription_id"`
	RenewalDate    string `json:"renewal_date"`
	AmountCents    int64  `json:"amount_cents"`
	Status         string `json:"status"`
}

type ListTeamsRequest struct{}

type ListTeamsResponse struct {
	Teams []*Team `json:"teams"`
}

type ListPackagesRequest struct {
	TeamId uint64 `json:"team_id"`
}

func (r *ListPackagesRequest) GetTeamId() uint64 {
	if r == nil {
		return 0
	}
	return r.TeamId
}

type ListPackagesResponse struct {
	Packages []*Package `json:"packages"`
}

type CreateSubscriptionRequest struct {
	UserId    uint64 `json:"user_id"`
	PackageId uint64 `json:"package_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	AutoRenew bool   `json:"auto_renew"`
}

func (r *CreateSubscriptionRequest) GetUserId() uint64 {
	if r == nil {
		return 0
	}
	return r.UserId
}

func (r *CreateSubscriptionRequest) GetPackageId() uint64 {
	if r == nil {
		return 0
	}
	return r.PackageId
}

func (r *CreateSubscriptionRequest) GetStartDate() string {
	if r == nil {
		return ""
	}
	return r.StartDate
}

func (r *CreateSubscriptionRequest) GetEndDate() string {
	if r == nil {
		return ""
	}
	return r.EndDate
}

func (r *CreateSubscriptionRequest) GetAutoRenew() bool {
	if r == nil {
		return false
	}
	return r.AutoRenew
}

// SubscriptionRequest addresses one subscription by id. It is the request of
// get, renew, cancel and renewal history.
type SubscriptionRequest struct {
	Id uint64 `json:"id"`
}

func (r *SubscriptionRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

type SubscriptionEnvelopeResponse struct {
	Subscription *Subscription `json:"subscription"`
}

type RenewSubscriptionResponse struct {
	SubscriptionId  uint64 `json:"subscription_id"`
	PreviousEndDate string `json:"previous_end_date"`
	NewEndDate      string `json:"new_end_date"`
}

type UpdateSettingsRequest struct {
	Id        uint64 `json:"id"`
	AutoRenew *bool  `json:"auto_renew"`
}

func (r *UpdateSettingsRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

func (r *UpdateSettingsRequest) HasAutoRenew() bool {
	return r != nil && r.AutoRenew != nil
}

func (r *UpdateSettingsRequest) GetAutoRenew() bool {
	if r == nil || r.AutoRenew == nil {
		return false
	}
	return *r.AutoRenew
}

type CalculatePriceRequest struct {
	Id               uint64 `json:"id"`
	CandidateEndDate string `json:"new_end_date"`
}

func (r *CalculatePriceRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

func (r *CalculatePriceRequest) GetCandidateEndDate() string {
	if r == nil {
		return ""
	}
	return r.CandidateEndDate
}

type CalculatePriceResponse struct {
	SubscriptionId   uint64 `json:"subscription_id"`
	CurrentEndDate   string `json:"current_end_date"`
	CandidateEndDate string `json:"new_end_date"`
	DaysRemaining    int64  `json:"days_remaining"`
	PriceExact       string `json:"price_exact"`
	PriceCents       int64  `json:"price_cents"`
	Price            string `json:"price"`
}

type ListRenewalHistoryResponse struct {
	Renewals []*RenewalHistory `json:"renewals"`
}

type AssignTicketRequest struct {
	SubscriptionId uint64 `json:"subscription_id"`
	GameId         uint64 `json:"game_id"`
	SeatNumber     *int32 `json:"seat_number,omitempty"`
}

func (r *AssignTicketRequest) GetSubscriptionId() uint64 {
	if r == nil {
		return 0
	}
	return r.SubscriptionId
}

func (r *AssignTicketRequest) GetGameId() uint64 {
	if r == nil {
		return 0
	}
	return r.GameId
}

// GetSeatNumber returns nil when the caller leaves the choice to the allocator.
func (r *AssignTicketRequest) GetSeatNumber() *int32 {
	if r == nil {
		return nil
	}
	return r.SeatNumber
}

type UseTicketRequest struct {
	SubscriptionId uint64 `json:"subscription_id"`
	GameId         uint64 `json:"game_id"`
}

func (r *UseTicketRequest) GetSubscriptionId() uint64 {
	if r == nil {
		return 0
	}
	return r.SubscriptionId
}

func (r *UseTicketRequest) GetGameId() uint64 {
	if r == nil {
		return 0
	}
	return r.GameId
}

type TicketResponse struct {
	Message    string          `json:"message"`
	Assignment *GameAssignment `json:"assignment"`
}

type AssignSeatsForGameRequest struct {
	GameId uint64 `json:"game_id"`
	TeamId uint64 `json:"team_id"`
}

func (r *AssignSeatsForGameRequest) GetGameId() uint64 {
	if r == nil {
		return 0
	}
	return r.GameId
}

func (r *AssignSeatsForGameRequest) GetTeamId() uint64 {
	if r == nil {
		return 0
	}
	return r.TeamId
}

type AssignSeatsForGameResponse struct {
	GameId   uint64 `json:"game_id"`
	Assigned int32  `json:"assigned"`
	Skipped  int32  `json:"skipped"`
	Failed   int32  `json:"failed"`
}

type RunRenewalsRequest struct{}

type RunRenewalsResponse struct {
	Processed    int32    `json:"processed"`
	Failed       int32    `json:"failed"`
	Skipped      bool     `json:"skipped"`
	Unreconciled []uint64 `json:"unreconciled"`
}
