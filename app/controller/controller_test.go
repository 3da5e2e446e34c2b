package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-season-tickets/app/entity"
	"github.com/vibast-solutions/ms-go-season-tickets/app/payment"
	"github.com/vibast-solutions/ms-go-season-tickets/app/seat"
	"github.com/vibast-solutions/ms-go-season-tickets/app/service"
	"github.com/vibast-solutions/ms-go-season-tickets/config"
)

var controllerNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return controllerNow }

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type controllerSubRepo struct {
	findByIDFn     func(ctx context.Context, id uint64) (*entity.Subscription, error)
	findActiveFn   func(ctx context.Context, userID, packageID uint64) (*entity.Subscription, error)
	createFn       func(ctx context.Context, subscription *entity.Subscription) error
	listDueFn      func(ctx context.Context, asOf time.Time) ([]*entity.Subscription, error)
	listByTeamFn   func(ctx context.Context, teamID uint64) ([]*entity.Subscription, error)
	updatedEndDate time.Time
}

func (r *controllerSubRepo) Create(ctx context.Context, subscription *entity.Subscription) error {
	if r.createFn != nil {
		return r.createFn(ctx, subscription)
	}
	subscription.ID = 1
	return nil
}

func (r *controllerSubRepo) FindByID(ctx context.Context, id uint64) (*entity.Subscription, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (r *controllerSubRepo) FindByIDForUpdate(ctx context.Context, id uint64) (*entity.Subscription, error) {
	return r.FindByID(ctx, id)
}

func (r *controllerSubRepo) FindActiveByUserAndPackage(ctx context.Context, userID, packageID uint64) (*entity.Subscription, error) {
	if r.findActiveFn != nil {
		return r.findActiveFn(ctx, userID, packageID)
	}
	return nil, nil
}

func (r *controllerSubRepo) UpdateEndDate(_ context.Context, _ uint64, endDate, _ time.Time) error {
	r.updatedEndDate = endDate
	return nil
}

func (r *controllerSubRepo) UpdateStatus(context.Context, uint64, string, time.Time) error {
	return nil
}

func (r *controllerSubRepo) UpdateAutoRenew(context.Context, uint64, bool, time.Time) error {
	return nil
}

func (r *controllerSubRepo) ListDueAutoRenew(ctx context.Context, asOf time.Time) ([]*entity.Subscription, error) {
	if r.listDueFn != nil {
		return r.listDueFn(ctx, asOf)
	}
	return nil, nil
}

func (r *controllerSubRepo) ListActiveByTeam(ctx context.Context, teamID uint64) ([]*entity.Subscription, error) {
	if r.listByTeamFn != nil {
		return r.listByTeamFn(ctx, teamID)
	}
	return nil, nil
}

type controllerCatalogRepo struct {
	teams    []*entity.Team
	packages []*entity.Package
}

func (r *controllerCatalogRepo) List(context.Context) ([]*entity.Team, error) {
	return r.teams, nil
}

func (r *controllerCatalogRepo) FindByID(_ context.Context, id uint64) (*entity.Team, error) {
	for _, team := range r.teams {
		if team.ID == id {
			return team, nil
		}
	}
	return nil, nil
}

type controllerPackageRepo struct {
	packages []*entity.Package
}

func (r *controllerPackageRepo) FindByID(_ context.Context, id uint64) (*entity.Package, error) {
	for _, pkg := range r.packages {
		if pkg.ID == id {
			return pkg, nil
		}
	}
	return nil, nil
}

func (r *controllerPackageRepo) ListByTeam(_ context.Context, teamID uint64) ([]*entity.Package, error) {
	result := make([]*entity.Package, 0)
	for _, pkg := range r.packages {
		if pkg.TeamID == teamID {
			result = append(result, pkg)
		}
	}
	return result, nil
}

type controllerAssignmentRepo struct {
	items map[[2]uint64]*entity.GameAssignment
}

func (r *controllerAssignmentRepo) Create(_ context.Context, assignment *entity.GameAssignment) error {
	if r.items == nil {
		r.items = make(map[[2]uint64]*entity.GameAssignment)
	}
	assignment.ID = uint64(len(r.items) + 1)
	cp := *assignment
	r.items[[2]uint64{assignment.SubscriptionID, assignment.GameID}] = &cp
	return nil
}

func (r *controllerAssignmentRepo) FindBySubscriptionAndGame(_ context.Context, subscriptionID, gameID uint64) (*entity.GameAssignment, error) {
	item, ok := r.items[[2]uint64{subscriptionID, gameID}]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (r *controllerAssignmentRepo) MarkUsed(_ context.Context, id uint64, usedAt time.Time) (bool, error) {
	for _, item := range r.items {
		if item.ID == id && !item.Used {
			item.Used = true
			item.UsedAt = &usedAt
			return true, nil
		}
	}
	return false, nil
}

type controllerHistoryRepo struct{}

func (controllerHistoryRepo) Create(context.Context, *entity.RenewalHistory) error {
	return nil
}

func (controllerHistoryRepo) ListBySubscription(_ context.Context, subscriptionID uint64) ([]*entity.RenewalHistory, error) {
	return []*entity.RenewalHistory{{ID: 1, SubscriptionID: subscriptionID, AmountCents: 0, Status: entity.RenewalStatusFailed, RenewalDate: controllerNow}}, nil
}

type controllerGateway struct{}

func (controllerGateway) Charge(context.Context, uint64, uint64) (payment.Result, error) {
	return payment.Result{Success: true, AmountCents: 500000}, nil
}

type fixture struct {
	subs         *controllerSubRepo
	catalog      *controllerCatalogRepo
	packages     *controllerPackageRepo
	assignments  *controllerAssignmentRepo
	subscription *SubscriptionController
	catalogCtl   *CatalogController
	tickets      *TicketController
}

func newFixture() *fixture {
	f := &fixture{
		subs: &controllerSubRepo{},
		catalog: &controllerCatalogRepo{teams: []*entity.Team{
			{ID: 1, Name: "Harbor City Hawks", League: "NBA", City: "Harbor City", Season: 2025, TotalGames: 41},
		}},
		packages: &controllerPackageRepo{packages: []*entity.Package{
			{ID: 3, TeamID: 1, Name: "Full Season", NumGames: 41, PriceCents: 500000, Section: "Lower Bowl"},
		}},
		assignments: &controllerAssignmentRepo{},
	}
	cfg := config.SubscriptionConfig{FullYearDays: 365, BillingTimeout: time.Second, Location: time.UTC}

	subscriptionService := service.NewSubscriptionService(passthroughTx{}, f.subs, f.packages, fixedClock{}, cfg)
	renewalEngine := service.NewRenewalEngine(passthroughTx{}, f.subs, controllerHistoryRepo{}, subscriptionService, controllerGateway{}, fixedClock{}, cfg)
	ticketService := service.NewTicketService(f.subs, f.assignments, f.catalog, seat.NewRandomAllocator(0), fixedClock{})

	f.subscription = NewSubscriptionController(subscriptionService, renewalEngine)
	f.catalogCtl = NewCatalogController(service.NewCatalogService(f.catalog, f.packages))
	f.tickets = NewTicketController(ticketService)
	return f
}

func activeSubscription(id uint64) *entity.Subscription {
	return &entity.Subscription{
		ID:        id,
		UserID:    7,
		PackageID: 3,
		Status:    entity.SubscriptionStatusActive,
		StartDate: time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		AutoRenew: true,
	}
}

func call(handler echo.HandlerFunc, method, path, body string, params ...string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	if len(params) == 2 {
		ctx.SetParamNames(params[0])
		ctx.SetParamValues(params[1])
	}
	_ = handler(ctx)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture()
	rec := call(f.subscription.Health, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateSubscriptionBadBody(t *testing.T) {
	f := newFixture()
	rec := call(f.subscription.CreateSubscription, http.MethodPost, "/subscriptions", "{bad")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateSubscriptionSuccess(t *testing.T) {
	f := newFixture()
	rec := call(f.subscription.CreateSubscription, http.MethodPost, "/subscriptions",
		`{"user_id":7,"package_id":3,"start_date":"2025-03-10","end_date":"2026-03-09","auto_renew":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Subscription struct {
			ID        uint64 `json:"id"`
			Status    string `json:"status"`
			StartDate string `json:"start_date"`
		} `json:"subscription"`
	}
	decode(t, rec, &payload)
	if payload.Subscription.ID != 1 || payload.Subscription.Status != "active" || payload.Subscription.StartDate != "2025-03-10" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCreateSubscriptionPastStartDate(t *testing.T) {
	f := newFixture()
	rec := call(f.subscription.CreateSubscription, http.MethodPost, "/subscriptions",
		`{"user_id":7,"package_id":3,"start_date":"2025-03-01","end_date":"2026-03-01"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateSubscriptionUnknownPackage(t *testing.T) {
	f := newFixture()
	rec := call(f.subscription.CreateSubscription, http.MethodPost, "/subscriptions",
		`{"user_id":7,"package_id":99,"start_date":"2025-03-10","end_date":"2026-03-09"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateSubscriptionDuplicate(t *testing.T) {
	f := newFixture()
	f.subs.findActiveFn = func(_ context.Context, _, _ uint64) (*entity.Subscription, error) {
		return activeSubscription(1), nil
	}
	rec := call(f.subscription.CreateSubscription, http.MethodPost, "/subscriptions",
		`{"user_id":7,"package_id":3,"start_date":"2025-03-10","end_date":"2026-03-09"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestGetSubscriptionNotFound(t *testing.T) {
	f := newFixture()
	rec := call(f.subscription.GetSubscription, http.MethodGet, "/subscriptions/9", "", "id", "9")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetSubscriptionInternalError(t *testing.T) {
	f := newFixture()
	f.subs.findByIDFn = func(_ context.Context, _ uint64) (*entity.Subscription, error) {
		return nil, context.DeadlineExceeded
	}
	rec := call(f.subscription.GetSubscription, http.MethodGet, "/subscriptions/9", "", "id", "9")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("internal server error")) {
		t.Fatalf("expected generic error message, got %s", rec.Body.String())
	}
}

func TestRenewSubscriptionLeapDay(t *testing.T) {
	f := newFixture()
	f.subs.findByIDFn = func(_ context.Context, id uint64) (*entity.Subscription, error) {
		return activeSubscription(id), nil
	}
	rec := call(f.subscription.RenewSubscription, http.MethodPut, "/subscriptions/4/renew", "", "id", "4")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		NewEndDate string `json:"new_end_date"`
	}
	decode(t, rec, &payload)
	if payload.NewEndDate != "2025-02-28" {
		t.Fatalf("expected 2025-02-28, got %s", payload.NewEndDate)
	}
}

func TestRenewCancelledSubscription(t *testing.T) {
	f := newFixture()
	f.subs.findByIDFn = func(_ context.Context, id uint64) (*entity.Subscription, error) {
		item := activeSubscription(id)
		item.Status = entity.SubscriptionStatusCancelled
		return item, nil
	}
	rec := call(f.subscription.RenewSubscription, http.MethodPut, "/subscriptions/4/renew", "", "id", "4")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCancelSubscription(t *testing.T) {
	f := newFixture()
	f.subs.findByIDFn = func(_ context.Context, id uint64) (*entity.Subscription, error) {
		return activeSubscription(id), nil
	}
	rec := call(f.subscription.CancelSubscription, http.MethodPost, "/subscriptions/4/cancel", "", "id", "4")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"status":"cancelled"`)) {
		t.Fatalf("expected cancelled subscription, got %s", rec.Body.String())
	}
}

func TestUpdateSettingsValidationError(t *testing.T) {
	f := newFixture()
	rec := call(f.subscription.UpdateSettings, http.MethodPut, "/subscriptions/4/settings", `{}`, "id", "4")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCalculatePrice(t *testing.T) {
	f := newFixture()
	f.subs.findByIDFn = func(_ context.Context, id uint64) (*entity.Subscription, error) {
		item := activeSubscription(id)
		item.EndDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		return item, nil
	}
	rec := call(f.subscription.CalculatePrice, http.MethodPost, "/subscriptions/4/calculate-price", `{"new_end_date":"2025-07-02"}`, "id", "4")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		DaysRemaining int64  `json:"days_remaining"`
		PriceCents    int64  `json:"price_cents"`
		Price         string `json:"price"`
	}
	decode(t, rec, &payload)
	if payload.DaysRemaining != 182 || payload.PriceCents != 249315 || payload.Price != "2493.15" {
		t.Fatalf("unexpected quote: %+v", payload)
	}
}

func TestListRenewalHistory(t *testing.T) {
	f := newFixture()
	f.subs.findByIDFn = func(_ context.Context, id uint64) (*entity.Subscription, error) {
		return activeSubscription(id), nil
	}
	rec := call(f.subscription.ListRenewalHistory, http.MethodGet, "/subscriptions/4/renewals", "", "id", "4")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"status":"failed"`)) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRunRenewals(t *testing.T) {
	f := newFixture()
	f.subs.findByIDFn = func(_ context.Context, id uint64) (*entity.Subscription, error) {
		item := activeSubscription(id)
		item.EndDate = time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
		return item, nil
	}
	f.subs.listDueFn = func(_ context.Context, _ time.Time) ([]*entity.Subscription, error) {
		return []*entity.Subscription{activeSubscription(4)}, nil
	}
	rec := call(f.subscription.RunRenewals, http.MethodPost, "/renewals/run", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Processed int32 `json:"processed"`
		Failed    int32 `json:"failed"`
	}
	decode(t, rec, &payload)
	if payload.Processed != 1 || payload.Failed != 0 {
		t.Fatalf("unexpected run result: %+v", payload)
	}
	if !f.subs.updatedEndDate.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected renewed end date: %s", f.subs.updatedEndDate)
	}
}

func TestListTeamsAndPackages(t *testing.T) {
	f := newFixture()

	rec := call(f.catalogCtl.ListTeams, http.MethodGet, "/teams", "")
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("Harbor City Hawks")) {
		t.Fatalf("unexpected teams response: %d %s", rec.Code, rec.Body.String())
	}

	rec = call(f.catalogCtl.ListPackages, http.MethodGet, "/teams/1/packages", "", "id", "1")
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte(`"price":"5000.00"`)) {
		t.Fatalf("unexpected packages response: %d %s", rec.Code, rec.Body.String())
	}

	rec = call(f.catalogCtl.ListPackages, http.MethodGet, "/teams/8/packages", "", "id", "8")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown team, got %d", rec.Code)
	}
}

func TestAssignAndUseTicket(t *testing.T) {
	f := newFixture()
	f.subs.findByIDFn = func(_ context.Context, id uint64) (*entity.Subscription, error) {
		return activeSubscription(id), nil
	}

	rec := call(f.tickets.AssignTicket, http.MethodPost, "/subscriptions/4/assign-ticket", `{"game_id":10,"seat_number":12}`, "id", "4")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"seat_number":12`)) {
		t.Fatalf("unexpected assignment: %s", rec.Body.String())
	}

	rec = call(f.tickets.UseTicket, http.MethodPost, "/subscriptions/4/use-ticket", `{"game_id":10}`, "id", "4")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = call(f.tickets.UseTicket, http.MethodPost, "/subscriptions/4/use-ticket", `{"game_id":10}`, "id", "4")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second use, got %d", rec.Code)
	}
}

func TestUseTicketWithoutAssignment(t *testing.T) {
	f := newFixture()
	rec := call(f.tickets.UseTicket, http.MethodPost, "/subscriptions/4/use-ticket", `{"game_id":10}`, "id", "4")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAssignSeatsForGame(t *testing.T) {
	f := newFixture()
	f.subs.listByTeamFn = func(_ context.Context, _ uint64) ([]*entity.Subscription, error) {
		return []*entity.Subscription{activeSubscription(1), activeSubscription(2)}, nil
	}

	rec := call(f.tickets.AssignSeatsForGame, http.MethodPost, "/games/10/assign-seats", `{"team_id":1}`, "id", "10")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Assigned int32 `json:"assigned"`
		Skipped  int32 `json:"skipped"`
	}
	decode(t, rec, &payload)
	if payload.Assigned != 2 || payload.Skipped != 0 {
		t.Fatalf("unexpected bulk result: %+v", payload)
	}
}
