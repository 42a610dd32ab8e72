package subscribers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mealprep-backend/internal/pause"
	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	internalsubscribers "github.com/angelmondragon/mealprep-backend/internal/subscribers"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

type stubSubscriberService struct {
	internalsubscribers.Service
	signupFn   func(ctx context.Context, input internalsubscribers.SignupInput) (*internalsubscribers.SubscriberView, error)
	listFn     func(ctx context.Context, filter internalsubscribers.ListFilter) ([]internalsubscribers.SubscriberView, error)
	pauseFn    func(ctx context.Context, id uuid.UUID, date types.Date) (*internalsubscribers.PauseResult, error)
	deliveryFn func(ctx context.Context, id uuid.UUID, date types.Date, status enums.DeliveryStatus) error
	quoteFn    func(ctx context.Context, q pricing.Quote) (*internalsubscribers.PriceView, error)
}

func (s *stubSubscriberService) Signup(ctx context.Context, input internalsubscribers.SignupInput) (*internalsubscribers.SubscriberView, error) {
	return s.signupFn(ctx, input)
}

func (s *stubSubscriberService) List(ctx context.Context, filter internalsubscribers.ListFilter) ([]internalsubscribers.SubscriberView, error) {
	return s.listFn(ctx, filter)
}

func (s *stubSubscriberService) TogglePause(ctx context.Context, id uuid.UUID, date types.Date) (*internalsubscribers.PauseResult, error) {
	return s.pauseFn(ctx, id, date)
}

func (s *stubSubscriberService) SetDeliveryStatus(ctx context.Context, id uuid.UUID, date types.Date, status enums.DeliveryStatus) error {
	return s.deliveryFn(ctx, id, date, status)
}

func (s *stubSubscriberService) Quote(ctx context.Context, q pricing.Quote) (*internalsubscribers.PriceView, error) {
	return s.quoteFn(ctx, q)
}

func newRouter(svc internalsubscribers.Service) http.Handler {
	logg := logger.Nop()
	r := chi.NewRouter()
	r.Post("/subscribers", Signup(svc, logg))
	r.Get("/subscribers", List(svc, logg))
	r.Post("/subscribers/{id}/days/{date}/pause", TogglePause(svc, logg))
	r.Put("/subscribers/{id}/deliveries/{date}", SetDeliveryStatus(svc, logg))
	r.Post("/pricing/quote", Quote(svc, logg))
	return r
}

const signupBody = `{
	"name": "  Alice  ",
	"phone": "+965 5000 1234",
	"address": {"governorate":"Hawalli","area":"Salmiya","block":"10","street":"5","house_number":"12"},
	"package_id": "6f1c1e0a-8a3f-4a5e-9d59-7d5b0d1d7e11",
	"delivery_shift": "morning",
	"area_id": "0b4c4f52-6e1b-4b8d-a6c4-4c7e5a8f9a10",
	"composition": ["lunch","dinner"],
	"start_date": "2026-03-01",
	"duration": 26
}`

func TestSignupCreatesSubscriber(t *testing.T) {
	var got internalsubscribers.SignupInput
	svc := &stubSubscriberService{signupFn: func(_ context.Context, input internalsubscribers.SignupInput) (*internalsubscribers.SubscriberView, error) {
		got = input
		return &internalsubscribers.SubscriberView{ID: uuid.New(), Name: input.Name}, nil
	}}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/subscribers", strings.NewReader(signupBody)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "+96550001234", got.Phone)
	assert.Equal(t, enums.Duration26, got.Duration)
	assert.Equal(t, types.NewDate(2026, 3, 1), got.StartDate)
	assert.Equal(t, []enums.MealCategory{enums.MealCategoryLunch, enums.MealCategoryDinner}, got.Composition)
}

func TestSignupRejectsIncompleteAddress(t *testing.T) {
	svc := &stubSubscriberService{signupFn: func(context.Context, internalsubscribers.SignupInput) (*internalsubscribers.SubscriberView, error) {
		t.Fatal("service should not be called")
		return nil, nil
	}}
	body := strings.Replace(signupBody, `"block":"10",`, ``, 1)

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/subscribers", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"address.block":"is required"`)
}

func TestSignupDuplicatePhoneConflict(t *testing.T) {
	svc := &stubSubscriberService{signupFn: func(context.Context, internalsubscribers.SignupInput) (*internalsubscribers.SubscriberView, error) {
		return nil, internalsubscribers.ErrPhoneTaken
	}}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/subscribers", strings.NewReader(signupBody)))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestListParsesFilters(t *testing.T) {
	svc := &stubSubscriberService{listFn: func(_ context.Context, f internalsubscribers.ListFilter) ([]internalsubscribers.SubscriberView, error) {
		assert.Equal(t, types.NewDate(2026, 3, 2), f.Date)
		assert.True(t, f.PaidOnly)
		return []internalsubscribers.SubscriberView{{Name: "Alice"}}, nil
	}}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscribers?date=2026-03-02&paid=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscribers?date=03/02/2026", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscribers?status=paused", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPassesStatusFilter(t *testing.T) {
	svc := &stubSubscriberService{listFn: func(_ context.Context, f internalsubscribers.ListFilter) ([]internalsubscribers.SubscriberView, error) {
		assert.Equal(t, enums.SubscriptionStatusExpired, f.Status)
		return nil, nil
	}}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscribers?status=expired", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTogglePause(t *testing.T) {
	id := uuid.New()
	svc := &stubSubscriberService{pauseFn: func(_ context.Context, got uuid.UUID, date types.Date) (*internalsubscribers.PauseResult, error) {
		assert.Equal(t, id, got)
		return &internalsubscribers.PauseResult{Date: date, Outcome: pause.OutcomePaused, PauseDaysAvailable: 2}, nil
	}}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/subscribers/"+id.String()+"/days/2026-03-04/pause", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data internalsubscribers.PauseResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, pause.OutcomePaused, envelope.Data.Outcome)
	assert.Equal(t, types.NewDate(2026, 3, 4), envelope.Data.Date)
}

func TestTogglePauseBudgetSpent(t *testing.T) {
	svc := &stubSubscriberService{pauseFn: func(context.Context, uuid.UUID, types.Date) (*internalsubscribers.PauseResult, error) {
		return nil, pause.ErrNoPauseDaysLeft
	}}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/subscribers/"+uuid.NewString()+"/days/2026-03-04/pause", nil))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "no pause days left")

	rec = httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/subscribers/"+uuid.NewString()+"/days/2026-02-30/pause", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetDeliveryStatus(t *testing.T) {
	var got enums.DeliveryStatus
	svc := &stubSubscriberService{deliveryFn: func(_ context.Context, _ uuid.UUID, _ types.Date, status enums.DeliveryStatus) error {
		got = status
		return nil
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/subscribers/"+uuid.NewString()+"/deliveries/2026-03-04", strings.NewReader(`{"status":"delivered"}`))
	newRouter(svc).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.DeliveryStatusDelivered, got)
}

func TestQuote(t *testing.T) {
	pkgID := uuid.New()
	svc := &stubSubscriberService{quoteFn: func(_ context.Context, q pricing.Quote) (*internalsubscribers.PriceView, error) {
		assert.Equal(t, pkgID, q.PackageID)
		assert.Equal(t, enums.Duration30, q.Duration)
		assert.Equal(t, "ramadan", q.DiscountCode)
		return &internalsubscribers.PriceView{Final: decimal.RequireFromString("85.5")}, nil
	}}

	body := `{"package_id":"` + pkgID.String() + `","composition":["lunch"],"duration":30,"discount_code":"ramadan"}`
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pricing/quote", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"final":"85.5"`)

	rec = httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pricing/quote", strings.NewReader(`{"package_id":"`+pkgID.String()+`","composition":[],"duration":30}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
