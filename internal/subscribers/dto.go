package subscribers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mealprep-backend/internal/dispatch"
	"github.com/angelmondragon/mealprep-backend/internal/pause"
	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// SignupInput registers a subscriber together with their subscription.
// Zero values fall back to the signup defaults.
type SignupInput struct {
	Name                string                     `json:"name" validate:"required"`
	Phone               string                     `json:"phone" validate:"required"`
	Address             types.Address              `json:"address" validate:"required"`
	DislikedIngredients []enums.DislikedIngredient `json:"disliked_ingredients"`
	PackageID           uuid.UUID                  `json:"package_id" validate:"required"`
	Composition         []enums.MealCategory       `json:"composition"`
	StartDate           types.Date                 `json:"start_date"`
	Duration            enums.Duration             `json:"duration"`
	DeliveryShift       enums.DeliveryShift        `json:"delivery_shift" validate:"required"`
	AreaID              uuid.UUID                  `json:"area_id" validate:"required"`
	PaymentMethod       enums.PaymentMethod        `json:"payment_method"`
	DiscountCode        string                     `json:"discount_code"`
}

// UpdateSubscriptionInput edits a subscription. Nil fields are left as they are.
type UpdateSubscriptionInput struct {
	PackageID     *uuid.UUID                `json:"package_id"`
	Composition   []enums.MealCategory      `json:"composition"`
	StartDate     *types.Date               `json:"start_date"`
	Duration      *enums.Duration           `json:"duration"`
	Status        *enums.SubscriptionStatus `json:"status"`
	PaymentDate   *types.Date               `json:"payment_date"`
	PaymentMethod *enums.PaymentMethod      `json:"payment_method"`
	PaymentStatus *enums.PaymentStatus      `json:"payment_status"`
	DeliveryShift *enums.DeliveryShift      `json:"delivery_shift"`
	AreaID        *uuid.UUID                `json:"area_id"`
	Version       *int                      `json:"version"`
}

// ListFilter narrows the subscriber listing. A zero Date lists everyone.
type ListFilter struct {
	Date     types.Date
	PaidOnly bool
	// Status narrows to subscribers whose subscription is in that state.
	Status enums.SubscriptionStatus
}

// PriceView is the priced breakdown of a subscription.
type PriceView struct {
	DailyPrice  decimal.Decimal `json:"daily_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Final       decimal.Decimal `json:"final"`
	AppliedCode string          `json:"applied_code,omitempty"`
}

// SubscriptionView is the API shape of a subscription.
type SubscriptionView struct {
	ID                 uuid.UUID                `json:"id"`
	PackageID          uuid.UUID                `json:"package_id"`
	Composition        []enums.MealCategory     `json:"composition"`
	StartDate          types.Date               `json:"start_date"`
	EndDate            types.Date               `json:"end_date"`
	Duration           enums.Duration           `json:"duration"`
	Status             enums.SubscriptionStatus `json:"status"`
	PaymentDate        types.Date               `json:"payment_date"`
	PaymentMethod      enums.PaymentMethod      `json:"payment_method"`
	PaymentStatus      enums.PaymentStatus      `json:"payment_status"`
	DiscountCode       *string                  `json:"discount_code,omitempty"`
	DeliveryShift      enums.DeliveryShift      `json:"delivery_shift"`
	AreaID             uuid.UUID                `json:"area_id"`
	PausedDays         []types.Date             `json:"paused_days"`
	PauseDaysAvailable int                      `json:"pause_days_available"`
	Version            int                      `json:"version"`
	Price              PriceView                `json:"price"`
}

// SubscriberView is the API shape of a subscriber with their subscription.
type SubscriberView struct {
	ID                  uuid.UUID                  `json:"id"`
	Name                string                     `json:"name"`
	Phone               string                     `json:"phone"`
	Address             types.Address              `json:"address"`
	DislikedIngredients []enums.DislikedIngredient `json:"disliked_ingredients"`
	FavoriteMealIDs     []uuid.UUID                `json:"favorite_meal_ids"`
	Subscription        *SubscriptionView          `json:"subscription,omitempty"`
}

// PauseResult reports the outcome of a pause toggle.
type PauseResult struct {
	Date               types.Date        `json:"date"`
	Outcome            pause.Outcome     `json:"outcome"`
	PauseDaysAvailable int               `json:"pause_days_available"`
	PausedDays         []types.Date      `json:"paused_days"`
	Subscription       *SubscriptionView `json:"subscription"`
}

// DispatchView says which driver serves a subscriber.
type DispatchView struct {
	SubscriberID uuid.UUID            `json:"subscriber_id"`
	AreaID       uuid.UUID            `json:"area_id"`
	Shift        enums.DeliveryShift  `json:"shift"`
	Assigned     bool                 `json:"assigned"`
	Assignment   *dispatch.Assignment `json:"assignment,omitempty"`
}

// PriceToView maps a pricing result for the wire.
func PriceToView(r pricing.Result) PriceView {
	return PriceView{
		DailyPrice:  r.DailyPrice,
		Subtotal:    r.Subtotal,
		Discount:    r.Discount,
		Final:       r.Final,
		AppliedCode: r.AppliedCode,
	}
}

func subscriptionToView(sub models.Subscription, price pricing.Result) *SubscriptionView {
	paused := append([]types.Date{}, sub.PausedDays...)
	return &SubscriptionView{
		ID:                 sub.ID,
		PackageID:          sub.PackageID,
		Composition:        append([]enums.MealCategory{}, sub.Composition...),
		StartDate:          sub.StartDate,
		EndDate:            sub.EndDate(),
		Duration:           sub.Duration,
		Status:             sub.Status,
		PaymentDate:        sub.PaymentDate,
		PaymentMethod:      sub.PaymentMethod,
		PaymentStatus:      sub.PaymentStatus,
		DiscountCode:       sub.DiscountCode,
		DeliveryShift:      sub.DeliveryShift,
		AreaID:             sub.AreaID,
		PausedDays:         paused,
		PauseDaysAvailable: sub.PauseDaysAvailable,
		Version:            sub.Version,
		Price:              PriceToView(price),
	}
}

func subscriberToView(s models.Subscriber, sub *SubscriptionView) SubscriberView {
	dislikes := append([]enums.DislikedIngredient{}, s.DislikedIngredients...)
	favorites := append([]uuid.UUID{}, s.FavoriteMealIDs...)
	return SubscriberView{
		ID:                  s.ID,
		Name:                s.Name,
		Phone:               s.Phone,
		Address:             s.Address,
		DislikedIngredients: dislikes,
		FavoriteMealIDs:     favorites,
		Subscription:        sub,
	}
}
