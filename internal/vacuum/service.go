// Package vacuum takes orders for the vacuum-sealed marinated meat line.
package vacuum

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mealprep-backend/internal/repo"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// DeliveryLeadDays is the gap between placing an order and delivering it.
const DeliveryLeadDays = 2

// SubscriberReader loads the customer placing an order.
type SubscriberReader interface {
	FindSubscriber(ctx context.Context, id uuid.UUID) (*models.Subscriber, error)
}

// ProductCatalog lists the vacuum product line.
type ProductCatalog interface {
	ListVacuumPackages(ctx context.Context) ([]models.VacuumPackage, error)
	ListMarinades(ctx context.Context) ([]models.Marinade, error)
}

// ItemInput is one order line.
type ItemInput struct {
	PackageID  uuid.UUID       `json:"package_id" validate:"required"`
	MarinadeID uuid.UUID       `json:"marinade_id" validate:"required"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
}

// CreateOrderInput places an order. A zero OrderDate means today.
type CreateOrderInput struct {
	SubscriberID    uuid.UUID           `json:"subscriber_id" validate:"required"`
	Items           []ItemInput         `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method" validate:"required"`
	OrderDate       types.Date          `json:"order_date"`
	DeliveryAddress *types.Address      `json:"delivery_address"`
}

// OrderDTO is the API shape of a vacuum order.
type OrderDTO struct {
	ID              uuid.UUID                `json:"id"`
	SubscriberID    uuid.UUID                `json:"subscriber_id"`
	SubscriberName  string                   `json:"subscriber_name"`
	OrderDate       types.Date               `json:"order_date"`
	DeliveryDate    types.Date               `json:"delivery_date"`
	Items           []models.VacuumOrderItem `json:"items"`
	TotalPrice      decimal.Decimal          `json:"total_price"`
	PaymentMethod   enums.PaymentMethod      `json:"payment_method"`
	Status          enums.VacuumOrderStatus  `json:"status"`
	DeliveryAddress types.Address            `json:"delivery_address"`
}

// Service places and tracks vacuum orders.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]OrderDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VacuumOrderStatus) (*OrderDTO, error)
}

// ServiceParams groups dependencies for the vacuum service.
type ServiceParams struct {
	Repo          *Repository
	Subscribers   SubscriberReader
	Catalog       ProductCatalog
	Logger        *logger.Logger
	DecimalPlaces int32
	Location      *time.Location
	Now           func() time.Time
}

type service struct {
	repo        *Repository
	subscribers SubscriberReader
	catalog     ProductCatalog
	logg        *logger.Logger
	places      int32
	location    *time.Location
	now         func() time.Time
}

// NewService builds the vacuum order service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vacuum repository required")
	case params.Subscribers == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscriber reader required")
	case params.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product catalog required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	places := params.DecimalPlaces
	if places <= 0 {
		places = 2
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		subscribers: params.Subscribers,
		catalog:     params.Catalog,
		logg:        logg,
		places:      places,
		location:    loc,
		now:         now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one item")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", input.PaymentMethod)
	}
	subscriber, err := s.subscribers.FindSubscriber(ctx, input.SubscriberID)
	if err != nil {
		return nil, repo.Classify(err, "subscriber")
	}

	pkgs, err := s.catalog.ListVacuumPackages(ctx)
	if err != nil {
		return nil, repo.Classify(err, "vacuum packages")
	}
	marinades, err := s.catalog.ListMarinades(ctx)
	if err != nil {
		return nil, repo.Classify(err, "marinades")
	}
	prices := make(map[uuid.UUID]decimal.Decimal, len(pkgs))
	for _, p := range pkgs {
		prices[p.ID] = p.PricePerKg
	}
	knownMarinade := make(map[uuid.UUID]bool, len(marinades))
	for _, m := range marinades {
		knownMarinade[m.ID] = true
	}

	items := make([]models.VacuumOrderItem, 0, len(input.Items))
	total := decimal.Zero
	for _, item := range input.Items {
		price, ok := prices[item.PackageID]
		if !ok {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown vacuum package %s", item.PackageID)
		}
		if !knownMarinade[item.MarinadeID] {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown marinade %s", item.MarinadeID)
		}
		if !item.QuantityKg.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		total = total.Add(item.QuantityKg.Mul(price))
		items = append(items, models.VacuumOrderItem{PackageID: item.PackageID, MarinadeID: item.MarinadeID, QuantityKg: item.QuantityKg})
	}

	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = types.Today(s.now(), s.location)
	}
	address := subscriber.Address
	if input.DeliveryAddress != nil {
		address = *input.DeliveryAddress
	}

	order := &models.VacuumOrder{
		ID:              uuid.New(),
		SubscriberID:    subscriber.ID,
		SubscriberName:  subscriber.Name,
		OrderDate:       orderDate,
		DeliveryDate:    orderDate.AddDays(DeliveryLeadDays),
		Items:           items,
		TotalPrice:      total.Round(s.places),
		PaymentMethod:   input.PaymentMethod,
		Status:          enums.VacuumOrderPending,
		DeliveryAddress: address,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vacuum order")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"subscriber_id": subscriber.ID.String(), "vacuum_order_id": order.ID.String()})
	s.logg.Info(ctx, "vacuum order placed")

	dto := toDTO(*order)
	return &dto, nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter) ([]OrderDTO, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid vacuum order status %q", filter.Status)
	}
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, repo.Classify(err, "vacuum orders")
	}
	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toDTO(o))
	}
	return out, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VacuumOrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid vacuum order status %q", status)
	}
	ok, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vacuum order status")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vacuum order not found")
	}
	order, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, repo.Classify(err, "vacuum order")
	}
	dto := toDTO(*order)
	return &dto, nil
}

func toDTO(o models.VacuumOrder) OrderDTO {
	return OrderDTO{
		ID:              o.ID,
		SubscriberID:    o.SubscriberID,
		SubscriberName:  o.SubscriberName,
		OrderDate:       o.OrderDate,
		DeliveryDate:    o.DeliveryDate,
		Items:           append([]models.VacuumOrderItem{}, o.Items...),
		TotalPrice:      o.TotalPrice,
		PaymentMethod:   o.PaymentMethod,
		Status:          o.Status,
		DeliveryAddress: o.DeliveryAddress,
	}
}
