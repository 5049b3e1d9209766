package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cardapio/internal/apperror"
	"cardapio/internal/cart"
	"cardapio/internal/models"
	"cardapio/internal/pricing"
	"cardapio/internal/repositories"
)

// LineInput is one requested order line.
type LineInput struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// PlaceOrderInput is a checkout request. A nil AddressID means pickup.
type PlaceOrderInput struct {
	PaymentMethod models.PaymentMethod
	AddressID     *string
	Lines         []LineInput
}

// Quote is the priced view of a cart that has not been ordered.
type Quote struct {
	Lines []cart.Line `json:"lines"`
	pricing.Breakdown
}

// Period restricts order listings to a recent window.
type Period string

const (
	PeriodAllTime Period = "ALL_TIME"
	Period30Days  Period = "30_DAYS"
	Period6Months Period = "6_MONTHS"
	Period1Year   Period = "1_YEAR"
)

// ParsePeriod accepts the known periods; empty means ALL_TIME.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case "":
		return PeriodAllTime, nil
	case PeriodAllTime, Period30Days, Period6Months, Period1Year:
		return p, nil
	}
	return "", apperror.Validation("invalid period %q", s)
}

// Since returns the start of the window ending at now, or nil for ALL_TIME.
func (p Period) Since(now time.Time) *time.Time {
	var t time.Time
	switch p {
	case Period30Days:
		t = now.AddDate(0, 0, -30)
	case Period6Months:
		t = now.AddDate(0, -6, 0)
	case Period1Year:
		t = now.AddDate(-1, 0, 0)
	default:
		return nil
	}
	return &t
}

// OrderQuery filters an order listing. Empty fields mean no restriction.
type OrderQuery struct {
	Status string
	Period string
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	itemRepo    repositories.ItemRepository
	addressRepo repositories.AddressRepository
	publisher   EventPublisher
	exchange    string
	now         func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	itemRepo repositories.ItemRepository,
	addressRepo repositories.AddressRepository,
	publisher EventPublisher,
	exchange string,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		addressRepo: addressRepo,
		publisher:   publisher,
		exchange:    exchange,
		now:         time.Now,
	}
}

// SetClock replaces the time source used for period filters.
func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

// buildCart resolves the requested lines against the menu. Repeated item ids are merged.
func (s *OrderService) buildCart(ctx context.Context, lines []LineInput) (*cart.Cart, error) {
	if len(lines) == 0 {
		return nil, apperror.Validation("empty cart")
	}
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l.ItemID) == "" {
			return nil, apperror.Validation("itemId is required")
		}
		if l.Quantity < 1 {
			return nil, apperror.Validation("quantity of item %s must be at least 1", l.ItemID)
		}
		if !seen[l.ItemID] {
			seen[l.ItemID] = true
			ids = append(ids, l.ItemID)
		}
	}

	items, err := s.itemRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	c := cart.New()
	for _, l := range lines {
		it, ok := byID[l.ItemID]
		if !ok {
			return nil, apperror.NotFound("item with ID %s not found", l.ItemID)
		}
		c.AddQuantity(cart.Line{ItemID: it.ID, Description: it.Description, UnitPrice: it.UnitPrice}, l.Quantity)
	}
	return c, nil
}

// Quote prices lines at current menu prices without persisting anything.
func (s *OrderService) Quote(ctx context.Context, lines []LineInput) (*Quote, error) {
	c, err := s.buildCart(ctx, lines)
	if err != nil {
		return nil, err
	}
	out := c.Lines()
	return &Quote{Lines: out, Breakdown: pricing.Price(out)}, nil
}

// PlaceOrder turns a cart into a PENDING order owned by actor.
func (s *OrderService) PlaceOrder(ctx context.Context, actor Actor, input PlaceOrderInput) (*models.Order, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.Validation("empty cart")
	}
	if !input.PaymentMethod.Valid() {
		return nil, apperror.Validation("invalid payment method %q", input.PaymentMethod)
	}

	var addressID *string
	if input.AddressID != nil && strings.TrimSpace(*input.AddressID) != "" {
		address, err := s.addressRepo.GetByID(ctx, *input.AddressID)
		if err != nil {
			return nil, err
		}
		if address.UserID != actor.UserID {
			return nil, apperror.Authorization("address %s does not belong to the client", address.ID)
		}
		addressID = &address.ID
	}

	c, err := s.buildCart(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ClientID:      actor.UserID,
		AddressID:     addressID,
		PaymentMethod: input.PaymentMethod,
		Status:        models.StatusPending,
	}
	for _, l := range c.Lines() {
		order.Items = append(order.Items, models.OrderItem{
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice, // Price at the time of order
		})
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	created, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order %s: %w", order.ID, err)
	}

	publish(s.publisher, s.exchange, newOrderEvent(EventOrderCreated, created, ""))
	return created, nil
}

// List returns the actor's orders, or every order for admins, newest first.
func (s *OrderService) List(ctx context.Context, actor Actor, q OrderQuery) ([]models.Order, error) {
	var filter repositories.OrderFilter
	if strings.TrimSpace(q.Status) != "" {
		status, err := models.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(q.Status)))
		if err != nil {
			return nil, apperror.Validation("%s", err.Error())
		}
		filter.Status = status
	}
	period, err := ParsePeriod(q.Period)
	if err != nil {
		return nil, err
	}
	filter.Since = period.Since(s.now())
	if !actor.IsAdmin() {
		filter.ClientID = actor.UserID
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Get retrieves a single order visible to actor.
func (s *OrderService) Get(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.authorizeOwner(order.ClientID, "order "+id); err != nil {
		return nil, err
	}
	return order, nil
}

// TransitionStatus moves an order to status to, following the actor's role table.
// Client moves only apply if the order has not changed since it was read.
func (s *OrderService) TransitionStatus(ctx context.Context, actor Actor, id string, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, apperror.Validation("invalid order status %q", to)
	}
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if !CanTransition(actor.Role, from, to) {
		return nil, apperror.InvalidState("cannot move order %s from %s to %s", id, from, to)
	}

	if actor.IsAdmin() {
		if err := s.orderRepo.UpdateStatus(ctx, id, to); err != nil {
			return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
		}
	} else {
		ok, err := s.orderRepo.CompareAndSetStatus(ctx, id, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
		}
		if !ok {
			return nil, apperror.InvalidState("order %s is no longer %s", id, from)
		}
	}

	updated, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order %s: %w", id, err)
	}
	publish(s.publisher, s.exchange, newOrderEvent(EventOrderStatusChanged, updated, from))
	return updated, nil
}
