package services

import (
	"context"

	"cardapio/internal/models"
	"cardapio/internal/repositories"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DashboardStats summarizes the store for the admin overview.
type DashboardStats struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalOrders  int64           `json:"totalOrders"`
	ActiveOrders int64           `json:"activeOrders"`
	TotalUsers   int64           `json:"totalUsers"`
	TotalItems   int64           `json:"totalItems"`
}

// DashboardService computes the admin overview.
type DashboardService struct {
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	itemRepo  repositories.ItemRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(orderRepo repositories.OrderRepository, userRepo repositories.UserRepository, itemRepo repositories.ItemRepository) *DashboardService {
	return &DashboardService{orderRepo: orderRepo, userRepo: userRepo, itemRepo: itemRepo}
}

// Stats gathers the counters concurrently. Revenue excludes canceled orders.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var (
		stats  DashboardStats
		counts map[models.OrderStatus]int64
	)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		orders, err := s.orderRepo.List(ctx, repositories.OrderFilter{ExcludeStatus: models.StatusCanceled})
		if err != nil {
			return err
		}
		revenue := decimal.Zero
		for i := range orders {
			revenue = revenue.Add(orders[i].Total)
		}
		stats.TotalRevenue = revenue
		return nil
	})
	g.Go(func() error {
		var err error
		counts, err = s.orderRepo.CountByStatus(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalUsers, err = s.userRepo.Count(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalItems, err = s.itemRepo.Count(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for status, n := range counts {
		stats.TotalOrders += n
		if status.Active() {
			stats.ActiveOrders += n
		}
	}
	return &stats, nil
}
