package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	LowStockThreshold int32 = 5
	lowStockLimit     uint  = 10
)

type DashboardService struct {
	userRepo    UserRepository
	orderRepo   OrderRepository
	productRepo ProductRepository
}

func NewDashboardService(u uow.UOW) (*DashboardService, error) {
	userRepo, err := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	orderRepo, err := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	productRepo, err := uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &DashboardService{userRepo: userRepo, orderRepo: orderRepo, productRepo: productRepo}, nil
}

type DashboardStats struct {
	UsersCount     int64
	OrdersByStatus map[domain.OrderStatusType]int64
	Revenue        decimal.Decimal
	LowStock       []domain.Product
}

// Stats собирает показатели админки. Запросы выполняются параллельно, ошибка любого из них отменяет
// остальные.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stats.UsersCount, err = s.userRepo.Count(gCtx)
		return err //nolint:wrapcheck
	})
	g.Go(func() error {
		orderStats, err := s.orderRepo.Stats(gCtx)
		if err != nil {
			return err //nolint:wrapcheck
		}
		stats.OrdersByStatus = orderStats.ByStatus
		stats.Revenue = orderStats.Revenue
		return nil
	})
	g.Go(func() error {
		var err error
		stats.LowStock, err = s.productRepo.GetLowStock(gCtx, LowStockThreshold, lowStockLimit)
		return err //nolint:wrapcheck
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("getting dashboard stats: %w", err)
	}
	return &stats, nil
}
