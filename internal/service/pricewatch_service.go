package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

// PriceWatchService находит снижения цен и рассылает уведомления подписчикам вишлиста.
type PriceWatchService struct {
	priceRepo    PriceChangeRepository
	productRepo  ProductRepository
	wishlistRepo WishlistRepository
	dispatcher   TaskDispatcher
}

func NewPriceWatchService(u uow.UOW, dispatcher TaskDispatcher) (*PriceWatchService, error) {
	priceRepo, err := uow.GetRepositoryAs[PriceChangeRepository](u, uow.RepositoryName(repoargs.PriceChangeRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	productRepo, err := uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	wishlistRepo, err := uow.GetRepositoryAs[WishlistRepository](u, uow.RepositoryName(repoargs.WishlistRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &PriceWatchService{
		priceRepo:    priceRepo,
		productRepo:  productRepo,
		wishlistRepo: wishlistRepo,
		dispatcher:   dispatcher,
	}, nil
}

// PendingChanges возвращает изменения цен, по которым еще не было рассылки.
func (s *PriceWatchService) PendingChanges(ctx context.Context, limit uint) ([]domain.PriceChange, error) {
	changes, err := s.priceRepo.GetPending(ctx, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return changes, nil
}

// NotifySubscribers ставит в очередь письмо о снижении цены каждому подписчику вишлиста товара.
// Повышение цены и снятый с продажи товар уведомлений не порождают. Возвращает количество
// поставленных в очередь писем. Повторная постановка письма тому же подписчику по тому же изменению
// цены отбрасывается диспетчером, поэтому после частичной ошибки изменение можно обработать заново.
func (s *PriceWatchService) NotifySubscribers(ctx context.Context, change domain.PriceChange) (int, error) {
	if !change.IsDrop() {
		return 0, nil
	}
	product, err := s.productRepo.FindByID(ctx, change.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err //nolint:wrapcheck
	}
	if !product.IsActive {
		return 0, nil
	}
	users, err := s.wishlistRepo.GetSubscribers(ctx, change.ProductID)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	var queued int
	for _, user := range users {
		if err = s.dispatcher.PriceDrop(ctx, PriceDropPayload{
			ChangeID:    change.ID,
			UserID:      user.ID,
			Email:       user.Email,
			FullName:    user.FullName,
			ProductName: product.Name,
			ProductSlug: product.Slug,
			OldPrice:    change.OldPrice,
			NewPrice:    change.NewPrice,
		}); err != nil {
			return queued, fmt.Errorf("enqueue price drop for user %d: %w", user.ID, err)
		}
		queued++
	}
	return queued, nil
}

func (s *PriceWatchService) MarkNotified(ctx context.Context, ids []int64) error {
	return s.priceRepo.MarkNotified(ctx, ids) //nolint:wrapcheck
}
