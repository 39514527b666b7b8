package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

type WishlistService struct {
	wishlistRepo WishlistRepository
	productRepo  ProductRepository
}

func NewWishlistService(u uow.UOW) (*WishlistService, error) {
	wishlistRepo, err := uow.GetRepositoryAs[WishlistRepository](u, uow.RepositoryName(repoargs.WishlistRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	productRepo, err := uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &WishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo}, nil
}

func (s *WishlistService) List(ctx context.Context, userID int64) ([]domain.Product, error) {
	products, err := s.wishlistRepo.GetProducts(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return products, nil
}

// Add добавляет товар в вишлист. Если товара нет, возвращает domain.ErrRecordNotFound.
func (s *WishlistService) Add(ctx context.Context, userID, productID int64) error {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return fmt.Errorf("adding to wishlist: %w", err)
	}
	return s.wishlistRepo.Add(ctx, userID, productID) //nolint:wrapcheck
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID int64) error {
	return s.wishlistRepo.Remove(ctx, userID, productID) //nolint:wrapcheck
}
