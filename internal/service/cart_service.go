package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/shopspring/decimal"
)

type CartService struct {
	uow         uow.UOW
	cartRepo    CartRepository
	productRepo ProductRepository
}

func NewCartService(u uow.UOW) (*CartService, error) {
	cartRepo, err := uow.GetRepositoryAs[CartRepository](u, uow.RepositoryName(repoargs.CartRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	productRepo, err := uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &CartService{uow: u, cartRepo: cartRepo, productRepo: productRepo}, nil
}

type Cart struct {
	Lines      []domain.CartLine
	Subtotal   decimal.Decimal
	ItemsCount int32
}

func newCart(lines []domain.CartLine) *Cart {
	cart := Cart{Lines: lines, Subtotal: decimal.Zero}
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	for _, line := range cart.Lines {
		cart.Subtotal = cart.Subtotal.Add(line.Total())
		cart.ItemsCount += line.Quantity
	}
	return &cart
}

func (s *CartService) Get(ctx context.Context, userID int64) (*Cart, error) {
	lines, err := s.cartRepo.GetLines(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return newCart(lines), nil
}

// SetQuantity выставляет количество товара в корзине. Количество 0 удаляет позицию.
//
// Ошибки: domain.ErrRecordNotFound если товара нет или он снят с продажи, domain.ErrOutOfStock если
// количество больше остатка.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID int64, quantity int32) (*Cart, error) {
	if quantity <= 0 {
		return s.Remove(ctx, userID, productID)
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("setting cart quantity: %w", err)
	}
	if !product.IsActive {
		return nil, fmt.Errorf("setting cart quantity: product %d: %w", productID, domain.ErrRecordNotFound)
	}
	if quantity > product.Stock {
		return nil, fmt.Errorf("setting cart quantity: product %d: %w", productID, domain.ErrOutOfStock)
	}
	if err = s.cartRepo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Remove(ctx context.Context, userID, productID int64) (*Cart, error) {
	if err := s.cartRepo.Remove(ctx, userID, productID); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.cartRepo.Clear(ctx, userID) //nolint:wrapcheck
}

type CartItemArgs struct {
	ProductID int64
	Quantity  int32
}

// Merge переносит гостевую корзину клиента в корзину юзера.
//
// Алгоритм работы:
//  1. Количества одного товара в гостевой корзине суммируются, позиции с количеством <= 0 пропускаются.
//  2. Неизвестные, снятые с продажи и отсутствующие на складе товары пропускаются.
//  3. Итоговое количество = текущее + гостевое, но не больше остатка на складе.
//
// Все изменения выполняются в одной транзакции. Возвращает итоговую корзину.
func (s *CartService) Merge(ctx context.Context, userID int64, items []CartItemArgs) (*Cart, error) {
	guest := make(map[int64]int32, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if _, ok := guest[item.ProductID]; !ok {
			ids = append(ids, item.ProductID)
		}
		guest[item.ProductID] += item.Quantity
	}

	var cart *Cart
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		cartRepo, err := uow.GetAs[CartRepository](tx, uow.RepositoryName(repoargs.CartRepoName))
		if err != nil {
			return err //nolint:wrapcheck
		}
		if len(ids) > 0 {
			if err = s.mergeLines(c, tx, cartRepo, userID, ids, guest); err != nil {
				return err
			}
		}
		lines, err := cartRepo.GetLines(c, userID)
		if err != nil {
			return err //nolint:wrapcheck
		}
		cart = newCart(lines)
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("merging cart: %w", txErr)
	}
	return cart, nil
}

func (s *CartService) mergeLines(
	ctx context.Context,
	tx uow.TX,
	cartRepo CartRepository,
	userID int64,
	ids []int64,
	guest map[int64]int32,
) error {
	productRepo, err := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
	if err != nil {
		return err //nolint:wrapcheck
	}
	products, err := productRepo.FindByIDs(ctx, ids)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return err //nolint:wrapcheck
	}
	lines, err := cartRepo.GetLines(ctx, userID)
	if err != nil {
		return err //nolint:wrapcheck
	}
	current := make(map[int64]int32, len(lines))
	for _, line := range lines {
		current[line.Product.ID] = line.Quantity
	}

	for _, product := range products {
		if !product.IsActive || product.Stock <= 0 {
			continue
		}
		quantity := min(current[product.ID]+guest[product.ID], product.Stock)
		if quantity == current[product.ID] {
			continue
		}
		if err = cartRepo.SetQuantity(ctx, userID, product.ID, quantity); err != nil {
			return err //nolint:wrapcheck
		}
	}
	return nil
}
