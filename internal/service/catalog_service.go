package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultCatalogCacheTTL = 5 * time.Minute
	relatedProductsLimit   = 4

	categoriesCacheKey    = "catalog:categories"
	productPageCacheKeyFn = "catalog:product:%s"
)

type CatalogService struct {
	uow          uow.UOW
	categoryRepo CategoryRepository
	productRepo  ProductRepository
	cache        Cache
	cacheTTL     time.Duration
	l            *logrus.Entry
}

func NewCatalogService(u uow.UOW, cache Cache, cacheTTL time.Duration, l *logrus.Logger) (*CatalogService, error) {
	categoryRepo, err := uow.GetRepositoryAs[CategoryRepository](u, uow.RepositoryName(repoargs.CategoryRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	productRepo, err := uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCatalogCacheTTL
	}
	return &CatalogService{
		uow:          u,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		l:            l.WithFields(logrus.Fields{"component": "service", "module": "catalog"}),
	}, nil
}

// ListCategories возвращает категории. Результат кешируется.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if s.fromCache(ctx, categoriesCacheKey, &categories) {
		return categories, nil
	}
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	s.toCache(ctx, categoriesCacheKey, categories)
	return categories, nil
}

type ProductList struct {
	Items []domain.Product
	Total int64
}

// SearchProducts ищет активные товары по фильтру.
func (s *CatalogService) SearchProducts(ctx context.Context, filter repoargs.ProductFilter) (*ProductList, error) {
	filter.OnlyActive = true
	products, total, err := s.productRepo.Search(ctx, filter)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &ProductList{Items: products, Total: total}, nil
}

type ProductPage struct {
	Product domain.Product
	Related []domain.Product
}

// GetProductPage возвращает товар и похожие товары той же категории. Оба запроса выполняются
// параллельно. Неактивный товар считается отсутствующим. Результат кешируется.
func (s *CatalogService) GetProductPage(ctx context.Context, slug string) (*ProductPage, error) {
	key := fmt.Sprintf(productPageCacheKeyFn, slug)

	var page ProductPage
	if s.fromCache(ctx, key, &page) {
		return &page, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	var product *domain.Product
	g.Go(func() error {
		var err error
		product, err = s.productRepo.FindBySlug(gCtx, slug)
		return err //nolint:wrapcheck
	})
	g.Go(func() error {
		var err error
		page.Related, err = s.productRepo.GetRelated(gCtx, slug, relatedProductsLimit)
		return err //nolint:wrapcheck
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("getting product page: %w", err)
	}
	if !product.IsActive {
		return nil, fmt.Errorf("getting product page `%s`: %w", slug, domain.ErrRecordNotFound)
	}
	page.Product = *product
	if page.Related == nil {
		page.Related = []domain.Product{}
	}

	s.toCache(ctx, key, page)
	return &page, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, args repoargs.CategoryCreate) (*domain.Category, error) {
	category, err := s.categoryRepo.Create(ctx, args)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	s.invalidate(ctx, categoriesCacheKey)
	return category, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, args repoargs.ProductCreate) (*domain.Product, error) {
	product, err := s.productRepo.Create(ctx, args)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return product, nil
}

// UpdateProduct частично обновляет товар. Если цена изменилась, в той же транзакции фиксируется
// запись об изменении цены, по которой затем рассылаются уведомления подписчикам вишлиста.
func (s *CatalogService) UpdateProduct(
	ctx context.Context,
	id int64,
	args repoargs.ProductUpdate,
) (*domain.Product, error) {
	var before, after *domain.Product
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		productRepo, err := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
		if err != nil {
			return err //nolint:wrapcheck
		}
		if before, err = productRepo.FindByID(c, id); err != nil {
			return err //nolint:wrapcheck
		}
		if after, err = productRepo.Update(c, id, args); err != nil {
			return err //nolint:wrapcheck
		}
		if args.Price == nil || before.Price.Equal(after.Price) {
			return nil
		}

		priceRepo, err := uow.GetAs[PriceChangeRepository](tx, uow.RepositoryName(repoargs.PriceChangeRepoName))
		if err != nil {
			return err //nolint:wrapcheck
		}
		_, err = priceRepo.Create(c, repoargs.PriceChangeCreate{
			ProductID: id,
			OldPrice:  before.Price,
			NewPrice:  after.Price,
		})
		return err //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating product %d: %w", id, txErr)
	}
	s.invalidate(ctx, fmt.Sprintf(productPageCacheKeyFn, before.Slug))
	return after, nil
}

// SetStock выставляет складской остаток товара.
func (s *CatalogService) SetStock(ctx context.Context, id int64, stock int32) (*domain.Product, error) {
	return s.UpdateProduct(ctx, id, repoargs.ProductUpdate{Stock: &stock})
}

// fromCache читает значение из кеша. Ошибки кеша не прерывают запрос, а только логируются.
func (s *CatalogService) fromCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.l.WithError(err).WithField("key", key).Warn("cache get")
		return false
	}
	return found
}

func (s *CatalogService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.l.WithError(err).WithField("key", key).Warn("cache set")
	}
}

func (s *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys); err != nil && !errors.Is(err, context.Canceled) {
		s.l.WithError(err).WithField("keys", keys).Warn("cache delete")
	}
}
