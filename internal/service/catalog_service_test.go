package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/internal/service"
	"github.com/fsdevblog/groph-grocer/internal/service/mocks"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-grocer/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

const cacheTTL = time.Minute

type CatalogServiceTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockUOW      *uowmocks.MockUOW
	mockTX       *uowmocks.MockTX
	mockCategory *mocks.MockCategoryRepository
	mockProduct  *mocks.MockProductRepository
	mockPrice    *mocks.MockPriceChangeRepository
	mockCache    *mocks.MockCache
	service      *service.CatalogService
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}

func (s *CatalogServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockCategory = mocks.NewMockCategoryRepository(s.mockCtrl)
	s.mockProduct = mocks.NewMockProductRepository(s.mockCtrl)
	s.mockPrice = mocks.NewMockPriceChangeRepository(s.mockCtrl)
	s.mockCache = mocks.NewMockCache(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.CategoryRepoName)).
		Return(s.mockCategory, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.ProductRepoName)).
		Return(s.mockProduct, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.ProductRepoName)).Return(s.mockProduct, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.PriceChangeRepoName)).Return(s.mockPrice, nil).AnyTimes()
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	l := logrus.New()
	l.SetOutput(io.Discard)

	var err error
	s.service, err = service.NewCatalogService(s.mockUOW, s.mockCache, cacheTTL, l)
	s.Require().NoError(err)
}

func (s *CatalogServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CatalogServiceTestSuite) TestListCategories_CacheMiss() {
	categories := []domain.Category{{ID: 1, Name: "Fruits", Slug: "fruits"}}

	s.mockCache.EXPECT().Get(gomock.Any(), "catalog:categories", gomock.Any()).Return(false, nil)
	s.mockCategory.EXPECT().List(gomock.Any()).Return(categories, nil)
	s.mockCache.EXPECT().Set(gomock.Any(), "catalog:categories", categories, cacheTTL).Return(nil)

	res, err := s.service.ListCategories(s.T().Context())
	s.Require().NoError(err)
	s.Equal(categories, res)
}

func (s *CatalogServiceTestSuite) TestListCategories_CacheHit() {
	s.mockCache.EXPECT().Get(gomock.Any(), "catalog:categories", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, dest any) (bool, error) {
			*dest.(*[]domain.Category) = []domain.Category{{ID: 2, Name: "Dairy"}}
			return true, nil
		})
	s.mockCategory.EXPECT().List(gomock.Any()).Times(0)

	res, err := s.service.ListCategories(s.T().Context())
	s.Require().NoError(err)
	s.Require().Len(res, 1)
	s.Equal("Dairy", res[0].Name)
}

// TestListCategories_CacheFailure недоступный кеш не ломает запрос.
func (s *CatalogServiceTestSuite) TestListCategories_CacheFailure() {
	s.mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("connection refused"))
	s.mockCategory.EXPECT().List(gomock.Any()).Return([]domain.Category{}, nil)
	s.mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	_, err := s.service.ListCategories(s.T().Context())
	s.Require().NoError(err)
}

func (s *CatalogServiceTestSuite) TestSearchProducts_OnlyActive() {
	s.mockProduct.EXPECT().
		Search(gomock.Any(), repoargs.ProductFilter{Query: "milk", OnlyActive: true}).
		Return([]domain.Product{{ID: 1}}, int64(1), nil)

	res, err := s.service.SearchProducts(s.T().Context(), repoargs.ProductFilter{Query: "milk"})
	s.Require().NoError(err)
	s.Equal(int64(1), res.Total)
}

func (s *CatalogServiceTestSuite) TestGetProductPage() {
	s.Run("found", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), "catalog:product:milk", gomock.Any()).Return(false, nil)
		s.mockProduct.EXPECT().FindBySlug(gomock.Any(), "milk").
			Return(&domain.Product{ID: 1, Slug: "milk", IsActive: true}, nil)
		s.mockProduct.EXPECT().GetRelated(gomock.Any(), "milk", uint(4)).Return(nil, nil)
		s.mockCache.EXPECT().Set(gomock.Any(), "catalog:product:milk", gomock.Any(), cacheTTL).Return(nil)

		page, err := s.service.GetProductPage(s.T().Context(), "milk")
		s.Require().NoError(err)
		s.Equal(int64(1), page.Product.ID)
		s.NotNil(page.Related)
	})

	s.Run("inactive", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), "catalog:product:old", gomock.Any()).Return(false, nil)
		s.mockProduct.EXPECT().FindBySlug(gomock.Any(), "old").Return(&domain.Product{ID: 2, Slug: "old"}, nil)
		s.mockProduct.EXPECT().GetRelated(gomock.Any(), "old", uint(4)).Return([]domain.Product{}, nil)

		_, err := s.service.GetProductPage(s.T().Context(), "old")
		s.Require().ErrorIs(err, domain.ErrRecordNotFound)
	})

	s.Run("not found", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), "catalog:product:none", gomock.Any()).Return(false, nil)
		s.mockProduct.EXPECT().FindBySlug(gomock.Any(), "none").Return(nil, domain.ErrRecordNotFound)
		s.mockProduct.EXPECT().GetRelated(gomock.Any(), "none", uint(4)).Return(nil, nil).AnyTimes()

		_, err := s.service.GetProductPage(s.T().Context(), "none")
		s.Require().ErrorIs(err, domain.ErrRecordNotFound)
	})
}

// TestUpdateProduct_PriceChange изменение цены фиксируется в журнале и сбрасывает кеш страницы товара.
func (s *CatalogServiceTestSuite) TestUpdateProduct_PriceChange() {
	oldPrice := decimal.RequireFromString("2.49")
	newPrice := decimal.RequireFromString("1.99")

	s.mockProduct.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(&domain.Product{ID: 1, Slug: "milk", Price: oldPrice}, nil)
	s.mockProduct.EXPECT().Update(gomock.Any(), int64(1), gomock.Any()).
		Return(&domain.Product{ID: 1, Slug: "milk", Price: newPrice}, nil)
	s.mockPrice.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.PriceChangeCreate) (*domain.PriceChange, error) {
			s.True(args.OldPrice.Equal(oldPrice))
			s.True(args.NewPrice.Equal(newPrice))
			return &domain.PriceChange{ID: 1}, nil
		})
	s.mockCache.EXPECT().Delete(gomock.Any(), []string{"catalog:product:milk"}).Return(nil)

	product, err := s.service.UpdateProduct(s.T().Context(), 1, repoargs.ProductUpdate{Price: &newPrice})
	s.Require().NoError(err)
	s.True(product.Price.Equal(newPrice))
}

func (s *CatalogServiceTestSuite) TestSetStock_NoPriceChange() {
	product := &domain.Product{ID: 1, Slug: "milk", Price: decimal.NewFromInt(1)}

	s.mockProduct.EXPECT().FindByID(gomock.Any(), int64(1)).Return(product, nil)
	s.mockProduct.EXPECT().Update(gomock.Any(), int64(1), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, args repoargs.ProductUpdate) (*domain.Product, error) {
			s.Require().NotNil(args.Stock)
			s.Equal(int32(40), *args.Stock)
			s.Nil(args.Price)
			return product, nil
		})
	s.mockPrice.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	s.mockCache.EXPECT().Delete(gomock.Any(), []string{"catalog:product:milk"}).Return(nil)

	_, err := s.service.SetStock(s.T().Context(), 1, 40)
	s.Require().NoError(err)
}

func (s *CatalogServiceTestSuite) TestCreateCategory_InvalidatesCache() {
	args := repoargs.CategoryCreate{Name: "Bakery", Slug: "bakery"}
	s.mockCategory.EXPECT().Create(gomock.Any(), args).Return(&domain.Category{ID: 3}, nil)
	s.mockCache.EXPECT().Delete(gomock.Any(), []string{"catalog:categories"}).Return(nil)

	category, err := s.service.CreateCategory(s.T().Context(), args)
	s.Require().NoError(err)
	s.Equal(int64(3), category.ID)
}
