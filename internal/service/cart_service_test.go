package service_test

import (
	"context"
	"testing"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/internal/service"
	"github.com/fsdevblog/groph-grocer/internal/service/mocks"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-grocer/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CartServiceTestSuite struct {
	suite.Suite
	mockCtrl    *gomock.Controller
	mockUOW     *uowmocks.MockUOW
	mockTX      *uowmocks.MockTX
	mockCart    *mocks.MockCartRepository
	mockProduct *mocks.MockProductRepository
	service     *service.CartService
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}

func (s *CartServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockCart = mocks.NewMockCartRepository(s.mockCtrl)
	s.mockProduct = mocks.NewMockProductRepository(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.CartRepoName)).Return(s.mockCart, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.ProductRepoName)).Return(s.mockProduct, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.CartRepoName)).Return(s.mockCart, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.ProductRepoName)).Return(s.mockProduct, nil).AnyTimes()
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	var err error
	s.service, err = service.NewCartService(s.mockUOW)
	s.Require().NoError(err)
}

func (s *CartServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CartServiceTestSuite) TestGet_Totals() {
	s.mockCart.EXPECT().GetLines(gomock.Any(), int64(1)).Return([]domain.CartLine{
		{Product: domain.Product{ID: 1, Price: decimal.RequireFromString("1.25")}, Quantity: 4},
		{Product: domain.Product{ID: 2, Price: decimal.RequireFromString("0.99")}, Quantity: 1},
	}, nil)

	cart, err := s.service.Get(s.T().Context(), 1)
	s.Require().NoError(err)
	s.Equal("5.99", cart.Subtotal.StringFixed(2))
	s.Equal(int32(5), cart.ItemsCount)
}

func (s *CartServiceTestSuite) TestGet_EmptyCartHasNoNilLines() {
	s.mockCart.EXPECT().GetLines(gomock.Any(), int64(1)).Return(nil, nil)

	cart, err := s.service.Get(s.T().Context(), 1)
	s.Require().NoError(err)
	s.NotNil(cart.Lines)
	s.True(cart.Subtotal.IsZero())
}

func (s *CartServiceTestSuite) TestSetQuantity() {
	product := &domain.Product{ID: 3, Stock: 2, IsActive: true}

	s.Run("ok", func() {
		s.mockProduct.EXPECT().FindByID(gomock.Any(), int64(3)).Return(product, nil)
		s.mockCart.EXPECT().SetQuantity(gomock.Any(), int64(1), int64(3), int32(2)).Return(nil)
		s.mockCart.EXPECT().GetLines(gomock.Any(), int64(1)).
			Return([]domain.CartLine{{Product: *product, Quantity: 2}}, nil)

		cart, err := s.service.SetQuantity(s.T().Context(), 1, 3, 2)
		s.Require().NoError(err)
		s.Len(cart.Lines, 1)
	})

	s.Run("more than stock", func() {
		s.mockProduct.EXPECT().FindByID(gomock.Any(), int64(3)).Return(product, nil)

		_, err := s.service.SetQuantity(s.T().Context(), 1, 3, 3)
		s.Require().ErrorIs(err, domain.ErrOutOfStock)
	})

	s.Run("inactive product", func() {
		s.mockProduct.EXPECT().FindByID(gomock.Any(), int64(4)).Return(&domain.Product{ID: 4, Stock: 9}, nil)

		_, err := s.service.SetQuantity(s.T().Context(), 1, 4, 1)
		s.Require().ErrorIs(err, domain.ErrRecordNotFound)
	})

	s.Run("zero removes line", func() {
		s.mockCart.EXPECT().Remove(gomock.Any(), int64(1), int64(3)).Return(nil)
		s.mockCart.EXPECT().GetLines(gomock.Any(), int64(1)).Return(nil, nil)

		cart, err := s.service.SetQuantity(s.T().Context(), 1, 3, 0)
		s.Require().NoError(err)
		s.Empty(cart.Lines)
	})
}

// TestMerge гостевые количества суммируются с текущими и ограничиваются остатком, неактивные товары
// пропускаются.
func (s *CartServiceTestSuite) TestMerge() {
	const userID int64 = 1
	products := []domain.Product{
		{ID: 1, Stock: 6, IsActive: true},
		{ID: 2, Stock: 3, IsActive: true},
		{ID: 3, Stock: 10, IsActive: false},
	}

	s.mockProduct.EXPECT().FindByIDs(gomock.Any(), []int64{1, 2, 3}).Return(products, nil)
	s.mockCart.EXPECT().GetLines(gomock.Any(), userID).
		Return([]domain.CartLine{{Product: products[0], Quantity: 2}}, nil)
	s.mockCart.EXPECT().SetQuantity(gomock.Any(), userID, int64(1), int32(6)).Return(nil)
	s.mockCart.EXPECT().SetQuantity(gomock.Any(), userID, int64(2), int32(3)).Return(nil)
	s.mockCart.EXPECT().GetLines(gomock.Any(), userID).Return([]domain.CartLine{
		{Product: products[0], Quantity: 6},
		{Product: products[1], Quantity: 3},
	}, nil)

	cart, err := s.service.Merge(s.T().Context(), userID, []service.CartItemArgs{
		{ProductID: 1, Quantity: 3},
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 5},
		{ProductID: 3, Quantity: 1},
		{ProductID: 4, Quantity: 0},
	})
	s.Require().NoError(err)
	s.Equal(int32(9), cart.ItemsCount)
}

func (s *CartServiceTestSuite) TestMerge_NothingToMerge() {
	s.mockProduct.EXPECT().FindByIDs(gomock.Any(), gomock.Any()).Times(0)
	s.mockCart.EXPECT().GetLines(gomock.Any(), int64(1)).Return(nil, nil)

	cart, err := s.service.Merge(s.T().Context(), 1, []service.CartItemArgs{{ProductID: 1, Quantity: -1}})
	s.Require().NoError(err)
	s.Empty(cart.Lines)
}

// TestMerge_UnknownProduct гостевые позиции удаленных товаров отбрасываются, остальные сливаются.
func (s *CartServiceTestSuite) TestMerge_UnknownProduct() {
	const userID int64 = 1
	milk := domain.Product{ID: 1, Stock: 10, IsActive: true}

	s.Run("one product deleted", func() {
		s.mockProduct.EXPECT().FindByIDs(gomock.Any(), []int64{1, 7}).Return([]domain.Product{milk}, nil)
		s.mockCart.EXPECT().GetLines(gomock.Any(), userID).Return(nil, nil)
		s.mockCart.EXPECT().SetQuantity(gomock.Any(), userID, int64(1), int32(2)).Return(nil)
		s.mockCart.EXPECT().GetLines(gomock.Any(), userID).
			Return([]domain.CartLine{{Product: milk, Quantity: 2}}, nil)

		cart, err := s.service.Merge(s.T().Context(), userID, []service.CartItemArgs{
			{ProductID: 1, Quantity: 2},
			{ProductID: 7, Quantity: 4},
		})
		s.Require().NoError(err)
		s.Require().Len(cart.Lines, 1)
		s.Equal(int64(1), cart.Lines[0].Product.ID)
		s.Equal(int32(2), cart.ItemsCount)
	})

	s.Run("all products deleted", func() {
		s.mockProduct.EXPECT().FindByIDs(gomock.Any(), []int64{7}).Return(nil, domain.ErrRecordNotFound)
		s.mockCart.EXPECT().GetLines(gomock.Any(), userID).
			Return([]domain.CartLine{{Product: milk, Quantity: 1}}, nil).Times(2)

		cart, err := s.service.Merge(s.T().Context(), userID, []service.CartItemArgs{{ProductID: 7, Quantity: 4}})
		s.Require().NoError(err)
		s.Equal(int32(1), cart.ItemsCount)
	})
}
