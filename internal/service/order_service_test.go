package service_test

import (
	"context"
	"strings"
	"testing"

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

type OrderServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockUOW        *uowmocks.MockUOW
	mockTX         *uowmocks.MockTX
	mockWallet     *mocks.MockWalletRepository
	mockCart       *mocks.MockCartRepository
	mockPromo      *mocks.MockPromoRepository
	mockOrder      *mocks.MockOrderRepository
	mockProduct    *mocks.MockProductRepository
	mockLoyalty    *mocks.MockLoyaltyRepository
	mockReferral   *mocks.MockReferralRepository
	mockUser       *mocks.MockUserRepository
	mockDispatcher *mocks.MockTaskDispatcher
	service        *service.OrderService
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockWallet = mocks.NewMockWalletRepository(s.mockCtrl)
	s.mockCart = mocks.NewMockCartRepository(s.mockCtrl)
	s.mockPromo = mocks.NewMockPromoRepository(s.mockCtrl)
	s.mockOrder = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockProduct = mocks.NewMockProductRepository(s.mockCtrl)
	s.mockLoyalty = mocks.NewMockLoyaltyRepository(s.mockCtrl)
	s.mockReferral = mocks.NewMockReferralRepository(s.mockCtrl)
	s.mockUser = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockDispatcher = mocks.NewMockTaskDispatcher(s.mockCtrl)

	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrder, nil).AnyTimes()

	// репозитории транзакции
	txRepos := map[repoargs.RepositoryName]uow.Repository{
		repoargs.WalletRepoName:   s.mockWallet,
		repoargs.CartRepoName:     s.mockCart,
		repoargs.PromoRepoName:    s.mockPromo,
		repoargs.OrderRepoName:    s.mockOrder,
		repoargs.ProductRepoName:  s.mockProduct,
		repoargs.LoyaltyRepoName:  s.mockLoyalty,
		repoargs.ReferralRepoName: s.mockReferral,
		repoargs.UserRepoName:     s.mockUser,
	}
	for name, repo := range txRepos {
		s.mockTX.EXPECT().Get(uow.RepositoryName(name)).Return(repo, nil).AnyTimes()
	}

	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	var err error
	s.service, err = service.NewOrderService(s.mockUOW, s.mockDispatcher, service.CheckoutSettings{
		DeliveryFee:           decimal.RequireFromString("4.99"),
		FreeDeliveryThreshold: decimal.NewFromInt(50),
		LoyaltyEarnRate:       decimal.NewFromInt(1),
		ReferrerReward:        decimal.NewFromInt(5),
		RefereeReward:         decimal.NewFromInt(3),
	}, logrus.New())
	s.Require().NoError(err)
}

func (s *OrderServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *OrderServiceTestSuite) balance(amount int64) *repoargs.BalanceAggregation {
	return &repoargs.BalanceAggregation{DebitAmount: decimal.NewFromInt(amount), CreditAmount: decimal.Zero}
}

func cartLines() []domain.CartLine {
	return []domain.CartLine{
		{
			Product: domain.Product{
				ID: 1, Name: "Apples", Price: decimal.RequireFromString("12.50"), Stock: 10, IsActive: true,
			},
			Quantity: 2,
		},
		{
			Product: domain.Product{
				ID: 2, Name: "Milk", Price: decimal.RequireFromString("3.00"), Stock: 1, IsActive: true,
			},
			Quantity: 1,
		},
	}
}

// TestCheckout_FirstOrderWithPromo оформление первого заказа приглашенного юзера с промокодом.
// Сумма товаров 28.00, скидка 10% = 2.80, доставка 4.99 (25.20 < 50), итог 30.19, баллов 30.
func (s *OrderServiceTestSuite) TestCheckout_FirstOrderWithPromo() {
	const userID int64 = 1
	promo := &domain.Promo{
		ID: 7, Code: "SALE10", Kind: domain.PromoKindPercent, Value: decimal.NewFromInt(10),
		MinOrderAmount: decimal.Zero, IsActive: true,
	}

	var walletOps []repoargs.WalletTransactionCreate
	var loyaltyOps []repoargs.LoyaltyTransactionCreate

	s.mockWallet.EXPECT().LockUser(gomock.Any(), userID).Return(nil)
	s.mockUser.EXPECT().FindUserByID(gomock.Any(), userID).
		Return(&domain.User{ID: userID, Email: "buyer@example.com", FullName: "Buyer"}, nil)
	s.mockCart.EXPECT().GetLines(gomock.Any(), userID).Return(cartLines(), nil)
	s.mockPromo.EXPECT().FindByCode(gomock.Any(), "SALE10").Return(promo, nil)
	s.mockWallet.EXPECT().GetUserBalance(gomock.Any(), userID).Return(s.balance(100), nil).Times(2)

	s.mockOrder.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.OrderCreate) (*domain.Order, error) {
			s.Equal("28.00", args.Subtotal.StringFixed(2))
			s.Equal("2.80", args.Discount.StringFixed(2))
			s.Equal("4.99", args.DeliveryFee.StringFixed(2))
			s.Equal("30.19", args.Total.StringFixed(2))
			s.Equal(int64(30), args.PointsEarned)
			s.Equal("SALE10", args.PromoCode)
			s.Equal("Main st. 1", args.DeliveryAddress)
			s.Equal(domain.OrderStatusPaid, args.Status)
			s.True(strings.HasPrefix(args.OrderNumber, "GR-"))
			s.Len(args.Items, 2)

			items := make([]domain.OrderItem, len(args.Items))
			for i, item := range args.Items {
				items[i] = domain.OrderItem{
					ProductID: item.ProductID, ProductName: item.ProductName, Price: item.Price, Quantity: item.Quantity,
				}
			}
			return &domain.Order{
				ID: 10, UserID: args.UserID, OrderNumber: args.OrderNumber, Status: args.Status,
				Total: args.Total, PointsEarned: args.PointsEarned, Items: items,
			}, nil
		})
	s.mockProduct.EXPECT().DecrementStock(gomock.Any(), int64(1), int32(2)).Return(nil)
	s.mockProduct.EXPECT().DecrementStock(gomock.Any(), int64(2), int32(1)).Return(nil)
	s.mockWallet.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error) {
			walletOps = append(walletOps, args)
			return &domain.WalletTransaction{ID: int64(len(walletOps))}, nil
		}).Times(3)
	s.mockPromo.EXPECT().IncrementUsage(gomock.Any(), promo.ID).Return(nil)
	s.mockCart.EXPECT().Clear(gomock.Any(), userID).Return(nil)
	s.mockLoyalty.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LoyaltyTransactionCreate) (*domain.LoyaltyTransaction, error) {
			loyaltyOps = append(loyaltyOps, args)
			return &domain.LoyaltyTransaction{ID: 1}, nil
		})
	s.mockOrder.EXPECT().CountByUserID(gomock.Any(), userID).Return(int64(1), nil)
	s.mockReferral.EXPECT().FindPendingByReferee(gomock.Any(), userID).
		Return(&domain.Referral{ID: 3, ReferrerID: 9, RefereeID: userID}, nil)
	s.mockReferral.EXPECT().MarkRewarded(gomock.Any(), int64(3), gomock.Any()).Return(nil)
	s.mockUser.EXPECT().TouchLastOrder(gomock.Any(), userID).Return(nil)

	s.mockDispatcher.EXPECT().OrderConfirmation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p service.OrderConfirmationPayload) error {
			s.Equal(int64(10), p.OrderID)
			s.Equal("buyer@example.com", p.Email)
			s.Len(p.Items, 2)
			return nil
		})
	s.mockDispatcher.EXPECT().OrderStatusWebhook(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p service.OrderStatusPayload) error {
			s.Equal(domain.OrderStatusPaid, p.Status)
			return nil
		})

	order, err := s.service.Checkout(s.T().Context(), userID, service.CheckoutArgs{
		DeliveryAddress: " Main st. 1 ",
		PromoCode:       "sale10",
	})
	s.Require().NoError(err)
	s.Equal(int64(10), order.ID)

	s.Require().Len(walletOps, 3)
	// оплата заказа
	s.Equal(domain.DirectionCredit, walletOps[0].Direction)
	s.Equal(domain.WalletReasonOrderPayment, walletOps[0].Reason)
	s.Equal("30.19", walletOps[0].Amount.StringFixed(2))
	s.Require().NotNil(walletOps[0].OrderID)
	s.Equal(int64(10), *walletOps[0].OrderID)
	// бонус пригласившему
	s.Equal(int64(9), walletOps[1].UserID)
	s.Equal(domain.DirectionDebit, walletOps[1].Direction)
	s.Equal(domain.WalletReasonReferralBonus, walletOps[1].Reason)
	s.True(walletOps[1].Amount.Equal(decimal.NewFromInt(5)))
	// бонус приглашенному
	s.Equal(userID, walletOps[2].UserID)
	s.True(walletOps[2].Amount.Equal(decimal.NewFromInt(3)))

	s.Require().Len(loyaltyOps, 1)
	s.Equal(domain.DirectionDebit, loyaltyOps[0].Direction)
	s.Equal(int64(30), loyaltyOps[0].Points)
}

func (s *OrderServiceTestSuite) TestCheckout_FreeDeliveryAndRepeatOrder() {
	const userID int64 = 2
	lines := []domain.CartLine{{
		Product:  domain.Product{ID: 5, Name: "Cheese", Price: decimal.RequireFromString("25.75"), Stock: 3, IsActive: true},
		Quantity: 2,
	}}

	s.mockWallet.EXPECT().LockUser(gomock.Any(), userID).Return(nil)
	s.mockUser.EXPECT().FindUserByID(gomock.Any(), userID).Return(&domain.User{ID: userID}, nil)
	s.mockCart.EXPECT().GetLines(gomock.Any(), userID).Return(lines, nil)
	s.mockWallet.EXPECT().GetUserBalance(gomock.Any(), userID).Return(s.balance(60), nil).Times(2)
	s.mockOrder.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.OrderCreate) (*domain.Order, error) {
			s.True(args.DeliveryFee.IsZero())
			s.True(args.Discount.IsZero())
			s.Equal("51.50", args.Total.StringFixed(2))
			s.Equal(int64(51), args.PointsEarned)
			s.Empty(args.PromoCode)
			return &domain.Order{ID: 11, UserID: userID, Total: args.Total, PointsEarned: args.PointsEarned}, nil
		})
	s.mockProduct.EXPECT().DecrementStock(gomock.Any(), int64(5), int32(2)).Return(nil)
	s.mockWallet.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.WalletTransaction{ID: 1}, nil)
	s.mockCart.EXPECT().Clear(gomock.Any(), userID).Return(nil)
	s.mockLoyalty.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.LoyaltyTransaction{ID: 1}, nil)
	// не первый заказ: реферальные бонусы не начисляются
	s.mockOrder.EXPECT().CountByUserID(gomock.Any(), userID).Return(int64(4), nil)
	s.mockUser.EXPECT().TouchLastOrder(gomock.Any(), userID).Return(nil)
	s.mockDispatcher.EXPECT().OrderConfirmation(gomock.Any(), gomock.Any()).Return(nil)
	s.mockDispatcher.EXPECT().OrderStatusWebhook(gomock.Any(), gomock.Any()).Return(nil)

	order, err := s.service.Checkout(s.T().Context(), userID, service.CheckoutArgs{DeliveryAddress: "addr"})
	s.Require().NoError(err)
	s.Equal(int64(11), order.ID)
}

func (s *OrderServiceTestSuite) TestCheckout_EmptyCart() {
	s.mockWallet.EXPECT().LockUser(gomock.Any(), int64(1)).Return(nil)
	s.mockUser.EXPECT().FindUserByID(gomock.Any(), int64(1)).Return(&domain.User{ID: 1}, nil)
	s.mockCart.EXPECT().GetLines(gomock.Any(), int64(1)).Return(nil, nil)

	_, err := s.service.Checkout(s.T().Context(), 1, service.CheckoutArgs{DeliveryAddress: "addr"})
	s.Require().ErrorIs(err, domain.ErrEmptyCart)
}

func (s *OrderServiceTestSuite) TestCheckout_NotEnoughBalance() {
	s.mockWallet.EXPECT().LockUser(gomock.Any(), int64(1)).Return(nil)
	s.mockUser.EXPECT().FindUserByID(gomock.Any(), int64(1)).Return(&domain.User{ID: 1}, nil)
	s.mockCart.EXPECT().GetLines(gomock.Any(), int64(1)).Return(cartLines(), nil)
	s.mockWallet.EXPECT().GetUserBalance(gomock.Any(), int64(1)).Return(s.balance(20), nil)
	s.mockOrder.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.Checkout(s.T().Context(), 1, service.CheckoutArgs{DeliveryAddress: "addr"})
	s.Require().ErrorIs(err, domain.ErrNotEnoughBalance)
}

func (s *OrderServiceTestSuite) TestCheckout_OutOfStock() {
	lines := cartLines()
	lines[1].Quantity = 5

	s.mockWallet.EXPECT().LockUser(gomock.Any(), int64(1)).Return(nil)
	s.mockUser.EXPECT().FindUserByID(gomock.Any(), int64(1)).Return(&domain.User{ID: 1}, nil)
	s.mockCart.EXPECT().GetLines(gomock.Any(), int64(1)).Return(lines, nil)

	_, err := s.service.Checkout(s.T().Context(), 1, service.CheckoutArgs{DeliveryAddress: "addr"})
	s.Require().ErrorIs(err, domain.ErrOutOfStock)
}

func (s *OrderServiceTestSuite) TestCheckout_PromoBelowMinimum() {
	promo := &domain.Promo{
		ID: 1, Code: "BIG", Kind: domain.PromoKindFixed, Value: decimal.NewFromInt(10),
		MinOrderAmount: decimal.NewFromInt(100), IsActive: true,
	}
	s.mockWallet.EXPECT().LockUser(gomock.Any(), int64(1)).Return(nil)
	s.mockUser.EXPECT().FindUserByID(gomock.Any(), int64(1)).Return(&domain.User{ID: 1}, nil)
	s.mockCart.EXPECT().GetLines(gomock.Any(), int64(1)).Return(cartLines(), nil)
	s.mockPromo.EXPECT().FindByCode(gomock.Any(), "BIG").Return(promo, nil)

	_, err := s.service.Checkout(s.T().Context(), 1, service.CheckoutArgs{DeliveryAddress: "addr", PromoCode: "BIG"})
	var promoErr *domain.PromoError
	s.Require().ErrorAs(err, &promoErr)
	s.Equal("BIG", promoErr.Code)
}

// TestCancel_RefundsAndRevokesPoints отмена возвращает сумму оплаты, товары и списывает баллы,
// но не больше текущего остатка.
func (s *OrderServiceTestSuite) TestCancel_RefundsAndRevokesPoints() {
	order := &domain.Order{
		ID: 10, UserID: 1, OrderNumber: "GR-260101-ABCDEF", Status: domain.OrderStatusPaid,
		Total: decimal.RequireFromString("30.19"), PointsEarned: 30,
		Items: []domain.OrderItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
	}

	s.mockOrder.EXPECT().FindByIDForUpdate(gomock.Any(), int64(10)).Return(order, nil)
	s.mockWallet.EXPECT().LockUser(gomock.Any(), int64(1)).Return(nil)
	s.mockOrder.EXPECT().UpdateStatus(gomock.Any(), int64(10), domain.OrderStatusCancelled).Return(nil)
	s.mockProduct.EXPECT().IncrementStock(gomock.Any(), int64(1), int32(2)).Return(nil)
	s.mockProduct.EXPECT().IncrementStock(gomock.Any(), int64(2), int32(1)).Return(nil)
	s.mockWallet.EXPECT().FindOrderPayment(gomock.Any(), int64(10)).
		Return(&domain.WalletTransaction{Amount: decimal.RequireFromString("30.19")}, nil)
	s.mockWallet.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error) {
			s.Equal(domain.DirectionDebit, args.Direction)
			s.Equal(domain.WalletReasonOrderRefund, args.Reason)
			s.Equal("30.19", args.Amount.StringFixed(2))
			return &domain.WalletTransaction{ID: 2}, nil
		})
	s.mockLoyalty.EXPECT().GetPoints(gomock.Any(), int64(1)).Return(int64(20), nil)
	s.mockLoyalty.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LoyaltyTransactionCreate) (*domain.LoyaltyTransaction, error) {
			s.Equal(domain.DirectionCredit, args.Direction)
			s.Equal(int64(20), args.Points)
			return &domain.LoyaltyTransaction{ID: 3}, nil
		})
	s.mockDispatcher.EXPECT().OrderStatusWebhook(gomock.Any(), gomock.Any()).Return(nil)
	s.mockDispatcher.EXPECT().PushToUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p service.PushPayload) error {
			s.Equal(int64(1), p.UserID)
			s.Equal("/orders/10", p.Notification.URL)
			return nil
		})

	res, err := s.service.Cancel(s.T().Context(), 1, 10)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, res.Status)
}

func (s *OrderServiceTestSuite) TestCancel_Rejected() {
	cases := []struct {
		name    string
		order   *domain.Order
		wantErr error
	}{
		{
			name:    "foreign order",
			order:   &domain.Order{ID: 10, UserID: 2, Status: domain.OrderStatusPaid},
			wantErr: domain.ErrRecordNotFound,
		},
		{
			name:    "already processing",
			order:   &domain.Order{ID: 10, UserID: 1, Status: domain.OrderStatusProcessing},
			wantErr: domain.ErrInvalidStatusTransition,
		},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.mockOrder.EXPECT().FindByIDForUpdate(gomock.Any(), int64(10)).Return(tc.order, nil)

			_, err := s.service.Cancel(s.T().Context(), 1, 10)
			s.Require().ErrorIs(err, tc.wantErr)
		})
	}
}

func (s *OrderServiceTestSuite) TestUpdateStatus() {
	s.Run("forward transition", func() {
		s.mockOrder.EXPECT().FindByIDForUpdate(gomock.Any(), int64(5)).
			Return(&domain.Order{ID: 5, UserID: 1, Status: domain.OrderStatusProcessing}, nil)
		s.mockOrder.EXPECT().UpdateStatus(gomock.Any(), int64(5), domain.OrderStatusShipped).Return(nil)
		s.mockDispatcher.EXPECT().OrderStatusWebhook(gomock.Any(), gomock.Any()).Return(nil)
		s.mockDispatcher.EXPECT().PushToUser(gomock.Any(), gomock.Any()).Return(nil)

		order, err := s.service.UpdateStatus(s.T().Context(), 5, domain.OrderStatusShipped)
		s.Require().NoError(err)
		s.Equal(domain.OrderStatusShipped, order.Status)
	})

	s.Run("skip is rejected", func() {
		s.mockOrder.EXPECT().FindByIDForUpdate(gomock.Any(), int64(5)).
			Return(&domain.Order{ID: 5, UserID: 1, Status: domain.OrderStatusPaid}, nil)

		_, err := s.service.UpdateStatus(s.T().Context(), 5, domain.OrderStatusDelivered)
		s.Require().ErrorIs(err, domain.ErrInvalidStatusTransition)
	})
}

func (s *OrderServiceTestSuite) TestGetUserOrder_Foreign() {
	s.mockOrder.EXPECT().FindByID(gomock.Any(), int64(3)).Return(&domain.Order{ID: 3, UserID: 8}, nil)

	_, err := s.service.GetUserOrder(s.T().Context(), 1, 3)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}
