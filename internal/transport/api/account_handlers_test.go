package api

import (
	"context"
	"net/http"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/internal/service"
)

func (s *HandlersTestSuite) TestPromoValidate() {
	token := s.token(1, domain.RoleCustomer)

	s.mockPromo.EXPECT().
		Validate(gomock.Any(), "SALE10", gomock.Any()).
		DoAndReturn(func(_ context.Context, code string, subtotal decimal.Decimal) (*service.PromoQuote, error) {
			s.True(subtotal.Equal(decimal.NewFromInt(50)))
			return &service.PromoQuote{Code: code, Discount: decimal.NewFromInt(5)}, nil
		}).Times(1)
	s.mockPromo.EXPECT().
		Validate(gomock.Any(), "BIGONLY", gomock.Any()).
		Return(nil, domain.NewPromoError("BIGONLY", "order amount is below promo minimum")).Times(1)

	status, body := s.do(requestCase{
		method: http.MethodPost,
		url:    RouteGroup + PromoValidateRoute,
		body:   map[string]any{"code": "SALE10", "subtotal": 50},
		token:  token,
	})
	s.Equal(http.StatusOK, status)
	s.JSONEq(`{"code":"SALE10","discount":5}`, string(body))

	status, body = s.do(requestCase{
		method: http.MethodPost,
		url:    RouteGroup + PromoValidateRoute,
		body:   map[string]any{"code": "BIGONLY", "subtotal": 10},
		token:  token,
	})
	s.Equal(http.StatusUnprocessableEntity, status)
	s.Contains(string(body), "order amount is below promo minimum")

	status, _ = s.do(requestCase{
		method: http.MethodPost,
		url:    RouteGroup + PromoValidateRoute,
		body:   map[string]any{"code": "SALE10", "subtotal": -1},
		token:  token,
	})
	s.Equal(http.StatusUnprocessableEntity, status)
}

func (s *HandlersTestSuite) TestWalletAdjust() {
	adminToken := s.token(100, domain.RoleAdmin)

	s.mockWallet.EXPECT().
		Adjust(gomock.Any(), int64(3), gomock.Any(), domain.WalletReasonTopUp).
		DoAndReturn(func(
			_ context.Context,
			_ int64,
			amount decimal.Decimal,
			_ domain.WalletReasonType,
		) (*service.WalletBalance, error) {
			s.Equal("15.56", amount.String())
			return &service.WalletBalance{Current: amount, Spent: decimal.Zero}, nil
		}).Times(1)
	s.mockWallet.EXPECT().
		Adjust(gomock.Any(), int64(3), gomock.Any(), domain.WalletReasonAdjustment).
		Return(nil, domain.ErrNotEnoughBalance).Times(1)

	cases := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{
			name:       "top up rounds to cents",
			body:       map[string]any{"amount": "15.555", "reason": "top_up"},
			wantStatus: http.StatusOK,
		}, {
			name:       "negative top up",
			body:       map[string]any{"amount": "-1", "reason": "top_up"},
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "debit over balance",
			body:       map[string]any{"amount": "-100", "reason": "adjustment"},
			wantStatus: http.StatusPaymentRequired,
		}, {
			name:       "order reasons are not allowed",
			body:       map[string]any{"amount": "10", "reason": "order_refund"},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, _ := s.do(requestCase{
				method: http.MethodPost,
				url:    "/api/admin/users/3/wallet",
				body:   t.body,
				token:  adminToken,
			})
			s.Equal(t.wantStatus, status)
		})
	}
}

func (s *HandlersTestSuite) TestLoyaltyRedeem() {
	var userID int64 = 2
	token := s.token(userID, domain.RoleCustomer)

	s.mockLoyalty.EXPECT().
		Redeem(gomock.Any(), userID, int64(500)).
		Return(&service.RedeemResult{Points: 500, Amount: decimal.NewFromInt(5)}, nil).Times(1)
	s.mockLoyalty.EXPECT().
		Redeem(gomock.Any(), userID, int64(10)).
		Return(nil, domain.ErrRedeemBelowMinimum).Times(1)
	s.mockLoyalty.EXPECT().
		Redeem(gomock.Any(), userID, int64(100000)).
		Return(nil, domain.ErrNotEnoughPoints).Times(1)

	cases := []struct {
		name       string
		points     int64
		wantStatus int
	}{
		{name: "all ok", points: 500, wantStatus: http.StatusOK},
		{name: "below minimum", points: 10, wantStatus: http.StatusUnprocessableEntity},
		{name: "not enough points", points: 100000, wantStatus: http.StatusUnprocessableEntity},
		{name: "zero points", points: 0, wantStatus: http.StatusUnprocessableEntity},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, _ := s.do(requestCase{
				method: http.MethodPost,
				url:    RouteGroup + LoyaltyRedeemRoute,
				body:   RedeemParams{Points: t.points},
				token:  token,
			})
			s.Equal(t.wantStatus, status)
		})
	}
}

func (s *HandlersTestSuite) TestPushSubscribe() {
	var userID int64 = 2
	token := s.token(userID, domain.RoleCustomer)
	endpoint := "https://push.example.com/send/abc"

	s.mockPush.EXPECT().
		Subscribe(gomock.Any(), repoargs.PushSubscriptionCreate{
			UserID:   userID,
			Endpoint: endpoint,
			P256dh:   "p256dh-key",
			Auth:     "auth-secret",
		}).
		Return(&domain.PushSubscription{ID: 1, UserID: userID, Endpoint: endpoint}, nil).Times(1)
	s.mockPush.EXPECT().Unsubscribe(gomock.Any(), userID, endpoint).Return(nil).Times(1)

	status, _ := s.do(requestCase{
		method: http.MethodPost,
		url:    RouteGroup + PushSubscriptionsRoute,
		body: PushSubscribeParams{
			Endpoint: endpoint,
			Keys:     PushKeysParams{P256dh: "p256dh-key", Auth: "auth-secret"},
		},
		token: token,
	})
	s.Equal(http.StatusCreated, status)

	status, _ = s.do(requestCase{
		method: http.MethodPost,
		url:    RouteGroup + PushSubscriptionsRoute,
		body:   PushSubscribeParams{Endpoint: "not a url"},
		token:  token,
	})
	s.Equal(http.StatusUnprocessableEntity, status)

	status, _ = s.do(requestCase{
		method: http.MethodDelete,
		url:    RouteGroup + PushSubscriptionsRoute,
		body:   PushUnsubscribeParams{Endpoint: endpoint},
		token:  token,
	})
	s.Equal(http.StatusNoContent, status)
}
