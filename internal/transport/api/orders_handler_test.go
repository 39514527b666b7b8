package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/internal/service"
)

func (s *HandlersTestSuite) TestCheckout() {
	var userID int64 = 1
	token := s.token(userID, domain.RoleCustomer)

	order := &domain.Order{
		ID:          10,
		UserID:      userID,
		OrderNumber: "GR-0001",
		Status:      domain.OrderStatusPaid,
		Subtotal:    decimal.RequireFromString("25.50"),
		DeliveryFee: decimal.RequireFromString("4.99"),
		Total:       decimal.RequireFromString("30.49"),
		Items: []domain.OrderItem{
			{ProductID: 5, ProductName: "Milk", Price: decimal.RequireFromString("2.55"), Quantity: 10},
		},
	}

	s.mockOrder.EXPECT().
		Checkout(gomock.Any(), userID, service.CheckoutArgs{DeliveryAddress: "Main st. 1"}).
		Return(order, nil).Times(1)
	s.mockOrder.EXPECT().
		Checkout(gomock.Any(), userID, service.CheckoutArgs{DeliveryAddress: "Out of stock st."}).
		Return(nil, fmt.Errorf("product 5: %w", domain.ErrOutOfStock)).Times(1)
	s.mockOrder.EXPECT().
		Checkout(gomock.Any(), userID, service.CheckoutArgs{DeliveryAddress: "Empty cart st."}).
		Return(nil, domain.ErrEmptyCart).Times(1)
	s.mockOrder.EXPECT().
		Checkout(gomock.Any(), userID, service.CheckoutArgs{DeliveryAddress: "Poor st."}).
		Return(nil, fmt.Errorf("paying order: %w", domain.ErrNotEnoughBalance)).Times(1)
	s.mockOrder.EXPECT().
		Checkout(gomock.Any(), userID, service.CheckoutArgs{DeliveryAddress: "Promo st.", PromoCode: "EXPIRED"}).
		Return(nil, domain.NewPromoError("EXPIRED", "promo code has expired")).Times(1)

	cases := []struct {
		name       string
		body       CheckoutParams
		token      string
		wantStatus int
		wantError  string
	}{
		{
			name:       "all ok",
			body:       CheckoutParams{DeliveryAddress: "Main st. 1"},
			token:      token,
			wantStatus: http.StatusCreated,
		}, {
			name:       "out of stock",
			body:       CheckoutParams{DeliveryAddress: "Out of stock st."},
			token:      token,
			wantStatus: http.StatusConflict,
			wantError:  domain.ErrOutOfStock.Error(),
		}, {
			name:       "empty cart",
			body:       CheckoutParams{DeliveryAddress: "Empty cart st."},
			token:      token,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  domain.ErrEmptyCart.Error(),
		}, {
			name:       "not enough balance",
			body:       CheckoutParams{DeliveryAddress: "Poor st."},
			token:      token,
			wantStatus: http.StatusPaymentRequired,
			wantError:  domain.ErrNotEnoughBalance.Error(),
		}, {
			name:       "expired promo",
			body:       CheckoutParams{DeliveryAddress: "Promo st.", PromoCode: "EXPIRED"},
			token:      token,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "promo code has expired",
		}, {
			name:       "missing address",
			body:       CheckoutParams{},
			token:      token,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "DeliveryAddress",
		}, {
			name:       "not authorized",
			body:       CheckoutParams{DeliveryAddress: "Main st. 1"},
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, body := s.do(requestCase{
				method: http.MethodPost,
				url:    RouteGroup + OrdersRoute,
				body:   t.body,
				token:  t.token,
			})
			s.Equal(t.wantStatus, status)
			if t.wantError != "" {
				s.Contains(string(body), t.wantError)
			}
		})
	}
}

func (s *HandlersTestSuite) TestOrdersIndex() {
	var userID int64 = 1
	var noOrdersUserID int64 = 2

	orders := []domain.Order{
		{
			ID:          1,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
			UserID:      userID,
			OrderNumber: "GR-0001",
			Status:      domain.OrderStatusPaid,
			Total:       decimal.NewFromInt(10),
		},
	}
	s.mockOrder.EXPECT().GetByUserID(gomock.Any(), userID).Return(orders, nil)
	s.mockOrder.EXPECT().GetByUserID(gomock.Any(), noOrdersUserID).Return([]domain.Order{}, nil)

	cases := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{
			name:       "all ok",
			token:      s.token(userID, domain.RoleCustomer),
			wantStatus: http.StatusOK,
		}, {
			name:       "not authorized",
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "no orders",
			token:      s.token(noOrdersUserID, domain.RoleCustomer),
			wantStatus: http.StatusNoContent,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, _ := s.do(requestCase{method: http.MethodGet, url: RouteGroup + OrdersRoute, token: t.token})
			s.Equal(t.wantStatus, status)
		})
	}
}

func (s *HandlersTestSuite) TestOrderShowAndCancel() {
	var userID int64 = 1
	token := s.token(userID, domain.RoleCustomer)

	s.mockOrder.EXPECT().GetUserOrder(gomock.Any(), userID, int64(99)).Return(nil, domain.ErrRecordNotFound)
	s.mockOrder.EXPECT().
		Cancel(gomock.Any(), userID, int64(5)).
		Return(nil, fmt.Errorf("order 5: %w", domain.ErrInvalidStatusTransition))
	s.mockOrder.EXPECT().
		Cancel(gomock.Any(), userID, int64(6)).
		Return(&domain.Order{ID: 6, Status: domain.OrderStatusCancelled}, nil)

	cases := []struct {
		name       string
		method     string
		url        string
		wantStatus int
	}{
		{name: "foreign order", method: http.MethodGet, url: "/api/user/orders/99", wantStatus: http.StatusNotFound},
		{name: "bad id", method: http.MethodGet, url: "/api/user/orders/abc", wantStatus: http.StatusNotFound},
		{name: "shipped order", method: http.MethodPost, url: "/api/user/orders/5/cancel", wantStatus: http.StatusConflict},
		{name: "cancelled", method: http.MethodPost, url: "/api/user/orders/6/cancel", wantStatus: http.StatusOK},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, _ := s.do(requestCase{method: t.method, url: t.url, token: token})
			s.Equal(t.wantStatus, status)
		})
	}
}

func (s *HandlersTestSuite) TestAdminOrders() {
	token := s.token(100, domain.RoleAdmin)

	s.mockOrder.EXPECT().
		List(gomock.Any(), repoargs.OrderFilter{Status: domain.OrderStatusPaid, Page: repoargs.NewPage(2, 20)}).
		Return([]domain.Order{{ID: 1, Status: domain.OrderStatusPaid}}, nil)
	s.mockOrder.EXPECT().
		UpdateStatus(gomock.Any(), int64(1), domain.OrderStatusShipped).
		Return(&domain.Order{ID: 1, Status: domain.OrderStatusShipped}, nil)

	status, _ := s.do(requestCase{method: http.MethodGet, url: "/api/admin/orders?status=PAID&page=2", token: token})
	s.Equal(http.StatusOK, status)

	status, _ = s.do(requestCase{method: http.MethodGet, url: "/api/admin/orders?status=LOST", token: token})
	s.Equal(http.StatusUnprocessableEntity, status)

	status, body := s.do(requestCase{
		method: http.MethodPatch,
		url:    "/api/admin/orders/1/status",
		body:   OrderStatusParams{Status: domain.OrderStatusShipped},
		token:  token,
	})
	s.Equal(http.StatusOK, status)
	s.Contains(string(body), `"status":"SHIPPED"`)
}
