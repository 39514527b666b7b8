package api

import (
	"encoding/json"
	"net/http"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/service"
)

func (s *HandlersTestSuite) TestCartSetItem() {
	var userID int64 = 4
	token := s.token(userID, domain.RoleCustomer)

	milk := domain.Product{ID: 7, Name: "Milk", Price: decimal.RequireFromString("1.25"), Stock: 10, IsActive: true}
	cart := &service.Cart{
		Lines:      []domain.CartLine{{Product: milk, Quantity: 4}},
		Subtotal:   decimal.RequireFromString("5.00"),
		ItemsCount: 4,
	}

	s.mockCart.EXPECT().SetQuantity(gomock.Any(), userID, int64(7), int32(4)).Return(cart, nil).Times(1)
	s.mockCart.EXPECT().
		SetQuantity(gomock.Any(), userID, int64(7), int32(50)).
		Return(nil, domain.ErrOutOfStock).Times(1)
	s.mockCart.EXPECT().
		SetQuantity(gomock.Any(), userID, int64(8), int32(1)).
		Return(nil, domain.ErrProductUnavailable).Times(1)

	four, fifty, one, tooMany := int32(4), int32(50), int32(1), int32(1001)

	cases := []struct {
		name       string
		url        string
		body       any
		wantStatus int
	}{
		{name: "all ok", url: "/api/user/cart/items/7", body: CartQuantityParams{Quantity: &four}, wantStatus: http.StatusOK},
		{
			name:       "over stock",
			url:        "/api/user/cart/items/7",
			body:       CartQuantityParams{Quantity: &fifty},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "inactive product",
			url:        "/api/user/cart/items/8",
			body:       CartQuantityParams{Quantity: &one},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "quantity missing",
			url:        "/api/user/cart/items/7",
			body:       map[string]any{},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "quantity over limit",
			url:        "/api/user/cart/items/7",
			body:       CartQuantityParams{Quantity: &tooMany},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{name: "bad product id", url: "/api/user/cart/items/-1", body: CartQuantityParams{Quantity: &one}, wantStatus: http.StatusNotFound},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, _ := s.do(requestCase{method: http.MethodPut, url: t.url, body: t.body, token: token})
			s.Equal(t.wantStatus, status)
		})
	}
}

func (s *HandlersTestSuite) TestCartShow() {
	var userID int64 = 4
	milk := domain.Product{ID: 7, Name: "Milk", Price: decimal.RequireFromString("1.25")}
	s.mockCart.EXPECT().Get(gomock.Any(), userID).Return(&service.Cart{
		Lines:      []domain.CartLine{{Product: milk, Quantity: 3}},
		Subtotal:   decimal.RequireFromString("3.75"),
		ItemsCount: 3,
	}, nil)

	status, body := s.do(requestCase{
		method: http.MethodGet,
		url:    RouteGroup + CartRoute,
		token:  s.token(userID, domain.RoleCustomer),
	})
	s.Require().Equal(http.StatusOK, status)

	var res CartResponse
	s.Require().NoError(json.Unmarshal(body, &res))
	s.Require().Len(res.Lines, 1)
	s.InDelta(3.75, res.Lines[0].Total, 0.0001)
	s.InDelta(3.75, res.Subtotal, 0.0001)
	s.Equal(int32(3), res.ItemsCount)
}

func (s *HandlersTestSuite) TestCartMerge() {
	var userID int64 = 4

	s.mockCart.EXPECT().
		Merge(gomock.Any(), userID, []service.CartItemArgs{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: maxCartQuantity},
		}).
		Return(&service.Cart{Subtotal: decimal.Zero}, nil).Times(1)

	status, _ := s.do(requestCase{
		method: http.MethodPost,
		url:    RouteGroup + CartMergeRoute,
		body: CartMergeParams{Items: []CartMergeItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: maxCartQuantity + 5},
		}},
		token: s.token(userID, domain.RoleCustomer),
	})
	s.Equal(http.StatusOK, status)

	status, _ = s.do(requestCase{
		method: http.MethodPost,
		url:    RouteGroup + CartMergeRoute,
		body:   CartMergeParams{Items: []CartMergeItem{{ProductID: 0, Quantity: 1}}},
		token:  s.token(userID, domain.RoleCustomer),
	})
	s.Equal(http.StatusUnprocessableEntity, status)
}

func (s *HandlersTestSuite) TestCartClear() {
	s.mockCart.EXPECT().Clear(gomock.Any(), int64(4)).Return(nil).Times(1)

	status, _ := s.do(requestCase{
		method: http.MethodDelete,
		url:    RouteGroup + CartRoute,
		token:  s.token(4, domain.RoleCustomer),
	})
	s.Equal(http.StatusNoContent, status)
}
