package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/internal/service"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type CheckoutParams struct {
	DeliveryAddress string `binding:"required,max=500"          json:"delivery_address"`
	PromoCode       string `binding:"omitempty,alphanum,max=32" json:"promo_code"`
}

// Create POST RouteGroup + OrdersRoute. Оформляет заказ из корзины с оплатой с кошелька.
func (o *OrdersHandler) Create(c *gin.Context) {
	var params CheckoutParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.Checkout(reqCtx, getUserIDFromContext(c), service.CheckoutArgs{
		DeliveryAddress: params.DeliveryAddress,
		PromoCode:       params.PromoCode,
	})
	if err != nil {
		// остаток мог измениться, пока пользователь оформлял заказ
		if errors.Is(err, domain.ErrOutOfStock) {
			_ = c.AbortWithError(http.StatusConflict, domain.ErrOutOfStock).SetType(gin.ErrorTypePublic)
			_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			return
		}
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newOrderResponse(order))
}

// Index GET RouteGroup + OrdersRoute.
func (o *OrdersHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := o.orderSvs.GetByUserID(reqCtx, getUserIDFromContext(c))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	if len(orders) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, newOrdersResponse(orders))
}

// Show GET RouteGroup + OrderRoute. Чужой заказ отдается как несуществующий.
func (o *OrdersHandler) Show(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.GetUserOrder(reqCtx, getUserIDFromContext(c), orderID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}

// Cancel POST RouteGroup + OrderCancelRoute. Отменить можно только оплаченный, еще не собранный заказ.
func (o *OrdersHandler) Cancel(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.Cancel(reqCtx, getUserIDFromContext(c), orderID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}

type AdminOrdersParams struct {
	PageParams
	Status domain.OrderStatusType `binding:"omitempty,oneof=PAID PROCESSING SHIPPED DELIVERED CANCELLED" form:"status"`
}

// AdminIndex GET RouteGroup + AdminOrdersRoute.
func (o *OrdersHandler) AdminIndex(c *gin.Context) {
	var params AdminOrdersParams
	if !bindQuery(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := o.orderSvs.List(reqCtx, repoargs.OrderFilter{Status: params.Status, Page: params.toPage()})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrdersResponse(orders))
}

type OrderStatusParams struct {
	Status domain.OrderStatusType `binding:"required,oneof=PAID PROCESSING SHIPPED DELIVERED CANCELLED" json:"status"`
}

// UpdateStatus PATCH RouteGroup + AdminOrderStatusRoute.
func (o *OrdersHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var params OrderStatusParams
	if !bindJSON(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.UpdateStatus(reqCtx, orderID, params.Status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}
