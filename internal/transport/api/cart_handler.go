package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-grocer/internal/service"
)

const maxCartQuantity = 1000

type CartHandler struct {
	svs CartServicer
}

func NewCartHandler(svs CartServicer) *CartHandler {
	return &CartHandler{svs: svs}
}

// Show GET RouteGroup + CartRoute.
func (h *CartHandler) Show(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	cart, err := h.svs.Get(ctx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

type CartQuantityParams struct {
	Quantity *int32 `binding:"required,min=0,max=1000" json:"quantity"`
}

// SetItem PUT RouteGroup + CartItemRoute. Количество 0 удаляет позицию.
func (h *CartHandler) SetItem(c *gin.Context) {
	productID, ok := idParam(c, "product_id")
	if !ok {
		return
	}
	var params CartQuantityParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	cart, err := h.svs.SetQuantity(ctx, getUserIDFromContext(c), productID, *params.Quantity)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

// RemoveItem DELETE RouteGroup + CartItemRoute.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := idParam(c, "product_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	cart, err := h.svs.Remove(ctx, getUserIDFromContext(c), productID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

// Clear DELETE RouteGroup + CartRoute.
func (h *CartHandler) Clear(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.svs.Clear(ctx, getUserIDFromContext(c)); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

type CartMergeItem struct {
	ProductID int64 `binding:"required,min=1" json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type CartMergeParams struct {
	Items []CartMergeItem `binding:"max=200,dive" json:"items"`
}

// Merge POST RouteGroup + CartMergeRoute. Переносит гостевую корзину клиента после входа.
// Позиции с неположительным количеством пропускаются сервисом.
func (h *CartHandler) Merge(c *gin.Context) {
	var params CartMergeParams
	if !bindJSON(c, &params) {
		return
	}

	items := make([]service.CartItemArgs, len(params.Items))
	for i, item := range params.Items {
		items[i] = service.CartItemArgs{ProductID: item.ProductID, Quantity: min(item.Quantity, maxCartQuantity)}
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	cart, err := h.svs.Merge(ctx, getUserIDFromContext(c), items)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}
