package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type WishlistHandler struct {
	svs WishlistServicer
}

func NewWishlistHandler(svs WishlistServicer) *WishlistHandler {
	return &WishlistHandler{svs: svs}
}

// Index GET RouteGroup + WishlistRoute.
func (h *WishlistHandler) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := h.svs.List(ctx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProductsResponse(products))
}

// Add POST RouteGroup + WishlistItemRoute. Повторное добавление не является ошибкой.
func (h *WishlistHandler) Add(c *gin.Context) {
	productID, ok := idParam(c, "product_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.svs.Add(ctx, getUserIDFromContext(c), productID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}

// Remove DELETE RouteGroup + WishlistItemRoute.
func (h *WishlistHandler) Remove(c *gin.Context) {
	productID, ok := idParam(c, "product_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.svs.Remove(ctx, getUserIDFromContext(c), productID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}
