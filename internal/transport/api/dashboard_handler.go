package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svs DashboardServicer
}

func NewDashboardHandler(svs DashboardServicer) *DashboardHandler {
	return &DashboardHandler{svs: svs}
}

// Show GET RouteGroup + AdminDashboardRoute.
func (h *DashboardHandler) Show(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	stats, err := h.svs.Stats(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users_count":      stats.UsersCount,
		"orders_by_status": stats.OrdersByStatus,
		"revenue":          stats.Revenue.InexactFloat64(),
		"low_stock":        newProductsResponse(stats.LowStock),
	})
}
