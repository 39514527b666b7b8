package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type LoyaltyHandler struct {
	svs LoyaltyServicer
}

func NewLoyaltyHandler(svs LoyaltyServicer) *LoyaltyHandler {
	return &LoyaltyHandler{svs: svs}
}

// Show GET RouteGroup + LoyaltyRoute.
func (h *LoyaltyHandler) Show(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	summary, err := h.svs.Summary(ctx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"points":        summary.Points,
		"referral_code": summary.ReferralCode,
		"invited":       summary.Invited,
		"rewarded":      summary.Rewarded,
		"earned":        summary.Earned.InexactFloat64(),
	})
}

type RedeemParams struct {
	Points int64 `binding:"required,min=1" json:"points"`
}

// Redeem POST RouteGroup + LoyaltyRedeemRoute. Обменивает баллы на деньги кошелька.
func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	var params RedeemParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, err := h.svs.Redeem(ctx, getUserIDFromContext(c), params.Points)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": result.Points, "amount": result.Amount.InexactFloat64()})
}
