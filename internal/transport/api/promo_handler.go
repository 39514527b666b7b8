package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
)

type PromoHandler struct {
	svs PromoServicer
}

func NewPromoHandler(svs PromoServicer) *PromoHandler {
	return &PromoHandler{svs: svs}
}

type PromoValidateParams struct {
	Code     string          `binding:"required,max=32" json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Validate POST RouteGroup + PromoValidateRoute. Возвращает размер скидки для суммы subtotal или 422 с причиной.
func (h *PromoHandler) Validate(c *gin.Context) {
	var params PromoValidateParams
	if !bindJSON(c, &params) {
		return
	}
	if params.Subtotal.IsNegative() {
		abortInvalidField(c, "Subtotal", "min")
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	quote, err := h.svs.Validate(ctx, params.Code, params.Subtotal)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": quote.Code, "discount": quote.Discount.InexactFloat64()})
}

// Index GET RouteGroup + AdminPromosRoute.
func (h *PromoHandler) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	promos, err := h.svs.List(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	res := make([]PromoResponse, len(promos))
	for i := range promos {
		res[i] = newPromoResponse(&promos[i])
	}
	c.JSON(http.StatusOK, res)
}

type PromoCreateParams struct {
	Code           string               `binding:"required,alphanum,min=3,max=32"  json:"code"`
	Kind           domain.PromoKindType `binding:"required,oneof=percent fixed"    json:"kind"`
	Value          decimal.Decimal      `json:"value"`
	MinOrderAmount decimal.Decimal      `json:"min_order_amount"`
	MaxUses        int32                `binding:"min=0"                           json:"max_uses"`
	StartsAt       *time.Time           `json:"starts_at"`
	ExpiresAt      *time.Time           `json:"expires_at"`
}

// Create POST RouteGroup + AdminPromosRoute. Значение и окно действия проверяет сервис.
func (h *PromoHandler) Create(c *gin.Context) {
	var params PromoCreateParams
	if !bindJSON(c, &params) {
		return
	}
	if params.MinOrderAmount.IsNegative() {
		abortInvalidField(c, "MinOrderAmount", "min")
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	promo, err := h.svs.Create(ctx, repoargs.PromoCreate{
		Code:           params.Code,
		Kind:           params.Kind,
		Value:          params.Value,
		MinOrderAmount: params.MinOrderAmount,
		MaxUses:        params.MaxUses,
		StartsAt:       params.StartsAt,
		ExpiresAt:      params.ExpiresAt,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPromoResponse(promo))
}

type PromoActiveParams struct {
	Active *bool `binding:"required" json:"active"`
}

// SetActive PATCH RouteGroup + AdminPromoRoute.
func (h *PromoHandler) SetActive(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var params PromoActiveParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	promo, err := h.svs.SetActive(ctx, id, *params.Active)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPromoResponse(promo))
}
