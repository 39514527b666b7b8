package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-grocer/internal/domain"
)

type WalletHandler struct {
	svs WalletServicer
}

func NewWalletHandler(svs WalletServicer) *WalletHandler {
	return &WalletHandler{svs: svs}
}

// Index GET RouteGroup + WalletRoute.
func (h *WalletHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.svs.GetBalance(reqCtx, getUserIDFromContext(c))
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.JSON(http.StatusOK, newBalanceResponse(balance))
}

// Transactions GET RouteGroup + WalletTransactionsRoute. Новые транзакции первыми.
func (h *WalletHandler) Transactions(c *gin.Context) {
	var params PageParams
	if !bindQuery(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := h.svs.GetTransactions(reqCtx, getUserIDFromContext(c), params.toPage())
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	response := make([]WalletTransactionResponse, len(transactions))
	for i, transaction := range transactions {
		response[i] = WalletTransactionResponse{
			ID:        transaction.ID,
			OrderID:   transaction.OrderID,
			Direction: transaction.Direction,
			Reason:    transaction.Reason,
			Amount:    transaction.Amount.InexactFloat64(),
			CreatedAt: transaction.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, response)
}

type WalletAdjustParams struct {
	Amount decimal.Decimal         `json:"amount"`
	Reason domain.WalletReasonType `binding:"required,oneof=top_up adjustment" json:"reason"`
}

// Adjust POST RouteGroup + AdminUserWalletRoute. Положительная сумма зачисляется на кошелек, отрицательная
// списывается.
func (h *WalletHandler) Adjust(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var params WalletAdjustParams
	if !bindJSON(c, &params) {
		return
	}
	if params.Amount.IsZero() || (params.Reason == domain.WalletReasonTopUp && params.Amount.IsNegative()) {
		abortInvalidField(c, "Amount", "invalid")
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.svs.Adjust(reqCtx, userID, params.Amount.Round(2), params.Reason)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBalanceResponse(balance))
}
