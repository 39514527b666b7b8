package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/internal/transport/api/middlewares"
)

const (
	defaultPerPage uint = 20
	maxPerPage     uint = 100
)

var errInvalidID = errors.New("invalid id")

func getUserIDFromContext(c *gin.Context) int64 {
	userID, exist := c.Get(middlewares.CurrentUserIDKey)
	if !exist {
		return 0
	}
	id, ok := userID.(int64)
	if !ok {
		return 0
	}
	return id
}

// idParam разбирает положительный числовой параметр пути. При ошибке запрос прерывается с 404.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.AbortWithError(http.StatusNotFound, errInvalidID).SetType(gin.ErrorTypePublic)
		return 0, false
	}
	return id, true
}

type PageParams struct {
	Page    uint `binding:"omitempty,min=1"         form:"page"`
	PerPage uint `binding:"omitempty,min=1,max=100" form:"per_page"`
}

func (p PageParams) toPage() repoargs.Page {
	perPage := p.PerPage
	if perPage == 0 {
		perPage = defaultPerPage
	}
	return repoargs.NewPage(p.Page, min(perPage, maxPerPage))
}

// bindJSON разбирает тело запроса. Ошибки валидации отдаются с 422 и перечнем полей, ошибки разбора с 400.
func bindJSON(c *gin.Context, dest any) bool {
	return handleBindErr(c, c.ShouldBindJSON(dest))
}

func bindQuery(c *gin.Context, dest any) bool {
	return handleBindErr(c, c.ShouldBindQuery(dest))
}

func handleBindErr(c *gin.Context, bindErr error) bool {
	if bindErr == nil {
		return true
	}
	var valErrs validator.ValidationErrors
	if errors.As(bindErr, &valErrs) {
		fields := make(map[string]string, len(valErrs))
		for _, fe := range valErrs {
			fields[fe.Field()] = fe.Tag()
		}
		_ = c.Error(bindErr).SetType(gin.ErrorTypeBind)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
		return false
	}
	_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
	return false
}

// abortWithServiceError отвечает на ошибку сервисного слоя. Известные доменные ошибки отдаются клиенту
// публично с соответствующим статусом, остальные - как 500.
func abortWithServiceError(c *gin.Context, err error) {
	var promoErr *domain.PromoError
	if errors.As(err, &promoErr) {
		_ = c.AbortWithError(http.StatusUnprocessableEntity, promoErr).SetType(gin.ErrorTypePublic)
		return
	}

	for _, known := range []struct {
		err    error
		status int
	}{
		{domain.ErrRecordNotFound, http.StatusNotFound},
		{domain.ErrDuplicateKey, http.StatusConflict},
		{domain.ErrInvalidStatusTransition, http.StatusConflict},
		{domain.ErrCampaignAlreadySent, http.StatusConflict},
		{domain.ErrNotEnoughBalance, http.StatusPaymentRequired},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrEmptyCart, http.StatusUnprocessableEntity},
		{domain.ErrProductUnavailable, http.StatusUnprocessableEntity},
		{domain.ErrOutOfStock, http.StatusUnprocessableEntity},
		{domain.ErrNotEnoughPoints, http.StatusUnprocessableEntity},
		{domain.ErrRedeemBelowMinimum, http.StatusUnprocessableEntity},
		{domain.ErrUnknownReferralCode, http.StatusUnprocessableEntity},
		{domain.ErrConstraint, http.StatusUnprocessableEntity},
	} {
		if errors.Is(err, known.err) {
			_ = c.AbortWithError(known.status, known.err).SetType(gin.ErrorTypePublic)
			_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			return
		}
	}
	_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
}

// abortInvalidField ответ 422 в том же формате, что и ошибки валидатора.
func abortInvalidField(c *gin.Context, field, tag string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"error":  "validation failed",
		"fields": map[string]string{field: tag},
	})
}
