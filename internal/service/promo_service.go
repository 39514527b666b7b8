package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type PromoService struct {
	promoRepo PromoRepository
	now       func() time.Time
}

func NewPromoService(u uow.UOW) (*PromoService, error) {
	promoRepo, err := uow.GetRepositoryAs[PromoRepository](u, uow.RepositoryName(repoargs.PromoRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &PromoService{promoRepo: promoRepo, now: time.Now}, nil
}

type PromoQuote struct {
	Code     string
	Discount decimal.Decimal
}

// Validate проверяет промокод для суммы заказа subtotal и возвращает размер скидки.
// Ошибка применения возвращается как *domain.PromoError.
func (s *PromoService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoQuote, error) {
	promo, err := findPromo(ctx, s.promoRepo, code)
	if err != nil {
		return nil, err
	}
	discount, err := CalculateDiscount(promo, subtotal, s.now())
	if err != nil {
		return nil, err
	}
	return &PromoQuote{Code: promo.Code, Discount: discount}, nil
}

func (s *PromoService) Create(ctx context.Context, args repoargs.PromoCreate) (*domain.Promo, error) {
	if !args.Value.IsPositive() {
		return nil, domain.NewPromoError(args.Code, "value must be positive")
	}
	if args.Kind == domain.PromoKindPercent && args.Value.GreaterThan(hundred) {
		return nil, domain.NewPromoError(args.Code, "percent value must be within 1..100")
	}
	if args.StartsAt != nil && args.ExpiresAt != nil && !args.ExpiresAt.After(*args.StartsAt) {
		return nil, domain.NewPromoError(args.Code, "expires_at must be after starts_at")
	}
	args.Code = strings.ToUpper(strings.TrimSpace(args.Code))
	promo, err := s.promoRepo.Create(ctx, args)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return promo, nil
}

func (s *PromoService) List(ctx context.Context) ([]domain.Promo, error) {
	promos, err := s.promoRepo.List(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return promos, nil
}

func (s *PromoService) SetActive(ctx context.Context, id int64, active bool) (*domain.Promo, error) {
	promo, err := s.promoRepo.SetActive(ctx, id, active)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return promo, nil
}

// CalculateDiscount считает скидку по промокоду для суммы subtotal на момент now.
//
// Скидка в процентах округляется до копеек, половина вверх. Скидка никогда не превышает subtotal.
// Если промокод не может быть применен, возвращается *domain.PromoError с причиной.
func CalculateDiscount(promo *domain.Promo, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	switch {
	case !promo.IsActive:
		return decimal.Zero, domain.NewPromoError(promo.Code, "promo code is not active")
	case promo.StartsAt != nil && now.Before(*promo.StartsAt):
		return decimal.Zero, domain.NewPromoError(promo.Code, "promo code is not active yet")
	case promo.ExpiresAt != nil && !now.Before(*promo.ExpiresAt):
		return decimal.Zero, domain.NewPromoError(promo.Code, "promo code has expired")
	case promo.MaxUses > 0 && promo.UsedCount >= promo.MaxUses:
		return decimal.Zero, domain.NewPromoError(promo.Code, "promo code usage limit reached")
	case subtotal.LessThan(promo.MinOrderAmount):
		return decimal.Zero, domain.NewPromoError(promo.Code,
			fmt.Sprintf("minimum order amount is %s", promo.MinOrderAmount.StringFixed(2)))
	}

	var discount decimal.Decimal
	switch promo.Kind {
	case domain.PromoKindPercent:
		discount = roundMoney(subtotal.Mul(promo.Value).Div(hundred))
	case domain.PromoKindFixed:
		discount = promo.Value
	default:
		return decimal.Zero, domain.NewPromoError(promo.Code, "unknown promo kind")
	}
	return decimal.Min(discount, subtotal), nil
}

func findPromo(ctx context.Context, promoRepo PromoRepository, code string) (*domain.Promo, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	promo, err := promoRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.NewPromoError(code, "promo code not found")
		}
		return nil, err //nolint:wrapcheck
	}
	return promo, nil
}
