package repoargs

import (
	"time"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderItemCreate struct {
	ProductID   int64
	ProductName string
	Price       decimal.Decimal
	Quantity    int32
}

type OrderCreate struct {
	UserID          int64
	OrderNumber     string
	Status          domain.OrderStatusType
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Total           decimal.Decimal
	PromoCode       string
	DeliveryAddress string
	PointsEarned    int64
	Items           []OrderItemCreate
}

type OrderFilter struct {
	Status domain.OrderStatusType
	Page   Page
}

type OrderStats struct {
	ByStatus map[domain.OrderStatusType]int64
	Revenue  decimal.Decimal
}

type PromoCreate struct {
	Code           string
	Kind           domain.PromoKindType
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxUses        int32
	StartsAt       *time.Time
	ExpiresAt      *time.Time
}

type ReferralStats struct {
	Invited  int64
	Rewarded int64
	Earned   decimal.Decimal
}
