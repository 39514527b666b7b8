package repoargs

import (
	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/shopspring/decimal"
)

type WalletTransactionCreate struct {
	UserID    int64
	OrderID   *int64
	Direction domain.DirectionType
	Reason    domain.WalletReasonType
	Amount    decimal.Decimal
}

type BalanceAggregation struct {
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
}

type LoyaltyTransactionCreate struct {
	UserID    int64
	OrderID   *int64
	Direction domain.DirectionType
	Points    int64
}
