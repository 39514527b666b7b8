package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	referralCodeLength = 8
	orderNumberSuffix  = 6
)

// newReferralCode возвращает 8 символов hex в верхнем регистре, взятых из случайного UUID.
func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:referralCodeLength])
}

// newOrderNumber формирует человекочитаемый номер заказа вида GR-260102-1A2B3C.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:orderNumberSuffix])
	return "GR-" + now.UTC().Format("060102") + "-" + suffix
}

// roundMoney округляет денежную сумму до копеек, половина округляется вверх.
func roundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
