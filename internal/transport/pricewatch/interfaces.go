package pricewatch

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-grocer/internal/domain"
)

type Servicer interface {
	PendingChanges(ctx context.Context, limit uint) ([]domain.PriceChange, error)
	NotifySubscribers(ctx context.Context, change domain.PriceChange) (int, error)
	MarkNotified(ctx context.Context, ids []int64) error
}
