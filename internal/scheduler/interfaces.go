package scheduler

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import "context"

type CampaignSender interface {
	SendDue(ctx context.Context) (int, error)
}
