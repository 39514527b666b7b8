package jobs

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/fsdevblog/groph-grocer/internal/service"
	"github.com/fsdevblog/groph-grocer/internal/transport/messenger"
)

// Enqueuer часть asynq.Client, используемая диспетчером.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, p service.OrderConfirmationPayload) error
	SendPriceDrop(ctx context.Context, p service.PriceDropPayload) error
	SendCampaign(ctx context.Context, p service.CampaignEmailPayload) error
}

type Pusher interface {
	SendToUser(ctx context.Context, userID int64, n service.Notification) (int, error)
}

type Messenger interface {
	Enabled() bool
	Send(ctx context.Context, msg messenger.Message) error
}
