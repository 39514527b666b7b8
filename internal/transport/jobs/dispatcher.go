package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-grocer/internal/service"
)

// Dispatcher ставит задачи сервисного слоя в очередь asynq.
type Dispatcher struct {
	client Enqueuer
	l      *logrus.Entry
}

func NewDispatcher(client Enqueuer, l *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		l:      l.WithFields(logrus.Fields{"component": "jobs", "module": "dispatcher"}),
	}
}

func (d *Dispatcher) OrderConfirmation(ctx context.Context, payload service.OrderConfirmationPayload) error {
	return d.enqueue(ctx, TypeOrderConfirmation, payload, QueueCritical)
}

// PriceDrop ставит письмо о снижении цены с id, производным от изменения цены и подписчика. Если такое письмо
// уже в очереди или недавно отправлено, повтор отбрасывается без ошибки.
func (d *Dispatcher) PriceDrop(ctx context.Context, payload service.PriceDropPayload) error {
	return d.enqueue(ctx, TypePriceDrop, payload, QueueDefault,
		asynq.TaskID(priceDropTaskID(payload.ChangeID, payload.UserID)),
		asynq.Retention(dedupRetention),
	)
}

func (d *Dispatcher) CampaignEmail(ctx context.Context, payload service.CampaignEmailPayload) error {
	return d.enqueue(ctx, TypeCampaignEmail, payload, QueueLow)
}

func (d *Dispatcher) PushToUser(ctx context.Context, payload service.PushPayload) error {
	return d.enqueue(ctx, TypePushToUser, payload, QueueDefault)
}

func (d *Dispatcher) OrderStatusWebhook(ctx context.Context, payload service.OrderStatusPayload) error {
	return d.enqueue(ctx, TypeOrderStatus, payload, QueueCritical)
}

func (d *Dispatcher) enqueue(
	ctx context.Context,
	typename string,
	payload any,
	queue string,
	opts ...asynq.Option,
) error {
	task, err := newTask(typename, payload, queue, opts...)
	if err != nil {
		return err
	}
	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			d.l.WithField("type", typename).Debug("duplicate task skipped")
			return nil
		}
		return fmt.Errorf("enqueue %s: %w", typename, err)
	}
	d.l.WithFields(logrus.Fields{"type": typename, "id": info.ID, "queue": info.Queue}).Debug("task enqueued")
	return nil
}

// Compile-time проверка соответствия интерфейсу сервисного слоя.
var _ service.TaskDispatcher = (*Dispatcher)(nil)
