package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-grocer/internal/service"
	"github.com/fsdevblog/groph-grocer/internal/transport/messenger"
)

// Handlers обработчики задач очереди.
type Handlers struct {
	mailer    Mailer
	pusher    Pusher
	messenger Messenger
	// recipient получатель сообщений мессенджера (чат операторов магазина).
	recipient string
	l         *logrus.Entry
}

func NewHandlers(mailer Mailer, pusher Pusher, msgr Messenger, recipient string, l *logrus.Logger) *Handlers {
	return &Handlers{
		mailer:    mailer,
		pusher:    pusher,
		messenger: msgr,
		recipient: recipient,
		l:         l.WithFields(logrus.Fields{"component": "jobs", "module": "handlers"}),
	}
}

// Mux маршрутизирует задачи по типу в обработчики.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeOrderConfirmation, h.handleOrderConfirmation)
	mux.HandleFunc(TypePriceDrop, h.handlePriceDrop)
	mux.HandleFunc(TypeCampaignEmail, h.handleCampaignEmail)
	mux.HandleFunc(TypePushToUser, h.handlePushToUser)
	mux.HandleFunc(TypeOrderStatus, h.handleOrderStatus)
	return mux
}

func (h *Handlers) handleOrderConfirmation(ctx context.Context, t *asynq.Task) error {
	var p service.OrderConfirmationPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	if err := h.mailer.SendOrderConfirmation(ctx, p); err != nil {
		h.l.WithError(err).WithField("orderID", p.OrderID).Error("failed to send order confirmation")
		return err //nolint:wrapcheck
	}
	return nil
}

func (h *Handlers) handlePriceDrop(ctx context.Context, t *asynq.Task) error {
	var p service.PriceDropPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	if err := h.mailer.SendPriceDrop(ctx, p); err != nil {
		h.l.WithError(err).WithField("product", p.ProductSlug).Error("failed to send price drop email")
		return err //nolint:wrapcheck
	}
	return nil
}

func (h *Handlers) handleCampaignEmail(ctx context.Context, t *asynq.Task) error {
	var p service.CampaignEmailPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	if err := h.mailer.SendCampaign(ctx, p); err != nil {
		h.l.WithError(err).WithField("campaignID", p.CampaignID).Error("failed to send campaign email")
		return err //nolint:wrapcheck
	}
	return nil
}

// handlePushToUser pusher nil означает, что web push не настроен, задачи отбрасываются.
func (h *Handlers) handlePushToUser(ctx context.Context, t *asynq.Task) error {
	if h.pusher == nil {
		return nil
	}
	var p service.PushPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	sent, err := h.pusher.SendToUser(ctx, p.UserID, p.Notification)
	if err != nil {
		h.l.WithError(err).WithField("userID", p.UserID).Error("failed to send push")
		return err //nolint:wrapcheck
	}
	h.l.WithFields(logrus.Fields{"userID": p.UserID, "sent": sent}).Debug("push delivered")
	return nil
}

// handleOrderStatus отправляет сообщение о смене статуса заказа в мессенджер. На ответ 429 ждет время из
// Retry-After и повторяет попытку, если оно укладывается в таймаут задачи. Иначе ошибка возвращается в asynq,
// который отложит повтор на то же время (см. RetryDelay).
func (h *Handlers) handleOrderStatus(ctx context.Context, t *asynq.Task) error {
	if !h.messenger.Enabled() {
		return nil
	}
	var p service.OrderStatusPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	msg := messenger.Message{
		Recipient: h.recipient,
		Text: fmt.Sprintf(
			"Order %s (user %d): %s, total %s",
			p.OrderNumber, p.UserID, strings.ToLower(string(p.Status)), p.Total.StringFixed(2),
		),
	}

	for {
		err := h.messenger.Send(ctx, msg)
		var tooManyReq *messenger.TooManyRequestError
		if !errors.As(err, &tooManyReq) {
			return err //nolint:wrapcheck
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < tooManyReq.RetryAfter {
			return err //nolint:wrapcheck
		}
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck
		case <-time.After(tooManyReq.RetryAfter):
		}
	}
}

// RetryDelay задержка перед повтором задачи. Для ответов 429 берется значение Retry-After.
func RetryDelay(n int, err error, t *asynq.Task) time.Duration {
	var tooManyReq *messenger.TooManyRequestError
	if errors.As(err, &tooManyReq) {
		return tooManyReq.RetryAfter
	}
	return asynq.DefaultRetryDelayFunc(n, err, t)
}

// decode разбирает JSON payload задачи. Битый payload повторять бессмысленно.
func decode(t *asynq.Task, dest any) error {
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}
