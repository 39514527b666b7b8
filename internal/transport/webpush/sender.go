// Package webpush доставляет уведомления браузерам по протоколу Web Push с VAPID авторизацией.
package webpush

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/service"
)

const defaultTTL = 60 * 60 * 24

// VAPID ключи сервера приложения.
type VAPID struct {
	Subscriber string
	PublicKey  string
	PrivateKey string
}

type Sender struct {
	vapid VAPID
	ttl   int
}

func New(vapid VAPID) *Sender {
	return &Sender{
		vapid: vapid,
		ttl:   defaultTTL,
	}
}

// SetTTL устанавливает время (в секундах), в течение которого push сервис хранит недоставленное уведомление.
func (s *Sender) SetTTL(ttl int) *Sender {
	s.ttl = ttl
	return s
}

// Enabled сообщает, настроены ли VAPID ключи.
func (s *Sender) Enabled() bool {
	return s.vapid.PublicKey != "" && s.vapid.PrivateKey != ""
}

// Send шифрует уведомление и отправляет его на endpoint подписки. Ответы 404 и 410 означают, что подписка
// больше не действительна, в этом случае возвращается domain.ErrSubscriptionGone.
func (s *Sender) Send(ctx context.Context, sub domain.PushSubscription, n service.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}, &webpush.Options{
		Subscriber:      s.vapid.Subscriber,
		VAPIDPublicKey:  s.vapid.PublicKey,
		VAPIDPrivateKey: s.vapid.PrivateKey,
		TTL:             s.ttl,
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return fmt.Errorf("send push notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return domain.ErrSubscriptionGone
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &StatusCodeError{Code: resp.StatusCode}
	}
	return nil
}

// StatusCodeError неуспешный ответ push сервиса.
type StatusCodeError struct {
	Code int
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("push service responded with status %d", e.Code)
}
