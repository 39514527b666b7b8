package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/sirupsen/logrus"
)

// NotificationService управляет web push подписками и доставкой уведомлений.
type NotificationService struct {
	subRepo PushSubscriptionRepository
	sender  PushSender
	l       *logrus.Entry
}

func NewNotificationService(u uow.UOW, sender PushSender, l *logrus.Logger) (*NotificationService, error) {
	subRepo, err := uow.GetRepositoryAs[PushSubscriptionRepository](
		u,
		uow.RepositoryName(repoargs.PushSubscriptionRepoName),
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &NotificationService{
		subRepo: subRepo,
		sender:  sender,
		l:       l.WithFields(logrus.Fields{"component": "service", "module": "notification"}),
	}, nil
}

func (s *NotificationService) Subscribe(
	ctx context.Context,
	args repoargs.PushSubscriptionCreate,
) (*domain.PushSubscription, error) {
	sub, err := s.subRepo.Upsert(ctx, args)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return sub, nil
}

func (s *NotificationService) Unsubscribe(ctx context.Context, userID int64, endpoint string) error {
	return s.subRepo.DeleteByEndpoint(ctx, userID, endpoint) //nolint:wrapcheck
}

// SendToUser отправляет уведомление на все подписки юзера и возвращает количество успешных доставок.
// Подписки, отвергнутые push сервисом как устаревшие, удаляются. Если уведомление не дошло ни до одной
// подписки, ошибки доставки возвращаются, чтобы очередь задач повторила попытку. Если хотя бы одна
// доставка прошла, ошибки только логируются: повтор задачи продублировал бы уведомление на доставленных
// подписках.
func (s *NotificationService) SendToUser(ctx context.Context, userID int64, n Notification) (int, error) {
	subs, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	var sent int
	var sendErr error
	for _, sub := range subs {
		err = s.sender.Send(ctx, sub, n)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, domain.ErrSubscriptionGone):
			s.l.WithField("subscriptionID", sub.ID).Info("removing expired push subscription")
			if delErr := s.subRepo.DeleteByEndpoint(ctx, 0, sub.Endpoint); delErr != nil {
				sendErr = errors.Join(sendErr, delErr)
			}
		default:
			sendErr = errors.Join(sendErr, fmt.Errorf("subscription %d: %w", sub.ID, err))
		}
	}
	if sendErr == nil {
		return sent, nil
	}
	if sent > 0 {
		s.l.WithError(sendErr).WithFields(logrus.Fields{"userID": userID, "sent": sent}).
			Warn("push partially delivered")
		return sent, nil
	}
	return 0, fmt.Errorf("sending push to user %d: %w", userID, sendErr)
}
