package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/sirupsen/logrus"
)

const dueCampaignsLimit uint = 10

type CampaignService struct {
	uow          uow.UOW
	campaignRepo CampaignRepository
	dispatcher   TaskDispatcher
	l            *logrus.Entry
	now          func() time.Time
}

func NewCampaignService(u uow.UOW, dispatcher TaskDispatcher, l *logrus.Logger) (*CampaignService, error) {
	campaignRepo, err := uow.GetRepositoryAs[CampaignRepository](u, uow.RepositoryName(repoargs.CampaignRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &CampaignService{
		uow:          u,
		campaignRepo: campaignRepo,
		dispatcher:   dispatcher,
		l:            l.WithFields(logrus.Fields{"component": "service", "module": "campaign"}),
		now:          time.Now,
	}, nil
}

// Create создает кампанию. Кампания с датой отправки в будущем получает статус scheduled и будет отправлена
// планировщиком, остальные создаются черновиками.
func (s *CampaignService) Create(ctx context.Context, args repoargs.CampaignCreate) (*domain.Campaign, error) {
	args.Status = domain.CampaignStatusDraft
	if args.ScheduledAt != nil && args.ScheduledAt.After(s.now()) {
		args.Status = domain.CampaignStatusScheduled
	}
	campaign, err := s.campaignRepo.Create(ctx, args)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return campaign, nil
}

func (s *CampaignService) List(ctx context.Context, page repoargs.Page) ([]domain.Campaign, error) {
	campaigns, err := s.campaignRepo.List(ctx, page)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return campaigns, nil
}

// Send отправляет кампанию юзерам ее сегмента.
//
// В транзакции кампания блокируется, проверяется что она еще не отправлена, выбираются получатели и
// кампания помечается отправленной. После коммита на каждого получателя ставятся задачи доставки по
// каналам кампании. Постановка не зависит от отмены ctx: кампания уже помечена отправленной, и прерванная
// рассылка не будет повторена. Ошибки постановки логируются и не откатывают отправку.
func (s *CampaignService) Send(ctx context.Context, id int64) (*domain.Campaign, error) {
	var campaign *domain.Campaign
	var users []domain.User
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		campaignRepo, err := uow.GetAs[CampaignRepository](tx, uow.RepositoryName(repoargs.CampaignRepoName))
		if err != nil {
			return err //nolint:wrapcheck
		}
		userRepo, err := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if err != nil {
			return err //nolint:wrapcheck
		}
		current, err := campaignRepo.FindByIDForUpdate(c, id)
		if err != nil {
			return err //nolint:wrapcheck
		}
		if current.Status == domain.CampaignStatusSent {
			return domain.ErrCampaignAlreadySent
		}
		if users, err = userRepo.GetBySegment(c, current.Segment); err != nil {
			return err //nolint:wrapcheck
		}
		recipients := int32(min(len(users), math.MaxInt32)) //nolint:gosec
		campaign, err = campaignRepo.MarkSent(c, id, recipients)
		return err //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("sending campaign %d: %w", id, txErr)
	}

	s.fanOut(context.WithoutCancel(ctx), campaign, users)
	return campaign, nil
}

// SendDue отправляет запланированные кампании, время которых наступило. Возвращает количество
// отправленных кампаний.
func (s *CampaignService) SendDue(ctx context.Context) (int, error) {
	ids, err := s.campaignRepo.GetDue(ctx, dueCampaignsLimit)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	var sent int
	var sendErr error
	for _, id := range ids {
		if _, err = s.Send(ctx, id); err != nil {
			if errors.Is(err, domain.ErrCampaignAlreadySent) {
				continue
			}
			if statusErr := s.campaignRepo.SetStatus(ctx, id, domain.CampaignStatusFailed); statusErr != nil {
				err = errors.Join(err, statusErr)
			}
			sendErr = errors.Join(sendErr, err)
			continue
		}
		sent++
	}
	return sent, sendErr
}

func (s *CampaignService) fanOut(ctx context.Context, campaign *domain.Campaign, users []domain.User) {
	l := s.l.WithField("campaignID", campaign.ID)
	var failed int
	for _, user := range users {
		if campaign.UsesPush() {
			if err := s.dispatcher.PushToUser(ctx, PushPayload{
				UserID: user.ID,
				Notification: Notification{
					Title: campaign.Title,
					Body:  campaign.Body,
					URL:   campaign.URL,
				},
			}); err != nil {
				failed++
				l.WithError(err).WithField("userID", user.ID).Error("enqueue campaign push")
			}
		}
		if campaign.UsesEmail() {
			if err := s.dispatcher.CampaignEmail(ctx, CampaignEmailPayload{
				CampaignID: campaign.ID,
				Email:      user.Email,
				FullName:   user.FullName,
				Title:      campaign.Title,
				Body:       campaign.Body,
				URL:        campaign.URL,
			}); err != nil {
				failed++
				l.WithError(err).WithField("userID", user.ID).Error("enqueue campaign email")
			}
		}
	}
	l.WithFields(logrus.Fields{"recipients": len(users), "failed": failed}).Info("campaign sent")
}
