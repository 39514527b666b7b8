package service_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/internal/service"
	"github.com/fsdevblog/groph-grocer/internal/service/mocks"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-grocer/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type CampaignServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockUOW        *uowmocks.MockUOW
	mockTX         *uowmocks.MockTX
	mockCampaign   *mocks.MockCampaignRepository
	mockUser       *mocks.MockUserRepository
	mockDispatcher *mocks.MockTaskDispatcher
	service        *service.CampaignService
}

func TestCampaignServiceSuite(t *testing.T) {
	suite.Run(t, new(CampaignServiceTestSuite))
}

func (s *CampaignServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockCampaign = mocks.NewMockCampaignRepository(s.mockCtrl)
	s.mockUser = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockDispatcher = mocks.NewMockTaskDispatcher(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.CampaignRepoName)).
		Return(s.mockCampaign, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.CampaignRepoName)).Return(s.mockCampaign, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).Return(s.mockUser, nil).AnyTimes()
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	l := logrus.New()
	l.SetOutput(io.Discard)

	var err error
	s.service, err = service.NewCampaignService(s.mockUOW, s.mockDispatcher, l)
	s.Require().NoError(err)
}

func (s *CampaignServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CampaignServiceTestSuite) TestCreate_Status() {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	cases := []struct {
		name        string
		scheduledAt *time.Time
		wantStatus  domain.CampaignStatusType
	}{
		{name: "without date", wantStatus: domain.CampaignStatusDraft},
		{name: "past date", scheduledAt: &past, wantStatus: domain.CampaignStatusDraft},
		{name: "future date", scheduledAt: &future, wantStatus: domain.CampaignStatusScheduled},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.mockCampaign.EXPECT().Create(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, args repoargs.CampaignCreate) (*domain.Campaign, error) {
					return &domain.Campaign{ID: 1, Status: args.Status, ScheduledAt: args.ScheduledAt}, nil
				})

			campaign, err := s.service.Create(s.T().Context(), repoargs.CampaignCreate{
				Title: "Sale", Channel: domain.CampaignChannelPush, Segment: domain.CampaignSegmentAll,
				ScheduledAt: tc.scheduledAt,
			})
			s.Require().NoError(err)
			s.Equal(tc.wantStatus, campaign.Status)
		})
	}
}

// TestSend кампания по всем каналам ставит push и письмо каждому получателю.
func (s *CampaignServiceTestSuite) TestSend() {
	campaign := &domain.Campaign{
		ID: 4, Title: "Weekend sale", Body: "-20% on fruits", URL: "/sale",
		Channel: domain.CampaignChannelAll, Segment: domain.CampaignSegmentCustomers, Status: domain.CampaignStatusDraft,
	}
	users := []domain.User{{ID: 1, Email: "a@example.com"}, {ID: 2, Email: "b@example.com"}}
	sent := *campaign
	sent.Status = domain.CampaignStatusSent
	sent.Recipients = 2

	s.mockCampaign.EXPECT().FindByIDForUpdate(gomock.Any(), int64(4)).Return(campaign, nil)
	s.mockUser.EXPECT().GetBySegment(gomock.Any(), domain.CampaignSegmentCustomers).Return(users, nil)
	s.mockCampaign.EXPECT().MarkSent(gomock.Any(), int64(4), int32(2)).Return(&sent, nil)
	s.mockDispatcher.EXPECT().PushToUser(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	s.mockDispatcher.EXPECT().CampaignEmail(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p service.CampaignEmailPayload) error {
			s.Equal(int64(4), p.CampaignID)
			s.Equal("Weekend sale", p.Title)
			return nil
		}).Times(2)

	res, err := s.service.Send(s.T().Context(), 4)
	s.Require().NoError(err)
	s.Equal(domain.CampaignStatusSent, res.Status)
	s.Equal(int32(2), res.Recipients)
}

// TestSend_RequestCanceledAfterCommit рассылка доходит до всех получателей, даже если запрос отменен
// сразу после пометки кампании отправленной.
func (s *CampaignServiceTestSuite) TestSend_RequestCanceledAfterCommit() {
	campaign := &domain.Campaign{
		ID: 5, Title: "Flash sale", Channel: domain.CampaignChannelPush, Segment: domain.CampaignSegmentAll,
	}
	users := []domain.User{{ID: 1}, {ID: 2}, {ID: 3}}
	ctx, cancel := context.WithCancel(s.T().Context())
	defer cancel()

	s.mockCampaign.EXPECT().FindByIDForUpdate(gomock.Any(), int64(5)).Return(campaign, nil)
	s.mockUser.EXPECT().GetBySegment(gomock.Any(), domain.CampaignSegmentAll).Return(users, nil)
	s.mockCampaign.EXPECT().MarkSent(gomock.Any(), int64(5), int32(3)).
		DoAndReturn(func(context.Context, int64, int32) (*domain.Campaign, error) {
			cancel()
			sent := *campaign
			sent.Status = domain.CampaignStatusSent
			return &sent, nil
		})
	s.mockDispatcher.EXPECT().PushToUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(c context.Context, _ service.PushPayload) error {
			s.NoError(c.Err())
			return nil
		}).Times(3)

	res, err := s.service.Send(ctx, 5)
	s.Require().NoError(err)
	s.Equal(domain.CampaignStatusSent, res.Status)
	s.Require().ErrorIs(ctx.Err(), context.Canceled)
}

func (s *CampaignServiceTestSuite) TestSend_AlreadySent() {
	s.mockCampaign.EXPECT().FindByIDForUpdate(gomock.Any(), int64(4)).
		Return(&domain.Campaign{ID: 4, Status: domain.CampaignStatusSent}, nil)
	s.mockUser.EXPECT().GetBySegment(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.Send(s.T().Context(), 4)
	s.Require().ErrorIs(err, domain.ErrCampaignAlreadySent)
}

// TestSendDue отправленные параллельно кампании пропускаются, упавшие помечаются failed.
func (s *CampaignServiceTestSuite) TestSendDue() {
	pushOnly := &domain.Campaign{ID: 1, Channel: domain.CampaignChannelPush, Segment: domain.CampaignSegmentAll}

	s.mockCampaign.EXPECT().GetDue(gomock.Any(), uint(10)).Return([]int64{1, 2, 3}, nil)

	s.mockCampaign.EXPECT().FindByIDForUpdate(gomock.Any(), int64(1)).Return(pushOnly, nil)
	s.mockUser.EXPECT().GetBySegment(gomock.Any(), domain.CampaignSegmentAll).Return([]domain.User{{ID: 7}}, nil)
	s.mockCampaign.EXPECT().MarkSent(gomock.Any(), int64(1), int32(1)).Return(pushOnly, nil)
	s.mockDispatcher.EXPECT().PushToUser(gomock.Any(), gomock.Any()).Return(nil)

	s.mockCampaign.EXPECT().FindByIDForUpdate(gomock.Any(), int64(2)).
		Return(&domain.Campaign{ID: 2, Status: domain.CampaignStatusSent}, nil)

	s.mockCampaign.EXPECT().FindByIDForUpdate(gomock.Any(), int64(3)).Return(nil, errors.New("db is down"))
	s.mockCampaign.EXPECT().SetStatus(gomock.Any(), int64(3), domain.CampaignStatusFailed).Return(nil)

	sent, err := s.service.SendDue(s.T().Context())
	s.Require().Error(err)
	s.Equal(1, sent)
}
