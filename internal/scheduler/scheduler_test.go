package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-grocer/internal/scheduler/mocks"
)

type SchedulerTestSuite struct {
	suite.Suite
	mockSender *mocks.MockCampaignSender
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

func (s *SchedulerTestSuite) SetupTest() {
	s.mockSender = mocks.NewMockCampaignSender(gomock.NewController(s.T()))
}

func (s *SchedulerTestSuite) TestNew_InvalidSpec() {
	_, err := New(s.mockSender, "every minute please", logrus.New())
	s.Error(err)
}

func (s *SchedulerTestSuite) TestSendDueCampaigns() {
	sch, err := New(s.mockSender, "", logrus.New())
	s.Require().NoError(err)

	gomock.InOrder(
		s.mockSender.EXPECT().SendDue(gomock.Any()).Return(2, nil),
		s.mockSender.EXPECT().SendDue(gomock.Any()).Return(0, errors.New("db is down")),
	)

	sch.sendDueCampaigns()
	sch.sendDueCampaigns()
}

func (s *SchedulerTestSuite) TestStartStop() {
	sch, err := New(s.mockSender, "@every 1s", logrus.New())
	s.Require().NoError(err)

	called := make(chan struct{}, 1)
	s.mockSender.EXPECT().
		SendDue(gomock.Any()).
		DoAndReturn(func(context.Context) (int, error) {
			select {
			case called <- struct{}{}:
			default:
			}
			return 0, nil
		}).
		AnyTimes()

	sch.Start()
	select {
	case <-called:
	case <-time.After(3 * time.Second):
		s.Fail("scheduled job did not run")
	}

	ctx, cancel := context.WithTimeout(s.T().Context(), time.Second)
	defer cancel()
	sch.Stop(ctx)
}
