package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/service"
	"github.com/fsdevblog/groph-grocer/internal/transport/jobs/mocks"
)

type DispatcherTestSuite struct {
	suite.Suite
	mockEnqueuer *mocks.MockEnqueuer
	dispatcher   *Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func (s *DispatcherTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.mockEnqueuer = mocks.NewMockEnqueuer(ctrl)
	s.dispatcher = NewDispatcher(s.mockEnqueuer, logrus.New())
}

func (s *DispatcherTestSuite) TestOrderStatusWebhook() {
	payload := service.OrderStatusPayload{
		OrderID:     3,
		OrderNumber: "GR-260101-AAAAAA",
		UserID:      5,
		Status:      domain.OrderStatusShipped,
		Total:       decimal.NewFromInt(42),
	}

	s.mockEnqueuer.EXPECT().
		EnqueueContext(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
			s.Equal(TypeOrderStatus, task.Type())

			var got service.OrderStatusPayload
			s.Require().NoError(json.Unmarshal(task.Payload(), &got))
			s.Equal(payload.OrderNumber, got.OrderNumber)
			s.Equal(payload.Status, got.Status)
			s.True(payload.Total.Equal(got.Total))
			return &asynq.TaskInfo{ID: "1", Queue: QueueCritical}, nil
		})

	s.Require().NoError(s.dispatcher.OrderStatusWebhook(s.T().Context(), payload))
}

func (s *DispatcherTestSuite) TestPushToUser_EnqueueError() {
	enqueueErr := errors.New("redis is down")
	s.mockEnqueuer.EXPECT().EnqueueContext(gomock.Any(), gomock.Any()).Return(nil, enqueueErr)

	err := s.dispatcher.PushToUser(s.T().Context(), service.PushPayload{UserID: 1})
	s.Require().ErrorIs(err, enqueueErr)
	s.Contains(err.Error(), TypePushToUser)
}

func (s *DispatcherTestSuite) TestPriceDrop_RepeatAfterPartialFailure() {
	payload := service.PriceDropPayload{ChangeID: 7, UserID: 1, Email: "a@example.com", ProductSlug: "butter"}

	gomock.InOrder(
		s.mockEnqueuer.EXPECT().
			EnqueueContext(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
				s.Equal(TypePriceDrop, task.Type())
				return &asynq.TaskInfo{ID: priceDropTaskID(7, 1), Queue: QueueDefault}, nil
			}),
		// следующий проход процессора ставит то же письмо, asynq отвечает конфликтом id.
		s.mockEnqueuer.EXPECT().
			EnqueueContext(gomock.Any(), gomock.Any()).
			Return(nil, asynq.ErrTaskIDConflict),
	)

	s.Require().NoError(s.dispatcher.PriceDrop(s.T().Context(), payload))
	s.Require().NoError(s.dispatcher.PriceDrop(s.T().Context(), payload))
}

func (s *DispatcherTestSuite) TestPriceDrop_EnqueueError() {
	enqueueErr := errors.New("redis is down")
	s.mockEnqueuer.EXPECT().EnqueueContext(gomock.Any(), gomock.Any()).Return(nil, enqueueErr)

	err := s.dispatcher.PriceDrop(s.T().Context(), service.PriceDropPayload{ChangeID: 1, UserID: 2})
	s.Require().ErrorIs(err, enqueueErr)
}

func TestPriceDropTaskID(t *testing.T) {
	assert.Equal(t, "pricedrop:7:12", priceDropTaskID(7, 12))
	assert.NotEqual(t, priceDropTaskID(7, 12), priceDropTaskID(71, 2))
}
