package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/service"
	"github.com/fsdevblog/groph-grocer/internal/transport/jobs/mocks"
	"github.com/fsdevblog/groph-grocer/internal/transport/messenger"
)

type HandlersTestSuite struct {
	suite.Suite
	mockMailer    *mocks.MockMailer
	mockPusher    *mocks.MockPusher
	mockMessenger *mocks.MockMessenger
	mux           *asynq.ServeMux
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.mockMailer = mocks.NewMockMailer(ctrl)
	s.mockPusher = mocks.NewMockPusher(ctrl)
	s.mockMessenger = mocks.NewMockMessenger(ctrl)
	s.mux = NewHandlers(s.mockMailer, s.mockPusher, s.mockMessenger, "ops", logrus.New()).Mux()
}

func (s *HandlersTestSuite) task(typename string, payload any) *asynq.Task {
	data, err := json.Marshal(payload)
	s.Require().NoError(err)
	return asynq.NewTask(typename, data)
}

func (s *HandlersTestSuite) TestOrderConfirmation() {
	payload := service.OrderConfirmationPayload{
		OrderID:     1,
		OrderNumber: "GR-260101-ABCDEF",
		Email:       gofakeit.Email(),
		Total:       decimal.NewFromInt(10),
	}
	s.mockMailer.EXPECT().
		SendOrderConfirmation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p service.OrderConfirmationPayload) error {
			s.Equal(payload.Email, p.Email)
			s.Equal(payload.OrderNumber, p.OrderNumber)
			return nil
		})

	s.Require().NoError(s.mux.ProcessTask(s.T().Context(), s.task(TypeOrderConfirmation, payload)))
}

func (s *HandlersTestSuite) TestPriceDrop_MailerError() {
	mailErr := errors.New("resend unavailable")
	s.mockMailer.EXPECT().SendPriceDrop(gomock.Any(), gomock.Any()).Return(mailErr)

	err := s.mux.ProcessTask(s.T().Context(), s.task(TypePriceDrop, service.PriceDropPayload{Email: gofakeit.Email()}))
	s.Require().ErrorIs(err, mailErr)
}

func (s *HandlersTestSuite) TestCampaignEmail() {
	payload := service.CampaignEmailPayload{CampaignID: 4, Email: gofakeit.Email(), Title: "Sale"}
	s.mockMailer.EXPECT().SendCampaign(gomock.Any(), payload).Return(nil)

	s.Require().NoError(s.mux.ProcessTask(s.T().Context(), s.task(TypeCampaignEmail, payload)))
}

func (s *HandlersTestSuite) TestPushToUser() {
	n := service.Notification{Title: "Order GR-1", Body: "Order status: shipped", URL: "/orders/1"}
	s.mockPusher.EXPECT().SendToUser(gomock.Any(), int64(9), n).Return(2, nil)

	err := s.mux.ProcessTask(s.T().Context(), s.task(TypePushToUser, service.PushPayload{UserID: 9, Notification: n}))
	s.Require().NoError(err)
}

func (s *HandlersTestSuite) TestBrokenPayload_SkipsRetry() {
	err := s.mux.ProcessTask(s.T().Context(), asynq.NewTask(TypePushToUser, []byte("{")))
	s.Require().ErrorIs(err, asynq.SkipRetry)
}

func (s *HandlersTestSuite) TestOrderStatus() {
	payload := service.OrderStatusPayload{
		OrderID:     1,
		OrderNumber: "GR-260101-ABCDEF",
		UserID:      3,
		Status:      domain.OrderStatusShipped,
		Total:       decimal.RequireFromString("12.5"),
	}

	s.Run("disabled messenger", func() {
		s.mockMessenger.EXPECT().Enabled().Return(false)
		s.Require().NoError(s.mux.ProcessTask(s.T().Context(), s.task(TypeOrderStatus, payload)))
	})

	s.Run("sends message", func() {
		s.mockMessenger.EXPECT().Enabled().Return(true)
		s.mockMessenger.EXPECT().
			Send(gomock.Any(), messenger.Message{
				Recipient: "ops",
				Text:      "Order GR-260101-ABCDEF (user 3): shipped, total 12.50",
			}).
			Return(nil)
		s.Require().NoError(s.mux.ProcessTask(s.T().Context(), s.task(TypeOrderStatus, payload)))
	})

	s.Run("waits out too many requests", func() {
		s.mockMessenger.EXPECT().Enabled().Return(true)
		gomock.InOrder(
			s.mockMessenger.EXPECT().
				Send(gomock.Any(), gomock.Any()).
				Return(messenger.NewTooManyRequestError(10*time.Millisecond)),
			s.mockMessenger.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil),
		)
		s.Require().NoError(s.mux.ProcessTask(s.T().Context(), s.task(TypeOrderStatus, payload)))
	})

	s.Run("retry after exceeds task deadline", func() {
		s.mockMessenger.EXPECT().Enabled().Return(true)
		s.mockMessenger.EXPECT().
			Send(gomock.Any(), gomock.Any()).
			Return(messenger.NewTooManyRequestError(time.Minute))

		ctx, cancel := context.WithTimeout(s.T().Context(), time.Second)
		defer cancel()

		err := s.mux.ProcessTask(ctx, s.task(TypeOrderStatus, payload))
		var tooManyReq *messenger.TooManyRequestError
		s.Require().ErrorAs(err, &tooManyReq)
		s.Equal(time.Minute, RetryDelay(1, err, nil))
	})
}

func (s *HandlersTestSuite) TestRetryDelay_Default() {
	task := asynq.NewTask(TypePriceDrop, nil)
	s.GreaterOrEqual(RetryDelay(0, errors.New("smtp timeout"), task), 15*time.Second)
}
