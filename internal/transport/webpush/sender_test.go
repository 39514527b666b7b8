package webpush

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/service"
)

type SenderTestSuite struct {
	suite.Suite
	sender *Sender
	sub    domain.PushSubscription
}

func TestSenderSuite(t *testing.T) {
	suite.Run(t, new(SenderTestSuite))
}

func (s *SenderTestSuite) SetupTest() {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	s.Require().NoError(err)

	s.sender = New(VAPID{
		Subscriber: "admin@example.com",
		PublicKey:  publicKey,
		PrivateKey: privateKey,
	})

	// ключи браузера
	clientKey, err := ecdh.P256().GenerateKey(rand.Reader)
	s.Require().NoError(err)
	authSecret := make([]byte, 16)
	_, err = rand.Read(authSecret)
	s.Require().NoError(err)

	s.sub = domain.PushSubscription{
		ID:     1,
		UserID: 7,
		P256dh: base64.RawURLEncoding.EncodeToString(clientKey.PublicKey().Bytes()),
		Auth:   base64.RawURLEncoding.EncodeToString(authSecret),
	}
}

func (s *SenderTestSuite) serve(status int) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("aes128gcm", r.Header.Get("Content-Encoding"))
		s.Contains(r.Header.Get("Authorization"), "vapid")
		w.WriteHeader(status)
	}))
	s.T().Cleanup(srv.Close)
	return srv
}

func (s *SenderTestSuite) TestSend() {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "created", status: http.StatusCreated},
		{name: "gone", status: http.StatusGone, wantErr: domain.ErrSubscriptionGone},
		{name: "not found", status: http.StatusNotFound, wantErr: domain.ErrSubscriptionGone},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			srv := s.serve(tt.status)
			sub := s.sub
			sub.Endpoint = srv.URL + "/push/abc"

			err := s.sender.Send(s.T().Context(), sub, service.Notification{Title: "Hi", Body: "there"})
			if tt.wantErr != nil {
				s.Require().ErrorIs(err, tt.wantErr)
				return
			}
			s.Require().NoError(err)
		})
	}
}

func (s *SenderTestSuite) TestSend_ServerError() {
	srv := s.serve(http.StatusInternalServerError)
	sub := s.sub
	sub.Endpoint = srv.URL

	err := s.sender.Send(s.T().Context(), sub, service.Notification{Title: "Hi"})

	var statusErr *StatusCodeError
	s.Require().ErrorAs(err, &statusErr)
	s.Equal(http.StatusInternalServerError, statusErr.Code)
}
