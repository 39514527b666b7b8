package messenger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) TestSend() {
	cases := []struct {
		name        string
		httpStatus  int
		retryAfter  string
		wantErrType error
		wantRetry   time.Duration
	}{
		{name: "ok", httpStatus: http.StatusOK},
		{name: "accepted", httpStatus: http.StatusAccepted},
		{name: "bad request", httpStatus: http.StatusBadRequest, wantErrType: new(StatusCodeError)},
		{name: "internal error", httpStatus: http.StatusInternalServerError, wantErrType: new(StatusCodeError)},
		{
			name:        "too many requests",
			httpStatus:  http.StatusTooManyRequests,
			retryAfter:  "5",
			wantErrType: new(TooManyRequestError),
			wantRetry:   5 * time.Second,
		},
		{
			name:        "too many requests without header",
			httpStatus:  http.StatusTooManyRequests,
			wantErrType: new(TooManyRequestError),
			wantRetry:   60 * time.Second,
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			msg := Message{Recipient: gofakeit.Username(), Text: gofakeit.Sentence(5)}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				s.Equal(http.MethodPost, r.Method)
				s.Equal("Bearer token", r.Header.Get("Authorization"))

				var got Message
				s.NoError(json.NewDecoder(r.Body).Decode(&got))
				s.Equal(msg, got)

				if tc.retryAfter != "" {
					w.Header().Set("Retry-After", tc.retryAfter)
				}
				w.WriteHeader(tc.httpStatus)
			}))
			defer server.Close()

			err := New(server.URL, "token").Send(s.T().Context(), msg)
			if tc.wantErrType == nil {
				s.NoError(err)
				return
			}
			s.Require().Error(err)
			s.IsType(tc.wantErrType, err)

			if tc.wantRetry > 0 {
				var tooMany *TooManyRequestError
				s.Require().ErrorAs(err, &tooMany)
				s.Equal(tc.wantRetry, tooMany.RetryAfter)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	cases := map[string]time.Duration{
		"1":    time.Second,
		"120":  120 * time.Second,
		"0":    60 * time.Second,
		"121":  60 * time.Second,
		"abc":  60 * time.Second,
		"":     60 * time.Second,
		"30.7": 30 * time.Second,
	}
	for value, want := range cases {
		if got := parseRetryAfter(value); got != want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", value, got, want)
		}
	}
}
