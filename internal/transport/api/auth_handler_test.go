package api

import (
	"net/http"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/service"
	"github.com/fsdevblog/groph-grocer/internal/transport/api/testutils"
)

func (s *HandlersTestSuite) TestRegister() {
	email := strings.ToLower(gofakeit.Email())
	password := gofakeit.Password(true, true, true, false, false, 10)
	fullName := gofakeit.Name()
	duplicateEmail := strings.ToLower(gofakeit.Email())

	s.mockUser.EXPECT().
		Register(gomock.Any(), service.RegisterUserArgs{Email: email, Password: password, FullName: fullName}).
		Return(&domain.User{ID: 1, Email: email, FullName: fullName, Role: domain.RoleCustomer}, "jwt-token", nil).
		Times(1)
	s.mockUser.EXPECT().
		Register(gomock.Any(), service.RegisterUserArgs{Email: duplicateEmail, Password: password, FullName: fullName}).
		Return(nil, "", domain.ErrDuplicateKey).
		Times(1)

	cases := []struct {
		name       string
		body       any
		token      string
		wantStatus int
		wantError  string
	}{
		{
			name:       "all ok",
			body:       UserRegisterParams{Email: email, Password: password, FullName: fullName},
			wantStatus: http.StatusOK,
		}, {
			name:       "duplicate email",
			body:       UserRegisterParams{Email: duplicateEmail, Password: password, FullName: fullName},
			wantStatus: http.StatusConflict,
			wantError:  "user with this email already exists",
		}, {
			name:       "invalid email",
			body:       UserRegisterParams{Email: "not-an-email", Password: password, FullName: fullName},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "validation failed",
		}, {
			name: "password over 72 bytes",
			body: UserRegisterParams{
				Email:    email,
				Password: strings.Repeat("😁", 20),
				FullName: fullName,
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "validation failed",
		}, {
			name:       "already authorized",
			body:       UserRegisterParams{Email: email, Password: password, FullName: fullName},
			token:      s.token(5, domain.RoleCustomer),
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, body := s.do(requestCase{
				method: http.MethodPost,
				url:    RouteGroup + RegisterRoute,
				body:   t.body,
				token:  t.token,
			})
			s.Equal(t.wantStatus, status)
			if t.wantError != "" {
				s.Contains(string(body), t.wantError)
			}
		})
	}
}

func (s *HandlersTestSuite) TestRegisterSetsAuthorizationHeader() {
	email := strings.ToLower(gofakeit.Email())
	s.mockUser.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		Return(&domain.User{ID: 7, Email: email}, "jwt-token", nil).
		Times(1)

	reqBody, err := testutils.JSONBody(UserRegisterParams{Email: email, Password: "secret123", FullName: "Jane"})
	s.Require().NoError(err)
	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + RegisterRoute,
		Body:   reqBody,
	}, testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)

	s.Equal("Bearer jwt-token", res.Header.Get("Authorization"))
	var resBody struct {
		User UserResponse `json:"user"`
	}
	s.Require().NoError(testutils.DecodeBody(res, &resBody))
	s.Equal(int64(7), resBody.User.ID)
	s.Equal(email, resBody.User.Email)
}

func (s *HandlersTestSuite) TestLogin() {
	email := strings.ToLower(gofakeit.Email())

	s.mockUser.EXPECT().
		Login(gomock.Any(), email, "right-password").
		Return(&domain.User{ID: 1, Email: email}, "jwt-token", nil).
		Times(1)
	s.mockUser.EXPECT().
		Login(gomock.Any(), email, "wrong-password").
		Return(nil, "", domain.ErrPasswordMissMatch).
		Times(1)

	cases := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{
			name:       "all ok",
			body:       UserLoginParams{Email: email, Password: "right-password"},
			wantStatus: http.StatusOK,
		}, {
			name:       "wrong password",
			body:       UserLoginParams{Email: email, Password: "wrong-password"},
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "empty body",
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, _ := s.do(requestCase{method: http.MethodPost, url: RouteGroup + LoginRoute, body: t.body})
			s.Equal(t.wantStatus, status)
		})
	}
}

func (s *HandlersTestSuite) TestMe() {
	s.mockUser.EXPECT().GetByID(gomock.Any(), int64(3)).Return(&domain.User{ID: 3}, nil).Times(1)

	status, _ := s.do(requestCase{method: http.MethodGet, url: RouteGroup + MeRoute, token: s.token(3, domain.RoleCustomer)})
	s.Equal(http.StatusOK, status)

	status, _ = s.do(requestCase{method: http.MethodGet, url: RouteGroup + MeRoute, token: "garbage"})
	s.Equal(http.StatusUnauthorized, status)
}
