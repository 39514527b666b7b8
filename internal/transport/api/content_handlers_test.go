package api

import (
	"context"
	"net/http"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
)

func (s *HandlersTestSuite) TestBlogPublic() {
	published := time.Now().Add(-time.Hour)
	post := &domain.Post{
		ID:          1,
		Title:       "Seasonal vegetables",
		Slug:        "seasonal-vegetables",
		Body:        "Full text",
		Status:      domain.PostStatusPublished,
		PublishedAt: &published,
	}

	s.mockBlog.EXPECT().
		ListPublished(gomock.Any(), "recipes", repoargs.NewPage(1, 20)).
		Return([]domain.Post{*post}, nil).Times(1)
	s.mockBlog.EXPECT().GetPublished(gomock.Any(), "seasonal-vegetables").Return(post, nil).Times(1)
	s.mockBlog.EXPECT().GetPublished(gomock.Any(), "draft-post").Return(nil, domain.ErrRecordNotFound).Times(1)

	status, body := s.do(requestCase{method: http.MethodGet, url: "/api/posts?tag=recipes"})
	s.Equal(http.StatusOK, status)
	s.NotContains(string(body), "Full text")

	status, body = s.do(requestCase{method: http.MethodGet, url: "/api/posts/seasonal-vegetables"})
	s.Equal(http.StatusOK, status)
	s.Contains(string(body), "Full text")

	status, _ = s.do(requestCase{method: http.MethodGet, url: "/api/posts/draft-post"})
	s.Equal(http.StatusNotFound, status)
}

func (s *HandlersTestSuite) TestBlogAdmin() {
	var adminID int64 = 100
	token := s.token(adminID, domain.RoleAdmin)

	s.mockBlog.EXPECT().
		Create(gomock.Any(), repoargs.PostCreate{
			AuthorID: adminID,
			Title:    "Hello",
			Slug:     "hello-world",
			Body:     "Body",
			Tags:     []string{"news"},
		}).
		Return(&domain.Post{ID: 1, Slug: "hello-world", Status: domain.PostStatusDraft}, nil).Times(1)
	s.mockBlog.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDuplicateKey).Times(1)
	s.mockBlog.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil).Times(1)

	cases := []struct {
		name       string
		body       PostCreateParams
		wantStatus int
	}{
		{
			name:       "all ok",
			body:       PostCreateParams{Title: "Hello", Slug: "hello-world", Body: "Body", Tags: []string{"news"}},
			wantStatus: http.StatusCreated,
		}, {
			name:       "bad slug",
			body:       PostCreateParams{Title: "Hello", Slug: "Hello World", Body: "Body"},
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "duplicate slug",
			body:       PostCreateParams{Title: "Hello", Slug: "hello-world", Body: "Body"},
			wantStatus: http.StatusConflict,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, _ := s.do(requestCase{
				method: http.MethodPost,
				url:    RouteGroup + AdminPostsRoute,
				body:   t.body,
				token:  token,
			})
			s.Equal(t.wantStatus, status)
		})
	}

	status, _ := s.do(requestCase{method: http.MethodDelete, url: "/api/admin/posts/1", token: token})
	s.Equal(http.StatusNoContent, status)
}

func (s *HandlersTestSuite) TestCampaigns() {
	token := s.token(100, domain.RoleAdmin)

	s.mockCampaign.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CampaignCreate) (*domain.Campaign, error) {
			s.Equal(domain.CampaignChannelPush, args.Channel)
			s.Equal(domain.CampaignSegmentInactive, args.Segment)
			return &domain.Campaign{ID: 1, Title: args.Title, Status: domain.CampaignStatusDraft}, nil
		}).Times(1)
	s.mockCampaign.EXPECT().
		Send(gomock.Any(), int64(1)).
		Return(nil, domain.ErrCampaignAlreadySent).Times(1)

	status, _ := s.do(requestCase{
		method: http.MethodPost,
		url:    RouteGroup + AdminCampaignsRoute,
		body: CampaignCreateParams{
			Title:   "We miss you",
			Body:    "Come back for 10% off",
			Channel: domain.CampaignChannelPush,
			Segment: domain.CampaignSegmentInactive,
		},
		token: token,
	})
	s.Equal(http.StatusCreated, status)

	status, _ = s.do(requestCase{
		method: http.MethodPost,
		url:    RouteGroup + AdminCampaignsRoute,
		body:   map[string]string{"title": "x", "body": "y", "channel": "sms", "segment": "all"},
		token:  token,
	})
	s.Equal(http.StatusUnprocessableEntity, status)

	status, _ = s.do(requestCase{method: http.MethodPost, url: "/api/admin/campaigns/1/send", token: token})
	s.Equal(http.StatusConflict, status)
}
