package service_test

import (
	"testing"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/internal/service"
	"github.com/fsdevblog/groph-grocer/internal/service/mocks"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-grocer/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlogService(t *testing.T) {
	ctrl := gomock.NewController(t)
	postRepo := mocks.NewMockPostRepository(ctrl)
	mockUOW := uowmocks.NewMockUOW(ctrl)
	mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.PostRepoName)).Return(postRepo, nil).AnyTimes()

	svc, err := service.NewBlogService(mockUOW)
	require.NoError(t, err)

	t.Run("published only listing", func(t *testing.T) {
		page := repoargs.NewPage(2, 10)
		postRepo.EXPECT().
			List(gomock.Any(), repoargs.PostFilter{Tag: "recipes", PublishedOnly: true, Page: page}).
			Return([]domain.Post{{ID: 1}}, nil)

		posts, listErr := svc.ListPublished(t.Context(), "recipes", page)
		require.NoError(t, listErr)
		assert.Len(t, posts, 1)
	})

	t.Run("draft is hidden", func(t *testing.T) {
		postRepo.EXPECT().FindBySlug(gomock.Any(), "draft").
			Return(&domain.Post{ID: 2, Slug: "draft", Status: domain.PostStatusDraft}, nil)

		_, getErr := svc.GetPublished(t.Context(), "draft")
		require.ErrorIs(t, getErr, domain.ErrRecordNotFound)
	})

	t.Run("published is visible", func(t *testing.T) {
		postRepo.EXPECT().FindBySlug(gomock.Any(), "spring-salads").
			Return(&domain.Post{ID: 3, Slug: "spring-salads", Status: domain.PostStatusPublished}, nil)

		post, getErr := svc.GetPublished(t.Context(), "spring-salads")
		require.NoError(t, getErr)
		assert.Equal(t, int64(3), post.ID)
	})
}
