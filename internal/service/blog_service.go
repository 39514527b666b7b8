package service

import (
	"context"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

type BlogService struct {
	postRepo PostRepository
}

func NewBlogService(u uow.UOW) (*BlogService, error) {
	postRepo, err := uow.GetRepositoryAs[PostRepository](u, uow.RepositoryName(repoargs.PostRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &BlogService{postRepo: postRepo}, nil
}

// ListPublished возвращает опубликованные посты, начиная с новых.
func (s *BlogService) ListPublished(ctx context.Context, tag string, page repoargs.Page) ([]domain.Post, error) {
	return s.List(ctx, repoargs.PostFilter{Tag: tag, PublishedOnly: true, Page: page})
}

func (s *BlogService) List(ctx context.Context, filter repoargs.PostFilter) ([]domain.Post, error) {
	posts, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return posts, nil
}

// GetPublished возвращает опубликованный пост. Черновик считается отсутствующим.
func (s *BlogService) GetPublished(ctx context.Context, slug string) (*domain.Post, error) {
	post, err := s.postRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if post.Status != domain.PostStatusPublished {
		return nil, domain.ErrRecordNotFound
	}
	return post, nil
}

func (s *BlogService) Create(ctx context.Context, args repoargs.PostCreate) (*domain.Post, error) {
	post, err := s.postRepo.Create(ctx, args)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return post, nil
}

func (s *BlogService) Update(ctx context.Context, id int64, args repoargs.PostUpdate) (*domain.Post, error) {
	post, err := s.postRepo.Update(ctx, id, args)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return post, nil
}

func (s *BlogService) Publish(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.postRepo.Publish(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return post, nil
}

func (s *BlogService) Delete(ctx context.Context, id int64) error {
	return s.postRepo.Delete(ctx, id) //nolint:wrapcheck
}
