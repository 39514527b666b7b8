package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
)

type BlogHandler struct {
	svs BlogServicer
}

func NewBlogHandler(svs BlogServicer) *BlogHandler {
	return &BlogHandler{svs: svs}
}

type PostListParams struct {
	PageParams
	Tag string `binding:"omitempty,max=50" form:"tag"`
}

// Index GET RouteGroup + PostsRoute. Только опубликованные посты, новые первыми.
func (h *BlogHandler) Index(c *gin.Context) {
	var params PostListParams
	if !bindQuery(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	posts, err := h.svs.ListPublished(ctx, params.Tag, params.toPage())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostsResponse(posts))
}

// Show GET RouteGroup + PostRoute.
func (h *BlogHandler) Show(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	post, err := h.svs.GetPublished(ctx, c.Param("slug"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostResponse(post, true))
}

// AdminIndex GET RouteGroup + AdminPostsRoute. Все посты, включая черновики.
func (h *BlogHandler) AdminIndex(c *gin.Context) {
	var params PostListParams
	if !bindQuery(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	posts, err := h.svs.List(ctx, repoargs.PostFilter{Tag: params.Tag, Page: params.toPage()})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostsResponse(posts))
}

type PostCreateParams struct {
	Title    string   `binding:"required,max=200"           json:"title"`
	Slug     string   `binding:"required,slug,max=200"      json:"slug"`
	Excerpt  string   `binding:"max=500"                    json:"excerpt"`
	Body     string   `binding:"required"                   json:"body"`
	CoverURL string   `binding:"omitempty,url,max=500"      json:"cover_url"`
	Tags     []string `binding:"max=10,dive,required,max=50" json:"tags"`
}

// Create POST RouteGroup + AdminPostsRoute. Пост создается черновиком.
func (h *BlogHandler) Create(c *gin.Context) {
	var params PostCreateParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	post, err := h.svs.Create(ctx, repoargs.PostCreate{
		AuthorID: getUserIDFromContext(c),
		Title:    params.Title,
		Slug:     params.Slug,
		Excerpt:  params.Excerpt,
		Body:     params.Body,
		CoverURL: params.CoverURL,
		Tags:     params.Tags,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPostResponse(post, true))
}

type PostUpdateParams struct {
	Title    *string  `binding:"omitempty,min=1,max=200"    json:"title"`
	Excerpt  *string  `binding:"omitempty,max=500"          json:"excerpt"`
	Body     *string  `binding:"omitempty,min=1"            json:"body"`
	CoverURL *string  `binding:"omitempty,max=500"          json:"cover_url"`
	Tags     []string `binding:"max=10,dive,required,max=50" json:"tags"`
}

// Update PATCH RouteGroup + AdminPostRoute.
func (h *BlogHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var params PostUpdateParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	post, err := h.svs.Update(ctx, id, repoargs.PostUpdate{
		Title:    params.Title,
		Excerpt:  params.Excerpt,
		Body:     params.Body,
		CoverURL: params.CoverURL,
		Tags:     params.Tags,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostResponse(post, true))
}

// Publish POST RouteGroup + AdminPostPublishRoute. Повторная публикация сохраняет исходную дату.
func (h *BlogHandler) Publish(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	post, err := h.svs.Publish(ctx, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostResponse(post, true))
}

// Delete DELETE RouteGroup + AdminPostRoute.
func (h *BlogHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.svs.Delete(ctx, id); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.AbortWithStatus(http.StatusNoContent)
}
