package pgrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

const postColumns = `id, created_at, updated_at, author_id, title, slug, excerpt, body, cover_url, tags, status,
	published_at`

type PostRepository struct {
	conn uow.DBTX
}

func NewPostRepository(conn uow.DBTX) *PostRepository {
	return &PostRepository{conn: conn}
}

func (p *PostRepository) Create(ctx context.Context, args repoargs.PostCreate) (*domain.Post, error) {
	tags := args.Tags
	if tags == nil {
		tags = []string{}
	}
	row := p.conn.QueryRow(ctx,
		`INSERT INTO posts (author_id, title, slug, excerpt, body, cover_url, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+postColumns,
		args.AuthorID, args.Title, args.Slug, args.Excerpt, args.Body, args.CoverURL, tags,
	)
	post, err := scanPost(row)
	if err != nil {
		return nil, convertErr(err, "creating post `%s`", args.Slug)
	}
	return &post, nil
}

// Update частично обновляет пост. Поля args со значением nil не изменяются.
func (p *PostRepository) Update(ctx context.Context, id int64, args repoargs.PostUpdate) (*domain.Post, error) {
	var qb queryBuilder
	sets := []string{"updated_at = now()"}
	set := func(column string, v any) {
		sets = append(sets, column+" = "+qb.arg(v))
	}
	if args.Title != nil {
		set("title", *args.Title)
	}
	if args.Excerpt != nil {
		set("excerpt", *args.Excerpt)
	}
	if args.Body != nil {
		set("body", *args.Body)
	}
	if args.CoverURL != nil {
		set("cover_url", *args.CoverURL)
	}
	if args.Tags != nil {
		set("tags", args.Tags)
	}
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = %s RETURNING %s`,
		strings.Join(sets, ", "), qb.arg(id), postColumns)
	post, err := scanPost(p.conn.QueryRow(ctx, query, qb.args...))
	if err != nil {
		return nil, convertErr(err, "updating post %d", id)
	}
	return &post, nil
}

// Publish публикует пост. Дата первой публикации при повторном вызове не меняется.
func (p *PostRepository) Publish(ctx context.Context, id int64) (*domain.Post, error) {
	row := p.conn.QueryRow(ctx,
		`UPDATE posts SET status = 'published', published_at = COALESCE(published_at, now()), updated_at = now()
		WHERE id = $1 RETURNING `+postColumns,
		id,
	)
	post, err := scanPost(row)
	if err != nil {
		return nil, convertErr(err, "publishing post %d", id)
	}
	return &post, nil
}

func (p *PostRepository) Delete(ctx context.Context, id int64) error {
	tag, err := p.conn.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting post %d", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("[repository/deleting post %d] %w", id, domain.ErrRecordNotFound)
	}
	return nil
}

func (p *PostRepository) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	row := p.conn.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	post, err := scanPost(row)
	if err != nil {
		return nil, convertErr(err, "finding post `%s`", slug)
	}
	return &post, nil
}

func (p *PostRepository) List(ctx context.Context, filter repoargs.PostFilter) ([]domain.Post, error) {
	var qb queryBuilder
	if filter.PublishedOnly {
		qb.whereRaw("status = 'published'")
	}
	if filter.Tag != "" {
		qb.where("? = ANY(tags)", filter.Tag)
	}
	query := fmt.Sprintf(
		`SELECT %s FROM posts%s ORDER BY COALESCE(published_at, created_at) DESC, id DESC LIMIT %s OFFSET %s`,
		postColumns, qb.clause(), qb.arg(int64(filter.Page.Limit)), qb.arg(int64(filter.Page.Offset)),
	)
	rows, err := p.conn.Query(ctx, query, qb.args...)
	if err != nil {
		return nil, convertErr(err, "listing posts")
	}
	posts, err := collect(rows, scanPost)
	if err != nil {
		return nil, convertErr(err, "scanning posts")
	}
	return posts, nil
}

func scanPost(row rowScanner) (domain.Post, error) {
	var p domain.Post
	var status string
	err := row.Scan(
		&p.ID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.AuthorID,
		&p.Title,
		&p.Slug,
		&p.Excerpt,
		&p.Body,
		&p.CoverURL,
		&p.Tags,
		&status,
		&p.PublishedAt,
	)
	p.Status = domain.PostStatusType(status)
	return p, err //nolint:wrapcheck
}
