package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

const categoryColumns = `id, created_at, name, slug, sort_order`

type CategoryRepository struct {
	conn uow.DBTX
}

func NewCategoryRepository(conn uow.DBTX) *CategoryRepository {
	return &CategoryRepository{conn: conn}
}

func (c *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := c.conn.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, convertErr(err, "listing categories")
	}
	categories, err := collect(rows, scanCategory)
	if err != nil {
		return nil, convertErr(err, "scanning categories")
	}
	return categories, nil
}

func (c *CategoryRepository) Create(ctx context.Context, args repoargs.CategoryCreate) (*domain.Category, error) {
	row := c.conn.QueryRow(ctx,
		`INSERT INTO categories (name, slug, sort_order) VALUES ($1, $2, $3) RETURNING `+categoryColumns,
		args.Name, args.Slug, args.SortOrder,
	)
	category, err := scanCategory(row)
	if err != nil {
		return nil, convertErr(err, "creating category `%s`", args.Slug)
	}
	return &category, nil
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.CreatedAt, &c.Name, &c.Slug, &c.SortOrder)
	return c, err //nolint:wrapcheck
}
