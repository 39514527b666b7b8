package pgrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

const productColumns = `p.id, p.created_at, p.updated_at, p.category_id, p.name, p.slug, p.description, p.price,
	p.unit, p.stock, p.image_url, p.is_active`

type ProductRepository struct {
	conn uow.DBTX
}

func NewProductRepository(conn uow.DBTX) *ProductRepository {
	return &ProductRepository{conn: conn}
}

// Search возвращает страницу товаров по фильтру и общее количество подходящих товаров.
func (p *ProductRepository) Search(ctx context.Context, filter repoargs.ProductFilter) ([]domain.Product, int64, error) {
	var qb queryBuilder
	from := ` FROM products p`
	if filter.CategorySlug != "" {
		from += ` JOIN categories c ON c.id = p.category_id`
		qb.where("c.slug = ?", filter.CategorySlug)
	}
	if filter.OnlyActive {
		qb.whereRaw("p.is_active")
	}
	if filter.InStockOnly {
		qb.whereRaw("p.stock > 0")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		qb.where("p.name ILIKE ?", "%"+escapeLike(q)+"%")
	}
	if filter.MinPrice.Valid {
		qb.where("p.price >= ?", filter.MinPrice.Decimal)
	}
	if filter.MaxPrice.Valid {
		qb.where("p.price <= ?", filter.MaxPrice.Decimal)
	}

	var total int64
	if err := p.conn.QueryRow(ctx, `SELECT count(*)`+from+qb.clause(), qb.args...).Scan(&total); err != nil {
		return nil, 0, convertErr(err, "counting products")
	}
	if total == 0 {
		return []domain.Product{}, 0, nil
	}

	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY %s LIMIT %s OFFSET %s`,
		productColumns, from, qb.clause(), productOrderBy(filter.Sort),
		qb.arg(int64(filter.Page.Limit)), qb.arg(int64(filter.Page.Offset)),
	)
	rows, err := p.conn.Query(ctx, query, qb.args...)
	if err != nil {
		return nil, 0, convertErr(err, "searching products")
	}
	products, err := collect(rows, scanProduct)
	if err != nil {
		return nil, 0, convertErr(err, "scanning products")
	}
	return products, total, nil
}

func (p *ProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	row := p.conn.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.slug = $1`, slug)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "finding product by slug `%s`", slug)
	}
	return &product, nil
}

func (p *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := p.conn.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "finding product by id %d", id)
	}
	return &product, nil
}

func (p *ProductRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	rows, err := p.conn.Query(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, convertErr(err, "finding products by ids")
	}
	products, err := collect(rows, scanProduct)
	if err != nil {
		return nil, convertErr(err, "scanning products by ids")
	}
	return products, nil
}

// GetRelated возвращает активные товары в наличии из категории товара slug, исключая сам товар.
func (p *ProductRepository) GetRelated(ctx context.Context, slug string, limit uint) ([]domain.Product, error) {
	rows, err := p.conn.Query(ctx,
		`SELECT `+productColumns+` FROM products p
		WHERE p.category_id = (SELECT category_id FROM products WHERE slug = $1)
			AND p.slug <> $1 AND p.is_active AND p.stock > 0
		ORDER BY p.created_at DESC LIMIT $2`,
		slug, int64(limit),
	)
	if err != nil {
		return nil, convertErr(err, "getting related products for `%s`", slug)
	}
	products, err := collect(rows, scanProduct)
	if err != nil {
		return nil, convertErr(err, "scanning related products for `%s`", slug)
	}
	return products, nil
}

func (p *ProductRepository) Create(ctx context.Context, args repoargs.ProductCreate) (*domain.Product, error) {
	row := p.conn.QueryRow(ctx,
		`INSERT INTO products AS p (category_id, name, slug, description, price, unit, stock, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+productColumns,
		args.CategoryID, args.Name, args.Slug, args.Description, args.Price, args.Unit, args.Stock, args.ImageURL,
	)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "creating product `%s`", args.Slug)
	}
	return &product, nil
}

// Update частично обновляет товар. Поля args со значением nil не изменяются.
func (p *ProductRepository) Update(ctx context.Context, id int64, args repoargs.ProductUpdate) (*domain.Product, error) {
	var qb queryBuilder
	sets := []string{"updated_at = now()"}
	set := func(column string, v any) {
		sets = append(sets, column+" = "+qb.arg(v))
	}
	if args.CategoryID != nil {
		set("category_id", *args.CategoryID)
	}
	if args.Name != nil {
		set("name", *args.Name)
	}
	if args.Description != nil {
		set("description", *args.Description)
	}
	if args.Price != nil {
		set("price", *args.Price)
	}
	if args.Unit != nil {
		set("unit", *args.Unit)
	}
	if args.ImageURL != nil {
		set("image_url", *args.ImageURL)
	}
	if args.IsActive != nil {
		set("is_active", *args.IsActive)
	}
	if args.Stock != nil {
		set("stock", *args.Stock)
	}
	query := fmt.Sprintf(`UPDATE products AS p SET %s WHERE p.id = %s RETURNING %s`,
		strings.Join(sets, ", "), qb.arg(id), productColumns)

	product, err := scanProduct(p.conn.QueryRow(ctx, query, qb.args...))
	if err != nil {
		return nil, convertErr(err, "updating product %d", id)
	}
	return &product, nil
}

// DecrementStock списывает quantity единиц товара со склада. Если остатка недостаточно, возвращает
// domain.ErrOutOfStock.
func (p *ProductRepository) DecrementStock(ctx context.Context, id int64, quantity int32) error {
	tag, err := p.conn.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`,
		id, quantity,
	)
	if err != nil {
		return convertErr(err, "decrementing stock of product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("[repository/decrementing stock of product %d] %w", id, domain.ErrOutOfStock)
	}
	return nil
}

func (p *ProductRepository) IncrementStock(ctx context.Context, id int64, quantity int32) error {
	_, err := p.conn.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	return convertErr(err, "incrementing stock of product %d", id)
}

// GetLowStock возвращает активные товары с остатком не выше threshold, начиная с наименьшего остатка.
func (p *ProductRepository) GetLowStock(ctx context.Context, threshold int32, limit uint) ([]domain.Product, error) {
	rows, err := p.conn.Query(ctx,
		`SELECT `+productColumns+` FROM products p WHERE p.is_active AND p.stock <= $1
		ORDER BY p.stock, p.id LIMIT $2`,
		threshold, int64(limit),
	)
	if err != nil {
		return nil, convertErr(err, "getting low stock products")
	}
	products, err := collect(rows, scanProduct)
	if err != nil {
		return nil, convertErr(err, "scanning low stock products")
	}
	return products, nil
}

func productOrderBy(sort repoargs.ProductSortType) string {
	switch sort {
	case repoargs.ProductSortPriceAsc:
		return "p.price ASC, p.id"
	case repoargs.ProductSortPriceDesc:
		return "p.price DESC, p.id"
	case repoargs.ProductSortName:
		return "p.name ASC, p.id"
	case repoargs.ProductSortNewest:
		return "p.created_at DESC, p.id DESC"
	default:
		return "p.created_at DESC, p.id DESC"
	}
}

// escapeLike экранирует спецсимволы шаблона LIKE.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CategoryID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.Unit,
		&p.Stock,
		&p.ImageURL,
		&p.IsActive,
	)
	return p, err //nolint:wrapcheck
}
