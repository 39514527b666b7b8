package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

type CartRepository struct {
	conn uow.DBTX
}

func NewCartRepository(conn uow.DBTX) *CartRepository {
	return &CartRepository{conn: conn}
}

// GetLines возвращает позиции корзины вместе с актуальными данными товаров.
func (c *CartRepository) GetLines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	rows, err := c.conn.Query(ctx,
		`SELECT `+productColumns+`, ci.quantity FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1 ORDER BY ci.updated_at, p.id`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting cart of user %d", userID)
	}
	lines, err := collect(rows, scanCartLine)
	if err != nil {
		return nil, convertErr(err, "scanning cart of user %d", userID)
	}
	return lines, nil
}

// SetQuantity выставляет количество товара в корзине, добавляя позицию при необходимости.
func (c *CartRepository) SetQuantity(ctx context.Context, userID, productID int64, quantity int32) error {
	_, err := c.conn.Exec(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`,
		userID, productID, quantity,
	)
	return convertErr(err, "setting quantity of product %d in cart of user %d", productID, userID)
}

func (c *CartRepository) Remove(ctx context.Context, userID, productID int64) error {
	_, err := c.conn.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	return convertErr(err, "removing product %d from cart of user %d", productID, userID)
}

func (c *CartRepository) Clear(ctx context.Context, userID int64) error {
	_, err := c.conn.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return convertErr(err, "clearing cart of user %d", userID)
}

func scanCartLine(row rowScanner) (domain.CartLine, error) {
	var l domain.CartLine
	p := &l.Product
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
		&l.Quantity,
	)
	return l, err //nolint:wrapcheck
}
