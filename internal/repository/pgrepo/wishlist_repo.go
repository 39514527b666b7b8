package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

type WishlistRepository struct {
	conn uow.DBTX
}

func NewWishlistRepository(conn uow.DBTX) *WishlistRepository {
	return &WishlistRepository{conn: conn}
}

// Add добавляет товар в вишлист. Повторное добавление не является ошибкой.
func (w *WishlistRepository) Add(ctx context.Context, userID, productID int64) error {
	_, err := w.conn.Exec(ctx,
		`INSERT INTO wishlist_items (user_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, productID,
	)
	return convertErr(err, "adding product %d to wishlist of user %d", productID, userID)
}

func (w *WishlistRepository) Remove(ctx context.Context, userID, productID int64) error {
	_, err := w.conn.Exec(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	return convertErr(err, "removing product %d from wishlist of user %d", productID, userID)
}

// GetProducts возвращает товары вишлиста юзера, последние добавленные первыми.
func (w *WishlistRepository) GetProducts(ctx context.Context, userID int64) ([]domain.Product, error) {
	rows, err := w.conn.Query(ctx,
		`SELECT `+productColumns+` FROM wishlist_items w JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1 ORDER BY w.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting wishlist of user %d", userID)
	}
	products, err := collect(rows, scanProduct)
	if err != nil {
		return nil, convertErr(err, "scanning wishlist of user %d", userID)
	}
	return products, nil
}

// GetSubscribers возвращает юзеров, добавивших товар в вишлист.
func (w *WishlistRepository) GetSubscribers(ctx context.Context, productID int64) ([]domain.User, error) {
	rows, err := w.conn.Query(ctx,
		`SELECT u.id, u.created_at, u.updated_at, u.email, u.encrypted_password, u.full_name, u.role,
			u.referral_code, u.last_order_at
		FROM wishlist_items w JOIN users u ON u.id = w.user_id WHERE w.product_id = $1 ORDER BY u.id`,
		productID,
	)
	if err != nil {
		return nil, convertErr(err, "getting wishlist subscribers of product %d", productID)
	}
	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, convertErr(err, "scanning wishlist subscribers of product %d", productID)
	}
	return users, nil
}
