package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

const priceChangeColumns = `id, created_at, product_id, old_price, new_price, notified_at`

type PriceChangeRepository struct {
	conn uow.DBTX
}

func NewPriceChangeRepository(conn uow.DBTX) *PriceChangeRepository {
	return &PriceChangeRepository{conn: conn}
}

func (p *PriceChangeRepository) Create(ctx context.Context, args repoargs.PriceChangeCreate) (*domain.PriceChange, error) {
	row := p.conn.QueryRow(ctx,
		`INSERT INTO price_changes (product_id, old_price, new_price) VALUES ($1, $2, $3)
		RETURNING `+priceChangeColumns,
		args.ProductID, args.OldPrice, args.NewPrice,
	)
	change, err := scanPriceChange(row)
	if err != nil {
		return nil, convertErr(err, "creating price change for product %d", args.ProductID)
	}
	return &change, nil
}

// GetPending возвращает изменения цен, по которым еще не разосланы уведомления, начиная со старых.
func (p *PriceChangeRepository) GetPending(ctx context.Context, limit uint) ([]domain.PriceChange, error) {
	rows, err := p.conn.Query(ctx,
		`SELECT `+priceChangeColumns+` FROM price_changes WHERE notified_at IS NULL
		ORDER BY created_at LIMIT $1`,
		int64(limit),
	)
	if err != nil {
		return nil, convertErr(err, "getting pending price changes")
	}
	changes, err := collect(rows, scanPriceChange)
	if err != nil {
		return nil, convertErr(err, "scanning pending price changes")
	}
	return changes, nil
}

func (p *PriceChangeRepository) MarkNotified(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := p.conn.Exec(ctx, `UPDATE price_changes SET notified_at = now() WHERE id = ANY($1)`, ids)
	return convertErr(err, "marking price changes notified")
}

func scanPriceChange(row rowScanner) (domain.PriceChange, error) {
	var c domain.PriceChange
	err := row.Scan(&c.ID, &c.CreatedAt, &c.ProductID, &c.OldPrice, &c.NewPrice, &c.NotifiedAt)
	return c, err //nolint:wrapcheck
}
