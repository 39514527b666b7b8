package pgrepo

import (
	"context"
	"strings"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

const promoColumns = `id, created_at, code, kind, value, min_order_amount, max_uses, used_count, starts_at,
	expires_at, is_active`

type PromoRepository struct {
	conn uow.DBTX
}

func NewPromoRepository(conn uow.DBTX) *PromoRepository {
	return &PromoRepository{conn: conn}
}

// FindByCode ищет промокод без учета регистра.
func (p *PromoRepository) FindByCode(ctx context.Context, code string) (*domain.Promo, error) {
	row := p.conn.QueryRow(ctx, `SELECT `+promoColumns+` FROM promos WHERE code = $1`, strings.ToUpper(code))
	promo, err := scanPromo(row)
	if err != nil {
		return nil, convertErr(err, "finding promo `%s`", code)
	}
	return &promo, nil
}

func (p *PromoRepository) Create(ctx context.Context, args repoargs.PromoCreate) (*domain.Promo, error) {
	row := p.conn.QueryRow(ctx,
		`INSERT INTO promos (code, kind, value, min_order_amount, max_uses, starts_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+promoColumns,
		strings.ToUpper(args.Code),
		string(args.Kind),
		args.Value,
		args.MinOrderAmount,
		args.MaxUses,
		args.StartsAt,
		args.ExpiresAt,
	)
	promo, err := scanPromo(row)
	if err != nil {
		return nil, convertErr(err, "creating promo `%s`", args.Code)
	}
	return &promo, nil
}

func (p *PromoRepository) List(ctx context.Context) ([]domain.Promo, error) {
	rows, err := p.conn.Query(ctx, `SELECT `+promoColumns+` FROM promos ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, convertErr(err, "listing promos")
	}
	promos, err := collect(rows, scanPromo)
	if err != nil {
		return nil, convertErr(err, "scanning promos")
	}
	return promos, nil
}

func (p *PromoRepository) SetActive(ctx context.Context, id int64, active bool) (*domain.Promo, error) {
	row := p.conn.QueryRow(ctx,
		`UPDATE promos SET is_active = $2 WHERE id = $1 RETURNING `+promoColumns,
		id, active,
	)
	promo, err := scanPromo(row)
	if err != nil {
		return nil, convertErr(err, "setting active=%t for promo %d", active, id)
	}
	return &promo, nil
}

// IncrementUsage увеличивает счетчик использований промокода. Если лимит использований исчерпан,
// возвращает domain.ErrRecordNotFound.
func (p *PromoRepository) IncrementUsage(ctx context.Context, id int64) error {
	var usedCount int32
	err := p.conn.QueryRow(ctx,
		`UPDATE promos SET used_count = used_count + 1
		WHERE id = $1 AND (max_uses = 0 OR used_count < max_uses) RETURNING used_count`,
		id,
	).Scan(&usedCount)
	return convertErr(err, "incrementing usage of promo %d", id)
}

func scanPromo(row rowScanner) (domain.Promo, error) {
	var p domain.Promo
	var kind string
	err := row.Scan(
		&p.ID,
		&p.CreatedAt,
		&p.Code,
		&kind,
		&p.Value,
		&p.MinOrderAmount,
		&p.MaxUses,
		&p.UsedCount,
		&p.StartsAt,
		&p.ExpiresAt,
		&p.IsActive,
	)
	p.Kind = domain.PromoKindType(kind)
	return p, err //nolint:wrapcheck
}
