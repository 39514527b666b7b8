package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

type LoyaltyRepository struct {
	conn uow.DBTX
}

func NewLoyaltyRepository(conn uow.DBTX) *LoyaltyRepository {
	return &LoyaltyRepository{conn: conn}
}

func (l *LoyaltyRepository) Create(
	ctx context.Context,
	args repoargs.LoyaltyTransactionCreate,
) (*domain.LoyaltyTransaction, error) {
	var t domain.LoyaltyTransaction
	var direction string
	err := l.conn.QueryRow(ctx,
		`INSERT INTO loyalty_transactions (user_id, order_id, direction, points)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at, user_id, order_id, direction, points`,
		args.UserID, args.OrderID, string(args.Direction), args.Points,
	).Scan(&t.ID, &t.CreatedAt, &t.UserID, &t.OrderID, &direction, &t.Points)
	if err != nil {
		return nil, convertErr(err, "creating loyalty transaction for user %d", args.UserID)
	}
	t.Direction = domain.DirectionType(direction)
	return &t, nil
}

// GetPoints возвращает текущий остаток баллов юзера.
func (l *LoyaltyRepository) GetPoints(ctx context.Context, userID int64) (int64, error) {
	var points int64
	err := l.conn.QueryRow(ctx,
		`SELECT COALESCE(SUM(CASE WHEN direction = 'debit' THEN points ELSE -points END), 0)
		FROM loyalty_transactions WHERE user_id = $1`,
		userID,
	).Scan(&points)
	if err != nil {
		return 0, convertErr(err, "getting loyalty points of user %d", userID)
	}
	return points, nil
}
