package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

const pushSubscriptionColumns = `id, created_at, user_id, endpoint, p256dh, auth`

type PushSubscriptionRepository struct {
	conn uow.DBTX
}

func NewPushSubscriptionRepository(conn uow.DBTX) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{conn: conn}
}

// Upsert сохраняет подписку. Endpoint уникален, при повторной регистрации ключи и владелец обновляются.
func (p *PushSubscriptionRepository) Upsert(
	ctx context.Context,
	args repoargs.PushSubscriptionCreate,
) (*domain.PushSubscription, error) {
	row := p.conn.QueryRow(ctx,
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth) VALUES ($1, $2, $3, $4)
		ON CONFLICT (endpoint) DO UPDATE SET user_id = EXCLUDED.user_id, p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth
		RETURNING `+pushSubscriptionColumns,
		args.UserID, args.Endpoint, args.P256dh, args.Auth,
	)
	sub, err := scanPushSubscription(row)
	if err != nil {
		return nil, convertErr(err, "saving push subscription of user %d", args.UserID)
	}
	return &sub, nil
}

// DeleteByEndpoint удаляет подписку. Если userID не равен нулю, удаляется только подписка этого юзера.
func (p *PushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID int64, endpoint string) error {
	_, err := p.conn.Exec(ctx,
		`DELETE FROM push_subscriptions WHERE endpoint = $1 AND ($2::bigint = 0 OR user_id = $2)`,
		endpoint, userID,
	)
	return convertErr(err, "deleting push subscription")
}

func (p *PushSubscriptionRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.PushSubscription, error) {
	rows, err := p.conn.Query(ctx,
		`SELECT `+pushSubscriptionColumns+` FROM push_subscriptions WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting push subscriptions of user %d", userID)
	}
	subs, err := collect(rows, scanPushSubscription)
	if err != nil {
		return nil, convertErr(err, "scanning push subscriptions of user %d", userID)
	}
	return subs, nil
}

func scanPushSubscription(row rowScanner) (domain.PushSubscription, error) {
	var s domain.PushSubscription
	err := row.Scan(&s.ID, &s.CreatedAt, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth)
	return s, err //nolint:wrapcheck
}
