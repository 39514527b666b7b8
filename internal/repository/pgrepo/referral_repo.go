package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/shopspring/decimal"
)

const referralColumns = `id, created_at, referrer_id, referee_id, status, reward, rewarded_at`

type ReferralRepository struct {
	conn uow.DBTX
}

func NewReferralRepository(conn uow.DBTX) *ReferralRepository {
	return &ReferralRepository{conn: conn}
}

func (r *ReferralRepository) Create(ctx context.Context, referrerID, refereeID int64) (*domain.Referral, error) {
	row := r.conn.QueryRow(ctx,
		`INSERT INTO referrals (referrer_id, referee_id) VALUES ($1, $2) RETURNING `+referralColumns,
		referrerID, refereeID,
	)
	referral, err := scanReferral(row)
	if err != nil {
		return nil, convertErr(err, "creating referral %d -> %d", referrerID, refereeID)
	}
	return &referral, nil
}

// FindPendingByReferee возвращает неоплаченное приглашение юзера, блокируя его до конца транзакции.
func (r *ReferralRepository) FindPendingByReferee(ctx context.Context, refereeID int64) (*domain.Referral, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+referralColumns+` FROM referrals WHERE referee_id = $1 AND status = 'pending' FOR UPDATE`,
		refereeID,
	)
	referral, err := scanReferral(row)
	if err != nil {
		return nil, convertErr(err, "finding pending referral of user %d", refereeID)
	}
	return &referral, nil
}

func (r *ReferralRepository) MarkRewarded(ctx context.Context, id int64, reward decimal.Decimal) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE referrals SET status = 'rewarded', reward = $2, rewarded_at = now() WHERE id = $1`,
		id, reward,
	)
	return convertErr(err, "marking referral %d rewarded", id)
}

// GetStats возвращает статистику приглашений юзера.
func (r *ReferralRepository) GetStats(ctx context.Context, referrerID int64) (*repoargs.ReferralStats, error) {
	var stats repoargs.ReferralStats
	err := r.conn.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE status = 'rewarded'), COALESCE(SUM(reward), 0)
		FROM referrals WHERE referrer_id = $1`,
		referrerID,
	).Scan(&stats.Invited, &stats.Rewarded, &stats.Earned)
	if err != nil {
		return nil, convertErr(err, "getting referral stats of user %d", referrerID)
	}
	return &stats, nil
}

func scanReferral(row rowScanner) (domain.Referral, error) {
	var r domain.Referral
	var status string
	err := row.Scan(&r.ID, &r.CreatedAt, &r.ReferrerID, &r.RefereeID, &status, &r.Reward, &r.RewardedAt)
	r.Status = domain.ReferralStatusType(status)
	return r, err //nolint:wrapcheck
}
