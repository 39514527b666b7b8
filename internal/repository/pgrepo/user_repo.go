package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

const userColumns = `id, created_at, updated_at, email, encrypted_password, full_name, role, referral_code, last_order_at`

type UserRepository struct {
	conn uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

// CreateUser создает юзера. При конфликте email или реферального кода возвращает domain.ErrDuplicateKey.
func (u *UserRepository) CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error) {
	row := u.conn.QueryRow(ctx,
		`INSERT INTO users (email, encrypted_password, full_name, role, referral_code)
		VALUES ($1, $2, $3, $4, $5) RETURNING `+userColumns,
		user.Email, user.Password, user.FullName, string(user.Role), user.ReferralCode,
	)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user")
	}
	return &dbUser, nil
}

func (u *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by email %s", email)
	}
	return &dbUser, nil
}

func (u *UserRepository) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return &dbUser, nil
}

func (u *UserRepository) FindUserByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by referral code %s", code)
	}
	return &dbUser, nil
}

// TouchLastOrder выставляет дату последнего заказа юзера.
func (u *UserRepository) TouchLastOrder(ctx context.Context, id int64) error {
	_, err := u.conn.Exec(ctx, `UPDATE users SET last_order_at = now(), updated_at = now() WHERE id = $1`, id)
	return convertErr(err, "touching last order of user %d", id)
}

func (u *UserRepository) SetRole(ctx context.Context, id int64, role domain.RoleType) error {
	tag, err := u.conn.Exec(ctx, `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`, id, string(role))
	if err != nil {
		return convertErr(err, "setting role of user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "setting role of user %d", id)
	}
	return nil
}

func (u *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := u.conn.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return 0, convertErr(err, "counting users")
	}
	return count, nil
}

// GetBySegment возвращает юзеров сегмента маркетинговой рассылки.
func (u *UserRepository) GetBySegment(
	ctx context.Context,
	segment domain.CampaignSegmentType,
) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	switch segment {
	case domain.CampaignSegmentCustomers:
		query += ` WHERE last_order_at IS NOT NULL`
	case domain.CampaignSegmentInactive:
		query += ` WHERE last_order_at IS NULL OR last_order_at < now() - interval '30 days'`
	case domain.CampaignSegmentAll:
	}
	rows, err := u.conn.Query(ctx, query+` ORDER BY id`)
	if err != nil {
		return nil, convertErr(err, "getting users of segment %s", segment)
	}
	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, convertErr(err, "scanning users of segment %s", segment)
	}
	return users, nil
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Email,
		&user.Password,
		&user.FullName,
		&role,
		&user.ReferralCode,
		&user.LastOrderAt,
	)
	user.Role = domain.RoleType(role)
	return user, err //nolint:wrapcheck
}
