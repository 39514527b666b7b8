package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

const walletTransactionColumns = `id, created_at, user_id, order_id, direction, reason, amount`

type WalletRepository struct {
	conn uow.DBTX
}

func NewWalletRepository(conn uow.DBTX) *WalletRepository {
	return &WalletRepository{conn: conn}
}

// LockUser берет транзакционный advisory лок на кошелек юзера. Лок снимается по завершении транзакции,
// поэтому вызывать имеет смысл только внутри uow.Do.
func (w *WalletRepository) LockUser(ctx context.Context, userID int64) error {
	_, err := w.conn.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID)
	return convertErr(err, "locking wallet of user %d", userID)
}

func (w *WalletRepository) Create(
	ctx context.Context,
	transaction repoargs.WalletTransactionCreate,
) (*domain.WalletTransaction, error) {
	row := w.conn.QueryRow(ctx,
		`INSERT INTO wallet_transactions (user_id, order_id, direction, reason, amount)
		VALUES ($1, $2, $3, $4, $5) RETURNING `+walletTransactionColumns,
		transaction.UserID,
		transaction.OrderID,
		string(transaction.Direction),
		string(transaction.Reason),
		transaction.Amount,
	)
	created, err := scanWalletTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating wallet transaction for user %d", transaction.UserID)
	}
	return &created, nil
}

func (w *WalletRepository) GetUserBalance(ctx context.Context, userID int64) (*repoargs.BalanceAggregation, error) {
	var agg repoargs.BalanceAggregation
	err := w.conn.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0)
		FROM wallet_transactions WHERE user_id = $1`,
		userID,
	).Scan(&agg.DebitAmount, &agg.CreditAmount)
	if err != nil {
		return nil, convertErr(err, "getting balance sum by userID %d", userID)
	}
	return &agg, nil
}

// GetByUserID возвращает операции юзера, отсортированные по дате создания по убыванию.
func (w *WalletRepository) GetByUserID(
	ctx context.Context,
	userID int64,
	page repoargs.Page,
) ([]domain.WalletTransaction, error) {
	rows, err := w.conn.Query(ctx,
		`SELECT `+walletTransactionColumns+` FROM wallet_transactions
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, int64(page.Limit), int64(page.Offset),
	)
	if err != nil {
		return nil, convertErr(err, "getting wallet transactions of user %d", userID)
	}
	transactions, err := collect(rows, scanWalletTransaction)
	if err != nil {
		return nil, convertErr(err, "scanning wallet transactions of user %d", userID)
	}
	return transactions, nil
}

// FindOrderPayment возвращает операцию оплаты заказа.
func (w *WalletRepository) FindOrderPayment(ctx context.Context, orderID int64) (*domain.WalletTransaction, error) {
	row := w.conn.QueryRow(ctx,
		`SELECT `+walletTransactionColumns+` FROM wallet_transactions WHERE order_id = $1 AND reason = $2`,
		orderID, string(domain.WalletReasonOrderPayment),
	)
	payment, err := scanWalletTransaction(row)
	if err != nil {
		return nil, convertErr(err, "finding payment of order %d", orderID)
	}
	return &payment, nil
}

func scanWalletTransaction(row rowScanner) (domain.WalletTransaction, error) {
	var t domain.WalletTransaction
	var direction, reason string
	err := row.Scan(&t.ID, &t.CreatedAt, &t.UserID, &t.OrderID, &direction, &reason, &t.Amount)
	t.Direction = domain.DirectionType(direction)
	t.Reason = domain.WalletReasonType(reason)
	return t, err //nolint:wrapcheck
}
