package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/shopspring/decimal"
)

type WalletService struct {
	uow        uow.UOW
	walletRepo WalletRepository
	userRepo   UserRepository
}

func NewWalletService(u uow.UOW) (*WalletService, error) {
	walletRepo, err := uow.GetRepositoryAs[WalletRepository](u, uow.RepositoryName(repoargs.WalletRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	userRepo, err := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &WalletService{uow: u, walletRepo: walletRepo, userRepo: userRepo}, nil
}

type WalletBalance struct {
	Current decimal.Decimal
	Spent   decimal.Decimal
}

func newWalletBalance(agg *repoargs.BalanceAggregation) *WalletBalance {
	return &WalletBalance{
		Current: agg.DebitAmount.Sub(agg.CreditAmount),
		Spent:   agg.CreditAmount,
	}
}

// GetBalance возвращает текущий остаток кошелька и сумму всех списаний.
func (s *WalletService) GetBalance(ctx context.Context, userID int64) (*WalletBalance, error) {
	agg, err := s.walletRepo.GetUserBalance(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return newWalletBalance(agg), nil
}

func (s *WalletService) GetTransactions(
	ctx context.Context,
	userID int64,
	page repoargs.Page,
) ([]domain.WalletTransaction, error) {
	transactions, err := s.walletRepo.GetByUserID(ctx, userID, page)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}

// Adjust ручное пополнение или списание администратором. Положительная сумма зачисляется, отрицательная
// списывается, но не больше текущего остатка.
func (s *WalletService) Adjust(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
	reason domain.WalletReasonType,
) (*WalletBalance, error) {
	if amount.IsZero() {
		return nil, fmt.Errorf("adjusting wallet of user %d: zero amount: %w", userID, domain.ErrConstraint)
	}
	if _, err := s.userRepo.FindUserByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("adjusting wallet: %w", err)
	}

	var balance *WalletBalance
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		walletRepo, err := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
		if err != nil {
			return err //nolint:wrapcheck
		}
		if err = walletRepo.LockUser(c, userID); err != nil {
			return err //nolint:wrapcheck
		}
		if amount.IsPositive() {
			err = debitWallet(c, walletRepo, userID, nil, reason, amount)
		} else {
			err = creditWallet(c, walletRepo, userID, nil, reason, amount.Neg())
		}
		if err != nil {
			return err
		}
		agg, err := walletRepo.GetUserBalance(c, userID)
		if err != nil {
			return err //nolint:wrapcheck
		}
		balance = newWalletBalance(agg)
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("adjusting wallet of user %d: %w", userID, txErr)
	}
	return balance, nil
}

// debitWallet зачисляет amount на кошелек юзера.
func debitWallet(
	ctx context.Context,
	walletRepo WalletRepository,
	userID int64,
	orderID *int64,
	reason domain.WalletReasonType,
	amount decimal.Decimal,
) error {
	_, err := walletRepo.Create(ctx, repoargs.WalletTransactionCreate{
		UserID:    userID,
		OrderID:   orderID,
		Direction: domain.DirectionDebit,
		Reason:    reason,
		Amount:    amount,
	})
	return err //nolint:wrapcheck
}

// creditWallet списывает amount с кошелька юзера. Вызывающий код должен держать лок кошелька
// (WalletRepository.LockUser) в той же транзакции. Если средств недостаточно, возвращает
// domain.ErrNotEnoughBalance.
func creditWallet(
	ctx context.Context,
	walletRepo WalletRepository,
	userID int64,
	orderID *int64,
	reason domain.WalletReasonType,
	amount decimal.Decimal,
) error {
	agg, err := walletRepo.GetUserBalance(ctx, userID)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if agg.DebitAmount.Sub(agg.CreditAmount).LessThan(amount) {
		return domain.ErrNotEnoughBalance
	}
	_, err = walletRepo.Create(ctx, repoargs.WalletTransactionCreate{
		UserID:    userID,
		OrderID:   orderID,
		Direction: domain.DirectionCredit,
		Reason:    reason,
		Amount:    amount,
	})
	return err //nolint:wrapcheck
}
