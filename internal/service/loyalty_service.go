package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/shopspring/decimal"
)

const MinRedeemPoints int64 = 100

type LoyaltyService struct {
	uow          uow.UOW
	loyaltyRepo  LoyaltyRepository
	referralRepo ReferralRepository
	userRepo     UserRepository
	redeemRate   decimal.Decimal
}

// NewLoyaltyService redeemRate - стоимость одного балла при обмене на деньги кошелька.
func NewLoyaltyService(u uow.UOW, redeemRate decimal.Decimal) (*LoyaltyService, error) {
	loyaltyRepo, err := uow.GetRepositoryAs[LoyaltyRepository](u, uow.RepositoryName(repoargs.LoyaltyRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	referralRepo, err := uow.GetRepositoryAs[ReferralRepository](u, uow.RepositoryName(repoargs.ReferralRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	userRepo, err := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &LoyaltyService{
		uow:          u,
		loyaltyRepo:  loyaltyRepo,
		referralRepo: referralRepo,
		userRepo:     userRepo,
		redeemRate:   redeemRate,
	}, nil
}

type LoyaltySummary struct {
	Points       int64
	ReferralCode string
	Invited      int64
	Rewarded     int64
	Earned       decimal.Decimal
}

func (s *LoyaltyService) Summary(ctx context.Context, userID int64) (*LoyaltySummary, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	points, err := s.loyaltyRepo.GetPoints(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	stats, err := s.referralRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &LoyaltySummary{
		Points:       points,
		ReferralCode: user.ReferralCode,
		Invited:      stats.Invited,
		Rewarded:     stats.Rewarded,
		Earned:       stats.Earned,
	}, nil
}

type RedeemResult struct {
	Points int64
	Amount decimal.Decimal
}

// Redeem обменивает баллы на деньги кошелька по курсу redeemRate.
//
// Ошибки: domain.ErrRedeemBelowMinimum если points меньше MinRedeemPoints, domain.ErrNotEnoughPoints если
// баллов недостаточно.
func (s *LoyaltyService) Redeem(ctx context.Context, userID int64, points int64) (*RedeemResult, error) {
	if points < MinRedeemPoints {
		return nil, fmt.Errorf("redeeming %d points: %w", points, domain.ErrRedeemBelowMinimum)
	}
	amount := roundMoney(decimal.NewFromInt(points).Mul(s.redeemRate))
	if !amount.IsPositive() {
		return nil, fmt.Errorf("redeeming %d points: zero amount: %w", points, domain.ErrConstraint)
	}

	var left int64
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		walletRepo, err := uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName))
		if err != nil {
			return err //nolint:wrapcheck
		}
		loyaltyRepo, err := uow.GetAs[LoyaltyRepository](tx, uow.RepositoryName(repoargs.LoyaltyRepoName))
		if err != nil {
			return err //nolint:wrapcheck
		}
		if err = walletRepo.LockUser(c, userID); err != nil {
			return err //nolint:wrapcheck
		}
		owned, err := loyaltyRepo.GetPoints(c, userID)
		if err != nil {
			return err //nolint:wrapcheck
		}
		if owned < points {
			return domain.ErrNotEnoughPoints
		}
		if _, err = loyaltyRepo.Create(c, repoargs.LoyaltyTransactionCreate{
			UserID:    userID,
			Direction: domain.DirectionCredit,
			Points:    points,
		}); err != nil {
			return err //nolint:wrapcheck
		}
		left = owned - points
		return debitWallet(c, walletRepo, userID, nil, domain.WalletReasonLoyaltyRedeem, amount)
	})
	if txErr != nil {
		return nil, fmt.Errorf("redeeming %d points: %w", points, txErr)
	}
	return &RedeemResult{Points: left, Amount: amount}, nil
}
