package app

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fsdevblog/groph-grocer/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

// repositoryFactories фабрики всех репозиториев, доступных через unit of work.
func repositoryFactories() map[repoargs.RepositoryName]uow.RepositoryFactory {
	return map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.WalletRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewWalletRepository(dbtx)
		},
		repoargs.CategoryRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCategoryRepository(dbtx)
		},
		repoargs.ProductRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewProductRepository(dbtx)
		},
		repoargs.PriceChangeRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewPriceChangeRepository(dbtx)
		},
		repoargs.WishlistRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewWishlistRepository(dbtx)
		},
		repoargs.CartRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCartRepository(dbtx)
		},
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
		repoargs.PromoRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewPromoRepository(dbtx)
		},
		repoargs.ReferralRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewReferralRepository(dbtx)
		},
		repoargs.LoyaltyRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewLoyaltyRepository(dbtx)
		},
		repoargs.PostRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewPostRepository(dbtx)
		},
		repoargs.PushSubscriptionRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewPushSubscriptionRepository(dbtx)
		},
		repoargs.CampaignRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCampaignRepository(dbtx)
		},
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	for name, factory := range repositoryFactories() {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factory); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}
	return unitOfWork, nil
}
