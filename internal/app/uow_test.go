package app

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/internal/service"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
)

func TestInitUOW_RegistersEveryRepository(t *testing.T) {
	factories := repositoryFactories()
	for _, name := range []repoargs.RepositoryName{
		repoargs.UserRepoName,
		repoargs.WalletRepoName,
		repoargs.CategoryRepoName,
		repoargs.ProductRepoName,
		repoargs.PriceChangeRepoName,
		repoargs.WishlistRepoName,
		repoargs.CartRepoName,
		repoargs.OrderRepoName,
		repoargs.PromoRepoName,
		repoargs.ReferralRepoName,
		repoargs.LoyaltyRepoName,
		repoargs.PostRepoName,
		repoargs.PushSubscriptionRepoName,
		repoargs.CampaignRepoName,
	} {
		assert.Contains(t, factories, name)
	}

	// пул без соединений: фабрикам соединение не нужно до первого запроса.
	unitOfWork, err := initUOW(nil)
	require.NoError(t, err)

	repo, err := unitOfWork.GetRepository(uow.RepositoryName(repoargs.OrderRepoName))
	require.NoError(t, err)
	assert.NotNil(t, repo)
}

// Репозитории pgrepo должны удовлетворять интерфейсам сервисного слоя, иначе фабрика вернет
// ErrInvalidRepositoryType.
func TestServiceFactory_WithPostgresRepositories(t *testing.T) {
	unitOfWork, err := initUOW(nil)
	require.NoError(t, err)

	services, err := service.Factory(unitOfWork, service.Deps{Logger: logrus.New()})
	require.NoError(t, err)
	assert.NotNil(t, services.OrderService)
	assert.NotNil(t, services.DashboardService)
}
