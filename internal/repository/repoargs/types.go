package repoargs

type RepositoryName string

const (
	UserRepoName             RepositoryName = "user"
	WalletRepoName           RepositoryName = "wallet_transaction"
	CategoryRepoName         RepositoryName = "category"
	ProductRepoName          RepositoryName = "product"
	PriceChangeRepoName      RepositoryName = "price_change"
	WishlistRepoName         RepositoryName = "wishlist"
	CartRepoName             RepositoryName = "cart"
	OrderRepoName            RepositoryName = "order"
	PromoRepoName            RepositoryName = "promo"
	ReferralRepoName         RepositoryName = "referral"
	LoyaltyRepoName          RepositoryName = "loyalty_transaction"
	PostRepoName             RepositoryName = "post"
	PushSubscriptionRepoName RepositoryName = "push_subscription"
	CampaignRepoName         RepositoryName = "campaign"
)

// Page параметры постраничной выборки.
type Page struct {
	Limit  uint
	Offset uint
}

// NewPage формирует Page по номеру страницы (с 1) и размеру страницы.
func NewPage(page, perPage uint) Page {
	if page == 0 {
		page = 1
	}
	return Page{Limit: perPage, Offset: (page - 1) * perPage}
}
