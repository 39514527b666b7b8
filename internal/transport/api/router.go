package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-grocer/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	HealthRoute  = "/health"
	MetricsRoute = "/metrics"

	RouteGroup    = "/api"
	RegisterRoute = "/user/register"
	LoginRoute    = "/user/login"
	MeRoute       = "/user/me"

	CategoriesRoute = "/categories"
	ProductsRoute   = "/products"
	ProductRoute    = "/products/:slug"
	PostsRoute      = "/posts"
	PostRoute       = "/posts/:slug"

	WishlistRoute           = "/user/wishlist"
	WishlistItemRoute       = "/user/wishlist/:product_id"
	CartRoute               = "/user/cart"
	CartItemRoute           = "/user/cart/items/:product_id"
	CartMergeRoute          = "/user/cart/merge"
	OrdersRoute             = "/user/orders"
	OrderRoute              = "/user/orders/:id"
	OrderCancelRoute        = "/user/orders/:id/cancel"
	WalletRoute             = "/user/wallet"
	WalletTransactionsRoute = "/user/wallet/transactions"
	LoyaltyRoute            = "/user/loyalty"
	LoyaltyRedeemRoute      = "/user/loyalty/redeem"
	PromoValidateRoute      = "/promo/validate"
	PushSubscriptionsRoute  = "/user/push/subscriptions"

	AdminCategoriesRoute   = "/admin/categories"
	AdminProductsRoute     = "/admin/products"
	AdminProductRoute      = "/admin/products/:id"
	AdminProductStockRoute = "/admin/products/:id/stock"
	AdminOrdersRoute       = "/admin/orders"
	AdminOrderStatusRoute  = "/admin/orders/:id/status"
	AdminUserWalletRoute   = "/admin/users/:id/wallet"
	AdminPromosRoute       = "/admin/promos"
	AdminPromoRoute        = "/admin/promos/:id"
	AdminPostsRoute        = "/admin/posts"
	AdminPostRoute         = "/admin/posts/:id"
	AdminPostPublishRoute  = "/admin/posts/:id/publish"
	AdminCampaignsRoute    = "/admin/campaigns"
	AdminCampaignSendRoute = "/admin/campaigns/:id/send"
	AdminDashboardRoute    = "/admin/dashboard"
)

type RouterArgs struct {
	Logger              *logrus.Logger
	UserService         UserServicer
	CatalogService      CatalogServicer
	WishlistService     WishlistServicer
	CartService         CartServicer
	WalletService       WalletServicer
	PromoService        PromoServicer
	OrderService        OrderServicer
	LoyaltyService      LoyaltyServicer
	BlogService         BlogServicer
	NotificationService NotificationServicer
	CampaignService     CampaignServicer
	DashboardService    DashboardServicer
	DB                  Pinger
	JWTSecretKey        []byte
	// AuthLimiter ограничивает частоту запросов регистрации и входа. nil - без ограничений.
	AuthLimiter         *middlewares.RateLimiter
	// Metrics nil - метрики не собираются и /metrics не регистрируется.
	Metrics             *middlewares.Metrics
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Metrics != nil {
		r.Use(args.Metrics.Middleware())
		r.GET(MetricsRoute, gin.WrapH(args.Metrics.Handler()))
	}
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	if args.DB != nil {
		r.GET(HealthRoute, NewHealthHandler(args.DB).Health)
	}

	authHandler := NewAuthHandler(args.UserService)
	catalogHandler := NewCatalogHandler(args.CatalogService)
	wishlistHandler := NewWishlistHandler(args.WishlistService)
	cartHandler := NewCartHandler(args.CartService)
	walletHandler := NewWalletHandler(args.WalletService)
	promoHandler := NewPromoHandler(args.PromoService)
	ordersHandler := NewOrdersHandler(args.OrderService)
	loyaltyHandler := NewLoyaltyHandler(args.LoyaltyService)
	blogHandler := NewBlogHandler(args.BlogService)
	pushHandler := NewPushHandler(args.NotificationService)
	campaignHandler := NewCampaignHandler(args.CampaignService)
	dashboardHandler := NewDashboardHandler(args.DashboardService)

	api := r.Group(RouteGroup)

	// витрина доступна без авторизации.
	api.GET(CategoriesRoute, catalogHandler.Categories)
	api.GET(ProductsRoute, catalogHandler.Products)
	api.GET(ProductRoute, catalogHandler.Product)
	api.GET(PostsRoute, blogHandler.Index)
	api.GET(PostRoute, blogHandler.Show)

	guest := api.Group("", middlewares.NonAuthRequired(args.JWTSecretKey))
	if args.AuthLimiter != nil {
		guest.Use(args.AuthLimiter.Handler())
	}
	guest.POST(RegisterRoute, authHandler.Register)
	guest.POST(LoginRoute, authHandler.Login)

	user := api.Group("", middlewares.AuthRequired(args.JWTSecretKey))
	user.GET(MeRoute, authHandler.Me)

	user.GET(WishlistRoute, wishlistHandler.Index)
	user.POST(WishlistItemRoute, wishlistHandler.Add)
	user.DELETE(WishlistItemRoute, wishlistHandler.Remove)

	user.GET(CartRoute, cartHandler.Show)
	user.DELETE(CartRoute, cartHandler.Clear)
	user.PUT(CartItemRoute, cartHandler.SetItem)
	user.DELETE(CartItemRoute, cartHandler.RemoveItem)
	user.POST(CartMergeRoute, cartHandler.Merge)

	user.POST(PromoValidateRoute, promoHandler.Validate)

	user.POST(OrdersRoute, ordersHandler.Create)
	user.GET(OrdersRoute, ordersHandler.Index)
	user.GET(OrderRoute, ordersHandler.Show)
	user.POST(OrderCancelRoute, ordersHandler.Cancel)

	user.GET(WalletRoute, walletHandler.Index)
	user.GET(WalletTransactionsRoute, walletHandler.Transactions)

	user.GET(LoyaltyRoute, loyaltyHandler.Show)
	user.POST(LoyaltyRedeemRoute, loyaltyHandler.Redeem)

	user.POST(PushSubscriptionsRoute, pushHandler.Subscribe)
	user.DELETE(PushSubscriptionsRoute, pushHandler.Unsubscribe)

	admin := user.Group("", middlewares.AdminRequired())

	admin.POST(AdminCategoriesRoute, catalogHandler.CreateCategory)
	admin.POST(AdminProductsRoute, catalogHandler.CreateProduct)
	admin.PATCH(AdminProductRoute, catalogHandler.UpdateProduct)
	admin.PUT(AdminProductStockRoute, catalogHandler.SetStock)

	admin.GET(AdminOrdersRoute, ordersHandler.AdminIndex)
	admin.PATCH(AdminOrderStatusRoute, ordersHandler.UpdateStatus)

	admin.POST(AdminUserWalletRoute, walletHandler.Adjust)

	admin.GET(AdminPromosRoute, promoHandler.Index)
	admin.POST(AdminPromosRoute, promoHandler.Create)
	admin.PATCH(AdminPromoRoute, promoHandler.SetActive)

	admin.GET(AdminPostsRoute, blogHandler.AdminIndex)
	admin.POST(AdminPostsRoute, blogHandler.Create)
	admin.PATCH(AdminPostRoute, blogHandler.Update)
	admin.DELETE(AdminPostRoute, blogHandler.Delete)
	admin.POST(AdminPostPublishRoute, blogHandler.Publish)

	admin.GET(AdminCampaignsRoute, campaignHandler.Index)
	admin.POST(AdminCampaignsRoute, campaignHandler.Create)
	admin.POST(AdminCampaignSendRoute, campaignHandler.Send)

	admin.GET(AdminDashboardRoute, dashboardHandler.Show)
	return r, nil
}
