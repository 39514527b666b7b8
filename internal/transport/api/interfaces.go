package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/internal/service"
)

// Интерфейсы сервисного слоя, нужны в основном для моков.

type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type CatalogServicer interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	SearchProducts(ctx context.Context, filter repoargs.ProductFilter) (*service.ProductList, error)
	GetProductPage(ctx context.Context, slug string) (*service.ProductPage, error)
	CreateCategory(ctx context.Context, args repoargs.CategoryCreate) (*domain.Category, error)
	CreateProduct(ctx context.Context, args repoargs.ProductCreate) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, args repoargs.ProductUpdate) (*domain.Product, error)
	SetStock(ctx context.Context, id int64, stock int32) (*domain.Product, error)
}

type WishlistServicer interface {
	List(ctx context.Context, userID int64) ([]domain.Product, error)
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
}

type CartServicer interface {
	Get(ctx context.Context, userID int64) (*service.Cart, error)
	SetQuantity(ctx context.Context, userID, productID int64, quantity int32) (*service.Cart, error)
	Remove(ctx context.Context, userID, productID int64) (*service.Cart, error)
	Clear(ctx context.Context, userID int64) error
	Merge(ctx context.Context, userID int64, items []service.CartItemArgs) (*service.Cart, error)
}

type WalletServicer interface {
	GetBalance(ctx context.Context, userID int64) (*service.WalletBalance, error)
	GetTransactions(ctx context.Context, userID int64, page repoargs.Page) ([]domain.WalletTransaction, error)
	Adjust(
		ctx context.Context,
		userID int64,
		amount decimal.Decimal,
		reason domain.WalletReasonType,
	) (*service.WalletBalance, error)
}

type PromoServicer interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*service.PromoQuote, error)
	Create(ctx context.Context, args repoargs.PromoCreate) (*domain.Promo, error)
	List(ctx context.Context) ([]domain.Promo, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Promo, error)
}

type OrderServicer interface {
	Checkout(ctx context.Context, userID int64, args service.CheckoutArgs) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error)
	GetUserOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	Cancel(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	List(ctx context.Context, filter repoargs.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatusType) (*domain.Order, error)
}

type LoyaltyServicer interface {
	Summary(ctx context.Context, userID int64) (*service.LoyaltySummary, error)
	Redeem(ctx context.Context, userID int64, points int64) (*service.RedeemResult, error)
}

type BlogServicer interface {
	ListPublished(ctx context.Context, tag string, page repoargs.Page) ([]domain.Post, error)
	GetPublished(ctx context.Context, slug string) (*domain.Post, error)
	List(ctx context.Context, filter repoargs.PostFilter) ([]domain.Post, error)
	Create(ctx context.Context, args repoargs.PostCreate) (*domain.Post, error)
	Update(ctx context.Context, id int64, args repoargs.PostUpdate) (*domain.Post, error)
	Publish(ctx context.Context, id int64) (*domain.Post, error)
	Delete(ctx context.Context, id int64) error
}

type NotificationServicer interface {
	Subscribe(ctx context.Context, args repoargs.PushSubscriptionCreate) (*domain.PushSubscription, error)
	Unsubscribe(ctx context.Context, userID int64, endpoint string) error
}

type CampaignServicer interface {
	Create(ctx context.Context, args repoargs.CampaignCreate) (*domain.Campaign, error)
	List(ctx context.Context, page repoargs.Page) ([]domain.Campaign, error)
	Send(ctx context.Context, id int64) (*domain.Campaign, error)
}

type DashboardServicer interface {
	Stats(ctx context.Context) (*service.DashboardStats, error)
}

// Pinger проверка доступности базы данных.
type Pinger interface {
	Ping(ctx context.Context) error
}
