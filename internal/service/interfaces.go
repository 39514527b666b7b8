package service

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

// Cache кеш сериализованных ответов каталога.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys []string) error
}

// TaskDispatcher ставит фоновые задачи в очередь.
type TaskDispatcher interface {
	OrderConfirmation(ctx context.Context, payload OrderConfirmationPayload) error
	PriceDrop(ctx context.Context, payload PriceDropPayload) error
	CampaignEmail(ctx context.Context, payload CampaignEmailPayload) error
	PushToUser(ctx context.Context, payload PushPayload) error
	OrderStatusWebhook(ctx context.Context, payload OrderStatusPayload) error
}

// PushSender доставляет web push уведомление на одну подписку.
type PushSender interface {
	Send(ctx context.Context, sub domain.PushSubscription, notification Notification) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id int64) (*domain.User, error)
	FindUserByReferralCode(ctx context.Context, code string) (*domain.User, error)
	TouchLastOrder(ctx context.Context, id int64) error
	SetRole(ctx context.Context, id int64, role domain.RoleType) error
	Count(ctx context.Context) (int64, error)
	GetBySegment(ctx context.Context, segment domain.CampaignSegmentType) ([]domain.User, error)
}

type WalletRepository interface {
	LockUser(ctx context.Context, userID int64) error
	Create(ctx context.Context, transaction repoargs.WalletTransactionCreate) (*domain.WalletTransaction, error)
	GetUserBalance(ctx context.Context, userID int64) (*repoargs.BalanceAggregation, error)
	GetByUserID(ctx context.Context, userID int64, page repoargs.Page) ([]domain.WalletTransaction, error)
	FindOrderPayment(ctx context.Context, orderID int64) (*domain.WalletTransaction, error)
}

type LoyaltyRepository interface {
	Create(ctx context.Context, args repoargs.LoyaltyTransactionCreate) (*domain.LoyaltyTransaction, error)
	GetPoints(ctx context.Context, userID int64) (int64, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, args repoargs.CategoryCreate) (*domain.Category, error)
}

type ProductRepository interface {
	Search(ctx context.Context, filter repoargs.ProductFilter) ([]domain.Product, int64, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	GetRelated(ctx context.Context, slug string, limit uint) ([]domain.Product, error)
	Create(ctx context.Context, args repoargs.ProductCreate) (*domain.Product, error)
	Update(ctx context.Context, id int64, args repoargs.ProductUpdate) (*domain.Product, error)
	DecrementStock(ctx context.Context, id int64, quantity int32) error
	IncrementStock(ctx context.Context, id int64, quantity int32) error
	GetLowStock(ctx context.Context, threshold int32, limit uint) ([]domain.Product, error)
}

type PriceChangeRepository interface {
	Create(ctx context.Context, args repoargs.PriceChangeCreate) (*domain.PriceChange, error)
	GetPending(ctx context.Context, limit uint) ([]domain.PriceChange, error)
	MarkNotified(ctx context.Context, ids []int64) error
}

type WishlistRepository interface {
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
	GetProducts(ctx context.Context, userID int64) ([]domain.Product, error)
	GetSubscribers(ctx context.Context, productID int64) ([]domain.User, error)
}

type CartRepository interface {
	GetLines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	SetQuantity(ctx context.Context, userID, productID int64, quantity int32) error
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error)
	List(ctx context.Context, filter repoargs.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatusType) error
	CountByUserID(ctx context.Context, userID int64) (int64, error)
	Stats(ctx context.Context) (*repoargs.OrderStats, error)
}

type PromoRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.Promo, error)
	Create(ctx context.Context, args repoargs.PromoCreate) (*domain.Promo, error)
	List(ctx context.Context) ([]domain.Promo, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Promo, error)
	IncrementUsage(ctx context.Context, id int64) error
}

type ReferralRepository interface {
	Create(ctx context.Context, referrerID, refereeID int64) (*domain.Referral, error)
	FindPendingByReferee(ctx context.Context, refereeID int64) (*domain.Referral, error)
	MarkRewarded(ctx context.Context, id int64, reward decimal.Decimal) error
	GetStats(ctx context.Context, referrerID int64) (*repoargs.ReferralStats, error)
}

type PostRepository interface {
	Create(ctx context.Context, args repoargs.PostCreate) (*domain.Post, error)
	Update(ctx context.Context, id int64, args repoargs.PostUpdate) (*domain.Post, error)
	Publish(ctx context.Context, id int64) (*domain.Post, error)
	Delete(ctx context.Context, id int64) error
	FindBySlug(ctx context.Context, slug string) (*domain.Post, error)
	List(ctx context.Context, filter repoargs.PostFilter) ([]domain.Post, error)
}

type PushSubscriptionRepository interface {
	Upsert(ctx context.Context, args repoargs.PushSubscriptionCreate) (*domain.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID int64, endpoint string) error
	GetByUserID(ctx context.Context, userID int64) ([]domain.PushSubscription, error)
}

type CampaignRepository interface {
	Create(ctx context.Context, args repoargs.CampaignCreate) (*domain.Campaign, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Campaign, error)
	List(ctx context.Context, page repoargs.Page) ([]domain.Campaign, error)
	GetDue(ctx context.Context, limit uint) ([]int64, error)
	MarkSent(ctx context.Context, id int64, recipients int32) (*domain.Campaign, error)
	SetStatus(ctx context.Context, id int64, status domain.CampaignStatusType) error
}
