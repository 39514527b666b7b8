package service

import (
	"fmt"
	"time"

	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type AppServices struct {
	UserService         *UserService
	CatalogService      *CatalogService
	WishlistService     *WishlistService
	CartService         *CartService
	WalletService       *WalletService
	PromoService        *PromoService
	OrderService        *OrderService
	LoyaltyService      *LoyaltyService
	BlogService         *BlogService
	NotificationService *NotificationService
	CampaignService     *CampaignService
	PriceWatchService   *PriceWatchService
	DashboardService    *DashboardService
}

// Deps внешние зависимости и настройки сервисного слоя.
type Deps struct {
	Hasher            PasswordHasher
	Cache             Cache
	Dispatcher        TaskDispatcher
	PushSender        PushSender
	Logger            *logrus.Logger
	JWTSecret         []byte
	JWTExpire         time.Duration
	AdminEmails       []string
	CatalogCacheTTL   time.Duration
	Checkout          CheckoutSettings
	LoyaltyRedeemRate decimal.Decimal
}

func Factory(unitOfWork uow.UOW, deps Deps) (*AppServices, error) {
	var s AppServices
	var err error

	if s.UserService, err = NewUserService(unitOfWork, deps.Hasher, deps.JWTSecret, deps.JWTExpire); err != nil {
		return nil, fmt.Errorf("service factory: user: %s", err.Error())
	}
	s.UserService.SetAdminEmails(deps.AdminEmails)
	if s.CatalogService, err = NewCatalogService(unitOfWork, deps.Cache, deps.CatalogCacheTTL, deps.Logger); err != nil {
		return nil, fmt.Errorf("service factory: catalog: %s", err.Error())
	}
	if s.WishlistService, err = NewWishlistService(unitOfWork); err != nil {
		return nil, fmt.Errorf("service factory: wishlist: %s", err.Error())
	}
	if s.CartService, err = NewCartService(unitOfWork); err != nil {
		return nil, fmt.Errorf("service factory: cart: %s", err.Error())
	}
	if s.WalletService, err = NewWalletService(unitOfWork); err != nil {
		return nil, fmt.Errorf("service factory: wallet: %s", err.Error())
	}
	if s.PromoService, err = NewPromoService(unitOfWork); err != nil {
		return nil, fmt.Errorf("service factory: promo: %s", err.Error())
	}
	if s.OrderService, err = NewOrderService(unitOfWork, deps.Dispatcher, deps.Checkout, deps.Logger); err != nil {
		return nil, fmt.Errorf("service factory: order: %s", err.Error())
	}
	if s.LoyaltyService, err = NewLoyaltyService(unitOfWork, deps.LoyaltyRedeemRate); err != nil {
		return nil, fmt.Errorf("service factory: loyalty: %s", err.Error())
	}
	if s.BlogService, err = NewBlogService(unitOfWork); err != nil {
		return nil, fmt.Errorf("service factory: blog: %s", err.Error())
	}
	if s.NotificationService, err = NewNotificationService(unitOfWork, deps.PushSender, deps.Logger); err != nil {
		return nil, fmt.Errorf("service factory: notification: %s", err.Error())
	}
	if s.CampaignService, err = NewCampaignService(unitOfWork, deps.Dispatcher, deps.Logger); err != nil {
		return nil, fmt.Errorf("service factory: campaign: %s", err.Error())
	}
	if s.PriceWatchService, err = NewPriceWatchService(unitOfWork, deps.Dispatcher); err != nil {
		return nil, fmt.Errorf("service factory: price watch: %s", err.Error())
	}
	if s.DashboardService, err = NewDashboardService(unitOfWork); err != nil {
		return nil, fmt.Errorf("service factory: dashboard: %s", err.Error())
	}
	return &s, nil
}
