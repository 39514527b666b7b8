package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Email        string
	Password     string
	FullName     string
	Role         RoleType
	ReferralCode string
	LastOrderAt  *time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Category struct {
	ID        int64
	CreatedAt time.Time
	Name      string
	Slug      string
	SortOrder int32
}

type Product struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CategoryID  int64
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	Unit        string
	Stock       int32
	ImageURL    string
	IsActive    bool
}

// PriceChange фиксирует изменение цены товара. NotifiedAt выставляется после рассылки уведомлений
// подписчикам вишлиста.
type PriceChange struct {
	ID         int64
	CreatedAt  time.Time
	ProductID  int64
	OldPrice   decimal.Decimal
	NewPrice   decimal.Decimal
	NotifiedAt *time.Time
}

func (p *PriceChange) IsDrop() bool {
	return p.NewPrice.LessThan(p.OldPrice)
}

type CartLine struct {
	Product  Product
	Quantity int32
}

func (l CartLine) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt32(l.Quantity))
}

type Order struct {
	ID              int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserID          int64
	OrderNumber     string
	Status          OrderStatusType
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Total           decimal.Decimal
	PromoCode       string
	DeliveryAddress string
	PointsEarned    int64
	Items           []OrderItem
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Price       decimal.Decimal
	Quantity    int32
}

type WalletTransaction struct {
	ID        int64
	CreatedAt time.Time
	UserID    int64
	OrderID   *int64
	Direction DirectionType
	Reason    WalletReasonType
	Amount    decimal.Decimal
}

type LoyaltyTransaction struct {
	ID        int64
	CreatedAt time.Time
	UserID    int64
	OrderID   *int64
	Direction DirectionType
	Points    int64
}

type Promo struct {
	ID             int64
	CreatedAt      time.Time
	Code           string
	Kind           PromoKindType
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxUses        int32
	UsedCount      int32
	StartsAt       *time.Time
	ExpiresAt      *time.Time
	IsActive       bool
}

type Referral struct {
	ID         int64
	CreatedAt  time.Time
	ReferrerID int64
	RefereeID  int64
	Status     ReferralStatusType
	Reward     decimal.Decimal
	RewardedAt *time.Time
}

type Post struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	AuthorID    int64
	Title       string
	Slug        string
	Excerpt     string
	Body        string
	CoverURL    string
	Tags        []string
	Status      PostStatusType
	PublishedAt *time.Time
}

type PushSubscription struct {
	ID        int64
	CreatedAt time.Time
	UserID    int64
	Endpoint  string
	P256dh    string
	Auth      string
}

type Campaign struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string
	Body        string
	URL         string
	Channel     CampaignChannelType
	Segment     CampaignSegmentType
	Status      CampaignStatusType
	ScheduledAt *time.Time
	SentAt      *time.Time
	Recipients  int32
}

func (c *Campaign) UsesPush() bool {
	return c.Channel == CampaignChannelPush || c.Channel == CampaignChannelAll
}

func (c *Campaign) UsesEmail() bool {
	return c.Channel == CampaignChannelEmail || c.Channel == CampaignChannelAll
}
