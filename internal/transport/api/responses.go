package api

import (
	"time"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/service"
)

// Денежные суммы отдаются числами, как и раньше в API баланса.

type UserResponse struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	FullName     string          `json:"full_name"`
	Role         domain.RoleType `json:"role"`
	ReferralCode string          `json:"referral_code"`
	CreatedAt    time.Time       `json:"created_at"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		ReferralCode: u.ReferralCode,
		CreatedAt:    u.CreatedAt,
	}
}

type CategoryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	SortOrder int32  `json:"sort_order"`
}

func newCategoryResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, SortOrder: c.SortOrder}
}

type ProductResponse struct {
	ID          int64   `json:"id"`
	CategoryID  int64   `json:"category_id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Stock       int32   `json:"stock"`
	ImageURL    string  `json:"image_url,omitempty"`
	IsActive    bool    `json:"is_active"`
}

func newProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Unit:        p.Unit,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
	}
}

func newProductsResponse(products []domain.Product) []ProductResponse {
	res := make([]ProductResponse, len(products))
	for i, p := range products {
		res[i] = newProductResponse(p)
	}
	return res
}

type CartLineResponse struct {
	Product  ProductResponse `json:"product"`
	Quantity int32           `json:"quantity"`
	Total    float64         `json:"total"`
}

type CartResponse struct {
	Lines      []CartLineResponse `json:"lines"`
	Subtotal   float64            `json:"subtotal"`
	ItemsCount int32              `json:"items_count"`
}

func newCartResponse(cart *service.Cart) CartResponse {
	lines := make([]CartLineResponse, len(cart.Lines))
	for i, line := range cart.Lines {
		lines[i] = CartLineResponse{
			Product:  newProductResponse(line.Product),
			Quantity: line.Quantity,
			Total:    line.Total().InexactFloat64(),
		}
	}
	return CartResponse{
		Lines:      lines,
		Subtotal:   cart.Subtotal.InexactFloat64(),
		ItemsCount: cart.ItemsCount,
	}
}

type OrderItemResponse struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int32   `json:"quantity"`
}

type OrderResponse struct {
	ID              int64                  `json:"id"`
	Number          string                 `json:"number"`
	Status          domain.OrderStatusType `json:"status"`
	Subtotal        float64                `json:"subtotal"`
	Discount        float64                `json:"discount"`
	DeliveryFee     float64                `json:"delivery_fee"`
	Total           float64                `json:"total"`
	PromoCode       string                 `json:"promo_code,omitempty"`
	DeliveryAddress string                 `json:"delivery_address"`
	PointsEarned    int64                  `json:"points_earned"`
	Items           []OrderItemResponse    `json:"items,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func newOrderResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price.InexactFloat64(),
			Quantity:    item.Quantity,
		}
	}
	return OrderResponse{
		ID:              o.ID,
		Number:          o.OrderNumber,
		Status:          o.Status,
		Subtotal:        o.Subtotal.InexactFloat64(),
		Discount:        o.Discount.InexactFloat64(),
		DeliveryFee:     o.DeliveryFee.InexactFloat64(),
		Total:           o.Total.InexactFloat64(),
		PromoCode:       o.PromoCode,
		DeliveryAddress: o.DeliveryAddress,
		PointsEarned:    o.PointsEarned,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func newOrdersResponse(orders []domain.Order) []OrderResponse {
	res := make([]OrderResponse, len(orders))
	for i := range orders {
		res[i] = newOrderResponse(&orders[i])
	}
	return res
}

type WalletTransactionResponse struct {
	ID        int64                   `json:"id"`
	OrderID   *int64                  `json:"order_id,omitempty"`
	Direction domain.DirectionType    `json:"direction"`
	Reason    domain.WalletReasonType `json:"reason"`
	Amount    float64                 `json:"amount"`
	CreatedAt string                  `json:"created_at"`
}

type BalanceResponse struct {
	Current float64 `json:"current"`
	Spent   float64 `json:"spent"`
}

func newBalanceResponse(b *service.WalletBalance) BalanceResponse {
	return BalanceResponse{Current: b.Current.InexactFloat64(), Spent: b.Spent.InexactFloat64()}
}

type PromoResponse struct {
	ID             int64                `json:"id"`
	Code           string               `json:"code"`
	Kind           domain.PromoKindType `json:"kind"`
	Value          float64              `json:"value"`
	MinOrderAmount float64              `json:"min_order_amount"`
	MaxUses        int32                `json:"max_uses"`
	UsedCount      int32                `json:"used_count"`
	StartsAt       *time.Time           `json:"starts_at,omitempty"`
	ExpiresAt      *time.Time           `json:"expires_at,omitempty"`
	IsActive       bool                 `json:"is_active"`
}

func newPromoResponse(p *domain.Promo) PromoResponse {
	return PromoResponse{
		ID:             p.ID,
		Code:           p.Code,
		Kind:           p.Kind,
		Value:          p.Value.InexactFloat64(),
		MinOrderAmount: p.MinOrderAmount.InexactFloat64(),
		MaxUses:        p.MaxUses,
		UsedCount:      p.UsedCount,
		StartsAt:       p.StartsAt,
		ExpiresAt:      p.ExpiresAt,
		IsActive:       p.IsActive,
	}
}

type PostResponse struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Slug        string                `json:"slug"`
	Excerpt     string                `json:"excerpt"`
	Body        string                `json:"body,omitempty"`
	CoverURL    string                `json:"cover_url,omitempty"`
	Tags        []string              `json:"tags"`
	Status      domain.PostStatusType `json:"status"`
	PublishedAt *time.Time            `json:"published_at,omitempty"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// newPostResponse в списках тело поста не отдается.
func newPostResponse(p *domain.Post, withBody bool) PostResponse {
	res := PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		CoverURL:    p.CoverURL,
		Tags:        p.Tags,
		Status:      p.Status,
		PublishedAt: p.PublishedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if withBody {
		res.Body = p.Body
	}
	return res
}

func newPostsResponse(posts []domain.Post) []PostResponse {
	res := make([]PostResponse, len(posts))
	for i := range posts {
		res[i] = newPostResponse(&posts[i], false)
	}
	return res
}

type CampaignResponse struct {
	ID          int64                      `json:"id"`
	Title       string                     `json:"title"`
	Body        string                     `json:"body"`
	URL         string                     `json:"url,omitempty"`
	Channel     domain.CampaignChannelType `json:"channel"`
	Segment     domain.CampaignSegmentType `json:"segment"`
	Status      domain.CampaignStatusType  `json:"status"`
	ScheduledAt *time.Time                 `json:"scheduled_at,omitempty"`
	SentAt      *time.Time                 `json:"sent_at,omitempty"`
	Recipients  int32                      `json:"recipients"`
	CreatedAt   time.Time                  `json:"created_at"`
}

func newCampaignResponse(c *domain.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:          c.ID,
		Title:       c.Title,
		Body:        c.Body,
		URL:         c.URL,
		Channel:     c.Channel,
		Segment:     c.Segment,
		Status:      c.Status,
		ScheduledAt: c.ScheduledAt,
		SentAt:      c.SentAt,
		Recipients:  c.Recipients,
		CreatedAt:   c.CreatedAt,
	}
}
