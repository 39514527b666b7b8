package service

import (
	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/shopspring/decimal"
)

// Payloads фоновых задач. Сериализуются в JSON транспортом очереди.

type OrderConfirmationPayload struct {
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Email       string          `json:"email"`
	FullName    string          `json:"full_name"`
	Total       decimal.Decimal `json:"total"`
	Items       []OrderLine     `json:"items"`
}

type OrderLine struct {
	Name     string          `json:"name"`
	Quantity int32           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PriceDropPayload ChangeID и UserID однозначно задают письмо, по ним очередь отбрасывает повторы.
type PriceDropPayload struct {
	ChangeID    int64           `json:"change_id"`
	UserID      int64           `json:"user_id"`
	Email       string          `json:"email"`
	FullName    string          `json:"full_name"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	OldPrice    decimal.Decimal `json:"old_price"`
	NewPrice    decimal.Decimal `json:"new_price"`
}

type CampaignEmailPayload struct {
	CampaignID int64  `json:"campaign_id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	URL        string `json:"url"`
}

type PushPayload struct {
	UserID       int64        `json:"user_id"`
	Notification Notification `json:"notification"`
}

// Notification содержимое web push уведомления.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

type OrderStatusPayload struct {
	OrderID     int64                  `json:"order_id"`
	OrderNumber string                 `json:"order_number"`
	UserID      int64                  `json:"user_id"`
	Status      domain.OrderStatusType `json:"status"`
	Total       decimal.Decimal        `json:"total"`
}
