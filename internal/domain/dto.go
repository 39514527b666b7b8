package domain

type RoleType string

const (
	RoleCustomer RoleType = "customer"
	RoleAdmin    RoleType = "admin"
)

type OrderStatusType string

const (
	OrderStatusPaid       OrderStatusType = "PAID"
	OrderStatusProcessing OrderStatusType = "PROCESSING"
	OrderStatusShipped    OrderStatusType = "SHIPPED"
	OrderStatusDelivered  OrderStatusType = "DELIVERED"
	OrderStatusCancelled  OrderStatusType = "CANCELLED"
)

// orderTransitions допустимые переходы статусов заказа.
var orderTransitions = map[OrderStatusType][]OrderStatusType{
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransit проверяет, допустим ли переход из текущего статуса в next.
func (s OrderStatusType) CanTransit(next OrderStatusType) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatusType) IsValid() bool {
	switch s {
	case OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// DirectionType направление движения по счету. debit - зачисление, credit - списание.
type DirectionType string

const (
	DirectionDebit  DirectionType = "debit"
	DirectionCredit DirectionType = "credit"
)

type WalletReasonType string

const (
	WalletReasonTopUp         WalletReasonType = "top_up"
	WalletReasonOrderPayment  WalletReasonType = "order_payment"
	WalletReasonOrderRefund   WalletReasonType = "order_refund"
	WalletReasonReferralBonus WalletReasonType = "referral_bonus"
	WalletReasonLoyaltyRedeem WalletReasonType = "loyalty_redeem"
	WalletReasonAdjustment    WalletReasonType = "adjustment"
)

type PromoKindType string

const (
	PromoKindPercent PromoKindType = "percent"
	PromoKindFixed   PromoKindType = "fixed"
)

type ReferralStatusType string

const (
	ReferralStatusPending  ReferralStatusType = "pending"
	ReferralStatusRewarded ReferralStatusType = "rewarded"
)

type PostStatusType string

const (
	PostStatusDraft     PostStatusType = "draft"
	PostStatusPublished PostStatusType = "published"
)

type CampaignChannelType string

const (
	CampaignChannelPush  CampaignChannelType = "push"
	CampaignChannelEmail CampaignChannelType = "email"
	CampaignChannelAll   CampaignChannelType = "all"
)

type CampaignSegmentType string

const (
	// CampaignSegmentAll все пользователи.
	CampaignSegmentAll CampaignSegmentType = "all"
	// CampaignSegmentCustomers пользователи, сделавшие хотя бы один заказ.
	CampaignSegmentCustomers CampaignSegmentType = "customers"
	// CampaignSegmentInactive пользователи без заказов за последние 30 дней.
	CampaignSegmentInactive CampaignSegmentType = "inactive"
)

type CampaignStatusType string

const (
	CampaignStatusDraft     CampaignStatusType = "draft"
	CampaignStatusScheduled CampaignStatusType = "scheduled"
	CampaignStatusSent      CampaignStatusType = "sent"
	CampaignStatusFailed    CampaignStatusType = "failed"
)
