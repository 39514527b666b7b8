package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultDispatchTimeout = 3 * time.Second

// CheckoutSettings денежные параметры оформления заказа.
type CheckoutSettings struct {
	// DeliveryFee стоимость доставки.
	DeliveryFee decimal.Decimal
	// FreeDeliveryThreshold сумма заказа после скидки, начиная с которой доставка бесплатна. 0 - всегда платно.
	FreeDeliveryThreshold decimal.Decimal
	// LoyaltyEarnRate сумма заказа за один балл лояльности. 0 - баллы не начисляются.
	LoyaltyEarnRate decimal.Decimal
	// ReferrerReward и RefereeReward бонусы за первый заказ приглашенного юзера.
	ReferrerReward decimal.Decimal
	RefereeReward  decimal.Decimal
}

type OrderService struct {
	uow        uow.UOW
	orderRepo  OrderRepository
	dispatcher TaskDispatcher
	settings   CheckoutSettings
	l          *logrus.Entry
	now        func() time.Time
}

func NewOrderService(
	u uow.UOW,
	dispatcher TaskDispatcher,
	settings CheckoutSettings,
	l *logrus.Logger,
) (*OrderService, error) {
	orderRepo, err := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &OrderService{
		uow:        u,
		orderRepo:  orderRepo,
		dispatcher: dispatcher,
		settings:   settings,
		l:          l.WithFields(logrus.Fields{"component": "service", "module": "order"}),
		now:        time.Now,
	}, nil
}

type CheckoutArgs struct {
	DeliveryAddress string
	PromoCode       string
}

// checkoutRepos репозитории, участвующие в оформлении и отмене заказа. Все привязаны к одной транзакции.
type checkoutRepos struct {
	wallet   WalletRepository
	cart     CartRepository
	promo    PromoRepository
	order    OrderRepository
	product  ProductRepository
	loyalty  LoyaltyRepository
	referral ReferralRepository
	user     UserRepository
}

func getCheckoutRepos(tx uow.TX) (*checkoutRepos, error) {
	var r checkoutRepos
	var err error
	if r.wallet, err = uow.GetAs[WalletRepository](tx, uow.RepositoryName(repoargs.WalletRepoName)); err != nil {
		return nil, err //nolint:wrapcheck
	}
	if r.cart, err = uow.GetAs[CartRepository](tx, uow.RepositoryName(repoargs.CartRepoName)); err != nil {
		return nil, err //nolint:wrapcheck
	}
	if r.promo, err = uow.GetAs[PromoRepository](tx, uow.RepositoryName(repoargs.PromoRepoName)); err != nil {
		return nil, err //nolint:wrapcheck
	}
	if r.order, err = uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName)); err != nil {
		return nil, err //nolint:wrapcheck
	}
	if r.product, err = uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName)); err != nil {
		return nil, err //nolint:wrapcheck
	}
	if r.loyalty, err = uow.GetAs[LoyaltyRepository](tx, uow.RepositoryName(repoargs.LoyaltyRepoName)); err != nil {
		return nil, err //nolint:wrapcheck
	}
	if r.referral, err = uow.GetAs[ReferralRepository](tx, uow.RepositoryName(repoargs.ReferralRepoName)); err != nil {
		return nil, err //nolint:wrapcheck
	}
	if r.user, err = uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName)); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &r, nil
}

// Checkout оформляет заказ из корзины юзера и оплачивает его с кошелька.
//
// Алгоритм работы (в одной транзакции):
//  1. Берет лок кошелька юзера, загружает корзину. Пустая корзина - domain.ErrEmptyCart.
//  2. Считает сумму товаров, скидку по промокоду, стоимость доставки и итог.
//  3. Проверяет остаток кошелька (domain.ErrNotEnoughBalance).
//  4. Создает заказ в статусе PAID, списывает товары со склада (domain.ErrOutOfStock) и деньги с кошелька.
//  5. Учитывает использование промокода, очищает корзину, начисляет баллы лояльности.
//  6. Если это первый заказ приглашенного юзера, начисляет реферальные бонусы обоим участникам.
//
// После коммита ставит в очередь письмо с подтверждением и вебхук. Ошибки постановки только логируются.
func (s *OrderService) Checkout(ctx context.Context, userID int64, args CheckoutArgs) (*domain.Order, error) {
	var order *domain.Order
	var user *domain.User

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repos, err := getCheckoutRepos(tx)
		if err != nil {
			return err
		}
		if err = repos.wallet.LockUser(c, userID); err != nil {
			return err //nolint:wrapcheck
		}
		if user, err = repos.user.FindUserByID(c, userID); err != nil {
			return err //nolint:wrapcheck
		}

		lines, err := repos.cart.GetLines(c, userID)
		if err != nil {
			return err //nolint:wrapcheck
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		orderArgs, promo, err := s.priceOrder(c, repos, userID, lines, args)
		if err != nil {
			return err
		}

		if order, err = repos.order.Create(c, *orderArgs); err != nil {
			return err //nolint:wrapcheck
		}
		for _, line := range lines {
			if err = repos.product.DecrementStock(c, line.Product.ID, line.Quantity); err != nil {
				return err //nolint:wrapcheck
			}
		}
		err = creditWallet(c, repos.wallet, userID, &order.ID, domain.WalletReasonOrderPayment, order.Total)
		if err != nil {
			return err
		}
		if promo != nil {
			if err = repos.promo.IncrementUsage(c, promo.ID); err != nil {
				if errors.Is(err, domain.ErrRecordNotFound) {
					return domain.NewPromoError(promo.Code, "promo code usage limit reached")
				}
				return err //nolint:wrapcheck
			}
		}
		if err = repos.cart.Clear(c, userID); err != nil {
			return err //nolint:wrapcheck
		}
		if order.PointsEarned > 0 {
			if _, err = repos.loyalty.Create(c, repoargs.LoyaltyTransactionCreate{
				UserID:    userID,
				OrderID:   &order.ID,
				Direction: domain.DirectionDebit,
				Points:    order.PointsEarned,
			}); err != nil {
				return err //nolint:wrapcheck
			}
		}
		if err = s.rewardReferral(c, repos, userID); err != nil {
			return err
		}
		return repos.user.TouchLastOrder(c, userID) //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("checkout: %w", txErr)
	}

	s.dispatchOrderConfirmation(ctx, user, order)
	s.dispatchWebhook(ctx, order)
	return order, nil
}

// priceOrder считает суммы заказа и проверяет остаток кошелька. Возвращает аргументы создания заказа и
// примененный промокод (nil если промокод не указан).
func (s *OrderService) priceOrder(
	ctx context.Context,
	repos *checkoutRepos,
	userID int64,
	lines []domain.CartLine,
	args CheckoutArgs,
) (*repoargs.OrderCreate, *domain.Promo, error) {
	subtotal := decimal.Zero
	items := make([]repoargs.OrderItemCreate, 0, len(lines))
	for _, line := range lines {
		if !line.Product.IsActive {
			return nil, nil, fmt.Errorf("product %d: %w", line.Product.ID, domain.ErrProductUnavailable)
		}
		if line.Quantity > line.Product.Stock {
			return nil, nil, fmt.Errorf("product %d: %w", line.Product.ID, domain.ErrOutOfStock)
		}
		subtotal = subtotal.Add(line.Total())
		items = append(items, repoargs.OrderItemCreate{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Price:       line.Product.Price,
			Quantity:    line.Quantity,
		})
	}

	discount := decimal.Zero
	var promo *domain.Promo
	if strings.TrimSpace(args.PromoCode) != "" {
		var err error
		if promo, err = findPromo(ctx, repos.promo, args.PromoCode); err != nil {
			return nil, nil, err
		}
		if discount, err = CalculateDiscount(promo, subtotal, s.now()); err != nil {
			return nil, nil, err
		}
	}

	afterDiscount := subtotal.Sub(discount)
	fee := s.deliveryFee(afterDiscount)
	total := afterDiscount.Add(fee)

	agg, err := repos.wallet.GetUserBalance(ctx, userID)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}
	if agg.DebitAmount.Sub(agg.CreditAmount).LessThan(total) {
		return nil, nil, domain.ErrNotEnoughBalance
	}

	orderArgs := repoargs.OrderCreate{
		UserID:          userID,
		OrderNumber:     newOrderNumber(s.now()),
		Status:          domain.OrderStatusPaid,
		Subtotal:        subtotal,
		Discount:        discount,
		DeliveryFee:     fee,
		Total:           total,
		DeliveryAddress: strings.TrimSpace(args.DeliveryAddress),
		PointsEarned:    s.pointsFor(total),
		Items:           items,
	}
	if promo != nil {
		orderArgs.PromoCode = promo.Code
	}
	return &orderArgs, promo, nil
}

func (s *OrderService) deliveryFee(amount decimal.Decimal) decimal.Decimal {
	threshold := s.settings.FreeDeliveryThreshold
	if threshold.IsPositive() && amount.GreaterThanOrEqual(threshold) {
		return decimal.Zero
	}
	return s.settings.DeliveryFee
}

// pointsFor возвращает баллы лояльности за сумму заказа: floor(total / earnRate).
func (s *OrderService) pointsFor(total decimal.Decimal) int64 {
	if !s.settings.LoyaltyEarnRate.IsPositive() {
		return 0
	}
	return total.Div(s.settings.LoyaltyEarnRate).Floor().IntPart()
}

// rewardReferral начисляет реферальные бонусы, если текущий заказ первый у юзера и у него есть
// неоплаченное приглашение.
func (s *OrderService) rewardReferral(ctx context.Context, repos *checkoutRepos, userID int64) error {
	count, err := repos.order.CountByUserID(ctx, userID)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if count != 1 {
		return nil
	}
	referral, err := repos.referral.FindPendingByReferee(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil
		}
		return err //nolint:wrapcheck
	}
	if s.settings.ReferrerReward.IsPositive() {
		err = debitWallet(ctx, repos.wallet, referral.ReferrerID, nil,
			domain.WalletReasonReferralBonus, s.settings.ReferrerReward)
		if err != nil {
			return err
		}
	}
	if s.settings.RefereeReward.IsPositive() {
		err = debitWallet(ctx, repos.wallet, referral.RefereeID, nil,
			domain.WalletReasonReferralBonus, s.settings.RefereeReward)
		if err != nil {
			return err
		}
	}
	return repos.referral.MarkRewarded(ctx, referral.ID, s.settings.ReferrerReward) //nolint:wrapcheck
}

// GetByUserID возвращает заказы userID, отсортированные по дате создания по убыванию.
func (s *OrderService) GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// GetUserOrder возвращает заказ юзера. Чужой заказ считается отсутствующим.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", orderID, domain.ErrRecordNotFound)
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, filter repoargs.OrderFilter) ([]domain.Order, error) {
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// Cancel отменяет заказ юзера. Отменить можно только оплаченный заказ, который еще не передан в работу.
// Деньги возвращаются на кошелек, товары на склад, начисленные баллы списываются.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repos, err := getCheckoutRepos(tx)
		if err != nil {
			return err
		}
		if order, err = repos.order.FindByIDForUpdate(c, orderID); err != nil {
			return err //nolint:wrapcheck
		}
		if order.UserID != userID {
			return fmt.Errorf("order %d: %w", orderID, domain.ErrRecordNotFound)
		}
		if order.Status != domain.OrderStatusPaid {
			return fmt.Errorf("%s -> %s: %w", order.Status, domain.OrderStatusCancelled,
				domain.ErrInvalidStatusTransition)
		}
		return s.cancelInTx(c, repos, order)
	})
	if txErr != nil {
		return nil, fmt.Errorf("cancelling order %d: %w", orderID, txErr)
	}
	s.dispatchStatusChange(ctx, order)
	return order, nil
}

// UpdateStatus меняет статус заказа администратором. Допустимые переходы задает
// domain.OrderStatusType.CanTransit. Отмена возвращает деньги, товары и баллы как Cancel.
func (s *OrderService) UpdateStatus(
	ctx context.Context,
	orderID int64,
	status domain.OrderStatusType,
) (*domain.Order, error) {
	var order *domain.Order
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repos, err := getCheckoutRepos(tx)
		if err != nil {
			return err
		}
		if order, err = repos.order.FindByIDForUpdate(c, orderID); err != nil {
			return err //nolint:wrapcheck
		}
		if !order.Status.CanTransit(status) {
			return fmt.Errorf("%s -> %s: %w", order.Status, status, domain.ErrInvalidStatusTransition)
		}
		if status == domain.OrderStatusCancelled {
			return s.cancelInTx(c, repos, order)
		}
		if err = repos.order.UpdateStatus(c, order.ID, status); err != nil {
			return err //nolint:wrapcheck
		}
		order.Status = status
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating status of order %d: %w", orderID, txErr)
	}
	s.dispatchStatusChange(ctx, order)
	return order, nil
}

// cancelInTx переводит заказ в CANCELLED, возвращает товары на склад, деньги на кошелек и списывает
// начисленные за заказ баллы (не больше текущего остатка баллов).
func (s *OrderService) cancelInTx(ctx context.Context, repos *checkoutRepos, order *domain.Order) error {
	if err := repos.wallet.LockUser(ctx, order.UserID); err != nil {
		return err //nolint:wrapcheck
	}
	if err := repos.order.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled); err != nil {
		return err //nolint:wrapcheck
	}
	order.Status = domain.OrderStatusCancelled

	for _, item := range order.Items {
		if err := repos.product.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err //nolint:wrapcheck
		}
	}

	refund := order.Total
	payment, err := repos.wallet.FindOrderPayment(ctx, order.ID)
	switch {
	case err == nil:
		refund = payment.Amount
	case !errors.Is(err, domain.ErrRecordNotFound):
		return err //nolint:wrapcheck
	}
	if refund.IsPositive() {
		if err = debitWallet(ctx, repos.wallet, order.UserID, &order.ID, domain.WalletReasonOrderRefund, refund); err != nil {
			return err
		}
	}

	if order.PointsEarned <= 0 {
		return nil
	}
	points, err := repos.loyalty.GetPoints(ctx, order.UserID)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if revoke := min(points, order.PointsEarned); revoke > 0 {
		_, err = repos.loyalty.Create(ctx, repoargs.LoyaltyTransactionCreate{
			UserID:    order.UserID,
			OrderID:   &order.ID,
			Direction: domain.DirectionCredit,
			Points:    revoke,
		})
		return err //nolint:wrapcheck
	}
	return nil
}

func (s *OrderService) dispatchOrderConfirmation(ctx context.Context, user *domain.User, order *domain.Order) {
	if s.dispatcher == nil {
		return
	}
	lines := make([]OrderLine, len(order.Items))
	for i, item := range order.Items {
		lines[i] = OrderLine{Name: item.ProductName, Quantity: item.Quantity, Price: item.Price}
	}

	dCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultDispatchTimeout)
	defer cancel()

	err := s.dispatcher.OrderConfirmation(dCtx, OrderConfirmationPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Email:       user.Email,
		FullName:    user.FullName,
		Total:       order.Total,
		Items:       lines,
	})
	if err != nil {
		s.l.WithError(err).WithField("orderID", order.ID).Error("enqueue order confirmation")
	}
}

// dispatchStatusChange ставит в очередь вебхук и push уведомление юзеру о смене статуса заказа.
func (s *OrderService) dispatchStatusChange(ctx context.Context, order *domain.Order) {
	s.dispatchWebhook(ctx, order)
	s.dispatchPush(ctx, order)
}

func (s *OrderService) dispatchWebhook(ctx context.Context, order *domain.Order) {
	if s.dispatcher == nil {
		return
	}
	dCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultDispatchTimeout)
	defer cancel()

	if err := s.dispatcher.OrderStatusWebhook(dCtx, OrderStatusPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		Total:       order.Total,
	}); err != nil {
		s.l.WithError(err).WithFields(logrus.Fields{"orderID": order.ID, "status": order.Status}).
			Error("enqueue order status webhook")
	}
}

func (s *OrderService) dispatchPush(ctx context.Context, order *domain.Order) {
	if s.dispatcher == nil {
		return
	}
	dCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultDispatchTimeout)
	defer cancel()

	if err := s.dispatcher.PushToUser(dCtx, PushPayload{
		UserID: order.UserID,
		Notification: Notification{
			Title: "Order " + order.OrderNumber,
			Body:  "Order status: " + strings.ToLower(string(order.Status)),
			URL:   fmt.Sprintf("/orders/%d", order.ID),
		},
	}); err != nil {
		s.l.WithError(err).WithFields(logrus.Fields{"orderID": order.ID, "status": order.Status}).
			Error("enqueue order status push")
	}
}
