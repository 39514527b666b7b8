package pgrepo

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/fsdevblog/groph-grocer/internal/repository/repoargs"
	"github.com/fsdevblog/groph-grocer/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, created_at, updated_at, user_id, order_number, status, subtotal, discount, delivery_fee,
	total, promo_code, delivery_address, points_earned`

const orderItemColumns = `id, order_id, product_id, product_name, price, quantity`

type OrderRepository struct {
	conn uow.DBTX
}

func NewOrderRepository(conn uow.DBTX) *OrderRepository {
	return &OrderRepository{conn: conn}
}

// Create создает заказ и его позиции. Позиции вставляются одним батчем.
func (o *OrderRepository) Create(ctx context.Context, args repoargs.OrderCreate) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx,
		`INSERT INTO orders (user_id, order_number, status, subtotal, discount, delivery_fee, total, promo_code,
			delivery_address, points_earned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING `+orderColumns,
		args.UserID,
		args.OrderNumber,
		string(args.Status),
		args.Subtotal,
		args.Discount,
		args.DeliveryFee,
		args.Total,
		args.PromoCode,
		args.DeliveryAddress,
		args.PointsEarned,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order `%s`", args.OrderNumber)
	}

	batch := &pgx.Batch{}
	for _, item := range args.Items {
		batch.Queue(
			`INSERT INTO order_items (order_id, product_id, product_name, price, quantity)
			VALUES ($1, $2, $3, $4, $5) RETURNING `+orderItemColumns,
			order.ID, item.ProductID, item.ProductName, item.Price, item.Quantity,
		)
	}
	results := o.conn.SendBatch(ctx, batch)
	defer results.Close()

	order.Items = make([]domain.OrderItem, 0, len(args.Items))
	for range args.Items {
		item, scanErr := scanOrderItem(results.QueryRow())
		if scanErr != nil {
			return nil, convertErr(scanErr, "creating items of order `%s`", args.OrderNumber)
		}
		order.Items = append(order.Items, item)
	}
	return &order, nil
}

// FindByID возвращает заказ вместе с позициями.
func (o *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order %d", id)
	}
	if err = o.loadItems(ctx, []*domain.Order{&order}); err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate возвращает заказ с позициями, блокируя строку заказа до конца транзакции.
func (o *OrderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	row := o.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order %d for update", id)
	}
	if err = o.loadItems(ctx, []*domain.Order{&order}); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByUserID возвращает заказы юзера, начиная с новых.
func (o *OrderRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := o.conn.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting orders of user %d", userID)
	}
	orders, err := collect(rows, scanOrder)
	if err != nil {
		return nil, convertErr(err, "scanning orders of user %d", userID)
	}
	if err = o.loadItems(ctx, ptrs(orders)); err != nil {
		return nil, err
	}
	return orders, nil
}

// List возвращает страницу заказов всех юзеров для администратора.
func (o *OrderRepository) List(ctx context.Context, filter repoargs.OrderFilter) ([]domain.Order, error) {
	var qb queryBuilder
	if filter.Status != "" {
		qb.where("status = ?", string(filter.Status))
	}
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC, id DESC LIMIT %s OFFSET %s`,
		orderColumns, qb.clause(), qb.arg(int64(filter.Page.Limit)), qb.arg(int64(filter.Page.Offset)))
	rows, err := o.conn.Query(ctx, query, qb.args...)
	if err != nil {
		return nil, convertErr(err, "listing orders")
	}
	orders, err := collect(rows, scanOrder)
	if err != nil {
		return nil, convertErr(err, "scanning orders")
	}
	return orders, nil
}

func (o *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatusType) error {
	tag, err := o.conn.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return convertErr(err, "updating status of order %d", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("[repository/updating status of order %d] %w", id, domain.ErrRecordNotFound)
	}
	return nil
}

// CountByUserID возвращает количество заказов юзера.
func (o *OrderRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := o.conn.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, convertErr(err, "counting orders of user %d", userID)
	}
	return count, nil
}

// Stats возвращает количество заказов по статусам и выручку без учета отмененных заказов.
func (o *OrderRepository) Stats(ctx context.Context) (*repoargs.OrderStats, error) {
	rows, err := o.conn.Query(ctx, `SELECT status, count(*), COALESCE(SUM(total), 0) FROM orders GROUP BY status`)
	if err != nil {
		return nil, convertErr(err, "getting order stats")
	}
	type statusRow struct {
		status string
		count  int64
		total  decimal.Decimal
	}
	statRows, err := collect(rows, func(row rowScanner) (statusRow, error) {
		var r statusRow
		err := row.Scan(&r.status, &r.count, &r.total)
		return r, err //nolint:wrapcheck
	})
	if err != nil {
		return nil, convertErr(err, "scanning order stats")
	}

	stats := repoargs.OrderStats{
		ByStatus: make(map[domain.OrderStatusType]int64, len(statRows)),
		Revenue:  decimal.Zero,
	}
	for _, r := range statRows {
		status := domain.OrderStatusType(r.status)
		stats.ByStatus[status] = r.count
		if status != domain.OrderStatusCancelled {
			stats.Revenue = stats.Revenue.Add(r.total)
		}
	}
	return &stats, nil
}

func (o *OrderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	byID := make(map[int64]*domain.Order, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
		byID[order.ID] = order
		order.Items = []domain.OrderItem{}
	}
	rows, err := o.conn.Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		ids,
	)
	if err != nil {
		return convertErr(err, "getting order items")
	}
	items, err := collect(rows, scanOrderItem)
	if err != nil {
		return convertErr(err, "scanning order items")
	}
	for _, item := range items {
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return nil
}

func ptrs[T any](s []T) []*T {
	out := make([]*T, len(s))
	for i := range s {
		out[i] = &s[i]
	}
	return out
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(
		&o.ID,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.UserID,
		&o.OrderNumber,
		&status,
		&o.Subtotal,
		&o.Discount,
		&o.DeliveryFee,
		&o.Total,
		&o.PromoCode,
		&o.DeliveryAddress,
		&o.PointsEarned,
	)
	o.Status = domain.OrderStatusType(status)
	return o, err //nolint:wrapcheck
}

func scanOrderItem(row rowScanner) (domain.OrderItem, error) {
	var i domain.OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.Price, &i.Quantity)
	return i, err //nolint:wrapcheck
}
