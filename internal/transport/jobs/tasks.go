// Package jobs ставит фоновые задачи в очередь asynq и обрабатывает их.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Типы задач. По типу asynq выбирает обработчик.
const (
	TypeOrderConfirmation = "email:order_confirmation"
	TypePriceDrop         = "email:price_drop"
	TypeCampaignEmail     = "email:campaign"
	TypePushToUser        = "push:user"
	TypeOrderStatus       = "webhook:order_status"
)

// Очереди и их веса на сервере.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

const (
	maxRetry    = 3
	taskTimeout = 30 * time.Second
	// dedupRetention сколько хранится выполненная задача с явным id. Пока она хранится, задача с тем же id
	// в очередь не попадет.
	dedupRetention = 7 * 24 * time.Hour
)

// priceDropTaskID id письма о снижении цены. Одно письмо на изменение цены и подписчика.
func priceDropTaskID(changeID, userID int64) string {
	return fmt.Sprintf("pricedrop:%d:%d", changeID, userID)
}

func newTask(typename string, payload any, queue string, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typename, err)
	}
	opts = append([]asynq.Option{
		asynq.MaxRetry(maxRetry),
		asynq.Queue(queue),
		asynq.Timeout(taskTimeout),
	}, opts...)
	return asynq.NewTask(typename, data, opts...), nil
}
