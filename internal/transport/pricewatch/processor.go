// Package pricewatch рассылает подписчикам вишлиста уведомления о снижении цен.
package pricewatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-grocer/internal/domain"
)

const (
	defaultServiceTimeout         = 3 * time.Second
	defaultNotifyTimeout          = 10 * time.Second
	defaultInterval               = 30 * time.Second
	defaultLimitPerIteration uint = 100
	defaultWorkers           uint = 5
)

// Processor периодически забирает неразосланные изменения цен и ставит письма подписчикам в очередь.
type Processor struct {
	svs               Servicer
	l                 *logrus.Entry
	interval          time.Duration
	limitPerIteration uint
	workers           uint
}

func New(svs Servicer, l *logrus.Logger) *Processor {
	return &Processor{
		svs: svs,
		l: l.WithFields(logrus.Fields{
			"component": "pricewatch",
			"module":    "processor",
		}),
		interval:          defaultInterval,
		limitPerIteration: defaultLimitPerIteration,
		workers:           defaultWorkers,
	}
}

// SetInterval устанавливает паузу между итерациями, когда изменений цен нет.
func (p *Processor) SetInterval(interval time.Duration) *Processor {
	if interval > 0 {
		p.interval = interval
	}
	return p
}

// SetLimitPerIteration устанавливает кол-во изменений цен, обрабатываемых за одну итерацию.
func (p *Processor) SetLimitPerIteration(limit uint) *Processor {
	p.limitPerIteration = limit
	return p
}

// SetWorkers устанавливает кол-во параллельных воркеров.
func (p *Processor) SetWorkers(workers uint) *Processor {
	if workers > 0 {
		p.workers = workers
	}
	return p
}

// Run обрабатывает изменения цен до отмены контекста.
//
// Каждая итерация:
//  1. Запрашивает через сервисный слой до limitPerIteration неразосланных изменений.
//  2. Раздает их воркерам, каждый ставит в очередь письма подписчикам товара.
//  3. Помечает разосланными изменения, обработанные без ошибок. Остальные будут взяты в следующей итерации.
//
// Если изменений нет или итерация завершилась ошибкой, процессор ждет interval.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"interval":          p.interval,
		"limitPerIteration": p.limitPerIteration,
		"workers":           p.workers,
	}).Info("Starting")

	for {
		err := p.process(ctx)
		if err != nil && !errors.Is(err, ErrNoChanges) {
			p.l.WithError(err).Error("process error")
		}
		if err == nil {
			// пачка обработана, возможно есть еще.
			if ctx.Err() != nil {
				p.l.Info("Got stop signal, exiting...")
				return
			}
			continue
		}

		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		case <-time.After(p.interval):
		}
	}
}

func (p *Processor) process(ctx context.Context) error {
	changes, err := p.produce(ctx)
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}

	results := p.runWorkers(ctx, changes)

	ids := make([]int64, 0, len(results))
	for _, result := range results {
		if result.Error == nil {
			ids = append(ids, result.Change.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("process: all %d changes failed", len(changes))
	}

	markCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	if markErr := p.svs.MarkNotified(markCtx, ids); markErr != nil {
		return fmt.Errorf("process: %w", markErr)
	}
	return nil
}

type workerResult struct {
	WorkerID uint
	Change   domain.PriceChange
	Queued   int
	Error    error
}

// runWorkers раздает изменения цен воркерам и собирает результаты (fan-out/fan-in).
func (p *Processor) runWorkers(ctx context.Context, changes []domain.PriceChange) []workerResult {
	taskCh := make(chan domain.PriceChange, len(changes))
	for _, change := range changes {
		taskCh <- change
	}
	close(taskCh)

	resultCh := make(chan workerResult, len(changes))

	wg := new(sync.WaitGroup)
	for i := range p.workers {
		wg.Add(1)
		go p.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()
	close(resultCh)

	results := make([]workerResult, 0, len(changes))
	for result := range resultCh {
		l := p.l.WithFields(logrus.Fields{
			"worker":   result.WorkerID,
			"changeID": result.Change.ID,
		})
		if result.Error != nil {
			l.WithError(result.Error).Error("notify subscribers")
		} else {
			l.WithField("queued", result.Queued).Debug("Success")
		}
		results = append(results, result)
	}
	return results
}

func (p *Processor) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan domain.PriceChange,
	resultCh chan<- workerResult,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-taskCh:
			if !ok {
				return
			}
			notifyCtx, cancel := context.WithTimeout(ctx, defaultNotifyTimeout)
			queued, err := p.svs.NotifySubscribers(notifyCtx, change)
			cancel()
			resultCh <- workerResult{WorkerID: workerID, Change: change, Queued: queued, Error: err}
		}
	}
}

// produce возвращает ErrNoChanges, если рассылать нечего.
func (p *Processor) produce(ctx context.Context) ([]domain.PriceChange, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	changes, err := p.svs.PendingChanges(produceCtx, p.limitPerIteration)
	if err != nil {
		return nil, fmt.Errorf("produce: %w", err)
	}
	if len(changes) == 0 {
		return nil, ErrNoChanges
	}
	return changes, nil
}
