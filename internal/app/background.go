package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runInBackground запускает fn в отдельной горутине с дочерним от ctx контекстом. Возвращаемая функция
// отменяет этот контекст и ждет завершения fn.
func runInBackground(ctx context.Context, fn func(ctx context.Context)) (stopAndWait func()) {
	runCtx, cancel := context.WithCancel(ctx)
	var g errgroup.Group
	g.Go(func() error {
		fn(runCtx)
		return nil
	})
	return func() {
		cancel()
		_ = g.Wait()
	}
}
