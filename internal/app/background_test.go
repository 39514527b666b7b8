package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunInBackground_WaitsForExit(t *testing.T) {
	var finished atomic.Bool
	stopAndWait := runInBackground(t.Context(), func(ctx context.Context) {
		<-ctx.Done()
		// имитация завершения текущей итерации после отмены.
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})

	stopAndWait()
	assert.True(t, finished.Load())
}

func TestRunInBackground_ParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	stopAndWait := runInBackground(ctx, func(ctx context.Context) {
		<-ctx.Done()
		close(done)
	})

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background func did not observe parent cancellation")
	}
	stopAndWait()
}
