package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eitchtee/Kindle2Markdown/internal/clippings"
	"github.com/eitchtee/Kindle2Markdown/internal/services"
)

func newTestScheduler(t *testing.T) *SyncScheduler {
	t.Helper()
	service := &services.ConvertService{
		Parser:    clippings.NewParser(),
		OutputDir: t.TempDir(),
	}
	path := filepath.Join(t.TempDir(), "My Clippings.txt")
	return NewSyncScheduler(service, path, "0 * * * *")
}

func waitClosed(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine did not exit within timeout")
	}
}

func TestSyncScheduler_StartStop(t *testing.T) {
	t.Run("Stop releases the context watchdog", func(t *testing.T) {
		s := newTestScheduler(t)
		require.NoError(t, s.Start(context.Background()))

		s.Stop()

		waitClosed(t, s.watchdogDone)
		assert.False(t, s.isRunning)
		assert.Nil(t, s.cancelFunc)
	})

	t.Run("context cancellation stops the scheduler", func(t *testing.T) {
		s := newTestScheduler(t)

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, s.Start(ctx))

		cancel()

		waitClosed(t, s.watchdogDone)
		s.mu.Lock()
		running := s.isRunning
		s.mu.Unlock()
		assert.False(t, running)
	})

	t.Run("Stop is idempotent", func(t *testing.T) {
		s := newTestScheduler(t)
		require.NoError(t, s.Start(context.Background()))

		s.Stop()
		s.Stop()
	})

	t.Run("restarts after Stop", func(t *testing.T) {
		s := newTestScheduler(t)
		require.NoError(t, s.Start(context.Background()))
		s.Stop()
		waitClosed(t, s.watchdogDone)

		require.NoError(t, s.Start(context.Background()))
		s.Stop()
		waitClosed(t, s.watchdogDone)
	})

	t.Run("empty clippings path is a no-op", func(t *testing.T) {
		s := NewSyncScheduler(&services.ConvertService{Parser: clippings.NewParser()}, "", "0 * * * *")
		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.isRunning)
	})

	t.Run("invalid schedule is an error", func(t *testing.T) {
		service := &services.ConvertService{Parser: clippings.NewParser()}
		s := NewSyncScheduler(service, "clippings.txt", "not a schedule")
		assert.Error(t, s.Start(context.Background()))
	})
}
