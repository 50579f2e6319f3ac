// Package scheduler periodically re-runs the conversion pipeline so a
// mounted Kindle keeps the markdown notes and library current.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eitchtee/Kindle2Markdown/internal/services"
)

// SyncScheduler runs a conversion on a cron schedule.
type SyncScheduler struct {
	service       *services.ConvertService
	clippingsPath string
	schedule      string

	cron         *cron.Cron
	entryID      cron.EntryID
	mu           sync.Mutex
	isRunning    bool
	cancelFunc   context.CancelFunc
	watchdogDone chan struct{}
}

func NewSyncScheduler(service *services.ConvertService, clippingsPath, schedule string) *SyncScheduler {
	return &SyncScheduler{
		service:       service,
		clippingsPath: clippingsPath,
		schedule:      schedule,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins scheduled syncing. Stops automatically when ctx is done.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.clippingsPath == "" {
		log.Printf("Sync scheduler: clippings path not configured, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Sync scheduler: started with schedule '%s'", s.schedule)

	done := make(chan struct{})
	s.watchdogDone = done

	go func() {
		defer close(done)
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sync.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Sync scheduler: stopped")
}

func (s *SyncScheduler) runSync() {
	started := time.Now()
	log.Printf("Sync scheduler: converting %s", s.clippingsPath)

	summary, err := s.service.Convert(context.Background(), s.clippingsPath)
	if err != nil {
		log.Printf("Sync scheduler: conversion failed: %v", err)
		return
	}

	log.Printf("Sync scheduler: %d books, %d clippings exported in %v",
		summary.Books, summary.Clippings, time.Since(started).Round(time.Millisecond))
}
