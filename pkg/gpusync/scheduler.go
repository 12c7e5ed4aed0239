/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package gpusync

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"k8s.io/klog/v2"

	"github.com/openkcloud/kcloud-manage/pkg/config"
	"github.com/openkcloud/kcloud-manage/pkg/telemetry"
)

// Scheduler drives the reconciliation loop: one telemetry fetch per
// tick, flavors first, then pod state over the same sample set. Cycle
// failures are logged and swallowed so one bad tick never stops the
// loop.
type Scheduler struct {
	syncer       *Syncer
	telemetryCli *telemetry.Client
	cron         *cron.Cron
}

func NewScheduler(syncer *Syncer, telemetryCli *telemetry.Client) *Scheduler {
	return &Scheduler{
		syncer:       syncer,
		telemetryCli: telemetryCli,
	}
}

// Start begins the periodic sync. Overlapping ticks are skipped, so at
// most one cycle is in flight at any time.
func (s *Scheduler) Start() error {
	if !config.IsGpuSyncEnable() {
		klog.Infof("gpu sync is disabled")
		return nil
	}
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	interval := config.GetGpuSyncIntervalSecond()
	if _, err := c.AddJob(fmt.Sprintf("@every %ds", interval), s); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	klog.Infof("started gpu sync, interval: %ds", interval)
	return nil
}

// Stop halts the loop and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	klog.Infof("stopped gpu sync")
}

// Run executes one reconciliation cycle. It implements cron.Job.
func (s *Scheduler) Run() {
	start := time.Now()
	ctx := context.Background()

	samples, err := s.telemetryCli.QueryMigModeMetric(ctx)
	if err != nil {
		klog.Errorf("gpu sync cycle aborted: %v", err)
		return
	}
	if _, err = s.syncer.SyncFlavors(ctx, samples); err != nil {
		klog.Errorf("flavor sync failed: %v", err)
		return
	}
	if err = s.syncer.SyncPods(ctx, samples); err != nil {
		klog.Errorf("pod state sync failed: %v", err)
		return
	}
	klog.V(4).Infof("gpu sync cycle finished in %v", time.Since(start))
}
