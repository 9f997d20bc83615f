// Package scheduler wires the four periodic jobs (spec.md §4.6, §4.8) onto
// robfig/cron. Each cron tick only creates a snapshot, enqueues job-queue
// rows, or runs the recomputer directly — it never performs HTTP work on
// the cron goroutine itself, so a slow upstream can never block the
// scheduler from firing its next job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/billsync/ingestcore/internal/config"
	"github.com/billsync/ingestcore/internal/jobqueue"
	"github.com/billsync/ingestcore/internal/models"
	"github.com/billsync/ingestcore/internal/orchestrator"
	"github.com/billsync/ingestcore/internal/repair"
	"github.com/billsync/ingestcore/internal/store"
)

// Recomputer is implemented by internal/aggregate.Recomputer. The
// scheduler depends on this narrow interface, the same one
// internal/worker depends on, so it needs no direct import of aggregate's
// store-scanning internals.
type Recomputer interface {
	Recompute(ctx context.Context, congress int) error
}

// Scheduler owns the cron process for the four periodic jobs.
type Scheduler struct {
	cron       *cron.Cron
	orch       *orchestrator.Orchestrator
	rep        *repair.Worker
	recomputer Recomputer
	store      *store.Store
	cfg        config.Config
	log        zerolog.Logger
	clock      func() time.Time
}

// New constructs a Scheduler bound to orch, rep, and rec. clock defaults
// to time.Now and is only overridden by tests. st, which the repair and
// daily stats jobs use, may be nil as long as no registered job fires
// (tests that only exercise cron wiring).
func New(orch *orchestrator.Orchestrator, rep *repair.Worker, rec Recomputer, st *store.Store, cfg config.Config, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		orch:       orch,
		rep:        rep,
		recomputer: rec,
		store:      st,
		cfg:        cfg,
		log:        log,
		clock:      time.Now,
	}
}

// Register installs the four cron entries: daily incremental sync at
// 01:00 UTC, weekly full sync Sunday 02:00 UTC, weekly repair Wednesday
// 03:00 UTC, and a daily stats recompute at cfg.DailyStatsRecomputeHour
// UTC (spec.md §4.6, §4.8 — "invoked on snapshot completion and by a
// daily stats cron"). The daily recompute runs independently of any sync
// chain, so stats stay fresh even on days nothing else enqueues a chain
// completion.
func (s *Scheduler) Register() error {
	if _, err := s.cron.AddFunc("0 1 * * *", s.runIncrementalSync); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 2 * * 0", s.runFullSync); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 3 * * 3", s.runRepair); err != nil {
		return err
	}
	dailyStatsSpec := fmt.Sprintf("0 %d * * *", s.cfg.DailyStatsRecomputeHour)
	if _, err := s.cron.AddFunc(dailyStatsSpec, s.runDailyStatsRecompute); err != nil {
		return err
	}
	return nil
}

// Start begins running registered cron entries in their own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the cron scheduler, waiting for any in-flight tick to finish.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

func (s *Scheduler) runIncrementalSync() {
	ctx := context.Background()
	congressNum := orchestrator.CurrentCongress(s.clock().Year())
	snapshotID, err := s.orch.IncrementalSync(ctx, congressNum)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduler: incremental sync enqueue failed")
		return
	}
	s.log.Info().Str("snapshot_id", snapshotID).Msg("scheduler: incremental sync enqueued")
}

func (s *Scheduler) runFullSync() {
	ctx := context.Background()
	congressNum := orchestrator.CurrentCongress(s.clock().Year())
	snapshotID, err := s.orch.FullSync(ctx, congressNum)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduler: full sync enqueue failed")
		return
	}
	s.log.Info().Str("snapshot_id", snapshotID).Msg("scheduler: full sync enqueued")
}

func (s *Scheduler) runRepair() {
	ctx := context.Background()
	if _, err := jobqueue.New(s.store.DB()).Enqueue(ctx, models.JobKindRepair, repair.RepairPayload{}, s.clock()); err != nil {
		s.log.Error().Err(err).Msg("scheduler: repair enqueue failed")
	}
}

// runDailyStatsRecompute recomputes CongressStats for every congress that
// has at least one stored bill, independent of whether any sync chain
// completed that day (spec.md §4.8: the recomputer runs "on snapshot
// completion and by a daily stats cron").
func (s *Scheduler) runDailyStatsRecompute() {
	ctx := context.Background()
	congresses, err := s.store.DistinctCongresses(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduler: failed to list congresses for daily stats recompute")
		return
	}
	for _, congressNum := range congresses {
		if err := s.recomputer.Recompute(ctx, congressNum); err != nil {
			s.log.Error().Err(err).Int("congress", congressNum).Msg("scheduler: daily stats recompute failed")
		}
	}
}
