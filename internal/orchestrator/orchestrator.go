// Package orchestrator is the Sync Orchestrator (spec.md §4.5): it creates
// a SyncSnapshot and fans out one Batch Worker chain per bill type,
// staggering their first enqueue so eight chains don't all hit the Fetcher
// in the same instant.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/billsync/ingestcore/internal/config"
	"github.com/billsync/ingestcore/internal/jobqueue"
	"github.com/billsync/ingestcore/internal/models"
	"github.com/billsync/ingestcore/internal/store"
	"github.com/billsync/ingestcore/internal/worker"
)

// Orchestrator creates snapshots and fans out worker chains.
type Orchestrator struct {
	store *store.Store
	queue *jobqueue.Queue
	cfg   config.Config
	log   zerolog.Logger
}

// New constructs an Orchestrator.
func New(st *store.Store, q *jobqueue.Queue, cfg config.Config, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{store: st, queue: q, cfg: cfg, log: log}
}

// SyncCongress creates one SyncSnapshot for congressNum and enqueues the
// first page of every bill type's chain, each delayed by an additional
// stagger relative to the previous one (spec.md §4.5). updatedSince is
// non-nil for an incremental or full sync (their lookback windows); a nil
// updatedSince lists every bill without a date filter.
func (o *Orchestrator) SyncCongress(ctx context.Context, congressNum int, syncType models.SyncType, updatedSince *time.Time, stagger time.Duration) (string, error) {
	snapshotID := uuid.NewString()
	snap := &models.SyncSnapshot{
		ID:        snapshotID,
		SyncType:  syncType,
		Congress:  congressNum,
		Status:    models.SnapshotRunning,
		StartedAt: time.Now(),
	}
	if err := o.store.CreateSyncSnapshot(ctx, snap); err != nil {
		return "", fmt.Errorf("orchestrator: failed to create snapshot: %w", err)
	}

	log := o.log.With().Str("snapshot_id", snapshotID).Int("congress", congressNum).Str("sync_type", string(syncType)).Logger()

	for i, billType := range models.AllBillTypes {
		delay := time.Duration(i) * stagger
		payload := worker.BatchPayload{
			SnapshotID:   snapshotID,
			Congress:     congressNum,
			BillType:     string(billType),
			Offset:       0,
			UpdatedSince: updatedSince,
		}
		if _, err := o.queue.Enqueue(ctx, models.JobKindBatch, payload, time.Now().Add(delay)); err != nil {
			log.Error().Err(err).Str("bill_type", string(billType)).Msg("orchestrator: failed to enqueue chain start")
			return snapshotID, fmt.Errorf("orchestrator: failed to enqueue %s chain: %w", billType, err)
		}
	}

	log.Info().Msg("orchestrator: sync fanned out across all bill types")
	return snapshotID, nil
}

// IncrementalSync runs the daily incremental sync: only bills updated
// within IncrementalLookbackHours, staggered by IncrementalStaggerMs
// (spec.md §4.5, §4.6).
func (o *Orchestrator) IncrementalSync(ctx context.Context, congressNum int) (string, error) {
	since := time.Now().Add(-time.Duration(o.cfg.IncrementalLookbackHours) * time.Hour)
	stagger := time.Duration(o.cfg.IncrementalStaggerMs) * time.Millisecond
	return o.SyncCongress(ctx, congressNum, models.SyncTypeIncremental, &since, stagger)
}

// FullSync runs the weekly full sync: every bill updated within
// FullLookbackDays, staggered by FullStaggerMs.
func (o *Orchestrator) FullSync(ctx context.Context, congressNum int) (string, error) {
	since := time.Now().Add(-time.Duration(o.cfg.FullLookbackDays) * 24 * time.Hour)
	stagger := time.Duration(o.cfg.FullStaggerMs) * time.Millisecond
	return o.SyncCongress(ctx, congressNum, models.SyncTypeFull, &since, stagger)
}

// CurrentCongress computes the congress number in session for year
// (spec.md GLOSSARY: congresses are numbered consecutively, the 1st
// convening in 1789, each spanning two years).
func CurrentCongress(year int) int {
	return (year-1789)/2 + 1
}

// InitialHistoricalPull seeds the store with the three most recent
// congresses (current and the two preceding), each pull's start separated
// by two hours (spec.md §4.5's historical-seed design note). It does not
// itself block for those two hours — scheduleHistoricalPull delays each
// chain's first enqueue by the pull's two-hour offset plus its bill-type
// stagger, and the returned snapshot IDs correspond 1:1 to congresses in
// descending order.
func (o *Orchestrator) InitialHistoricalPull(ctx context.Context, now time.Time) ([]string, error) {
	current := CurrentCongress(now.Year())
	congresses := []int{current, current - 1, current - 2}

	const pullSeparation = 2 * time.Hour
	stagger := time.Duration(o.cfg.FullStaggerMs) * time.Millisecond

	snapshotIDs := make([]string, 0, len(congresses))
	for i, congressNum := range congresses {
		pullDelay := time.Duration(i) * pullSeparation
		snapshotID, err := o.scheduleHistoricalPull(ctx, congressNum, pullDelay, stagger)
		if err != nil {
			return snapshotIDs, err
		}
		snapshotIDs = append(snapshotIDs, snapshotID)
	}
	return snapshotIDs, nil
}

// scheduleHistoricalPull creates the snapshot immediately (so its ID and
// running status are visible right away) but delays every chain's first
// enqueue by pullDelay plus its bill-type stagger.
func (o *Orchestrator) scheduleHistoricalPull(ctx context.Context, congressNum int, pullDelay, stagger time.Duration) (string, error) {
	snapshotID := uuid.NewString()
	snap := &models.SyncSnapshot{
		ID:        snapshotID,
		SyncType:  models.SyncTypeHistorical,
		Congress:  congressNum,
		Status:    models.SnapshotRunning,
		StartedAt: time.Now(),
	}
	if err := o.store.CreateSyncSnapshot(ctx, snap); err != nil {
		return "", fmt.Errorf("orchestrator: failed to create historical snapshot: %w", err)
	}

	for i, billType := range models.AllBillTypes {
		delay := pullDelay + time.Duration(i)*stagger
		payload := worker.BatchPayload{
			SnapshotID: snapshotID,
			Congress:   congressNum,
			BillType:   string(billType),
			Offset:     0,
		}
		if _, err := o.queue.Enqueue(ctx, models.JobKindBatch, payload, time.Now().Add(delay)); err != nil {
			return snapshotID, fmt.Errorf("orchestrator: failed to enqueue historical chain for congress %d: %w", congressNum, err)
		}
	}
	return snapshotID, nil
}
