// Package api is the Control Surface: a small Huma-over-Fiber HTTP layer
// exposing the manual trigger endpoints spec.md §7 calls for plus a
// read-only completeness endpoint, so an operator does not need direct
// database access to kick off or inspect a sync.
package api

import (
	"context"
	"time"

	"github.com/billsync/ingestcore/internal/aggregate"
	"github.com/billsync/ingestcore/internal/config"
	"github.com/billsync/ingestcore/internal/orchestrator"
	"github.com/billsync/ingestcore/internal/repair"
	"github.com/billsync/ingestcore/internal/store"
)

// Service bundles every dependency the Control Surface's handlers call
// into. It holds no state of its own beyond these references.
type Service struct {
	store        *store.Store
	orchestrator *orchestrator.Orchestrator
	repair       *repair.Worker
	recomputer   *aggregate.Recomputer
	cfg          config.Config
}

// NewService constructs a Service.
func NewService(st *store.Store, orch *orchestrator.Orchestrator, rep *repair.Worker, rec *aggregate.Recomputer, cfg config.Config) *Service {
	return &Service{store: st, orchestrator: orch, repair: rep, recomputer: rec, cfg: cfg}
}

// TriggerIncrementalSync starts an incremental sync for congressNum.
func (s *Service) TriggerIncrementalSync(ctx context.Context, congressNum int) (string, error) {
	return s.orchestrator.IncrementalSync(ctx, congressNum)
}

// TriggerFullSync starts a full sync for congressNum.
func (s *Service) TriggerFullSync(ctx context.Context, congressNum int) (string, error) {
	return s.orchestrator.FullSync(ctx, congressNum)
}

// TriggerHistoricalPull starts the three-congress historical seed.
func (s *Service) TriggerHistoricalPull(ctx context.Context) ([]string, error) {
	return s.orchestrator.InitialHistoricalPull(ctx, time.Now())
}

// TriggerRepair starts a repair pass, optionally scoped to one congress.
func (s *Service) TriggerRepair(ctx context.Context, congressNum *int) error {
	return s.repair.RepairIncompleteBills(ctx, repair.RepairPayload{Congress: congressNum})
}

// TriggerBackfill starts the legacy bitmask backfill.
func (s *Service) TriggerBackfill(ctx context.Context) error {
	return s.repair.BackfillSyncStatus(ctx, repair.BackfillPayload{})
}

// TriggerRecomputeAllStats recomputes CongressStats for congressNum
// on demand, out of band from a chain's automatic post-completion call.
func (s *Service) TriggerRecomputeAllStats(ctx context.Context, congressNum int) error {
	return s.recomputer.Recompute(ctx, congressNum)
}

// Completeness exposes the Store's completeness summary.
func (s *Service) Completeness(ctx context.Context, congressNum *int) (*store.Completeness, error) {
	return s.store.CompletenessStats(ctx, congressNum)
}
