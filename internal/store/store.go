// Package store is the Store Writer (spec.md §4.9): a thin, idempotent
// upsert layer over the durable store, one operation per entity kind. It
// also owns the snapshot document and the endpoint-bitmask field on each
// bill.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/billsync/ingestcore/internal/models"
)

// Store wraps a *gorm.DB with the entity-specific upsert operations the
// rest of the core calls. Semantics are "create or replace" except where
// spec.md §3 restricts: BillSummary's strictly-greater-updateDate rule and
// BillText's immutable-once-stored rule.
type Store struct {
	db *gorm.DB
}

// New wraps an existing *gorm.DB.
func New(db *gorm.DB) *Store { return &Store{db: db} }

// DB exposes the underlying connection for components (e.g. the job
// queue) that need direct table access outside the entity-kind API below.
func (s *Store) DB() *gorm.DB { return s.db }

// UpsertBill creates or replaces a Bill row by its natural key.
func (s *Store) UpsertBill(ctx context.Context, b *models.Bill) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "bill_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"congress", "bill_type", "bill_number", "title", "title_without_number",
			"introduced_date", "sponsor_first_name", "sponsor_last_name",
			"sponsor_party", "sponsor_state", "stage", "stage_description", "updated_at",
		}),
	}).Create(b).Error
}

// UpdateBillSyncStatus writes syncedEndpoints and lastSyncAttempt back
// onto a Bill row (spec.md §4.3: "After all attempts complete...").
func (s *Store) UpdateBillSyncStatus(ctx context.Context, billID string, endpointBits int, lastSyncAttempt time.Time) error {
	return s.db.WithContext(ctx).Model(&models.Bill{}).
		Where("bill_id = ?", billID).
		Updates(map[string]any{
			"synced_endpoints":  endpointBits,
			"last_sync_attempt": lastSyncAttempt,
		}).Error
}

// GetBill fetches a Bill by its natural key. Returns gorm.ErrRecordNotFound
// if absent.
func (s *Store) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	var b models.Bill
	if err := s.db.WithContext(ctx).Where("bill_id = ?", billID).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// UpsertBillActions creates or replaces BillAction rows. Rows with an
// empty ActionCode must already have been filtered by the caller
// (spec.md §3 invariant); this method does not re-check.
func (s *Store) UpsertBillActions(ctx context.Context, actions []models.BillAction) error {
	if len(actions) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "bill_id"}, {Name: "action_date"}, {Name: "action_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_system_code", "source_system_name", "text", "type", "updated_at",
		}),
	}).Create(&actions).Error
}

// UpsertBillSubject creates or replaces the single BillSubject row for a
// bill.
func (s *Store) UpsertBillSubject(ctx context.Context, subj *models.BillSubject) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "bill_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"policy_area_name", "policy_area_update_date", "updated_at",
		}),
	}).Create(subj).Error
}

// ExistingSummary fetches the currently-stored BillSummary for (billID,
// versionCode), if any.
func (s *Store) ExistingSummary(ctx context.Context, billID, versionCode string) (*models.BillSummary, error) {
	var existing models.BillSummary
	err := s.db.WithContext(ctx).Where("bill_id = ? AND version_code = ?", billID, versionCode).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// UpsertBillSummary replaces the stored BillSummary row. Callers must
// have already applied the strictly-greater-updateDate rule (spec.md §3)
// before calling this — it always writes.
func (s *Store) UpsertBillSummary(ctx context.Context, sum *models.BillSummary) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "bill_id"}, {Name: "version_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"action_date", "action_desc", "text", "update_date", "updated_at",
		}),
	}).Create(sum).Error
}

// RecordSummaryRevision writes the supplemental diffengine output for a
// summary replacement (SPEC_FULL.md Data Model Additions).
func (s *Store) RecordSummaryRevision(ctx context.Context, rev *models.SummaryRevision) error {
	return s.db.WithContext(ctx).Create(rev).Error
}

// UpsertBillText creates a BillText row iff one does not already exist
// for (billID, date, type) — text versions are immutable once stored
// (spec.md §3).
func (s *Store) UpsertBillText(ctx context.Context, t *models.BillText) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bill_id"}, {Name: "date"}, {Name: "type"}},
		DoNothing: true,
	}).Create(t).Error
}

// HasActions, HasSubject, HasSummary, HasText report whether a bill has
// at least one child row of the respective kind — used by the legacy
// backfill's bitmask-from-data computation (spec.md §4.7).
func (s *Store) HasActions(ctx context.Context, billID string) (bool, error) {
	return s.exists(ctx, &models.BillAction{}, billID)
}

func (s *Store) HasSubject(ctx context.Context, billID string) (bool, error) {
	return s.exists(ctx, &models.BillSubject{}, billID)
}

func (s *Store) HasSummary(ctx context.Context, billID string) (bool, error) {
	return s.exists(ctx, &models.BillSummary{}, billID)
}

func (s *Store) HasText(ctx context.Context, billID string) (bool, error) {
	return s.exists(ctx, &models.BillText{}, billID)
}

func (s *Store) exists(ctx context.Context, model any, billID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("bill_id = ?", billID).Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("store: exists check failed: %w", err)
	}
	return count > 0, nil
}

// CreateSyncSnapshot inserts a new SyncSnapshot with status=running.
func (s *Store) CreateSyncSnapshot(ctx context.Context, snap *models.SyncSnapshot) error {
	return s.db.WithContext(ctx).Create(snap).Error
}

// UpdateSyncSnapshot updates the mutable fields of a snapshot by ID. Per
// spec.md §5, counters are always written as absolute values derived from
// offset, never as increments.
func (s *Store) UpdateSyncSnapshot(ctx context.Context, id string, updates map[string]any) error {
	return s.db.WithContext(ctx).Model(&models.SyncSnapshot{}).Where("id = ?", id).Updates(updates).Error
}

// GetSyncSnapshot fetches a snapshot by ID.
func (s *Store) GetSyncSnapshot(ctx context.Context, id string) (*models.SyncSnapshot, error) {
	var snap models.SyncSnapshot
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&snap).Error; err != nil {
		return nil, err
	}
	return &snap, nil
}

// BillsMissingEndpoints selects up to limit Bills whose syncedEndpoints is
// less than complete, optionally filtered by congress (spec.md §4.7).
func (s *Store) BillsMissingEndpoints(ctx context.Context, congress *int, limit int) ([]models.Bill, error) {
	q := s.db.WithContext(ctx).Where("synced_endpoints < ?", models.EndpointsComplete).
		Order("last_sync_attempt asc").Limit(limit)
	if congress != nil {
		q = q.Where("congress = ?", *congress)
	}
	var bills []models.Bill
	if err := q.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// AllBillsForCongress streams every Bill for a congress in batches, used
// by the Aggregate Recomputer's full scan.
func (s *Store) AllBillsForCongress(ctx context.Context, congress int, batchSize int, fn func([]models.Bill) error) error {
	return s.db.WithContext(ctx).Where("congress = ?", congress).FindInBatches(&[]models.Bill{}, batchSize,
		func(tx *gorm.DB, batch int) error {
			var bills []models.Bill
			if err := tx.Find(&bills).Error; err != nil {
				return err
			}
			return fn(bills)
		}).Error
}

// BillSubjectsForCongress returns every BillSubject whose bill belongs to
// congress, for the top-policy-areas recompute.
func (s *Store) BillSubjectsForCongress(ctx context.Context, congress int) ([]models.BillSubject, error) {
	var subjects []models.BillSubject
	err := s.db.WithContext(ctx).
		Joins("JOIN bills ON bills.bill_id = bill_subjects.bill_id").
		Where("bills.congress = ?", congress).
		Find(&subjects).Error
	return subjects, err
}

// DistinctCongresses returns every congress number that has at least one
// stored Bill, ascending, used by the daily stats cron to know which
// congresses to recompute without the caller having to guess.
func (s *Store) DistinctCongresses(ctx context.Context) ([]int, error) {
	var congresses []int
	err := s.db.WithContext(ctx).Model(&models.Bill{}).
		Distinct().Order("congress asc").Pluck("congress", &congresses).Error
	return congresses, err
}

// ActionsForBill returns every BillAction for a bill ordered by date,
// used by the timeline-metrics recompute.
func (s *Store) ActionsForBill(ctx context.Context, billID string) ([]models.BillAction, error) {
	var actions []models.BillAction
	err := s.db.WithContext(ctx).Where("bill_id = ?", billID).Order("action_date asc").Find(&actions).Error
	return actions, err
}

// UpsertCongressStats writes the CongressStats row for a congress
// atomically (single-document upsert), so readers see either the
// previous or the new snapshot, never a torn one (spec.md §3).
func (s *Store) UpsertCongressStats(ctx context.Context, stats *models.CongressStats) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "congress"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_count", "house_count", "senate_count",
			"stage_introduced", "stage_in_committee", "stage_passed_one_chamber", "stage_passed_both_chambers",
			"stage_vetoed", "stage_to_president", "stage_signed", "stage_became_law",
			"top_policy_areas", "top_sponsors", "timeline_metrics", "recomputed_at", "updated_at",
		}),
	}).Create(stats).Error
}

// Completeness is the observability summary spec.md §7 requires.
type Completeness struct {
	Total    int64
	Complete int64
	Partial  int64
	Legacy   int64
}

// CompletenessStats queries {total, complete, partial, legacy} across all
// bills, optionally scoped to one congress.
func (s *Store) CompletenessStats(ctx context.Context, congress *int) (*Completeness, error) {
	base := s.db.WithContext(ctx).Model(&models.Bill{})
	if congress != nil {
		base = base.Where("congress = ?", *congress)
	}

	var c Completeness
	if err := base.Session(&gorm.Session{}).Count(&c.Total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("synced_endpoints = ?", models.EndpointsComplete).Count(&c.Complete).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("synced_endpoints > 0 AND synced_endpoints < ?", models.EndpointsComplete).Count(&c.Partial).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("synced_endpoints = 0").Count(&c.Legacy).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
