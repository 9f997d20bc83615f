// Package aggregate is the Aggregate Recomputer (spec.md §4.8): a pure
// projection from Bills (and, for timeline metrics, BillActions) onto one
// CongressStats row per congress. It never has inputs other than what's
// already stored, and its output is always safe to throw away and
// recompute from scratch.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/billsync/ingestcore/internal/config"
	"github.com/billsync/ingestcore/internal/models"
	"github.com/billsync/ingestcore/internal/stage"
	"github.com/billsync/ingestcore/internal/store"
)

// Recomputer owns the full per-congress stats recompute.
type Recomputer struct {
	store *store.Store
	cfg   config.Config
	log   zerolog.Logger
}

// New constructs a Recomputer.
func New(st *store.Store, cfg config.Config, log zerolog.Logger) *Recomputer {
	return &Recomputer{store: st, cfg: cfg, log: log}
}

// Recompute rebuilds CongressStats for congressNum from the current Bills
// (and BillSubjects, BillActions) and writes it atomically via the Store
// Writer. It satisfies internal/worker.Recomputer.
func (r *Recomputer) Recompute(ctx context.Context, congressNum int) error {
	log := r.log.With().Int("congress", congressNum).Logger()

	counts := models.StageCounts{}
	total, house, senate := 0, 0, 0

	sponsorCounts := map[sponsorKey]int{}
	timelineSums := map[string]float64{}
	timelineCounts := map[string]int{}

	batchErr := r.store.AllBillsForCongress(ctx, congressNum, 500, func(batch []models.Bill) error {
		for _, b := range batch {
			total++
			if b.BillType.IsHouse() {
				house++
			} else {
				senate++
			}
			addStageCount(&counts, b.Stage)

			if b.SponsorLastName != "" {
				key := sponsorKey{first: b.SponsorFirstName, last: b.SponsorLastName, party: b.SponsorParty, state: b.SponsorState}
				sponsorCounts[key]++
			}

			if b.Stage > stage.Introduced {
				samples, sampleErr := r.timelineSamples(ctx, b)
				if sampleErr != nil {
					log.Warn().Err(sampleErr).Str("bill_id", b.BillID).Msg("aggregate: skipping timeline sample")
				}
				for desc, days := range samples {
					timelineSums[desc] += days
					timelineCounts[desc]++
				}
			}
		}
		return nil
	})
	if batchErr != nil {
		return fmt.Errorf("aggregate: failed to scan bills for congress %d: %w", congressNum, batchErr)
	}

	topPolicyAreas, err := r.topPolicyAreas(ctx, congressNum)
	if err != nil {
		return fmt.Errorf("aggregate: failed to compute top policy areas: %w", err)
	}

	topSponsors := topNSponsors(sponsorCounts, r.cfg.TopN)

	timeline := datatypes.JSONMap{}
	for desc, sum := range timelineSums {
		if n := timelineCounts[desc]; n > 0 {
			timeline[desc] = sum / float64(n)
		}
	}

	stats := &models.CongressStats{
		Congress:        congressNum,
		TotalCount:      total,
		HouseCount:      house,
		SenateCount:     senate,
		StageCounts:     counts,
		TopPolicyAreas:  datatypes.NewJSONType(topPolicyAreas),
		TopSponsors:     datatypes.NewJSONType(topSponsors),
		TimelineMetrics: timeline,
		RecomputedAt:    time.Now(),
	}

	if err := r.store.UpsertCongressStats(ctx, stats); err != nil {
		return fmt.Errorf("aggregate: failed to write congress stats: %w", err)
	}

	log.Info().Int("total", total).Msg("aggregate: congress stats recomputed")
	return nil
}

// timelineSamples computes, for every stage a bill's action history has
// reached, the number of days between the bill's earliest action and its
// earliest action matching that stage's triggers (spec.md §4.8). A bill
// that passed through several stages contributes one sample per stage
// reached, not just its current one. Unparseable or out-of-order dates are
// dropped rather than distorting the average.
func (r *Recomputer) timelineSamples(ctx context.Context, b models.Bill) (map[string]float64, error) {
	actions, err := r.store.ActionsForBill(ctx, b.BillID)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, nil
	}

	earliest, err := time.Parse("2006-01-02", actions[0].ActionDate)
	if err != nil {
		return nil, nil
	}

	classifierInput := make([]stage.Action, len(actions))
	for i, a := range actions {
		classifierInput[i] = stage.Action{Text: a.Text, Type: a.Type, ActionCode: a.ActionCode, ActionDate: a.ActionDate}
	}

	samples := map[string]float64{}
	for _, t := range stage.Timeline(classifierInput) {
		triggerDate, err := time.Parse("2006-01-02", t.ActionDate)
		if err != nil || triggerDate.Before(earliest) {
			continue
		}
		samples[stage.Description(t.Stage)] = triggerDate.Sub(earliest).Hours() / 24
	}
	return samples, nil
}

func addStageCount(c *models.StageCounts, s int) {
	switch s {
	case stage.Introduced:
		c.Introduced++
	case stage.InCommittee:
		c.InCommittee++
	case stage.PassedOneChamber:
		c.PassedOneChamber++
	case stage.PassedBothChambers:
		c.PassedBothChambers++
	case stage.Vetoed:
		c.Vetoed++
	case stage.ToPresident:
		c.ToPresident++
	case stage.Signed:
		c.Signed++
	case stage.BecameLaw:
		c.BecameLaw++
	}
}

// topPolicyAreas groups every BillSubject for a congress by policy area
// name, ranks by count descending, and breaks ties alphabetically
// (spec.md §4.8).
func (r *Recomputer) topPolicyAreas(ctx context.Context, congressNum int) ([]models.PolicyAreaCount, error) {
	subjects, err := r.store.BillSubjectsForCongress(ctx, congressNum)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, s := range subjects {
		if s.PolicyAreaName == "" {
			continue
		}
		counts[s.PolicyAreaName]++
	}

	result := make([]models.PolicyAreaCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, models.PolicyAreaCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})

	if len(result) > r.cfg.TopN {
		result = result[:r.cfg.TopN]
	}
	return result, nil
}

type sponsorKey struct {
	first, last, party, state string
}

// topNSponsors ranks sponsors by bill count descending, ties broken
// alphabetically by the "first last" display name (spec.md §4.8).
func topNSponsors(counts map[sponsorKey]int, topN int) []models.SponsorCount {
	result := make([]models.SponsorCount, 0, len(counts))
	for key, count := range counts {
		result = append(result, models.SponsorCount{
			Name:  key.first + " " + key.last,
			Party: key.party,
			State: key.state,
			Count: count,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	if len(result) > topN {
		result = result[:topN]
	}
	return result
}
