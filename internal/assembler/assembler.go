// Package assembler is the Bill Assembler (spec.md §4.3): for a single
// bill it orchestrates up to five sub-endpoint fetches, transforms each
// response, and persists via the Store Writer, tracking which endpoints
// succeeded via a 5-bit mask.
package assembler

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/billsync/ingestcore/internal/congress"
	"github.com/billsync/ingestcore/internal/diffengine"
	"github.com/billsync/ingestcore/internal/models"
	"github.com/billsync/ingestcore/internal/stage"
	"github.com/billsync/ingestcore/internal/store"
)

// titleDesignator strips a leading "H.R. 1 - " style designator from a
// bill's title (spec.md §4.3).
var titleDesignator = regexp.MustCompile(`^(H\.R\.|S\.|H\.J\.Res\.|S\.J\.Res\.|H\.Con\.Res\.|S\.Con\.Res\.|H\.Res\.|S\.Res\.)\s*\d+\s*[-–]\s*`)

// StripTitleDesignator removes the leading bill-number designator from a
// title.
func StripTitleDesignator(title string) string {
	return titleDesignator.ReplaceAllString(title, "")
}

// Assembler orchestrates the five sub-endpoint fetches for one bill.
type Assembler struct {
	client *congress.Client
	store  *store.Store
	log    zerolog.Logger
}

// New constructs an Assembler.
func New(client *congress.Client, st *store.Store, log zerolog.Logger) *Assembler {
	return &Assembler{client: client, store: st, log: log}
}

// Result reports the outcome of one Assemble call.
type Result struct {
	BillID       string
	Success      bool // false iff the detail fetch or the Bill upsert failed
	EndpointBits int
}

// Assemble performs the five sub-endpoint fetches for (congress, billType,
// billNumber) in order, with D_req spacing enforced by the Client, and
// persists each via the Store Writer. It is idempotent: re-running it
// against the same upstream response leaves the Bill row and its children
// byte-identical and never decreases syncedEndpoints (spec.md §8).
func (a *Assembler) Assemble(ctx context.Context, congressNum int, billType models.BillType, billNumber int, snapshotID string) (*Result, error) {
	billID := models.BillID(congressNum, billType, billNumber)
	log := a.log.With().Str("snapshot_id", snapshotID).Int("congress", congressNum).
		Str("bill_type", string(billType)).Str("bill_id", billID).Logger()

	endpointBits := 0
	now := time.Now()

	// 1. detail — fatal if it fails.
	detail, err := a.client.GetBillDetail(ctx, congressNum, string(billType), billNumber)
	if err != nil {
		log.Warn().Err(err).Msg("bill detail fetch failed; abandoning bill")
		_ = a.store.UpdateBillSyncStatus(ctx, billID, endpointBits, now)
		return &Result{BillID: billID, Success: false, EndpointBits: endpointBits}, nil
	}
	endpointBits |= models.EndpointDetail

	var sponsorFirst, sponsorLast, sponsorParty, sponsorState string
	if len(detail.Sponsors) > 0 {
		s := detail.Sponsors[0]
		sponsorFirst, sponsorLast, sponsorParty, sponsorState = s.FirstName, s.LastName, s.Party, s.State
	}

	// 2. actions — non-fatal.
	var actionEntries []congress.Action
	actions, actionsOK, actionsErr := a.client.GetBillActions(ctx, congressNum, string(billType), billNumber)
	if actionsErr != nil {
		log.Warn().Err(actionsErr).Msg("bill actions fetch failed; proceeding with empty action list")
	} else if actionsOK {
		endpointBits |= models.EndpointActions
		actionEntries = actions
	}

	classifierInput := make([]stage.Action, 0, len(actionEntries))
	for _, ac := range actionEntries {
		classifierInput = append(classifierInput, stage.Action{Text: ac.Text, Type: ac.Type, ActionCode: ac.ActionCode})
	}
	stageValue, stageDesc := stage.Classify(classifierInput)

	// 3. upsert Bill + BillActions.
	bill := &models.Bill{
		BillID:             billID,
		Congress:           congressNum,
		BillType:           billType,
		BillNumber:         billNumber,
		Title:              detail.Title,
		TitleWithoutNumber: StripTitleDesignator(detail.Title),
		IntroducedDate:     detail.IntroducedDate,
		SponsorFirstName:   sponsorFirst,
		SponsorLastName:    sponsorLast,
		SponsorParty:       sponsorParty,
		SponsorState:       sponsorState,
		Stage:              stageValue,
		StageDescription:   stageDesc,
	}
	if err := a.store.UpsertBill(ctx, bill); err != nil {
		log.Error().Err(err).Msg("store error upserting bill")
		_ = a.store.UpdateBillSyncStatus(ctx, billID, endpointBits, now)
		return &Result{BillID: billID, Success: false, EndpointBits: endpointBits}, nil
	}

	var rows []models.BillAction
	for _, ac := range actionEntries {
		if ac.ActionCode == "" {
			continue // spec.md §3: rows without an action code are dropped at ingest
		}
		rows = append(rows, models.BillAction{
			BillID:           billID,
			ActionDate:       ac.ActionDate,
			ActionCode:       ac.ActionCode,
			SourceSystemCode: strconv.Itoa(ac.SourceSystem.Code),
			SourceSystemName: ac.SourceSystem.Name,
			Text:             ac.Text,
			Type:             ac.Type,
		})
	}
	if err := a.store.UpsertBillActions(ctx, rows); err != nil {
		log.Error().Err(err).Msg("store error upserting bill actions")
	}

	// 4. subjects.
	if policyArea, ok, pErr := a.client.GetBillSubjects(ctx, congressNum, string(billType), billNumber); pErr != nil {
		log.Warn().Err(pErr).Msg("bill subjects fetch failed")
	} else if ok {
		endpointBits |= models.EndpointSubjects
		if policyArea != nil {
			err := a.store.UpsertBillSubject(ctx, &models.BillSubject{
				BillID:               billID,
				PolicyAreaName:       policyArea.Name,
				PolicyAreaUpdateDate: policyArea.UpdateDate,
			})
			if err != nil {
				log.Error().Err(err).Msg("store error upserting bill subject")
			}
		}
	}

	// 5. summaries.
	if summaries, ok, sErr := a.client.GetBillSummaries(ctx, congressNum, string(billType), billNumber); sErr != nil {
		log.Warn().Err(sErr).Msg("bill summaries fetch failed")
	} else if ok {
		endpointBits |= models.EndpointSummaries
		for _, sum := range summaries {
			if err := a.upsertSummary(ctx, billID, sum); err != nil {
				log.Error().Err(err).Str("version_code", sum.VersionCode).Msg("store error upserting bill summary")
			}
		}
	}

	// 6. text — latest version only (last entry of textVersions).
	if versions, ok, tErr := a.client.GetBillTextVersions(ctx, congressNum, string(billType), billNumber); tErr != nil {
		log.Warn().Err(tErr).Msg("bill text fetch failed")
	} else if ok {
		endpointBits |= models.EndpointText
		if len(versions) > 0 {
			latest := versions[len(versions)-1]
			textURL, pdfURL := congress.FindTextURLs(latest)
			err := a.store.UpsertBillText(ctx, &models.BillText{
				BillID:  billID,
				Date:    latest.Date,
				Type:    latest.Type,
				TextURL: textURL,
				PDFURL:  pdfURL,
			})
			if err != nil {
				log.Error().Err(err).Msg("store error upserting bill text")
			}
		}
	}

	if err := a.store.UpdateBillSyncStatus(ctx, billID, endpointBits, now); err != nil {
		log.Error().Err(err).Msg("store error updating bill sync status")
	}

	log.Info().Int("synced_endpoints", endpointBits).Msg("bill assembled")
	return &Result{BillID: billID, Success: true, EndpointBits: endpointBits}, nil
}

// upsertSummary applies the strictly-greater-updateDate replace rule
// (spec.md §3) and, on replacement, computes a diff via diffengine and
// records a SummaryRevision (SPEC_FULL.md supplemental entity).
func (a *Assembler) upsertSummary(ctx context.Context, billID string, sum congress.Summary) error {
	existing, err := a.store.ExistingSummary(ctx, billID, sum.VersionCode)
	if err != nil {
		return err
	}

	row := &models.BillSummary{
		BillID:      billID,
		VersionCode: sum.VersionCode,
		ActionDate:  sum.ActionDate,
		ActionDesc:  sum.ActionDesc,
		Text:        sum.Text,
		UpdateDate:  sum.UpdateDate,
	}

	if existing == nil {
		return a.store.UpsertBillSummary(ctx, row)
	}
	if sum.UpdateDate <= existing.UpdateDate {
		return nil // not strictly greater: keep the stored version
	}

	if err := a.store.UpsertBillSummary(ctx, row); err != nil {
		return err
	}

	delta, diffErr := diffengine.Compute(existing.Text, sum.Text)
	if diffErr != nil {
		return nil // diff is observational only; never fail ingestion over it
	}
	rev := &models.SummaryRevision{
		BillID:             billID,
		VersionCode:        sum.VersionCode,
		PreviousUpdateDate: existing.UpdateDate,
		NewUpdateDate:      sum.UpdateDate,
		Insertions:         delta.Insertions,
		Deletions:          delta.Deletions,
		ContentHashBefore:  diffengine.ComputeHash(existing.Text),
		ContentHashAfter:   diffengine.ComputeHash(sum.Text),
		ComputedAt:         time.Now(),
	}
	return a.store.RecordSummaryRevision(ctx, rev)
}
