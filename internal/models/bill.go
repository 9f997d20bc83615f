// Package models holds the durable entities the ingestion core writes.
// All entities carry an immutable creation timestamp (CreatedAt) and a
// mutable last-update timestamp (UpdatedAt), set by GORM.
package models

import (
	"strconv"
	"time"
)

// BillType enumerates the eight legislative vehicle abbreviations.
type BillType string

const (
	BillTypeHR      BillType = "hr"
	BillTypeS       BillType = "s"
	BillTypeHJRes   BillType = "hjres"
	BillTypeSJRes   BillType = "sjres"
	BillTypeHConRes BillType = "hconres"
	BillTypeSConRes BillType = "sconres"
	BillTypeHRes    BillType = "hres"
	BillTypeSRes    BillType = "sres"
)

// AllBillTypes is the canonical iteration order the Orchestrator fans out
// over; the order also determines stagger ordering within a sync run.
var AllBillTypes = []BillType{
	BillTypeHR, BillTypeS, BillTypeHJRes, BillTypeSJRes,
	BillTypeHConRes, BillTypeSConRes, BillTypeHRes, BillTypeSRes,
}

// IsHouse reports whether a bill type originates in the House, used by the
// Aggregate Recomputer's houseCount/senateCount split.
func (t BillType) IsHouse() bool {
	switch t {
	case BillTypeHR, BillTypeHJRes, BillTypeHConRes, BillTypeHRes:
		return true
	default:
		return false
	}
}

// Endpoint bitmask positions. A Bill's SyncedEndpoints is the OR of the
// bits for every sub-endpoint successfully fetched and persisted.
const (
	EndpointDetail    = 1 << 0 // 1
	EndpointActions   = 1 << 1 // 2
	EndpointSubjects  = 1 << 2 // 4
	EndpointSummaries = 1 << 3 // 8
	EndpointText      = 1 << 4 // 16
	EndpointsComplete = EndpointDetail | EndpointActions | EndpointSubjects | EndpointSummaries | EndpointText // 31
)

// BillID builds the natural composite key concat(number, type, congress)
// spec.md §3 specifies for a bill, e.g. "1-hr-119".
func BillID(congress int, billType BillType, billNumber int) string {
	return strconv.Itoa(billNumber) + "-" + string(billType) + "-" + strconv.Itoa(congress)
}

// Bill is the primary entity. Existence in this table implies at least the
// detail endpoint was fetched once (bit EndpointDetail set, or the row was
// produced by backfill from legacy children).
type Bill struct {
	BillID     string   `json:"billId" gorm:"primaryKey;size:64"`
	Congress   int      `json:"congress" gorm:"uniqueIndex:idx_bill_natural,priority:1;index:idx_bill_congress"`
	BillType   BillType `json:"billType" gorm:"uniqueIndex:idx_bill_natural,priority:2;size:10;index:idx_bill_congress_type,priority:2"`
	BillNumber int      `json:"billNumber" gorm:"uniqueIndex:idx_bill_natural,priority:3"`

	Title              string `json:"title"`
	TitleWithoutNumber string `json:"titleWithoutNumber"`
	IntroducedDate     string `json:"introducedDate"`

	SponsorFirstName string `json:"sponsorFirstName"`
	SponsorLastName  string `json:"sponsorLastName"`
	SponsorParty     string `json:"sponsorParty" gorm:"size:8"`
	SponsorState     string `json:"sponsorState" gorm:"size:2"`

	Stage            int    `json:"stage" gorm:"index"`
	StageDescription string `json:"stageDescription"`

	SyncedEndpoints int       `json:"syncedEndpoints" gorm:"index"`
	LastSyncAttempt time.Time `json:"lastSyncAttempt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Bill) TableName() string { return "bills" }

// IsComplete reports whether every sub-endpoint bit is set.
func (b Bill) IsComplete() bool { return b.SyncedEndpoints == EndpointsComplete }

// BillAction is a child of Bill, keyed by (billId, actionDate, actionCode).
// Rows without an action code are dropped at ingest (spec.md §3 invariant).
type BillAction struct {
	BillID           string `json:"billId" gorm:"primaryKey;size:64"`
	ActionDate       string `json:"actionDate" gorm:"primaryKey;size:32"`
	ActionCode       string `json:"actionCode" gorm:"primaryKey;size:32"`
	SourceSystemCode string `json:"sourceSystemCode"`
	SourceSystemName string `json:"sourceSystemName"`
	Text             string `json:"text" gorm:"type:text"`
	Type             string `json:"type"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BillAction) TableName() string { return "bill_actions" }

// BillSubject is a child of Bill, unique per billId (at most one row).
type BillSubject struct {
	BillID               string `json:"billId" gorm:"primaryKey;size:64"`
	PolicyAreaName       string `json:"policyAreaName" gorm:"index"`
	PolicyAreaUpdateDate string `json:"policyAreaUpdateDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BillSubject) TableName() string { return "bill_subjects" }

// BillSummary is a child of Bill keyed by (billId, versionCode). A newly
// observed summary with the same versionCode replaces the stored one iff
// its updateDate is strictly greater (spec.md §3 invariant).
type BillSummary struct {
	BillID      string `json:"billId" gorm:"primaryKey;size:64"`
	VersionCode string `json:"versionCode" gorm:"primaryKey;size:16"`

	ActionDate string `json:"actionDate"`
	ActionDesc string `json:"actionDesc"`
	Text       string `json:"text" gorm:"type:text"`
	UpdateDate string `json:"updateDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BillSummary) TableName() string { return "bill_summaries" }

// BillText is a child of Bill keyed by (billId, date, type). Text versions
// are treated as immutable once stored.
type BillText struct {
	BillID string `json:"billId" gorm:"primaryKey;size:64"`
	Date   string `json:"date" gorm:"primaryKey;size:32"`
	Type   string `json:"type" gorm:"primaryKey;size:32"`

	TextURL string `json:"textUrl"` // Formatted Text format
	PDFURL  string `json:"pdfUrl"`  // PDF format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BillText) TableName() string { return "bill_texts" }

// SummaryRevision is a supplemental, purely observational entity (see
// SPEC_FULL.md Data Model Additions): whenever a BillSummary is replaced
// under the strictly-greater-updateDate rule, the diffengine computes the
// delta between old and new text and a row is written here. No spec.md
// operation reads it back.
type SummaryRevision struct {
	ID                 uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	BillID             string    `json:"billId" gorm:"index;size:64"`
	VersionCode        string    `json:"versionCode" gorm:"size:16"`
	PreviousUpdateDate string    `json:"previousUpdateDate"`
	NewUpdateDate      string    `json:"newUpdateDate"`
	Insertions         int       `json:"insertions"`
	Deletions          int       `json:"deletions"`
	ContentHashBefore  string    `json:"contentHashBefore" gorm:"size:64"`
	ContentHashAfter   string    `json:"contentHashAfter" gorm:"size:64"`
	ComputedAt         time.Time `json:"computedAt"`
}

func (SummaryRevision) TableName() string { return "summary_revisions" }
