package models

import (
	"time"

	"gorm.io/datatypes"
)

// PolicyAreaCount is one entry of CongressStats.TopPolicyAreas.
type PolicyAreaCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SponsorCount is one entry of CongressStats.TopSponsors.
type SponsorCount struct {
	Name  string `json:"name"`
	Party string `json:"party"`
	State string `json:"state"`
	Count int    `json:"count"`
}

// StageCounts groups per-stage bill counts, matching the eight canonical
// stages in spec.md's GLOSSARY.
type StageCounts struct {
	Introduced         int `json:"introduced"`
	InCommittee        int `json:"inCommittee"`
	PassedOneChamber   int `json:"passedOneChamber"`
	PassedBothChambers int `json:"passedBothChambers"`
	Vetoed             int `json:"vetoed"`
	ToPresident        int `json:"toPresident"`
	Signed             int `json:"signed"`
	BecameLaw          int `json:"becameLaw"`
}

// CongressStats is one per congress, a pure projection of Bills (+ actions
// for timeline metrics). It may be recomputed at any time and is never a
// source of truth (spec.md §3).
type CongressStats struct {
	Congress    int `json:"congress" gorm:"primaryKey"`
	TotalCount  int `json:"totalCount"`
	HouseCount  int `json:"houseCount"`
	SenateCount int `json:"senateCount"`

	StageCounts StageCounts `json:"stageCounts" gorm:"embedded;embeddedPrefix:stage_"`

	TopPolicyAreas  datatypes.JSONType[[]PolicyAreaCount] `json:"topPolicyAreas" gorm:"type:jsonb"`
	TopSponsors     datatypes.JSONType[[]SponsorCount]    `json:"topSponsors" gorm:"type:jsonb"`
	TimelineMetrics datatypes.JSONMap                     `json:"timelineMetrics" gorm:"type:jsonb"` // stage name -> average days

	RecomputedAt time.Time `json:"recomputedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (CongressStats) TableName() string { return "congress_stats" }
