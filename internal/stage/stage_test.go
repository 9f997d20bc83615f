package stage_test

import (
	"testing"

	"github.com/billsync/ingestcore/internal/stage"
)

func TestClassify_NoActions(t *testing.T) {
	got, desc := stage.Classify(nil)
	if got != stage.Introduced {
		t.Errorf("stage = %d, want %d", got, stage.Introduced)
	}
	if desc != "Introduced" {
		t.Errorf("description = %q, want %q", desc, "Introduced")
	}
}

func TestClassify_CommitteeReferral(t *testing.T) {
	actions := []stage.Action{
		{Text: "Referred to the Committee on Ways and Means.", ActionCode: "H11100"},
	}
	got, _ := stage.Classify(actions)
	if got != stage.InCommittee {
		t.Errorf("stage = %d, want %d", got, stage.InCommittee)
	}
}

func TestClassify_PassedOneChamber(t *testing.T) {
	actions := []stage.Action{
		{Text: "Referred to committee", ActionCode: "H11100"},
		{Text: "Passed House", Type: "PassedHouse"},
	}
	got, _ := stage.Classify(actions)
	if got != stage.PassedOneChamber {
		t.Errorf("stage = %d, want %d", got, stage.PassedOneChamber)
	}
}

func TestClassify_PassedBothChambers(t *testing.T) {
	actions := []stage.Action{
		{Text: "Passed House", Type: "PassedHouse"},
		{Text: "Passed Senate", Type: "PassedSenate"},
	}
	got, _ := stage.Classify(actions)
	if got != stage.PassedBothChambers {
		t.Errorf("stage = %d, want %d", got, stage.PassedBothChambers)
	}
}

func TestClassify_ToPresident(t *testing.T) {
	actions := []stage.Action{
		{Text: "Passed House", Type: "PassedHouse"},
		{Text: "Passed Senate", Type: "PassedSenate"},
		{Text: "Presented to President."},
	}
	got, _ := stage.Classify(actions)
	if got != stage.ToPresident {
		t.Errorf("stage = %d, want %d", got, stage.ToPresident)
	}
}

// TestClassify_VetoedAfterToPresident checks the deferred-flag semantics:
// a later veto reclassifies a bill that already carries a to-president
// signal, rather than the to-president early-return winning outright.
func TestClassify_VetoedAfterToPresident(t *testing.T) {
	actions := []stage.Action{
		{Text: "Presented to President."},
		{Text: "Vetoed by President."},
	}
	got, _ := stage.Classify(actions)
	if got != stage.Vetoed {
		t.Errorf("stage = %d, want %d (vetoed must win over a prior to-president signal)", got, stage.Vetoed)
	}
}

func TestClassify_BecameLawWinsRegardlessOfOrder(t *testing.T) {
	actions := []stage.Action{
		{Text: "Became Public Law No: 119-1."},
		{Text: "Referred to committee", ActionCode: "H11100"},
	}
	got, _ := stage.Classify(actions)
	if got != stage.BecameLaw {
		t.Errorf("stage = %d, want %d", got, stage.BecameLaw)
	}
}

func TestClassify_SignedBeforeBecameLaw(t *testing.T) {
	actions := []stage.Action{
		{Text: "Signed by President."},
	}
	got, _ := stage.Classify(actions)
	if got != stage.Signed {
		t.Errorf("stage = %d, want %d", got, stage.Signed)
	}
}

func TestDescription_UnknownStage(t *testing.T) {
	if got := stage.Description(-1); got != "Unknown" {
		t.Errorf("Description(-1) = %q, want %q", got, "Unknown")
	}
}

func TestTimeline_RecordsFirstDateAtEachStage(t *testing.T) {
	actions := []stage.Action{
		{Text: "Referred to committee", ActionCode: "H11100", ActionDate: "2025-01-10"},
		{Text: "Passed House", Type: "PassedHouse", ActionDate: "2025-02-01"},
		{Text: "Passed Senate", Type: "PassedSenate", ActionDate: "2025-03-15"},
		{Text: "Presented to President.", ActionDate: "2025-03-20"},
		{Text: "Signed by President.", ActionDate: "2025-03-25"},
	}
	transitions := stage.Timeline(actions)

	want := map[int]string{
		stage.InCommittee:        "2025-01-10",
		stage.PassedOneChamber:   "2025-02-01",
		stage.PassedBothChambers: "2025-03-15",
		stage.ToPresident:        "2025-03-20",
		stage.Signed:             "2025-03-25",
	}
	got := map[int]string{}
	for _, tr := range transitions {
		got[tr.Stage] = tr.ActionDate
	}
	for s, date := range want {
		if got[s] != date {
			t.Errorf("stage %d date = %q, want %q", s, got[s], date)
		}
	}
}

// TestTimeline_PassedBothChambersDatesToLaterChamber checks that the
// both-chambers transition is stamped with whichever chamber passed second,
// not with the first chamber's own passage date.
func TestTimeline_PassedBothChambersDatesToLaterChamber(t *testing.T) {
	actions := []stage.Action{
		{Text: "Passed Senate", Type: "PassedSenate", ActionDate: "2025-01-01"},
		{Text: "Passed House", Type: "PassedHouse", ActionDate: "2025-06-01"},
	}
	transitions := stage.Timeline(actions)
	for _, tr := range transitions {
		if tr.Stage == stage.PassedBothChambers && tr.ActionDate != "2025-06-01" {
			t.Errorf("PassedBothChambers date = %q, want %q", tr.ActionDate, "2025-06-01")
		}
	}
}
