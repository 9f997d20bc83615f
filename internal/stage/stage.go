// Package stage is the Stage Classifier (spec.md §4.2): a pure function
// mapping a bill's action history to one of eight progress stages.
package stage

import "strings"

// Canonical stage values (spec.md GLOSSARY).
const (
	Introduced         = 20
	InCommittee        = 40
	PassedOneChamber   = 60
	PassedBothChambers = 80
	Vetoed             = 85
	ToPresident        = 90
	Signed             = 95
	BecameLaw          = 100
)

var descriptions = map[int]string{
	Introduced:         "Introduced",
	InCommittee:        "In Committee",
	PassedOneChamber:   "Passed One Chamber",
	PassedBothChambers: "Passed Both Chambers",
	Vetoed:             "Vetoed",
	ToPresident:        "To President",
	Signed:             "Signed",
	BecameLaw:          "Became Law",
}

// Description returns the canonical label for a stage value.
func Description(stage int) string {
	if d, ok := descriptions[stage]; ok {
		return d
	}
	return "Unknown"
}

// Action is the minimal view of a bill action the classifier needs. It is
// deliberately decoupled from both the wire type (congress.Action) and the
// storage type (models.BillAction) so the classifier has no dependency on
// either package.
type Action struct {
	Text       string
	Type       string
	ActionCode string
	ActionDate string // only consulted by Timeline; Classify ignores it
}

var becameLawCodes = map[string]bool{"36000": true, "E40000": true}
var signedCodes = map[string]bool{"29000": true, "E30000": true}
var vetoedCodes = map[string]bool{"31000": true, "E50000": true}
var toPresidentCodes = map[string]bool{"28000": true, "E20000": true}
var passedHouseCodes = map[string]bool{"H32500": true}
var passedSenateCodes = map[string]bool{"S32500": true}
var committeeCodes = map[string]bool{"5000": true, "14000": true, "H11100": true, "S11100": true}

// Classify performs a single pass over actions and returns the resulting
// stage and its canonical description (spec.md §4.2). The "became law"
// signal is an early return that wins regardless of chronological order;
// "signed" is a flag that outranks every other signal except "became law",
// so a became-law action that follows a signing still yields BecameLaw;
// "to president" is tracked as a deferred flag (not an early
// return) so a later "vetoed" action can still reclassify the bill — see
// SPEC_FULL.md / DESIGN.md for the open-question resolution this adopts.
func Classify(actions []Action) (int, string) {
	var (
		passedHouse  bool
		passedSenate bool
		signed       bool
		vetoed       bool
		toPresident  bool
		raisedStage  = Introduced
	)

	for _, a := range actions {
		text := strings.ToLower(a.Text)
		actionType := strings.ToLower(a.Type)
		code := strings.ToUpper(a.ActionCode)

		switch {
		case strings.Contains(text, "became public law") || strings.Contains(text, "became private law") ||
			actionType == "becamelaw" || becameLawCodes[code]:
			return BecameLaw, Description(BecameLaw)
		case strings.Contains(text, "signed by president") || actionType == "signedbypresident" || signedCodes[code]:
			signed = true
		case strings.Contains(text, "vetoed") || strings.Contains(text, "veto message") ||
			actionType == "vetoed" || vetoedCodes[code]:
			vetoed = true
		case strings.Contains(text, "to president") || strings.Contains(text, "presented to president") || toPresidentCodes[code]:
			toPresident = true
		case strings.Contains(text, "passed house") || actionType == "passedhouse" || passedHouseCodes[code]:
			passedHouse = true
		case strings.Contains(text, "passed senate") || actionType == "passedsenate" || passedSenateCodes[code]:
			passedSenate = true
		case strings.Contains(text, "referred to") || strings.Contains(text, "committee") || committeeCodes[code]:
			if raisedStage == Introduced {
				raisedStage = InCommittee
			}
		}
	}

	switch {
	case signed:
		return Signed, Description(Signed)
	case vetoed:
		return Vetoed, Description(Vetoed)
	case toPresident:
		return ToPresident, Description(ToPresident)
	case passedHouse && passedSenate:
		return PassedBothChambers, Description(PassedBothChambers)
	case passedHouse || passedSenate:
		return PassedOneChamber, Description(PassedOneChamber)
	default:
		return raisedStage, Description(raisedStage)
	}
}

// Transition records the date of the first action whose trigger raised a
// bill to a given stage.
type Transition struct {
	Stage      int
	ActionDate string
}

// Timeline replays the same per-action triggers Classify uses, but instead
// of folding them into one final stage it returns the date each stage was
// first reached, in the order actions occur. actions must already be
// sorted ascending by date. Used by the Aggregate Recomputer's timeline
// metrics (spec.md §4.8): "for each stage, compute the mean days between a
// bill's earliest action and its earliest action matching that stage's
// triggers."
func Timeline(actions []Action) []Transition {
	var (
		passedHouse  bool
		passedSenate bool
		raisedStage  = Introduced
		transitions  []Transition
		reached      = map[int]bool{}
	)

	record := func(s int, date string) {
		if !reached[s] {
			reached[s] = true
			transitions = append(transitions, Transition{Stage: s, ActionDate: date})
		}
	}

	for _, a := range actions {
		text := strings.ToLower(a.Text)
		actionType := strings.ToLower(a.Type)
		code := strings.ToUpper(a.ActionCode)

		switch {
		case strings.Contains(text, "became public law") || strings.Contains(text, "became private law") ||
			actionType == "becamelaw" || becameLawCodes[code]:
			record(BecameLaw, a.ActionDate)
		case strings.Contains(text, "signed by president") || actionType == "signedbypresident" || signedCodes[code]:
			record(Signed, a.ActionDate)
		case strings.Contains(text, "vetoed") || strings.Contains(text, "veto message") ||
			actionType == "vetoed" || vetoedCodes[code]:
			record(Vetoed, a.ActionDate)
		case strings.Contains(text, "to president") || strings.Contains(text, "presented to president") || toPresidentCodes[code]:
			record(ToPresident, a.ActionDate)
		case strings.Contains(text, "passed house") || actionType == "passedhouse" || passedHouseCodes[code]:
			passedHouse = true
			record(PassedOneChamber, a.ActionDate)
			if passedSenate {
				record(PassedBothChambers, a.ActionDate)
			}
		case strings.Contains(text, "passed senate") || actionType == "passedsenate" || passedSenateCodes[code]:
			passedSenate = true
			record(PassedOneChamber, a.ActionDate)
			if passedHouse {
				record(PassedBothChambers, a.ActionDate)
			}
		case strings.Contains(text, "referred to") || strings.Contains(text, "committee") || committeeCodes[code]:
			if raisedStage == Introduced {
				raisedStage = InCommittee
				record(InCommittee, a.ActionDate)
			}
		}
	}

	return transitions
}
