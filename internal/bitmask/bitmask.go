// Package bitmask provides the small set of helpers for manipulating a
// Bill's 5-bit syncedEndpoints mask (spec.md GLOSSARY).
package bitmask

import "github.com/billsync/ingestcore/internal/models"

// Complete is the mask value meaning every sub-endpoint has been fetched.
const Complete = models.EndpointsComplete

// Set returns mask with bit set.
func Set(mask, bit int) int { return mask | bit }

// IsComplete reports whether mask equals Complete.
func IsComplete(mask int) bool { return mask == Complete }

// Missing returns the bits of Complete not present in mask.
func Missing(mask int) int { return Complete &^ mask }

// HasBit reports whether bit is set in mask.
func HasBit(mask, bit int) bool { return mask&bit != 0 }

// FromChildPresence computes the bitmask implied purely by whether a
// bill's child tables have at least one row, per the legacy-backfill rule
// (spec.md §4.7): detail is implied by the Bill row's existence.
func FromChildPresence(hasActions, hasSubject, hasSummary, hasText bool) int {
	mask := models.EndpointDetail
	if hasActions {
		mask |= models.EndpointActions
	}
	if hasSubject {
		mask |= models.EndpointSubjects
	}
	if hasSummary {
		mask |= models.EndpointSummaries
	}
	if hasText {
		mask |= models.EndpointText
	}
	return mask
}
