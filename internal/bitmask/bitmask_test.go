package bitmask_test

import (
	"testing"

	"github.com/billsync/ingestcore/internal/bitmask"
	"github.com/billsync/ingestcore/internal/models"
)

func TestSetAndIsComplete(t *testing.T) {
	mask := 0
	mask = bitmask.Set(mask, models.EndpointDetail)
	if bitmask.IsComplete(mask) {
		t.Fatal("mask should not be complete with only detail set")
	}
	mask = bitmask.Set(mask, models.EndpointActions)
	mask = bitmask.Set(mask, models.EndpointSubjects)
	mask = bitmask.Set(mask, models.EndpointSummaries)
	mask = bitmask.Set(mask, models.EndpointText)
	if !bitmask.IsComplete(mask) {
		t.Fatalf("mask = %d, want complete (%d)", mask, bitmask.Complete)
	}
}

func TestMissing(t *testing.T) {
	mask := models.EndpointDetail | models.EndpointActions
	missing := bitmask.Missing(mask)
	want := models.EndpointSubjects | models.EndpointSummaries | models.EndpointText
	if missing != want {
		t.Errorf("Missing(%d) = %d, want %d", mask, missing, want)
	}
}

func TestHasBit(t *testing.T) {
	mask := models.EndpointSummaries
	if !bitmask.HasBit(mask, models.EndpointSummaries) {
		t.Error("expected summaries bit to be set")
	}
	if bitmask.HasBit(mask, models.EndpointText) {
		t.Error("expected text bit to be unset")
	}
}

func TestFromChildPresence(t *testing.T) {
	mask := bitmask.FromChildPresence(true, false, true, false)
	want := models.EndpointDetail | models.EndpointActions | models.EndpointSummaries
	if mask != want {
		t.Errorf("FromChildPresence(true,false,true,false) = %d, want %d", mask, want)
	}

	full := bitmask.FromChildPresence(true, true, true, true)
	if !bitmask.IsComplete(full) {
		t.Errorf("FromChildPresence(all true) = %d, want complete", full)
	}
}
