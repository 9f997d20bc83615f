package diffengine_test

import (
	"testing"

	"github.com/billsync/ingestcore/internal/diffengine"
)

func TestComputeHash_Deterministic(t *testing.T) {
	content := "SECTION 1. SHORT TITLE.\nThis Act may be cited as the Test Act."
	h1 := diffengine.ComputeHash(content)
	h2 := diffengine.ComputeHash(content)
	if h1 != h2 {
		t.Errorf("hash not deterministic: %q != %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
}

func TestComputeHash_DiffersOnChange(t *testing.T) {
	a := diffengine.ComputeHash("version one")
	b := diffengine.ComputeHash("version two")
	if a == b {
		t.Error("distinct content should hash differently")
	}
}

func TestCompute_IdenticalText(t *testing.T) {
	text := "line one\nline two\nline three"
	delta, err := diffengine.Compute(text, text)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if delta.Insertions != 0 || delta.Deletions != 0 {
		t.Errorf("identical text should have no insertions/deletions, got +%d/-%d", delta.Insertions, delta.Deletions)
	}
}

func TestCompute_AppendedLine(t *testing.T) {
	before := "line one\nline two"
	after := "line one\nline two\nline three"
	delta, err := diffengine.Compute(before, after)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if delta.Insertions == 0 {
		t.Error("expected at least one insertion for an appended line")
	}
	if delta.Deletions != 0 {
		t.Errorf("expected no deletions, got %d", delta.Deletions)
	}
}

func TestCompute_RemovedLine(t *testing.T) {
	before := "line one\nline two\nline three"
	after := "line one\nline three"
	delta, err := diffengine.Compute(before, after)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if delta.Deletions == 0 {
		t.Error("expected at least one deletion for a removed line")
	}
}
