// Package diffengine computes structured diffs between two revisions of a
// bill summary's text using the Myers algorithm. The original ingestion
// system diffed whole bill-text versions; the distilled spec only retains
// the latest summary text per version code, so this is wired onto summary
// replacement instead (see SPEC_FULL.md's Data Model Additions and
// internal/assembler's summary-upsert step).
package diffengine

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/aymanbagabas/go-udiff/myers"
)

// Delta is the structured diff between two text revisions.
type Delta struct {
	Insertions int
	Deletions  int
	Unchanged  int
}

// ComputeHash generates a SHA-256 hash of the content, used to detect
// whether two revisions are byte-identical without storing both bodies.
func ComputeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// Compute calculates the diff between textA (previous) and textB (new)
// using the Myers algorithm. A missing trailing newline on either text is
// ignored, so a line appended after an unterminated last line counts as
// one insertion and no deletion.
func Compute(textA, textB string) (*Delta, error) {
	a, b := textA, textB
	if a != "" && !strings.HasSuffix(a, "\n") {
		a += "\n"
	}
	if b != "" && !strings.HasSuffix(b, "\n") {
		b += "\n"
	}
	edits := myers.ComputeEdits(a, b)
	unifiedDiff, err := udiff.ToUnified("previous", "new", a, edits, 3)
	if err != nil {
		return nil, err
	}

	delta := &Delta{}
	for _, line := range strings.Split(unifiedDiff, "\n") {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			if !strings.HasPrefix(line, "+++") {
				delta.Insertions++
			}
		case '-':
			if !strings.HasPrefix(line, "---") {
				delta.Deletions++
			}
		case ' ':
			delta.Unchanged++
		}
	}

	if delta.Insertions == 0 && delta.Deletions == 0 && delta.Unchanged == 0 {
		linesA := strings.Split(textA, "\n")
		linesB := strings.Split(textB, "\n")
		delta.Unchanged = max(len(linesA), len(linesB))
	}

	return delta, nil
}
