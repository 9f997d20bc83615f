package orchestrator_test

import (
	"testing"

	"github.com/billsync/ingestcore/internal/orchestrator"
)

func TestCurrentCongress(t *testing.T) {
	cases := []struct {
		year int
		want int
	}{
		{1789, 1},
		{1790, 1},
		{1791, 2},
		{2025, 119},
		{2026, 119},
		{2027, 120},
	}
	for _, c := range cases {
		if got := orchestrator.CurrentCongress(c.year); got != c.want {
			t.Errorf("CurrentCongress(%d) = %d, want %d", c.year, got, c.want)
		}
	}
}
