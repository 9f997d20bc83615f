package scheduler_test

import (
	"testing"

	"github.com/billsync/ingestcore/internal/config"
	"github.com/billsync/ingestcore/internal/logging"
	"github.com/billsync/ingestcore/internal/scheduler"
)

// TestRegister installs the four cron entries and checks no invalid cron
// spec slipped in. Register never invokes the handlers, so nil
// orchestrator/repair/recomputer/store dependencies are safe here.
func TestRegister(t *testing.T) {
	s := scheduler.New(nil, nil, nil, nil, config.Default(), logging.New())
	if err := s.Register(); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	s.Start()
	defer s.Stop()
}
