// Package logging wires up the structured log sink used across the
// ingestion core. Every batch and bill crossing is one event, carrying
// snapshot/congress/billType/offset/billId fields so a single run can be
// reconstructed from the log stream.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns a console-friendly zerolog.Logger for local/dev use, or a
// plain JSON logger when LOG_FORMAT=json is set (the production profile).
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if os.Getenv("LOG_FORMAT") == "json" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	return zerolog.New(writer).With().Timestamp().Logger()
}

// Fields is the canonical set of correlation fields a chain threads through
// its log events. With omits zero-valued fields.
type Fields struct {
	SnapshotID string
	Congress   int
	BillType   string
	Offset     int
	BillID     string
}

// With attaches the non-empty fields to the given event-building context.
func With(l zerolog.Logger, f Fields) zerolog.Logger {
	ctx := l.With()
	if f.SnapshotID != "" {
		ctx = ctx.Str("snapshot_id", f.SnapshotID)
	}
	if f.Congress != 0 {
		ctx = ctx.Int("congress", f.Congress)
	}
	if f.BillType != "" {
		ctx = ctx.Str("bill_type", f.BillType)
	}
	if f.Offset != 0 {
		ctx = ctx.Int("offset", f.Offset)
	}
	if f.BillID != "" {
		ctx = ctx.Str("bill_id", f.BillID)
	}
	return ctx.Logger()
}
