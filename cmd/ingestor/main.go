package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/billsync/ingestcore/internal/aggregate"
	"github.com/billsync/ingestcore/internal/assembler"
	"github.com/billsync/ingestcore/internal/config"
	"github.com/billsync/ingestcore/internal/congress"
	"github.com/billsync/ingestcore/internal/database"
	"github.com/billsync/ingestcore/internal/jobqueue"
	"github.com/billsync/ingestcore/internal/logging"
	"github.com/billsync/ingestcore/internal/models"
	"github.com/billsync/ingestcore/internal/orchestrator"
	"github.com/billsync/ingestcore/internal/repair"
	"github.com/billsync/ingestcore/internal/scheduler"
	"github.com/billsync/ingestcore/internal/store"
	"github.com/billsync/ingestcore/internal/worker"
)

var errUnknownJobKind = errors.New("ingestor: unknown job kind")

func main() {
	pollInterval := flag.Duration("poll-interval", 2*time.Second, "job-queue poll interval")
	jobBatchSize := flag.Int("job-batch-size", 10, "maximum due jobs claimed per poll")
	flag.Parse()

	_ = godotenv.Load()
	log := logging.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("ingestor: configuration error")
	}

	db, err := database.Connect(database.ConfigFromApp(cfg.DatabaseURL, cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("ingestor: failed to connect to database")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("ingestor: migration failed")
	}
	log.Info().Msg("ingestor: database migrations complete")

	client, err := congress.New(cfg.CongressAPIKey,
		congress.WithInterRequestDelay(cfg.InterRequestDelay),
		congress.WithMaxRetries(cfg.MaxRetries),
		congress.WithInitialBackoff(cfg.InitialBackoff),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("ingestor: failed to build congress client")
	}

	st := store.New(db)
	queue := jobqueue.New(db)
	asm := assembler.New(client, st, log)
	rec := aggregate.New(st, cfg, log)
	w := worker.New(client, st, queue, asm, rec, cfg, log)
	rep := repair.New(st, queue, asm, cfg, log)
	orch := orchestrator.New(st, queue, cfg, log)

	sched := scheduler.New(orch, rep, rec, st, cfg, log)
	if err := sched.Register(); err != nil {
		log.Fatal().Err(err).Msg("ingestor: failed to register cron jobs")
	}
	sched.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("ingestor: shutdown signal received")
		cancel()
	}()

	log.Info().Dur("poll_interval", *pollInterval).Msg("ingestor: starting job-queue poller")
	runPoller(ctx, queue, w, rep, log, *pollInterval, *jobBatchSize)

	stopCtx := sched.Stop()
	<-stopCtx.Done()
	log.Info().Msg("ingestor: stopped")
}

// runPoller claims due jobs in batches and dispatches each by kind. One
// poller goroutine is sufficient: the job queue's own self-scheduling
// chains (batch/repair/backfill) are inherently sequential per chain, and
// cross-chain concurrency comes from having up to eight independent
// chains in flight, not from parallelizing a single poll.
func runPoller(ctx context.Context, queue *jobqueue.Queue, w *worker.Worker, rep *repair.Worker, log zerolog.Logger, interval time.Duration, batchSize int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dispatchDueJobs(ctx, queue, w, rep, log, batchSize)
		}
	}
}

func dispatchDueJobs(ctx context.Context, queue *jobqueue.Queue, w *worker.Worker, rep *repair.Worker, log zerolog.Logger, batchSize int) {
	jobs, err := queue.Due(ctx, batchSize)
	if err != nil {
		log.Error().Err(err).Msg("ingestor: failed to load due jobs")
		return
	}

	for _, job := range jobs {
		var dispatchErr error
		switch job.Kind {
		case models.JobKindBatch:
			var payload worker.BatchPayload
			if err := jobqueue.Decode(job, &payload); err != nil {
				dispatchErr = err
				break
			}
			dispatchErr = w.SyncBillBatch(ctx, payload)
		case models.JobKindRepair:
			var payload repair.RepairPayload
			if err := jobqueue.Decode(job, &payload); err != nil {
				dispatchErr = err
				break
			}
			dispatchErr = rep.RepairIncompleteBills(ctx, payload)
		case models.JobKindBackfill:
			var payload repair.BackfillPayload
			if err := jobqueue.Decode(job, &payload); err != nil {
				dispatchErr = err
				break
			}
			dispatchErr = rep.BackfillSyncStatus(ctx, payload)
		default:
			log.Warn().Str("kind", string(job.Kind)).Msg("ingestor: unknown job kind, marking failed")
			dispatchErr = errUnknownJobKind
		}

		if dispatchErr != nil {
			log.Error().Err(dispatchErr).Str("job_id", job.ID).Str("kind", string(job.Kind)).Msg("ingestor: job dispatch failed")
			if err := queue.MarkFailed(ctx, job.ID); err != nil {
				log.Error().Err(err).Str("job_id", job.ID).Msg("ingestor: failed to mark job failed")
			}
			continue
		}
		if err := queue.MarkDone(ctx, job.ID); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("ingestor: failed to mark job done")
		}
	}
}
