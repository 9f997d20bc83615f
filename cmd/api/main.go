package main

import (
	"fmt"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humafiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/billsync/ingestcore/internal/aggregate"
	"github.com/billsync/ingestcore/internal/api"
	"github.com/billsync/ingestcore/internal/assembler"
	"github.com/billsync/ingestcore/internal/config"
	"github.com/billsync/ingestcore/internal/congress"
	"github.com/billsync/ingestcore/internal/database"
	"github.com/billsync/ingestcore/internal/jobqueue"
	"github.com/billsync/ingestcore/internal/logging"
	"github.com/billsync/ingestcore/internal/orchestrator"
	"github.com/billsync/ingestcore/internal/repair"
	"github.com/billsync/ingestcore/internal/store"
)

func main() {
	_ = godotenv.Load()
	log := logging.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("api: configuration error")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	db, err := database.Connect(database.ConfigFromApp(cfg.DatabaseURL, cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("api: failed to connect to database")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("api: migration failed")
	}
	log.Info().Msg("api: database migrations complete")

	client, err := congress.New(cfg.CongressAPIKey,
		congress.WithInterRequestDelay(cfg.InterRequestDelay),
		congress.WithMaxRetries(cfg.MaxRetries),
		congress.WithInitialBackoff(cfg.InitialBackoff),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("api: failed to build congress client")
	}

	st := store.New(db)
	queue := jobqueue.New(db)
	asm := assembler.New(client, st, log)
	rep := repair.New(st, queue, asm, cfg, log)
	orch := orchestrator.New(st, queue, cfg, log)
	rec := aggregate.New(st, cfg, log)
	svc := api.NewService(st, orch, rep, rec, cfg)

	app := fiber.New(fiber.Config{AppName: "billsync ingestcore API"})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:4200, http://localhost:80, http://localhost",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
	if cfg.SyncAuthToken != "" {
		app.Use(api.SyncAuth(cfg.SyncAuthToken))
		log.Info().Msg("api: sync endpoints require bearer auth")
	} else {
		log.Warn().Msg("api: SYNC_AUTH_TOKEN not set, sync endpoints are unauthenticated")
	}

	humaConfig := huma.DefaultConfig("billsync ingestcore API", "1.0.0")
	humaConfig.Info.Description = "Control surface for the congress.gov bill-ingestion core: manual sync triggers and completeness reporting"
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://localhost:%s", port), Description: "Local development"},
	}

	humaAPI := humafiber.New(app, humaConfig)
	api.RegisterRoutes(humaAPI, svc)

	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html>
<head>
    <title>ingestcore API Docs</title>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
    <script id="api-reference" data-url="/openapi.json"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
		c.Set("Content-Type", "text/html")
		return c.SendString(html)
	})

	log.Info().Str("port", port).Msg("api: starting control surface")
	log.Info().Str("docs", fmt.Sprintf("http://localhost:%s/docs", port)).Msg("api: docs available")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("api: server exited")
	}
}
