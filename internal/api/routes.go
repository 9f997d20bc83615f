package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes installs every Control Surface operation onto api. sync
// entry points live under /api/v1/sync/*; completeness and health are
// unauthenticated reads.
func RegisterRoutes(humaAPI huma.API, svc *Service) {
	huma.Register(humaAPI, huma.Operation{
		OperationID: "trigger-incremental-sync",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/incremental",
		Summary:     "Trigger an incremental sync for a congress",
		Tags:        []string{"sync"},
	}, func(ctx context.Context, input *struct {
		Body struct {
			Congress int `json:"congress" doc:"Congress number to sync"`
		}
	}) (*SnapshotResponse, error) {
		snapshotID, err := svc.TriggerIncrementalSync(ctx, input.Body.Congress)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to start incremental sync", err)
		}
		return &SnapshotResponse{Body: SnapshotBody{SnapshotID: snapshotID}}, nil
	})

	huma.Register(humaAPI, huma.Operation{
		OperationID: "trigger-full-sync",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/full",
		Summary:     "Trigger a full sync for a congress",
		Tags:        []string{"sync"},
	}, func(ctx context.Context, input *struct {
		Body struct {
			Congress int `json:"congress" doc:"Congress number to sync"`
		}
	}) (*SnapshotResponse, error) {
		snapshotID, err := svc.TriggerFullSync(ctx, input.Body.Congress)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to start full sync", err)
		}
		return &SnapshotResponse{Body: SnapshotBody{SnapshotID: snapshotID}}, nil
	})

	huma.Register(humaAPI, huma.Operation{
		OperationID: "trigger-historical-pull",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/historical",
		Summary:     "Seed the store with the three most recent congresses",
		Tags:        []string{"sync"},
	}, func(ctx context.Context, input *struct{}) (*SnapshotsResponse, error) {
		ids, err := svc.TriggerHistoricalPull(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to start historical pull", err)
		}
		return &SnapshotsResponse{Body: SnapshotsBody{SnapshotIDs: ids}}, nil
	})

	huma.Register(humaAPI, huma.Operation{
		OperationID: "trigger-repair",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/repair",
		Summary:     "Re-fetch missing sub-endpoints for incomplete bills",
		Tags:        []string{"sync"},
	}, func(ctx context.Context, input *struct {
		Body struct {
			Congress *int `json:"congress,omitempty" doc:"Optional congress to scope repair to"`
		}
	}) (*AcceptedResponse, error) {
		if err := svc.TriggerRepair(ctx, input.Body.Congress); err != nil {
			return nil, huma.Error500InternalServerError("failed to start repair", err)
		}
		return &AcceptedResponse{Body: AcceptedBody{Status: "accepted"}}, nil
	})

	huma.Register(humaAPI, huma.Operation{
		OperationID: "trigger-backfill",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/backfill",
		Summary:     "Backfill syncedEndpoints for legacy bills from existing child rows",
		Tags:        []string{"sync"},
	}, func(ctx context.Context, input *struct{}) (*AcceptedResponse, error) {
		if err := svc.TriggerBackfill(ctx); err != nil {
			return nil, huma.Error500InternalServerError("failed to start backfill", err)
		}
		return &AcceptedResponse{Body: AcceptedBody{Status: "accepted"}}, nil
	})

	huma.Register(humaAPI, huma.Operation{
		OperationID: "trigger-recompute-all-stats",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/recompute-stats",
		Summary:     "Recompute CongressStats for a congress on demand",
		Tags:        []string{"sync"},
	}, func(ctx context.Context, input *struct {
		Body struct {
			Congress int `json:"congress"`
		}
	}) (*AcceptedResponse, error) {
		if err := svc.TriggerRecomputeAllStats(ctx, input.Body.Congress); err != nil {
			return nil, huma.Error500InternalServerError("failed to recompute congress stats", err)
		}
		return &AcceptedResponse{Body: AcceptedBody{Status: "accepted"}}, nil
	})

	huma.Register(humaAPI, huma.Operation{
		OperationID: "get-completeness",
		Method:      http.MethodGet,
		Path:        "/api/v1/completeness",
		Summary:     "Report total/complete/partial/legacy bill counts",
		Tags:        []string{"observability"},
	}, func(ctx context.Context, input *struct {
		Congress *int `query:"congress" doc:"Optional congress to scope the report to"`
	}) (*CompletenessResponse, error) {
		stats, err := svc.Completeness(ctx, input.Congress)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load completeness stats", err)
		}
		return &CompletenessResponse{Body: CompletenessBody{
			Total:    stats.Total,
			Complete: stats.Complete,
			Partial:  stats.Partial,
			Legacy:   stats.Legacy,
		}}, nil
	})

	huma.Register(humaAPI, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Liveness check",
		Tags:        []string{"observability"},
	}, func(ctx context.Context, input *struct{}) (*HealthResponse, error) {
		return &HealthResponse{Body: HealthBody{Status: "ok"}}, nil
	})
}

// SnapshotBody / SnapshotResponse wraps a single enqueued sync's ID.
type SnapshotBody struct {
	SnapshotID string `json:"snapshotId"`
}
type SnapshotResponse struct {
	Body SnapshotBody
}

// SnapshotsBody / SnapshotsResponse wraps the historical pull's three IDs.
type SnapshotsBody struct {
	SnapshotIDs []string `json:"snapshotIds"`
}
type SnapshotsResponse struct {
	Body SnapshotsBody
}

// AcceptedBody / AcceptedResponse is a bare acknowledgement for
// fire-and-forget chains that have no single snapshot ID to hand back.
type AcceptedBody struct {
	Status string `json:"status"`
}
type AcceptedResponse struct {
	Body AcceptedBody
}

// CompletenessBody / CompletenessResponse mirrors store.Completeness.
type CompletenessBody struct {
	Total    int64 `json:"total"`
	Complete int64 `json:"complete"`
	Partial  int64 `json:"partial"`
	Legacy   int64 `json:"legacy"`
}
type CompletenessResponse struct {
	Body CompletenessBody
}

// HealthBody / HealthResponse is the liveness check's payload.
type HealthBody struct {
	Status string `json:"status"`
}
type HealthResponse struct {
	Body HealthBody
}
