package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/billsync/ingestcore/internal/api"
)

func newAuthApp(token string) *fiber.App {
	app := fiber.New()
	app.Use(api.SyncAuth(token))
	app.Post("/api/v1/sync/full", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/v1/completeness", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestSyncAuth_EmptyTokenDisablesCheck(t *testing.T) {
	app := newAuthApp("")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/full", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSyncAuth_MissingHeaderRejected(t *testing.T) {
	app := newAuthApp("secret")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/full", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSyncAuth_WrongTokenRejected(t *testing.T) {
	app := newAuthApp("secret")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/full", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSyncAuth_CorrectTokenAccepted(t *testing.T) {
	app := newAuthApp("secret")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/full", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSyncAuth_NonSyncPathBypassesCheck(t *testing.T) {
	app := newAuthApp("secret")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/completeness", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
