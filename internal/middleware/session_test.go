package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/coinfold/coinfold/internal/ledger"
	"github.com/coinfold/coinfold/internal/logging"
	"github.com/coinfold/coinfold/internal/prices"
	"github.com/coinfold/coinfold/internal/session"
	"github.com/coinfold/coinfold/internal/store"
)

func setupSessionApp(t *testing.T) (*fiber.App, *session.Manager, *ledger.Session) {
	t.Helper()
	engine := ledger.NewEngine(store.NewMemory(), prices.Static(), nil, 0, logging.Discard())
	sess, err := engine.Signup(context.Background(), "pw", 12)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	manager := session.NewManager(time.Hour)
	app := fiber.New()
	app.Use(SessionAuth(manager))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		s := c.Locals(SessionLocal).(*ledger.Session)
		return c.SendString(s.IdentityID())
	})
	return app, manager, sess
}

func TestSessionAuthRejectsMissingToken(t *testing.T) {
	app, _, _ := setupSessionApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/whoami", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected %d got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
}

func TestSessionAuthRejectsUnknownToken(t *testing.T) {
	app, _, _ := setupSessionApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(sessionTokenHeader, "bogus")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected %d got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
}

func TestSessionAuthResolvesSession(t *testing.T) {
	app, manager, sess := setupSessionApp(t)

	token := manager.Issue(sess)
	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(sessionTokenHeader, token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected %d got %d", fiber.StatusOK, resp.StatusCode)
	}
}
