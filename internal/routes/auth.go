package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/coinfold/coinfold/internal/ledger"
	"github.com/coinfold/coinfold/internal/middleware"
)

type signupRequest struct {
	Password  string `json:"password"`
	SeedWords int    `json:"seed_words"`
}

type sessionResponse struct {
	Token      string   `json:"token"`
	IdentityID string   `json:"identity_id"`
	SeedPhrase []string `json:"seed_phrase,omitempty"`
}

// RegisterAuthRoutes wires the public identity endpoints: signup, login,
// seed recovery, and password rotation.
func (h *handlers) RegisterAuthRoutes(r fiber.Router) {
	group := r.Group("/auth")
	group.Post("/signup", h.signup)
	group.Post("/login", h.login)
	group.Post("/recover", h.recoverBySeed)
	group.Post("/password", h.rotatePassword)
}

// RegisterLogoutRoute wires logout behind session auth.
func (h *handlers) RegisterLogoutRoute(r fiber.Router) {
	r.Post("/auth/logout", h.logout)
}

func (h *handlers) signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	s, err := h.engine.Signup(c.UserContext(), req.Password, req.SeedWords)
	if err != nil {
		return httpError(err)
	}
	token := h.sessions.Issue(s)

	return c.Status(http.StatusCreated).JSON(sessionResponse{
		Token:      token,
		IdentityID: s.IdentityID(),
		SeedPhrase: s.SeedPhrase(),
	})
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h *handlers) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	s, err := h.engine.Login(c.UserContext(), req.Password)
	if err != nil {
		return httpError(err)
	}
	token := h.sessions.Issue(s)

	return c.JSON(sessionResponse{Token: token, IdentityID: s.IdentityID()})
}

type recoverRequest struct {
	SeedPhrase string `json:"seed_phrase"`
}

func (h *handlers) recoverBySeed(c *fiber.Ctx) error {
	var req recoverRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	s, err := h.engine.RecoverBySeed(c.UserContext(), req.SeedPhrase)
	if err != nil {
		return httpError(err)
	}
	token := h.sessions.Issue(s)

	return c.JSON(sessionResponse{Token: token, IdentityID: s.IdentityID()})
}

type rotatePasswordRequest struct {
	SeedPhrase  string `json:"seed_phrase"`
	NewPassword string `json:"new_password"`
}

func (h *handlers) rotatePassword(c *fiber.Ctx) error {
	var req rotatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.engine.RotatePassword(c.UserContext(), req.SeedPhrase, req.NewPassword); err != nil {
		return httpError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *handlers) logout(c *fiber.Ctx) error {
	s := c.Locals(middleware.SessionLocal).(*ledger.Session)
	token, _ := c.Locals(middleware.SessionTokenLocal).(string)

	h.engine.Logout(s)
	h.sessions.Revoke(token)

	return c.SendStatus(http.StatusNoContent)
}
