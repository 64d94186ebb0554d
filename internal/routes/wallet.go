package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/coinfold/coinfold/internal/ledger"
	"github.com/coinfold/coinfold/internal/middleware"
	"github.com/coinfold/coinfold/internal/store"
)

// RegisterWalletRoutes wires the balance-mutating and balance-reading
// endpoints. The router must already enforce session auth.
func (h *handlers) RegisterWalletRoutes(r fiber.Router) {
	r.Post("/wallet/deposit", h.deposit)
	r.Post("/wallet/buy", h.buyCoin)
	r.Post("/wallet/withdraw", h.withdraw)
	r.Post("/wallet/send", h.sendPending)
	r.Get("/wallet/balances", h.balances)
	r.Get("/wallet/pending", h.pendingTransfer)
}

func sessionFrom(c *fiber.Ctx) *ledger.Session {
	return c.Locals(middleware.SessionLocal).(*ledger.Session)
}

type depositRequest struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

func (h *handlers) deposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	balance, err := h.engine.Deposit(c.UserContext(), sessionFrom(c), req.Currency, req.Amount)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{
		"currency": req.Currency,
		"amount":   req.Amount,
		"balance":  balance,
	})
}

type buyRequest struct {
	Coin      string          `json:"coin"`
	USDAmount decimal.Decimal `json:"usd_amount"`
}

func (h *handlers) buyCoin(c *fiber.Ctx) error {
	var req buyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.engine.BuyCoin(c.UserContext(), sessionFrom(c), req.Coin, req.USDAmount)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{
		"coin":         p.Coin,
		"coins":        p.Coins,
		"debited":      p.Debited,
		"price":        p.Price,
		"usd_balance":  p.USDBalance,
		"coin_balance": p.CoinBalance,
	})
}

type withdrawRequest struct {
	Coin   string          `json:"coin"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *handlers) withdraw(c *fiber.Ctx) error {
	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.engine.Withdraw(c.UserContext(), sessionFrom(c), req.Coin, req.Amount); err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{
		"coin":   req.Coin,
		"amount": req.Amount,
		"staged": true,
	})
}

type sendRequest struct {
	RecipientID string `json:"recipient_id"`
}

func (h *handlers) sendPending(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	tr, err := h.engine.SendPending(c.UserContext(), sessionFrom(c), req.RecipientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{
		"coin":           tr.Coin,
		"amount":         tr.Amount,
		"recipient_id":   tr.RecipientID,
		"sender_balance": tr.SenderBalance,
	})
}

type holdingResponse struct {
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *handlers) balances(c *fiber.Ctx) error {
	s := sessionFrom(c)
	ctx := c.UserContext()

	fiat, err := h.engine.Balances(ctx, s, store.NamespaceFiat)
	if err != nil {
		return httpError(err)
	}
	coins, err := h.engine.Balances(ctx, s, store.NamespaceCoin)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{
		"fiat":  holdingResponses(fiat),
		"coins": holdingResponses(coins),
	})
}

func holdingResponses(holdings []store.Holding) []holdingResponse {
	out := make([]holdingResponse, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, holdingResponse{Symbol: h.Symbol, Amount: h.Amount})
	}
	return out
}

func (h *handlers) pendingTransfer(c *fiber.Ctx) error {
	pending, ok := sessionFrom(c).Pending()
	if !ok {
		return fiber.NewError(http.StatusNotFound, "no pending transfer staged")
	}
	return c.JSON(fiber.Map{
		"coin":   pending.Coin,
		"amount": pending.Amount,
	})
}
