package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/coinfold/coinfold/internal/ledger"
)

// RegisterMarketRoutes wires the public reference-data endpoints: the coins
// available for purchase with current prices, and the accepted fiat
// currencies.
func (h *handlers) RegisterMarketRoutes(r fiber.Router) {
	r.Get("/coins", h.listCoins)
	r.Get("/currencies", h.listCurrencies)
}

func (h *handlers) listCoins(c *fiber.Ctx) error {
	coins, err := h.prices.List(c.UserContext())
	if err != nil {
		return httpError(err)
	}
	out := make([]fiber.Map, 0, len(coins))
	for _, coin := range coins {
		out = append(out, fiber.Map{"symbol": coin.Symbol, "price": coin.Price})
	}
	return c.JSON(fiber.Map{"coins": out})
}

func (h *handlers) listCurrencies(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"currencies": ledger.FiatCurrencies})
}
