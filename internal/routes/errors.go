package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/coinfold/coinfold/internal/ledger"
	"github.com/coinfold/coinfold/internal/prices"
)

// httpError maps engine sentinels onto HTTP statuses. Anything unrecognized
// is a 500 and surfaces through the fiber error handler.
func httpError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidLength),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidPrice),
		errors.Is(err, ledger.ErrInvalidPassword),
		errors.Is(err, ledger.ErrUnknownCurrency),
		errors.Is(err, prices.ErrUnknownCoin):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrCredentialNotFound),
		errors.Is(err, ledger.ErrSeedNotFound):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, ledger.ErrRecipientNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrNoPendingTransfer):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrStorageTimeout):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	default:
		return err
	}
}
