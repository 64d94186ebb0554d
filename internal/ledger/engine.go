// Package ledger implements the wallet's transaction engine: identity
// signup and recovery, fiat deposits, coin purchases, and the two-phase
// withdraw-then-send transfer flow. All balance mutations run inside a
// storage transaction under a per-identity lock, so the total supply of any
// asset is conserved across concurrent operations.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinfold/coinfold/internal/assets"
	"github.com/coinfold/coinfold/internal/identity"
	"github.com/coinfold/coinfold/internal/mnemonic"
	"github.com/coinfold/coinfold/internal/notification"
	"github.com/coinfold/coinfold/internal/prices"
	"github.com/coinfold/coinfold/internal/store"
)

const (
	// USDSymbol is the fiat symbol every deposit is recorded against.
	USDSymbol = "USD"

	// coinScale is the number of fractional digits a purchase may produce.
	coinScale = 8

	// maxIDAttempts bounds retries when a freshly generated identity id
	// collides with an existing one.
	maxIDAttempts = 5
)

// Engine coordinates identity and balance operations against the storage
// port. It is safe for concurrent use.
type Engine struct {
	store    store.Store
	prices   prices.Source
	notifier notification.Notifier
	locks    *accountLocks
	timeout  time.Duration
	logger   *slog.Logger
}

// NewEngine wires an engine to its storage, price source, and notifier.
// A zero timeout disables the per-operation storage deadline.
func NewEngine(st store.Store, src prices.Source, notifier notification.Notifier, timeout time.Duration, logger *slog.Logger) *Engine {
	return &Engine{
		store:    st,
		prices:   src,
		notifier: notifier,
		locks:    newAccountLocks(),
		timeout:  timeout,
		logger:   logger,
	}
}

// opCtx applies the engine's storage deadline to ctx.
func (e *Engine) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

// wrapStorage translates a blown storage deadline into the engine's
// retryable sentinel.
func wrapStorage(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStorageTimeout
	}
	return err
}

// atomic runs fn inside one storage transaction with the engine's deadline
// applied. fn receives a repository and store view bound to the transaction.
func (e *Engine) atomic(ctx context.Context, fn func(ctx context.Context, repo *assets.Repository, st store.Store) error) error {
	ctx, cancel := e.opCtx(ctx)
	defer cancel()
	err := e.store.Atomic(ctx, func(st store.Store) error {
		return fn(ctx, assets.New(st), st)
	})
	return wrapStorage(err)
}

// Signup creates a new identity with a freshly generated id and seed phrase
// of the requested length, and returns an authenticated session carrying
// the phrase. The caller must show the phrase to the user; it is the only
// recovery credential.
func (e *Engine) Signup(ctx context.Context, password string, seedLen int) (*Session, error) {
	if password == "" {
		return nil, ErrInvalidPassword
	}
	if !mnemonic.ValidLength(seedLen) {
		return nil, ErrInvalidLength
	}

	words, err := mnemonic.Generate(seedLen)
	if err != nil {
		return nil, err
	}

	ctx, cancel := e.opCtx(ctx)
	defer cancel()

	var id string
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id = identity.NewID()
		err = e.store.InsertIdentity(ctx, id, password, mnemonic.Canonical(words))
		switch {
		case err == nil:
			if e.logger != nil {
				e.logger.Info("identity created", "identity_id", id, "seed_words", seedLen)
			}
			return &Session{identity: identity.Identity{
				ID:         id,
				Password:   password,
				SeedPhrase: words,
				CreatedAt:  time.Now().UTC(),
			}}, nil
		case errors.Is(err, store.ErrDuplicateID):
			continue
		case errors.Is(err, store.ErrDuplicateSeed):
			// Another identity already claimed this exact phrase. Draw a new
			// one and keep going; the id is still free to reuse.
			words, err = mnemonic.Generate(seedLen)
			if err != nil {
				return nil, err
			}
			continue
		default:
			return nil, wrapStorage(err)
		}
	}
	return nil, fmt.Errorf("signup: no free identity id after %d attempts", maxIDAttempts)
}

// Login authenticates by password and returns a session for the matching
// identity. The session carries no seed phrase.
func (e *Engine) Login(ctx context.Context, password string) (*Session, error) {
	if password == "" {
		return nil, ErrCredentialNotFound
	}
	ctx, cancel := e.opCtx(ctx)
	defer cancel()

	id, err := e.store.FindIdentityByPassword(ctx, password)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, wrapStorage(err)
	}
	return &Session{identity: identity.Identity{ID: id, Password: password}}, nil
}

// RecoverBySeed authenticates by seed phrase. Leading and trailing
// whitespace is ignored; word order and interior spacing are significant.
func (e *Engine) RecoverBySeed(ctx context.Context, phrase string) (*Session, error) {
	canonical := mnemonic.Normalize(phrase)
	if canonical == "" {
		return nil, ErrSeedNotFound
	}
	ctx, cancel := e.opCtx(ctx)
	defer cancel()

	id, err := e.store.FindIdentityBySeed(ctx, canonical)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSeedNotFound
		}
		return nil, wrapStorage(err)
	}
	return &Session{identity: identity.Identity{ID: id}}, nil
}

// RotatePassword replaces the password of the identity owning the seed
// phrase. The phrase itself is the proof of ownership, so no session is
// required.
func (e *Engine) RotatePassword(ctx context.Context, phrase, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidPassword
	}
	canonical := mnemonic.Normalize(phrase)
	if canonical == "" {
		return ErrSeedNotFound
	}
	ctx, cancel := e.opCtx(ctx)
	defer cancel()

	id, err := e.store.FindIdentityBySeed(ctx, canonical)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSeedNotFound
		}
		return wrapStorage(err)
	}
	if err := e.store.UpdatePassword(ctx, id, newPassword); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSeedNotFound
		}
		return wrapStorage(err)
	}
	if e.logger != nil {
		e.logger.Info("password rotated", "identity_id", id)
	}
	return nil
}

// Logout discards the session's credentials and any staged transfer.
// Balances are untouched; a staged withdrawal simply never leaves the
// sender's holding.
func (e *Engine) Logout(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity.Password = ""
	s.identity.SeedPhrase = nil
	s.pending = nil
}

// Deposit credits the session's balance in the given fiat currency. Each
// currency keeps its own row; only the USD row is spendable on coins.
// Returns the new balance of that currency.
func (e *Engine) Deposit(ctx context.Context, s *Session, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if !ValidFiatCurrency(currency) {
		return decimal.Zero, ErrUnknownCurrency
	}

	release := e.locks.acquire(s.IdentityID())
	defer release()

	var updated decimal.Decimal
	err := e.atomic(ctx, func(ctx context.Context, repo *assets.Repository, _ store.Store) error {
		var err error
		updated, err = repo.Credit(ctx, s.IdentityID(), currency, store.NamespaceFiat, amount)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	if e.logger != nil {
		e.logger.Info("deposit", "identity_id", s.IdentityID(), "currency", currency, "amount", amount.String())
	}
	return updated, nil
}

// Purchase reports the outcome of a coin buy.
type Purchase struct {
	Coin        string
	Coins       decimal.Decimal
	Debited     decimal.Decimal
	Price       decimal.Decimal
	USDBalance  decimal.Decimal
	CoinBalance decimal.Decimal
}

// BuyCoin converts part of the session's USD balance into coin units at the
// quoted price. The debit always equals coins times price exactly; any
// sub-unit remainder of the requested spend stays in the USD balance. The
// full requested amount must be covered before the purchase is applied.
func (e *Engine) BuyCoin(ctx context.Context, s *Session, coin string, usdAmount decimal.Decimal) (Purchase, error) {
	if !usdAmount.IsPositive() {
		return Purchase{}, ErrInvalidAmount
	}

	price, err := e.prices.Price(ctx, coin)
	if err != nil {
		return Purchase{}, err
	}
	if !price.IsPositive() {
		return Purchase{}, ErrInvalidPrice
	}

	coins, rem := usdAmount.QuoRem(price, coinScale)
	if coins.IsZero() {
		// The spend buys less than the smallest representable coin unit.
		return Purchase{}, ErrInvalidAmount
	}
	debited := usdAmount.Sub(rem)

	release := e.locks.acquire(s.IdentityID())
	defer release()

	var result Purchase
	err = e.atomic(ctx, func(ctx context.Context, repo *assets.Repository, _ store.Store) error {
		usd, err := repo.Get(ctx, s.IdentityID(), USDSymbol, store.NamespaceFiat)
		if err != nil {
			return err
		}
		if usd.LessThan(usdAmount) {
			return ErrInsufficientFunds
		}
		newUSD := usd.Sub(debited)
		if err := repo.Set(ctx, s.IdentityID(), USDSymbol, store.NamespaceFiat, newUSD); err != nil {
			return err
		}
		holding, err := repo.Credit(ctx, s.IdentityID(), coin, store.NamespaceCoin, coins)
		if err != nil {
			return err
		}
		result = Purchase{
			Coin:        coin,
			Coins:       coins,
			Debited:     debited,
			Price:       price,
			USDBalance:  newUSD,
			CoinBalance: holding,
		}
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	if e.logger != nil {
		e.logger.Info("coin purchased",
			"identity_id", s.IdentityID(), "coin", coin,
			"coins", result.Coins.String(), "debited", result.Debited.String())
	}
	return result, nil
}

// Withdraw stages a transfer of coins out of the session's holding. Nothing
// is written; the stage only validates that the holding covers the amount
// right now and records the intent on the session. A later Withdraw
// replaces any earlier stage.
func (e *Engine) Withdraw(ctx context.Context, s *Session, coin string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := e.opCtx(ctx)
	defer cancel()

	held, err := assets.New(e.store).Get(ctx, s.IdentityID(), coin, store.NamespaceCoin)
	if err != nil {
		return wrapStorage(err)
	}
	if held.LessThan(amount) {
		return ErrInsufficientFunds
	}
	s.pending = &PendingTransfer{Coin: coin, Amount: amount}
	return nil
}

// Transfer reports the outcome of a committed send.
type Transfer struct {
	Coin          string
	Amount        decimal.Decimal
	RecipientID   string
	SenderBalance decimal.Decimal
}

// SendPending commits the session's staged transfer to the recipient. The
// sender's holding is re-read inside the transaction, so funds spent since
// the stage fail the send rather than overdraw. The stage survives a failed
// send and is cleared only on success.
func (e *Engine) SendPending(ctx context.Context, s *Session, recipientID string) (Transfer, error) {
	// Holding the session lock for the whole send means two requests racing
	// on the same token commit the stage at most once; the loser finds the
	// slot already cleared.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Transfer{}, ErrNoPendingTransfer
	}
	pending := *s.pending

	release := e.locks.acquire(s.IdentityID(), recipientID)
	defer release()

	var result Transfer
	err := e.atomic(ctx, func(ctx context.Context, repo *assets.Repository, st store.Store) error {
		exists, err := st.IdentityExists(ctx, recipientID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrRecipientNotFound
		}

		held, err := repo.Get(ctx, s.IdentityID(), pending.Coin, store.NamespaceCoin)
		if err != nil {
			return err
		}
		if held.LessThan(pending.Amount) {
			return ErrInsufficientFunds
		}

		// Debit before credit so a self-send nets to zero instead of
		// doubling the holding.
		remainder := held.Sub(pending.Amount)
		if err := repo.Set(ctx, s.IdentityID(), pending.Coin, store.NamespaceCoin, remainder); err != nil {
			return err
		}
		if _, err := repo.Credit(ctx, recipientID, pending.Coin, store.NamespaceCoin, pending.Amount); err != nil {
			return err
		}

		balance, err := repo.Get(ctx, s.IdentityID(), pending.Coin, store.NamespaceCoin)
		if err != nil {
			return err
		}
		result = Transfer{
			Coin:          pending.Coin,
			Amount:        pending.Amount,
			RecipientID:   recipientID,
			SenderBalance: balance,
		}
		return nil
	})
	if err != nil {
		return Transfer{}, err
	}
	s.pending = nil

	if e.notifier != nil {
		msg := notification.Message{
			Kind:        notification.KindCoinReceived,
			Destination: recipientID,
			Body:        fmt.Sprintf("received %s %s", pending.Amount.String(), pending.Coin),
		}
		if err := e.notifier.Send(ctx, msg); err != nil && e.logger != nil {
			e.logger.Warn("notification failed", "recipient", recipientID, "error", err)
		}
	}
	if e.logger != nil {
		e.logger.Info("transfer committed",
			"sender", s.IdentityID(), "recipient", recipientID,
			"coin", pending.Coin, "amount", pending.Amount.String())
	}
	return result, nil
}

// Balances lists the session's holdings within one namespace, sorted by
// symbol. Reads are not serialized against writers; they see some committed
// state.
func (e *Engine) Balances(ctx context.Context, s *Session, ns store.Namespace) ([]store.Holding, error) {
	ctx, cancel := e.opCtx(ctx)
	defer cancel()

	holdings, err := assets.New(e.store).List(ctx, s.IdentityID(), ns)
	if err != nil {
		return nil, wrapStorage(err)
	}
	return holdings, nil
}
