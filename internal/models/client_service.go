package models

import "context"

// ClientService is the full set of user intents plus the synchronized
// snapshot. The HTTP layer talks to the application exclusively through
// this interface.
type ClientService interface {
	// Start performs the initial synchronization and then keeps the
	// snapshot fresh until the context is done.
	Start(ctx context.Context)

	// Snapshot returns a copy of the last-synchronized state.
	Snapshot() Snapshot

	// SetForm merges the given form fields into the store.
	SetForm(form FormFields)

	// Reconcile re-derives the whole snapshot from remote truth.
	Reconcile(ctx context.Context) error

	Initialize(ctx context.Context) error
	CreateLottery(ctx context.Context) error
	BuyTicket(ctx context.Context) error
	BurnAndBuy(ctx context.Context, country, continent, token string, burnAmount uint64) error
	Stake(ctx context.Context, country, continent, token string, amount uint64) error
	Unstake(ctx context.Context, country, continent, token string) error
	PickWinner(ctx context.Context) error
	ClaimPrize(ctx context.Context) error
}
