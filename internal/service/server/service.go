package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/ledger-registry/internal/clock"
	"github.com/oshokin/ledger-registry/internal/domain/account"
	"github.com/oshokin/ledger-registry/internal/domain/event"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
	"github.com/oshokin/ledger-registry/internal/ledger"
	"github.com/oshokin/ledger-registry/internal/logger"
	"github.com/oshokin/ledger-registry/internal/metrics"
	"github.com/oshokin/ledger-registry/internal/registry"
	"github.com/oshokin/ledger-registry/internal/registry/accounts"
	"github.com/oshokin/ledger-registry/internal/registry/zones"
	repo "github.com/oshokin/ledger-registry/internal/repository/snapshot"
)

// Coord is the coordinate type of the city map served by the registry.
type Coord = uint32

// dependencies are the collaborators of the service.
type dependencies struct {
	clock        clock.Clock
	genesis      account.Identity
	ledger       ledger.Engine
	repo         repo.Repository[Coord]
	metrics      *metrics.Metrics
	eventHistory int
}

// service is the transaction boundary of the registries. Every operation
// runs under one mutex, so the registries, the ledger and the reaping hook
// see a single serial order of transactions.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// clock stamps accounts and computes ages.
	clock clock.Clock
	// log collects the events of the running transaction.
	log *event.Log
	// accounts is the account registry.
	accounts *accounts.Registry
	// zones is the zone registry.
	zones *zones.Registry[Coord]
	// ledger is the balance engine whose reaping disables accounts.
	ledger ledger.Engine
	// repo handles persistent storage of the registry snapshot.
	repo repo.Repository[Coord]
	// metrics records events and rejections.
	metrics *metrics.Metrics
	// history keeps the most recent committed events.
	history []event.Event
	// historyLimit bounds history.
	historyLimit int
	// unsaved is set while the in-memory state is ahead of the last snapshot.
	unsaved bool
	// mu serializes transactions.
	mu sync.Mutex
}

// newService creates a service, restoring the registries from the repository when a snapshot exists.
func newService(ctx context.Context, deps *dependencies) (*service, error) {
	if deps.clock == nil {
		deps.clock = clock.NewSystem()
	}

	if deps.metrics == nil {
		deps.metrics = metrics.New()
	}

	log := event.NewLog()

	accountRegistry, err := accounts.New(deps.clock, log, deps.genesis)
	if err != nil {
		return nil, fmt.Errorf("create account registry: %w", err)
	}

	s := &service{
		clock:        deps.clock,
		log:          log,
		accounts:     accountRegistry,
		zones:        zones.New[Coord](accountRegistry.Guard(), log),
		ledger:       deps.ledger,
		repo:         deps.repo,
		metrics:      deps.metrics,
		historyLimit: deps.eventHistory,
	}

	if s.ledger != nil {
		// Reaping is delivered synchronously inside Transfer, which the
		// service only calls while holding mu.
		s.ledger.Subscribe(s.accounts.OnReaped)
	}

	restored, err := s.restore(ctx)
	if err != nil {
		return nil, err
	}

	if restored {
		s.log.Discard()
	} else {
		s.publish(ctx, s.log.Drain())

		if err := s.persist(ctx); err != nil {
			return nil, err
		}
	}

	s.refreshGauges()

	return s, nil
}

// restore loads the snapshot if one exists and reports whether it did.
func (s *service) restore(ctx context.Context) (bool, error) {
	if s.repo == nil {
		return false, nil
	}

	state, err := s.repo.Load(ctx)

	switch {
	case err == nil:
	case errors.Is(err, repo.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("load snapshot: %w", err)
	}

	if err = s.apply(state); err != nil {
		return false, fmt.Errorf("restore snapshot: %w", err)
	}

	logger.InfoKV(ctx, "Registry restored from snapshot",
		"accounts", len(state.Accounts), "total_boxes", state.TotalBoxes)

	return true, nil
}

// AddAccount creates or overwrites the account of target on behalf of caller.
func (s *service) AddAccount(ctx context.Context, caller, target account.Identity, role account.Role) ([]event.Event, error) {
	return s.transact(ctx, "add_account", rollbackOnSaveFailure, func() error {
		return s.accounts.Add(caller, target, role)
	})
}

// DisableAccount disables the account of target on behalf of caller.
func (s *service) DisableAccount(ctx context.Context, caller, target account.Identity) ([]event.Event, error) {
	return s.transact(ctx, "disable_account", rollbackOnSaveFailure, func() error {
		return s.accounts.Disable(caller, target)
	})
}

// AddZone catalogs a zone on behalf of caller.
func (s *service) AddZone(
	ctx context.Context,
	caller account.Identity,
	zoneType zone.Type,
	box zone.Box3D[Coord],
) (uint32, []event.Event, error) {
	var id uint32

	events, err := s.transact(ctx, "add_zone", rollbackOnSaveFailure, func() error {
		var err error

		id, err = s.zones.Add(caller, zoneType, box)

		return err
	})

	return id, events, err
}

// Transfer moves funds of caller on the ledger. When the transfer reaps the
// caller, the account is disabled within the same transaction. The ledger
// cannot be rolled back, so a failed save keeps the new state in memory and
// the save is retried by the next transaction.
func (s *service) Transfer(
	ctx context.Context,
	caller, to account.Identity,
	amount ledger.Amount,
) (bool, []event.Event, error) {
	if s.ledger == nil {
		return false, nil, errLedgerUnavailable
	}

	var reaped bool

	events, err := s.transact(ctx, "transfer", keepOnSaveFailure, func() error {
		var err error

		reaped, err = s.ledger.Transfer(caller, to, amount)

		return err
	})

	return reaped, events, err
}

// Account returns the record of identity.
func (s *service) Account(_ context.Context, identity account.Identity) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.accounts.Account(identity)
}

// Age returns the age of the account of identity on the service clock.
func (s *service) Age(_ context.Context, identity account.Identity) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.accounts.Age(identity, s.clock.Now())
}

// AccountIs reports whether identity holds role.
func (s *service) AccountIs(_ context.Context, identity account.Identity, role account.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.accounts.AccountIs(identity, role)
}

// Zone returns the zone with id.
func (s *service) Zone(_ context.Context, id uint32) (zone.Zone[Coord], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.zones.Zone(id)
}

// TotalBoxes returns the zone counter.
func (s *service) TotalBoxes(context.Context) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.zones.TotalBoxes()
}

// BalanceOf returns the ledger balance of identity.
func (s *service) BalanceOf(_ context.Context, identity account.Identity) (ledger.Amount, error) {
	if s.ledger == nil {
		return 0, errLedgerUnavailable
	}

	return s.ledger.BalanceOf(identity), nil
}

// Events returns the retained events with a sequence number above after.
func (s *service) Events(_ context.Context, after uint64) []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]event.Event, 0, len(s.history))

	for _, e := range s.history {
		if e.Seq > after {
			result = append(result, e)
		}
	}

	return result
}

// errLedgerUnavailable is returned for ledger operations when no ledger is wired.
var errLedgerUnavailable = errors.New("ledger is not configured")

// saveFailurePolicy tells transact what to do when the snapshot cannot be saved.
type saveFailurePolicy int

const (
	// rollbackOnSaveFailure restores the registries and fails the operation.
	rollbackOnSaveFailure saveFailurePolicy = iota
	// keepOnSaveFailure keeps the new state for operations that already
	// changed the ledger, leaving the save to the next transaction.
	keepOnSaveFailure
)

// transact runs fn as one transaction: on failure nothing is kept, on
// success the new state is persisted and the events are published.
func (s *service) transact(
	ctx context.Context,
	operation string,
	policy saveFailurePolicy,
	fn func() error,
) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = logger.WithKV(ctx, "operation", operation)
	before := s.state()

	if err := fn(); err != nil {
		s.log.Discard()
		s.metrics.ObserveRejection(operation, errorKind(err))
		logger.WarnKV(ctx, "Registry operation rejected", "error", err)

		return nil, err
	}

	events := s.log.Drain()
	if len(events) == 0 && !s.unsaved {
		return nil, nil
	}

	switch err := s.persist(ctx); {
	case err == nil:
		s.unsaved = false
	case policy == keepOnSaveFailure || len(events) == 0:
		// Either the ledger already moved and the registries must follow it,
		// or this was only a retry of an earlier unsaved state.
		s.unsaved = true
		logger.WarnKV(ctx, "Registry state kept unsaved until the next transaction", "error", err)
	default:
		if restoreErr := s.apply(before); restoreErr != nil {
			logger.ErrorKV(ctx, "Failed to roll back registry state", "error", restoreErr)
		}

		s.metrics.ObserveRejection(operation, "persistence")

		return nil, err
	}

	s.publish(ctx, events)
	s.refreshGauges()

	return events, nil
}

// state captures the persisted surface of the registries.
func (s *service) state() *repo.State[Coord] {
	return &repo.State[Coord]{
		Accounts:   s.accounts.Accounts(),
		Zones:      s.zones.Zones(),
		TotalBoxes: s.zones.TotalBoxes(),
	}
}

// apply replaces the registry contents with state.
func (s *service) apply(state *repo.State[Coord]) error {
	if err := s.accounts.Restore(state.Accounts); err != nil {
		return err
	}

	return s.zones.Restore(state.TotalBoxes, state.Zones)
}

// persist saves the current state when a repository is configured.
func (s *service) persist(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	if err := s.repo.Save(ctx, s.state()); err != nil {
		logger.Errorf(ctx, "Failed to persist registry snapshot: %v", err)

		return fmt.Errorf("persist snapshot: %w", err)
	}

	return nil
}

// publish logs, counts and retains committed events.
func (s *service) publish(ctx context.Context, events []event.Event) {
	for _, e := range events {
		logger.InfoKV(ctx, "Registry event", eventFields(e)...)
		s.metrics.ObserveEvent(string(e.Kind), string(e.Reason))
	}

	s.history = append(s.history, events...)
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		s.history = append([]event.Event(nil), s.history[len(s.history)-s.historyLimit:]...)
	}
}

func (s *service) refreshGauges() {
	var enabled, disabled int

	for _, a := range s.accounts.Accounts() {
		if a.Enabled {
			enabled++
		} else {
			disabled++
		}
	}

	s.metrics.SetAccounts(enabled, disabled)
	s.metrics.SetZones(s.zones.TotalBoxes())
}

// eventFields renders the relevant fields of e as key-value pairs.
func eventFields(e event.Event) []any {
	kvs := []any{"seq", e.Seq, "kind", e.Kind}

	switch e.Kind {
	case event.KindAccountCreated:
		kvs = append(kvs, "identity", e.Identity, "role", e.Role)
	case event.KindAccountDisabled:
		kvs = append(kvs, "identity", e.Identity, "reason", e.Reason)
	case event.KindZoneCreated:
		kvs = append(kvs, "zone_id", e.ZoneID, "creator", e.Creator, "zone_type", e.ZoneType)
	}

	return kvs
}

// errorKind maps an error to a metric label.
func errorKind(err error) string {
	switch {
	case errors.Is(err, registry.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, registry.ErrInvalidAction):
		return "invalid_action"
	case errors.Is(err, registry.ErrNotExists):
		return "not_exists"
	case errors.Is(err, registry.ErrInvalidData):
		return "invalid_data"
	case errors.Is(err, registry.ErrNoneValue):
		return "none_value"
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrBelowExistentialDeposit),
		errors.Is(err, ledger.ErrInvalidAmount):
		return "ledger"
	default:
		return "internal"
	}
}
