package event

import (
	"sync"

	"github.com/oshokin/ledger-registry/internal/domain/account"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
)

// Kind names an event type.
type Kind string

const (
	// KindAccountCreated is emitted when an account is added or re-added.
	KindAccountCreated Kind = "account_created"
	// KindAccountDisabled is emitted when an account becomes disabled.
	KindAccountDisabled Kind = "account_disabled"
	// KindZoneCreated is emitted when a zone is catalogued.
	KindZoneCreated Kind = "zone_created"
)

// DisableReason tells how an account got disabled.
type DisableReason string

const (
	// ReasonExplicit marks a disable requested by a registrar.
	ReasonExplicit DisableReason = "explicit"
	// ReasonReaped marks a disable triggered by the ledger reaping the balance.
	ReasonReaped DisableReason = "reaped"
)

// Event is a single domain event. Only the fields relevant to Kind are set.
type Event struct {
	// Seq is assigned by the Log in append order, starting at 1.
	Seq uint64
	// Kind is the event type.
	Kind Kind
	// Identity is the subject account of account events.
	Identity account.Identity
	// Role is set on KindAccountCreated.
	Role account.Role
	// Reason is set on KindAccountDisabled.
	Reason DisableReason
	// ZoneID is set on KindZoneCreated.
	ZoneID uint32
	// Creator is the caller that created the zone.
	Creator account.Identity
	// ZoneType is set on KindZoneCreated.
	ZoneType zone.Type
}

// AccountCreated builds a KindAccountCreated event.
func AccountCreated(identity account.Identity, role account.Role) Event {
	return Event{Kind: KindAccountCreated, Identity: identity, Role: role}
}

// AccountDisabled builds a KindAccountDisabled event.
func AccountDisabled(identity account.Identity, reason DisableReason) Event {
	return Event{Kind: KindAccountDisabled, Identity: identity, Reason: reason}
}

// ZoneCreated builds a KindZoneCreated event.
func ZoneCreated(zoneID uint32, creator account.Identity, zoneType zone.Type) Event {
	return Event{Kind: KindZoneCreated, ZoneID: zoneID, Creator: creator, ZoneType: zoneType}
}

// Recorder receives events from the registries.
type Recorder interface {
	Record(e Event)
}

// Log is an append-only event buffer.
type Log struct {
	// events holds the recorded events not yet drained.
	events []Event
	// seq is the last assigned sequence number.
	seq uint64
	// mu protects events and seq.
	mu sync.Mutex
}

// NewLog returns an empty log.
func NewLog() *Log {
	return new(Log)
}

// Record appends e, assigning it the next sequence number.
func (l *Log) Record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	e.Seq = l.seq
	l.events = append(l.events, e)
}

// Events returns a copy of the pending events.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]Event(nil), l.events...)
}

// Drain returns the pending events and clears the buffer.
// Sequence numbers keep increasing across drains.
func (l *Log) Drain() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	drained := l.events
	l.events = nil

	return drained
}

// Discard drops the pending events, used when a transaction is rolled back.
func (l *Log) Discard() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = nil
}
