package domain

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps. Timestamps are kept in UTC.
type BaseEntity struct {
	id        string
	createdAt time.Time
	updatedAt time.Time
}

func (e BaseEntity) ID() string           { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }
func (e BaseEntity) UpdatedAt() time.Time { return e.updatedAt }

// Touch moves updatedAt to now.
func (e *BaseEntity) Touch(now time.Time) {
	e.updatedAt = now.UTC()
}

// BaseAggregateRoot is embedded by every aggregate. It buffers the events
// raised by the aggregate until the application layer writes them to the
// outbox in the same transaction as the state change, and tracks the
// version checked by optimistic updates.
type BaseAggregateRoot struct {
	BaseEntity
	events  []DomainEvent
	version int
}

// NewAggregateRoot starts a new aggregate at version 0. An empty id is
// replaced with a generated UUID.
func NewAggregateRoot(id string, now time.Time) BaseAggregateRoot {
	if id == "" {
		id = uuid.NewString()
	}
	now = now.UTC()
	return BaseAggregateRoot{BaseEntity: BaseEntity{id: id, createdAt: now, updatedAt: now}}
}

// RestoreAggregateRoot rebuilds the base of a loaded aggregate. No events
// are pending afterwards.
func RestoreAggregateRoot(id string, createdAt, updatedAt time.Time, version int) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: BaseEntity{id: id, createdAt: createdAt, updatedAt: updatedAt},
		version:    version,
	}
}

// AddDomainEvent queues an event for the outbox.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// DomainEvents returns the events raised since the last ClearDomainEvents.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.events
}

// ClearDomainEvents is called once the events have been written.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.events = nil
}

// Version is the stored version this instance was loaded at, or 0 if new.
func (a *BaseAggregateRoot) Version() int {
	return a.version
}

// IncrementVersion is called by repositories after a successful save.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.version++
}
