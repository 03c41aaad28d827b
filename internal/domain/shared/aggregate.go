package shared

// BaseAggregateRoot extends BaseEntity with an optimistic-lock version and
// a buffer of domain events recorded since the last clear. Events are
// collected by state-changing methods on the aggregate and drained by the
// caller after a successful save.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// NewBaseAggregateRoot starts a new aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// AddDomainEvent records an event for later publication
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the events recorded since the last clear
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops all recorded events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
