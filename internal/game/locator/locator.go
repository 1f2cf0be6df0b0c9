package locator

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/observability"
)

// Point is a player position in world space.
type Point struct {
	X, Y, Z float64
}

// PositionSource reports the player position.
type PositionSource interface {
	PlayerPosition() Point
}

// Session reports the server the client is connected to.
type Session interface {
	Host() string
}

// Resolver upgrades a stub catalog entry to a resolved descriptor.
type Resolver interface {
	Resolve(ctx context.Context, id string) (*room.Descriptor, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, id string) (*room.Descriptor, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, id string) (*room.Descriptor, error) {
	return f(ctx, id)
}

// Observer receives room changes. Either argument may be nil.
type Observer func(next, prev *room.Descriptor)

type subscription struct {
	id int
	fn Observer
}

// Locator runs the current-room state machine once per tick.
//
// Locator is not safe for concurrent use; Tick and OnChange must be called
// from the add-on event loop.
type Locator struct {
	catalog     *room.Catalog
	state       *State
	resolver    Resolver
	position    PositionSource
	session     Session
	trackedHost string
	metrics     *observability.Metrics
	logger      *zap.Logger

	observers []subscription
	nextID    int
}

// NewLocator creates a Locator writing to state.
//
// Precondition: all pointer and interface arguments must be non-nil.
func NewLocator(
	catalog *room.Catalog,
	state *State,
	resolver Resolver,
	position PositionSource,
	session Session,
	trackedHost string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Locator {
	return &Locator{
		catalog:     catalog,
		state:       state,
		resolver:    resolver,
		position:    position,
		session:     session,
		trackedHost: trackedHost,
		metrics:     metrics,
		logger:      logger,
	}
}

// OnChange registers fn to be called on every room change, after observers
// registered earlier.
//
// Postcondition: The returned func removes fn; calling it twice is a no-op.
func (l *Locator) OnChange(fn Observer) (unsubscribe func()) {
	l.nextID++
	id := l.nextID
	l.observers = append(l.observers, subscription{id: id, fn: fn})
	return func() {
		for i, s := range l.observers {
			if s.id == id {
				l.observers = append(l.observers[:i:i], l.observers[i+1:]...)
				return
			}
		}
	}
}

// Tick recomputes the current room and notifies observers if the reference
// changed.
//
// Postcondition: State.Current is nil or a catalog entry containing the player.
func (l *Locator) Tick(ctx context.Context) {
	prev := l.state.current
	next := l.locate(ctx, prev)
	if next == prev {
		return
	}
	l.state.current = next
	l.metrics.RoomChanges.Inc()

	if next != nil {
		l.logger.Debug("entered room",
			zap.String("corner_id", next.ID),
			zap.String("name", next.Name),
			zap.String("shape", string(next.Shape)),
		)
	} else {
		l.logger.Debug("left rooms")
	}

	observers := make([]subscription, len(l.observers))
	copy(observers, l.observers)
	for _, s := range observers {
		s.fn(next, prev)
	}
}

func (l *Locator) locate(ctx context.Context, prev *room.Descriptor) *room.Descriptor {
	if l.session.Host() != l.trackedHost {
		return nil
	}
	p := l.position.PlayerPosition()
	if prev != nil && prev.Contains(p.X, p.Z) {
		return prev
	}
	d, ok := l.catalog.FirstContaining(p.X, p.Z)
	if !ok {
		return nil
	}
	if d.Resolved() {
		return d
	}
	resolved, err := l.resolver.Resolve(ctx, d.ID)
	if err != nil {
		l.logger.Warn("resolving room", zap.String("corner_id", d.ID), zap.Error(err))
		return d
	}
	return resolved
}
