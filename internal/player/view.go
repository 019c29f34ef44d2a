package player

import "context"

// View is a live lookup of one identity. It holds no player itself; every
// read resolves against the registry, so a view taken before the player is
// registered starts reporting it as soon as Add is called.
type View struct {
	registry *Registry
	identity Identity
}

func (v View) Identity() Identity {
	return v.identity
}

// Get returns the registered player, sharing its state pointer and
// handlers, or the default player for the view's identity.
func (v View) Get() Player {
	if p, ok := v.registry.lookup(v.identity).Get(); ok {
		return *p
	}

	return defaultPlayer(v.identity)
}

// Snapshot is like Get but copies the state under the registry lock.
func (v View) Snapshot() Player {
	return v.registry.snapshot(v.identity)
}

// Version is bumped by every add, replace, remove and update of the view's
// identity. Changes to other identities leave it alone.
func (v View) Version() uint64 {
	return v.registry.identityVersion(v.identity)
}

// Watch sends a snapshot right away and again after every change to the
// view's identity. Changes arriving faster than the reader are coalesced
// into one snapshot. The channel is closed once ctx is done.
func (v View) Watch(ctx context.Context) <-chan Player {
	w := v.registry.subscribe(v.identity)
	out := make(chan Player)

	go func() {
		defer close(out)
		defer v.registry.unsubscribe(v.identity, w)

		for {
			select {
			case out <- v.Snapshot():
			case <-ctx.Done():
				return
			}

			select {
			case <-w.notify:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
