package player

import (
	"log/slog"
	"sync"

	"github.com/samber/mo"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type watcher struct {
	notify chan struct{}
}

// Registry maps player identities to registered players. Reads through
// Get never fail: an identity with no entry resolves to the default player.
type Registry struct {
	players  map[Identity]*Player
	watchers map[Identity]map[*watcher]struct{}
	versions map[Identity]uint64
	version  uint64
	logger   *slog.Logger
	mu       sync.RWMutex
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		players:  make(map[Identity]*Player),
		watchers: make(map[Identity]map[*watcher]struct{}),
		versions: make(map[Identity]uint64),
		logger:   logger,
	}
}

// Add registers a player, replacing any entry stored under the same identity.
func (r *Registry) Add(id Identity, state *State, handlers Handlers) {
	funcName := "player.Registry.Add"
	if id == "" {
		r.logger.Warn(funcName, "error", "empty identity, ignored")
		return
	}

	if state == nil {
		s := defaultState
		state = &s
	}
	if handlers == nil {
		handlers = NoopHandlers
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[id]; ok {
		r.logger.Warn(funcName, "identity", id, "error", "replacing registered player")
	}

	r.players[id] = &Player{
		Identity: id,
		State:    state,
		Handlers: handlers,
	}
	r.changed(id)

	r.logger.Debug(funcName, "identity", id, "result", "OK")
}

// Remove deletes the entry for id and reports whether one existed.
func (r *Registry) Remove(id Identity) bool {
	funcName := "player.Registry.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[id]; !ok {
		r.logger.Debug(funcName, "identity", id, "result", "absent")
		return false
	}

	delete(r.players, id)
	r.changed(id)

	r.logger.Debug(funcName, "identity", id, "result", "OK")
	return true
}

// Update applies fn to the state of a registered player and notifies its
// watchers. It reports false and does nothing when id is not registered.
func (r *Registry) Update(id Identity, fn func(*State)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return false
	}

	fn(p.State)
	r.changed(id)

	return true
}

func (r *Registry) Get(id Identity) View {
	return View{registry: r, identity: id}
}

func (r *Registry) Has(id Identity) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.players[id]
	return ok
}

// Identities returns the registered identities in ascending order.
func (r *Registry) Identities() []Identity {
	r.mu.RLock()
	ids := maps.Keys(r.players)
	r.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// Version is bumped by every add, replace, remove and update.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// identityVersion counts the changes made to id alone. It is zero for an
// identity that was never added.
func (r *Registry) identityVersion(id Identity) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.versions[id]
}

func (r *Registry) lookup(id Identity) mo.Option[*Player] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return mo.None[*Player]()
	}

	return mo.Some(p)
}

func (r *Registry) snapshot(id Identity) Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return defaultPlayer(id)
	}

	s := *p.State
	return Player{
		Identity: p.Identity,
		State:    &s,
		Handlers: p.Handlers,
	}
}

// changed must be called with mu held for writing.
func (r *Registry) changed(id Identity) {
	r.version++
	r.versions[id]++
	for w := range r.watchers[id] {
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
}

func (r *Registry) subscribe(id Identity) *watcher {
	w := &watcher{notify: make(chan struct{}, 1)}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.watchers[id] == nil {
		r.watchers[id] = make(map[*watcher]struct{})
	}
	r.watchers[id][w] = struct{}{}

	return w
}

func (r *Registry) unsubscribe(id Identity, w *watcher) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.watchers[id], w)
	if len(r.watchers[id]) == 0 {
		delete(r.watchers, id)
	}
}
