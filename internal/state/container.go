package state

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ofrenda/core/internal/store"
)

// DefaultDebounce is the window within which rapid mutations coalesce into
// a single snapshot write.
const DefaultDebounce = 500 * time.Millisecond

// Callback receives change notifications. For an exact-path subscriber,
// newValue and oldValue are the values at the subscribed path before and
// after the change; for ancestor subscribers newValue is the updated
// subtree. changedPath is always the path passed to the mutating call.
type Callback func(newValue, oldValue any, changedPath string)

// subscription ties one callback to one path.
type subscription struct {
	id   int
	path string
	fn   Callback
}

// Container is the reactive state container. Construct with New; one
// instance per session. All methods are safe for concurrent use, though
// the design assumes a single logical writer.
type Container struct {
	mu      sync.RWMutex
	tree    map[string]any
	subs    map[int]*subscription
	nextSub int

	store  *store.Store
	logger *zap.Logger

	flushMu  sync.Mutex
	dirty    bool
	timer    *time.Timer
	debounce time.Duration
	sink     SnapshotSink
}

// Option configures a Container at construction time.
type Option func(*Container)

// WithStore wires the persistent entity store consumed by the named
// actions. Without it, entity actions fail and only pure UI state works.
func WithStore(s *store.Store) Option {
	return func(c *Container) { c.store = s }
}

// WithSnapshotSink sets the durable destination for debounced snapshots.
func WithSnapshotSink(sink SnapshotSink) Option {
	return func(c *Container) { c.sink = sink }
}

// WithLogger attaches a zap logger. Snapshot failures are reported here.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDebounce overrides the snapshot debounce window. Tests use a short
// window together with FlushNow.
func WithDebounce(d time.Duration) Option {
	return func(c *Container) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// New creates a container seeded with the default state tree.
func New(opts ...Option) *Container {
	c := &Container{
		tree:     defaultTree(),
		subs:     map[int]*subscription{},
		logger:   zap.NewNop(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultTree seeds the reactive mirror.
func defaultTree() map[string]any {
	return map[string]any{
		"user": map[string]any{
			"id":       "",
			"language": "es",
		},
		"memorials":    []any{},
		"offerings":    []any{},
		"familyGroups": []any{},
		"ui": map[string]any{
			"view":         "altar",
			"notification": nil,
		},
		"arSession": map[string]any{
			"active": false,
		},
	}
}

// Get returns the value at a dot-separated path, or nil when any segment
// is missing.
func (c *Container) Get(path string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return valueAt(c.tree, path)
}

// Set replaces the value at path, creating intermediate maps as needed,
// and synchronously notifies related subscribers before returning.
func (c *Container) Set(path string, value any) {
	c.mu.Lock()
	pending := c.prepareNotifications(path)
	setAt(c.tree, path, value)
	c.fillNewValues(pending)
	c.mu.Unlock()

	c.deliver(pending, path)
	c.markDirty()
}

// Push appends an item to the array at path, creating the array when the
// path is empty, with the same notification rule as Set.
func (c *Container) Push(path string, item any) {
	c.mu.Lock()
	pending := c.prepareNotifications(path)
	list, _ := valueAt(c.tree, path).([]any)
	setAt(c.tree, path, append(list, item))
	c.fillNewValues(pending)
	c.mu.Unlock()

	c.deliver(pending, path)
	c.markDirty()
}

// Remove filters the array at path, dropping every item for which the
// predicate returns true, and notifies like Set. Removing from a missing
// or non-array path is a no-op.
func (c *Container) Remove(path string, predicate func(item any) bool) {
	c.mu.Lock()
	list, ok := valueAt(c.tree, path).([]any)
	if !ok {
		c.mu.Unlock()
		return
	}
	pending := c.prepareNotifications(path)
	filtered := make([]any, 0, len(list))
	for _, item := range list {
		if !predicate(item) {
			filtered = append(filtered, item)
		}
	}
	setAt(c.tree, path, filtered)
	c.fillNewValues(pending)
	c.mu.Unlock()

	c.deliver(pending, path)
	c.markDirty()
}

// Subscribe registers a callback for changes at, above, or below path.
// The returned function unsubscribes; calling it twice is harmless.
func (c *Container) Subscribe(path string, fn Callback) func() {
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.subs[id] = &subscription{id: id, path: path, fn: fn}
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// notification is a pending callback invocation captured under the lock.
type notification struct {
	sub      *subscription
	oldValue any
	newValue any
}

// prepareNotifications snapshots the subscribers related to path along
// with their pre-mutation values. Caller holds the write lock.
func (c *Container) prepareNotifications(path string) []*notification {
	var pending []*notification
	for _, sub := range c.subs {
		if pathsRelated(sub.path, path) {
			pending = append(pending, &notification{
				sub:      sub,
				oldValue: valueAt(c.tree, sub.path),
			})
		}
	}
	return pending
}

// fillNewValues captures post-mutation values. Caller holds the write lock.
func (c *Container) fillNewValues(pending []*notification) {
	for _, n := range pending {
		n.newValue = valueAt(c.tree, n.sub.path)
	}
}

// deliver invokes callbacks outside the lock so a callback may call Get
// or Subscribe without deadlocking.
func (c *Container) deliver(pending []*notification, changedPath string) {
	for _, n := range pending {
		n.sub.fn(n.newValue, n.oldValue, changedPath)
	}
}

// pathsRelated reports whether one path is an ancestor of, equal to, or a
// descendant of the other.
func pathsRelated(a, b string) bool {
	return a == b ||
		strings.HasPrefix(b, a+".") ||
		strings.HasPrefix(a, b+".")
}

// valueAt walks the tree by dot-separated segments. Returns nil when any
// segment is missing or a non-map intervenes.
func valueAt(tree map[string]any, path string) any {
	segments := strings.Split(path, ".")
	var current any = tree
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return current
}

// setAt replaces the value at path, creating intermediate maps as needed.
// A non-map intermediate value is overwritten by a map.
func setAt(tree map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := tree
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}
