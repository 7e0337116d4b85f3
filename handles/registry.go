// Package handles provides a registry that maps opaque numeric handles
// to live objects with shared ownership semantics.
package handles

import (
	"sync"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oasisprotocol/sighost/common/errors"
	"github.com/oasisprotocol/sighost/common/logging"
)

const (
	// ModuleName is a unique module name for the handles module.
	ModuleName = "handles"

	// CfgMaxHandles configures the maximum number of concurrently
	// live handles (0 for unlimited).
	CfgMaxHandles = "handles.max_handles"
)

var (
	// ErrInvalidHandle is the error returned when a handle does not
	// refer to a live object of the expected kind.
	ErrInvalidHandle = errors.New(ModuleName, 1, "handles: invalid handle")

	// ErrTooManyHandles is the error returned when the configured
	// handle capacity is exhausted.
	ErrTooManyHandles = errors.New(ModuleName, 2, "handles: too many handles")

	// Flags has the configuration flags.
	Flags = flag.NewFlagSet("", flag.ContinueOnError)
)

// Handle is an opaque reference to a live object.  The zero value is
// never a valid handle, and handles are never reused within a registry.
type Handle uint64

// Target is the interface implemented by objects that can be placed in
// a Registry.  Targets are reference counted, each successful Acquire
// adds a share that the caller gives up with Release, and the target
// destroys itself when the last share is released.
type Target interface {
	// Acquire adds a share of the target, failing if the target has
	// already been destroyed.
	Acquire() error

	// Release gives up a share of the target.
	Release()
}

// Registry maps handles to live objects.  It is safe for concurrent
// use.
type Registry struct {
	mu sync.Mutex

	objects map[Handle]Target
	next    Handle
	max     int

	logger *logging.Logger
}

// New creates a new registry, with the handle capacity drawn from the
// configuration.
func New() *Registry {
	return NewWithCapacity(viper.GetInt(CfgMaxHandles))
}

// NewWithCapacity creates a new registry holding at most max handles
// (0 for unlimited).
func NewWithCapacity(max int) *Registry {
	initMetrics()

	return &Registry{
		objects: make(map[Handle]Target),
		max:     max,
		logger:  logging.GetLogger("handles/registry"),
	}
}

// Register places a target into the registry and returns its handle.
// The registry takes over the caller's share of the target.  On
// failure the share stays with the caller.
func (r *Registry) Register(target Target) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max > 0 && len(r.objects) >= r.max {
		return 0, ErrTooManyHandles
	}

	r.next++
	handle := r.next
	r.objects[handle] = target

	liveHandles.Inc()
	r.logger.Debug("registered handle",
		"handle", handle,
	)

	return handle, nil
}

// Get returns the target the handle refers to, without taking a share
// of it.  Callers that use the target beyond the current registry
// state must Acquire their own share.
func (r *Registry) Get(handle Handle) (Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.objects[handle]
	if !ok {
		return nil, ErrInvalidHandle
	}
	return target, nil
}

// Close removes the handle from the registry and gives up the
// registry's share of the target, destroying the target synchronously
// if this was the last share.  Closing a handle twice fails with
// ErrInvalidHandle on the second call.
func (r *Registry) Close(handle Handle) error {
	r.mu.Lock()
	target, ok := r.objects[handle]
	if ok {
		delete(r.objects, handle)
	}
	r.mu.Unlock()

	if !ok {
		return ErrInvalidHandle
	}

	// Released outside the lock, destruction can be slow.
	target.Release()

	liveHandles.Dec()
	r.logger.Debug("closed handle",
		"handle", handle,
	)

	return nil
}

// Shutdown closes every live handle.  The registry stays usable, and
// handle values are still never reused.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	objects := r.objects
	r.objects = make(map[Handle]Target)
	r.mu.Unlock()

	for handle, target := range objects {
		target.Release()
		r.logger.Debug("closed handle",
			"handle", handle,
		)
	}
	liveHandles.Sub(float64(len(objects)))
}

func init() {
	Flags.Int(CfgMaxHandles, 0, "Maximum number of live handles (0 for unlimited)")

	_ = viper.BindPFlags(Flags)
}
