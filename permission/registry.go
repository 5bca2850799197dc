package permission

import (
	"errors"
	"sync"
)

// Registry maps permission keys to bit positions within a [Set]. It is
// populated during client construction and frozen before any resolution
// happens.
type Registry struct {
	mu       sync.RWMutex
	keyToBit map[Key]int
	bitToKey map[int]Key
	frozen   bool
}

// NewRegistry creates an empty permission registry.
func NewRegistry() *Registry {
	return &Registry{
		keyToBit: make(map[Key]int),
		bitToKey: make(map[int]Key),
	}
}

// Default creates a registry pre-loaded with the closed back-office key
// enumeration and freezes it.
func Default() *Registry {
	r := NewRegistry()
	for _, k := range Keys() {
		// Keys() is duplicate-free by construction.
		_, _ = r.Register(k)
	}
	r.Freeze()
	return r
}

// Register assigns the next available bit to the given key. Returns the
// assigned bit index. Must be called before [Registry.Freeze].
func (r *Registry) Register(key Key) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return -1, errors.New("registry frozen")
	}

	if key == "" {
		return -1, errors.New("permission key cannot be empty")
	}

	if _, exists := r.keyToBit[key]; exists {
		return -1, errors.New("permission key already registered")
	}

	nextBit := len(r.keyToBit)
	if nextBit >= setBits {
		return -1, errors.New("permission key limit exceeded")
	}

	r.keyToBit[key] = nextBit
	r.bitToKey[nextBit] = key

	return nextBit, nil
}

// Bit returns the bit index for the given key, or false if not registered.
func (r *Registry) Bit(key Key) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bit, ok := r.keyToBit[key]
	return bit, ok
}

// Key returns the permission key for the given bit index, or false if
// unassigned.
func (r *Registry) Key(bit int) (Key, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.bitToKey[bit]
	return key, ok
}

// Freeze prevents further registrations. Must be called before the registry
// is used for resolution.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Count returns the number of registered keys.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keyToBit)
}

// SetFromWire builds a [Set] from a server-sent string→bool permission map.
// Only keys granted true are set. Keys absent from the registry are returned
// as the second value so the caller can log them; they never enter the set
// (default-deny).
func (r *Registry) SetFromWire(wire map[string]bool) (Set, []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s Set
	var unknown []string
	for name, granted := range wire {
		if !granted {
			continue
		}
		bit, ok := r.keyToBit[Key(name)]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		s.Set(bit)
	}
	return s, unknown
}

// GrantedKeys returns the registered keys whose bits are set in s, in
// registration order.
func (r *Registry) GrantedKeys(s Set) []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]Key, 0, len(r.keyToBit))
	for bit := 0; bit < len(r.keyToBit); bit++ {
		if !s.Has(bit) {
			continue
		}
		if key, ok := r.bitToKey[bit]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}
