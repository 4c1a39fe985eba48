// Package pool provides a growable object pool that hands out and reclaims
// long-lived instances instead of allocating new ones every frame.
package pool

import "math"

const (
	// MinGrowthFactor is the smallest growth factor a pool accepts.
	MinGrowthFactor = 1.1
	// DefaultGrowthFactor is used when a pool is created with a factor of zero.
	DefaultGrowthFactor = 1.5
	// refillRatio is the share of the current capacity added when Acquire
	// finds no available instance.
	refillRatio = 0.2
)

// Poolable is implemented by every type managed by a Pool.
// The pool calls Activate when an instance is handed out and Deactivate when
// it is created and every time it comes back.
type Poolable interface {
	comparable
	Activate()
	Deactivate()
}

// Pool owns a backing store of instances split between an available list and
// an active set. Every instance is in exactly one of the two, and the
// capacity never shrinks.
//
// A Pool is not safe for concurrent use.
type Pool[T Poolable] struct {
	newFn        func() T
	growthFactor float64

	items     []T
	available []T

	// active keeps insertion order for deterministic iteration,
	// activeIdx gives O(1) membership and removal.
	active    []T
	activeIdx map[T]int
}

// New creates a pool pre-filled with initialSize instances built by newFn.
// growthFactor is raised to MinGrowthFactor when smaller; zero selects
// DefaultGrowthFactor.
func New[T Poolable](newFn func() T, initialSize int, growthFactor float64) *Pool[T] {
	if growthFactor == 0 {
		growthFactor = DefaultGrowthFactor
	}
	p := &Pool[T]{
		newFn:        newFn,
		growthFactor: math.Max(MinGrowthFactor, growthFactor),
		activeIdx:    make(map[T]int),
	}
	if initialSize > 0 {
		p.grow(initialSize)
	}
	return p
}

// grow raises the capacity to the larger of len*growthFactor and
// len+minAmount.
func (p *Pool[T]) grow(minAmount int) {
	current := len(p.items)
	newSize := int(math.Ceil(math.Max(
		float64(current)*p.growthFactor,
		float64(current+minAmount),
	)))

	for i := current; i < newSize; i++ {
		obj := p.newFn()
		obj.Deactivate()
		p.items = append(p.items, obj)
		p.available = append(p.available, obj)
	}
}

// Acquire returns an inactive instance, marks it active and calls its
// Activate hook. It never fails: an exhausted pool grows first.
func (p *Pool[T]) Acquire() T {
	if len(p.available) == 0 {
		minAmount := int(math.Ceil(float64(len(p.items)) * refillRatio))
		p.grow(max(minAmount, 1))
	}

	last := len(p.available) - 1
	obj := p.available[last]
	var zero T
	p.available[last] = zero
	p.available = p.available[:last]

	p.activeIdx[obj] = len(p.active)
	p.active = append(p.active, obj)
	obj.Activate()
	return obj
}

// Release returns obj to the available list and calls its Deactivate hook.
// Releasing an instance that is not active is a no-op and reports false.
func (p *Pool[T]) Release(obj T) bool {
	idx, ok := p.activeIdx[obj]
	if !ok {
		return false
	}
	p.removeActiveAt(idx)
	delete(p.activeIdx, obj)

	obj.Deactivate()
	p.available = append(p.available, obj)
	return true
}

func (p *Pool[T]) removeActiveAt(idx int) {
	last := len(p.active) - 1
	if idx != last {
		moved := p.active[last]
		p.active[idx] = moved
		p.activeIdx[moved] = idx
	}
	var zero T
	p.active[last] = zero
	p.active = p.active[:last]
}

// ForEachActive calls fn for every active instance.
// fn may release the instance it receives; releasing other instances during
// the walk is not supported.
func (p *Pool[T]) ForEachActive(fn func(T)) {
	for i := len(p.active) - 1; i >= 0; i-- {
		if i >= len(p.active) {
			continue
		}
		fn(p.active[i])
	}
}

// IsActive reports whether obj is currently handed out by this pool.
func (p *Pool[T]) IsActive(obj T) bool {
	_, ok := p.activeIdx[obj]
	return ok
}

// Size is the total number of instances owned by the pool.
func (p *Pool[T]) Size() int {
	return len(p.items)
}

// ActiveCount is the number of instances currently handed out.
func (p *Pool[T]) ActiveCount() int {
	return len(p.active)
}

// AvailableCount is the number of instances ready to be acquired.
func (p *Pool[T]) AvailableCount() int {
	return len(p.available)
}

// GrowthFactor returns the effective growth factor.
func (p *Pool[T]) GrowthFactor() float64 {
	return p.growthFactor
}
