package flock

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/pool"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/spatial"
	"github.com/tochemey/goakt/v3/log"
)

// Manager owns the whole population: one pool per kind, the spatial grid and
// the shared weights. It drives the per-tick sweep
// rebuild grid -> query neighbours -> flock -> integrate -> render -> prune.
//
// A Manager is single-threaded: every method must be called from the
// goroutine running the ticks, and weights must only change between ticks.
type Manager struct {
	settings Settings
	weights  Weights

	pools map[Kind]*pool.Pool[*Boid]
	grid  *spatial.Grid[*Boid]

	clock      Clock
	rnd        Random
	renderer   Renderer
	readiness  Readiness
	logger     log.Logger
	animations map[Kind]Animation

	// spawn debounce, on the simulation clock
	lastBatchAt float64
	hasBatched  bool

	// per-tick scratch buffers
	order     []*Boid
	neighbors []*Boid
	positions []geometry.Vector2D
}

// Option configures a Manager.
type Option func(*Manager)

// WithRenderer sets the renderer agents are drawn with during Update.
func WithRenderer(r Renderer) Option {
	return func(m *Manager) { m.renderer = r }
}

// WithReadiness makes Update skip ticks while r is not ready.
func WithReadiness(r Readiness) Option {
	return func(m *Manager) { m.readiness = r }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithAnimation registers the default animation of a kind, used when spawn
// options carry none.
func WithAnimation(kind Kind, anim Animation) Option {
	return func(m *Manager) { m.animations[kind] = anim }
}

// NewManager creates a manager with one pre-filled pool per kind.
func NewManager(settings Settings, clock Clock, rnd Random, opts ...Option) *Manager {
	m := &Manager{
		settings:   settings,
		weights:    settings.Weights,
		pools:      make(map[Kind]*pool.Pool[*Boid], len(Kinds)),
		grid:       spatial.NewGrid[*Boid](settings.CellSize),
		clock:      clock,
		rnd:        rnd,
		logger:     log.DiscardLogger,
		animations: make(map[Kind]Animation, len(Kinds)),
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, kind := range Kinds {
		m.pools[kind] = pool.New(func() *Boid {
			b := NewBoid(kind, rnd)
			b.MaxSpeed = settings.MaxSpeed
			b.MinSpeed = settings.MinSpeed
			b.MaxForce = settings.MaxForce
			return b
		}, settings.InitialPoolSize, settings.GrowthFactor)
	}
	return m
}

// SpawnBoid activates one agent of opts.Kind. The spawn centre is
// opts.SpawnPos, or the leader's position when no position is given; the
// agent lands at a random point of the jitter ring around it.
// Unset seek offset, seek radius and animation get defaults.
func (m *Manager) SpawnBoid(opts Options) (*Boid, error) {
	var leaderPos *geometry.Vector2D
	if opts.Leader != nil && opts.Leader.Alive() {
		p := opts.Leader.Position()
		leaderPos = &p
	}
	if opts.SpawnPos == nil && leaderPos == nil {
		return nil, ErrNoSpawnAnchor
	}
	p, ok := m.pools[opts.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, opts.Kind)
	}
	if opts.Animation == nil {
		opts.Animation = m.animations[opts.Kind]
	}
	if opts.Animation == nil || opts.Animation.FrameCount() == 0 {
		return nil, fmt.Errorf("spawning %v: %w", opts.Kind, ErrNoAnimation)
	}

	center := leaderPos
	if opts.SpawnPos != nil {
		center = opts.SpawnPos
	}
	spawn := center.Add(m.rnd.InAnnulus(m.settings.SpawnMaxRadius, m.settings.SpawnMinRadius))
	opts.SpawnPos = &spawn

	if opts.SeekTargetOffset == nil {
		offset := m.rnd.InAnnulus(m.settings.SpawnMaxRadius, m.settings.SpawnMinRadius)
		opts.SeekTargetOffset = &offset
	}
	if opts.SeekOuterRadius == 0 {
		v := m.settings.SeekRadiusVariation
		opts.SeekOuterRadius = m.settings.BaseSeekRadius + m.rnd.Range(1-v, 1+v)
	}

	b := p.Acquire()
	if err := b.Init(opts); err != nil {
		// options were validated above, this only guards future fields
		p.Release(b)
		return nil, fmt.Errorf("init %v: %w", opts.Kind, err)
	}
	return b, nil
}

// SpawnBoids spawns count agents, then ignores further batches until the
// cooldown has elapsed on the simulation clock. It returns the number of
// agents created, zero while cooling down.
func (m *Manager) SpawnBoids(count int, opts Options) (int, error) {
	now := m.clock.Now()
	if m.hasBatched && now-m.lastBatchAt < m.settings.BatchCooldown.Seconds() {
		return 0, nil
	}
	m.logger.Debugf("spawning boids: %d (%v)", count, opts.Kind)

	spawned := 0
	for i := 0; i < count; i++ {
		if _, err := m.SpawnBoid(opts); err != nil {
			return spawned, err
		}
		spawned++
	}
	m.hasBatched = true
	m.lastBatchAt = now
	return spawned, nil
}

// RemoveBoid releases b to its pool. It reports false when b was not active,
// so cleanup may safely run from several places.
func (m *Manager) RemoveBoid(b *Boid) bool {
	if b == nil {
		return false
	}
	p, ok := m.pools[b.kind]
	if !ok {
		return false
	}
	return p.Release(b)
}

// IsActive reports whether b is currently part of the population.
func (m *Manager) IsActive(b *Boid) bool {
	if b == nil {
		return false
	}
	p, ok := m.pools[b.kind]
	return ok && p.IsActive(b)
}

// collect lists the active agents in a stable kind order.
func (m *Manager) collect(dst []*Boid) []*Boid {
	for _, kind := range Kinds {
		m.pools[kind].ForEachActive(func(b *Boid) {
			dst = append(dst, b)
		})
	}
	return dst
}

// Update runs one simulation tick. It does nothing while the readiness
// check fails.
func (m *Manager) Update() {
	if m.readiness != nil && !m.readiness.Ready() {
		return
	}
	t := TickOf(m.clock)

	m.order = m.collect(m.order[:0])

	m.grid.Clear()
	for _, b := range m.order {
		m.grid.Insert(b)
	}

	for _, b := range m.order {
		m.neighbors = m.grid.AppendNeighbors(m.neighbors[:0], b)
		b.Flock(m.neighbors, &m.weights, t)
		b.Update(t)
		b.Render(m.renderer, t)
	}
	clear(m.neighbors)

	m.positions = m.positions[:0]
	for _, b := range m.order {
		m.positions = append(m.positions, b.position)
	}
	m.grid.Prune(m.positions)
	clear(m.order)
}

// Render draws every active agent without advancing the simulation,
// for paused frames.
func (m *Manager) Render() {
	if m.renderer == nil {
		return
	}
	t := TickOf(m.clock)
	for _, kind := range Kinds {
		m.pools[kind].ForEachActive(func(b *Boid) {
			b.Render(m.renderer, t)
		})
	}
}

// RenderPost draws the spatial grid overlay: every tracked cell with its
// occupant count.
func (m *Manager) RenderPost(r GridRenderer) {
	if r == nil {
		return
	}
	size := m.grid.CellSize()
	m.grid.ForEachCell(func(key spatial.CellKey, items []*Boid) {
		r.DrawGridCell(GridCell{
			Key:       key,
			Origin:    m.grid.CellOrigin(key),
			Size:      size,
			Occupants: len(items),
		})
	})
}

// SetWeight writes one coefficient. Ranges are not checked.
func (m *Manager) SetWeight(name WeightName, value float64) bool {
	ok := m.weights.Set(name, value)
	if ok {
		m.logger.Infof("setWeight: %s = %.3f", name, value)
	}
	return ok
}

// Weight reads one coefficient; unknown names read as zero.
func (m *Manager) Weight(name WeightName) float64 {
	v, _ := m.weights.Get(name)
	return v
}

// Weights returns a copy of the current coefficients.
func (m *Manager) Weights() Weights {
	return m.weights
}

// SetWeights replaces all coefficients.
func (m *Manager) SetWeights(w Weights) {
	m.weights = w
}

// ResetWeights sets every coefficient to 1.
func (m *Manager) ResetWeights() {
	m.weights = NeutralWeights()
}

// ActiveCount is the number of live agents over all kinds.
func (m *Manager) ActiveCount() int {
	n := 0
	for _, p := range m.pools {
		n += p.ActiveCount()
	}
	return n
}

// ActiveCountOf is the number of live agents of one kind.
func (m *Manager) ActiveCountOf(kind Kind) int {
	if p, ok := m.pools[kind]; ok {
		return p.ActiveCount()
	}
	return 0
}

// TotalPoolSize is the number of agents allocated over all pools.
func (m *Manager) TotalPoolSize() int {
	n := 0
	for _, p := range m.pools {
		n += p.Size()
	}
	return n
}

// GridCellCount is the number of cells kept by the spatial grid.
func (m *Manager) GridCellCount() int {
	return m.grid.CellCount()
}

// ForEachActive calls fn with every live agent.
func (m *Manager) ForEachActive(fn func(*Boid)) {
	for _, kind := range Kinds {
		m.pools[kind].ForEachActive(fn)
	}
}
