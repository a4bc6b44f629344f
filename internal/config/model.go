package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vk/spacecomm/internal/message"
)

// Visited-set backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Default values applied by Model.ApplyDefaults.
const (
	DefaultExplorerCount = 4
	DefaultHashCount     = 1
	DefaultRelayEvent    = "discovery"
	DefaultRelayTimeout  = 10 * time.Second
)

// Model is the unified, format-agnostic representation of a run's
// configuration.
type Model struct {
	Explorers Explorers
	Galaxy    *Galaxy
	Visited   Visited
	// Relay is nil when discoveries are not relayed anywhere.
	Relay *Relay
}

// Explorers configures the worker pool.
type Explorers struct {
	Count     int
	HashCount int
	Algorithm string
	// Timeout bounds the whole run. Zero means no limit.
	Timeout time.Duration
}

// Galaxy is the graph of solar systems headquarters explores.
type Galaxy struct {
	Start   int
	Systems map[int]*SolarSystem
}

// SolarSystem is one node of the galaxy.
type SolarSystem struct {
	ID         int
	Frequency  string
	Neighbours []int
}

// Visited selects where the shared visited set lives.
type Visited struct {
	Backend string
	URL     string
	// RunID names the set. Processes configured with the same RunID share
	// one set. Empty means a fresh set per run.
	RunID string
}

// Relay describes the socket.io endpoint discoveries are mirrored to.
type Relay struct {
	URL                string
	Namespace          string
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// NewModel returns an empty model with an empty galaxy.
func NewModel() *Model {
	return &Model{Galaxy: NewGalaxy()}
}

// NewGalaxy returns a galaxy with no systems.
func NewGalaxy() *Galaxy {
	return &Galaxy{Systems: make(map[int]*SolarSystem)}
}

// AddSystem adds s to the galaxy. Duplicate ids are rejected.
func (g *Galaxy) AddSystem(s *SolarSystem) error {
	if _, exists := g.Systems[s.ID]; exists {
		return fmt.Errorf("solar system %d is defined more than once", s.ID)
	}
	g.Systems[s.ID] = s
	return nil
}

// IDs returns the system ids in ascending order.
func (g *Galaxy) IDs() []int {
	ids := make([]int, 0, len(g.Systems))
	for id := range g.Systems {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Reachable returns the ids reachable from Start, including Start.
func (g *Galaxy) Reachable() map[int]bool {
	seen := map[int]bool{}
	if _, ok := g.Systems[g.Start]; !ok {
		return seen
	}
	stack := []int{g.Start}
	seen[g.Start] = true
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range g.Systems[id].Neighbours {
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return seen
}

// Merge copies everything set in other into m. Later files win for scalar
// settings; solar systems are accumulated.
func (m *Model) Merge(other *Model) error {
	if other.Explorers.Count != 0 {
		m.Explorers.Count = other.Explorers.Count
	}
	if other.Explorers.HashCount != 0 {
		m.Explorers.HashCount = other.Explorers.HashCount
	}
	if other.Explorers.Algorithm != "" {
		m.Explorers.Algorithm = other.Explorers.Algorithm
	}
	if other.Explorers.Timeout != 0 {
		m.Explorers.Timeout = other.Explorers.Timeout
	}
	if other.Visited.Backend != "" {
		m.Visited = other.Visited
	}
	if other.Relay != nil {
		m.Relay = other.Relay
	}
	if other.Galaxy == nil {
		return nil
	}
	if m.Galaxy == nil {
		m.Galaxy = NewGalaxy()
	}
	if other.Galaxy.Start != 0 {
		m.Galaxy.Start = other.Galaxy.Start
	}
	for _, id := range other.Galaxy.IDs() {
		if err := m.Galaxy.AddSystem(other.Galaxy.Systems[id]); err != nil {
			return err
		}
	}
	return nil
}

// ApplyDefaults fills unset fields.
func (m *Model) ApplyDefaults() {
	if m.Explorers.Count == 0 {
		m.Explorers.Count = DefaultExplorerCount
	}
	if m.Explorers.HashCount == 0 {
		m.Explorers.HashCount = DefaultHashCount
	}
	if m.Visited.Backend == "" {
		m.Visited.Backend = BackendMemory
	}
	if m.Relay != nil {
		if m.Relay.Event == "" {
			m.Relay.Event = DefaultRelayEvent
		}
		if m.Relay.Namespace == "" {
			m.Relay.Namespace = "/"
		}
		if m.Relay.Timeout == 0 {
			m.Relay.Timeout = DefaultRelayTimeout
		}
	}
}

// Validate checks the model for errors that would make a run impossible.
// All problems are reported together.
func (m *Model) Validate() error {
	var errs []error

	if m.Explorers.Count < 1 {
		errs = append(errs, fmt.Errorf("explorers.count must be at least 1, got %d", m.Explorers.Count))
	}
	if m.Explorers.HashCount < 0 {
		errs = append(errs, fmt.Errorf("explorers.hash_count must not be negative, got %d", m.Explorers.HashCount))
	}
	if m.Explorers.Timeout < 0 {
		errs = append(errs, errors.New("explorers.timeout must not be negative"))
	}

	switch m.Visited.Backend {
	case BackendMemory:
	case BackendRedis:
		if m.Visited.URL == "" {
			errs = append(errs, errors.New("visited.url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("visited.backend must be %q or %q, got %q", BackendMemory, BackendRedis, m.Visited.Backend))
	}

	if m.Relay != nil && m.Relay.URL == "" {
		errs = append(errs, errors.New("relay.url is required when a relay block is present"))
	}

	errs = append(errs, m.validateGalaxy()...)
	return errors.Join(errs...)
}

func (m *Model) validateGalaxy() []error {
	g := m.Galaxy
	if g == nil || len(g.Systems) == 0 {
		return []error{errors.New("galaxy has no solar systems")}
	}

	var errs []error
	if _, ok := g.Systems[g.Start]; !ok {
		errs = append(errs, fmt.Errorf("galaxy.start %d is not a defined solar system", g.Start))
	}
	for _, id := range g.IDs() {
		if id < 0 {
			errs = append(errs, fmt.Errorf("solar system id %d must not be negative", id))
		}
		if f := g.Systems[id].Frequency; f == message.End || f == message.Exit {
			errs = append(errs, fmt.Errorf("solar system %d frequency %q is a reserved control value", id, f))
		}
		var missing []string
		for _, n := range g.Systems[id].Neighbours {
			if _, ok := g.Systems[n]; !ok {
				missing = append(missing, fmt.Sprint(n))
			}
		}
		if len(missing) > 0 {
			errs = append(errs, fmt.Errorf("solar system %d has undefined neighbours: %s", id, strings.Join(missing, ", ")))
		}
	}
	return errs
}
