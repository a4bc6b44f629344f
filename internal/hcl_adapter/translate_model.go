// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vk/spacecomm/internal/config"
)

// translateRoot converts one decoded file into a partial model.
func (l *Loader) translateRoot(root *fileRoot) (*config.Model, error) {
	m := config.NewModel()

	if e := root.Explorers; e != nil {
		timeout, err := parseDuration("explorers.timeout", e.Timeout)
		if err != nil {
			return nil, err
		}
		m.Explorers = config.Explorers{
			Count:     e.Count,
			HashCount: e.HashCount,
			Algorithm: e.Algorithm,
			Timeout:   timeout,
		}
	}

	if root.Galaxy != nil {
		m.Galaxy.Start = root.Galaxy.Start
	}
	for _, s := range root.Systems {
		system, err := l.translateSolarSystem(s)
		if err != nil {
			return nil, err
		}
		if err := m.Galaxy.AddSystem(system); err != nil {
			return nil, err
		}
	}

	if v := root.Visited; v != nil {
		m.Visited = config.Visited{Backend: v.Backend, URL: v.URL, RunID: v.RunID}
	}

	if r := root.Relay; r != nil {
		timeout, err := parseDuration("relay.timeout", r.Timeout)
		if err != nil {
			return nil, err
		}
		m.Relay = &config.Relay{
			URL:                r.URL,
			Namespace:          r.Namespace,
			Event:              r.Event,
			Timeout:            timeout,
			InsecureSkipVerify: r.InsecureSkipVerify,
		}
	}
	return m, nil
}

// translateSolarSystem converts the HCL-specific solar_system block into the agnostic model.
func (l *Loader) translateSolarSystem(s *solarSystemBlock) (*config.SolarSystem, error) {
	id, err := strconv.Atoi(s.ID)
	if err != nil {
		return nil, fmt.Errorf("solar_system label %q is not an integer id", s.ID)
	}
	return &config.SolarSystem{
		ID:         id,
		Frequency:  s.Frequency,
		Neighbours: s.Neighbours,
	}, nil
}

func parseDuration(attr, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", attr, raw, err)
	}
	return d, nil
}
