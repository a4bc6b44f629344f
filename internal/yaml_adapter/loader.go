// Package yaml_adapter implements config.Loader for YAML files. ${VAR}
// references are expanded from the environment before parsing.
package yaml_adapter

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vk/spacecomm/internal/config"
	"github.com/vk/spacecomm/internal/ctxlog"
	"github.com/vk/spacecomm/internal/fsutil"
	"gopkg.in/yaml.v2"
)

// document mirrors the layout of a YAML configuration file.
type document struct {
	Explorers *struct {
		Count     int    `yaml:"count"`
		HashCount int    `yaml:"hash_count"`
		Algorithm string `yaml:"algorithm"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"explorers"`
	Galaxy *struct {
		Start   int `yaml:"start"`
		Systems []struct {
			ID         int    `yaml:"id"`
			Frequency  string `yaml:"frequency"`
			Neighbours []int  `yaml:"neighbours"`
		} `yaml:"systems"`
	} `yaml:"galaxy"`
	Visited *struct {
		Backend string `yaml:"backend"`
		URL     string `yaml:"url"`
		RunID   string `yaml:"run_id"`
	} `yaml:"visited"`
	Relay *struct {
		URL                string `yaml:"url"`
		Namespace          string `yaml:"namespace"`
		Event              string `yaml:"event"`
		Timeout            string `yaml:"timeout"`
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"relay"`
}

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// Load reads every YAML file under paths and merges them in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, l.Extensions()...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files found in %v", paths)
	}

	model := config.NewModel()
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", file, err)
		}

		var doc document
		if err := yaml.UnmarshalStrict([]byte(os.ExpandEnv(string(data))), &doc); err != nil {
			return nil, fmt.Errorf("error parsing YAML file %s: %w", file, err)
		}

		partial, err := translate(&doc)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
		if err := model.Merge(partial); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	logger.Debug("YAML loading complete.", "files", len(files), "systems", len(model.Galaxy.Systems))
	return model, nil
}

func translate(doc *document) (*config.Model, error) {
	m := config.NewModel()

	if e := doc.Explorers; e != nil {
		timeout, err := parseDuration("explorers.timeout", e.Timeout)
		if err != nil {
			return nil, err
		}
		m.Explorers = config.Explorers{Count: e.Count, HashCount: e.HashCount, Algorithm: e.Algorithm, Timeout: timeout}
	}

	if g := doc.Galaxy; g != nil {
		m.Galaxy.Start = g.Start
		for _, s := range g.Systems {
			err := m.Galaxy.AddSystem(&config.SolarSystem{ID: s.ID, Frequency: s.Frequency, Neighbours: s.Neighbours})
			if err != nil {
				return nil, err
			}
		}
	}

	if v := doc.Visited; v != nil {
		m.Visited = config.Visited{Backend: v.Backend, URL: v.URL, RunID: v.RunID}
	}

	if r := doc.Relay; r != nil {
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
