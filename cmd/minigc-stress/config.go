package main

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	bytesize "github.com/inhies/go-bytesize"
	yaml "gopkg.in/yaml.v2"

	"github.com/orizon-lang/minigc/internal/cli"
)

// ScenarioConfig is the YAML document driving a stress run.
type ScenarioConfig struct {
	// Requires is a semver constraint on the tool version, guarding old
	// binaries against newer scenario files.
	Requires string `yaml:"requires,omitempty"`

	// Grain overrides the collector's minimum region size ("16KB", "1MB").
	Grain string `yaml:"grain,omitempty"`

	// Trace turns on collector mark/sweep diagnostics for the whole run.
	Trace bool `yaml:"trace,omitempty"`

	Workloads []Workload `yaml:"workloads"`
}

// Workload describes one allocation pattern. The workloads of a scenario run
// in order against one shared collector.
type Workload struct {
	Name string `yaml:"name"`

	// Allocs is the number of allocations to perform; Size is the payload
	// size of each ("256B", "4KB").
	Allocs int    `yaml:"allocs"`
	Size   string `yaml:"size"`

	// Retain keeps the most recent N allocations reachable through a
	// registered root range. Zero retains only the latest.
	Retain int `yaml:"retain,omitempty"`

	// CollectEvery forces a full cycle every N allocations on top of the
	// collections the allocator triggers on its own.
	CollectEvery int `yaml:"collect_every,omitempty"`

	// FreeRetained explicitly frees the retained set when the workload
	// finishes. Without it the retained blocks are left allocated.
	FreeRetained bool `yaml:"free_retained,omitempty"`
}

func loadScenarios(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var cfg ScenarioConfig
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.Requires != "" {
		con, err := semver.NewConstraint(cfg.Requires)
		if err != nil {
			return nil, fmt.Errorf("invalid requires constraint %q: %w", cfg.Requires, err)
		}
		v, err := semver.NewVersion(cli.Version)
		if err != nil {
			return nil, fmt.Errorf("invalid tool version %q: %w", cli.Version, err)
		}
		if !con.Check(v) {
			return nil, fmt.Errorf("scenario requires minigc-stress %s, this is v%s", cfg.Requires, cli.Version)
		}
	}

	if len(cfg.Workloads) == 0 {
		return nil, fmt.Errorf("%s declares no workloads", path)
	}
	for i := range cfg.Workloads {
		if err := cfg.Workloads[i].validate(); err != nil {
			return nil, fmt.Errorf("workload %d: %w", i, err)
		}
	}

	return &cfg, nil
}

func (w *Workload) validate() error {
	if w.Name == "" {
		return fmt.Errorf("missing name")
	}
	if w.Allocs <= 0 {
		return fmt.Errorf("%s: allocs must be positive", w.Name)
	}
	if _, err := parseSize(w.Size); err != nil {
		return fmt.Errorf("%s: %w", w.Name, err)
	}
	if w.Retain < 0 {
		return fmt.Errorf("%s: retain must not be negative", w.Name)
	}
	return nil
}

// parseSize turns a human-readable size into payload bytes.
func parseSize(s string) (uintptr, error) {
	if s == "" {
		return 0, fmt.Errorf("missing size")
	}
	bs, err := bytesize.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if bs <= 0 {
		return 0, fmt.Errorf("size %q must be positive", s)
	}
	return uintptr(bs), nil
}
