// Package scenario loads benchmark environments and the demo strategies that run in them.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"github.com/huangsam/planbench/core"
	"github.com/huangsam/planbench/internal/contract"
	"github.com/huangsam/planbench/schema"
	"gopkg.in/yaml.v3"
)

// Built-in strategy names.
const (
	DirectPlanner   = "direct"
	ReplayPlanner   = "replay"
	ShortcutSmooth  = "shortcut"
	SpacingSmooth   = "spacing"
	defaultCellSize = 1.0
)

// Scenario is a parsed scenario file.
type Scenario struct {
	Name       string         `yaml:"name"`
	CellSize   float64        `yaml:"cell_size"`
	Rows       []string       `yaml:"grid"`
	Start      schema.Pose    `yaml:"start"`
	Goal       schema.Pose    `yaml:"goal"`
	RobotShape []schema.Point `yaml:"robot_shape"`
	Planners   []PlannerDef   `yaml:"planners"`

	grid *GridMap
}

// PlannerDef declares one planner available in a scenario.
type PlannerDef struct {
	Name           string         `yaml:"name"`
	Kind           string         `yaml:"kind"`
	Waypoints      []schema.Pose  `yaml:"waypoints"`
	Stages         []Stage        `yaml:"stages"`
	Fail           bool           `yaml:"fail"`
	Fault          string         `yaml:"fault"`
	ConstructError string         `yaml:"construct_error"`
	Control        bool           `yaml:"control"`
	Intermediary   bool           `yaml:"intermediary"`
	DelaySeconds   float64        `yaml:"delay"`
	Settings       map[string]any `yaml:"settings"`
}

// Stage is a solution a replay planner returns once its time budget reaches Budget seconds.
type Stage struct {
	Budget    float64       `yaml:"budget"`
	Waypoints []schema.Pose `yaml:"waypoints"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario document and builds its grid.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario name is required")
	}
	if s.CellSize == 0 {
		s.CellSize = defaultCellSize
	}
	grid, err := NewGridMap(s.Rows, s.CellSize)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	s.grid = grid
	if grid.Collides(s.Start.X, s.Start.Y) {
		return nil, fmt.Errorf("scenario %s: start pose is in collision", s.Name)
	}
	if grid.Collides(s.Goal.X, s.Goal.Y) {
		return nil, fmt.Errorf("scenario %s: goal pose is in collision", s.Name)
	}
	seen := map[string]struct{}{}
	for i, def := range s.Planners {
		if def.Name == "" {
			return nil, fmt.Errorf("scenario %s: planner %d has no name", s.Name, i)
		}
		if _, dup := seen[def.Name]; dup {
			return nil, fmt.Errorf("scenario %s: duplicate planner %s", s.Name, def.Name)
		}
		seen[def.Name] = struct{}{}
		if def.Kind != DirectPlanner && def.Kind != ReplayPlanner {
			return nil, fmt.Errorf("scenario %s: planner %s has unknown kind '%s'", s.Name, def.Name, def.Kind)
		}
	}
	return &s, nil
}

// Grid returns the collision model of the scenario.
func (s *Scenario) Grid() *GridMap {
	return s.grid
}

// PlannerNames lists the planners the scenario defines, plus the built-in direct planner.
func (s *Scenario) PlannerNames() []string {
	names := make([]string, 0, len(s.Planners)+1)
	for _, def := range s.Planners {
		names = append(names, def.Name)
	}
	if !slices.Contains(names, DirectPlanner) {
		names = append(names, DirectPlanner)
	}
	return names
}

// Benchmark selects the configured planners and smoothers.
// Unknown planner names still get a factory, which fails construction when evaluated.
func (s *Scenario) Benchmark(cfg *contract.Config) (*core.Benchmark, error) {
	bench := &core.Benchmark{
		Name:        s.Name,
		Environment: s.grid,
		Start:       s.Start,
		Goal:        s.Goal,
		RobotShape:  slices.Clone(s.RobotShape),
	}
	for _, name := range cfg.Planners {
		bench.Planners = append(bench.Planners, s.plannerFactory(name))
	}
	for _, name := range cfg.Smoothers {
		factory, err := smootherFactory(name)
		if err != nil {
			return nil, err
		}
		bench.Smoothers = append(bench.Smoothers, factory)
	}
	return bench, nil
}

// plannerFactory returns the factory for a planner name.
func (s *Scenario) plannerFactory(name string) contract.PlannerFactory {
	shape := slices.Clone(s.RobotShape)
	for _, def := range s.Planners {
		if def.Name == name {
			return contract.PlannerFactory{
				Name: name,
				New: func(rc *contract.RunContext) (contract.Planner, error) {
					return newPlanner(def, shape, rc)
				},
			}
		}
	}
	if name == DirectPlanner {
		def := PlannerDef{Name: DirectPlanner, Kind: DirectPlanner}
		return contract.PlannerFactory{
			Name: name,
			New: func(rc *contract.RunContext) (contract.Planner, error) {
				return newPlanner(def, shape, rc)
			},
		}
	}
	return contract.PlannerFactory{
		Name: name,
		New: func(*contract.RunContext) (contract.Planner, error) {
			return nil, fmt.Errorf("planner %s is not defined in scenario %s", name, s.Name)
		},
	}
}

// smootherFactory returns the factory for a smoother name.
func smootherFactory(name string) (contract.SmootherFactory, error) {
	switch name {
	case ShortcutSmooth:
		return contract.SmootherFactory{Name: name, New: func(*contract.RunContext) (contract.Smoother, error) {
			return &Shortcut{}, nil
		}}, nil
	case SpacingSmooth:
		return contract.SmootherFactory{Name: name, New: func(*contract.RunContext) (contract.Smoother, error) {
			return &Spacing{}, nil
		}}, nil
	default:
		return contract.SmootherFactory{}, fmt.Errorf("unknown smoother '%s'. must be shortcut, spacing", name)
	}
}

// SmootherNames lists the smoothers that can be selected by name.
func SmootherNames() []string {
	return []string{ShortcutSmooth, SpacingSmooth}
}

// Template returns an annotated example scenario.
func Template() string {
	return templateYAML
}

const templateYAML = `# planbench scenario
name: corridor
cell_size: 1.0
# Row i covers y in [i*cell_size, (i+1)*cell_size). '#' is an obstacle, '.' is free.
grid:
  - "############"
  - "#..........#"
  - "#..........#"
  - "#####..#####"
  - "#..........#"
  - "#..........#"
  - "############"
start: {x: 1.5, y: 1.5, heading: 0}
goal: {x: 10.5, y: 5.5, heading: 0}
# Used when collision-model is polygon; at least 3 vertices.
robot_shape:
  - {x: -0.3, y: -0.2}
  - {x: 0.3, y: -0.2}
  - {x: 0.3, y: 0.2}
  - {x: -0.3, y: 0.2}
planners:
  - name: direct
    kind: direct
  - name: detour
    kind: replay
    intermediary: true
    stages:
      - budget: 0.5
        waypoints: [{x: 5.5, y: 1.5}, {x: 5.5, y: 5.5}]
      - budget: 2
        waypoints: [{x: 5.5, y: 2.5}, {x: 6.5, y: 4.5}]
  - name: SBPL_lattice
    kind: replay
    waypoints: [{x: 6.0, y: 2.0}, {x: 6.0, y: 5.0}]
  - name: broken
    kind: replay
    fault: "tree exhausted"
`
