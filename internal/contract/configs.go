package contract

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/planbench/schema"
)

// Default values for configuration.
const (
	DefaultRuns               = 1
	DefaultPrecision          = 3
	DefaultMaxPlanningTime    = 5 * time.Second
	DefaultInterpolationLimit = 500
	DefaultMaxPathLength      = 1e4
	DefaultInterpolationStep  = 0.5
	DefaultExactGoalRadius    = 1e-2
	DefaultMinNodeDistance    = 8.0
	MaxPrecision              = 4
)

// DefaultCuspAngleThreshold is the heading change above which a pose counts as a cusp.
const DefaultCuspAngleThreshold = 2 * math.Pi / 3

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DefaultPlanners are evaluated when no planner list is configured.
var DefaultPlanners = []string{"direct"}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a benchmark.
// This struct remains the "final, validated" config.
type Config struct {
	ScenarioPath  string
	Planners      []string
	Smoothers     []string
	SteeringModes []schema.SteeringMode
	Steering      schema.SteeringMode // Steering mode of the run in progress
	Runs          int
	Workers       int

	MaxPlanningTime time.Duration
	AnytimeBudgets  []time.Duration

	InterpolationLimit int
	MaxPathLength      float64
	InterpolationStep  float64

	CuspAngleThreshold float64 // Radians
	ExactGoalRadius    float64
	EvaluateClearing   bool
	MinNodeDistance    float64
	Objective          schema.ObjectiveKind
	CollisionModel     schema.CollisionKind

	// PlannerSettings is a mapping of [PlannerName][Key] = Value passed to Planner.Configure
	PlannerSettings map[string]map[string]any

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	PlotDir    string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   slog.Level

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	TraceExporter  schema.TelemetryExporter
	MetricExporter schema.TelemetryExporter
	OTLPEndpoint   string // host:port of the OTLP gRPC receiver
	MetricsAddr    string // Listen address of the Prometheus endpoint (mcp only)
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	ScenarioPath string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	LogLevel       string `mapstructure:"log-level"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Traces         string `mapstructure:"traces"`
	Metrics        string `mapstructure:"metrics"`
	OTLPEndpoint   string `mapstructure:"otlp-endpoint"`
	MetricsAddr    string `mapstructure:"metrics-addr"`

	// --- Fields from runCmd.Flags() ---
	Planners           string  `mapstructure:"planners"`
	Smoothers          string  `mapstructure:"smoothers"`
	Steering           string  `mapstructure:"steering"`
	Runs               int     `mapstructure:"runs"`
	Workers            int     `mapstructure:"workers"`
	MaxPlanningTime    string  `mapstructure:"max-planning-time"`
	Budgets            string  `mapstructure:"budgets"`
	InterpolationLimit int     `mapstructure:"interpolation-limit"`
	MaxPathLength      float64 `mapstructure:"max-path-length"`
	InterpolationStep  float64 `mapstructure:"interpolation-step"`
	CuspThreshold      float64 `mapstructure:"cusp-threshold"`
	ExactGoalRadius    float64 `mapstructure:"exact-goal-radius"`
	EvaluateClearing   bool    `mapstructure:"evaluate-clearing"`
	MinNodeDistance    float64 `mapstructure:"min-node-distance"`
	Objective          string  `mapstructure:"objective"`
	CollisionModel     string  `mapstructure:"collision-model"`
	PlotDir            string  `mapstructure:"plot-dir"`

	// --- Planner settings from config file ---
	PlannerSettings map[string]map[string]any `mapstructure:"planner-settings"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Planners = slices.Clone(c.Planners)
	clone.Smoothers = slices.Clone(c.Smoothers)
	clone.SteeringModes = slices.Clone(c.SteeringModes)
	clone.AnytimeBudgets = slices.Clone(c.AnytimeBudgets)
	if c.PlannerSettings != nil {
		clone.PlannerSettings = make(map[string]map[string]any, len(c.PlannerSettings))
		for name, settings := range c.PlannerSettings {
			clone.PlannerSettings[name] = maps.Clone(settings)
		}
	}
	return &clone
}

// InterpolationLimits returns the caps used when densifying trajectories.
func (c *Config) InterpolationLimits() schema.InterpolationLimits {
	return schema.InterpolationLimits{
		MaxPoses:  c.InterpolationLimit,
		MaxLength: c.MaxPathLength,
		Step:      c.InterpolationStep,
	}
}

// IsAnytime reports whether planners are re-run across a budget schedule.
func (c *Config) IsAnytime() bool {
	return len(c.AnytimeBudgets) > 0
}

// SettingsFor returns the configured settings of one planner, never nil.
func (c *Config) SettingsFor(planner string) map[string]any {
	if settings, ok := c.PlannerSettings[planner]; ok {
		return maps.Clone(settings)
	}
	return map[string]any{}
}

// Snapshot returns the settings recorded alongside each run.
func (c *Config) Snapshot() map[string]any {
	budgets := make([]float64, len(c.AnytimeBudgets))
	for i, b := range c.AnytimeBudgets {
		budgets[i] = b.Seconds()
	}
	return map[string]any{
		"scenario":             c.ScenarioPath,
		"planners":             slices.Clone(c.Planners),
		"smoothers":            slices.Clone(c.Smoothers),
		"steering":             string(c.Steering),
		"runs":                 c.Runs,
		"max_planning_time":    c.MaxPlanningTime.Seconds(),
		"anytime_budgets":      budgets,
		"interpolation_limit":  c.InterpolationLimit,
		"max_path_length":      c.MaxPathLength,
		"interpolation_step":   c.InterpolationStep,
		"cusp_angle_threshold": c.CuspAngleThreshold,
		"exact_goal_radius":    c.ExactGoalRadius,
		"evaluate_clearing":    c.EvaluateClearing,
		"min_node_distance":    c.MinNodeDistance,
		"objective":            string(c.Objective),
		"collision_model":      string(c.CollisionModel),
	}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPlanningInputs(cfg, input); err != nil {
		return err
	}
	if err := processEvaluationInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := validateTelemetryConfig(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateRunSetup checks the configuration against the scenario once, before any planner is built.
// Errors returned here abort the benchmark.
func ValidateRunSetup(cfg *Config, robotShape []schema.Point) error {
	if cfg.CollisionModel == schema.PolygonCollision && len(robotShape) < 3 {
		return fmt.Errorf("polygon collision model needs a robot shape with at least 3 vertices (received %d)", len(robotShape))
	}
	if cfg.InterpolationLimit < 2 {
		return fmt.Errorf("interpolation-limit must be at least 2 (received %d)", cfg.InterpolationLimit)
	}
	return nil
}

// validateBackendConfig validates the run store backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateTelemetryConfig validates the trace and metric exporters.
func validateTelemetryConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.TraceExporter = schema.TelemetryExporter(strings.ToLower(strings.TrimSpace(input.Traces)))
	if cfg.TraceExporter == "" {
		cfg.TraceExporter = schema.NoExporter
	}
	if _, ok := schema.ValidTraceExporters[cfg.TraceExporter]; !ok {
		return fmt.Errorf("invalid traces exporter '%s'. must be none, stdout, otlp", input.Traces)
	}

	cfg.MetricExporter = schema.TelemetryExporter(strings.ToLower(strings.TrimSpace(input.Metrics)))
	if cfg.MetricExporter == "" {
		cfg.MetricExporter = schema.NoExporter
	}
	if _, ok := schema.ValidMetricExporters[cfg.MetricExporter]; !ok {
		return fmt.Errorf("invalid metrics exporter '%s'. must be none, stdout, prometheus", input.Metrics)
	}

	cfg.OTLPEndpoint = strings.TrimSpace(input.OTLPEndpoint)
	if cfg.TraceExporter == schema.OTLPExporter && cfg.OTLPEndpoint == "" {
		return fmt.Errorf("otlp-endpoint is required when using the otlp traces exporter")
	}
	cfg.MetricsAddr = strings.TrimSpace(input.MetricsAddr)
	return nil
}

// validateSimpleInputs processes and validates output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ScenarioPath = input.ScenarioPath
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.PlotDir = strings.TrimSpace(input.PlotDir)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	level, err := ParseLogLevel(input.LogLevel)
	if err != nil {
		return err
	}
	cfg.LogLevel = level

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	return nil
}

// processPlanningInputs handles the planner list, steering modes and time limits.
func processPlanningInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Planners = ParseList(input.Planners)
	if len(cfg.Planners) == 0 {
		cfg.Planners = slices.Clone(DefaultPlanners)
	}
	cfg.Smoothers = ParseList(input.Smoothers)

	modes, err := parseSteeringModes(input.Steering)
	if err != nil {
		return err
	}
	if len(modes) == 0 {
		modes = []schema.SteeringMode{schema.LinearSteering}
	}
	cfg.SteeringModes = modes
	cfg.Steering = modes[0]

	if input.Runs <= 0 {
		return fmt.Errorf("runs must be greater than 0 (received %d)", input.Runs)
	}
	cfg.Runs = input.Runs

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.MaxPlanningTime = DefaultMaxPlanningTime
	if input.MaxPlanningTime != "" {
		d, err := ParseSeconds(input.MaxPlanningTime)
		if err != nil {
			return fmt.Errorf("invalid max-planning-time: %w", err)
		}
		cfg.MaxPlanningTime = d
	}

	budgets, err := ParseDurationList(input.Budgets)
	if err != nil {
		return fmt.Errorf("invalid budgets: %w", err)
	}
	cfg.AnytimeBudgets = budgets

	return nil
}

// parseSteeringModes parses a comma separated list of steering modes.
func parseSteeringModes(s string) ([]schema.SteeringMode, error) {
	var modes []schema.SteeringMode
	for _, item := range ParseList(s) {
		mode := schema.SteeringMode(strings.ToLower(item))
		if _, ok := schema.ValidSteeringModes[mode]; !ok {
			return nil, fmt.Errorf("invalid steering mode '%s'. must be linear, dubins, reeds_shepp, cc_dubins, posq", item)
		}
		modes = append(modes, mode)
	}
	return modes, nil
}

// RevalidateEvaluation applies the overrides of a single evaluation request to a cloned config.
// Empty arguments keep the values of cfg.
func RevalidateEvaluation(cfg *Config, planners, smoothers, steering, budgets string) error {
	if planners != "" {
		cfg.Planners = ParseList(planners)
	}
	if smoothers != "" {
		cfg.Smoothers = ParseList(smoothers)
	}
	if steering != "" {
		modes, err := parseSteeringModes(steering)
		if err != nil {
			return err
		}
		if len(modes) == 0 {
			return fmt.Errorf("steering must name at least one mode")
		}
		cfg.SteeringModes = modes
		cfg.Steering = modes[0]
	}
	if budgets != "" {
		parsed, err := ParseDurationList(budgets)
		if err != nil {
			return fmt.Errorf("invalid budgets: %w", err)
		}
		cfg.AnytimeBudgets = parsed
	}
	if len(cfg.Planners) == 0 {
		return fmt.Errorf("at least one planner is required")
	}
	return nil
}

// processEvaluationInputs handles interpolation caps, metric thresholds and models.
func processEvaluationInputs(cfg *Config, input *ConfigRawInput) error {
	if input.InterpolationLimit < 2 {
		return fmt.Errorf("interpolation-limit must be at least 2 (received %d)", input.InterpolationLimit)
	}
	cfg.InterpolationLimit = input.InterpolationLimit

	if input.MaxPathLength <= 0 {
		return fmt.Errorf("max-path-length must be greater than 0 (received %g)", input.MaxPathLength)
	}
	cfg.MaxPathLength = input.MaxPathLength

	if input.InterpolationStep <= 0 {
		return fmt.Errorf("interpolation-step must be greater than 0 (received %g)", input.InterpolationStep)
	}
	cfg.InterpolationStep = input.InterpolationStep

	if input.CuspThreshold <= 0 || input.CuspThreshold > math.Pi {
		return fmt.Errorf("cusp-threshold must be in (0, pi] radians (received %g)", input.CuspThreshold)
	}
	cfg.CuspAngleThreshold = input.CuspThreshold

	if input.ExactGoalRadius < 0 {
		return fmt.Errorf("exact-goal-radius cannot be negative (received %g)", input.ExactGoalRadius)
	}
	cfg.ExactGoalRadius = input.ExactGoalRadius
	cfg.EvaluateClearing = input.EvaluateClearing

	if input.MinNodeDistance < 0 {
		return fmt.Errorf("min-node-distance cannot be negative (received %g)", input.MinNodeDistance)
	}
	cfg.MinNodeDistance = input.MinNodeDistance

	cfg.Objective = schema.ObjectiveKind(strings.ToLower(input.Objective))
	if _, ok := schema.ValidObjectives[cfg.Objective]; !ok {
		return fmt.Errorf("invalid objective '%s'. must be path_length, clearance", input.Objective)
	}

	cfg.CollisionModel = schema.CollisionKind(strings.ToLower(input.CollisionModel))
	if _, ok := schema.ValidCollisionKinds[cfg.CollisionModel]; !ok {
		return fmt.Errorf("invalid collision model '%s'. must be point, polygon", input.CollisionModel)
	}

	cfg.PlannerSettings = make(map[string]map[string]any, len(input.PlannerSettings))
	for name, settings := range input.PlannerSettings {
		cfg.PlannerSettings[name] = maps.Clone(settings)
	}

	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseList splits a comma-separated string, dropping blanks.
func ParseList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseSeconds parses a Go duration ("1.5s", "500ms") or a plain number of seconds.
func ParseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var d time.Duration
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		d = time.Duration(secs * float64(time.Second))
	} else {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return 0, fmt.Errorf("cannot parse '%s' as seconds or duration", s)
		}
		d = parsed
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive (received %s)", s)
	}
	return d, nil
}

// ParseDurationList parses a comma-separated list of ParseSeconds values, keeping the given order.
func ParseDurationList(s string) ([]time.Duration, error) {
	var out []time.Duration
	for _, part := range ParseList(s) {
		d, err := ParseSeconds(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ParseLogLevel maps a level name to a slog level. Empty means warn.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", s)
	}
}
