package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string

	// SteeringMode represents the steering function planners use to connect poses.
	SteeringMode string

	// ObjectiveKind represents the optimization objective used for path cost.
	ObjectiveKind string

	// CollisionKind represents how the robot footprint is checked against obstacles.
	CollisionKind string

	// Outcome represents how a single planner or smoother evaluation ended.
	Outcome string

	// EntryKind represents which part of the pipeline produced a stored record.
	EntryKind string

	// TelemetryExporter represents where traces or metrics are exported to.
	TelemetryExporter string
)

// EmptyMetric marks a numeric metric that was not computed.
const EmptyMetric = -1.0

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// All steering modes supported.
const (
	LinearSteering     SteeringMode = "linear" // default
	DubinsSteering     SteeringMode = "dubins"
	ReedsSheppSteering SteeringMode = "reeds_shepp"
	CCDubinsSteering   SteeringMode = "cc_dubins"
	POSQSteering       SteeringMode = "posq"
)

// All telemetry exporters supported.
const (
	NoExporter         TelemetryExporter = "none" // default
	StdoutExporter     TelemetryExporter = "stdout"
	OTLPExporter       TelemetryExporter = "otlp"
	PrometheusExporter TelemetryExporter = "prometheus"
)

// All objectives supported.
const (
	PathLengthObjective ObjectiveKind = "path_length" // default
	ClearanceObjective  ObjectiveKind = "clearance"
)

// All collision models supported.
const (
	PointCollision   CollisionKind = "point" // default
	PolygonCollision CollisionKind = "polygon"
)

// All evaluation outcomes.
const (
	OutcomeOK                  Outcome = "ok"
	OutcomeConstructionFailure Outcome = "construction_failure"
	OutcomePlanningFailure     Outcome = "planning_failure"
	OutcomePlanningFault       Outcome = "planning_fault"
	OutcomeValidationFault     Outcome = "validation_fault"
)

// All entry kinds written to the run store.
const (
	PlanEntryKind      EntryKind = "plan"
	AnytimeEntryKind   EntryKind = "anytime"
	SmoothingEntryKind EntryKind = "smoothing"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSteeringModes lists all valid steering modes.
var ValidSteeringModes = map[SteeringMode]struct{}{
	LinearSteering:     {},
	DubinsSteering:     {},
	ReedsSheppSteering: {},
	CCDubinsSteering:   {},
	POSQSteering:       {},
}

// ValidTraceExporters lists all valid trace exporters.
var ValidTraceExporters = map[TelemetryExporter]struct{}{
	NoExporter:     {},
	StdoutExporter: {},
	OTLPExporter:   {},
}

// ValidMetricExporters lists all valid metric exporters.
var ValidMetricExporters = map[TelemetryExporter]struct{}{
	NoExporter:         {},
	StdoutExporter:     {},
	PrometheusExporter: {},
}

// ValidObjectives lists all valid objectives.
var ValidObjectives = map[ObjectiveKind]struct{}{
	PathLengthObjective: {},
	ClearanceObjective:  {},
}

// ValidCollisionKinds lists all valid collision models.
var ValidCollisionKinds = map[CollisionKind]struct{}{
	PointCollision:   {},
	PolygonCollision: {},
}
