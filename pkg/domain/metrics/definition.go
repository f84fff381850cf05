package metrics

// Built-in metric names accepted in settings and on the command line.
const (
	MetricCompletedCount  = "completed_count"
	MetricCompletedPoints = "completed_points"
	MetricCreatedCount    = "created_count"
)

// Definition binds a metric name to its extractor and polarity, replacing the
// loose string comparisons the polarity decision would otherwise hide in.
type Definition struct {
	Name     string
	Polarity Polarity
	Extract  Extractor
}

var definitions = map[string]Definition{
	MetricCompletedCount: {
		Name:     MetricCompletedCount,
		Polarity: HigherIsBetter,
		Extract:  CompletedCountOf,
	},
	MetricCompletedPoints: {
		Name:     MetricCompletedPoints,
		Polarity: HigherIsBetter,
		Extract:  CompletedPointsOf,
	},
	// Intake rate is bidirectional: a starved backlog and a flooded one are
	// both unhealthy, so it is judged against an expected range.
	MetricCreatedCount: {
		Name:     MetricCreatedCount,
		Polarity: Bidirectional,
		Extract:  CreatedCountOf,
	},
}

// DefinitionFor looks up a built-in metric by name.
func DefinitionFor(name string) (Definition, bool) {
	def, ok := definitions[name]
	return def, ok
}

// MetricNames lists the built-in metric names in a stable order.
func MetricNames() []string {
	return []string{MetricCompletedCount, MetricCompletedPoints, MetricCreatedCount}
}
