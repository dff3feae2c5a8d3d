package model

// Report explains an empty or malformed result set: whether the two logical
// tables hold any rows in the window, whether any dependency row carries a
// conversation id under a known key spelling, and which attribute keys one
// sample row actually has.
type Report struct {
	HasDependencies        bool     `json:"has_dependencies"`
	HasTraces              bool     `json:"has_traces"`
	TotalDependencies      int      `json:"total_dependencies"`
	DependenciesWithConvID int      `json:"dependencies_with_conv_id"`
	SamplePropertyKeys     []string `json:"sample_property_keys"`
}
