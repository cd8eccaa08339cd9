package config

// Matching defaults.
const (
	DefaultLeafSimilarityThreshold = 1.0 // equal labels only
	DefaultWorkers                 = 0 // one per CPU
)

// Input defaults.
const (
	DefaultMaxCaseSize = "16MB"
)

// Output and logging defaults.
const (
	DefaultOutputFormat = FormatText
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)
