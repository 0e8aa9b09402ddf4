package demo

// Defaults for the demo command.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultUsers   = 25
	// weightTolerance bounds the drift of reported weights from a sum of 1.
	weightTolerance = 1e-6
	// topN is the number of scores printed in the summary.
	topN = 10
)
