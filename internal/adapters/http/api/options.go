package api

// Defaults for the HTTP boundary.
const (
	DefaultCustomWeightFallback = 0.33
	defaultVersion              = "dev"
)

type settings struct {
	customWeightFallback float64
	version              string
}

func defaultSettings() settings {
	return settings{
		customWeightFallback: DefaultCustomWeightFallback,
		version:              defaultVersion,
	}
}

// Option applies a configuration option to the Server.
type Option func(*settings)

// WithCustomWeightFallback sets the weight given to sources a custom
// weights object leaves out.
func WithCustomWeightFallback(w float64) Option {
	return func(s *settings) {
		if w >= 0 {
			s.customWeightFallback = w
		}
	}
}

// WithVersion sets the version reported by /api/health.
func WithVersion(v string) Option {
	return func(s *settings) {
		if v != "" {
			s.version = v
		}
	}
}
