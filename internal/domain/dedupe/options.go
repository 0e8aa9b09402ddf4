package dedupe

// Option applies a configuration option to the deduper.
type Option func(*pendingSet)

// WithMaxSize caps the number of pending keys. When full, the oldest key is
// dropped. Zero or negative means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *pendingSet) {
		d.maxSize = maxSize
	}
}
