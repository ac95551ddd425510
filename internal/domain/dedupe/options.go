package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of IDs kept in memory. Zero or negative
// means unbounded.
func WithMaxSize(size int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = size
	}
}
