package engine

// DefaultQueryCacheSize is the number of parsed documents kept by default.
const DefaultQueryCacheSize = 1000

type options struct {
	introspection  bool
	cacheSize      int
	maxConcurrency int
}

func defaultOptions() options {
	return options{introspection: true, cacheSize: DefaultQueryCacheSize}
}

// Option configures an Engine.
type Option func(*options)

// WithIntrospection toggles the __schema and __type root fields.
func WithIntrospection(enabled bool) Option { return func(o *options) { o.introspection = enabled } }

// WithQueryCache keeps up to n parsed documents keyed by query text. Zero
// disables the cache.
func WithQueryCache(n int) Option { return func(o *options) { o.cacheSize = n } }

// WithMaxConcurrency bounds concurrently running resolvers within one depth.
func WithMaxConcurrency(n int) Option { return func(o *options) { o.maxConcurrency = n } }
