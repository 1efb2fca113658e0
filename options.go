package multikey

import "github.com/hupe1980/multikey/codec"

type options struct {
	idGenerator      IDGenerator
	logger           *Logger
	metricsCollector MetricsCollector
	checker          ValueChecker
	compactThreshold int
	codecs           []codec.Codec
}

func defaultOptions() options {
	return options{
		idGenerator:      UUIDGenerator{},
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures a Store.
type Option func(*options)

// WithIDGenerator configures the source of object ids.
//
// If nil is passed, random UUIDs are used.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) {
		if g == nil {
			g = UUIDGenerator{}
		}
		o.idGenerator = g
	}
}

// WithLogger configures structured logging of store mutations.
// Pass nil to disable logging.
//
// Example:
//
//	store, _ := multikey.New[string, *User](
//	    []string{"name", "email"},
//	    multikey.WithLogger(multikey.NewTextLogger(slog.LevelDebug)),
//	)
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithValueChecker rejects values that do not pass c on Add and Set.
//
// Example:
//
//	checker, _ := multikey.NewStructChecker(nil)
//	store, _ := multikey.New[string, User]([]string{"name"}, multikey.WithValueChecker(checker))
func WithValueChecker(c ValueChecker) Option {
	return func(o *options) {
		o.checker = c
	}
}

// WithCompactThreshold sets how many removed objects may accumulate before
// the object pool is compacted. Values <= 0 select the default.
func WithCompactThreshold(n int) Option {
	return func(o *options) {
		o.compactThreshold = n
	}
}

// WithCodecs registers codecs, besides the built-in ones, that Load may find
// named in a snapshot header.
func WithCodecs(cs ...codec.Codec) Option {
	return func(o *options) {
		o.codecs = append(o.codecs, cs...)
	}
}
