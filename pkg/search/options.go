package search

import "runtime"

type options struct {
	workers int
}

func defaultOptions() options {
	return options{workers: runtime.GOMAXPROCS(0)}
}

type Option func(*options)

// Number of goroutines a single search may use, values <= 1 run the search
// sequentially on the calling goroutine. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(1, n)
	}
}
