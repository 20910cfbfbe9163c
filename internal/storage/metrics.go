package storage

import "time"

// MetricsCollector defines metrics operations for storage.
type MetricsCollector interface {
	IncShardReads(backend string, result string)
	ObserveStorageOperationDuration(backend string, operation string, duration float64)
	IncStorageErrors(backend string, operation string)
}

// observer records outcome and latency of one store operation; a nil
// collector is allowed.
type observer struct {
	backend string
	metrics MetricsCollector
}

func (o observer) done(operation string, start time.Time, err error) {
	if o.metrics == nil {
		return
	}
	o.metrics.ObserveStorageOperationDuration(o.backend, operation, time.Since(start).Seconds())
	if err != nil {
		o.metrics.IncStorageErrors(o.backend, operation)
	}
}

func (o observer) shard(found bool) {
	if o.metrics == nil {
		return
	}
	if found {
		o.metrics.IncShardReads(o.backend, "found")
	} else {
		o.metrics.IncShardReads(o.backend, "missing")
	}
}
