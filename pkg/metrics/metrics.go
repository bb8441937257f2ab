// Package metrics keeps operational counters in an embedded time-series
// store under the application workdir.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

const (
	MetricHTTPRequest       = "smartstore_http_request"
	MetricCheckoutAccept    = "smartstore_checkout_accept"
	MetricCheckoutReject    = "smartstore_checkout_reject"
	MetricInsufficientStock = "smartstore_checkout_insufficient_stock"
)

var (
	storage tstorage.Storage
	once    sync.Once
	initErr error
)

// InitMetrics opens the metrics storage under workdir/data/metrics.
func InitMetrics(workdir string) error {
	once.Do(func() {
		storage, initErr = tstorage.NewStorage(
			tstorage.WithDataPath(filepath.Join(workdir, "data", "metrics")),
			tstorage.WithTimestampPrecision(tstorage.Seconds),
			tstorage.WithRetention(30*24*time.Hour),
		)
	})
	return initErr
}

// Incr records one occurrence of the named metric. A nil storage (metrics
// disabled or init failed) is a no-op.
func Incr(name string) {
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: 1},
		},
	})
}

// Select returns the data points of a metric within [start, end].
func Select(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	if storage == nil {
		return nil, nil
	}
	points, err := storage.Select(name, nil, start, end)
	if err == tstorage.ErrNoDataPoints {
		return nil, nil
	}
	return points, err
}

func Close() error {
	if storage == nil {
		return nil
	}
	return storage.Close()
}
