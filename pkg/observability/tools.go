package observability

import (
	"github.com/facebookincubator/go-belt/tool/experimental/errmon"
	errmonlogger "github.com/facebookincubator/go-belt/tool/experimental/errmon/implementation/logger"
	"github.com/facebookincubator/go-belt/tool/experimental/metrics"
	"github.com/facebookincubator/go-belt/tool/experimental/tracer"
	"github.com/facebookincubator/go-belt/tool/logger"
)

// newMetrics returns the Metrics handler of HWDB tools. Nothing exports
// metrics yet, so it is the no-op default.
func newMetrics() metrics.Metrics {
	return metrics.Default()
}

func newTracer() tracer.Tracer {
	return tracer.Default()
}

// newErrorMonitor returns an ErrorMonitor which reports errors (and
// panics) to the logger.
func newErrorMonitor(l logger.Logger) errmon.ErrorMonitor {
	return errmonlogger.New(l)
}
