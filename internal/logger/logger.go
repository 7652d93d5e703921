// Package logger provides the facility-style logger shared by every mojika
// package: one *logger.Logger, one debug flag derived from MOJIKA_TRACE.
package logger

import (
	"os"
	"strings"

	"github.com/calmh/logger"
)

// L is the single process-wide logger instance. Every package logs through
// it rather than constructing its own, matching the teacher's
// `l = logger.DefaultLogger` idiom.
var L = logger.DefaultLogger

// Debug reports whether the named facility should emit debug-level logs,
// controlled by the MOJIKA_TRACE environment variable: a comma separated
// list of facility names, or "all".
func Debug(facility string) bool {
	trace := os.Getenv("MOJIKA_TRACE")
	if trace == "all" {
		return true
	}
	for _, f := range strings.Split(trace, ",") {
		if f == facility {
			return true
		}
	}
	return false
}
