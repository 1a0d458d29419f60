// Package tracing turns hook invocations into log lines and database rows.
package tracing

import (
	"log"
)

// LogHookBase provides the common logic for all hooks that write into a
// logger.
type LogHookBase struct {
	*log.Logger
}
