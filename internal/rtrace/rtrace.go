// Package rtrace provides the opt-in diagnostic tracing used across the
// backend. It mirrors the teacher's VerboseMode switch: a single boolean
// gate, read once from the environment, guarding plain stderr writes.
package rtrace

import (
	"fmt"
	"os"

	"github.com/xyproto/env/v2"
)

// Enabled is read once at init from RVCORE_TRACE. Tests may flip it
// directly to exercise the traced paths without setting an env var.
var Enabled = env.Bool("RVCORE_TRACE")

// Tracef writes a formatted diagnostic line to stderr when Enabled is true.
// It is a no-op otherwise, so call sites never pay formatting cost in the
// common case beyond the boolean check.
func Tracef(format string, args ...any) {
	if !Enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "rv64ssa: "+format+"\n", args...)
}
