package engine

import "math"

// Engine status codes.
const (
	StatusOK           int64 = 0
	StatusBadParameter int64 = 1
	StatusSetupFailed  int64 = 2
	StatusSolvedEarly  int64 = 3
	StatusNoSolution   int64 = 4
	StatusTimeout      int64 = 5
	StatusInternal     int64 = 6
	StatusShutdown     int64 = 7
	StatusBusy         int64 = 8
)

// StatusCallFailed is the status recorded when the engine could not be
// called at all.
const StatusCallFailed int64 = -1

// Diagnostic texts that are not part of the engine status table.
const (
	DiagnosticOK            = "ok."
	DiagnosticCallFailed    = "engine call failed."
	DiagnosticBadReturnCode = "engine call bad return code."
	DiagnosticUnknown       = "unknown error. unclassified error number returned."
)

var statusDiagnostics = map[int64]string{
	StatusBadParameter: "bad parameter. check query position size and elements.",
	StatusSetupFailed:  "setup failed. check query position.",
	StatusSolvedEarly:  "solved early. solved before end of setup.",
	StatusNoSolution:   "no solution.",
	StatusTimeout:      "timeout. took too long.",
	StatusInternal:     "internal error. something went wrong.",
	StatusShutdown:     "shutdown exit. server recievd shutdown command.",
	StatusBusy:         "server busy.",
}

// Diagnostic maps an engine status code to its diagnostic text.
//
// Status 3 (solved early) is a failure like every other nonzero code.
func Diagnostic(code int64) string {
	if code < math.MinInt32 || code > math.MaxInt32 {
		return DiagnosticBadReturnCode
	}
	if code < 0 {
		return DiagnosticCallFailed
	}
	if code == StatusOK {
		return DiagnosticOK
	}
	if text, ok := statusDiagnostics[code]; ok {
		return text
	}
	return DiagnosticUnknown
}

// StatusLabel returns a low-cardinality label for a status code, used by
// logging and metrics.
func StatusLabel(code int64) string {
	switch {
	case code == StatusOK:
		return "ok"
	case code < math.MinInt32 || code > math.MaxInt32:
		return "bad_return_code"
	case code < 0:
		return "call_failed"
	}
	switch code {
	case StatusBadParameter:
		return "bad_parameter"
	case StatusSetupFailed:
		return "setup_failed"
	case StatusSolvedEarly:
		return "solved_early"
	case StatusNoSolution:
		return "no_solution"
	case StatusTimeout:
		return "timeout"
	case StatusInternal:
		return "internal"
	case StatusShutdown:
		return "shutdown"
	case StatusBusy:
		return "busy"
	default:
		return "unknown"
	}
}
