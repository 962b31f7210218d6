package logger

import (
	"fmt"
	"io"
	"os"
)

// DebugEnabled turns on Debugf output; set from the --debug flag
var DebugEnabled bool

// Output receives all log lines. Reports go to stdout, so logs default to stderr.
var Output io.Writer = os.Stderr

// Debugf prints messages only if DebugEnabled is true
func Debugf(format string, args ...interface{}) {
	if DebugEnabled {
		fmt.Fprintf(Output, "[DEBUG] "+format+"\n", args...)
	}
}

// Infof prints messages always
func Infof(format string, args ...interface{}) {
	fmt.Fprintf(Output, format+"\n", args...)
}

// Warnf prints a warning
func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(Output, "Warning: "+format+"\n", args...)
}
