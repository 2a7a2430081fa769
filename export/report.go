// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package export

import (
	"fmt"
	"os"
)

// Reporter receives single-line progress and failure
// messages during an export. Errorf reports a condition
// that aborted the current step; whether the whole
// export aborts is the exporter's decision.
type Reporter interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Progressf(format string, args ...any)
}

// Discard is a Reporter that drops every message.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Errorf(string, ...any)    {}
func (discard) Warnf(string, ...any)     {}
func (discard) Infof(string, ...any)     {}
func (discard) Progressf(string, ...any) {}

// Stderr is a Reporter that writes prefixed lines to
// standard error.
var Stderr Reporter = stderr{}

type stderr struct{}

func (stderr) Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

func (stderr) Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

func (stderr) Infof(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func (stderr) Progressf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
