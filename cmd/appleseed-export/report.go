// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"

	"github.com/gviegas/appleseed/export"
)

// reporter colorizes exporter diagnostics on terminals
// that support it.
type reporter struct {
	out   *termenv.Output
	quiet bool
}

func newReporter(quiet bool) export.Reporter {
	return &reporter{
		out:   termenv.NewOutput(os.Stderr),
		quiet: quiet,
	}
}

func (r *reporter) Errorf(format string, args ...any) {
	s := r.out.String("error: " + fmt.Sprintf(format, args...))
	fmt.Fprintln(r.out, s.Foreground(termenv.ANSIRed))
}

func (r *reporter) Warnf(format string, args ...any) {
	s := r.out.String("warning: " + fmt.Sprintf(format, args...))
	fmt.Fprintln(r.out, s.Foreground(termenv.ANSIYellow))
}

func (r *reporter) Infof(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *reporter) Progressf(format string, args ...any) {
	if r.quiet {
		return
	}
	s := r.out.String(fmt.Sprintf(format, args...))
	fmt.Fprintln(r.out, s.Faint())
}
