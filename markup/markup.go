// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package markup implements the indented element writer
// used to produce renderer project files.
//
// The writer knows nothing about scene semantics. It
// maintains the current nesting depth and guarantees that
// the output is a well-formed tag tree as long as Open and
// Close calls pair up. It performs no escaping; callers
// are responsible for producing valid identifiers.
package markup

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const prefix = "markup: "

// ErrImbalanced reports a Close call with no matching
// prior Open. It indicates a defect in the caller, not
// a recoverable output condition.
var ErrImbalanced = errors.New(prefix + "imbalanced close")

// Indentation step.
const indent = "    "

// Writer writes an indented element tree to an
// underlying stream.
type Writer struct {
	w     io.Writer
	depth int
}

// NewWriter creates a writer that emits to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Depth returns the current nesting depth.
// It is zero when every opened element has been closed.
func (w *Writer) Depth() int { return w.depth }

func (w *Writer) write(s string) error {
	var b strings.Builder
	for i := 0; i < w.depth; i++ {
		b.WriteString(indent)
	}
	b.WriteString(s)
	b.WriteByte('\n')
	if _, err := io.WriteString(w.w, b.String()); err != nil {
		return fmt.Errorf(prefix+"write: %w", err)
	}
	return nil
}

// Open writes an opening tag and increases the depth.
// elem is the element name optionally followed by
// attribute text, e.g. `material name="m" model="generic_material"`.
func (w *Writer) Open(elem string) error {
	if err := w.write("<" + elem + ">"); err != nil {
		return err
	}
	w.depth++
	return nil
}

// Close decreases the depth and writes the closing tag
// for the named element.
func (w *Writer) Close(name string) error {
	if w.depth == 0 {
		return ErrImbalanced
	}
	w.depth--
	return w.write("</" + name + ">")
}

// Line writes one raw line at the current depth.
func (w *Writer) Line(s string) error { return w.write(s) }

// Param writes a self-closing parameter element.
// Booleans render as lowercase true/false; floats use
// default decimal stringification.
func (w *Writer) Param(name string, value any) error {
	return w.write(`<parameter name="` + name + `" value="` + Stringify(value) + `" />`)
}

// Params writes a parameter list element named name and
// calls fn to emit its entries at the nested depth.
// The list is closed regardless of fn's outcome.
func (w *Writer) Params(name string, fn func() error) error {
	if err := w.Open(`parameters name="` + name + `"`); err != nil {
		return err
	}
	err := fn()
	if cerr := w.Close("parameters"); err == nil {
		err = cerr
	}
	return err
}

// Stringify converts a parameter value to its textual form.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return strconv.Itoa(v)
	case [3]float32:
		return Stringify(v[0]) + " " + Stringify(v[1]) + " " + Stringify(v[2])
	default:
		return fmt.Sprint(v)
	}
}
