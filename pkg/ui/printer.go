// Package ui prints the human-readable progress lines of ksmm commands.
//
// Structured diagnostics go to the zerolog logger; the printer only
// writes what a user running a command should see.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/style"
)

// Printer writes styled console lines
type Printer struct {
	out io.Writer
	err io.Writer
}

// NewPrinter writes progress to out and failures to errOut
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

// Default prints to stdout and stderr
func Default() *Printer {
	return NewPrinter(os.Stdout, os.Stderr)
}

// Header prints a section title
func (p *Printer) Header(format string, args ...interface{}) {
	fmt.Fprintln(p.out, style.Render("Header", fmt.Sprintf(format, args...)))
}

// Step prints a "[+]" line for a completed step
func (p *Printer) Step(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", style.Render("Step", "[+]"), fmt.Sprintf(format, args...))
}

// Notice prints a muted "[!]" line
func (p *Printer) Notice(format string, args ...interface{}) {
	fmt.Fprintln(p.out, style.Render("Muted", "[!] "+fmt.Sprintf(format, args...)))
}

// Warn prints a warning line
func (p *Printer) Warn(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", style.Render("Warning", "[!]"), fmt.Sprintf(format, args...))
}

// Success prints a final success line
func (p *Printer) Success(format string, args ...interface{}) {
	fmt.Fprintln(p.out, style.Render("Success", fmt.Sprintf(format, args...)))
}

// Field prints an indented "key: value" line
func (p *Printer) Field(key, value string) {
	fmt.Fprintf(p.out, "%s %s\n", style.Render("Key", key+":"), style.Render("Path", value))
}

// Failure prints err to the error stream, with the hint detail if the
// error carries one
func (p *Printer) Failure(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(p.err, "%s %s\n", style.Render("Error", "[x]"), err.Error())

	if hint, ok := errors.GetErrorDetails(err)["hint"].(string); ok && hint != "" {
		fmt.Fprintln(p.err, style.Render("Muted", "    "+hint))
	}
	if stderr, ok := errors.GetErrorDetails(err)["stderr"].(string); ok && stderr != "" {
		fmt.Fprintln(p.err, style.Render("Muted", "    "+stderr))
	}
}
