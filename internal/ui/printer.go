// Package ui handles all terminal interaction for the configuration
// wizard: colored status output and interactive prompting. Every other
// package talks to the terminal through the Printer and InputGatherer
// interfaces so the wizard can run headless under test.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer renders wizard progress to the user.
type Printer interface {
	// Header prints a section banner.
	Header(format string, args ...any)
	// Step announces a wizard step about to run.
	Step(number, total int, description string)
	// Skip announces a step carried over from a previous run.
	Skip(number, total int, description string)
	Success(format string, args ...any)
	Info(format string, args ...any)
	Println(format string, args ...any)
}

// ConsolePrinter writes colored output to a terminal.
type ConsolePrinter struct {
	Out io.Writer
}

func NewConsolePrinter() *ConsolePrinter {
	return &ConsolePrinter{Out: os.Stdout}
}

func (p *ConsolePrinter) Header(format string, args ...any) {
	fmt.Fprintln(p.Out)
	color.New(color.FgCyan, color.Bold).Fprintf(p.Out, format+"\n", args...)
}

func (p *ConsolePrinter) Step(number, total int, description string) {
	fmt.Fprintln(p.Out)
	color.New(color.FgCyan, color.Bold).Fprintf(p.Out, "[%d/%d] %s\n", number, total, description)
}

func (p *ConsolePrinter) Skip(number, total int, description string) {
	color.New(color.FgHiBlack).Fprintf(p.Out, "[%d/%d] %s (already completed, skipping)\n", number, total, description)
}

func (p *ConsolePrinter) Success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(p.Out, format+"\n", args...)
}

func (p *ConsolePrinter) Info(format string, args ...any) {
	color.New(color.FgCyan).Fprintf(p.Out, format+"\n", args...)
}

func (p *ConsolePrinter) Println(format string, args ...any) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}

// SilentPrinter discards all output.
type SilentPrinter struct{}

func (SilentPrinter) Header(string, ...any)  {}
func (SilentPrinter) Step(int, int, string)  {}
func (SilentPrinter) Skip(int, int, string)  {}
func (SilentPrinter) Success(string, ...any) {}
func (SilentPrinter) Info(string, ...any)    {}
func (SilentPrinter) Println(string, ...any) {}
