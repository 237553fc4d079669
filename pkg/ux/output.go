// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux renders CLI output for the memento command.
//
// A Printer writes either styled output (lipgloss colors, icons, boxes) or
// plain text suitable for pipes and scripts. NewPrinter picks the mode from
// the destination: terminals get styled output, everything else plain.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorSlate       = lipgloss.Color("#2C4A54")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Header    lipgloss.Style
	Box       lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),
	Header:    lipgloss.NewStyle().Bold(true).Foreground(ColorTealPrimary),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Mode selects how a Printer renders.
type Mode string

const (
	// ModeStyled uses colors, icons and boxes.
	ModeStyled Mode = "styled"

	// ModePlain writes unstyled text with "OK:", "WARN:" and "ERROR:"
	// prefixes, suitable for scripting.
	ModePlain Mode = "plain"
)

// ParseMode converts a flag value to a Mode. "auto" and "" return false,
// meaning the caller should detect the mode.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "styled", "color", "colour":
		return ModeStyled, true
	case "plain", "machine", "no-color":
		return ModePlain, true
	default:
		return "", false
	}
}

// DetectMode returns ModeStyled when w is a terminal and NO_COLOR is unset.
func DetectMode(w io.Writer) Mode {
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return ModePlain
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return ModeStyled
	}
	return ModePlain
}

// Printer writes CLI output to one destination.
//
// Printer is not safe for concurrent use.
type Printer struct {
	w    io.Writer
	mode Mode
}

// NewPrinter creates a Printer with the mode detected from w.
func NewPrinter(w io.Writer) *Printer {
	return NewPrinterWithMode(w, DetectMode(w))
}

// NewPrinterWithMode creates a Printer with an explicit mode.
func NewPrinterWithMode(w io.Writer, mode Mode) *Printer {
	if w == nil {
		w = os.Stdout
	}
	if mode != ModeStyled {
		mode = ModePlain
	}
	return &Printer{w: w, mode: mode}
}

// Mode returns the render mode.
func (p *Printer) Mode() Mode {
	return p.mode
}

func (p *Printer) styled() bool {
	return p.mode == ModeStyled
}

// Title prints a heading.
func (p *Printer) Title(text string) {
	if !p.styled() {
		fmt.Fprintf(p.w, "== %s ==\n", text)
		return
	}
	fmt.Fprintln(p.w, Styles.Title.Render(text))
}

// Success prints a success message with checkmark
func (p *Printer) Success(text string) {
	if !p.styled() {
		fmt.Fprintf(p.w, "OK: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
}

// Warning prints a warning message
func (p *Printer) Warning(text string) {
	if !p.styled() {
		fmt.Fprintf(p.w, "WARN: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
}

// Error prints an error message
func (p *Printer) Error(text string) {
	if !p.styled() {
		fmt.Fprintf(p.w, "ERROR: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
}

// Info prints an informational message
func (p *Printer) Info(text string) {
	if !p.styled() {
		fmt.Fprintln(p.w, text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", Styles.Muted.Render("│"), text)
}

// Step prints one action of a running script or demo.
func (p *Printer) Step(n int, text string) {
	if !p.styled() {
		fmt.Fprintf(p.w, "%d. %s\n", n, text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", Styles.Muted.Render(fmt.Sprintf("%2d", n)), text)
}

// Muted prints secondary text. Plain mode drops it.
func (p *Printer) Muted(text string) {
	if !p.styled() {
		return
	}
	fmt.Fprintln(p.w, Styles.Muted.Render(text))
}

// Box prints text in a rounded box
func (p *Printer) Box(title, content string) {
	if !p.styled() {
		fmt.Fprintf(p.w, "%s:\n%s\n", title, content)
		return
	}
	fmt.Fprintln(p.w, Styles.Box.Width(60).Render(Styles.Title.Render(title)+"\n"+content))
}

// Table prints rows under headers with left-aligned columns. Row cells
// beyond len(headers) are ignored; missing cells render empty. A row index
// equal to highlight is rendered highlighted in styled mode; pass -1 for
// none.
func (p *Printer) Table(headers []string, rows [][]string, highlight int) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := range headers {
			if i < len(row) && lipgloss.Width(row[i]) > widths[i] {
				widths[i] = lipgloss.Width(row[i])
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(headers))
		for i := range headers {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			if i == len(headers)-1 {
				parts[i] = cell
			} else {
				parts[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			}
		}
		return strings.Join(parts, "  ")
	}

	if !p.styled() {
		fmt.Fprintln(p.w, line(headers))
		for _, row := range rows {
			fmt.Fprintln(p.w, line(row))
		}
		return
	}

	fmt.Fprintln(p.w, Styles.Header.Render(line(headers)))
	for i, row := range rows {
		text := line(row)
		if i == highlight {
			text = Styles.Highlight.Render(text)
		}
		fmt.Fprintln(p.w, text)
	}
}

// KeyValue prints "key: value" pairs in order. pairs must have even length;
// a trailing key without value is ignored.
func (p *Printer) KeyValue(pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		if !p.styled() {
			fmt.Fprintf(p.w, "%s: %s\n", pairs[i], pairs[i+1])
			continue
		}
		fmt.Fprintf(p.w, "%s %s\n", Styles.Muted.Render(pairs[i]+":"), Styles.Bold.Render(pairs[i+1]))
	}
}
