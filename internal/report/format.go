package report

// format.go - Output format selection.

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// Format names an output rendering.
type Format string

const (
	// FormatAuto picks the table on terminals and JSON everywhere else.
	FormatAuto Format = "auto"
	// FormatTable renders a boxed table plus a summary line.
	FormatTable Format = "table"
	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"
	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name from the command line. The empty
// name selects FormatAuto.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	switch f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected table, json, or yaml)", s)
}

// Resolve maps FormatAuto to a concrete format for w. Terminals get the
// table; pipes and files get JSON.
func (f Format) Resolve(w io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	type fdWriter interface{ Fd() uintptr }
	if fw, ok := w.(fdWriter); ok && term.IsTerminal(int(fw.Fd())) {
		return FormatTable
	}
	return FormatJSON
}
