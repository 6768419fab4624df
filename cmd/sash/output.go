package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/1broseidon/sash"
)

const (
	outputAuto  = "auto"
	outputTable = "table"
	outputJSON  = "json"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// resolveOutput picks table output for terminals and JSON for pipes when
// format is auto.
func resolveOutput(format string, w io.Writer) (string, error) {
	switch format {
	case outputTable, outputJSON:
		return format, nil
	case "", outputAuto:
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return outputTable, nil
		}
		return outputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want auto, table or json)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

func rectString(r sash.Rect) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func monitorTable(backend string, monitors []sash.Monitor) string {
	rows := make([][]string, 0, len(monitors))
	for _, m := range monitors {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(m.ID), 10),
			m.Name,
			yesNo(m.Primary),
			rectString(m.Bounds),
			rectString(m.WorkArea),
			strconv.Itoa(m.Scale),
		})
	}
	return fmt.Sprintf("backend: %s\n%s", backend,
		renderTable([]string{"ID", "NAME", "PRIMARY", "BOUNDS", "WORK AREA", "SCALE"}, rows))
}

func deviceTable(devices []sash.InputDevice) string {
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		kind := ""
		if d.Pointer {
			kind = d.Kind
		}
		rows = append(rows, []string{
			strconv.Itoa(int(d.ID)),
			d.Name,
			d.Use,
			kind,
			strconv.Itoa(d.Classes),
			strconv.Itoa(d.Axes),
		})
	}
	return renderTable([]string{"ID", "NAME", "USE", "KIND", "CLASSES", "AXES"}, rows)
}
