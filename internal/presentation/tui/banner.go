package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the chat banner to w, colored when w is a terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"  ___ ___ ____ ___  ___  _ __  ___(_) ___ ", "#818cf8"},
		{" | '__/ _ / __| '_ \\/ _ \\| '_ \\/ __| |/ _ \\", "#a78bfa"},
		{" | | |  __\\__ \\ |_) | (_) | | | \\__ \\ | (_) |", "#c084fc"},
		{" |_|  \\___|___/ .__/ \\___/|_| |_|___/_|\\___/", "#e879f9"},
		{"              |_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
