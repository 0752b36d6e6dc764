package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _            _     __ _               ", "#818cf8"},
		{"| |_ __ _ ___| | __/ _| | _____      __", "#a78bfa"},
		{"| __/ _` / __| |/ / |_| |/ _ \\ \\ /\\ / /", "#c084fc"},
		{"| || (_| \\__ \\   <|  _| | (_) \\ V  V / ", "#e879f9"},
		{" \\__\\__,_|___/_|\\_\\_| |_|\\___/ \\_/\\_/  ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
