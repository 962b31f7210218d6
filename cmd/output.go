package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/user/csrf-diag/pkg/engine"
)

var (
	okColor      = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	issueColor   = color.New(color.FgRed, color.Bold)
	headingColor = color.New(color.FgCyan, color.Bold)
)

func validateFormat(format string) error {
	switch format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown report format %q (use text or json)", format)
	}
}

func printReport(out io.Writer, report engine.Report, format string) error {
	if format == "json" {
		data, err := report.JSON()
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	_, err := fmt.Fprint(out, colorize(report.String()))
	return err
}

// colorize highlights the section headings of a text report.
// color disables itself when stdout is not a terminal, leaving the text unchanged.
func colorize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "✅ "):
			lines[i] = okColor.Sprint(line)
		case strings.HasPrefix(line, "⚠️ "):
			lines[i] = warnColor.Sprint(line)
		case strings.HasPrefix(line, "❌ "):
			lines[i] = issueColor.Sprint(line)
		case strings.HasPrefix(line, "🎯 "), strings.HasPrefix(line, "📋 "):
			lines[i] = headingColor.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}

func banner(out io.Writer, title string) {
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintln(out, headingColor.Sprint(title))
	fmt.Fprintln(out, strings.Repeat("=", 60))
}
