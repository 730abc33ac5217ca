package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Formatter formats linting results for output.
type Formatter interface {
	Format(w io.Writer, result *Result, root string) error
}

// styles holds the lipgloss styles of the text formatter.
type styles struct {
	err     lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	file    lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct {
	styles styles
}

// NewTextFormatter creates a text formatter. Colors are used only when useColor is set.
func NewTextFormatter(useColor bool) *TextFormatter {
	s := styles{
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		file:    lipgloss.NewStyle().Bold(true),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
	if !useColor {
		plain := lipgloss.NewStyle()
		s = styles{err: plain, warning: plain, info: plain, file: plain, dim: plain, success: plain}
	}
	return &TextFormatter{styles: s}
}

// Format outputs results in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, result *Result, root string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Linting documentation in: %s\n", root)
	b.WriteString(f.styles.dim.Render(strings.Repeat("━", 60)))
	b.WriteString("\n\n")

	current := ""
	for _, issue := range result.Issues {
		if issue.FilePath != current {
			if current != "" {
				b.WriteString("\n")
			}
			current = issue.FilePath
			b.WriteString(f.styles.file.Render(current))
			b.WriteString("\n")
		}
		f.formatIssue(&b, issue)
	}
	if current != "" {
		b.WriteString("\n")
	}

	b.WriteString(f.styles.dim.Render(strings.Repeat("━", 60)))
	b.WriteString("\nResults:\n")
	fmt.Fprintf(&b, "  %d file%s scanned\n", result.FilesTotal, pluralize(result.FilesTotal))
	if n := result.ErrorCount(); n > 0 {
		b.WriteString(f.styles.err.Render(fmt.Sprintf("  %d error%s (fails the build)", n, pluralize(n))))
		b.WriteString("\n")
	}
	if n := result.WarningCount(); n > 0 {
		b.WriteString(f.styles.warning.Render(fmt.Sprintf("  %d warning%s (should fix)", n, pluralize(n))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case result.HasErrors():
		b.WriteString(f.styles.err.Render("Documentation has errors that will fail the build."))
	case result.HasWarnings():
		b.WriteString(f.styles.warning.Render("Documentation has warnings. Consider fixing before commit."))
	default:
		b.WriteString(f.styles.success.Render("All documentation passes linting!"))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// formatIssue formats a single issue.
func (f *TextFormatter) formatIssue(b *strings.Builder, issue Issue) {
	var label string
	switch issue.Severity {
	case SeverityError:
		label = f.styles.err.Render("error")
	case SeverityWarning:
		label = f.styles.warning.Render("warn ")
	default:
		label = f.styles.info.Render("info ")
	}
	loc := "-"
	if issue.Line > 0 {
		loc = fmt.Sprintf("%d", issue.Line)
	}
	fmt.Fprintf(b, "  %4s  %s  %s %s\n", loc, label, issue.Message, f.styles.dim.Render(issue.Rule))
	if issue.Explanation != "" {
		for line := range strings.SplitSeq(strings.TrimSpace(issue.Explanation), "\n") {
			fmt.Fprintf(b, "        %s\n", f.styles.dim.Render(line))
		}
	}
	if issue.Fix != "" {
		fmt.Fprintf(b, "        Fix: %s\n", issue.Fix)
	}
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	Path         string      `json:"path"`
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue represents a single issue in JSON format.
type JSONIssue struct {
	FilePath    string `json:"file_path"`
	Severity    string `json:"severity"`
	Rule        string `json:"rule"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
	Fix         string `json:"fix,omitempty"`
	Line        int    `json:"line,omitempty"`
}

// Format outputs results in JSON format.
func (f *JSONFormatter) Format(w io.Writer, result *Result, root string) error {
	output := JSONOutput{
		Path:         root,
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		Issues:       make([]JSONIssue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue{
			FilePath:    issue.FilePath,
			Severity:    issue.Severity.String(),
			Rule:        issue.Rule,
			Message:     issue.Message,
			Explanation: issue.Explanation,
			Fix:         issue.Fix,
			Line:        issue.Line,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string, useColor bool) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter(useColor)
	}
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
