// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"todo/internal/service"
)

// Format selects how a task listing is rendered.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, JSON, YAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (want text, json or yaml)", s)
}

// WriteTasks renders tasks in the given format. Text numbers tasks from 1
// in listing order; these are the numbers edit, done and rm accept.
func WriteTasks(w io.Writer, f Format, tasks []service.Task) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return err
		}
		return enc.Close()
	default:
		for i, task := range tasks {
			FormatTask(w, i+1, task)
		}
		return nil
	}
}

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}" followed by "  (due YYYY-MM-DD)" when set.
func FormatTask(w io.Writer, num int, task service.Task) {
	mark := " "
	if task.IsCompleted {
		mark = "x"
	}
	line := fmt.Sprintf("%4d  [%s] %s", num, mark, normalizeTitle(task.Title))
	if task.DueDate != nil {
		line += fmt.Sprintf("  (due %s)", task.DueDate)
	}
	fmt.Fprintln(w, line)
}

// FormatUser formats the signed-in account.
func FormatUser(w io.Writer, user service.User) {
	if user.Email == "" {
		fmt.Fprintln(w, user.Username)
		return
	}
	fmt.Fprintf(w, "%s <%s>\n", user.Username, user.Email)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
