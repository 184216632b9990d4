package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restsynth/internal/config"
	"github.com/studiowebux/restsynth/internal/executor"
	"github.com/studiowebux/restsynth/internal/types"
)

var (
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	redirectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	methodStyle   = lipgloss.NewStyle().Bold(true)
)

func statusStyle(status int) lipgloss.Style {
	switch {
	case executor.IsSuccessStatus(status):
		return successStyle
	case status >= 400 || status == 0:
		return errorStyle
	}
	return redirectStyle
}

// formatOutput renders a response in the given format
func formatOutput(result *types.RequestResult, format string, showFull bool) (string, error) {
	switch format {
	case config.OutputJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case config.OutputYAML:
		data, err := yaml.Marshal(result)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case config.OutputBody:
		return result.Body, nil
	}

	var sb strings.Builder

	if result.Status != 0 {
		sb.WriteString(statusStyle(result.Status).Render(result.StatusText))
		sb.WriteString("\n")
	}
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("Duration: %s | Size: %s",
		executor.FormatDuration(result.Duration),
		executor.FormatSize(result.ResponseSize))))
	sb.WriteString("\n")

	if showFull && len(result.Headers) > 0 {
		sb.WriteString("\nHeaders:\n")
		keys := make([]string, 0, len(result.Headers))
		for key := range result.Headers {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", key, result.Headers[key]))
		}
	}

	if result.Body != "" {
		if showFull {
			sb.WriteString("\nBody:\n")
		} else {
			sb.WriteString("\n")
		}
		sb.WriteString(result.Body)
		sb.WriteString("\n")
	}

	if result.Error != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render("Error: " + result.Error))
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// formatRequest renders a synthesized request for --dry-run
func formatRequest(data types.RequestData, format string) (string, error) {
	switch format {
	case config.OutputJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out) + "\n", nil

	case config.OutputYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return "", err
		}
		return string(out), nil

	case config.OutputBody:
		return data.Body, nil
	}

	var sb strings.Builder
	sb.WriteString(methodStyle.Render(data.Method))
	sb.WriteString(" ")
	sb.WriteString(data.URI)
	sb.WriteString("\n")
	for _, h := range data.Headers {
		sb.WriteString(h.Key + ": " + h.Value + "\n")
	}
	if data.Body != "" {
		sb.WriteString("\n")
		sb.WriteString(data.Body)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
