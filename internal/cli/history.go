package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/restsynth/internal/config"
	"github.com/studiowebux/restsynth/internal/executor"
	"github.com/studiowebux/restsynth/internal/history"
	"github.com/studiowebux/restsynth/internal/types"
)

func (a *App) openHistory() (*history.Manager, error) {
	if a.HistoryPath == "" {
		return nil, errors.New("history is not configured")
	}
	return history.NewManager(a.HistoryPath)
}

// HistoryList prints recent executions, newest first
func (a *App) HistoryList(env string, limit int, format string) error {
	mgr, err := a.openHistory()
	if err != nil {
		return err
	}
	defer mgr.Close()

	entries, err := mgr.List(env, limit)
	if err != nil {
		return err
	}

	format, err = a.outputFormat(format)
	if err != nil {
		return err
	}
	if format == config.OutputJSON || format == config.OutputYAML {
		return a.emitStructured(entries, format)
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.Stderr, "No history")
		return nil
	}

	w := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	for _, entry := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			entry.ID,
			entry.Timestamp,
			entry.Method,
			entry.URL,
			historyStatus(entry),
			executor.FormatDuration(entry.Duration),
		)
	}
	return w.Flush()
}

func historyStatus(entry types.HistoryEntry) string {
	if entry.Error != "" {
		return errorStyle.Render("error")
	}
	return statusStyle(entry.ResponseStatus).Render(fmt.Sprintf("%d", entry.ResponseStatus))
}

// HistoryShow prints one recorded execution
func (a *App) HistoryShow(id int64, format string) error {
	mgr, err := a.openHistory()
	if err != nil {
		return err
	}
	defer mgr.Close()

	entry, err := mgr.Get(id)
	if err != nil {
		return err
	}

	format, err = a.outputFormat(format)
	if err != nil {
		return err
	}
	switch format {
	case config.OutputJSON, config.OutputYAML:
		return a.emitStructured(entry, format)
	case config.OutputBody:
		return a.emit(entry.ResponseBody, "")
	}

	request, err := formatRequest(types.RequestData{
		Method:  entry.Method,
		URI:     entry.URL,
		Headers: entry.Headers,
		Body:    entry.Body,
	}, config.OutputText)
	if err != nil {
		return err
	}
	response, err := formatOutput(&types.RequestResult{
		Status:       entry.ResponseStatus,
		StatusText:   entry.ResponseStatusText,
		Headers:      entry.ResponseHeaders,
		Body:         entry.ResponseBody,
		Duration:     entry.Duration,
		ResponseSize: len(entry.ResponseBody),
		Error:        entry.Error,
	}, config.OutputText, true)
	if err != nil {
		return err
	}

	label := entry.RequestName
	if label == "" {
		label = "(ad-hoc)"
	}
	fmt.Fprintf(a.Stdout, "#%d %s %s", entry.ID, entry.Timestamp, label)
	if entry.Environment != "" {
		fmt.Fprintf(a.Stdout, " [%s]", entry.Environment)
	}
	fmt.Fprint(a.Stdout, "\n\n", request, "\n", response)
	return nil
}

// HistoryClear deletes every recorded execution after confirmation
func (a *App) HistoryClear(yes bool) error {
	if !yes {
		if !a.Interactive {
			return errors.New("refusing to clear history without confirmation (use --yes)")
		}
		ok, err := confirm(a.input(), a.Stderr, "Clear all history?")
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("clear cancelled")
		}
	}

	mgr, err := a.openHistory()
	if err != nil {
		return err
	}
	defer mgr.Close()

	count, err := mgr.Count()
	if err != nil {
		return err
	}
	if err := mgr.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "Cleared %d history entries\n", count)
	return nil
}

func (a *App) emitStructured(v any, format string) error {
	if format == config.OutputYAML {
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		return a.emit(string(data), "")
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return a.emit(string(data)+"\n", "")
}
