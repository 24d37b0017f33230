package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/semql/internal/cli/config"
	"github.com/leapstack-labs/semql/pkg/catalog"
	"github.com/leapstack-labs/semql/pkg/highlight"
	"github.com/leapstack-labs/semql/pkg/sem"
	"github.com/leapstack-labs/semql/pkg/token"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Resolve the identifiers of a SELECT statement",
		Long: `Parse a SELECT statement and resolve every identifier against the
configured schema. Prints the statement with resolved symbols styled by
their classification, the symbol table, and any diagnostics.

Reads from stdin when no file is given or the file is "-".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetCurrentConfig()
			logger := config.GetLogger(cmd.Context())

			path := ""
			if len(args) == 1 && args[0] != "-" {
				path = args[0]
			}

			provider, closeProvider, err := openProvider(cfg)
			if err != nil {
				return err
			}
			defer closeProvider()

			if watch {
				if path == "" {
					return fmt.Errorf("--watch requires a file argument")
				}
				return watchAndAnalyze(cmd, cfg, provider, path)
			}

			sqlText, err := readStatement(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			logger.Debug("analyzing statement", "bytes", len(sqlText), "file", path)
			return runAnalysis(cmd.Context(), cmd.OutOrStdout(), cfg, provider, sqlText)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-analyze the file on every change")
	return cmd
}

func readStatement(stdin io.Reader, path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func runAnalysis(ctx context.Context, w io.Writer, cfg *config.Config, provider catalog.Provider, sqlText string) error {
	sqlText = strings.TrimSpace(sqlText)
	model, diags, err := sem.Analyze(ctx, sqlText, provider)
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		return renderAnalysisJSON(w, model, diags)
	}
	return renderAnalysisTable(w, cfg, sqlText, model, diags)
}

func renderAnalysisTable(w io.Writer, cfg *config.Config, sqlText string, model *sem.SelectionModel, diags []sem.Diagnostic) error {
	if cfg.NoColor {
		_, _ = fmt.Fprintln(w, sqlText)
	} else {
		_, _ = fmt.Fprintln(w, highlight.Render(sqlText, model.AllEntries()))
	}
	_, _ = fmt.Fprintln(w)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Symbol", "Class", "Position"})
	for _, e := range model.AllEntries() {
		t.AppendRow(table.Row{e.Name(), highlight.ClassOf(e).String(), formatPosition(e.Span())})
	}
	t.Render()

	columns, err := model.ResultColumns()
	if err != nil {
		return err
	}
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name()
	}
	_, _ = fmt.Fprintf(w, "\nResult columns: %s\n", strings.Join(names, ", "))

	if len(diags) == 0 {
		_, _ = fmt.Fprintln(w, "No problems found")
		return nil
	}
	_, _ = fmt.Fprintln(w)
	d := table.NewWriter()
	d.SetOutputMirror(w)
	d.SetStyle(table.StyleLight)
	d.AppendHeader(table.Row{"Position", "Problem"})
	for _, diag := range diags {
		d.AppendRow(table.Row{formatPosition(diag.Span), diag.Message})
	}
	d.Render()
	return nil
}

// analysisReport is the JSON output shape of the analyze command.
type analysisReport struct {
	Symbols     []symbolReport     `json:"symbols"`
	Columns     []string           `json:"result_columns"`
	Diagnostics []diagnosticReport `json:"diagnostics"`
}

type symbolReport struct {
	Name   string `json:"name"`
	Class  string `json:"class"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type diagnosticReport struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func renderAnalysisJSON(w io.Writer, model *sem.SelectionModel, diags []sem.Diagnostic) error {
	report := analysisReport{
		Symbols:     []symbolReport{},
		Columns:     []string{},
		Diagnostics: []diagnosticReport{},
	}
	for _, e := range model.AllEntries() {
		report.Symbols = append(report.Symbols, symbolReport{
			Name:   e.Name(),
			Class:  highlight.ClassOf(e).String(),
			Line:   e.Span().Start.Line,
			Column: e.Span().Start.Column,
		})
	}
	if columns, err := model.ResultColumns(); err == nil {
		for _, col := range columns {
			report.Columns = append(report.Columns, col.Name())
		}
	}
	for _, diag := range diags {
		report.Diagnostics = append(report.Diagnostics, diagnosticReport{
			Message: diag.Message,
			Line:    diag.Span.Start.Line,
			Column:  diag.Span.Start.Column,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func formatPosition(span token.Span) string {
	if !span.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", span.Start.Line, span.Start.Column)
}

// watchAndAnalyze re-runs the analysis whenever the statement file
// changes. Editors replace files on save, so the parent directory is
// watched and events are filtered by name.
func watchAndAnalyze(cmd *cobra.Command, cfg *config.Config, provider catalog.Provider, path string) error {
	logger := config.GetLogger(cmd.Context())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	analyze := func() {
		sqlText, err := readStatement(nil, abs)
		if err != nil {
			logger.Error("read failed", "error", err)
			return
		}
		if err := runAnalysis(cmd.Context(), cmd.OutOrStdout(), cfg, provider, sqlText); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}
	analyze()

	// Editors fire several events per save; coalesce them.
	var pending *time.Timer
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(100*time.Millisecond, analyze)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		}
	}
}
