package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/semql/internal/cli/config"
	"github.com/leapstack-labs/semql/pkg/catalog"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Show the tables the analyzer resolves against",
		Long: `List every table of the configured schema source with its columns.
Hidden columns are marked; they never appear in wildcard expansion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetCurrentConfig()

			provider, closeProvider, err := openProvider(cfg)
			if err != nil {
				return err
			}
			defer closeProvider()

			lister, ok := provider.(catalog.Lister)
			if !ok {
				return fmt.Errorf("the configured schema source cannot enumerate tables")
			}
			defs, err := lister.Tables()
			if err != nil {
				return err
			}

			if cfg.Output == "json" {
				return renderSchemaJSON(cmd.OutOrStdout(), defs)
			}
			return renderSchemaTable(cmd.OutOrStdout(), defs)
		},
	}
}

func renderSchemaTable(w io.Writer, defs []catalog.TableDef) error {
	if len(defs) == 0 {
		_, _ = fmt.Fprintln(w, "(no tables)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Column", "Type"})
	for _, def := range defs {
		name := def.Name
		if def.Schema != "" {
			name = def.Schema + "." + name
		}
		if def.Catalog != "" {
			name = def.Catalog + "." + name
		}
		for i, col := range def.Columns {
			colName := col.Name
			if col.Hidden {
				colName += " (hidden)"
			}
			label := ""
			if i == 0 {
				label = name
			}
			t.AppendRow(table.Row{label, colName, strings.ToUpper(col.Type)})
		}
		if len(def.Columns) == 0 {
			t.AppendRow(table.Row{name, "", ""})
		}
		t.AppendSeparator()
	}
	t.Render()
	return nil
}

func renderSchemaJSON(w io.Writer, defs []catalog.TableDef) error {
	type columnOut struct {
		Name   string `json:"name"`
		Type   string `json:"type,omitempty"`
		Hidden bool   `json:"hidden,omitempty"`
	}
	type tableOut struct {
		Catalog string      `json:"catalog,omitempty"`
		Schema  string      `json:"schema,omitempty"`
		Name    string      `json:"name"`
		Columns []columnOut `json:"columns"`
	}

	out := make([]tableOut, 0, len(defs))
	for _, def := range defs {
		t := tableOut{Catalog: def.Catalog, Schema: def.Schema, Name: def.Name, Columns: []columnOut{}}
		for _, col := range def.Columns {
			t.Columns = append(t.Columns, columnOut{Name: col.Name, Type: col.Type, Hidden: col.Hidden})
		}
		out = append(out, t)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
