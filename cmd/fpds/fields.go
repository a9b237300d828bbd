package main

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/fpds-client/pkg/export"
	"github.com/Sternrassler/fpds-client/pkg/normalize"
	"github.com/Sternrassler/fpds-client/pkg/records"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
)

func fieldsCommand() *cli.Command {
	return &cli.Command{
		Name:  "fields",
		Usage: "list the record fields and their feed paths",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(export.FormatTable), Usage: "table or csv"},
		},
		Action: fieldsAction,
	}
}

func fieldsAction(c *cli.Context) error {
	format, err := export.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	switch format {
	case export.FormatJSON:
		return fmt.Errorf("fields supports table or csv, not %s", format)
	case export.FormatCSV:
		rows := make([][]string, len(records.Fields))
		for i, f := range records.Fields {
			rows[i] = []string{f.Name, string(f.Kind), f.Path, f.Description}
		}
		return export.WriteCSV(c.App.Writer, []string{"name", "kind", "path", "description"}, rows)
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"Field", "Kind", "Path"})
	for _, f := range records.Fields {
		t.AppendRow(table.Row{f.Name, f.Kind, strings.ReplaceAll(f.Path, normalize.Delimiter, ".")})
	}
	t.Render()
	return nil
}
