package sink

import (
	"context"
	"fmt"
	"io"

	"rentscan/internal/offer"

	"github.com/jedib0t/go-pretty/v6/table"
)

type TableFormat string

const (
	FormatTable    TableFormat = "table"
	FormatCSV      TableFormat = "csv"
	FormatMarkdown TableFormat = "markdown"
)

// Table renders the records to a writer, as a terminal table, csv or
// markdown.
type Table struct {
	Out    io.Writer
	Format TableFormat
}

func (t Table) Name() string {
	return fmt.Sprintf("table(%s)", t.Format)
}

func (t Table) Write(ctx context.Context, batch Batch) error {
	w := table.NewWriter()
	w.SetOutputMirror(t.Out)
	w.SetStyle(table.StyleRounded)

	header := make(table.Row, len(offer.Columns))
	for i, c := range offer.Columns {
		header[i] = c
	}
	w.AppendHeader(header)

	for _, o := range batch.Offers {
		cells := o.Record().Row()
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		w.AppendRow(row)
	}

	switch t.Format {
	case FormatCSV:
		w.RenderCSV()
	case FormatMarkdown:
		w.RenderMarkdown()
	case FormatTable, "":
		w.Render()
	default:
		return &SerializationError{Sink: t.Name(), Err: fmt.Errorf("unknown format %q", t.Format)}
	}
	return nil
}
