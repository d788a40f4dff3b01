package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"rentscan/internal/offer"

	"github.com/xuri/excelize/v2"
)

const SheetName = "offers"

// Xlsx writes the result set as a spreadsheet with a header row followed by
// one row per record.
type Xlsx struct {
	Path string
}

func (x Xlsx) Name() string {
	return "xlsx"
}

func (x Xlsx) Write(ctx context.Context, batch Batch) error {
	err := x.write(batch)
	if err != nil {
		return &SerializationError{Sink: x.Name(), Err: err}
	}
	return nil
}

func (x Xlsx) write(batch Batch) error {
	f := excelize.NewFile()
	defer f.Close()

	err := f.SetSheetName("Sheet1", SheetName)
	if err != nil {
		return err
	}

	header := make([]any, len(offer.Columns))
	for i, c := range offer.Columns {
		header[i] = c
	}
	err = f.SetSheetRow(SheetName, "A1", &header)
	if err != nil {
		return err
	}

	for i, o := range batch.Offers {
		row := o.Record().Values()
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		err = f.SetSheetRow(SheetName, cell, &row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	dir := filepath.Dir(x.Path)
	if dir != "" {
		err = os.MkdirAll(dir, 0777)
		if err != nil {
			return err
		}
	}
	return f.SaveAs(x.Path)
}
