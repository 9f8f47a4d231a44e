package export

import (
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/pinecrest/jamfctl/internal/util"
)

func init() {
	Register(func() Exporter { return xlsxExporter{} })
}

type xlsxExporter struct{}

func (xlsxExporter) Metadata() Metadata {
	return Metadata{Name: "xlsx", Extension: ".xlsx", Description: "Excel workbook"}
}

func (xlsxExporter) Write(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := util.SanitizeSheetName(t.Name)
	if sheet == "" {
		sheet = DefaultSheet
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		values := make([]any, len(row))
		for c, v := range row {
			values[c] = v
			// Keep the id column numeric so it sorts correctly in Excel.
			if t.Header[c] == "id" {
				if n, err := strconv.Atoi(v); err == nil {
					values[c] = n
				}
			}
		}
		ref, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, ref, &values); err != nil {
			return err
		}
	}

	if len(t.Header) > 0 {
		if err := styleHeader(f, sheet, len(t.Header)); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func styleHeader(f *excelize.File, sheet string, cols int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	if err := f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
